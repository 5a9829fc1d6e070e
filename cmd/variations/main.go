package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"go-variations/config"
	"go-variations/debug"
	"go-variations/graph"
	"go-variations/handling"
	"go-variations/midi"
	"go-variations/theme"
	"go-variations/tui"
	"go-variations/undo"
	"go-variations/variation"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "config file (default ~/.config/go-variations/config.json)")
	debugLog := flag.Bool("debug", false, "write ~/.config/go-variations/debug.log")
	flag.Parse()

	// Load config
	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFrom(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	if *debugLog || cfg.UI.Debug {
		if err := debug.Enable(); err != nil {
			return fmt.Errorf("enable debug log: %w", err)
		}
		defer debug.Disable()
	}

	// Load theme
	palette, err := theme.LoadOrDefault(cfg.UI.Palette)
	if err != nil {
		debug.Warn("main", "palette %s: %v, using built-in", cfg.UI.Palette, err)
	}
	th := theme.New(palette)

	// Variation pools over the demo composition
	dir, err := cfg.StoreDir()
	if err != nil {
		return err
	}
	g := graph.Demo()
	stack := undo.NewStack(undo.DefaultLimit)
	store := variation.NewStore(dir, variation.Format(cfg.Storage.Format))
	registry := variation.NewRegistry(g, stack, store)

	handler := handling.New(registry, handling.Settings{
		ResetToDefaultValues: cfg.Presets.ResetToDefaultValues,
		BlendIdleTicks:       cfg.Presets.BlendIdleTicks,
		GridWidth:            cfg.Presets.GridWidth,
		Scatter:              cfg.Presets.Scatter,
	})

	// Create MIDI device manager (handles hot-plug)
	deviceMgr := midi.NewDeviceManager(cfg.Detector())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fmt.Println("go-variations")
	fmt.Println("Connect an APC mini or Launchpad X any time - they'll be detected automatically")
	fmt.Println("")

	m := tui.NewModel(handler, g, stack, deviceMgr, th, cfg.UI.FPS)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return deviceMgr.Run(ctx)
	})
	eg.Go(func() error {
		// Stop the device manager once the UI exits
		defer cancel()
		if _, err := p.Run(); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	})

	if err := eg.Wait(); err != nil {
		return err
	}

	// The quit key already closed the handler; this covers a signal
	return handler.Close()
}
