package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-variations/midi"
)

const listTimeout = 3 * time.Second

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	var err error
	switch os.Args[1] {
	case "list":
		err = listPorts()
	case "detect":
		err = detectSurfaces()
	case "monitor":
		err = monitor()
	case "leds":
		err = testLEDs()
	case "poll":
		err = pollDevices()
	default:
		usage()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list     - List all MIDI ports")
	fmt.Println("  detect   - Find supported control surfaces")
	fmt.Println("  monitor  - Print decoded surface events")
	fmt.Println("  leds     - Test LED control")
	fmt.Println("  poll     - Poll for device changes")
}

func ports() ([]drivers.In, []drivers.Out, error) {
	ins, outs, err := midi.ListPorts(context.Background(), listTimeout)
	if err == midi.ErrScanTimeout {
		return nil, nil, fmt.Errorf("%w (CoreMIDI hung? try: sudo killall coreaudiod midiserver)", err)
	}
	return ins, outs, err
}

func listPorts() error {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	ins, outs, err := ports()
	if err != nil {
		return err
	}
	for i, p := range ins {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
	fmt.Println("\n=== MIDI Output Ports ===")
	for i, p := range outs {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
	return nil
}

type surfacePorts struct {
	in     drivers.In
	out    drivers.Out
	layout midi.Layout
}

// findSurface returns the first input port a layout is detected for
func findSurface() (*surfacePorts, error) {
	ins, outs, err := ports()
	if err != nil {
		return nil, err
	}
	for _, in := range ins {
		if layout, ok := midi.DetectLayout(in.String()); ok {
			return &surfacePorts{in: in, out: midi.MatchOutput(in.String(), outs), layout: layout}, nil
		}
	}
	return nil, fmt.Errorf("no supported surface found")
}

func detectSurfaces() error {
	fmt.Println("Looking for control surfaces...")

	ins, outs, err := ports()
	if err != nil {
		return err
	}

	found := 0
	for i, p := range ins {
		layout, ok := midi.DetectLayout(p.String())
		if !ok {
			continue
		}
		found++
		out := "no output"
		if o := midi.MatchOutput(p.String(), outs); o != nil {
			out = "output: " + o.String()
		}
		fmt.Printf("Found %s: %d: %s (%s)\n", layout.Type(), i, p.String(), out)
	}

	if found == 0 {
		fmt.Println("\nNo surface found")
	}
	return nil
}

func monitor() error {
	sp, err := findSurface()
	if err != nil {
		return err
	}
	port, err := midi.Open(sp.in.String(), sp.layout, sp.in, sp.out)
	if err != nil {
		return err
	}
	defer port.Close()

	fmt.Printf("Monitoring %s as %s. Ctrl+C to exit.\n", port.ID(), sp.layout.Type())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			for _, ev := range port.Drain() {
				fmt.Printf("[%s] %-14s index=%-3d value=%d\n", time.Now().Format("15:04:05.000"), ev.Kind, ev.Index, ev.Value)
			}
		}
	}
}

func testLEDs() error {
	fmt.Println("Testing LED control...")

	sp, err := findSurface()
	if err != nil {
		return err
	}
	if sp.out == nil {
		return fmt.Errorf("%s has no output port", sp.in.String())
	}

	send, err := gomidi.SendTo(sp.out)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	for _, msg := range sp.layout.Init() {
		send(msg)
	}
	time.Sleep(100 * time.Millisecond)

	color := uint8(midi.ColorGreen)
	if sp.layout.Type() == midi.DeviceApcMini {
		color = 1 // green on the APC mini
	}

	fmt.Println("Lighting up diagonal...")
	for i := 0; i < 8; i++ {
		if msg, ok := sp.layout.LEDMessage(i*8+i, color); ok {
			send(msg)
		}
		time.Sleep(100 * time.Millisecond)
	}

	fmt.Println("Press Enter to clear...")
	fmt.Scanln()

	for i := 0; i < 64; i++ {
		if msg, ok := sp.layout.LEDMessage(i, 0); ok {
			send(msg)
		}
	}

	fmt.Println("Done!")
	return nil
}

func pollDevices() error {
	fmt.Println("Polling for device changes every 2 seconds...")
	fmt.Println("Connect/disconnect a surface to test. Ctrl+C to exit.")

	lastIn := ""
	lastOut := ""

	for {
		ins, outs, err := ports()
		if err != nil {
			fmt.Printf("  scan failed: %v\n", err)
			time.Sleep(2 * time.Second)
			continue
		}

		// Build current state
		var inNames, outNames []string
		for _, p := range ins {
			inNames = append(inNames, p.String())
		}
		for _, p := range outs {
			outNames = append(outNames, p.String())
		}

		currentIn := strings.Join(inNames, ",")
		currentOut := strings.Join(outNames, ",")

		if currentIn != lastIn || currentOut != lastOut {
			fmt.Printf("\n[%s] Device change detected!\n", time.Now().Format("15:04:05"))
			fmt.Printf("  Inputs: %v\n", inNames)
			fmt.Printf("  Outputs: %v\n", outNames)

			for _, name := range inNames {
				if layout, ok := midi.DetectLayout(name); ok {
					fmt.Printf("  -> %s detected!\n", layout.Type())
				}
			}

			lastIn = currentIn
			lastOut = currentOut
		}

		time.Sleep(2 * time.Second)
	}
}
