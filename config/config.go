package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go-variations/midi"
	"go-variations/variation"
)

// ControllerConfig defines a saved control surface configuration
type ControllerConfig struct {
	PortName    string `json:"portName"`
	Type        string `json:"type"` // apc-mini, launchpad-x
	AutoConnect bool   `json:"autoConnect"`
}

// PresetsConfig tunes applying and blending variations
type PresetsConfig struct {
	ResetToDefaultValues bool    `json:"resetToDefaultValues"`
	Scatter              float64 `json:"scatter,omitempty"`
	BlendIdleTicks       int     `json:"blendIdleTicks,omitempty"`
	GridWidth            int     `json:"gridWidth,omitempty"`
}

// StorageConfig selects where and how pools are saved
type StorageConfig struct {
	Dir    string `json:"dir,omitempty"`
	Format string `json:"format,omitempty"` // json, yaml
}

// UIConfig stores UI preferences
type UIConfig struct {
	FPS     int    `json:"fps,omitempty"`
	Palette string `json:"palette,omitempty"` // GIMP .gpl file, built-in when empty
	Debug   bool   `json:"debug,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Controllers []ControllerConfig `json:"controllers,omitempty"`
	Presets     PresetsConfig      `json:"presets,omitempty"`
	Storage     StorageConfig      `json:"storage,omitempty"`
	UI          UIConfig           `json:"ui,omitempty"`
}

const (
	defaultFPS       = 60
	defaultGridWidth = 8
)

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Controllers: []ControllerConfig{
			{
				PortName:    "APC MINI",
				Type:        midi.DeviceApcMini.String(),
				AutoConnect: true,
			},
			{
				PortName:    "Launchpad X LPX MIDI",
				Type:        midi.DeviceLaunchpadX.String(),
				AutoConnect: true,
			},
		},
		Presets: PresetsConfig{
			BlendIdleTicks: variation.DefaultIdleTicks,
			GridWidth:      defaultGridWidth,
		},
		Storage: StorageConfig{
			Format: string(variation.FormatJSON),
		},
		UI: UIConfig{
			FPS: defaultFPS,
		},
	}
}

// applyDefaults fills fields left empty in a loaded file
func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.Presets.BlendIdleTicks <= 0 {
		c.Presets.BlendIdleTicks = d.Presets.BlendIdleTicks
	}
	if c.Presets.GridWidth <= 0 {
		c.Presets.GridWidth = d.Presets.GridWidth
	}
	if c.Storage.Format == "" {
		c.Storage.Format = d.Storage.Format
	}
	if c.UI.FPS <= 0 {
		c.UI.FPS = d.UI.FPS
	}
}

// Validate checks values a typo could break
func (c *Config) Validate() error {
	for _, ctrl := range c.Controllers {
		if _, err := midi.ParseDeviceType(ctrl.Type); err != nil {
			return fmt.Errorf("controller %q: %w", ctrl.PortName, err)
		}
	}
	switch variation.Format(c.Storage.Format) {
	case variation.FormatJSON, variation.FormatYAML:
	default:
		return fmt.Errorf("storage format %q: want json or yaml", c.Storage.Format)
	}
	if c.Presets.Scatter < 0 {
		return fmt.Errorf("scatter %v must not be negative", c.Presets.Scatter)
	}
	return nil
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-variations"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path, or returns defaults if it does not exist
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// StoreDir returns the directory variation pools are saved in
func (c *Config) StoreDir() (string, error) {
	if c.Storage.Dir != "" {
		return c.Storage.Dir, nil
	}
	return variation.DefaultStoreDir()
}

// FindController finds a controller config by port name. A configured name
// matches any port whose name starts with it, ignoring case.
func (c *Config) FindController(portName string) *ControllerConfig {
	name := strings.ToLower(portName)
	for i := range c.Controllers {
		if strings.HasPrefix(name, strings.ToLower(c.Controllers[i].PortName)) {
			return &c.Controllers[i]
		}
	}
	return nil
}

// AddController adds or updates a controller config
func (c *Config) AddController(ctrl ControllerConfig) {
	for i := range c.Controllers {
		if c.Controllers[i].PortName == ctrl.PortName {
			c.Controllers[i] = ctrl
			return
		}
	}
	c.Controllers = append(c.Controllers, ctrl)
}

// AutoConnectControllers returns controllers with autoConnect enabled
func (c *Config) AutoConnectControllers() []ControllerConfig {
	var result []ControllerConfig
	for _, ctrl := range c.Controllers {
		if ctrl.AutoConnect {
			result = append(result, ctrl)
		}
	}
	return result
}

// Detector connects configured controllers with autoConnect set, using
// their configured type, and falls back to name detection for ports not in
// the config.
func (c *Config) Detector() midi.Detector {
	return func(portName string) (midi.Layout, bool) {
		ctrl := c.FindController(portName)
		if ctrl == nil {
			return midi.DetectLayout(portName)
		}
		if !ctrl.AutoConnect {
			return nil, false
		}
		t, err := midi.ParseDeviceType(ctrl.Type)
		if err != nil {
			return nil, false
		}
		return midi.LayoutFor(t)
	}
}
