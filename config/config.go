package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"rightimage/variant"
)

// Config represents the application configuration
type Config struct {
	// Selector holds raw overrides keyed by option name (small, appleStandard, ...).
	// They stay untyped until variant.Merge checks them.
	Selector map[string]any `yaml:"selector"`
	Query    string         `yaml:"query"`
	Site     SiteConfig     `yaml:"site"`
	Devices  []DeviceConfig `yaml:"devices"`
	Watch    WatchConfig    `yaml:"watch"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type SiteConfig struct {
	PublicDir string `yaml:"public_dir"`
	OutputDir string `yaml:"output_dir"`
}

// DeviceConfig describes a target device for site builds
type DeviceConfig struct {
	Name       string  `yaml:"name"`
	Preset     string  `yaml:"preset"`
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	PixelRatio float64 `yaml:"pixel_ratio"`
	// MediaRatio, when set, answers min-device-pixel-ratio capability queries
	MediaRatio float64 `yaml:"media_ratio"`
}

type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

const (
	DefaultDebounce  = 500 * time.Millisecond
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration, applies defaults and validates it
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Default returns a configuration with no devices and default settings
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Query == "" {
		c.Query = "img"
	}
	if c.Watch.Debounce <= 0 {
		c.Watch.Debounce = DefaultDebounce
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
}

// Validate checks selector settings and device definitions
func (c *Config) Validate() error {
	if _, err := variant.Merge(c.Selector); err != nil {
		return fmt.Errorf("selector: %w", err)
	}

	seen := make(map[string]bool, len(c.Devices))
	for i, d := range c.Devices {
		if d.Name == "" {
			return fmt.Errorf("devices[%d].name is required", i)
		}
		if seen[d.Name] {
			return fmt.Errorf("duplicate device name %q", d.Name)
		}
		seen[d.Name] = true

		if _, err := d.Signals(); err != nil {
			return fmt.Errorf("devices[%d]: %w", i, err)
		}
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	return nil
}

// ValidateSite checks the fields required by build and watch
func (c *Config) ValidateSite() error {
	if c.Site.PublicDir == "" {
		return fmt.Errorf("site.public_dir is required")
	}
	if c.Site.OutputDir == "" {
		return fmt.Errorf("site.output_dir is required")
	}
	if len(c.Devices) == 0 {
		return fmt.Errorf("at least one device is required")
	}
	return nil
}

// Settings returns the merged selector settings
func (c *Config) Settings() (variant.Settings, error) {
	return variant.Merge(c.Selector)
}

// Signals resolves the device, starting from its preset when one is named.
// Explicit fields override the preset.
func (d DeviceConfig) Signals() (variant.Signals, error) {
	var sig variant.Signals
	if d.Preset != "" {
		p, err := variant.Preset(d.Preset)
		if err != nil {
			return variant.Signals{}, err
		}
		sig = p
	}

	if d.Width != 0 {
		sig.ScreenWidth = d.Width
	}
	if d.Height != 0 {
		sig.ScreenHeight = d.Height
	}
	if d.PixelRatio != 0 {
		sig.PixelRatio = d.PixelRatio
	}
	if d.MediaRatio != 0 {
		sig.Media = variant.RatioMedia(d.MediaRatio)
	}

	if sig.ScreenWidth <= 0 || sig.ScreenHeight <= 0 {
		return variant.Signals{}, fmt.Errorf("device %q needs a positive width and height", d.Name)
	}
	if sig.PixelRatio < 0 || d.MediaRatio < 0 {
		return variant.Signals{}, fmt.Errorf("device %q has a negative pixel ratio", d.Name)
	}
	return sig, nil
}

// Profile derives the device profile
func (d DeviceConfig) Profile() (variant.DeviceProfile, error) {
	sig, err := d.Signals()
	if err != nil {
		return variant.DeviceProfile{}, err
	}
	return variant.NewDeviceProfile(sig), nil
}
