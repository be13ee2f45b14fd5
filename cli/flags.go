package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"rightimage/config"
	"rightimage/variant"
)

var setUsage = fmt.Sprintf("selector override key=value, repeatable (keys: %s)", strings.Join(variant.Keys(), ", "))

// deviceFlags describe an ad-hoc device on the command line
type deviceFlags struct {
	name       string
	preset     string
	width      int
	height     int
	ratio      float64
	mediaRatio float64
}

func (d *deviceFlags) register(c *cobra.Command) {
	c.Flags().StringVarP(&d.name, "device", "d", "", "device name from the config file")
	c.Flags().StringVarP(&d.preset, "preset", "p", "", fmt.Sprintf("device preset (%s)", strings.Join(variant.PresetNames(), ", ")))
	c.Flags().IntVar(&d.width, "width", 0, "screen width in CSS pixels")
	c.Flags().IntVar(&d.height, "height", 0, "screen height in CSS pixels")
	c.Flags().Float64Var(&d.ratio, "ratio", 0, "device pixel ratio (0 = unavailable)")
	c.Flags().Float64Var(&d.mediaRatio, "media-ratio", 0, "ratio answering min-device-pixel-ratio queries (0 = no query support)")
}

// profile resolves the flags, starting from a configured device when named
func (d *deviceFlags) profile(cfg *config.Config) (variant.DeviceProfile, error) {
	dev := config.DeviceConfig{Name: "cli"}
	if d.name != "" {
		found := false
		for _, c := range cfg.Devices {
			if c.Name == d.name {
				dev, found = c, true
				break
			}
		}
		if !found {
			return variant.DeviceProfile{}, fmt.Errorf("device %q is not defined in the config", d.name)
		}
	}

	if d.preset != "" {
		dev.Preset = d.preset
	}
	if d.width != 0 {
		dev.Width = d.width
	}
	if d.height != 0 {
		dev.Height = d.height
	}
	if d.ratio != 0 {
		dev.PixelRatio = d.ratio
	}
	if d.mediaRatio != 0 {
		dev.MediaRatio = d.mediaRatio
	}
	return dev.Profile()
}

// parseOverrides turns key=value pairs into selector overrides layered over
// base. Values are decoded as YAML scalars so "768" is an int, "true" a bool
// and anything else a string that validation will reject.
func parseOverrides(base map[string]any, pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(base)+len(pairs))
	for k, v := range base {
		out[k] = v
	}

	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q: expected key=value", pair)
		}

		var v any
		if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("invalid --set %q: %w", pair, err)
		}
		out[key] = v
	}
	return out, nil
}
