package variant

import (
	"fmt"
	"sort"
)

// Presets are reference device signals by name, in portrait orientation.
var Presets = map[string]Signals{
	"iphone-se":      {ScreenWidth: 375, ScreenHeight: 667, PixelRatio: 2},
	"iphone-plus":    {ScreenWidth: 414, ScreenHeight: 736, PixelRatio: 3},
	"iphone-15":      {ScreenWidth: 393, ScreenHeight: 852, PixelRatio: 3},
	"pixel-7":        {ScreenWidth: 412, ScreenHeight: 915, PixelRatio: 2.625},
	"ipad":           {ScreenWidth: 768, ScreenHeight: 1024, PixelRatio: 2},
	"ipad-pro":       {ScreenWidth: 1024, ScreenHeight: 1366, PixelRatio: 2},
	"laptop":         {ScreenWidth: 1366, ScreenHeight: 768, PixelRatio: 1},
	"macbook-retina": {ScreenWidth: 1440, ScreenHeight: 900, PixelRatio: 2},
	"desktop-hd":     {ScreenWidth: 1920, ScreenHeight: 1080, PixelRatio: 1},
}

// Preset looks up named device signals.
func Preset(name string) (Signals, error) {
	sig, ok := Presets[name]
	if !ok {
		return Signals{}, fmt.Errorf("unknown device preset %q (known: %v)", name, PresetNames())
	}
	return sig, nil
}

// PresetNames lists the preset names, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
