package variant

import (
	"fmt"
	"math"
	"sort"
)

// Option keys accepted by Merge.
const (
	KeySmall         = "small"
	KeyMedium        = "medium"
	KeyLarge         = "large"
	KeyRetinaCheck   = "retinaCheck"
	KeyAppleStandard = "appleStandard"
	KeySupport3x     = "support3x"
	KeyDebug         = "debug"
)

// Settings holds the breakpoints and density flags for one invocation.
// Sizes default to the Bootstrap media query breakpoints.
type Settings struct {
	Small  int
	Medium int
	Large  int

	RetinaCheck   bool // serve high density variants at all
	AppleStandard bool // encode density as @2x/@3x instead of stepping up a tier
	Support3x     bool // recognise a third density tier
	Debug         bool
}

// DefaultSettings returns the documented defaults.
func DefaultSettings() Settings {
	return Settings{
		Small:         768,
		Medium:        992,
		Large:         1200,
		RetinaCheck:   true,
		AppleStandard: true,
		Support3x:     false,
		Debug:         false,
	}
}

// ConfigurationError reports settings that cannot produce a valid decision.
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// Merge applies raw overrides onto DefaultSettings and validates the result.
// Values come from loosely typed sources (YAML, flags), so every value is type
// checked before use. Unknown keys are ignored.
func Merge(overrides map[string]any) (Settings, error) {
	s := DefaultSettings()

	ints := []struct {
		key string
		dst *int
	}{
		{KeySmall, &s.Small},
		{KeyMedium, &s.Medium},
		{KeyLarge, &s.Large},
	}
	for _, f := range ints {
		raw, ok := overrides[f.key]
		if !ok {
			continue
		}
		v, ok := asInt(raw)
		if !ok {
			return Settings{}, &ConfigurationError{
				Field:   f.key,
				Message: fmt.Sprintf("%s only accepts integer values.", f.key),
			}
		}
		*f.dst = v
	}

	flags := []struct {
		key string
		dst *bool
	}{
		{KeyRetinaCheck, &s.RetinaCheck},
		{KeyAppleStandard, &s.AppleStandard},
		{KeySupport3x, &s.Support3x},
		{KeyDebug, &s.Debug},
	}
	for _, f := range flags {
		raw, ok := overrides[f.key]
		if !ok {
			continue
		}
		v, ok := raw.(bool)
		if !ok {
			return Settings{}, &ConfigurationError{
				Field:   f.key,
				Message: fmt.Sprintf("Value of %s needs to be a boolean.", f.key),
			}
		}
		*f.dst = v
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks that the breakpoints are strictly increasing.
func (s Settings) Validate() error {
	if s.Small >= s.Medium {
		return &ConfigurationError{
			Field:   KeySmall,
			Message: "Value of small cannot be larger than or equal to value of medium.",
		}
	}
	if s.Medium >= s.Large {
		return &ConfigurationError{
			Field:   KeyMedium,
			Message: "Value of medium cannot be larger than or equal to value of large.",
		}
	}
	return nil
}

// Overrides returns s as a raw override map, the inverse of Merge.
func (s Settings) Overrides() map[string]any {
	return map[string]any{
		KeySmall:         s.Small,
		KeyMedium:        s.Medium,
		KeyLarge:         s.Large,
		KeyRetinaCheck:   s.RetinaCheck,
		KeyAppleStandard: s.AppleStandard,
		KeySupport3x:     s.Support3x,
		KeyDebug:         s.Debug,
	}
}

// Keys lists the option keys understood by Merge, sorted.
func Keys() []string {
	keys := make([]string, 0, len(DefaultSettings().Overrides()))
	for k := range DefaultSettings().Overrides() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// asInt accepts any integer kind and floats with no fractional part, since
// JSON and YAML numbers may arrive as float64.
func asInt(raw any) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case int8:
		return int(v), true
	case int16:
		return int(v), true
	case int32:
		return int(v), true
	case int64:
		if v > math.MaxInt || v < math.MinInt {
			return 0, false
		}
		return int(v), true
	case uint:
		if uint64(v) > math.MaxInt {
			return 0, false
		}
		return int(v), true
	case uint8:
		return int(v), true
	case uint16:
		return int(v), true
	case uint32:
		if uint64(v) > math.MaxInt {
			return 0, false
		}
		return int(v), true
	case uint64:
		if v > math.MaxInt {
			return 0, false
		}
		return int(v), true
	case float32:
		return floatToInt(float64(v))
	case float64:
		return floatToInt(v)
	default:
		return 0, false
	}
}

func floatToInt(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f >= float64(math.MaxInt) || f < float64(math.MinInt) {
		return 0, false
	}
	return int(f), true
}
