package variant

import (
	"strconv"
	"strings"
)

// Capability queries checked when a device exposes media matching.
const (
	HighDensityQuery      = "(-webkit-min-device-pixel-ratio: 1.1),(-moz-min-device-pixel-ratio: 1.1),(min-device-pixel-ratio: 1.1)"
	UltraHighDensityQuery = "(-webkit-min-device-pixel-ratio: 2.1),(-moz-min-device-pixel-ratio: 2.1),(min-device-pixel-ratio: 2.1)"
)

// MediaMatcher answers media capability queries for a device.
type MediaMatcher interface {
	Matches(query string) bool
}

// Signals are the raw device measurements supplied by the host.
type Signals struct {
	ScreenWidth  int
	ScreenHeight int

	// PixelRatio is the measured device pixel ratio. Zero means unavailable.
	PixelRatio float64

	// Media is an optional capability query mechanism.
	Media MediaMatcher
}

// DeviceProfile is the read-only view of a device used by the decision.
type DeviceProfile struct {
	ScreenWidth      int
	ScreenHeight     int
	MaxDimension     int
	HighDensity      bool
	UltraHighDensity bool
}

// NewDeviceProfile derives a profile from raw signals. The larger screen
// dimension is used so the result does not depend on orientation.
func NewDeviceProfile(sig Signals) DeviceProfile {
	maxDim := sig.ScreenWidth
	if sig.ScreenHeight > maxDim {
		maxDim = sig.ScreenHeight
	}

	high, ultra := DetectDensity(sig.PixelRatio, sig.Media)
	return DeviceProfile{
		ScreenWidth:      sig.ScreenWidth,
		ScreenHeight:     sig.ScreenHeight,
		MaxDimension:     maxDim,
		HighDensity:      high,
		UltraHighDensity: ultra,
	}
}

// DetectDensity classifies a device against the 1x and 2x thresholds. Each
// threshold is checked on its own: a measured ratio above it, or a matching
// capability query. A nil matcher leaves the ratio as the only signal.
// An ultra high density device is always high density too.
func DetectDensity(ratio float64, media MediaMatcher) (high, ultra bool) {
	high = ratio > 1 || (media != nil && media.Matches(HighDensityQuery))
	ultra = ratio > 2 || (media != nil && media.Matches(UltraHighDensityQuery))
	return high || ultra, ultra
}

// RatioMedia matches min-device-pixel-ratio queries against a fixed ratio.
// A query list matches when any of its comma separated features does.
type RatioMedia float64

func (r RatioMedia) Matches(query string) bool {
	for _, feature := range strings.Split(query, ",") {
		threshold, ok := parseMinRatio(feature)
		if ok && float64(r) >= threshold {
			return true
		}
	}
	return false
}

// parseMinRatio extracts N from "(-vendor-min-device-pixel-ratio: N)".
func parseMinRatio(feature string) (float64, bool) {
	feature = strings.TrimSpace(feature)
	feature = strings.TrimPrefix(feature, "(")
	feature = strings.TrimSuffix(feature, ")")

	name, value, ok := strings.Cut(feature, ":")
	if !ok {
		return 0, false
	}
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.TrimPrefix(name, "-webkit-")
	name = strings.TrimPrefix(name, "-moz-")
	if name != "min-device-pixel-ratio" {
		return 0, false
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
