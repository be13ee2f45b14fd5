package variant

// Tier is a discrete image size class.
type Tier int

const (
	TierXS Tier = iota
	TierSmall
	TierMedium
	TierLarge
)

// String maps a tier to its filename component. Tiers past TierLarge, which
// density stepping can produce, still read as "large".
func (t Tier) String() string {
	switch t {
	case TierXS:
		return "xs"
	case TierSmall:
		return "small"
	case TierMedium:
		return "medium"
	default:
		return "large"
	}
}

// ClassifyTier buckets maxDimension against the breakpoints. Intervals are
// half open, so a dimension equal to a breakpoint lands in the higher tier.
func ClassifyTier(maxDimension int, s Settings) Tier {
	switch {
	case maxDimension < s.Small:
		return TierXS
	case maxDimension < s.Medium:
		return TierSmall
	case maxDimension < s.Large:
		return TierMedium
	default:
		return TierLarge
	}
}

// Decision is the size and suffix chosen for one device.
type Decision struct {
	Base      Tier
	Effective Tier
	Suffix    string
}

// ComposeSuffix derives the effective tier and filename suffix. Without the
// Apple convention, density steps the tier up (once, or twice for 3x when
// supported); with it, the tier stays put and @2x/@3x is appended instead.
func ComposeSuffix(base Tier, d DeviceProfile, s Settings) Decision {
	effective := base
	if s.RetinaCheck && d.HighDensity && !s.AppleStandard {
		effective++
		if d.UltraHighDensity && s.Support3x {
			effective++
		}
	}

	suffix := effective.String()
	if s.RetinaCheck && s.AppleStandard {
		switch {
		case d.UltraHighDensity:
			suffix += "@3x"
		case d.HighDensity:
			suffix += "@2x"
		}
	}

	return Decision{
		Base:      base,
		Effective: effective,
		Suffix:    suffix,
	}
}

// Decide runs classification and suffix composition for a device.
func Decide(d DeviceProfile, s Settings) Decision {
	return ComposeSuffix(ClassifyTier(d.MaxDimension, s), d, s)
}
