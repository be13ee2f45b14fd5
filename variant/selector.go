// Package variant picks the size and density specific variant of an image for
// a device and rewrites image sources to point at it.
//
// A Selector validates its settings and computes one Decision for one device
// at construction. Every element passed to Apply then receives the same
// suffix:
//
//	sel, err := variant.New(map[string]any{"appleStandard": false}, profile)
//	if err != nil {
//		return err // *variant.ConfigurationError
//	}
//	batch := sel.Apply(elements)
package variant

// Element is an image-bearing node supplied by the host.
type Element interface {
	// BaseImage returns the source filename before variant substitution.
	// ok is false when the element carries no base image.
	BaseImage() (path string, ok bool)
	SetSource(src string)
}

// Option configures a Selector.
type Option func(*Selector)

// WithReporter sets the sink for debug reports. Reports are only produced
// when the Debug setting is on.
func WithReporter(r Reporter) Option {
	return func(s *Selector) {
		s.reporter = r
	}
}

// Selector applies one Decision to batches of elements.
type Selector struct {
	settings Settings
	device   DeviceProfile
	decision Decision
	reporter Reporter
}

// New merges overrides onto the defaults, validates them and computes the
// decision for device. A *ConfigurationError is returned before any element
// can be touched.
func New(overrides map[string]any, device DeviceProfile, opts ...Option) (*Selector, error) {
	settings, err := Merge(overrides)
	if err != nil {
		return nil, err
	}
	return NewWithSettings(settings, device, opts...)
}

// NewWithSettings is New for already typed settings.
func NewWithSettings(settings Settings, device DeviceProfile, opts ...Option) (*Selector, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	s := &Selector{
		settings: settings,
		device:   device,
		decision: Decide(device, settings),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Settings returns the validated settings.
func (s *Selector) Settings() Settings { return s.settings }

// Device returns the profile the decision was computed for.
func (s *Selector) Device() DeviceProfile { return s.device }

// Decision returns the tier and suffix shared by every element.
func (s *Selector) Decision() Decision { return s.decision }

// Suffix returns the variant suffix, e.g. "medium@2x".
func (s *Selector) Suffix() string { return s.decision.Suffix }

// Rewrite updates a single element. Elements without a base image are left
// untouched and reported as not ok.
func (s *Selector) Rewrite(e Element) (string, bool) {
	base, ok := e.BaseImage()
	if !ok {
		return "", false
	}
	src := RewritePath(base, s.decision.Suffix)
	e.SetSource(src)
	return src, true
}

// Batch is the outcome of Apply.
type Batch struct {
	// Elements is the input collection, returned for chaining.
	Elements []Element
	// Sources holds the new source per element, empty where skipped.
	Sources []string
	// Last is the most recently computed source.
	Last string
}

// Rewritten counts the elements that received a new source.
func (b Batch) Rewritten() int {
	n := 0
	for _, src := range b.Sources {
		if src != "" {
			n++
		}
	}
	return n
}

// Apply rewrites every element in order. A skipped element never stops the
// rest of the batch.
func (s *Selector) Apply(elements []Element) Batch {
	b := Batch{
		Elements: elements,
		Sources:  make([]string, len(elements)),
	}
	for i, e := range elements {
		src, ok := s.Rewrite(e)
		if ok {
			b.Sources[i] = src
			b.Last = src
		}
		s.report(src)
	}
	return b
}

func (s *Selector) report(src string) {
	if !s.settings.Debug || s.reporter == nil {
		return
	}
	s.reporter.Report(Report{
		Device:   s.device,
		Settings: s.settings,
		Decision: s.decision,
		Source:   src,
	})
}
