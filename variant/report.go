package variant

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Report is the diagnostic summary emitted per element in debug mode.
type Report struct {
	Device   DeviceProfile
	Settings Settings
	Decision Decision
	Source   string // final source of the element, empty when it was skipped
}

// Lines renders the report in its fixed order.
func (r Report) Lines() []string {
	return []string{
		"Screen Width: " + strconv.Itoa(r.Device.ScreenWidth),
		"Screen Height: " + strconv.Itoa(r.Device.ScreenHeight),
		"Max Width: " + strconv.Itoa(r.Device.MaxDimension) + " (Uses Height if height is larger than width, to support orientation change)",
		"Perform Retina Check: " + strconv.FormatBool(r.Settings.RetinaCheck),
		"Follow Apple Standard (@2x, @3x): " + strconv.FormatBool(r.Settings.AppleStandard),
		"Support3x: " + strconv.FormatBool(r.Settings.Support3x),
		"is2x: " + strconv.FormatBool(r.Device.HighDensity),
		"is3x: " + strconv.FormatBool(r.Device.UltraHighDensity),
		"Base Image Size: " + r.Decision.Base.String(),
		"True Image Size: " + r.Decision.Effective.String(),
		"Image Suffix: " + r.Decision.Suffix,
		"Final Image Source: " + r.Source,
	}
}

// String renders the report as newline separated text.
func (r Report) String() string {
	return strings.Join(r.Lines(), "\n")
}

// Reporter receives debug reports.
type Reporter interface {
	Report(r Report)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(r Report)

func (f ReporterFunc) Report(r Report) { f(r) }

// WriterReporter writes each report as a text block followed by a blank line.
// Write errors are dropped; the report never affects the decision.
func WriterReporter(w io.Writer) Reporter {
	return ReporterFunc(func(r Report) {
		_, _ = fmt.Fprintf(w, "%s\n\n", r)
	})
}
