package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// ColorMode represents color output mode
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

// ParseColorMode parses a string into a ColorMode
func ParseColorMode(s string) (ColorMode, error) {
	switch s {
	case "", "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	default:
		return ColorAuto, fmt.Errorf("invalid color mode %q: must be auto, always, or never", s)
	}
}

// resolveColors decides whether to color output for w
func resolveColors(mode ColorMode, w io.Writer) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			return false
		}
		if os.Getenv("TERM") == "dumb" {
			return false
		}
		f, ok := w.(*os.File)
		return ok && f == os.Stdout && !color.NoColor
	}
}

// printer handles formatted terminal output
type printer struct {
	out       io.Writer
	useColors bool
}

func newPrinter(out io.Writer, mode ColorMode) *printer {
	return &printer{out: out, useColors: resolveColors(mode, out)}
}

func (p *printer) paint(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if p.useColors {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

// Title prints a bold underlined heading
func (p *printer) Title(title string) {
	p.paint(color.Bold).Fprintf(p.out, "%s\n", title)
	p.paint(color.Faint).Fprintf(p.out, "%s\n", strings.Repeat("─", len([]rune(title))))
}

// Field prints an aligned label/value pair
func (p *printer) Field(label string, value any) {
	p.paint(color.FgCyan).Fprintf(p.out, "  %-18s", label+":")
	fmt.Fprintf(p.out, " %v\n", value)
}

// Flag prints a boolean field in green or red
func (p *printer) Flag(label string, v bool) {
	val := p.paint(color.FgRed).Sprint(v)
	if v {
		val = p.paint(color.FgGreen).Sprint(v)
	}
	p.Field(label, val)
}

// Success prints a success line
func (p *printer) Success(format string, args ...any) {
	p.paint(color.FgGreen).Fprintf(p.out, "✓ "+format+"\n", args...)
}

// Line prints plain text
func (p *printer) Line(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}
