package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"rightimage/variant"
)

// pathElement is a bare filename treated as an image element
type pathElement struct {
	base string
	src  string
}

func (e *pathElement) BaseImage() (string, bool) { return e.base, e.base != "" }
func (e *pathElement) SetSource(src string) { e.src = src }

func decideCmd(g *globals) *cobra.Command {
	var dev deviceFlags
	var sets []string

	c := &cobra.Command{
		Use:   "decide [image...]",
		Short: "Show the tier and suffix chosen for a device, and rewrite filenames with it",
		Example: `  rightimage decide --preset iphone-plus
  rightimage decide --width 1024 --height 768 --ratio 2 photo.jpg
  rightimage decide --preset ipad --set appleStandard=false --set debug=true hero.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides, err := parseOverrides(g.cfg.Selector, sets)
			if err != nil {
				return err
			}
			profile, err := dev.profile(g.cfg)
			if err != nil {
				return err
			}

			sel, err := variant.New(overrides, profile, variant.WithReporter(variant.WriterReporter(cmd.OutOrStdout())))
			if err != nil {
				return err
			}

			p := g.printer
			d := sel.Decision()
			p.Title("Decision")
			p.Field("Screen", formatScreen(profile))
			p.Field("Max dimension", profile.MaxDimension)
			p.Flag("High density", profile.HighDensity)
			p.Flag("Ultra high density", profile.UltraHighDensity)
			p.Field("Base tier", d.Base)
			p.Field("Effective tier", d.Effective)
			p.Field("Suffix", d.Suffix)

			if len(args) == 0 {
				return nil
			}

			elements := make([]variant.Element, len(args))
			for i, a := range args {
				elements[i] = &pathElement{base: a}
			}
			p.Line("")
			batch := sel.Apply(elements)
			for i, src := range batch.Sources {
				p.Success("%s → %s", args[i], src)
			}
			return nil
		},
	}

	dev.register(c)
	c.Flags().StringArrayVar(&sets, "set", nil, setUsage)
	return c
}

func formatScreen(p variant.DeviceProfile) string {
	return fmt.Sprintf("%dx%d", p.ScreenWidth, p.ScreenHeight)
}
