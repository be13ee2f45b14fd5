package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"rightimage/page"
	"rightimage/variant"
)

func rewriteCmd(g *globals) *cobra.Command {
	var dev deviceFlags
	var sets []string
	var query string
	var outPath string

	c := &cobra.Command{
		Use:   "rewrite [page.html]",
		Short: "Rewrite image sources in one HTML page for a device (stdin when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides, err := parseOverrides(g.cfg.Selector, sets)
			if err != nil {
				return err
			}
			profile, err := dev.profile(g.cfg)
			if err != nil {
				return err
			}
			// Validate before reading anything so a bad setting touches no element
			settings, err := variant.Merge(overrides)
			if err != nil {
				return err
			}

			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			doc, err := page.Load(in)
			if err != nil {
				return err
			}

			sel, err := variant.NewWithSettings(settings, profile, variant.WithReporter(doc.ResultsReporter()))
			if err != nil {
				return err
			}

			if query == "" {
				query = g.cfg.Query
			}
			batch := doc.Apply(sel, query)
			slog.Info("page rewritten",
				"suffix", sel.Suffix(), "matched", len(batch.Elements), "rewritten", batch.Rewritten(), "last", batch.Last)

			if outPath == "" {
				return doc.Render(cmd.OutOrStdout())
			}
			f, err := os.Create(outPath)
			if err != nil {
				return err
			}
			if err := doc.Render(f); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}

	dev.register(c)
	c.Flags().StringArrayVar(&sets, "set", nil, setUsage)
	c.Flags().StringVarP(&query, "query", "q", "", "CSS selector for image elements (default from config, else img)")
	c.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	return c
}
