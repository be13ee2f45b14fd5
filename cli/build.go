package cli

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"rightimage/builder"
	"rightimage/watcher"
)

func buildCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Write a rewritten copy of the public site for every configured device",
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := builder.NewSiteBuilder(g.cfg)
			if err != nil {
				return err
			}
			results, err := b.Build(cmd.Context())
			if err != nil {
				return err
			}
			g.printResults(b, results)
			return nil
		},
	}
}

func (g *globals) printResults(b *builder.SiteBuilder, results []builder.DeviceResult) {
	p := g.printer
	p.Title("Devices")
	for _, r := range results {
		p.Field(r.Device, fmt.Sprintf("suffix %-12s %d pages, %d images, %d skipped, %d files copied",
			r.Suffix, r.Pages, r.Images, r.Skipped, r.Copied))
	}
	p.Success("site written to %s", b.OutputDir())
}

func watchCmd(g *globals) *cobra.Command {
	var skipInitial bool

	c := &cobra.Command{
		Use:   "watch",
		Short: "Build the site, then rebuild pages as they change",
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := builder.NewSiteBuilder(g.cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if !skipInitial {
				results, err := b.Build(ctx)
				if err != nil {
					return err
				}
				g.printResults(b, results)
			}

			w, err := watcher.NewWatcher(b, g.cfg.Watch.Debounce)
			if err != nil {
				return err
			}
			if err := w.Start(ctx); err != nil {
				_ = w.Stop()
				return fmt.Errorf("failed to start watcher: %w", err)
			}
			g.printer.Line("Watching %s, press Ctrl+C to stop", b.PublicDir())

			for {
				select {
				case <-ctx.Done():
					slog.Info("shutting down")
					return w.Stop()
				case event, ok := <-w.Events():
					if !ok {
						return nil
					}
					if event.Err != nil {
						g.printer.Line("✗ %s %s: %v", event.Type, event.FilePath, event.Err)
						continue
					}
					g.printer.Success("%s %s", event.Type, event.FilePath)
				}
			}
		},
	}

	c.Flags().BoolVar(&skipInitial, "no-initial-build", false, "skip the full build before watching")
	return c
}
