package builder

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"rightimage/config"
	"rightimage/page"
	"rightimage/variant"
)

// SiteBuilder writes one rewritten copy of the public site per device
type SiteBuilder struct {
	publicDir string
	outputDir string
	query     string
	settings  variant.Settings
	targets   []target
}

type target struct {
	name    string
	profile variant.DeviceProfile
}

// DeviceResult summarizes the build of one device tree
type DeviceResult struct {
	Device   string
	Suffix   string
	Pages    int
	Images   int
	Copied   int
	Skipped  int // images without a base image
	Decision variant.Decision
}

// NewSiteBuilder validates the configuration and resolves every device profile
func NewSiteBuilder(cfg *config.Config) (*SiteBuilder, error) {
	if err := cfg.ValidateSite(); err != nil {
		return nil, err
	}

	settings, err := cfg.Settings()
	if err != nil {
		return nil, fmt.Errorf("selector: %w", err)
	}

	publicDir, err := filepath.Abs(cfg.Site.PublicDir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute public path: %w", err)
	}
	outputDir, err := filepath.Abs(cfg.Site.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute output path: %w", err)
	}
	if publicDir == outputDir {
		return nil, fmt.Errorf("site.output_dir must differ from site.public_dir")
	}

	targets := make([]target, 0, len(cfg.Devices))
	for _, d := range cfg.Devices {
		profile, err := d.Profile()
		if err != nil {
			return nil, err
		}
		targets = append(targets, target{name: d.Name, profile: profile})
	}

	return &SiteBuilder{
		publicDir: publicDir,
		outputDir: outputDir,
		query:     cfg.Query,
		settings:  settings,
		targets:   targets,
	}, nil
}

// PublicDir returns the absolute source directory
func (b *SiteBuilder) PublicDir() string {
	return b.publicDir
}

// OutputDir returns the absolute root of the device trees
func (b *SiteBuilder) OutputDir() string {
	return b.outputDir
}

// DeviceDir returns the output directory for a device
func (b *SiteBuilder) DeviceDir(device string) string {
	return filepath.Join(b.outputDir, device)
}

// Build rewrites the whole public directory for every device. Devices are
// built concurrently; pages within a device are processed in walk order.
func (b *SiteBuilder) Build(ctx context.Context) ([]DeviceResult, error) {
	results := make([]DeviceResult, len(b.targets))

	g, ctx := errgroup.WithContext(ctx)
	for i, t := range b.targets {
		i, t := i, t
		g.Go(func() error {
			res, err := b.buildDevice(ctx, t)
			if err != nil {
				return fmt.Errorf("device %s: %w", t.name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (b *SiteBuilder) buildDevice(ctx context.Context, t target) (DeviceResult, error) {
	decision := variant.Decide(t.profile, b.settings)
	res := DeviceResult{Device: t.name, Suffix: decision.Suffix, Decision: decision}
	dst := b.DeviceDir(t.name)

	// Remove existing device tree if it exists
	if err := os.RemoveAll(dst); err != nil && !os.IsNotExist(err) {
		return res, fmt.Errorf("failed to remove old output: %w", err)
	}

	err := filepath.WalkDir(b.publicDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() {
			// Output nested inside the public dir must not be walked
			if path == b.outputDir {
				return filepath.SkipDir
			}
			rel, err := filepath.Rel(b.publicDir, path)
			if err != nil {
				return err
			}
			return os.MkdirAll(filepath.Join(dst, rel), 0755)
		}

		rel, err := filepath.Rel(b.publicDir, path)
		if err != nil {
			return err
		}
		out := filepath.Join(dst, rel)

		if !IsPage(path) {
			info, err := d.Info()
			if err != nil {
				return err
			}
			res.Copied++
			return copyFile(path, out, info.Mode())
		}

		batch, err := b.rewritePage(path, out, t)
		if err != nil {
			return err
		}
		res.Pages++
		res.Images += batch.Rewritten()
		res.Skipped += len(batch.Elements) - batch.Rewritten()
		return nil
	})
	if err != nil {
		return res, err
	}

	slog.InfoContext(ctx, "device.built",
		"device", t.name, "suffix", res.Suffix, "pages", res.Pages, "images", res.Images, "copied", res.Copied)
	return res, nil
}

// BuildPage rewrites a single page of the public directory for every device
func (b *SiteBuilder) BuildPage(ctx context.Context, path string) error {
	rel, err := b.relPath(path)
	if err != nil {
		return err
	}

	for _, t := range b.targets {
		if err := ctx.Err(); err != nil {
			return err
		}
		out := filepath.Join(b.DeviceDir(t.name), rel)
		batch, err := b.rewritePage(path, out, t)
		if err != nil {
			return fmt.Errorf("device %s: %w", t.name, err)
		}
		slog.DebugContext(ctx, "page.rewritten", "device", t.name, "page", rel, "images", batch.Rewritten())
	}
	return nil
}

// RemovePage deletes a page from every device tree
func (b *SiteBuilder) RemovePage(path string) error {
	rel, err := b.relPath(path)
	if err != nil {
		return err
	}
	for _, t := range b.targets {
		if err := os.Remove(filepath.Join(b.DeviceDir(t.name), rel)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s for %s: %w", rel, t.name, err)
		}
	}
	return nil
}

// RemoveTree deletes a folder of the public directory from every device tree
func (b *SiteBuilder) RemoveTree(path string) error {
	rel, err := b.relPath(path)
	if err != nil {
		return err
	}
	if rel == "." {
		return fmt.Errorf("refusing to remove the whole site for %s", path)
	}
	for _, t := range b.targets {
		if err := os.RemoveAll(filepath.Join(b.DeviceDir(t.name), rel)); err != nil {
			return fmt.Errorf("failed to remove %s for %s: %w", rel, t.name, err)
		}
	}
	return nil
}

func (b *SiteBuilder) relPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(b.publicDir, abs)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside %s", path, b.publicDir)
	}
	return rel, nil
}

// rewritePage applies a fresh selector to one page so that debug reports land
// in that page's own results region
func (b *SiteBuilder) rewritePage(src, dst string, t target) (variant.Batch, error) {
	f, err := os.Open(src)
	if err != nil {
		return variant.Batch{}, err
	}
	defer f.Close()

	doc, err := page.Load(f)
	if err != nil {
		return variant.Batch{}, fmt.Errorf("%s: %w", src, err)
	}

	sel, err := variant.NewWithSettings(b.settings, t.profile, variant.WithReporter(doc.ResultsReporter()))
	if err != nil {
		return variant.Batch{}, err
	}
	batch := doc.Apply(sel, b.query)

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return variant.Batch{}, fmt.Errorf("failed to create output directory: %w", err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return variant.Batch{}, err
	}
	if err := doc.Render(out); err != nil {
		out.Close()
		return variant.Batch{}, err
	}
	return batch, out.Close()
}

// IsPage reports whether path is an HTML page
func IsPage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return true
	}
	return false
}

// copyFile copies a single file
func copyFile(src, dst string, mode os.FileMode) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer dstFile.Close()

	_, err = io.Copy(dstFile, srcFile)
	return err
}
