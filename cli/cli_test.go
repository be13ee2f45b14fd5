package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rightimage/variant"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--color", "never"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

// --- decide ---

func TestDecide_AppleStandard(t *testing.T) {
	out, err := run(t, "", "decide", "--width", "1024", "--height", "768", "--ratio", "2", "photo.jpg")
	require.NoError(t, err)

	assert.Contains(t, out, "1024x768")
	assert.Contains(t, out, "medium@2x")
	assert.Contains(t, out, "photo.jpg → photo-medium@2x.jpg")
}

func TestDecide_SteppingWithPreset(t *testing.T) {
	out, err := run(t, "", "decide", "--preset", "ipad", "--set", "appleStandard=false", "hero.png")
	require.NoError(t, err)

	// 1024 max dimension at 2x steps medium up to large
	assert.Contains(t, out, "hero.png → hero-large.png")
}

func TestDecide_DebugReport(t *testing.T) {
	out, err := run(t, "", "decide", "--preset", "laptop", "--set", "debug=true", "a.jpg")
	require.NoError(t, err)

	assert.Contains(t, out, "Screen Width: 1366")
	assert.Contains(t, out, "Final Image Source: a-large.jpg")
}

func TestDecide_ConfigurationError(t *testing.T) {
	_, err := run(t, "", "decide", "--preset", "ipad", "--set", "small=abc")
	require.Error(t, err)

	var cfgErr *variant.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "small only accepts integer values.", cfgErr.Message)
}

func TestDecide_UnknownDevice(t *testing.T) {
	_, err := run(t, "", "decide", "--device", "fridge")
	assert.ErrorContains(t, err, "not defined")
}

// --- rewrite ---

func TestRewrite_Stdin(t *testing.T) {
	html := `<html><body><img data-baseImage="img/a.jpg"><img src="b.svg"></body></html>`
	out, err := run(t, html, "rewrite", "--preset", "iphone-se")
	require.NoError(t, err)

	assert.Contains(t, out, `src="img/a-xs@2x.jpg"`)
	assert.Contains(t, out, `src="b.svg"`)
}

func TestRewrite_FileToFile(t *testing.T) {
	tmp := t.TempDir()
	in := filepath.Join(tmp, "in.html")
	outPath := filepath.Join(tmp, "out.html")
	require.NoError(t, os.WriteFile(in, []byte(`<img class="x" data-baseImage="a.jpg"><img data-baseImage="b.jpg">`), 0o644))

	_, err := run(t, "", "rewrite", in, "--out", outPath, "--query", "img.x", "--width", "1920", "--height", "1080")
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `src="a-large.jpg"`)
	assert.NotContains(t, string(data), "b-large.jpg")
}

func TestRewrite_InvalidSettingsLeavesOutputUntouched(t *testing.T) {
	out, err := run(t, `<img data-baseImage="a.jpg">`, "rewrite", "--preset", "ipad", "--set", "medium=2000")
	require.Error(t, err)
	assert.Empty(t, out)
}

// --- build ---

func TestBuild_FromConfig(t *testing.T) {
	tmp := t.TempDir()
	public := filepath.Join(tmp, "public")
	require.NoError(t, os.MkdirAll(public, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(public, "index.html"), []byte(`<img data-baseImage="hero.jpg">`), 0o644))

	cfgPath := filepath.Join(tmp, "rightimage.yaml")
	cfgYAML := "site:\n" +
		"  public_dir: " + public + "\n" +
		"  output_dir: " + filepath.Join(tmp, "variants") + "\n" +
		"devices:\n" +
		"  - name: phone\n" +
		"    preset: iphone-plus\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgYAML), 0o644))

	out, err := run(t, "", "--config", cfgPath, "build")
	require.NoError(t, err)
	assert.Contains(t, out, "xs@3x")

	data, err := os.ReadFile(filepath.Join(tmp, "variants", "phone", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `src="hero-xs@3x.jpg"`)
}

func TestBuild_RequiresSite(t *testing.T) {
	_, err := run(t, "", "build")
	assert.ErrorContains(t, err, "site.public_dir is required")
}

// --- helpers ---

func TestParseOverrides(t *testing.T) {
	got, err := parseOverrides(map[string]any{"small": 600}, []string{"large=1400", "support3x=true", "medium=wide"})
	require.NoError(t, err)
	assert.Equal(t, 600, got["small"])
	assert.Equal(t, 1400, got["large"])
	assert.Equal(t, true, got["support3x"])
	assert.Equal(t, "wide", got["medium"])

	_, err = parseOverrides(nil, []string{"novalue"})
	assert.Error(t, err)
}

func TestParseColorMode(t *testing.T) {
	for _, s := range []string{"", "auto", "always", "never"} {
		_, err := ParseColorMode(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseColorMode("rainbow")
	assert.Error(t, err)
}
