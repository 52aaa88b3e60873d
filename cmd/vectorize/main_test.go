package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.Execute()

	return stdout.String(), err
}

func writeSquarePNG(t *testing.T, dir, name string) string {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			c := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
			if x >= 8 && x < 24 && y >= 8 && y < 24 {
				c = color.NRGBA{A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	return path
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "vectorize dev")
}

func TestProfiles(t *testing.T) {
	tests := map[string]struct {
		args []string
		want []string
	}{
		"defaults": {
			args: []string{"profiles"},
			want: []string{"fast", "balanced", "detailed", "polygon", "spline"},
		},
		"markdown": {
			args: []string{"profiles", "--markdown"},
			want: []string{"| fast |", "| detailed |"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func TestProfilesFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profiles:\n  - {name: only, mode: pixel}\n"), 0o600))

	out, err := execute(t, "profiles", "--profiles", path)
	require.NoError(t, err)
	assert.Contains(t, out, "only")
	assert.NotContains(t, out, "balanced")
}

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	src := writeSquarePNG(t, dir, "square.png")
	outDir := filepath.Join(dir, "out")
	report := filepath.Join(dir, "cascade.dot")

	out, err := execute(t, "convert", "--no-fallback", "--out", outDir, "--report", report, "--stats", "--bitmap", src)
	require.NoError(t, err)
	assert.Contains(t, out, "success")
	assert.Contains(t, out, "classify")

	svg, err := os.ReadFile(filepath.Join(outDir, "square.svg"))
	require.NoError(t, err)
	assert.Contains(t, string(svg), `viewBox="0 0 32 32"`)

	assert.FileExists(t, filepath.Join(outDir, "square.bitmap.png"))

	dot, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.Contains(t, string(dot), "digraph")
}

func TestConvertBackground(t *testing.T) {
	dir := t.TempDir()
	src := writeSquarePNG(t, dir, "square.png")

	_, err := execute(t, "convert", "--no-fallback", "--background", "--out", dir, src)
	require.NoError(t, err)

	svg, err := os.ReadFile(filepath.Join(dir, "square.svg"))
	require.NoError(t, err)
	assert.Contains(t, string(svg), `<rect x="0" y="0" width="32" height="32" fill="#ffffff"/>`)
	assert.Contains(t, string(svg), `<path d="M`)
}

func TestConvertFailure(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "broken.png")
	require.NoError(t, os.WriteFile(src, []byte("not an image"), 0o600))

	out, err := execute(t, "convert", "--no-fallback", "--out", dir, src)
	require.EqualError(t, err, "1 of 1 conversions failed")
	assert.Contains(t, out, "failure")
	assert.NoFileExists(t, filepath.Join(dir, "broken.svg"))
}

func TestConvertMissingFile(t *testing.T) {
	_, err := execute(t, "convert", "--no-fallback", filepath.Join(t.TempDir(), "missing.png"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.png")
}

func TestConvertConfigFile(t *testing.T) {
	dir := t.TempDir()
	src := writeSquarePNG(t, dir, "logo.png")
	cfg := filepath.Join(dir, "vectorize.toml")
	require.NoError(t, os.WriteFile(cfg, []byte("[log]\nformat = \"json\"\n\n[trace]\nno_fallback = true\nconcurrency = 1\n"), 0o600))

	_, err := execute(t, "--config", cfg, "convert", "--out", dir, src)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "logo.svg"))
}

func TestConvertBadConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "vectorize.toml")
	require.NoError(t, os.WriteFile(cfg, []byte("[trace]\nconcurrency = -2\n"), 0o600))

	_, err := execute(t, "--config", cfg, "profiles")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}
