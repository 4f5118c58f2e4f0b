package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roofkit/roof-customizer/internal/catalog"
	"github.com/roofkit/roof-customizer/internal/resolver"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestResolveCommandText(t *testing.T) {
	out, err := run(t, "resolve", "--height", "2", "--length", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "key:   blue-gable-tile-1-2-2")
	assert.Contains(t, out, "asset: /gable1_height2_length2.png\n")
	assert.Contains(t, out, "Height: 2")
}

func TestResolveCommandClampsUnlessRaw(t *testing.T) {
	out, err := run(t, "resolve", "--color", "red", "--windows", "4", "--json")
	require.NoError(t, err)
	var res resolver.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "red-gable-tile-3", res.Key)
	assert.True(t, res.Fallback)

	out, err = run(t, "resolve", "--color", "red", "--windows", "4", "--raw", "--json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "red-gable-tile-4", res.Key)
	assert.Equal(t, catalog.Asset("/red.png"), res.Asset)
	assert.False(t, res.Fallback)
}

func TestResolveCommandFallbackNote(t *testing.T) {
	out, err := run(t, "resolve", "--style", "hip", "--windows", "4", "--raw")
	require.NoError(t, err)
	assert.Contains(t, out, "asset: /placeholder.svg (default)")
}

func TestCatalogList(t *testing.T) {
	out, err := run(t, "catalog", "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 19)
	assert.Contains(t, out, "gray-hip-tile-4")
	assert.Contains(t, lines[len(lines)-1], "/placeholder.svg")
}

func TestCatalogValidate(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("assets:\n  red-gable-tile-2: /red2.png\n"), 0o644))
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("assets:\n  red-gable-tile-2: red2.png\n"), 0o644))

	out, err := run(t, "catalog", "validate", good)
	require.NoError(t, err)
	assert.Equal(t, "ok: 19 entries, default /placeholder.svg\n", out)

	_, err = run(t, "catalog", "validate", bad)
	assert.ErrorIs(t, err, catalog.ErrInvalidCatalog)

	_, err = run(t, "catalog", "validate", filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestResolveWithOverrideCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("assets:\n  blue-hip-tile-3: /eight.png\n"), 0o644))

	out, err := run(t, "--catalog", path, "resolve", "--style", "hip", "--windows", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "asset: /eight.png")
}

func TestCatalogValidateStandalone(t *testing.T) {
	dir := t.TempDir()
	partial := filepath.Join(dir, "partial.yaml")
	require.NoError(t, os.WriteFile(partial, []byte("assets:\n  red-gable-tile-2: /red2.png\n"), 0o644))
	full := filepath.Join(dir, "full.yaml")
	require.NoError(t, os.WriteFile(full, []byte("default: /none.svg\nassets:\n  red-gable-tile-2: /red2.png\n"), 0o644))

	// without the built-in default the partial file does not stand alone
	_, err := run(t, "catalog", "validate", "--standalone", partial)
	assert.ErrorIs(t, err, catalog.ErrInvalidCatalog)

	out, err := run(t, "catalog", "validate", "--standalone", full)
	require.NoError(t, err)
	assert.Equal(t, "ok: 1 entries, default /none.svg\n", out)

	_, err = run(t, "catalog", "validate", "--standalone")
	assert.Error(t, err)
}
