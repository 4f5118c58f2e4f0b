package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltin(t *testing.T) {
	c, err := Builtin()
	require.NoError(t, err)

	assert.Equal(t, 18, c.Len())
	assert.Equal(t, Asset("/placeholder.svg"), c.Default())

	want := map[string]Asset{
		"red-gable-tile-4":      "/red.png",
		"red-hip-tile-4":        "/hip red.png",
		"blue-gable-tile-1-1-1": "/gable1.png",
		"blue-gable-tile-1-1-2": "/long2.png",
		"blue-gable-tile-1-1-3": "/gable1_length3.png",
		"blue-gable-tile-1-2-1": "/height 2.png",
		"blue-gable-tile-1-2-2": "/gable1_height2_length2.png",
		"blue-gable-tile-1-2-3": "/gable1_height2_length3.png",
		"blue-gable-tile-1-3-1": "/gable1_height3.png",
		"blue-gable-tile-1-3-2": "/gable1_height3_length2.png",
		"blue-gable-tile-1-3-3": "/gable1_height3_length3.png",
		"blue-gable-tile-2":     "/blue.png",
		"blue-gable-tile-3":     "/gable3.png",
		"blue-hip-tile-1":       "/2tile.png",
		"blue-hip-tile-2":       "/tile2.png",
		"blue-hip-tile-3":       "/8tile.png",
		"gray-gable-tile-4":     "/gray.png",
		"gray-hip-tile-4":       "/hip gray.png",
	}
	for k, v := range want {
		got, ok := c.Lookup(k)
		if assert.True(t, ok, "missing %s", k) {
			assert.Equal(t, v, got, k)
		}
	}

	_, ok := c.Lookup("red-gable-tile-medium-2")
	assert.False(t, ok)
}

func TestEntriesSorted(t *testing.T) {
	c, err := New(RawCatalog{Default: "/d.png", Assets: map[string]string{"b": "/b.png", "a": "/a.png"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, c.Keys())
	assert.Equal(t, []Entry{{"a", "/a.png"}, {"b", "/b.png"}}, c.Entries())
}

func TestValidateRaw(t *testing.T) {
	err := ValidateRaw(RawCatalog{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidCatalog))
	assert.Contains(t, err.Error(), "default must be set")
	assert.Contains(t, err.Error(), "assets must not be empty")

	err = ValidateRaw(RawCatalog{
		Default: "placeholder.svg",
		Assets:  map[string]string{"x": "", "y": "y.png", " ": "/z.png"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "default must start with /")
	assert.Contains(t, err.Error(), "assets[x] must not be empty")
	assert.Contains(t, err.Error(), "assets[y] must start with /")
	assert.Contains(t, err.Error(), "assets keys must not be blank")

	assert.NoError(t, ValidateRaw(RawCatalog{Default: "/d.png", Assets: map[string]string{"k": "/k.png"}}))
}

func TestLoaderMergesOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	doc := `version: "2"
default: /fallback.png
assets:
  red-gable-tile-4: /red-v2.png
  red-gable-tile-2: /red2.png
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	c, err := NewLoader().Load(path)
	require.NoError(t, err)

	assert.Equal(t, "2", c.Version())
	assert.Equal(t, Asset("/fallback.png"), c.Default())
	assert.Equal(t, 19, c.Len())

	a, _ := c.Lookup("red-gable-tile-4")
	assert.Equal(t, Asset("/red-v2.png"), a)
	a, _ = c.Lookup("gray-hip-tile-4")
	assert.Equal(t, Asset("/hip gray.png"), a)
}

func TestLoaderMissingOverrideFallsBackToBuiltin(t *testing.T) {
	c, err := NewLoader().Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 18, c.Len())
}

func TestLoaderCacheAndInvalidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default: /one.png\n"), 0o644))

	l := NewLoader()
	c, err := l.Load(path)
	require.NoError(t, err)
	assert.Equal(t, Asset("/one.png"), c.Default())

	require.NoError(t, os.WriteFile(path, []byte("default: /two.png\n"), 0o644))
	c, err = l.Load(path)
	require.NoError(t, err)
	assert.Equal(t, Asset("/one.png"), c.Default(), "served from cache")

	l.Invalidate()
	c, err = l.Load(path)
	require.NoError(t, err)
	assert.Equal(t, Asset("/two.png"), c.Default())
}

func TestLoaderRejectsBadOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default: relative.png\n"), 0o644))

	_, err := NewLoader().Load(path)
	assert.ErrorIs(t, err, ErrInvalidCatalog)

	require.NoError(t, os.WriteFile(path, []byte("assets: [not, a, map]\n"), 0o644))
	_, err = NewLoader().Load(path)
	assert.Error(t, err)
}

func TestLoadFileDoesNotMerge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: x\nassets:\n  red-gable-tile-2: /red2.png\n"), 0o644))

	raw, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x", raw.Version)
	assert.Equal(t, map[string]string{"red-gable-tile-2": "/red2.png"}, raw.Assets)
	assert.Empty(t, raw.Default)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
