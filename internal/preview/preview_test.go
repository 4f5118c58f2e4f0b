package preview

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roofkit/roof-customizer/internal/metrics"
)

func writePNG(t *testing.T, dir, name string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.NRGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o644))
}

func decode(t *testing.T, b []byte) image.Image {
	t.Helper()
	img, _, err := image.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	return img
}

func TestParseSize(t *testing.T) {
	for in, want := range map[string]Size{"": SizeFull, "full": SizeFull, "thumb": SizeThumb, "medium": SizeMedium} {
		got, err := ParseSize(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseSize("huge")
	assert.ErrorIs(t, err, ErrUnknownSize)
}

func TestRenderResizes(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "hip red.png", 1000, 500)
	m := metrics.New()
	r := NewRenderer(dir, nil, m)

	img, err := r.Render("/hip red.png", SizeThumb)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, image.Rect(0, 0, 300, 150), decode(t, img.Data).Bounds())

	img, err = r.Render("/hip red.png", SizeMedium)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 800, 400), decode(t, img.Data).Bounds())

	full, err := r.Render("/hip red.png", SizeFull)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 1000, 500), decode(t, full.Data).Bounds())

	// second request is served from memory
	_, err = r.Render("/hip red.png", SizeThumb)
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PreviewCache.WithLabelValues("hit")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.PreviewCache.WithLabelValues("miss")))
}

func TestRenderSmallImageKeepsSize(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "gable1.png", 120, 80)
	img, err := NewRenderer(dir, nil, nil).Render("/gable1.png", SizeThumb)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 120, 80), decode(t, img.Data).Bounds())
}

func TestRenderSVGPassThrough(t *testing.T) {
	dir := t.TempDir()
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg"/>`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "placeholder.svg"), svg, 0o644))

	img, err := NewRenderer(dir, nil, nil).Render("/placeholder.svg", SizeThumb)
	require.NoError(t, err)
	assert.Equal(t, "image/svg+xml", img.ContentType)
	assert.Equal(t, svg, img.Data)
}

func TestRenderErrors(t *testing.T) {
	r := NewRenderer(t.TempDir(), nil, nil)

	_, err := r.Render("/../../etc/passwd", SizeFull)
	assert.ErrorIs(t, err, ErrAssetOutsideRoot)

	_, err = r.Render("/missing.png", SizeFull)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPurge(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "a.png", 10, 10)
	r := NewRenderer(dir, nil, nil)
	_, err := r.Render("/a.png", SizeFull)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(dir, "a.png")))
	_, err = r.Render("/a.png", SizeFull)
	require.NoError(t, err, "cached")

	r.Purge()
	_, err = r.Render("/a.png", SizeFull)
	assert.Error(t, err)
}

func TestPath(t *testing.T) {
	r := NewRenderer("/srv/public", nil, nil)
	p, err := r.Path("/height 2.png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/srv/public", "height 2.png"), p)
}
