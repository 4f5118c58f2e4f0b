// Package preview serves the image behind a catalog asset, optionally
// shrunk to a bounded size.
package preview

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"github.com/roofkit/roof-customizer/internal/catalog"
	"github.com/roofkit/roof-customizer/internal/metrics"
)

var (
	ErrAssetOutsideRoot = errors.New("asset path escapes asset directory")
	ErrUnknownSize      = errors.New("unknown preview size")
)

// Size selects how large a rendered preview may be.
type Size string

const (
	SizeFull   Size = "full"
	SizeThumb  Size = "thumb"
	SizeMedium Size = "medium"
)

const (
	// max dimension in pixels
	maxSizeThumb  = 300
	maxSizeMedium = 800

	qualityThumb  = 60
	qualityMedium = 75
)

// ParseSize maps a query value to a Size; empty means full.
func ParseSize(s string) (Size, error) {
	switch Size(s) {
	case "", SizeFull:
		return SizeFull, nil
	case SizeThumb, SizeMedium:
		return Size(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSize, s)
}

// Image is rendered preview bytes and their content type.
type Image struct {
	Data        []byte
	ContentType string
}

// Renderer loads assets from a directory and keeps resized copies in memory.
type Renderer struct {
	root    string
	log     *zap.Logger
	metrics *metrics.Metrics

	mu    sync.RWMutex
	cache map[string]Image // key: asset + "|" + size
}

// NewRenderer creates a renderer rooted at dir.
func NewRenderer(dir string, log *zap.Logger, m *metrics.Metrics) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{
		root:    dir,
		log:     log.Named("preview"),
		metrics: m,
		cache:   make(map[string]Image),
	}
}

// Path maps an asset reference onto a file under the renderer root.
func (r *Renderer) Path(a catalog.Asset) (string, error) {
	if strings.Contains(string(a), "..") {
		return "", fmt.Errorf("%w: %s", ErrAssetOutsideRoot, a)
	}
	clean := path.Clean("/" + string(a))
	return filepath.Join(r.root, filepath.FromSlash(clean)), nil
}

// Render returns the asset's bytes at the requested size.
func (r *Renderer) Render(a catalog.Asset, size Size) (Image, error) {
	key := string(a) + "|" + string(size)
	r.mu.RLock()
	img, ok := r.cache[key]
	r.mu.RUnlock()
	r.metrics.RecordPreviewCache(ok)
	if ok {
		return img, nil
	}

	p, err := r.Path(a)
	if err != nil {
		return Image{}, err
	}
	raw, err := os.ReadFile(p)
	if err != nil {
		return Image{}, fmt.Errorf("read asset %s: %w", a, err)
	}

	img, err = r.render(raw, p, size)
	if err != nil {
		return Image{}, err
	}

	r.mu.Lock()
	r.cache[key] = img
	r.mu.Unlock()
	return img, nil
}

// Purge drops every cached rendition.
func (r *Renderer) Purge() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]Image)
}

func (r *Renderer) render(raw []byte, p string, size Size) (Image, error) {
	ext := strings.ToLower(filepath.Ext(p))
	if ext == ".svg" {
		return Image{Data: raw, ContentType: "image/svg+xml"}, nil
	}
	if size == SizeFull {
		return Image{Data: raw, ContentType: contentType(ext)}, nil
	}

	var maxDim, quality int
	switch size {
	case SizeThumb:
		maxDim, quality = maxSizeThumb, qualityThumb
	case SizeMedium:
		maxDim, quality = maxSizeMedium, qualityMedium
	default:
		return Image{}, fmt.Errorf("%w: %q", ErrUnknownSize, size)
	}

	src, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return Image{}, fmt.Errorf("decode %s: %w", p, err)
	}

	b := src.Bounds()
	var dst image.Image = src
	if b.Dx() > maxDim || b.Dy() > maxDim {
		// zero keeps the aspect ratio
		if b.Dx() >= b.Dy() {
			dst = imaging.Resize(src, maxDim, 0, imaging.Lanczos)
		} else {
			dst = imaging.Resize(src, 0, maxDim, imaging.Lanczos)
		}
		r.log.Debug("resized preview",
			zap.String("path", p),
			zap.Int("width", b.Dx()),
			zap.Int("height", b.Dy()),
			zap.Int("max", maxDim))
	}

	var buf bytes.Buffer
	if format == "png" {
		// keep transparency
		if err := png.Encode(&buf, dst); err != nil {
			return Image{}, fmt.Errorf("encode %s: %w", p, err)
		}
		return Image{Data: buf.Bytes(), ContentType: "image/png"}, nil
	}
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
		return Image{}, fmt.Errorf("encode %s: %w", p, err)
	}
	return Image{Data: buf.Bytes(), ContentType: "image/jpeg"}, nil
}

func contentType(ext string) string {
	switch ext {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	}
	return "application/octet-stream"
}
