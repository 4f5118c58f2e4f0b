package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/roofkit/roof-customizer/internal/catalog"
	"github.com/roofkit/roof-customizer/internal/metrics"
	"github.com/roofkit/roof-customizer/internal/preview"
	"github.com/roofkit/roof-customizer/internal/resolver"
	"github.com/roofkit/roof-customizer/internal/roof"
)

type errResp struct {
	Err string `json:"err"`
}

type catalogResp struct {
	Version string          `json:"version,omitempty"`
	Default catalog.Asset   `json:"default"`
	Entries []catalog.Entry `json:"entries"`
}

// Handlers serves the JSON API.
type Handlers struct {
	resolver *resolver.CatalogResolver
	renderer *preview.Renderer
	metrics  *metrics.Metrics
	log      *zap.Logger
}

// NewHandlers wires the HTTP handlers. renderer and m may be nil.
func NewHandlers(r *resolver.CatalogResolver, renderer *preview.Renderer, m *metrics.Metrics, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handlers{resolver: r, renderer: renderer, metrics: m, log: log.Named("http")}
}

// Routes builds the request multiplexer.
func (h *Handlers) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /ping", h.instrument("ping", h.handlePing))
	mux.Handle("GET /options", h.instrument("options", h.handleOptions))
	mux.Handle("GET /resolve", h.instrument("resolve", h.handleResolve))
	mux.Handle("GET /catalog", h.instrument("catalog", h.handleCatalog))
	mux.Handle("GET /preview", h.instrument("preview", h.handlePreview))
	if h.metrics != nil {
		mux.Handle("GET /metrics", h.metrics.Handler())
	}
	return mux
}

func parseInt(r *http.Request, key string) (int, bool, string) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, false, ""
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, "invalid " + key
	}
	return v, true, ""
}

func parseString(r *http.Request, key string) *string {
	if !r.URL.Query().Has(key) {
		return nil
	}
	v := r.URL.Query().Get(key)
	return &v
}

// parseSelection starts from the defaults and applies the query as a
// control update, so numeric values are clamped.
func parseSelection(r *http.Request) (roof.Selection, string) {
	u := roof.Update{
		Color:    parseString(r, "color"),
		Style:    parseString(r, "style"),
		Material: parseString(r, "material"),
	}
	for _, f := range []struct {
		key string
		dst **int
	}{
		{"windows", &u.WindowCount},
		{"height", &u.Height},
		{"length", &u.Length},
	} {
		v, ok, msg := parseInt(r, f.key)
		if msg != "" {
			return roof.Selection{}, msg
		}
		if ok {
			*f.dst = roof.Int(v)
		}
	}
	return roof.DefaultSelection().Apply(u), ""
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handlers) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) handleOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, roof.Options())
}

func (h *Handlers) handleResolve(w http.ResponseWriter, r *http.Request) {
	sel, msg := parseSelection(r)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, errResp{Err: msg})
		return
	}
	res := h.resolver.Resolve(sel)
	h.log.Debug("resolved",
		zap.String("key", res.Key),
		zap.String("asset", res.Asset.String()),
		zap.Bool("fallback", res.Fallback))
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) handleCatalog(w http.ResponseWriter, r *http.Request) {
	cat := h.resolver.Catalog()
	writeJSON(w, http.StatusOK, catalogResp{
		Version: cat.Version(),
		Default: cat.Default(),
		Entries: cat.Entries(),
	})
}

func (h *Handlers) handlePreview(w http.ResponseWriter, r *http.Request) {
	if h.renderer == nil {
		writeJSON(w, http.StatusNotFound, errResp{Err: "previews disabled"})
		return
	}
	sel, msg := parseSelection(r)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, errResp{Err: msg})
		return
	}
	size, err := preview.ParseSize(r.URL.Query().Get("size"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errResp{Err: err.Error()})
		return
	}

	res := h.resolver.Resolve(sel)
	img, err := h.renderer.Render(res.Asset, size)
	if err != nil {
		code := http.StatusInternalServerError
		switch {
		case errors.Is(err, os.ErrNotExist):
			code = http.StatusNotFound
		case errors.Is(err, preview.ErrAssetOutsideRoot):
			code = http.StatusForbidden
		}
		h.log.Warn("preview failed", zap.String("asset", res.Asset.String()), zap.Error(err))
		writeJSON(w, code, errResp{Err: err.Error()})
		return
	}

	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("X-Roof-Key", res.Key)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	_, _ = w.Write(img.Data)
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.code = code
	s.ResponseWriter.WriteHeader(code)
}

func (h *Handlers) instrument(route string, fn http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		fn(rec, r)
		h.metrics.ObserveRequest(route, strconv.Itoa(rec.code), time.Since(start))
	})
}
