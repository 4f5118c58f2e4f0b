// Package resolver maps a roof Selection to its preview asset.
package resolver

import (
	"sync/atomic"

	"github.com/roofkit/roof-customizer/internal/catalog"
	"github.com/roofkit/roof-customizer/internal/metrics"
	"github.com/roofkit/roof-customizer/internal/roof"
)

// Result is the outcome of resolving one Selection.
type Result struct {
	Key       string         `json:"key"`
	Asset     catalog.Asset  `json:"asset"`
	Fallback  bool           `json:"fallback"`
	Selection roof.Selection `json:"selection"`
	Summary   roof.Summary   `json:"summary"`
}

// Resolver turns a Selection into an asset reference. It has no error
// path: a key without an entry resolves to the catalog default.
type Resolver interface {
	Resolve(sel roof.Selection) Result
}

// CatalogResolver resolves against a swappable immutable catalog.
type CatalogResolver struct {
	cat     atomic.Pointer[catalog.Catalog]
	metrics *metrics.Metrics
}

// New creates a resolver backed by cat, which must not be nil. m may be nil.
func New(cat *catalog.Catalog, m *metrics.Metrics) *CatalogResolver {
	if cat == nil {
		panic("resolver: nil catalog")
	}
	r := &CatalogResolver{metrics: m}
	r.cat.Store(cat)
	return r
}

// Resolve derives the catalog key for sel and looks it up.
func (r *CatalogResolver) Resolve(sel roof.Selection) Result {
	res := Lookup(r.cat.Load(), sel)
	r.metrics.RecordResolution(res.Fallback)
	return res
}

// Catalog returns the catalog currently in service.
func (r *CatalogResolver) Catalog() *catalog.Catalog { return r.cat.Load() }

// Swap installs a new catalog and returns the previous one. Nil is ignored.
func (r *CatalogResolver) Swap(cat *catalog.Catalog) *catalog.Catalog {
	if cat == nil {
		return r.cat.Load()
	}
	return r.cat.Swap(cat)
}

// Lookup is the pure resolution rule: derive the key, look it up, and
// substitute the default on a miss.
func Lookup(cat *catalog.Catalog, sel roof.Selection) Result {
	key := sel.Key()
	res := Result{
		Key:       key,
		Selection: sel,
		Summary:   sel.Summary(),
	}
	if asset, ok := cat.Lookup(key); ok {
		res.Asset = asset
		return res
	}
	res.Asset = cat.Default()
	res.Fallback = true
	return res
}
