// Package catalog holds the static table mapping catalog keys to preview
// assets. A Catalog is built once and never mutated; reloading produces a
// new Catalog.
package catalog

import "sort"

// Catalog is an immutable key to asset table with an always-present default.
type Catalog struct {
	version string
	def     Asset
	assets  map[string]Asset
}

// New validates raw and builds a Catalog from it.
func New(raw RawCatalog) (*Catalog, error) {
	if err := ValidateRaw(raw); err != nil {
		return nil, err
	}
	assets := make(map[string]Asset, len(raw.Assets))
	for k, v := range raw.Assets {
		assets[k] = Asset(v)
	}
	return &Catalog{
		version: raw.Version,
		def:     Asset(raw.Default),
		assets:  assets,
	}, nil
}

// Lookup returns the asset stored under key.
func (c *Catalog) Lookup(key string) (Asset, bool) {
	a, ok := c.assets[key]
	return a, ok
}

// Default is the asset used when a key has no entry.
func (c *Catalog) Default() Asset { return c.def }

// Version is the document version the catalog was built from.
func (c *Catalog) Version() string { return c.version }

// Len returns the number of keyed entries, not counting the default.
func (c *Catalog) Len() int { return len(c.assets) }

// Keys returns all keys in sorted order.
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.assets))
	for k := range c.assets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Entries returns every entry sorted by key.
func (c *Catalog) Entries() []Entry {
	keys := c.Keys()
	out := make([]Entry, len(keys))
	for i, k := range keys {
		out[i] = Entry{Key: k, Asset: c.assets[k]}
	}
	return out
}
