package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var builtin []byte

// Loader reads catalog YAML and merges builtin → override file.
type Loader struct {
	mu    sync.RWMutex
	cache map[string]RawCatalog // key: override path, "" for builtin only
}

// NewLoader creates a catalog loader.
func NewLoader() *Loader {
	return &Loader{cache: make(map[string]RawCatalog)}
}

// Builtin returns the catalog embedded in the binary.
func Builtin() (*Catalog, error) {
	raw, err := Parse(builtin)
	if err != nil {
		return nil, fmt.Errorf("parse builtin: %w", err)
	}
	return New(raw)
}

// Load merges the override file at path (optional) over the builtin
// catalog and builds the result. An empty path means builtin only.
func (l *Loader) Load(path string) (*Catalog, error) {
	raw, err := l.LoadMerged(path)
	if err != nil {
		return nil, err
	}
	return New(raw)
}

// LoadMerged returns the merged RawCatalog without validating it.
func (l *Loader) LoadMerged(path string) (RawCatalog, error) {
	l.mu.RLock()
	if cfg, ok := l.cache[path]; ok {
		l.mu.RUnlock()
		return cfg, nil
	}
	l.mu.RUnlock()

	base, err := Parse(builtin)
	if err != nil {
		return RawCatalog{}, fmt.Errorf("parse builtin: %w", err)
	}
	merged := base
	if path != "" {
		over, err := readYAML(path)
		if err != nil {
			return RawCatalog{}, fmt.Errorf("read %s: %w", path, err)
		}
		merged = mergeRaw(base, over)
	}

	l.mu.Lock()
	l.cache[path] = merged
	l.mu.Unlock()

	return merged, nil
}

// Invalidate clears the loader's cache. Call after a watched file changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]RawCatalog)
}

// LoadFile parses a single catalog file without merging it.
func LoadFile(path string) (RawCatalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return RawCatalog{}, err
	}
	return Parse(b)
}

// Parse decodes a catalog document.
func Parse(b []byte) (RawCatalog, error) {
	var cfg RawCatalog
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawCatalog{}, err
	}
	return cfg, nil
}

// readYAML loads a catalog file. Missing files return a zero catalog, no error.
func readYAML(path string) (RawCatalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RawCatalog{}, nil
		}
		return RawCatalog{}, err
	}
	return Parse(b)
}

// mergeRaw lays b over a. Scalars in b win when set; asset entries in b
// replace or extend those in a.
func mergeRaw(a, b RawCatalog) RawCatalog {
	out := a
	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}
	if b.Default != "" {
		out.Default = b.Default
	}

	out.Assets = make(map[string]string, len(a.Assets)+len(b.Assets))
	for k, v := range a.Assets {
		out.Assets[k] = v
	}
	for k, v := range b.Assets {
		out.Assets[k] = v
	}
	return out
}
