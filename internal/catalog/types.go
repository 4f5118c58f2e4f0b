// types.go
package catalog

// RawCatalog is a catalog document as read from YAML.
type RawCatalog struct {
	Version string            `yaml:"version"`
	Default string            `yaml:"default"`
	Assets  map[string]string `yaml:"assets"`
	Notes   string            `yaml:"notes,omitempty"`
}

// Asset is a reference to a preview image, e.g. "/hip red.png".
type Asset string

func (a Asset) String() string { return string(a) }

// Entry is one key/asset pair, used when listing a catalog.
type Entry struct {
	Key   string `json:"key"`
	Asset Asset  `json:"asset"`
}
