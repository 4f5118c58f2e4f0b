package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidCatalog wraps every validation failure.
var ErrInvalidCatalog = errors.New("invalid catalog")

// ValidateRaw checks that a merged RawCatalog can back a resolver.
func ValidateRaw(cfg RawCatalog) error {
	var errs []string

	// default must always resolve
	switch {
	case strings.TrimSpace(cfg.Default) == "":
		errs = append(errs, "default must be set")
	case !strings.HasPrefix(cfg.Default, "/"):
		errs = append(errs, "default must start with /")
	}

	if len(cfg.Assets) == 0 {
		errs = append(errs, "assets must not be empty")
	}

	keys := make([]string, 0, len(cfg.Assets))
	for k := range cfg.Assets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := cfg.Assets[k]
		if strings.TrimSpace(k) == "" {
			errs = append(errs, "assets keys must not be blank")
			continue
		}
		if strings.TrimSpace(v) == "" {
			errs = append(errs, fmt.Sprintf("assets[%s] must not be empty", k))
		} else if !strings.HasPrefix(v, "/") {
			errs = append(errs, fmt.Sprintf("assets[%s] must start with /", k))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidCatalog, strings.Join(errs, "; "))
	}
	return nil
}
