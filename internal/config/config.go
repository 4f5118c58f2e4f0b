// Package config loads service settings from YAML with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/roofkit/roof-customizer/internal/logging"
)

// Config is the full service configuration.
type Config struct {
	HTTPAddr        string         `yaml:"http_addr"`
	GRPCAddr        string         `yaml:"grpc_addr"`
	CatalogPath     string         `yaml:"catalog"`   // optional override catalog
	AssetDir        string         `yaml:"asset_dir"` // where preview images live
	Watch           bool           `yaml:"watch"`
	WatchDebounce   time.Duration  `yaml:"watch_debounce"` // zero keeps the watcher default
	ShutdownTimeout time.Duration  `yaml:"shutdown_timeout"`
	Log             logging.Config `yaml:"log"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		HTTPAddr:        ":8080",
		GRPCAddr:        ":9090",
		AssetDir:        "public",
		ShutdownTimeout: 10 * time.Second,
		Log: logging.Config{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads .env (if any), then the YAML file at path (optional), then
// applies ROOF_* environment overrides.
func Load(path string) (Config, error) {
	// .env is optional; real environment variables win over it
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		if err := readYAML(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readYAML(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(b, cfg)
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("ROOF_HTTP_ADDR", &cfg.HTTPAddr)
	str("ROOF_GRPC_ADDR", &cfg.GRPCAddr)
	str("ROOF_CATALOG", &cfg.CatalogPath)
	str("ROOF_ASSET_DIR", &cfg.AssetDir)
	str("ROOF_LOG_LEVEL", &cfg.Log.Level)
	str("ROOF_LOG_FORMAT", &cfg.Log.Format)

	// PORT is what most hosting platforms set
	if v, ok := lookup("PORT"); ok && v != "" {
		cfg.HTTPAddr = ":" + strings.TrimPrefix(v, ":")
	}

	if v, ok := lookup("ROOF_WATCH"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid ROOF_WATCH %q: %w", v, err)
		}
		cfg.Watch = b
	}
	if v, ok := lookup("ROOF_WATCH_DEBOUNCE"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid ROOF_WATCH_DEBOUNCE %q: %w", v, err)
		}
		cfg.WatchDebounce = d
	}
	if v, ok := lookup("ROOF_SHUTDOWN_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid ROOF_SHUTDOWN_TIMEOUT %q: %w", v, err)
		}
		cfg.ShutdownTimeout = d
	}
	return nil
}
