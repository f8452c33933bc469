package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/pmarg/reseat/core/metrics"
	"github.com/pmarg/reseat/core/plan"
)

// Config is the top-level service configuration.
type Config struct {
	Logging LoggingConfig  `json:"logging"`
	Store   StoreConfig    `json:"store"`
	Plan    plan.Config    `json:"plan"`
	Undo    UndoConfig     `json:"undo"`
	Metrics metrics.Config `json:"metrics"`
}

// Load reads the configuration from a YAML or JSON file, applying RS_
// environment overrides (RS_STORE__PATH maps to store.path).
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("RS_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "rs_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Logging.SetDefaults()
	cfg.Store.SetDefaults()
	cfg.Plan.SetDefaults()
	cfg.Undo.SetDefaults()
	cfg.Metrics.SetDefaults()
	if err := cfg.Logging.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Plan.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// StoreConfig locates the embedded database.
type StoreConfig struct {
	Path string `json:"path"`
}

// SetDefaults applies sane defaults.
func (c *StoreConfig) SetDefaults() {
	if c.Path == "" {
		c.Path = "reseat.db"
	}
}

// UndoConfig bounds the undo window.
type UndoConfig struct {
	WindowSeconds int `json:"window_seconds"`
}

// SetDefaults applies sane defaults.
func (c *UndoConfig) SetDefaults() {
	if c.WindowSeconds <= 0 {
		c.WindowSeconds = 120
	}
}
