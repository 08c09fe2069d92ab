package utils

import (
	"encoding/json"
	"os"

	"github.com/voxelsplace/qbtool/api"
)

// ExportConfigPath is read relative to the working directory unless QBTOOL_CONFIG is set.
const ExportConfigPath = "qbtool.json"

// ExportConfig holds export preferences shared by the file commands.
type ExportConfig struct {
	Generator string  `json:"generator,omitempty"`
	Scale     float32 `json:"scale"`
	ZstdLevel int     `json:"zstd_level"`
	Workers   int     `json:"workers"`
}

// DefaultExportConfig returns the preferences used when no config file is present.
func DefaultExportConfig() ExportConfig {
	return ExportConfig{
		Generator: api.DefaultGenerator,
		Scale:     1,
		ZstdLevel: api.DefaultZstdLevel,
		Workers:   4,
	}
}

func configPath() string {
	if p := os.Getenv("QBTOOL_CONFIG"); p != "" {
		return p
	}
	return ExportConfigPath
}

// LoadExportConfig reads the config file. A missing or invalid file yields
// DefaultExportConfig; fields left out of the file keep their defaults.
func LoadExportConfig() ExportConfig {
	cfg := DefaultExportConfig()
	data, err := os.ReadFile(configPath())
	if err != nil {
		return cfg
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultExportConfig()
	}
	if cfg.Scale <= 0 {
		cfg.Scale = 1
	}
	if cfg.ZstdLevel < 1 || cfg.ZstdLevel > 22 {
		cfg.ZstdLevel = api.DefaultZstdLevel
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return cfg
}

func (c ExportConfig) glbOptions() api.GLBOptions {
	return api.GLBOptions{Generator: c.Generator, Scale: c.Scale}
}
