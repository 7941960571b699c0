package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"

	"github.com/tobinwells/endex/internal/endexfs"
)

// CLIConfig holds endexctl's own defaults, loaded from a JSONC file so
// operators can comment their config. It never reaches pkg/endex —
// the library itself takes no config file, only process-wide settings.
type CLIConfig struct {
	Capacity  uint32 `json:"capacity,omitempty"`
	Retention int    `json:"retention_days,omitempty"`
}

// ConfigFileName is the default CLI config file name, looked up in the
// volume directory.
const ConfigFileName = ".endexctl.json"

// DefaultCLIConfig returns the baseline config used when no file is
// present.
func DefaultCLIConfig() CLIConfig {
	return CLIConfig{Retention: 30}
}

// LoadCLIConfig loads dir/.endexctl.json if present, merging it over
// DefaultCLIConfig. A missing file is not an error.
func LoadCLIConfig(dir string) (CLIConfig, error) {
	cfg := DefaultCLIConfig()

	path := filepath.Join(dir, ConfigFileName)

	data, err := os.ReadFile(path) //nolint:gosec // operator-controlled config path
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}

		return CLIConfig{}, fmt.Errorf("reading %s: %w", path, err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return CLIConfig{}, fmt.Errorf("invalid JSONC in %s: %w", path, err)
	}

	var fileCfg CLIConfig
	if err := json.Unmarshal(standardized, &fileCfg); err != nil {
		return CLIConfig{}, fmt.Errorf("invalid config in %s: %w", path, err)
	}

	return mergeCLIConfig(cfg, fileCfg), nil
}

func mergeCLIConfig(base, overlay CLIConfig) CLIConfig {
	if overlay.Capacity != 0 {
		base.Capacity = overlay.Capacity
	}

	if overlay.Retention != 0 {
		base.Retention = overlay.Retention
	}

	return base
}

// SaveCLIConfig writes cfg to dir/.endexctl.json atomically.
func SaveCLIConfig(dir string, cfg CLIConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	path := filepath.Join(dir, ConfigFileName)

	return endexfs.WriteAtomic(path, data, 0o600)
}
