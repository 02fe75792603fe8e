// Package config resolves inkwell's configuration from defaults, the
// user-level JSONC file, and environment overrides. The session core never
// reads configuration; the CLI resolves it here and passes plain values into
// constructors.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"github.com/tidwall/jsonc"
)

// Load reads configuration: defaults → user config (~/.config/inkwell/
// inkwell.jsonc) deep-merged over them → environment variable overrides.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if path, err := Path(); err == nil {
		if userMap, err := loadJSONC(path); err == nil {
			if err := mergeIntoConfig(&cfg, userMap); err != nil {
				return nil, fmt.Errorf("merging user config: %w", err)
			}
		}
	}

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// Path returns the user config file location.
func Path() (string, error) {
	userDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config dir: %w", err)
	}
	return filepath.Join(userDir, "inkwell", "inkwell.jsonc"), nil
}

// loadJSONC reads a JSONC file and returns it as a map.
func loadJSONC(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	jsonData := jsonc.ToJSON(data)
	var m map[string]any
	if err := json.Unmarshal(jsonData, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return m, nil
}

// mergeIntoConfig marshals the config to a map, deep-merges the source map
// over it, then unmarshals back to the Config struct.
func mergeIntoConfig(cfg *Config, src map[string]any) error {
	cfgBytes, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	var dst map[string]any
	if err := json.Unmarshal(cfgBytes, &dst); err != nil {
		return err
	}

	if err := mergo.Merge(&dst, src, mergo.WithOverride); err != nil {
		return err
	}

	merged, err := json.Marshal(dst)
	if err != nil {
		return err
	}
	return json.Unmarshal(merged, cfg)
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	if name := os.Getenv("INKWELL_PROVIDER"); name != "" {
		cfg.Provider.Name = name
	}
	switch cfg.Provider.Name {
	case "openai":
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			cfg.Provider.APIKey = key
		}
	case "huggingface":
		if token := os.Getenv("HF_API_TOKEN"); token != "" {
			cfg.Provider.APIKey = token
		}
	}
	if port := os.Getenv("INKWELL_PORT"); port != "" {
		var p int
		if _, err := fmt.Sscanf(port, "%d", &p); err == nil && p > 0 {
			cfg.Server.Port = p
		}
	}
}

// DataDir returns the directory for server-side data (continuation history,
// lock files): the configured data_dir or ~/.local/share/inkwell.
func DataDir(cfg *Config) string {
	if cfg.Server.DataDir != "" {
		return cfg.Server.DataDir
	}
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil || home == "" {
			return "."
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "inkwell")
}
