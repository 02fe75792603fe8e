package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Provider.Name != "openai" {
		t.Errorf("expected default provider openai, got %s", cfg.Provider.Name)
	}
	if cfg.Provider.MaxTokens != 150 {
		t.Errorf("expected max_tokens 150, got %d", cfg.Provider.MaxTokens)
	}
	if cfg.Provider.ParseTimeout() != 60*time.Second {
		t.Errorf("expected provider timeout 60s, got %v", cfg.Provider.ParseTimeout())
	}
	if cfg.Server.Port != 4820 {
		t.Errorf("expected server port 4820, got %d", cfg.Server.Port)
	}
	if cfg.Reveal.BaseDelayMs != 30 || cfg.Reveal.JitterMs != 5 {
		t.Errorf("unexpected reveal pacing: %+v", cfg.Reveal)
	}
	if cfg.Session.RateLimitMs != 1000 {
		t.Errorf("expected rate_limit_ms 1000, got %d", cfg.Session.RateLimitMs)
	}
	if cfg.Session.FailedDwellMs != 3000 {
		t.Errorf("expected failed_dwell_ms 3000, got %d", cfg.Session.FailedDwellMs)
	}
}

func TestParseTimeoutFallsBackOnGarbage(t *testing.T) {
	p := ProviderConfig{Timeout: "soon"}
	if p.ParseTimeout() != 60*time.Second {
		t.Errorf("expected fallback 60s, got %v", p.ParseTimeout())
	}
}

func TestLoadJSONCWithComments(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.jsonc")

	content := []byte(`{
  // provider selection
  "provider": {
    "name": "huggingface",
    "model": "test-model"
  },
  "server": {
    "port": 9999
  }
}`)

	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	m, err := loadJSONC(path)
	if err != nil {
		t.Fatalf("loadJSONC failed: %v", err)
	}

	cfg := DefaultConfig()
	if err := mergeIntoConfig(&cfg, m); err != nil {
		t.Fatalf("mergeIntoConfig failed: %v", err)
	}

	if cfg.Provider.Name != "huggingface" {
		t.Errorf("expected provider huggingface, got %s", cfg.Provider.Name)
	}
	if cfg.Provider.Model != "test-model" {
		t.Errorf("expected model test-model, got %s", cfg.Provider.Model)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("expected port 9999, got %d", cfg.Server.Port)
	}
	// Untouched sections keep their defaults through the merge.
	if cfg.Session.RateLimitMs != 1000 {
		t.Errorf("expected rate_limit_ms 1000 after merge, got %d", cfg.Session.RateLimitMs)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("INKWELL_PROVIDER", "huggingface")
	t.Setenv("HF_API_TOKEN", "hf_test")
	t.Setenv("INKWELL_PORT", "8111")

	cfg := DefaultConfig()
	applyEnvOverrides(&cfg)

	if cfg.Provider.Name != "huggingface" {
		t.Errorf("expected provider huggingface, got %s", cfg.Provider.Name)
	}
	if cfg.Provider.APIKey != "hf_test" {
		t.Errorf("expected API key from env, got %q", cfg.Provider.APIKey)
	}
	if cfg.Server.Port != 8111 {
		t.Errorf("expected port 8111, got %d", cfg.Server.Port)
	}
}
