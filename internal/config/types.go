package config

import "time"

// Config is the top-level inkwell configuration.
type Config struct {
	Provider ProviderConfig `json:"provider"`
	Server   ServerConfig   `json:"server"`
	Reveal   RevealConfig   `json:"reveal"`
	Session  SessionConfig  `json:"session"`
}

// ProviderConfig selects and credentials the completion provider.
type ProviderConfig struct {
	// Name is the registered provider binding: "openai", "huggingface",
	// or "mock".
	Name string `json:"name"`
	// Model is the provider-specific model identifier; empty uses the
	// binding's default.
	Model string `json:"model,omitempty"`
	// APIKey authenticates against the provider. Usually supplied via
	// environment rather than the config file.
	APIKey string `json:"api_key,omitempty"`
	// BaseURL overrides the binding's default endpoint.
	BaseURL string `json:"base_url,omitempty"`
	// MaxTokens is the token budget per continuation request.
	MaxTokens int `json:"max_tokens"`
	// Timeout bounds each provider call, e.g. "60s".
	Timeout string `json:"timeout"`
}

// ParseTimeout returns the provider call timeout, defaulting to 60s.
func (p ProviderConfig) ParseTimeout() time.Duration {
	d, err := time.ParseDuration(p.Timeout)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port    int    `json:"port"`
	DataDir string `json:"data_dir,omitempty"`
}

// RevealConfig paces the typing reveal.
type RevealConfig struct {
	BaseDelayMs int `json:"base_delay_ms"`
	JitterMs    int `json:"jitter_ms"`
}

// SessionConfig holds the session protocol timings.
type SessionConfig struct {
	// RateLimitMs is the minimum spacing between accepted submissions.
	RateLimitMs int `json:"rate_limit_ms"`
	// FailedDwellMs is how long an error banner lingers before auto-clear.
	FailedDwellMs int `json:"failed_dwell_ms"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Provider: ProviderConfig{
			Name:      "openai",
			MaxTokens: 150,
			Timeout:   "60s",
		},
		Server: ServerConfig{
			Port: 4820,
		},
		Reveal: RevealConfig{
			BaseDelayMs: 30,
			JitterMs:    5,
		},
		Session: SessionConfig{
			RateLimitMs:   1000,
			FailedDwellMs: 3000,
		},
	}
}
