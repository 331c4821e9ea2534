package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// outbound network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "entity-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ProviderConfig holds settings for the semantic search provider client.
type ProviderConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey authenticates against the provider. Required to serve.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries bounds retry attempts on rate-limited calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// LLMConfig holds shared settings for components that call the Claude API.
type LLMConfig struct {
	// Model is the model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key. Optional: when absent, delegated
	// clustering and LLM summarization tiers are disabled.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// ScrapeConfig holds settings for the direct page scraping tier.
type ScrapeConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxChars caps extracted page text (default 15000).
	MaxChars int `json:"max_chars" yaml:"max_chars"`

	// MinChars rejects extractions shorter than this (default 100).
	MinChars int `json:"min_chars" yaml:"min_chars"`

	// RequestsPerSecond limits outbound fetches per host (default 1).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
}

// CacheConfig holds settings for the provider response cache.
type CacheConfig struct {
	// Enabled turns the SQLite response cache on.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Dir is the directory holding the cache database (default "cache").
	Dir string `json:"dir" yaml:"dir"`

	// TTL is how long a cached provider response stays valid (default 15m).
	TTL time.Duration `json:"ttl" yaml:"ttl"`
}

// ServerConfig holds settings for the HTTP service.
type ServerConfig struct {
	// Addr is the listen address (default ":8000").
	Addr string `json:"addr" yaml:"addr"`

	// ReadTimeout and WriteTimeout bound request handling. WriteTimeout must
	// leave room for the scraping tier, which can take 10-15s per source.
	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`
}

// ServiceConfig groups all component configurations for the service.
type ServiceConfig struct {
	Server   ServerConfig   `json:"server" yaml:"server"`
	Provider ProviderConfig `json:"provider" yaml:"provider"`
	LLM      LLMConfig      `json:"llm" yaml:"llm"`
	Scrape   ScrapeConfig   `json:"scrape" yaml:"scrape"`
	Cache    CacheConfig    `json:"cache" yaml:"cache"`
}
