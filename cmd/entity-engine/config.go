// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/entity-engine/internal/cache"
	"github.com/pdiddy/entity-engine/internal/exa"
	"github.com/pdiddy/entity-engine/pkg/types"
)

// serviceConfig assembles the service configuration from the config file,
// environment variables, and .secrets/. The Exa API key is mandatory; every
// other setting has a default.
func serviceConfig() (types.ServiceConfig, error) {
	cfg := types.ServiceConfig{
		Server: types.ServerConfig{
			Addr:         viper.GetString("server.addr"),
			ReadTimeout:  viper.GetDuration("server.read_timeout"),
			WriteTimeout: viper.GetDuration("server.write_timeout"),
		},
		Provider: types.ProviderConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("exa.timeout"),
				UserAgent: viper.GetString("exa.user_agent"),
			},
			APIKey:     secretDefault("exa-api-key", viper.GetString("exa.api_key")),
			MaxRetries: viper.GetInt("exa.max_retries"),
		},
		LLM: types.LLMConfig{
			Model:      viper.GetString("anthropic.model"),
			APIKey:     secretDefault("anthropic-api-key", viper.GetString("anthropic.api_key")),
			MaxRetries: viper.GetInt("anthropic.max_retries"),
		},
		Scrape: types.ScrapeConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout: viper.GetDuration("scrape.timeout"),
			},
			MaxChars:          viper.GetInt("scrape.max_chars"),
			MinChars:          viper.GetInt("scrape.min_chars"),
			RequestsPerSecond: viper.GetFloat64("scrape.requests_per_second"),
		},
		Cache: types.CacheConfig{
			Enabled: viper.GetBool("cache.enabled"),
			Dir:     viper.GetString("cache.dir"),
			TTL:     viper.GetDuration("cache.ttl"),
		},
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8000"
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	// Profile assembly scrapes and summarizes inside the request, so the
	// write timeout has to accommodate slow upstreams.
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = 2 * time.Minute
	}

	if cfg.Provider.APIKey == "" {
		return cfg, fmt.Errorf("exa API key required: set exa.api_key in the config, ENTITY_ENGINE_EXA_API_KEY, or .secrets/exa-api-key")
	}
	return cfg, nil
}

// newProvider builds the Exa client, wiring the response cache when enabled.
// The returned closer is non-nil only when a cache was opened.
func newProvider(cfg types.ServiceConfig) (*exa.Client, func() error, error) {
	client := exa.NewClient(cfg.Provider)
	if !cfg.Cache.Enabled {
		return client, nil, nil
	}

	store, err := cache.New(cfg.Cache)
	if err != nil {
		return nil, nil, err
	}
	client.Cache = store
	return client, store.Close, nil
}
