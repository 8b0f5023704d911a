package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/newsdeck/newswire/pkg/stringsutil"
)

type AppConfig struct {
	DatabaseURL string

	// Provider selection: an API base URL wins over an RSS source list.
	ProviderURL      string
	ProviderAPIKey   string
	ProviderCategory string
	SourcesPath      string

	FetchInterval      time.Duration
	AutoPublish        bool
	BreakingCategories []string
}

// LoadAppConfig reads app settings from the environment. The .env file
// is already loaded by server.LoadConfig, which must run first.
func LoadAppConfig() (*AppConfig, error) {
	cfg := &AppConfig{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		ProviderURL:      os.Getenv("PROVIDER_URL"),
		ProviderAPIKey:   os.Getenv("PROVIDER_API_KEY"),
		ProviderCategory: os.Getenv("PROVIDER_CATEGORY"),
		SourcesPath:      os.Getenv("SOURCES_PATH"),
		AutoPublish:      os.Getenv("AUTO_PUBLISH") != "false",
		FetchInterval:    time.Hour,
	}

	if cfg.ProviderURL == "" && cfg.SourcesPath == "" {
		cfg.SourcesPath = "configs/sources.yaml"
	}

	if interval := os.Getenv("FETCH_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err != nil {
			return nil, fmt.Errorf("invalid FETCH_INTERVAL: %w", err)
		}
		cfg.FetchInterval = d
	}

	if breaking := os.Getenv("BREAKING_CATEGORIES"); breaking != "" {
		categories := strings.Split(breaking, ",")
		for i, c := range categories {
			categories[i] = strings.TrimSpace(c)
		}
		cfg.BreakingCategories = stringsutil.RemoveEmptyStrings(categories)
	}

	return cfg, nil
}
