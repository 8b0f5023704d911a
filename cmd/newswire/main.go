package main

import (
	"log/slog"
	"os"

	"github.com/newsdeck/newswire/internal/hub"
	"github.com/newsdeck/newswire/internal/provider"
	"github.com/newsdeck/newswire/internal/router"
	"github.com/newsdeck/newswire/internal/scheduler"
	"github.com/newsdeck/newswire/internal/server"
	"github.com/newsdeck/newswire/internal/storage"
	"github.com/newsdeck/newswire/internal/storage/factory"
	pkgserver "github.com/newsdeck/newswire/pkg/server"
)

func main() {
	slog.SetLogLoggerLevel(slog.LevelDebug)

	sCfg, err := server.LoadConfig()
	if err != nil {
		slog.Error("Failed to load server config", "error", err)
		os.Exit(1)
	}

	cfg, err := LoadAppConfig()
	if err != nil {
		slog.Error("Failed to load app configuration", "error", err)
		os.Exit(1)
	}

	checkers := []pkgserver.HealthChecker{pkgserver.NewOkHealthChecker()}

	s := server.New(sCfg).
		SetupMiddlewares().
		SetupErrorHandler()

	repoType := storage.InMem
	if cfg.DatabaseURL != "" {
		repoType = storage.PG
	}

	store, err := factory.NewArticleRepository(s.Context(), repoType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to create article storage", "type", repoType, "error", err)
		os.Exit(1)
	}
	if store.Close != nil {
		defer store.Close()
	}
	if store.HealthChecker != nil {
		checkers = append(checkers, store.HealthChecker)
	}
	slog.Info("Article storage ready", "type", repoType)

	fetcher, err := buildFetcher(cfg)
	if err != nil {
		slog.Error("Failed to configure news provider", "error", err)
		os.Exit(1)
	}

	s.SetupHealthChecks("/health", checkers...)

	h := hub.New()
	go h.Run(s.Context())

	sched := scheduler.New(fetcher, store.Repo, h,
		scheduler.WithTickInterval(cfg.FetchInterval),
		scheduler.WithAutoPublish(cfg.AutoPublish),
		scheduler.WithBreakingCategories(cfg.BreakingCategories),
	)

	if err := sched.Start(s.Context()); err != nil {
		slog.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}

	router.NewNewswireRouter(s.Echo, s.Context(), sched, h, store.Repo).Bind()

	go func() {
		<-s.ShutdownSignal()
		slog.Info("Shutdown started, cleaning up resources...")
		if err := sched.Stop(); err != nil {
			slog.Warn("Scheduler already stopped", "error", err)
		}
	}()

	if err := s.Start(); err != nil {
		s.Echo.Logger.Error("Failed to start server: ", err)
		os.Exit(1)
	}
}

func buildFetcher(cfg *AppConfig) (provider.Fetcher, error) {
	if cfg.ProviderURL != "" {
		slog.Info("Using HTTP news provider", "url", cfg.ProviderURL)
		return provider.NewAPIClient(provider.APIClientConfig{
			BaseURL:  cfg.ProviderURL,
			APIKey:   cfg.ProviderAPIKey,
			Category: cfg.ProviderCategory,
		}), nil
	}

	sources, err := provider.LoadSources(cfg.SourcesPath)
	if err != nil {
		return nil, err
	}
	slog.Info("Using RSS news provider", "sources", len(sources))
	return provider.NewRSSFetcher(sources), nil
}
