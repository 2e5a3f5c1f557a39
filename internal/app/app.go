// Package app initializes and holds long-lived application services, acting
// as a dependency injection container.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hoxtonmix/seo-api/internal/api"
	"github.com/hoxtonmix/seo-api/internal/config"
	"github.com/hoxtonmix/seo-api/internal/enrich"
	"github.com/hoxtonmix/seo-api/internal/provider/dataforseo"
	"github.com/hoxtonmix/seo-api/internal/storage/postgres"
)

// App holds all the shared, long-lived services for the application.
type App struct {
	cfg    config.Config
	logger *zap.Logger
	store  *postgres.Store
	server *http.Server
}

// New builds the service graph: store, provider client, enrichment pipeline,
// HTTP server. Fails fast on anything the service cannot run without;
// provider credentials are deliberately not checked here.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	store, err := postgres.New(ctx, postgres.Config{
		DSN:      cfg.Database.DSN,
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	if cfg.Database.EnsureSchema {
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, err
		}
	}

	provider := dataforseo.NewClient(dataforseo.Config{
		Login:    cfg.DataForSEO.Login,
		Password: cfg.DataForSEO.Password,
		BaseURL:  cfg.DataForSEO.BaseURL,
	}, logger)

	enricher := enrich.New(store, provider, enrich.Options{
		PrimaryDomain:  cfg.SEO.PrimaryDomain,
		DefaultCountry: cfg.SEO.DefaultCountry,
		MetricsMax:     cfg.SEO.MetricsBatchMax,
		SerpMax:        cfg.SEO.SerpBatchMax,
	}, logger)

	server := api.NewServer(store, enricher, api.APIKeyAuthenticator{Key: cfg.Auth.APIKey}, cfg, logger)

	return &App{
		cfg:    cfg,
		logger: logger,
		store:  store,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           server.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Run starts the HTTP server and blocks until a shutdown signal arrives.
func (a *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting server", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-sigCh:
		a.logger.Info("shutdown signal received", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	a.logger.Info("server exited gracefully")
	return nil
}

// Close releases long-lived resources.
func (a *App) Close() {
	a.store.Close()
}
