package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/frostline/restcurve/internal/adapters/http/api"
	"github.com/frostline/restcurve/internal/adapters/ingest"
	"github.com/frostline/restcurve/internal/adapters/repository"
	"github.com/frostline/restcurve/internal/app"
	"github.com/frostline/restcurve/internal/config"
	"github.com/frostline/restcurve/pkg/logger"
	"github.com/frostline/restcurve/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 30 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env).
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		log.Error(ctx, "failed to open store", logger.Error(err))
		return
	}
	defer cleanup()

	svc := app.New(
		app.WithStore(store),
		app.WithLogger(log.Named("app")),
		app.WithShardCount(cfg.ShardCount),
		app.WithLowRestBuckets(cfg.LowBuckets()),
		app.WithHighRestBuckets(cfg.HighBuckets()),
	)

	if err := preloadDatasets(ctx, cfg, svc, log); err != nil {
		log.Error(ctx, "failed to preload datasets", logger.Error(err))
		return
	}

	go startSystemMetricsUpdater(ctx)

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	api.NewServer(svc, cfg.MaxRankingLimit).Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
}

// openStore selects the SQLite-backed store when a database path is
// configured, otherwise an in-memory store.
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, func(), error) {
	if cfg.DatabasePath == "" {
		return repository.NewMemStore(), func() {}, nil
	}
	s, err := repository.NewSQLiteStore(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, nil, err
	}
	return s, func() { _ = s.Close() }, nil
}

// preloadDatasets loads the configured CSV exports into the store.
func preloadDatasets(ctx context.Context, cfg *config.Config, svc *app.Service, log logger.Logger) error {
	load := func(path, kind string, read func(context.Context, string) (ingest.Result, error)) error {
		if path == "" {
			return nil
		}
		res, err := read(ctx, path)
		if err != nil {
			return err
		}
		if err := svc.Ingest(ctx, res.Records); err != nil {
			return err
		}
		log.Info(ctx, "dataset loaded",
			logger.String("kind", kind),
			logger.String("path", path),
			logger.Int("records", len(res.Records)),
			logger.Int("unparsable_dates", res.UnparsableDates),
			logger.Int("duplicates", res.Duplicates),
		)
		return nil
	}

	if err := load(cfg.TeamDataset, "team", ingest.LoadTeamFile); err != nil {
		return err
	}
	return load(cfg.GoalieDataset, "goalie", ingest.LoadGoalieFile)
}

// startSystemMetricsUpdater periodically refreshes process-level gauges.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			metrics.UpdateSystemMemoryUsage(m.Alloc)
			metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
		}
	}
}
