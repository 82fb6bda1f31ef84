// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/starford/bantay/internal/api"
	"github.com/starford/bantay/internal/dashboard"
	"github.com/starford/bantay/internal/index"
	"github.com/starford/bantay/internal/mcpserver"
	"github.com/starford/bantay/internal/metrics"
	"github.com/starford/bantay/internal/models"
	"github.com/starford/bantay/internal/sse"
	"github.com/starford/bantay/internal/storage"
)

// runtime is what every command needs: an up-to-date index over the
// records directory and a dashboard service reading from it.
type runtime struct {
	cfg     *Config
	logger  *slog.Logger
	store   *storage.FS
	db      *index.DB
	metrics *metrics.Metrics
	svc     *dashboard.Service
}

func newApplication(opts []Option) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if app.registry == nil {
		app.registry = prometheus.NewRegistry()
	}
	if app.logOutput == nil {
		app.logOutput = os.Stdout
	}
	return app, nil
}

// bootstrap opens storage and the index, runs the initial sync and builds
// the dashboard service. Callers must close rt.db.
func bootstrap(app *application) (*runtime, error) {
	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("records_dir", cfg.Records.Dir),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("timezone", cfg.App.Timezone),
		slog.String("log_level", cfg.App.LogLevel.String()))

	loc, err := cfg.App.Location()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.Records.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create records dir: %w", err)
	}
	store, err := storage.NewFS(cfg.Records.Dir)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	// Run initial sync.
	if _, err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	m := metrics.New(app.registry)
	svc := dashboard.NewService(db,
		dashboard.WithLocation(loc),
		dashboard.WithTopN(cfg.Analytics.TopN),
		dashboard.WithRankingWindow(cfg.Analytics.RankingWindowDays),
		dashboard.WithObserver(m),
	)

	rt := &runtime{cfg: cfg, logger: logger, store: store, db: db, metrics: m, svc: svc}
	rt.refreshIndexed(context.Background())
	return rt, nil
}

// refreshIndexed updates the per-kind record gauge from the index.
func (rt *runtime) refreshIndexed(ctx context.Context) {
	for _, kind := range models.Kinds {
		n, err := rt.db.Count(ctx, kind)
		if err != nil {
			rt.logger.Warn("count records failed", slog.String("kind", string(kind)), slog.String("error", err.Error()))
			continue
		}
		rt.metrics.SetIndexed(kind, n)
	}
}

// watch follows the records directory until ctx ends, forwarding each index
// change to notify.
func (rt *runtime) watch(ctx context.Context, notify index.EventCallback) error {
	return index.Watch(ctx, rt.db, rt.store, rt.cfg.Records.Dir, rt.logger, func(op, path string) {
		rt.metrics.ObserveIndexEvent(op)
		rt.refreshIndexed(ctx)
		if notify != nil {
			notify(op, path)
		}
	})
}

// Router builds the HTTP handler: health checks and metrics at the root,
// the dashboard API under /api.
func (rt *runtime) Router(broker *sse.Broker) http.Handler {
	cfg := rt.cfg

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := rt.db.Ping(req.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if cfg.Metrics.Enabled {
		r.Handle("/metrics", rt.metrics.Handler())
	}

	var sseHandler http.Handler
	if broker != nil {
		sseHandler = broker
	}
	r.Mount("/api", api.NewRouter(rt.svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, sseHandler))
	return r
}

// Run starts the HTTP dashboard server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	rt, err := bootstrap(app)
	if err != nil {
		return err
	}
	defer rt.db.Close()

	cfg := rt.cfg
	logger := rt.logger

	broker := sse.NewBroker(cfg.Events.RefreshThrottle)
	defer broker.Close()

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           rt.Router(broker),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher with SSE callback.
	g.Go(func() error {
		if err := rt.watch(gCtx, broker.PublishRecordEvent); err != nil {
			logger.Error("watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// SSE streams only end when the broker closes them.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the errgroup context so the watcher stops once the
// server is down.
var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools over stdio. Logs go to stderr unless
// WithLogOutput says otherwise.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	rt, err := bootstrap(app)
	if err != nil {
		return err
	}
	defer rt.db.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := rt.watch(gCtx, nil); err != nil {
			rt.logger.Error("watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})
	g.Go(func() error {
		defer cancel()
		rt.logger.Info("MCP server starting on stdio")
		return mcpserver.New(rt.store, rt.svc).ServeStdio()
	})
	return g.Wait()
}
