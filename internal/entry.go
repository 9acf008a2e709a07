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
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/postcraft/internal/api"
	"github.com/starford/postcraft/internal/draftservice"
	"github.com/starford/postcraft/internal/inbox"
	"github.com/starford/postcraft/internal/mcpserver"
	"github.com/starford/postcraft/internal/publisher"
	"github.com/starford/postcraft/internal/repo"
	"github.com/starford/postcraft/internal/scheduler"
	"github.com/starford/postcraft/internal/sse"
	"github.com/starford/postcraft/internal/storage"
)

// core holds the components shared by the HTTP and MCP entry points.
type core struct {
	cfg    *Config
	logger *slog.Logger
	db     *repo.DB
	svc    *draftservice.Service
}

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev", logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// openCore sets up logging, storage and the draft service.
func openCore(app *application, svcOpts ...draftservice.Option) (*core, error) {
	cfg := app.config

	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("outbox_path", cfg.Outbox.Path),
		slog.Bool("inbox_enabled", cfg.Inbox.Enabled),
		slog.Bool("scheduler_enabled", cfg.Scheduler.Enabled),
		slog.Int("max_chars", cfg.Post.MaxChars),
		slog.String("log_level", cfg.App.LogLevel.String()))

	if err := os.MkdirAll(filepath.Dir(cfg.SQLite.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	outboxStore, err := storage.NewFS(cfg.Outbox.Path)
	if err != nil {
		return nil, fmt.Errorf("init outbox: %w", err)
	}

	db, err := repo.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init repo: %w", err)
	}
	if n, err := db.ReleaseStaleClaims(); err != nil {
		db.Close()
		return nil, fmt.Errorf("release stale claims: %w", err)
	} else if n > 0 {
		logger.Warn("drafts left mid-publish were released", slog.Int64("count", n))
	}

	opts := append([]draftservice.Option{draftservice.WithMaxChars(cfg.Post.MaxChars)}, svcOpts...)
	svc := draftservice.NewService(db, publisher.NewOutbox(outboxStore, logger), opts...)

	return &core{cfg: cfg, logger: logger, db: db, svc: svc}, nil
}

// Run starts the HTTP server together with the inbox watcher and the
// scheduler, and blocks until a shutdown signal or a fatal error.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	c, err := openCore(app, draftservice.WithEvents(broker.PublishDraftEvent))
	if err != nil {
		return err
	}
	defer c.db.Close()
	cfg, logger := c.cfg, c.logger

	apiRouter := api.NewRouter(c.svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

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
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := c.db.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.Inbox.Enabled {
		inboxStore, err := storage.NewFS(cfg.Inbox.Path)
		if err != nil {
			return fmt.Errorf("init inbox: %w", err)
		}
		watcher := inbox.New(inboxStore, c.svc, logger)
		g.Go(func() error {
			if err := watcher.Run(gCtx); err != nil {
				logger.Error("inbox watcher failed", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	if cfg.Scheduler.Enabled {
		sched, err := scheduler.New(cfg.Scheduler.Spec, c.svc, logger)
		if err != nil {
			return err
		}
		g.Go(func() error {
			return sched.Run(gCtx)
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

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

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		// Stop the background workers too.
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

var errShutdown = errors.New("shutdown requested")

// RunMCP serves the MCP tools over stdio. Logs go to the configured log
// output, which must not be stdout.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	c, err := openCore(app)
	if err != nil {
		return err
	}
	defer c.db.Close()

	c.logger.Info("MCP server starting on stdio")
	return mcpserver.New(c.svc, app.version).ServeStdio()
}
