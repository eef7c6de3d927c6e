// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/sitewright/internal/api"
	"github.com/starford/sitewright/internal/assets"
	"github.com/starford/sitewright/internal/command"
	"github.com/starford/sitewright/internal/history"
	"github.com/starford/sitewright/internal/mcpserver"
	"github.com/starford/sitewright/internal/models"
	"github.com/starford/sitewright/internal/mutate"
	"github.com/starford/sitewright/internal/provider"
	"github.com/starford/sitewright/internal/rebuild"
	"github.com/starford/sitewright/internal/site"
	"github.com/starford/sitewright/internal/siteservice"
	"github.com/starford/sitewright/internal/sse"
	"github.com/starford/sitewright/internal/storage"
	"github.com/starford/sitewright/internal/watcher"
)

// components is the wired object graph shared by every entry point.
type components struct {
	db     *history.DB
	images *site.ImageStore
	svc    *siteservice.Service
}

func (c *components) Close() error {
	return c.db.Close()
}

func newApplication(opts []Option) (*application, error) {
	app := &application{out: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

func (a *application) newLogger(w io.Writer) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// open builds storage, history, collaborators and the site service, and
// loads the live configuration. events may be nil.
func (a *application) open(ctx context.Context, logger *slog.Logger, events siteservice.EventSink) (*components, error) {
	cfg := a.config

	// Ensure site directory exists.
	if err := os.MkdirAll(cfg.Site.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create site dir: %w", err)
	}

	fs, err := storage.NewFS(cfg.Site.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := history.Open(cfg.SQLite.Path, cfg.History.Limit)
	if err != nil {
		return nil, fmt.Errorf("init history: %w", err)
	}

	generator := a.generator
	if generator == nil {
		generator = provider.NewTextClient(cfg.Generator.Endpoint, cfg.Generator.APIKey, cfg.Generator.Model, cfg.Generator.Timeout)
	}
	photos := assets.NewPhotos(provider.NewUnsplashClient(cfg.Photos.Endpoint, cfg.Photos.AccessKey, cfg.Photos.Timeout), logger)
	images := site.NewImageStore(fs)
	resolver := assets.NewResolver(
		photos,
		provider.NewImageClient(cfg.Images.Endpoint, cfg.Images.APIKey, cfg.Images.Model, cfg.Images.Timeout),
		images,
		cfg.Assets.Concurrency,
		logger,
	)
	applier := mutate.NewApplier(photos, mutate.WithLogger(logger))
	rb := rebuild.New(generator, resolver, applier, db, logger)

	svc := siteservice.New(site.NewStore(fs), db, rb, events, logger)
	if err := svc.Load(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("load site: %w", err)
	}

	return &components{db: db, images: images, svc: svc}, nil
}

func writeHealth(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := app.newLogger(os.Stdout)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("site_path", cfg.Site.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// SSE broker.
	broker := sse.NewBroker(cfg.App.HTTP.ProgressThrottle)
	defer broker.Close()

	c, err := app.open(ctx, logger, broker)
	if err != nil {
		return err
	}
	defer c.Close()

	apiRouter := api.NewRouter(c.svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, http.StatusOK, `{"status":"ok"}`)
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		if err := c.svc.Ready(); err != nil {
			writeHealth(w, http.StatusServiceUnavailable, `{"status":"loading"}`)
			return
		}
		if err := c.db.Ping(); err != nil {
			writeHealth(w, http.StatusServiceUnavailable, `{"status":"history unavailable"}`)
			return
		}
		writeHealth(w, http.StatusOK, `{"status":"ok"}`)
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	// Persisted images (unauthenticated).
	r.Get("/assets/{filename}", api.NewAssetHandler(cfg.Site.Path).ServeFile)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	ctx, stop := context.WithCancel(ctx)
	defer stop()
	g, gCtx := errgroup.WithContext(ctx)

	if cfg.Site.Watch {
		g.Go(func() error {
			return watcher.Watch(gCtx, cfg.Site.ConfigPath(), c.svc, watcher.DefaultDebounce, logger)
		})
	}

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
		stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunRebuild performs one rebuild and prints its outcome.
func RunRebuild(ctx context.Context, prompt string, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := app.newLogger(os.Stderr)

	c, err := app.open(ctx, logger, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	res, err := c.svc.Rebuild(ctx, prompt, func(percent float64, phase rebuild.Phase) {
		logger.Debug("progress", slog.Float64("percent", percent), slog.String("phase", string(phase)))
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(app.out, "applied %d, skipped %d, dropped %d, synthesized %d in %s\n",
		res.Report.Applied(), res.Report.Skipped(), res.Dropped, res.Synthesized, res.Duration.Round(time.Millisecond))
	for _, o := range res.Report.Outcomes {
		if o.Status == command.StatusSkipped {
			fmt.Fprintf(app.out, "  skipped #%d %s %s: %s\n", o.Index, o.Kind, o.Target, o.Reason)
		}
	}
	fmt.Fprintln(app.out, res.ExplanationHTML)
	return nil
}

// RunUndo restores the previous configuration.
func RunUndo(ctx context.Context, opts ...Option) error {
	return runHistoryMove(ctx, opts, (*siteservice.Service).Undo)
}

// RunRedo re-applies the last undone configuration.
func RunRedo(ctx context.Context, opts ...Option) error {
	return runHistoryMove(ctx, opts, (*siteservice.Service).Redo)
}

func runHistoryMove(ctx context.Context, opts []Option, move func(*siteservice.Service, context.Context) (*models.Configuration, error)) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := app.newLogger(os.Stderr)

	c, err := app.open(ctx, logger, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	if _, err := move(c.svc, ctx); err != nil {
		return err
	}
	entries, err := c.svc.History(ctx, 0)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.Current {
			fmt.Fprintf(app.out, "now at #%d %s\n", e.Seq, e.Label)
		}
	}
	return nil
}

// RunMCP serves the MCP tools on stdin/stdout. Logs go to stderr.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := app.newLogger(os.Stderr)

	c, err := app.open(ctx, logger, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	logger.Info("MCP server starting on stdio")
	return mcpserver.New(c.svc, c.images).ServeStdio()
}
