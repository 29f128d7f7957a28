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
	"golang.org/x/sync/errgroup"

	"github.com/asapfoodtrailer/dealerd/internal/api"
	"github.com/asapfoodtrailer/dealerd/internal/catalog"
	"github.com/asapfoodtrailer/dealerd/internal/images"
	"github.com/asapfoodtrailer/dealerd/internal/mailer"
	"github.com/asapfoodtrailer/dealerd/internal/mcpserver"
	"github.com/asapfoodtrailer/dealerd/internal/models"
	"github.com/asapfoodtrailer/dealerd/internal/seo"
	"github.com/asapfoodtrailer/dealerd/internal/sse"
	"github.com/asapfoodtrailer/dealerd/internal/store"
)

// Run starts the HTTP application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Structured JSON logger, unless the caller injected one.
	logger := app.logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: cfg.App.LogLevel,
		}))
	}
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("store_mode", cfg.Store.Mode),
		slog.String("data_file", cfg.Store.DataFile),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Initialize the persistence facade. A failed remote init has already
	// been demoted to local mode inside the factory.
	st, err := store.New(ctx, cfg.Store.Options(), logger)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			logger.Error("store close error", slog.String("error", err.Error()))
		}
	}()

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	// Lead notifications.
	notifier := mailer.New(mailer.Options{
		Host:         cfg.SMTP.Host,
		Port:         cfg.SMTP.Port,
		From:         cfg.SMTP.From,
		Password:     cfg.SMTP.Password,
		NotifyTo:     cfg.SMTP.NotifyTo,
		BusinessName: cfg.Business.Name,
	}, logger)

	// Image pipeline.
	processor := images.New(cfg.Uploads.Dir, cfg.Uploads.MaxBytes, logger)

	// Domain service and API router.
	svc := catalog.NewService(st, broker, notifier, logger)
	apiRouter := api.NewRouter(api.RouterOptions{
		Service:        svc,
		Processor:      processor,
		AuthEnabled:    cfg.Auth.AuthEnabled(),
		Token:          cfg.Auth.Token,
		AdminEmail:     cfg.Auth.AdminEmail,
		AdminPass:      cfg.Auth.AdminPassword,
		BusinessCity:   cfg.Business.City,
		SSEHandler:     broker,
		MaxUploadBytes: cfg.Uploads.MaxBytes,
	})

	seoGen := seo.New(seo.Business{
		Name:     cfg.Business.Name,
		Phone:    cfg.Business.Phone,
		Email:    cfg.Business.Email,
		City:     cfg.Business.City,
		Address:  cfg.Business.Address,
		WhatsApp: cfg.Business.WhatsApp,
		BaseURL:  cfg.Business.BaseURL,
	})

	// Build chi router.
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
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Crawler artifacts.
	r.Get("/sitemap.xml", func(w http.ResponseWriter, req *http.Request) {
		vehicles, err := st.ListVehicles(req.Context(), nil)
		if err != nil {
			logger.Error("sitemap listing failed", slog.String("error", err.Error()))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		out, err := seoGen.Sitemap(vehiclePtrs(vehicles), time.Now())
		if err != nil {
			logger.Error("sitemap render failed", slog.String("error", err.Error()))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
		_, _ = w.Write(out)
	})
	r.Get("/robots.txt", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write(seoGen.Robots())
	})

	// Uploaded images.
	r.Handle("/uploads/*", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(cfg.Uploads.Dir))))

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	// runCtx lets the shutdown goroutine stop the watcher, which otherwise
	// blocks until its context is cancelled.
	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	g, gCtx := errgroup.WithContext(runCtx)

	// In local mode, watch the data file so external edits (seed refreshes,
	// deploy syncs) invalidate the in-memory cache.
	if fs, ok := st.(*store.FileStore); ok {
		g.Go(func() error {
			if err := store.Watch(gCtx, fs, logger); err != nil {
				logger.Warn("data file watcher stopped", slog.String("error", err.Error()))
			}
			return nil
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
		cancelRun()

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

func vehiclePtrs(vehicles []models.Vehicle) []*models.Vehicle {
	out := make([]*models.Vehicle, len(vehicles))
	for i := range vehicles {
		out[i] = &vehicles[i]
	}
	return out
}

// RunMCP starts the stdio MCP server against the configured store.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// MCP speaks JSON-RPC on stdout, so logs go to stderr.
	logger := app.logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: cfg.App.LogLevel,
		}))
	}

	st, err := store.New(ctx, cfg.Store.Options(), logger)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = st.Close(closeCtx)
	}()

	logger.Info("Starting MCP server on stdio",
		slog.String("store_mode", cfg.Store.Mode))
	return mcpserver.New(st).ServeStdio()
}
