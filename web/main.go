package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"

	"github.com/nats-io/nats.go"

	"github.com/SamuelNgundi/fullstack-comic-app/web/adapters/auth"
	"github.com/SamuelNgundi/fullstack-comic-app/web/adapters/catalog"
	"github.com/SamuelNgundi/fullstack-comic-app/web/adapters/health"
	"github.com/SamuelNgundi/fullstack-comic-app/web/adapters/render"
	"github.com/SamuelNgundi/fullstack-comic-app/web/adapters/rest"
	"github.com/SamuelNgundi/fullstack-comic-app/web/adapters/rest/middleware"
	"github.com/SamuelNgundi/fullstack-comic-app/web/adapters/revalidate"
	"github.com/SamuelNgundi/fullstack-comic-app/web/config"
	"github.com/SamuelNgundi/fullstack-comic-app/web/core"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "server configuration file")
	flag.Parse()

	cfg := config.MustLoad(configPath)
	log := mustMakeLogger(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	log.Info("starting web server", "mode", cfg.Mode)
	log.Debug("debug messages are enabled")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	catalogClient, err := catalog.NewClient(cfg.CatalogURL, cfg.CatalogTimeout, log)
	if err != nil {
		return fmt.Errorf("cannot init catalog adapter: %w", err)
	}
	healthClient, err := health.NewClient(cfg.CatalogHealth, "catalog", log)
	if err != nil {
		return fmt.Errorf("cannot init health adapter: %w", err)
	}
	defer func() {
		if err := healthClient.Close(); err != nil {
			log.Error("failed to close health connection", "error", err)
		}
	}()

	normalizer, err := core.NewNormalizer(cfg.MediaURL)
	if err != nil {
		return err
	}
	pages, err := core.NewPages(log, catalogClient, normalizer, cfg.PageSize, cfg.Revalidate)
	if err != nil {
		return fmt.Errorf("cannot init pages: %w", err)
	}

	renderer, err := render.New()
	if err != nil {
		return err
	}
	if err := cfg.CheckAuth(); err != nil {
		return err
	}
	authSvc, err := auth.New(cfg.TokenSecret, cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("cannot init auth service: %w", err)
	}

	// Without a broker pages still refresh once the revalidate period passes.
	nc, err := nats.Connect(cfg.BrokerAddress)
	if err != nil {
		log.Warn("nats unavailable, event revalidation disabled", "address", cfg.BrokerAddress, "error", err)
	} else {
		defer func() {
			if err := nc.Drain(); err != nil {
				log.Error("failed to drain nats connection", "error", err)
			}
		}()
		events := revalidate.NewEventRevalidator(log, pages, nc, 0)
		if err := events.Start(ctx); err != nil {
			return fmt.Errorf("failed to start event revalidator: %w", err)
		}
		defer events.Stop()
	}

	if cfg.Production() {
		warmer := revalidate.NewWarmer(log, pages, cfg.Revalidate)
		warmer.Start(ctx)
		defer warmer.Stop()
	}

	concurrencyLimiter := middleware.NewConcurrencyLimiter(log, cfg.APIConcurrency)
	rateLimiter := middleware.NewRateLimiter(ctx, cfg.PageRate)

	mux := http.NewServeMux()
	mux.Handle("GET /{$}", http.RedirectHandler(core.CategoryPath(core.AllCategory), http.StatusFound))
	mux.Handle("GET /categories/{category}",
		rateLimiter.Wrap(rest.NewCategoryPageHandler(log, pages, renderer, authSvc)))
	mux.Handle("GET /api/comics", concurrencyLimiter.Wrap(rest.NewComicsHandler(log, pages)))
	mux.Handle("GET /api/ping", rest.NewPingHandler(log, map[string]core.Pinger{"catalog": healthClient}))
	mux.Handle("POST /api/login", rest.NewLoginHandler(log, authSvc, cfg.AdminUser, cfg.AdminPass))
	mux.Handle("GET /api/me", rest.NewMeHandler(authSvc))

	server := http.Server{
		Addr:        cfg.HTTPConfig.Address,
		ReadTimeout: cfg.HTTPConfig.Timeout,
		Handler:     mux,
	}

	go func() {
		<-ctx.Done()
		log.Debug("shutting down server")
		if err := server.Shutdown(context.Background()); err != nil {
			log.Error("erroneous shutdown", "error", err)
		}
	}()

	log.Info("Running HTTP server", "address", cfg.HTTPConfig.Address)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server closed unexpectedly: %w", err)
	}
	return nil
}

func mustMakeLogger(logLevel string) *slog.Logger {
	var level slog.Level
	switch logLevel {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "ERROR":
		level = slog.LevelError
	default:
		panic("unknown log level: " + logLevel)
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level, AddSource: true})
	return slog.New(handler)
}
