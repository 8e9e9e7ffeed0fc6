package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"

	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/SamuelNgundi/fullstack-comic-app/catalog/adapters/auth"
	"github.com/SamuelNgundi/fullstack-comic-app/catalog/adapters/db"
	"github.com/SamuelNgundi/fullstack-comic-app/catalog/adapters/events"
	cataloggrpc "github.com/SamuelNgundi/fullstack-comic-app/catalog/adapters/grpc"
	"github.com/SamuelNgundi/fullstack-comic-app/catalog/adapters/rest"
	"github.com/SamuelNgundi/fullstack-comic-app/catalog/adapters/rest/middleware"
	"github.com/SamuelNgundi/fullstack-comic-app/catalog/config"
	"github.com/SamuelNgundi/fullstack-comic-app/catalog/core"
	"github.com/SamuelNgundi/fullstack-comic-app/catalog/words"
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
	log.Info("starting catalog server")
	log.Debug("debug messages are enabled")

	// Graceful shutdown using Ctrl+C
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := db.Migrate(log, cfg.DBAddress); err != nil {
		return fmt.Errorf("failed to migrate db: %w", err)
	}
	store, err := db.New(log, cfg.DBAddress)
	if err != nil {
		return fmt.Errorf("failed to connect to db: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("failed to close db", "error", err)
		}
	}()

	// Writes still succeed without a broker; web pages then refresh on their revalidate period.
	var publisher core.Events
	if p, err := events.NewPublisher(log, cfg.BrokerAddress); err != nil {
		log.Warn("nats unavailable, catalog updates will not be announced", "error", err)
	} else {
		defer p.Close()
		publisher = p
	}

	if err := cfg.CheckAuth(); err != nil {
		return err
	}
	svc, err := core.NewService(log, store, words.Stemmer{}, publisher, cfg.PageSize)
	if err != nil {
		return fmt.Errorf("failed to create catalog service: %w", err)
	}
	authSvc, err := auth.New(cfg.TokenSecret, cfg.TokenTTL, cfg.AdminUser)
	if err != nil {
		return fmt.Errorf("cannot init auth service: %w", err)
	}

	// gRPC health
	monitor := cataloggrpc.NewMonitor(log, store, "catalog", cfg.HealthPeriod)
	lis, err := net.Listen("tcp", cfg.HealthAddress)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	grpcServer := grpc.NewServer()
	monitor.Register(grpcServer)
	reflection.Register(grpcServer)
	monitor.Start(ctx)
	defer monitor.Stop()

	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			log.Error("health server failed", "error", err)
		}
	}()

	authMw := middleware.Auth(log, authSvc)

	mux := http.NewServeMux()
	mux.Handle("GET /api/ping", rest.NewPingHandler(log, map[string]core.Pinger{"db": store}))
	mux.Handle("POST /api/login", rest.NewLoginHandler(log, authSvc, cfg.AdminUser, cfg.AdminPass))
	mux.Handle("GET /api/comics/{$}", rest.NewComicsHandler(log, svc))
	mux.Handle("GET /api/comics/{slug}/{$}", rest.NewComicHandler(log, svc))
	mux.Handle("GET /api/comics/{slug}/chapters/{$}", rest.NewChaptersHandler(log, svc))
	mux.Handle("GET /api/categories/{$}", rest.NewCategoriesHandler(log, svc))
	mux.Handle("POST /api/chapters/{id}/views/{$}", rest.NewChapterViewHandler(log, svc))

	mux.Handle("POST /api/comics/{$}", authMw(rest.NewCreateHandler(log, svc)))
	mux.Handle("PUT /api/comics/{slug}/{$}", authMw(rest.NewUpdateHandler(log, svc)))
	mux.Handle("DELETE /api/comics/{slug}/{$}", authMw(rest.NewDeleteHandler(log, svc)))

	server := http.Server{
		Addr:        cfg.HTTPConfig.Address,
		ReadTimeout: cfg.HTTPConfig.Timeout,
		Handler:     mux,
	}

	go func() {
		<-ctx.Done()
		log.Debug("shutting down catalog server")
		grpcServer.GracefulStop()
		if err := server.Shutdown(context.Background()); err != nil {
			log.Error("erroneous shutdown", "error", err)
		}
	}()

	log.Info("Running HTTP server", "address", cfg.HTTPConfig.Address, "health", cfg.HealthAddress)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server closed unexpectedly: %w", err)
	}
	return nil
}

func mustMakeLogger(levelStr string) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "ERROR":
		level = slog.LevelError
	default:
		panic("unknown log level: " + levelStr)
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level, AddSource: true})
	return slog.New(handler)
}
