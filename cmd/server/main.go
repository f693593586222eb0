package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/sheetload/internal/config"
	"github.com/JonMunkholm/sheetload/internal/loader"
	"github.com/JonMunkholm/sheetload/internal/logging"
	_ "github.com/JonMunkholm/sheetload/internal/schemas" // Register all schemas
	"github.com/JonMunkholm/sheetload/internal/sheet"
	"github.com/JonMunkholm/sheetload/internal/store"
	"github.com/JonMunkholm/sheetload/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	ctx := context.Background()

	var (
		persister loader.Persister
		pinger    web.Pinger
	)
	if cfg.Database.Enabled() {
		pool, err := store.Connect(ctx, store.PoolConfig{
			URL:             cfg.Database.URL,
			MaxConns:        cfg.Database.MaxConns,
			MinConns:        cfg.Database.MinConns,
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
			MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		})
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if u, err := url.Parse(cfg.Database.URL); err == nil {
			slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
		} else {
			slog.Info("connected to database")
		}

		db := store.New(pool)
		if cfg.Database.AutoMigrate {
			if err := db.EnsureSchema(ctx); err != nil {
				slog.Error("failed to create tables", "error", err)
				os.Exit(1)
			}
		}
		persister, pinger = db, db
	} else {
		slog.Warn("DATABASE_URL not set, loads are kept in memory only")
	}

	service := loader.NewService(loader.Config{
		MaxConcurrent:   cfg.Load.MaxConcurrent,
		MaxWait:         cfg.Load.MaxWaitTime,
		Timeout:         cfg.Load.Timeout,
		MaxFileSize:     cfg.Load.MaxFileSize,
		Retention:       cfg.Load.Retention,
		DefaultLanguage: cfg.DefaultLanguage(),
	}, persister)

	slog.Info("schemas registered", "count", sheet.Count(), "keys", sheet.Keys())

	server := web.NewServer(service, cfg, pinger)

	// Cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go service.StartJanitor(jobCtx, cfg.Load.JanitorInterval)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if active := service.Status().Limiter.Active; active > 0 {
			slog.Info("waiting for loads to complete", "active", active)
			if err := service.Shutdown(shutdownCtx); err != nil {
				slog.Warn("loads did not complete in time", "error", err)
			} else {
				slog.Info("all loads completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
