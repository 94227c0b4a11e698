package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/sheetlink/internal/audit"
	"github.com/JonMunkholm/sheetlink/internal/config"
	"github.com/JonMunkholm/sheetlink/internal/connections"
	"github.com/JonMunkholm/sheetlink/internal/core/entities"
	"github.com/JonMunkholm/sheetlink/internal/erp"
	"github.com/JonMunkholm/sheetlink/internal/logging"
	"github.com/JonMunkholm/sheetlink/internal/mapping"
	"github.com/JonMunkholm/sheetlink/internal/web"
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

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"registry", cfg.Connector.RegistryFile,
		"resources", cfg.Connector.ResourcesDir,
		"max_concurrent", cfg.Server.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx := context.Background()

	// Cancelled on shutdown to stop background jobs
	jobCtx, cancelJobs := context.WithCancel(ctx)

	// The first listing sink answers /api/audit; prefer the database when
	// one is configured.
	var sinks audit.MultiSink
	if cfg.Audit.DatabaseURL != "" {
		pg, err := audit.NewPostgresSink(ctx, cfg.Audit.DatabaseURL, audit.PoolConfig{
			MaxConns: cfg.Audit.MaxConns,
			MinConns: cfg.Audit.MinConns,
		})
		if err != nil {
			slog.Error("failed to connect to audit database", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		sinks = append(sinks, pg)
		slog.Info("audit database connected")

		go audit.StartRetention(jobCtx, pg, audit.RetentionConfig{
			Days:     cfg.Audit.RetentionDays,
			Interval: cfg.Audit.PruneInterval,
		})
	}
	sinks = append(sinks, audit.NewMemorySink(cfg.Audit.MemoryEntries), audit.NewSlogSink(slog.Default()))

	registry := connections.NewFileRegistry(cfg.Connector.RegistryFile)
	connector := erp.NewConnector(registry, mapping.New(entities.Default()), erp.Settings{
		ResourcesDir:    cfg.Connector.ResourcesDir,
		TemplateFile:    cfg.Connector.TemplateFile,
		DefaultFilename: cfg.Connector.DefaultFilename,
	})

	limiter := web.NewWorkbookLimiter(cfg.Server.MaxConcurrent, cfg.Server.MaxWaitTime)
	server := web.NewServer(cfg, connector, web.Options{
		Audit:   sinks,
		Limiter: limiter,
	})

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := limiter.Status(); status.Active > 0 {
			slog.Info("waiting for workbook operations to complete", "active", status.Active)
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Error("server stopped", "error", err)
	}
}
