package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"covab2fasta/internal/config"
	"covab2fasta/internal/convert"
	"covab2fasta/internal/logging"
	"covab2fasta/internal/version"
	"covab2fasta/internal/web"
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

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"version", version.Version,
		"port", cfg.Server.Port,
		"max_file_size", cfg.Upload.MaxFileSize,
		"result_ttl", cfg.Convert.ResultTTL,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	service := convert.NewService(convert.Config{
		PreviewRows:    cfg.Convert.PreviewRows,
		PreviewEntries: cfg.Convert.PreviewEntries,
		ResultTTL:      cfg.Convert.ResultTTL,
		MaxResults:     cfg.Convert.MaxResults,
		MaxInputBytes:  cfg.Upload.MaxFileSize,
	})
	defer service.Close()

	server := web.NewServer(cfg, service)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
