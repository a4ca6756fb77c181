package main

import (
	"context"
	"log/slog"
	"os"

	"go-videotube/internal/app"
	"go-videotube/internal/config"
	"go-videotube/internal/logger"
	"go-videotube/internal/middleware"
)

func main() {
	slog.SetDefault(logger.New(os.Stdout, logger.FormatPretty, "info", nil))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(logger.New(os.Stdout, cfg.LogFormat, cfg.LogLevel, requestAttrs))

	application, err := app.New(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("application run failed", "error", err)
		os.Exit(1)
	}
}

func requestAttrs(ctx context.Context) []slog.Attr {
	if requestID := middleware.RequestIDFromContext(ctx); requestID != "" {
		return []slog.Attr{slog.String("request_id", requestID)}
	}
	return nil
}
