package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portfolio_tracker/internal/bootstrap"
	"portfolio_tracker/internal/infrastructure/configloader"
	"portfolio_tracker/internal/pkg/logger"
	"portfolio_tracker/internal/pkg/metrics"

	"go.uber.org/zap"
)

func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config/config.yml"
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfgPath := configPath()
	cfg, err := configloader.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: failed to load configuration from %s: %v\n", cfgPath, err)
		os.Exit(1)
	}

	zapLogger, err := logger.NewZap(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: failed to initialize zap logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = zapLogger.Sync() }()
	logger.Init(zapLogger, cfg.Logging.Level)
	logger.Info("Configuration loaded", "path", cfgPath, "demo_mode", cfg.DemoMode())

	metrics.MustRegisterMetrics()

	app, err := bootstrap.Build(ctx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer app.Close()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app.Router(zapLogger).Engine(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		zapLogger.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	zapLogger.Info("Server exiting")
}
