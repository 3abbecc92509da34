// Command refresher runs one refresh of every stored address and prints the
// resulting portfolio summary.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"portfolio_tracker/internal/bootstrap"
	"portfolio_tracker/internal/domain/entity"
	"portfolio_tracker/internal/infrastructure/configloader"
	"portfolio_tracker/internal/pkg/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	cfgPath := flag.String("config", "config/config.yml", "path to the configuration file")
	flag.Parse()

	cfg, err := configloader.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: failed to load configuration from %s: %v\n", *cfgPath, err)
		os.Exit(1)
	}
	zapLogger, err := logger.NewZap(cfg.Logging.Level, "console")
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: failed to initialize zap logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = zapLogger.Sync() }()
	logger.Init(zapLogger, cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer app.Close()

	report, err := app.Portfolio.RefreshAll(ctx)
	if err != nil {
		zapLogger.Fatal("Refresh failed", zap.Error(err))
	}
	for _, r := range report.Results {
		line := fmt.Sprintf("%-10s %-24s %s", r.Chain, r.Name, r.Status)
		if r.Error != "" {
			line += ": " + r.Error
		}
		fmt.Println(line)
	}
	fmt.Printf("\nsucceeded=%d failed=%d rate_limited=%d\n\n", report.Succeeded, report.Failed, report.RateLimited)

	summary, err := app.Portfolio.Summary(ctx)
	if err != nil {
		zapLogger.Fatal("Summary failed", zap.Error(err))
	}
	if !summary.PricesOK() {
		fmt.Printf("prices unavailable: %s\n", summary.PriceError)
	}
	printSummary(summary)
}

func usd(v float64) string {
	return "$" + decimal.NewFromFloat(v).StringFixed(2)
}

func printSummary(s entity.PortfolioSummary) {
	fmt.Printf("Total value: %s (%s%% 24h), %d assets\n", usd(s.TotalValue),
		decimal.NewFromFloat(s.Change24h).StringFixed(2), s.TotalAssets)
	for _, a := range s.ChainAllocations {
		fmt.Printf("  %-10s %14s %6s%%\n", a.Label, usd(a.USDValue), decimal.NewFromFloat(a.Percentage).StringFixed(1))
	}
	fmt.Println("Top holdings:")
	for _, h := range s.TopTokens {
		fmt.Printf("  %-8s %14s %6s%%\n", h.Symbol, usd(h.USDValue), decimal.NewFromFloat(h.Percentage).StringFixed(1))
	}
}
