// Package bootstrap assembles the application graph from a Config.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/app/provider"
	"portfolio_tracker/internal/app/service"
	"portfolio_tracker/internal/client"
	"portfolio_tracker/internal/infrastructure/configloader"
	"portfolio_tracker/internal/infrastructure/events"
	"portfolio_tracker/internal/infrastructure/httpclient"
	clientprovider "portfolio_tracker/internal/infrastructure/network/client"
	networkdefinition "portfolio_tracker/internal/infrastructure/network/definition"
	"portfolio_tracker/internal/infrastructure/restapi"
	"portfolio_tracker/internal/infrastructure/storage"
	"portfolio_tracker/internal/infrastructure/tokenloader"
	"portfolio_tracker/internal/pkg/logger"
	"portfolio_tracker/internal/pkg/utils"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const solanaURLTemplate = "https://solana-mainnet.g.alchemy.com/v2/%s"

// App holds the wired services and the resources that need closing.
type App struct {
	Config    *configloader.Config
	Addresses port.AddressService
	Tags      port.TagService
	Portfolio *service.PortfolioServiceImpl
	Prices    port.TokenPriceService
	Bus       *events.Bus
	Reports   *events.ReportRecorder

	closers []func()
}

// Build wires storage, chain adapters, pricing and the event bus.
func Build(ctx context.Context, cfg *configloader.Config, zapLogger *zap.Logger) (*App, error) {
	appLogger := logger.NewSlogAdapter()
	app := &App{Config: cfg}

	addrRepo, tagRepo, err := app.openStorage(appLogger)
	if err != nil {
		return nil, err
	}

	catalogueLoader := tokenloader.NewCatalogueLoader(cfg.Tokens.CatalogueFile, appLogger.Info, appLogger.Warn)
	catalogue, err := provider.NewTokenCatalogueProvider(catalogueLoader, appLogger).GetCatalogue()
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("load token catalogue: %w", err)
	}

	retry := utils.RetryPolicy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   time.Duration(cfg.Retry.BaseDelayMs) * time.Millisecond,
		MaxDelay:    time.Duration(cfg.Retry.MaxDelayMs) * time.Millisecond,
	}
	rpcTimeout := time.Duration(cfg.Performance.RPCCallTimeoutSeconds) * time.Second
	requestTimeout := time.Duration(cfg.Performance.RequestTimeoutSeconds) * time.Second

	netDefs := networkdefinition.NewNetworkDefinitionProvider(
		logger.With(appLogger, "component", "networks"),
		cfg.Alchemy.URLTemplate, cfg.Alchemy.APIKey, cfg.Alchemy.RPCURLs)
	evmClients := clientprovider.NewEVMClientProvider(
		clientprovider.NewTokenFilter(catalogue),
		limiterFor(cfg, "alchemy"),
		retry,
		rpcTimeout,
		logger.With(appLogger, "component", "evm"))
	app.closers = append(app.closers, evmClients.Close)

	bitcoinREST := httpclient.NewRESTClient("mempool", requestTimeout, zapLogger,
		httpclient.WithLimiter(limiterFor(cfg, "bitcoin")),
		httpclient.WithRetryPolicy(retry))

	solanaURL := cfg.Alchemy.SolanaRPCURL
	if solanaURL == "" && cfg.Alchemy.APIKey != "" {
		solanaURL = fmt.Sprintf(solanaURLTemplate, cfg.Alchemy.APIKey)
	}

	registry := clientprovider.NewAdapterRegistry(
		clientprovider.NewBitcoinClient(bitcoinREST, cfg.Bitcoin.BaseURL, cfg.Bitcoin.BalanceMode,
			logger.With(appLogger, "component", "bitcoin")),
		clientprovider.NewEVMAdapter(evmClients, netDefs, logger.With(appLogger, "component", "evm")),
		clientprovider.NewSolanaClient(clientprovider.NewSolanaRPC(solanaURL), catalogue.SolanaMints,
			limiterFor(cfg, "solana"), retry, rpcTimeout, logger.With(appLogger, "component", "solana")),
	)

	geckoREST := httpclient.NewRESTClient("coingecko",
		time.Duration(cfg.CoinGecko.RequestTimeoutMillis)*time.Millisecond, zapLogger,
		httpclient.WithLimiter(limiterFor(cfg, "coingecko")),
		httpclient.WithRetryPolicy(retry))
	gecko := client.NewCoinGeckoClient(geckoREST, cfg.CoinGecko.BaseURL, cfg.CoinGecko.APIKey,
		cfg.CoinGecko.Plan, cfg.CoinGecko.VsCurrency, zapLogger)
	app.Prices = service.NewTokenPriceService(gecko,
		time.Duration(cfg.TokenPriceSvc.CacheTTLMinutes)*time.Minute,
		time.Duration(cfg.TokenPriceSvc.CleanupIntervalMinutes)*time.Minute,
		logger.With(appLogger, "component", "prices"))

	var sinks []port.EventPublisher
	if cfg.NATS.URL != "" {
		publisher, err := events.ConnectNATS(cfg.NATS.URL, cfg.NATS.Subject, zapLogger)
		if err != nil {
			// Events stay in-process when the broker is down.
			zapLogger.Warn("NATS unavailable, refresh events stay in-process", zap.Error(err))
		} else {
			sinks = append(sinks, publisher)
			app.closers = append(app.closers, publisher.Close)
		}
	}
	app.Bus = events.NewBus(sinks...)
	app.Reports = &events.ReportRecorder{}
	app.Bus.Subscribe(app.Reports.Handle)

	app.Addresses = service.NewAddressService(addrRepo, tagRepo, registry, logger.With(appLogger, "component", "addresses"))
	app.Tags = service.NewTagService(tagRepo, addrRepo, logger.With(appLogger, "component", "tags"))
	app.Portfolio = service.NewPortfolioService(addrRepo, registry, app.Prices, app.Bus,
		logger.With(appLogger, "component", "portfolio"), cfg.Performance.MaxConcurrentRefreshes)

	seeds := provider.NewSeedProvider(cfg.Storage.SeedFile, cfg.DemoMode(), appLogger)
	if n, err := service.SeedIfEmpty(ctx, seeds, addrRepo, tagRepo, appLogger); err != nil {
		zapLogger.Warn("Seeding failed", zap.Error(err))
	} else if n > 0 {
		zapLogger.Info("Store seeded", zap.Int("addresses", n))
	}

	if cfg.DemoMode() {
		zapLogger.Warn("No Alchemy API key configured, EVM and Solana refreshes are unavailable (demo mode)")
	}
	return app, nil
}

func (a *App) openStorage(l port.Logger) (port.AddressRepository, port.TagRepository, error) {
	if a.Config.Storage.InMemory || (a.Config.DemoMode() && a.Config.Storage.SeedFile == "") {
		l.Info("Using in-memory storage")
		return storage.NewMemoryAddressStore(), storage.NewMemoryTagStore(), nil
	}
	db, err := storage.NewPebbleDB(a.Config.Storage.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open storage at %s: %w", a.Config.Storage.Path, err)
	}
	a.closers = append(a.closers, func() {
		if err := db.Close(); err != nil {
			l.Error("Failed to close storage", "error", err)
		}
	})
	l.Info("Using pebble storage", "path", a.Config.Storage.Path)
	return storage.NewAddressStore(db), storage.NewTagStore(db), nil
}

// Router builds the HTTP API on top of the wired services.
func (a *App) Router(zapLogger *zap.Logger) *restapi.Router {
	return restapi.NewRouter(restapi.Deps{
		Addresses: a.Addresses,
		Tags:      a.Tags,
		Portfolio: a.Portfolio,
		Prices:    a.Prices,
		Reports:   a.Reports,
	}, restapi.Options{
		AllowedOrigins:    a.Config.Server.AllowedOrigins,
		AuthPassword:      a.Config.Auth.Password,
		AuthRequired:      a.Config.Auth.Required,
		BasicAuthUser:     a.Config.Auth.BasicAuthUser,
		BasicAuthPassword: a.Config.Auth.BasicAuthPassword,
		TransactionLimit:  a.Config.Performance.RecentTransactions,
	}, zapLogger)
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func limiterFor(cfg *configloader.Config, provider string) *rate.Limiter {
	rl := cfg.RateLimit(provider)
	return rate.NewLimiter(rate.Limit(rl.RequestsPerSecond), rl.Burst)
}
