package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/domain/entity"
	"portfolio_tracker/internal/pkg/metrics"
	"portfolio_tracker/internal/pkg/utils"

	"github.com/patrickmn/go-cache"
)

// providerIDs maps upper-cased internal symbols to CoinGecko asset ids.
var providerIDs = map[string]string{ //nolint:gochecknoglobals
	"BTC":     "bitcoin",
	"ETH":     "ethereum",
	"POL":     "polygon-ecosystem-token",
	"MATIC":   "polygon-ecosystem-token",
	"SOL":     "solana",
	"USDC":    "usd-coin",
	"USDT":    "tether",
	"WETH":    "weth",
	"WBTC":    "wrapped-bitcoin",
	"DAI":     "dai",
	"LINK":    "chainlink",
	"UNI":     "uniswap",
	"AAVE":    "aave",
	"CRV":     "curve-dao-token",
	"COMP":    "compound-governance-token",
	"MKR":     "maker",
	"SNX":     "havven",
	"1INCH":   "1inch",
	"WSTETH":  "wrapped-steth",
	"STETH":   "staked-ether",
	"RETH":    "rocket-pool-eth",
	"EUL":     "euler",
	"PENDLE":  "pendle",
	"INST":    "instadapp",
	"ARB":     "arbitrum",
	"OP":      "optimism",
	"CBBTC":   "coinbase-wrapped-btc",
	"MSOL":    "msol",
	"STSOL":   "lido-staked-sol",
	"BSOL":    "blazestake-staked-sol",
	"JITOSOL": "jito-staked-sol",
	"JUP":     "jupiter-exchange-solana",
	"PYTH":    "pyth-network",
	"ORCA":    "orca",
	"GMT":     "stepn",
	"SBR":     "saber",
	"DUST":    "dust-protocol",
	"USDCET":  "usd-coin-ethereum-bridged",
}

// ProviderIDFor returns the CoinGecko id of symbol, matched case-insensitively.
func ProviderIDFor(symbol string) (string, bool) {
	id, ok := providerIDs[strings.ToUpper(strings.TrimSpace(symbol))]
	return id, ok
}

// tokenPriceServiceImpl implements port.TokenPriceService
type tokenPriceServiceImpl struct {
	provider port.PriceProvider
	cache    *cache.Cache
	logger   port.Logger
}

// NewTokenPriceService creates a price resolver caching quotes per provider
// id for ttl.
func NewTokenPriceService(
	provider port.PriceProvider,
	ttl time.Duration,
	cleanupInterval time.Duration,
	l port.Logger,
) port.TokenPriceService {
	s := &tokenPriceServiceImpl{
		provider: provider,
		cache:    cache.New(ttl, cleanupInterval),
		logger:   l,
	}
	l.Info("TokenPriceService initialised", "cache_ttl", ttl.String(), "mapped_symbols", len(providerIDs))
	return s
}

// SupportsSymbol implements port.TokenPriceService.
func (s *tokenPriceServiceImpl) SupportsSymbol(symbol string) bool {
	_, ok := ProviderIDFor(symbol)
	return ok
}

// GetPrices implements port.TokenPriceService.
func (s *tokenPriceServiceImpl) GetPrices(ctx context.Context, symbols []string) (map[string]entity.PriceQuote, error) {
	result := make(map[string]entity.PriceQuote)

	symbols = utils.UniqueStrings(symbols)
	idsBySymbol := make(map[string]string, len(symbols))
	quotesByID := make(map[string]entity.PriceQuote)
	var missing []string

	for _, sym := range symbols {
		id, ok := ProviderIDFor(sym)
		if !ok {
			s.logger.Debug("No price id for symbol, skipping", "symbol", sym)
			continue
		}
		idsBySymbol[sym] = id
		if _, seen := quotesByID[id]; seen {
			continue
		}
		if cached, found := s.cache.Get(id); found {
			quotesByID[id] = cached.(entity.PriceQuote)
			metrics.PriceCache.WithLabelValues("hit").Inc()
			continue
		}
		// Placeholder so an id shared by two symbols is requested once.
		quotesByID[id] = entity.PriceQuote{}
		missing = append(missing, id)
	}

	if len(idsBySymbol) == 0 {
		return result, nil
	}

	if len(missing) > 0 {
		metrics.PriceCache.WithLabelValues("miss").Add(float64(len(missing)))
		s.logger.Debug("Fetching prices upstream", "ids", strings.Join(missing, ","))

		fetched, err := s.provider.GetSimplePrices(ctx, missing)
		if err != nil {
			s.logger.Warn("Failed to fetch prices", "ids_count", len(missing), "error", err)
			return nil, fmt.Errorf("fetch prices: %w", err)
		}
		for _, id := range missing {
			q, ok := fetched[id]
			if !ok {
				delete(quotesByID, id)
				continue
			}
			s.cache.Set(id, q, cache.DefaultExpiration)
			quotesByID[id] = q
		}
	}

	for sym, id := range idsBySymbol {
		q, ok := quotesByID[id]
		if !ok {
			continue
		}
		q.Symbol = sym
		result[sym] = q
	}
	return result, nil
}
