package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"portfolio_tracker/internal/domain/entity"
	wire "portfolio_tracker/internal/entity"
	"portfolio_tracker/internal/infrastructure/httpclient"

	"go.uber.org/zap"
)

// PlanPro selects the paid CoinGecko host and header.
const PlanPro = "pro"

// CoinGeckoClient fetches spot prices from CoinGecko's /simple/price endpoint.
type CoinGeckoClient struct {
	rest       *httpclient.RESTClient
	baseURL    string
	apiKey     string
	plan       string
	vsCurrency string
	logger     *zap.Logger
}

// NewCoinGeckoClient creates a new instance of CoinGeckoClient.
func NewCoinGeckoClient(rest *httpclient.RESTClient, baseURL, apiKey, plan, vsCurrency string, logger *zap.Logger) *CoinGeckoClient {
	if vsCurrency == "" {
		vsCurrency = "usd"
	}
	return &CoinGeckoClient{
		rest:       rest,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		plan:       strings.ToLower(plan),
		vsCurrency: strings.ToLower(vsCurrency),
		logger:     logger.Named("CoinGeckoClient"),
	}
}

// GetSimplePrices fetches quotes for ids in a single request. Ids the
// provider does not know are absent from the result.
func (c *CoinGeckoClient) GetSimplePrices(ctx context.Context, ids []string) (map[string]entity.PriceQuote, error) {
	if len(ids) == 0 {
		return map[string]entity.PriceQuote{}, nil
	}

	start := time.Now()
	var body wire.SimplePriceResponse
	if err := c.rest.GetJSON(ctx, "CoinGeckoClient.GetSimplePrices", c.simplePriceURL(ids), c.headers(), &body); err != nil {
		return nil, err
	}

	changeKey := c.vsCurrency + "_24h_change"
	quotes := make(map[string]entity.PriceQuote, len(body))
	for id, fields := range body {
		price, ok := fields[c.vsCurrency]
		if !ok {
			continue
		}
		quotes[id] = entity.PriceQuote{Price: price, Change24h: fields[changeKey]}
	}

	c.logger.Debug("Fetched simple prices",
		zap.Int("requested", len(ids)),
		zap.Int("received", len(quotes)),
		zap.Duration("took", time.Since(start)))
	return quotes, nil
}

func (c *CoinGeckoClient) simplePriceURL(ids []string) string {
	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))
	q.Set("vs_currencies", c.vsCurrency)
	q.Set("include_24hr_change", "true")
	return fmt.Sprintf("%s/simple/price?%s", c.baseURL, q.Encode())
}

func (c *CoinGeckoClient) headers() map[string]string {
	if c.apiKey == "" {
		return nil
	}
	if c.plan == PlanPro {
		return map[string]string{"x-cg-pro-api-key": c.apiKey}
	}
	return map[string]string{"x-cg-demo-api-key": c.apiKey}
}
