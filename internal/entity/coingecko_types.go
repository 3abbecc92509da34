package entity

// SimplePriceResponse is the body of CoinGecko's /simple/price endpoint,
// keyed by CoinGecko id and then by field name ("usd", "usd_24h_change").
type SimplePriceResponse map[string]map[string]float64

// CoinGeckoErrorBody is returned by CoinGecko on some 4xx responses.
type CoinGeckoErrorBody struct {
	Status struct {
		ErrorCode    int    `json:"error_code"`
		ErrorMessage string `json:"error_message"`
	} `json:"status"`
}
