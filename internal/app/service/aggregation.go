package service

import (
	"sort"
	"strings"

	"portfolio_tracker/internal/domain/entity"
	"portfolio_tracker/internal/pkg/utils"
)

// MaxTopTokens is the number of holdings kept in a summary.
const MaxTopTokens = 10

// DefaultRecentTransactions is the transaction feed length when none is requested.
const DefaultRecentTransactions = 10

// lookupPrice resolves symbol exactly, then upper-cased. Unknown symbols are priced at zero.
func lookupPrice(prices map[string]entity.PriceQuote, symbol string) entity.PriceQuote {
	if q, ok := prices[symbol]; ok {
		return q
	}
	if q, ok := prices[strings.ToUpper(symbol)]; ok {
		return q
	}
	return entity.PriceQuote{}
}

// positionAssets lists the priced positions of one chain position: the
// native balance when positive, then every token with a positive balance.
func positionAssets(pos entity.ChainPosition, prices map[string]entity.PriceQuote) ([]entity.PortfolioAsset, float64) {
	var assets []entity.PortfolioAsset
	var weightedChange float64

	add := func(symbol, name string, balance float64, kind entity.AssetType) {
		q := lookupPrice(prices, symbol)
		usd := balance * q.Price
		weightedChange += usd * q.Change24h / 100
		assets = append(assets, entity.PortfolioAsset{
			Symbol:   symbol,
			Name:     name,
			Balance:  balance,
			USDValue: usd,
			Chain:    pos.Chain,
			Type:     kind,
		})
	}

	if pos.Balance > 0 {
		info := pos.Chain.Info()
		add(info.NativeSymbol, info.NativeName, pos.Balance, entity.AssetTypeNative)
	}
	for _, tb := range pos.Tokens {
		balance := utils.ParseAmount(tb.Balance)
		if balance <= 0 {
			continue
		}
		add(tb.Symbol, tb.Name, balance, entity.AssetTypeToken)
	}
	return assets, weightedChange
}

func percentOf(value, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return value / total * 100
}

// CalculatePortfolioSummary values every position of addresses with prices
// and aggregates them by chain and by symbol. It never fails: unknown symbols
// are valued at $0 and zero balances are left out.
//
// Native coins appear both in NativeAssets and in TopTokens so the top
// holdings can rank coins and tokens together.
func CalculatePortfolioSummary(addresses []entity.Address, prices map[string]entity.PriceQuote) entity.PortfolioSummary {
	var (
		assets         []entity.PortfolioAsset
		total          float64
		weightedChange float64
	)
	for _, addr := range addresses {
		for _, pos := range addr.Positions {
			posAssets, change := positionAssets(pos, prices)
			assets = append(assets, posAssets...)
			weightedChange += change
			for _, a := range posAssets {
				total += a.USDValue
			}
		}
	}

	for i := range assets {
		assets[i].Percentage = percentOf(assets[i].USDValue, total)
	}

	summary := entity.PortfolioSummary{
		TotalValue:       total,
		ChainAllocations: chainAllocations(assets, total),
		TopTokens:        tokenHoldings(assets, total),
		NativeAssets:     []entity.PortfolioAsset{},
	}
	if total > 0 {
		summary.Change24h = weightedChange / total * 100
	}
	for _, a := range assets {
		if a.Type == entity.AssetTypeNative {
			summary.NativeAssets = append(summary.NativeAssets, a)
		}
	}
	summary.TotalAssets = len(summary.NativeAssets) + len(summary.TopTokens)
	return summary
}

func chainAllocations(assets []entity.PortfolioAsset, total float64) []entity.ChainAllocation {
	index := make(map[entity.Chain]int)
	allocations := make([]entity.ChainAllocation, 0)
	for _, a := range assets {
		i, ok := index[a.Chain]
		if !ok {
			info := a.Chain.Info()
			i = len(allocations)
			index[a.Chain] = i
			allocations = append(allocations, entity.ChainAllocation{
				Chain:  a.Chain,
				Label:  info.Label,
				Color:  info.Color,
				Assets: []entity.PortfolioAsset{},
			})
		}
		allocations[i].USDValue += a.USDValue
		allocations[i].Assets = append(allocations[i].Assets, a)
	}
	for i := range allocations {
		allocations[i].Percentage = percentOf(allocations[i].USDValue, total)
	}
	sort.SliceStable(allocations, func(i, j int) bool {
		return allocations[i].USDValue > allocations[j].USDValue
	})
	return allocations
}

func tokenHoldings(assets []entity.PortfolioAsset, total float64) []entity.TokenHolding {
	index := make(map[string]int)
	holdings := make([]entity.TokenHolding, 0)
	for _, a := range assets {
		i, ok := index[a.Symbol]
		if !ok {
			i = len(holdings)
			index[a.Symbol] = i
			holdings = append(holdings, entity.TokenHolding{Symbol: a.Symbol, Name: a.Name})
		}
		h := &holdings[i]
		h.TotalBalance += a.Balance
		h.USDValue += a.USDValue

		merged := false
		for j := range h.Chains {
			if h.Chains[j].Chain == a.Chain {
				h.Chains[j].Balance += a.Balance
				h.Chains[j].USDValue += a.USDValue
				merged = true
				break
			}
		}
		if !merged {
			h.Chains = append(h.Chains, entity.HoldingChain{Chain: a.Chain, Balance: a.Balance, USDValue: a.USDValue})
		}
	}
	for i := range holdings {
		holdings[i].Percentage = percentOf(holdings[i].USDValue, total)
	}
	sort.SliceStable(holdings, func(i, j int) bool {
		return holdings[i].USDValue > holdings[j].USDValue
	})
	if len(holdings) > MaxTopTokens {
		holdings = holdings[:MaxTopTokens]
	}
	return holdings
}

// RecentTransactions flattens the transactions of every position, newest
// first, tagged with the owning address. limit <= 0 means DefaultRecentTransactions.
func RecentTransactions(addresses []entity.Address, limit int) []entity.AddressTransaction {
	if limit <= 0 {
		limit = DefaultRecentTransactions
	}
	out := make([]entity.AddressTransaction, 0)
	for _, addr := range addresses {
		for _, pos := range addr.Positions {
			for _, tx := range pos.LastTransactions {
				out = append(out, entity.AddressTransaction{
					Transaction: tx,
					AddressID:   addr.ID,
					AddressName: addr.Name,
					Chain:       pos.Chain,
				})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// SymbolsOf returns the distinct asset symbols held across addresses, natives
// first per position, in first-seen order.
func SymbolsOf(addresses []entity.Address) []string {
	var symbols []string
	for _, addr := range addresses {
		for _, pos := range addr.Positions {
			if sym := pos.Chain.NativeSymbol(); sym != "" {
				symbols = append(symbols, sym)
			}
			for _, tb := range pos.Tokens {
				symbols = append(symbols, tb.Symbol)
			}
		}
	}
	return utils.UniqueStrings(symbols)
}
