package seedloader

import (
	"fmt"
	"time"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/domain/entity"
)

// DemoProvider implements port.SeedProvider with a fixed set of well-known
// public addresses and pre-filled positions, used when no balance provider
// credentials are configured.
type DemoProvider struct {
	now func() time.Time
}

// NewDemoProvider creates a new DemoProvider.
func NewDemoProvider() port.SeedProvider {
	return &DemoProvider{now: time.Now}
}

func (p *DemoProvider) GetSeed() (entity.Seed, error) {
	return DemoSeed(p.now().UTC()), nil
}

func tokenBalance(contract, symbol, name, balance string, decimals uint8) entity.TokenBalance {
	return entity.TokenBalance{ContractAddress: contract, Symbol: symbol, Name: name, Balance: balance, Decimals: decimals}
}

// DemoSeed builds the demo data set relative to now.
func DemoSeed(now time.Time) entity.Seed {
	epoch := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ms := func(t time.Time) int64 { return t.UnixMilli() }

	tags := []entity.Tag{
		{ID: "founder", Name: "Founder", Color: "bg-indigo-500"},
		{ID: "ceo", Name: "CEO", Color: "bg-yellow-500"},
		{ID: "historic", Name: "Historic", Color: "bg-orange-500"},
		{ID: "whale", Name: "Whale", Color: "bg-cyan-500"},
	}
	for i := range tags {
		tags[i].CreatedAt = epoch
		tags[i].UpdatedAt = epoch
	}

	addresses := []entity.Address{
		{
			Name:        "Vitalik Buterin",
			Address:     "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045",
			Chain:       entity.ChainEthereum,
			Description: "Ethereum founder's known wallet",
			TagIDs:      []string{"founder"},
			Positions: []entity.ChainPosition{
				{
					Chain:   entity.ChainEthereum,
					Balance: 1234.56,
					Tokens: []entity.TokenBalance{
						tokenBalance("0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", "USDC", "USD Coin", "500000.5", 6),
						tokenBalance("0x1f9840a85d5af5bf1d1762f925bdaddc4201f984", "UNI", "Uniswap", "25000", 18),
					},
					LastTransactions: []entity.Transaction{
						{
							Hash:      "0x1234567890abcdef1234567890abcdef1234567890abcdef1234567890abcdef",
							Type:      entity.DirectionSent,
							Value:     0.5,
							Asset:     "ETH",
							Timestamp: ms(now.Add(-2 * time.Hour)),
						},
						{
							Hash:      "0xabcdef1234567890abcdef1234567890abcdef1234567890abcdef1234567890",
							Type:      entity.DirectionReceived,
							Value:     2.1,
							Asset:     "ETH",
							Timestamp: ms(now.Add(-5 * time.Hour)),
						},
					},
				},
				{
					Chain:   entity.ChainArbitrum,
					Balance: 45.23,
					Tokens: []entity.TokenBalance{
						tokenBalance("0x912ce59144191c1204e64559fe8253a0e49e6548", "ARB", "Arbitrum", "1000", 18),
					},
				},
			},
		},
		{
			Name:        "Coinbase CEO",
			Address:     "0x503828976D22510aad0201ac7EC88293211D23Da",
			Chain:       entity.ChainEthereum,
			Description: "Brian Armstrong's known address",
			TagIDs:      []string{"ceo"},
			Positions: []entity.ChainPosition{{
				Chain:   entity.ChainEthereum,
				Balance: 567.89,
				Tokens: []entity.TokenBalance{
					tokenBalance("0x2260fac5e5542a773aa44fbcfedf7c193bc2c599", "WBTC", "Wrapped Bitcoin", "10.5", 8),
				},
			}},
		},
		{
			Name:        "Satoshi Era Wallet",
			Address:     "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa",
			Chain:       entity.ChainBitcoin,
			Description: "Genesis block reward address",
			TagIDs:      []string{"historic"},
			Positions: []entity.ChainPosition{{
				Chain:   entity.ChainBitcoin,
				Balance: 68.34,
				LastTransactions: []entity.Transaction{{
					Hash:      "4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b",
					Type:      entity.DirectionReceived,
					Value:     50,
					Asset:     "BTC",
					Timestamp: ms(time.Date(2009, 1, 3, 18, 15, 5, 0, time.UTC)),
				}},
			}},
		},
		{
			Name:        "DeFi Whale",
			Address:     "0x47ac0Fb4F2D84898e4D9E7b4DaB3C24507a6D503",
			Chain:       entity.ChainEthereum,
			Description: "Large DeFi investor",
			TagIDs:      []string{"whale"},
			Positions: []entity.ChainPosition{{
				Chain:   entity.ChainEthereum,
				Balance: 2567.12,
				Tokens: []entity.TokenBalance{
					tokenBalance("0x7fc66500c84a76ad7e9c93437bfc5ac33e2ddae9", "AAVE", "Aave", "5000", 18),
					tokenBalance("0xc00e94cb662c3520282e6f5717214004a7f26888", "COMP", "Compound", "1500", 18),
				},
			}},
		},
	}

	for i := range addresses {
		a := &addresses[i]
		a.ID = fmt.Sprintf("demo-%d", i)
		a.Network = entity.DefaultNetwork
		a.CreatedAt = epoch.Add(time.Duration(i) * time.Minute)
		a.UpdatedAt = a.CreatedAt
		updated := now.Add(-time.Duration(i+1) * time.Hour)
		a.LastUpdated = &updated
		for j := range a.Positions {
			a.Positions[j].LastUpdated = updated
			if a.Positions[j].Tokens == nil {
				a.Positions[j].Tokens = []entity.TokenBalance{}
			}
			if a.Positions[j].LastTransactions == nil {
				a.Positions[j].LastTransactions = []entity.Transaction{}
			}
		}
	}
	return entity.Seed{Tags: tags, Addresses: addresses}
}
