package entity

import "time"

// Address is a tracked wallet.
//
// Positions holds one entry per chain the address has balance data for. A
// single-chain address owns exactly one position once refreshed; an
// "ethereum" address owns one position per network in EVMChains.
type Address struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Address     string          `json:"address"`
	Chain       Chain           `json:"chain"`
	Network     string          `json:"network"`
	Description string          `json:"description,omitempty"`
	TagIDs      []string        `json:"tagIds"`
	Positions   []ChainPosition `json:"positions"`
	LastUpdated *time.Time      `json:"lastUpdated,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ChainPosition carries the refreshed state of an address on one chain.
// Error marks a zeroed placeholder for a network whose fetch failed.
type ChainPosition struct {
	Chain            Chain          `json:"chain"`
	Balance          float64        `json:"balance"`
	Tokens           []TokenBalance `json:"tokens"`
	LastTransactions []Transaction  `json:"lastTransactions"`
	LastUpdated      time.Time      `json:"lastUpdated"`
	Error            bool           `json:"error,omitempty"`
	ErrorMessage     string         `json:"errorMessage,omitempty"`
}

// PrimaryPosition returns the position on the address's own chain.
func (a Address) PrimaryPosition() (ChainPosition, bool) {
	for _, p := range a.Positions {
		if p.Chain == a.Chain {
			return p, true
		}
	}
	return ChainPosition{}, false
}

// Balance is the native balance on the address's own chain, 0 before the first refresh.
func (a Address) Balance() float64 {
	p, _ := a.PrimaryPosition()
	return p.Balance
}

// Tokens returns the token balances on the address's own chain.
func (a Address) Tokens() []TokenBalance {
	p, _ := a.PrimaryPosition()
	return p.Tokens
}

// LastTransactions returns the recent transactions on the address's own chain.
func (a Address) LastTransactions() []Transaction {
	p, _ := a.PrimaryPosition()
	return p.LastTransactions
}

// HasTag reports whether tagID is attached to the address.
func (a Address) HasTag(tagID string) bool {
	for _, id := range a.TagIDs {
		if id == tagID {
			return true
		}
	}
	return false
}

// AddressInput holds the user-supplied fields of a new address.
type AddressInput struct {
	Name        string   `json:"name"`
	Address     string   `json:"address"`
	Chain       string   `json:"chain"`
	Network     string   `json:"network"`
	Description string   `json:"description"`
	TagIDs      []string `json:"tagIds"`
}

// AddressPatch updates address metadata. Nil fields are left unchanged.
type AddressPatch struct {
	Name        *string   `json:"name"`
	Network     *string   `json:"network"`
	Description *string   `json:"description"`
	TagIDs      *[]string `json:"tagIds"`
}

// Seed is an initial data set. Address TagIDs refer to the ids in Tags.
type Seed struct {
	Tags      []Tag     `json:"tags" yaml:"tags"`
	Addresses []Address `json:"addresses" yaml:"addresses"`
}
