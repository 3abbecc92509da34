package entity

// Direction is the side of a transaction relative to the tracked address.
type Direction string

const (
	DirectionSent     Direction = "sent"
	DirectionReceived Direction = "received"
)

// Transaction is a recent transfer touching a tracked address.
// Timestamp is unix milliseconds on every chain.
type Transaction struct {
	Hash      string    `json:"hash"`
	Timestamp int64     `json:"timestamp"`
	Value     float64   `json:"value"`
	Type      Direction `json:"type"`
	Asset     string    `json:"asset,omitempty"`
	From      string    `json:"from,omitempty"`
	To        string    `json:"to,omitempty"`
}

// AddressTransaction is a Transaction tagged with the address it belongs to.
type AddressTransaction struct {
	Transaction
	AddressID   string `json:"addressId"`
	AddressName string `json:"addressName"`
	Chain       Chain  `json:"chain"`
}
