package entity

// MempoolChainStats are the funded/spent counters mempool.space reports for
// confirmed or mempool activity of an address.
type MempoolChainStats struct {
	FundedTxoCount int   `json:"funded_txo_count"`
	FundedTxoSum   int64 `json:"funded_txo_sum"`
	SpentTxoCount  int   `json:"spent_txo_count"`
	SpentTxoSum    int64 `json:"spent_txo_sum"`
	TxCount        int   `json:"tx_count"`
}

// MempoolAddressInfo is the body of GET /address/{address}.
type MempoolAddressInfo struct {
	Address      string            `json:"address"`
	ChainStats   MempoolChainStats `json:"chain_stats"`
	MempoolStats MempoolChainStats `json:"mempool_stats"`
}

// MempoolTxStatus is the confirmation state of a transaction.
type MempoolTxStatus struct {
	Confirmed   bool   `json:"confirmed"`
	BlockHeight int64  `json:"block_height"`
	BlockHash   string `json:"block_hash"`
	BlockTime   int64  `json:"block_time"` // unix seconds
}

// MempoolPrevout is the output an input spends.
type MempoolPrevout struct {
	ScriptPubKeyAddress string `json:"scriptpubkey_address"`
	Value               int64  `json:"value"`
}

// MempoolVin is a transaction input.
type MempoolVin struct {
	TxID    string          `json:"txid"`
	Vout    int             `json:"vout"`
	Prevout *MempoolPrevout `json:"prevout"`
}

// MempoolVout is a transaction output.
type MempoolVout struct {
	ScriptPubKeyAddress string `json:"scriptpubkey_address"`
	Value               int64  `json:"value"`
}

// MempoolTx is one element of GET /address/{address}/txs.
type MempoolTx struct {
	TxID   string          `json:"txid"`
	Vin    []MempoolVin    `json:"vin"`
	Vout   []MempoolVout   `json:"vout"`
	Fee    int64           `json:"fee"`
	Status MempoolTxStatus `json:"status"`
}
