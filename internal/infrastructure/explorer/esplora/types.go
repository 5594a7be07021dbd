package esplora

// addressDetails is the subset of the esplora address endpoint response
// needed to compute a confirmed balance.
type addressDetails struct {
	ChainStats txoStats `json:"chain_stats"`
}

type txoStats struct {
	FundedTxoSum uint64 `json:"funded_txo_sum"`
	SpentTxoSum  uint64 `json:"spent_txo_sum"`
}

func (s txoStats) balance() uint64 {
	return s.FundedTxoSum - s.SpentTxoSum
}
