package domain

// BalanceRecord is the outcome of the latest balance fetch for one derived
// address. At most one record exists per (branch, index) pair, a re-fetch
// replaces the previous record.
type BalanceRecord struct {
	Branch   Branch
	Index    uint32
	Address  string
	Amount   uint64
	Failed   bool
	Attempts uint32
}

// AggregateResult is the state of the balance aggregation after a refresh:
// the current record set, the cumulative total of the successful amounts
// and the number of addresses whose latest fetch failed. Failed addresses
// contribute zero to the total, so whenever FailedCount is positive the
// total is a lower bound.
type AggregateResult struct {
	Records     []BalanceRecord
	Total       uint64
	FailedCount int
}
