package application

import (
	"github.com/shopspring/decimal"
)

// AddressState is the per-address fetch state shown to the user.
type AddressState string

const (
	// AddressStatePending means no fetch has completed yet for the address
	AddressStatePending AddressState = "pending"
	// AddressStateFailed means the latest fetch for the address failed
	AddressStateFailed AddressState = "failed"
	// AddressStateConfirmed means the latest fetch succeeded
	AddressStateConfirmed AddressState = "confirmed"
)

// AddressDisplay is one row of the rendered address list.
type AddressDisplay struct {
	Address        string
	DerivationPath string
	State          AddressState
	Amount         uint64
	AmountBTC      string
}

// DisplayState is everything the presentation layer needs to render the
// session. TotalIsLowerBound flags that some addresses failed to resolve,
// so the displayed total reads "at least this much".
type DisplayState struct {
	Addresses         []AddressDisplay
	Total             uint64
	TotalBTC          string
	FailedCount       int
	TotalIsLowerBound bool
	CanLoadMore       bool
}

func (s *balanceService) DisplayState() *DisplayState {
	addresses := s.ledger.Addresses()
	canLoadMore := s.ledger.CanExpand()

	s.mtx.Lock()
	defer s.mtx.Unlock()

	list := make([]AddressDisplay, 0, len(addresses))
	for _, addr := range addresses {
		entry := AddressDisplay{
			Address:        addr.Address,
			DerivationPath: addr.DerivationPath(),
			State:          AddressStatePending,
		}
		if record, ok := s.records[recordKey{addr.Branch, addr.Index}]; ok {
			if record.Failed {
				entry.State = AddressStateFailed
			} else {
				entry.State = AddressStateConfirmed
				entry.Amount = record.Amount
				entry.AmountBTC = formatBTC(record.Amount)
			}
		}
		list = append(list, entry)
	}

	return &DisplayState{
		Addresses:         list,
		Total:             s.total,
		TotalBTC:          formatBTC(s.total),
		FailedCount:       s.failedCount,
		TotalIsLowerBound: s.failedCount > 0,
		CanLoadMore:       canLoadMore,
	}
}

func formatBTC(satoshis uint64) string {
	return decimal.NewFromInt(int64(satoshis)).Shift(-8).StringFixed(8)
}
