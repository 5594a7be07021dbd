package domain

import (
	"sync"
)

// AddressLedger is the registry of the (branch, index) pairs materialized
// so far for the session key. For each branch the materialized indices form
// the contiguous range [0, high-water mark): expansion only ever appends,
// so addresses already handed out never change identity or position.
//
// Expand calls are serialized by an internal mutex, the ledger is the only
// writer of its own state.
type AddressLedger struct {
	mtx sync.Mutex

	parent     *KeyMaterial
	encoder    AddressEncoder
	branchKeys map[Branch]*KeyMaterial
	addresses  map[Branch][]DerivedAddress
}

// NewAddressLedger returns a ledger for the given watched key with the
// branch nodes already derived, and materializes the initial batch of
// addresses on both branches.
func NewAddressLedger(
	parent *KeyMaterial, encoder AddressEncoder, initialBatch uint32,
) (*AddressLedger, []DerivedAddress, error) {
	if parent == nil {
		return nil, nil, ErrNullParentKey
	}
	if encoder == nil {
		return nil, nil, ErrNullEncoder
	}
	if initialBatch == 0 {
		return nil, nil, ErrZeroBatchSize
	}

	branchKeys := make(map[Branch]*KeyMaterial, len(AllBranches))
	for _, branch := range AllBranches {
		branchKey, err := parent.BranchKey(branch)
		if err != nil {
			return nil, nil, &DerivationError{
				Branch: branch, Index: uint32(branch), Err: err,
			}
		}
		branchKeys[branch] = branchKey
	}

	ledger := &AddressLedger{
		parent:     parent,
		encoder:    encoder,
		branchKeys: branchKeys,
		addresses:  make(map[Branch][]DerivedAddress, len(AllBranches)),
	}

	// A partial expansion still returns a usable ledger along with the
	// DerivationError, the failing branch resumes at the next Expand.
	delta, err := ledger.Expand(initialBatch)
	return ledger, delta, err
}

// Expand materializes additionalCount more addresses per branch starting at
// each branch's high-water mark and returns only the newly created entries,
// external branch first, in increasing index order.
//
// The expansion is all-or-nothing per branch: if deriving any index of a
// branch fails, that branch's high-water mark is left untouched and a
// DerivationError naming the failing (branch, index) is returned, while the
// other branch is still expanded. Retrying is safe and resumes from the
// same point.
func (l *AddressLedger) Expand(additionalCount uint32) ([]DerivedAddress, error) {
	if additionalCount == 0 {
		return nil, ErrZeroBatchSize
	}

	l.mtx.Lock()
	defer l.mtx.Unlock()

	delta := make([]DerivedAddress, 0, int(additionalCount)*len(AllBranches))
	var expandErr error
	for _, branch := range AllBranches {
		branchDelta, err := l.expandBranch(branch, additionalCount)
		if err != nil {
			if expandErr == nil {
				expandErr = err
			}
			continue
		}
		l.addresses[branch] = append(l.addresses[branch], branchDelta...)
		delta = append(delta, branchDelta...)
	}

	return delta, expandErr
}

func (l *AddressLedger) expandBranch(
	branch Branch, additionalCount uint32,
) ([]DerivedAddress, error) {
	nextIndex := uint32(len(l.addresses[branch]))
	if nextIndex+additionalCount < nextIndex ||
		nextIndex+additionalCount > HardenedKeyStart {
		return nil, ErrLedgerExhausted
	}

	branchKey := l.branchKeys[branch]
	branchDelta := make([]DerivedAddress, 0, additionalCount)
	for index := nextIndex; index < nextIndex+additionalCount; index++ {
		childKey, err := branchKey.ChildKey(index)
		if err != nil {
			return nil, &DerivationError{Branch: branch, Index: index, Err: err}
		}
		address, err := l.encoder.Encode(childKey)
		if err != nil {
			return nil, &DerivationError{Branch: branch, Index: index, Err: err}
		}
		branchDelta = append(branchDelta, DerivedAddress{
			Branch:  branch,
			Index:   index,
			Key:     childKey,
			Address: address,
		})
	}
	return branchDelta, nil
}

// HighWaterMark returns the count of indices materialized so far on the
// given branch.
func (l *AddressLedger) HighWaterMark(branch Branch) uint32 {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	return uint32(len(l.addresses[branch]))
}

// Addresses returns the full materialized set, external branch first, in
// increasing index order.
func (l *AddressLedger) Addresses() []DerivedAddress {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	all := make([]DerivedAddress, 0, l.sizeLocked())
	for _, branch := range AllBranches {
		all = append(all, l.addresses[branch]...)
	}
	return all
}

// Size returns the total number of materialized addresses across both
// branches.
func (l *AddressLedger) Size() int {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	return l.sizeLocked()
}

// CanExpand returns whether the ledger still has derivable indices left on
// both branches.
func (l *AddressLedger) CanExpand() bool {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	for _, branch := range AllBranches {
		if uint32(len(l.addresses[branch])) >= HardenedKeyStart {
			return false
		}
	}
	return true
}

func (l *AddressLedger) sizeLocked() int {
	size := 0
	for _, branch := range AllBranches {
		size += len(l.addresses[branch])
	}
	return size
}
