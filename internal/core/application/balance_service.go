package application

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/EvanJRichard/wallet-balance-tool/internal/core/domain"
	"github.com/EvanJRichard/wallet-balance-tool/internal/core/ports"
)

// BalanceService is the session-scoped orchestrator of the watch-only
// workflow: it owns the address ledger of the current key, fans out
// concurrent balance queries to the explorer and keeps the running total.
// The session lives until a new key is loaded, which simply means creating
// a new service and dropping this one.
type BalanceService interface {
	// SessionID identifies the session tied to the current key.
	SessionID() string
	// Refresh fetches the balance of every address that has no record yet
	// or whose latest fetch failed, and folds the outcomes into the running
	// total. Cancelling the context discards the whole in-flight batch.
	Refresh(ctx context.Context) (*domain.AggregateResult, error)
	// LoadMore expands the ledger by the configured increment and fetches
	// balances for the newly materialized addresses only.
	LoadMore(ctx context.Context) (*domain.AggregateResult, error)
	// DisplayState returns what the presentation layer needs to render the
	// session: the ordered address list with per-address state, the total
	// and whether more addresses can be loaded.
	DisplayState() *DisplayState
}

// NewBalanceServiceOpts is the struct given to NewBalanceService.
type NewBalanceServiceOpts struct {
	ParentKey             *domain.KeyMaterial
	Encoder               domain.AddressEncoder
	ExplorerSvc           ports.Explorer
	InitialBatch          uint32
	LoadMoreIncrement     uint32
	MaxConcurrentRequests int
}

func (o NewBalanceServiceOpts) validate() error {
	if o.ParentKey == nil {
		return domain.ErrNullParentKey
	}
	if o.Encoder == nil {
		return domain.ErrNullEncoder
	}
	if o.ExplorerSvc == nil {
		return ErrNullExplorer
	}
	if o.InitialBatch == 0 {
		return domain.ErrZeroBatchSize
	}
	if o.LoadMoreIncrement == 0 {
		return ErrInvalidLoadMoreIncrement
	}
	if o.MaxConcurrentRequests <= 0 {
		return ErrInvalidConcurrency
	}
	return nil
}

type recordKey struct {
	branch domain.Branch
	index  uint32
}

type balanceService struct {
	sessionID         string
	ledger            *domain.AddressLedger
	explorerSvc       ports.Explorer
	loadMoreIncrement uint32
	maxInFlight       int

	mtx         sync.Mutex
	records     map[recordKey]*domain.BalanceRecord
	total       uint64
	failedCount int
}

// NewBalanceService materializes the initial batch of addresses for the
// given key on both branches and returns the session service. The initial
// batch is derived but not fetched, call Refresh for that.
func NewBalanceService(opts NewBalanceServiceOpts) (BalanceService, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	ledger, delta, err := domain.NewAddressLedger(
		opts.ParentKey, opts.Encoder, opts.InitialBatch,
	)
	if err != nil {
		var derivationErr *domain.DerivationError
		if !errors.As(err, &derivationErr) || len(delta) == 0 {
			return nil, err
		}
		log.WithError(err).Warn(
			"skipped underivable index, expansion resumes at next load",
		)
	}

	sessionID := uuid.New().String()
	log.Debugf(
		"new session %s with %d initial addresses", sessionID, len(delta),
	)

	return &balanceService{
		sessionID:         sessionID,
		ledger:            ledger,
		explorerSvc:       opts.ExplorerSvc,
		loadMoreIncrement: opts.LoadMoreIncrement,
		maxInFlight:       opts.MaxConcurrentRequests,
		records:           map[recordKey]*domain.BalanceRecord{},
	}, nil
}

func (s *balanceService) SessionID() string {
	return s.sessionID
}

func (s *balanceService) Refresh(ctx context.Context) (*domain.AggregateResult, error) {
	return s.fetch(ctx, s.unresolvedAddresses())
}

func (s *balanceService) LoadMore(ctx context.Context) (*domain.AggregateResult, error) {
	delta, err := s.ledger.Expand(s.loadMoreIncrement)
	if err != nil {
		var derivationErr *domain.DerivationError
		if !errors.As(err, &derivationErr) || len(delta) == 0 {
			return nil, err
		}
		log.WithError(err).Warn(
			"skipped underivable index, expansion resumes at next load",
		)
	}
	log.Debugf("session %s expanded by %d addresses", s.sessionID, len(delta))

	return s.fetch(ctx, delta)
}

// fetch issues one balance query per target address, at most maxInFlight
// at a time, funnels the outcomes through a single channel and folds them
// into the session state in one place. Oracle failures are recorded per
// address and never abort the batch, only context cancellation does, in
// which case nothing of the batch is folded.
func (s *balanceService) fetch(
	ctx context.Context, targets []domain.DerivedAddress,
) (*domain.AggregateResult, error) {
	if len(targets) > 0 {
		results := make(chan domain.BalanceRecord, len(targets))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.maxInFlight)
		for i := range targets {
			target := targets[i]
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				amount, err := s.explorerSvc.GetAddressBalance(gctx, target.Address)
				if gctx.Err() != nil {
					return gctx.Err()
				}
				record := domain.BalanceRecord{
					Branch:  target.Branch,
					Index:   target.Index,
					Address: target.Address,
					Amount:  amount,
					Failed:  err != nil,
				}
				if err != nil {
					record.Amount = 0
					log.WithError(err).Debugf(
						"failed to fetch balance for %s", target.DerivationPath(),
					)
				}
				results <- record
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			// The refresh was cancelled: results completed before the
			// cancellation are dropped with the channel, the ledger and the
			// folded state are untouched.
			return nil, err
		}
		close(results)

		staged := make([]domain.BalanceRecord, 0, len(targets))
		for record := range results {
			staged = append(staged, record)
		}
		s.fold(staged)
	}

	return s.aggregateResult(), nil
}

// fold replaces the record of each fetched address and adjusts the running
// total by the delta, it never re-sums the historical record set.
func (s *balanceService) fold(staged []domain.BalanceRecord) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for _, record := range staged {
		key := recordKey{record.Branch, record.Index}
		if existing, ok := s.records[key]; ok {
			record.Attempts = existing.Attempts + 1
			if existing.Failed {
				s.failedCount--
			} else {
				s.total -= existing.Amount
			}
		} else {
			record.Attempts = 1
		}
		if record.Failed {
			s.failedCount++
		} else {
			s.total += record.Amount
		}

		folded := record
		s.records[key] = &folded
	}
}

func (s *balanceService) unresolvedAddresses() []domain.DerivedAddress {
	addresses := s.ledger.Addresses()

	s.mtx.Lock()
	defer s.mtx.Unlock()

	targets := make([]domain.DerivedAddress, 0, len(addresses))
	for _, addr := range addresses {
		record, ok := s.records[recordKey{addr.Branch, addr.Index}]
		if !ok || record.Failed {
			targets = append(targets, addr)
		}
	}
	return targets
}

func (s *balanceService) aggregateResult() *domain.AggregateResult {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	records := make([]domain.BalanceRecord, 0, len(s.records))
	for _, record := range s.records {
		records = append(records, *record)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Branch != records[j].Branch {
			return records[i].Branch < records[j].Branch
		}
		return records[i].Index < records[j].Index
	})

	return &domain.AggregateResult{
		Records:     records,
		Total:       s.total,
		FailedCount: s.failedCount,
	}
}
