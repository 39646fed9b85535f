package services

import (
	"context"
	"errors"
	"fmt"
	"luckydraw/internal/metrics"
	"luckydraw/internal/models"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/logger"
)

// LedgerStore persists the winner ledger between runs.
type LedgerStore interface {
	Save(ctx context.Context, records []models.WinnerRecord) error
	Load(ctx context.Context) ([]models.WinnerRecord, error)
	Purge(ctx context.Context) error
}

// Option customises a LotteryService.
type Option func(*options)

type options struct {
	rng     RandomSource
	ids     IDGenerator
	now     func() time.Time
	metrics *metrics.Metrics
}

// WithRandomSource fixes the generator behind shuffles and picks.
func WithRandomSource(rng RandomSource) Option {
	return func(o *options) { o.rng = rng }
}

// WithIDGenerator replaces the default snowflake node.
func WithIDGenerator(ids IDGenerator) Option {
	return func(o *options) { o.ids = ids }
}

// WithClock replaces time.Now for winner timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithMetrics records draw activity on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// LotteryService is the draw engine. It owns the registry, the pools and the
// ledger of a single session; all mutation goes through Draw and Reset.
type LotteryService struct {
	mu      sync.Mutex
	drawing atomic.Bool

	registry *Registry
	tiers    []models.Tier
	tierIdx  map[string]int

	selector *Selector
	pools    *PoolManager
	ledger   *Ledger
	store    LedgerStore
	metrics  *metrics.Metrics
}

// NewLotteryService creates an engine over registry and tiers with an empty
// ledger. Call Load to re-hydrate a persisted ledger.
func NewLotteryService(registry *Registry, tiers []models.Tier, store LedgerStore, opts ...Option) (*LotteryService, error) {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = NewRandomSource()
	}
	if o.ids == nil {
		ids, err := NewIDGenerator(1)
		if err != nil {
			return nil, err
		}
		o.ids = ids
	}

	tierIdx := make(map[string]int, len(tiers))
	for i := range tiers {
		t := &tiers[i]
		if t.Key == "" {
			return nil, fmt.Errorf("tier %d has no key", i)
		}
		if _, dup := tierIdx[t.Key]; dup {
			return nil, fmt.Errorf("duplicate tier key %q", t.Key)
		}
		if t.WinnerCount < 1 {
			return nil, fmt.Errorf("tier %q: winner count must be at least 1, got %d", t.Key, t.WinnerCount)
		}
		if len(t.EligibleRosters) == 0 {
			return nil, fmt.Errorf("tier %q draws from no roster", t.Key)
		}
		for _, roster := range t.EligibleRosters {
			if _, ok := registry.Roster(roster); !ok {
				return nil, fmt.Errorf("tier %q: %w: %s", t.Key, models.ErrUnknownRoster, roster)
			}
		}
		tierIdx[t.Key] = i
	}

	selector := NewSelector(o.rng)
	s := &LotteryService{
		registry: registry,
		tiers:    append([]models.Tier(nil), tiers...),
		tierIdx:  tierIdx,
		selector: selector,
		pools:    NewPoolManager(selector),
		ledger:   NewLedger(o.ids, o.now),
		store:    store,
		metrics:  o.metrics,
	}
	s.pools.Initialize(registry.Rosters(), nil)
	s.refreshGauges()
	return s, nil
}

// Load re-hydrates the ledger from the store and rebuilds the pools without
// the codes that already won. A failing store leaves the session empty and
// returns an error wrapping models.ErrPersistenceFailure; the engine remains usable.
func (s *LotteryService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.store.Load(ctx)
	if err != nil {
		s.metrics.RecordPersistenceFailure()
		logger.Warningf("Starting with an empty ledger: %v", err)
	}

	s.ledger.Restore(records)
	for _, key := range s.retiredTiers() {
		logger.Warningf("Restored %d winner(s) under tier %q, which is no longer configured", s.ledger.CountByTier(key), key)
	}
	s.pools.Initialize(s.registry.Rosters(), s.ledger.Codes())
	s.refreshGauges()
	logger.Infof("Restored %d winners, %d participants available", s.ledger.Len(), s.pools.TotalSize())
	return err
}

func (s *LotteryService) tier(key string) (*models.Tier, error) {
	i, ok := s.tierIdx[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrUnknownTier, key)
	}
	return &s.tiers[i], nil
}

// Tiers returns the configured tiers in display order.
func (s *LotteryService) Tiers() []models.Tier {
	tiers := make([]models.Tier, len(s.tiers))
	copy(tiers, s.tiers)
	return tiers
}

// AvailableCount returns how many participants the tier can still draw from.
func (s *LotteryService) AvailableCount(tierKey string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tier, err := s.tier(tierKey)
	if err != nil {
		return 0, err
	}
	return s.pools.AvailableCount(tier), nil
}

// GetEligibleParticipants returns the participants a draw for tierKey would
// pick from, without drawing.
func (s *LotteryService) GetEligibleParticipants(tierKey string) ([]models.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tier, err := s.tier(tierKey)
	if err != nil {
		return nil, err
	}
	return s.pools.Candidates(tier), nil
}

// Draw selects the tier's winners, records them, removes them from every pool
// and persists the ledger, as one step. Only one draw runs at a time; a
// concurrent request fails with models.ErrDrawInProgress. When fewer
// participants remain than the tier awards, all of them win.
//
// Once selection has happened the draw is committed: cancelling ctx cannot
// roll it back, and a failed write only sets DrawResult.Warning.
func (s *LotteryService) Draw(ctx context.Context, tierKey string) (*models.DrawResult, error) {
	if !s.drawing.CompareAndSwap(false, true) {
		return nil, models.ErrDrawInProgress
	}
	defer s.drawing.Store(false)

	s.mu.Lock()
	defer s.mu.Unlock()

	tier, err := s.tier(tierKey)
	if err != nil {
		return nil, err
	}

	if s.pools.AvailableCount(tier) == 0 {
		s.metrics.RecordExhausted(tier.Key)
		return nil, fmt.Errorf("%w: %s", models.ErrPoolExhausted, tier.Key)
	}

	picked := s.selector.Select(s.pools.Candidates(tier), tier.WinnerCount)

	// Pools never hold a winning code, so this only fires on a broken invariant.
	for _, p := range picked {
		if s.ledger.Contains(p.Code) {
			logger.Errorf("Invariant violated: %s drawn for %s but already in the ledger", p.Code, tier.Key)
			return nil, fmt.Errorf("%w: %s", models.ErrDuplicateWinner, p.Code)
		}
	}

	codes := make(map[string]bool, len(picked))
	for _, p := range picked {
		if _, err := s.ledger.Record(p, tier); err != nil {
			logger.Errorf("Invariant violated while recording %s: %v", p.Code, err)
			return nil, err
		}
		codes[p.Code] = true
	}
	s.pools.Remove(codes)

	s.metrics.RecordDraw(tier.Key, len(picked))
	s.refreshGauges()
	logger.Infof("Drew %d winner(s) for %s, %d left for this tier", len(picked), tier.Key, s.pools.AvailableCount(tier))

	result := &models.DrawResult{
		Tier:    tier.Key,
		Winners: picked,
	}

	if err := s.store.Save(context.WithoutCancel(ctx), s.ledger.All()); err != nil {
		s.metrics.RecordPersistenceFailure()
		logger.Warningf("Draw for %s kept in memory only: %v", tier.Key, err)
		result.Warning = err.Error()
	}

	return result, nil
}

// GetLedgerSnapshot returns every winner, most recent first.
func (s *LotteryService) GetLedgerSnapshot() []models.WinnerRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.All()
}

// CountByTier returns how many winners tierKey has awarded so far.
func (s *LotteryService) CountByTier(tierKey string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.CountByTier(tierKey)
}

// Stats summarises the session for the statistics panel.
func (s *LotteryService) Stats() models.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := models.Stats{
		TotalParticipants: s.registry.Size(),
		TotalAvailable:    s.pools.TotalSize(),
		TotalWinners:      s.ledger.Len(),
		Tiers:             make([]models.TierStats, 0, len(s.tiers)),
	}
	for i := range s.tiers {
		t := &s.tiers[i]
		stats.Tiers = append(stats.Tiers, models.TierStats{
			Key:       t.Key,
			Winners:   s.ledger.CountByTier(t.Key),
			Available: s.pools.AvailableCount(t),
		})
	}
	// Winners restored under tiers that were since removed still count.
	for _, key := range s.retiredTiers() {
		stats.Tiers = append(stats.Tiers, models.TierStats{
			Key:     key,
			Winners: s.ledger.CountByTier(key),
		})
	}
	return stats
}

// retiredTiers returns, sorted, the ledger's tier keys that are not configured.
func (s *LotteryService) retiredTiers() []string {
	var keys []string
	for key := range s.ledger.TierCounts() {
		if _, ok := s.tierIdx[key]; !ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// Reset clears the ledger, refills every pool from the registry and purges
// the persisted copy. The in-memory reset holds even if the purge fails.
func (s *LotteryService) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ledger.Clear()
	s.pools.Reset(s.registry.Rosters())
	s.metrics.RecordReset()
	s.refreshGauges()
	logger.Infof("Session reset, %d participants available", s.pools.TotalSize())

	if err := s.store.Purge(ctx); err != nil {
		s.metrics.RecordPersistenceFailure()
		logger.Warningf("Reset kept in memory only: %v", err)
		return err
	}
	return nil
}

func (s *LotteryService) refreshGauges() {
	for i := range s.tiers {
		s.metrics.SetAvailable(s.tiers[i].Key, s.pools.AvailableCount(&s.tiers[i]))
	}
}

// IsUserError reports whether err is a recoverable, operator-facing condition
// rather than a programming or infrastructure error.
func IsUserError(err error) bool {
	return errors.Is(err, models.ErrPoolExhausted) ||
		errors.Is(err, models.ErrUnknownTier) ||
		errors.Is(err, models.ErrDrawInProgress)
}
