package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/logger"
	"luckydraw/internal/models"
)

// DefaultLedgerKey is the key the winner ledger is stored under.
const DefaultLedgerKey = "luckyDrawWinners"

// LedgerRepository serializes the winner ledger to a Store as a JSON array,
// newest record first.
type LedgerRepository struct {
	store Store
	key   string
}

// NewLedgerRepository stores the ledger in store under key, or
// DefaultLedgerKey when key is empty.
func NewLedgerRepository(store Store, key string) *LedgerRepository {
	if key == "" {
		key = DefaultLedgerKey
	}
	return &LedgerRepository{store: store, key: key}
}

// Save writes the full ledger. Failures wrap models.ErrPersistenceFailure.
func (r *LedgerRepository) Save(ctx context.Context, records []models.WinnerRecord) error {
	if records == nil {
		records = []models.WinnerRecord{}
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", models.ErrPersistenceFailure, err)
	}
	if err := r.store.Set(ctx, r.key, string(payload)); err != nil {
		return fmt.Errorf("%w: %v", models.ErrPersistenceFailure, err)
	}
	return nil
}

// Load reads the ledger. An absent or unparsable payload yields an empty
// ledger and no error, so the draw can always start. A failing store yields
// an empty ledger and an error wrapping models.ErrPersistenceFailure.
func (r *LedgerRepository) Load(ctx context.Context) ([]models.WinnerRecord, error) {
	payload, err := r.store.Get(ctx, r.key)
	if errors.Is(err, models.ErrNotFound) {
		return []models.WinnerRecord{}, nil
	}
	if err != nil {
		return []models.WinnerRecord{}, fmt.Errorf("%w: %v", models.ErrPersistenceFailure, err)
	}

	var records []models.WinnerRecord
	if err := json.Unmarshal([]byte(payload), &records); err != nil {
		logger.Warningf("Ignoring corrupt ledger under %s: %v", r.key, err)
		return []models.WinnerRecord{}, nil
	}

	valid := make([]models.WinnerRecord, 0, len(records))
	for _, record := range records {
		if record.Code == "" {
			logger.Warningf("Ignoring persisted winner without code (id %d)", record.ID)
			continue
		}
		valid = append(valid, record)
	}
	return valid, nil
}

// Purge deletes the persisted ledger.
func (r *LedgerRepository) Purge(ctx context.Context) error {
	if err := r.store.Del(ctx, r.key); err != nil {
		return fmt.Errorf("%w: %v", models.ErrPersistenceFailure, err)
	}
	return nil
}
