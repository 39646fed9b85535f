package services

import (
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/logger"
	"luckydraw/internal/models"
)

// IDGenerator hands out unique, time-ordered winner record ids.
type IDGenerator interface {
	Generate() snowflake.ID
}

// NewIDGenerator creates a snowflake node for the given node number (0-1023).
func NewIDGenerator(node int64) (IDGenerator, error) {
	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, fmt.Errorf("create snowflake node: %w", err)
	}
	return n, nil
}

// Ledger is the append-only record of all winners, kept newest-first.
// A code appears in it at most once.
type Ledger struct {
	records []models.WinnerRecord
	codes   map[string]bool
	byTier  map[string]int
	ids     IDGenerator
	now     func() time.Time
}

// NewLedger creates an empty ledger.
func NewLedger(ids IDGenerator, now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{
		records: make([]models.WinnerRecord, 0),
		codes:   make(map[string]bool),
		byTier:  make(map[string]int),
		ids:     ids,
		now:     now,
	}
}

// Record appends a winner for tier. It fails with ErrDuplicateWinner if the
// participant already won anything.
func (l *Ledger) Record(p models.Participant, tier *models.Tier) (models.WinnerRecord, error) {
	if l.codes[p.Code] {
		return models.WinnerRecord{}, fmt.Errorf("%w: %s", models.ErrDuplicateWinner, p.Code)
	}

	record := models.WinnerRecord{
		Code:            p.Code,
		Name:            p.Name,
		TierKey:         tier.Key,
		TierDisplayName: tier.DisplayName,
		TierIcon:        tier.Icon,
		Timestamp:       l.now().UTC().Truncate(time.Millisecond),
		ID:              l.ids.Generate().Int64(),
	}
	l.insert(record)
	return record, nil
}

// insert prepends so All() is newest-first without sorting.
func (l *Ledger) insert(record models.WinnerRecord) {
	l.records = append(l.records, models.WinnerRecord{})
	copy(l.records[1:], l.records)
	l.records[0] = record
	l.codes[record.Code] = true
	l.byTier[record.TierKey]++
}

// Restore replaces the ledger contents with records loaded from storage,
// given newest-first. Restoring the same records twice yields the same ledger.
// Repeated codes keep their newest entry and the rest are dropped.
func (l *Ledger) Restore(records []models.WinnerRecord) {
	l.Clear()
	for i := len(records) - 1; i >= 0; i-- {
		if l.codes[records[i].Code] {
			logger.Warningf("Dropping duplicate persisted winner %s (tier %s)", records[i].Code, records[i].TierKey)
			l.removeCode(records[i].Code)
		}
		l.insert(records[i])
	}
}

func (l *Ledger) removeCode(code string) {
	for i, r := range l.records {
		if r.Code == code {
			l.byTier[r.TierKey]--
			if l.byTier[r.TierKey] == 0 {
				delete(l.byTier, r.TierKey)
			}
			l.records = append(l.records[:i], l.records[i+1:]...)
			delete(l.codes, code)
			return
		}
	}
}

// Contains reports whether code has already won.
func (l *Ledger) Contains(code string) bool {
	return l.codes[code]
}

// Codes returns the set of winning codes.
func (l *Ledger) Codes() map[string]bool {
	codes := make(map[string]bool, len(l.codes))
	for code := range l.codes {
		codes[code] = true
	}
	return codes
}

// CountByTier returns how many winners tierKey has awarded.
func (l *Ledger) CountByTier(tierKey string) int {
	return l.byTier[tierKey]
}

// TierCounts returns the number of winners per tier key, including keys
// that are no longer configured.
func (l *Ledger) TierCounts() map[string]int {
	counts := make(map[string]int, len(l.byTier))
	for key, n := range l.byTier {
		counts[key] = n
	}
	return counts
}

// Len returns the number of winner records.
func (l *Ledger) Len() int {
	return len(l.records)
}

// Empty reports whether the ledger holds no records.
func (l *Ledger) Empty() bool {
	return len(l.records) == 0
}

// All returns a copy of the records, most recent first.
func (l *Ledger) All() []models.WinnerRecord {
	out := make([]models.WinnerRecord, len(l.records))
	copy(out, l.records)
	return out
}

// Clear empties the ledger.
func (l *Ledger) Clear() {
	l.records = make([]models.WinnerRecord, 0)
	l.codes = make(map[string]bool)
	l.byTier = make(map[string]int)
}
