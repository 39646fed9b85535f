package services

import (
	"luckydraw/internal/models"
)

// PoolManager keeps, per roster, the participants who have not won yet,
// in a shuffled order. It is the only owner of pool mutation.
type PoolManager struct {
	shuffler *Selector
	order    []string
	pools    map[string][]models.Participant
}

// NewPoolManager creates an empty manager that shuffles with shuffler.
func NewPoolManager(shuffler *Selector) *PoolManager {
	return &PoolManager{
		shuffler: shuffler,
		pools:    make(map[string][]models.Participant),
	}
}

// Initialize rebuilds every pool from rosters, excluding codes that already won.
func (m *PoolManager) Initialize(rosters []*models.Roster, won map[string]bool) {
	m.order = make([]string, 0, len(rosters))
	m.pools = make(map[string][]models.Participant, len(rosters))

	for _, roster := range rosters {
		pool := make([]models.Participant, 0, roster.Size())
		for _, p := range roster.Participants {
			if won[p.Code] {
				continue
			}
			pool = append(pool, p)
		}
		m.shuffler.Shuffle(pool)

		m.order = append(m.order, roster.Name)
		m.pools[roster.Name] = pool
	}
}

// Reset reinitializes pools to the full rosters, discarding prior exclusions.
func (m *PoolManager) Reset(rosters []*models.Roster) {
	m.Initialize(rosters, nil)
}

// Pool returns a copy of the named roster's available participants.
func (m *PoolManager) Pool(roster string) []models.Participant {
	pool := m.pools[roster]
	out := make([]models.Participant, len(pool))
	copy(out, pool)
	return out
}

// Size returns how many participants remain in the named roster's pool.
func (m *PoolManager) Size(roster string) int {
	return len(m.pools[roster])
}

// TotalSize returns how many participants remain across all pools.
func (m *PoolManager) TotalSize() int {
	total := 0
	for _, pool := range m.pools {
		total += len(pool)
	}
	return total
}

// AvailableCount sums the pool sizes over the tier's eligible rosters.
func (m *PoolManager) AvailableCount(tier *models.Tier) int {
	total := 0
	for _, roster := range tier.EligibleRosters {
		total += len(m.pools[roster])
	}
	return total
}

// Candidates concatenates the tier's eligible pools, keeping only the first
// entry for any code that appears more than once, so a single draw can never
// award the same code twice.
func (m *PoolManager) Candidates(tier *models.Tier) []models.Participant {
	seen := make(map[string]bool)
	candidates := make([]models.Participant, 0, m.AvailableCount(tier))
	for _, roster := range tier.EligibleRosters {
		for _, p := range m.pools[roster] {
			if seen[p.Code] {
				continue
			}
			seen[p.Code] = true
			candidates = append(candidates, p)
		}
	}
	return candidates
}

// Remove drops every participant whose code is in codes from every pool.
// A winner under one tier must vanish from tiers sharing or overlapping its roster.
func (m *PoolManager) Remove(codes map[string]bool) {
	if len(codes) == 0 {
		return
	}
	for name, pool := range m.pools {
		kept := pool[:0]
		for _, p := range pool {
			if !codes[p.Code] {
				kept = append(kept, p)
			}
		}
		m.pools[name] = kept
	}
}

// Contains reports whether code is still available in any pool.
func (m *PoolManager) Contains(code string) bool {
	for _, name := range m.order {
		for _, p := range m.pools[name] {
			if p.Code == code {
				return true
			}
		}
	}
	return false
}
