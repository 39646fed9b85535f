package models

import "time"

// Participant represents a person entering the lottery.
// Code is the unique identifier printed on the entrant's ticket.
type Participant struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Roster is a named, immutable list of eligible participants,
// e.g. "employees" or "guests".
type Roster struct {
	Name         string        `json:"name"`
	Participants []Participant `json:"participants"`
}

// Size returns the number of loaded records, duplicates included.
func (r *Roster) Size() int {
	return len(r.Participants)
}

// Tier represents a single prize category in the lottery.
// It includes the display metadata, how many winners a single draw awards,
// and which rosters the winners are drawn from.
type Tier struct {
	Key             string   `json:"key" toml:"key"`
	DisplayName     string   `json:"displayName" toml:"display_name"`
	Icon            string   `json:"icon" toml:"icon"`
	WinnerCount     int      `json:"winnerCount" toml:"winner_count"`
	EligibleRosters []string `json:"eligibleRosters" toml:"eligible_rosters"`
}

// WinnerRecord stores the outcome of a single draw for one participant,
// linking a winner to a specific tier. The JSON keys match the ledger
// exported by the browser version of the draw, so old ledgers load as-is.
type WinnerRecord struct {
	Code            string    `json:"code"`
	Name            string    `json:"name"`
	TierKey         string    `json:"prize"`
	TierDisplayName string    `json:"prizeName"`
	TierIcon        string    `json:"prizeIcon"`
	Timestamp       time.Time `json:"timestamp"`
	ID              int64     `json:"id"`
}

// DrawResult is handed back to the presentation layer after a draw is committed.
type DrawResult struct {
	Tier    string        `json:"tier"`
	Winners []Participant `json:"winners"`
	// Warning is set when the draw was committed in memory but could not be persisted.
	Warning string `json:"warning,omitempty"`
}

// TierStats summarises one tier for the statistics panel.
type TierStats struct {
	Key       string `json:"key"`
	Winners   int    `json:"winners"`
	Available int    `json:"available"`
}

// Stats summarises the whole session.
type Stats struct {
	TotalParticipants int         `json:"totalParticipants"`
	TotalAvailable    int         `json:"totalAvailable"`
	TotalWinners      int         `json:"totalWinners"`
	Tiers             []TierStats `json:"tiers"`
}
