// Package aggregator turns raw per-source facts into registry mutations.
// Each aggregator variant (gamebook, roster, movement) batches its facts,
// bulk-resolves identities, bulk-fetches existing records and aliases, and
// then pushes every candidate mutation through the temporal guard, the
// freshness arbiter, and the authority resolver before writing. Reads and
// writes are batched so a run costs a small constant number of store round
// trips regardless of player volume.
package aggregator

import (
	"github.com/agentstation/playerregistry/pkg/registry"
)

// ParticipationStatus is a player's status for one game.
type ParticipationStatus string

const (
	// StatusActive means the player played.
	StatusActive ParticipationStatus = "active"
	// StatusInactive means the player was on the roster but inactive.
	StatusInactive ParticipationStatus = "inactive"
	// StatusDNP means the player dressed but did not play.
	StatusDNP ParticipationStatus = "dnp"
)

// GamebookFact is one verified per-game participation record.
type GamebookFact struct {
	PlayerName string              `json:"player_name" yaml:"player_name"`
	TeamAbbr   string              `json:"team_abbr" yaml:"team_abbr"`
	Season     int                 `json:"season" yaml:"season"`
	GameDate   registry.Date       `json:"game_date" yaml:"game_date"`
	Status     ParticipationStatus `json:"status" yaml:"status"`
}

// RosterFact is one row of a roster snapshot from one of the feeds.
type RosterFact struct {
	PlayerName   string        `json:"player_name" yaml:"player_name"`
	TeamAbbr     string        `json:"team_abbr" yaml:"team_abbr"`
	Season       int           `json:"season" yaml:"season"`
	JerseyNumber string        `json:"jersey_number,omitempty" yaml:"jersey_number,omitempty"`
	Position     string        `json:"position,omitempty" yaml:"position,omitempty"`
	ScrapeDate   registry.Date `json:"scrape_date" yaml:"scrape_date"`
	Feed         int           `json:"feed" yaml:"feed"` // Which of the independent roster feeds produced the row
}

// MovementFact is one trade or transaction record.
type MovementFact struct {
	PlayerName      string        `json:"player_name" yaml:"player_name"`
	NewTeamAbbr     string        `json:"new_team_abbr" yaml:"new_team_abbr"`
	Season          int           `json:"season" yaml:"season"`
	TransactionDate registry.Date `json:"transaction_date" yaml:"transaction_date"`
	Type            string        `json:"type" yaml:"type"` // e.g. "trade", "waiver", "signing"
}
