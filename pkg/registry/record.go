package registry

import (
	"fmt"

	"github.com/agentstation/utc"
)

// RecordKey uniquely identifies a registry record.
type RecordKey struct {
	PlayerLookup string `json:"player_lookup" yaml:"player_lookup"`
	TeamAbbr     string `json:"team_abbr" yaml:"team_abbr"`
	Season       int    `json:"season" yaml:"season"`
}

// String returns the key in "lookup/team/season" form.
func (k RecordKey) String() string {
	return fmt.Sprintf("%s/%s/%d", k.PlayerLookup, k.TeamAbbr, k.Season)
}

// RegistryRecord is the canonical statement that a player played for a team
// in a season. At most one record exists per key. Fields are updated only
// through the freshness and authority rules applied by the aggregators.
type RegistryRecord struct {
	// Key
	PlayerLookup string `json:"player_lookup" yaml:"player_lookup"` // Canonical lookup
	TeamAbbr     string `json:"team_abbr" yaml:"team_abbr"`         // Mutable only by the source holding authority
	Season       int    `json:"season" yaml:"season"`               // Season start year, e.g. 2024 for 2024-25

	// Participation counts (gamebook-sourced)
	GamesPlayed         int `json:"games_played" yaml:"games_played"`                 // Verified active appearances
	TotalAppearances    int `json:"total_appearances" yaml:"total_appearances"`       // Active + inactive + dnp
	InactiveAppearances int `json:"inactive_appearances" yaml:"inactive_appearances"` //
	DNPAppearances      int `json:"dnp_appearances" yaml:"dnp_appearances"`           // Dressed, did not play

	// Identity metadata (roster-sourced)
	JerseyNumber string `json:"jersey_number,omitempty" yaml:"jersey_number,omitempty"`
	Position     string `json:"position,omitempty" yaml:"position,omitempty"`

	// Provenance
	UniversalPlayerID string             `json:"universal_player_id" yaml:"universal_player_id"`
	SourcePriority    int                `json:"source_priority" yaml:"source_priority"`           // Weight of the source that last asserted the team
	ConfidenceScore   float64            `json:"confidence_score" yaml:"confidence_score"`         // Advisory audit metadata; nothing gates on it
	LastProcessor     SourceKind         `json:"last_processor" yaml:"last_processor"`             // Processor that last touched the record
	ActivityDates     map[SourceKind]Date `json:"activity_dates" yaml:"activity_dates"`            // Per-source last data date; monotonic per source
	UpdateCounts      map[SourceKind]int  `json:"update_counts" yaml:"update_counts"`              // Per-source accepted-write counters

	// Timestamps
	CreatedAt utc.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt utc.Time `json:"updated_at" yaml:"updated_at"`
}

// Key returns the record's unique key.
func (r *RegistryRecord) Key() RecordKey {
	return RecordKey{PlayerLookup: r.PlayerLookup, TeamAbbr: r.TeamAbbr, Season: r.Season}
}

// ActivityDate returns the last data date the given source contributed to
// this record, or the zero date if the source has never touched it.
func (r *RegistryRecord) ActivityDate(source SourceKind) Date {
	if r.ActivityDates == nil {
		return ""
	}
	return r.ActivityDates[source]
}

// TouchedBy reports whether the given source has ever contributed to this
// record.
func (r *RegistryRecord) TouchedBy(source SourceKind) bool {
	if r.ActivityDates == nil {
		return false
	}
	_, ok := r.ActivityDates[source]
	return ok
}

// Clone returns a deep copy of the record.
func (r *RegistryRecord) Clone() *RegistryRecord {
	if r == nil {
		return nil
	}
	out := *r
	if r.ActivityDates != nil {
		out.ActivityDates = make(map[SourceKind]Date, len(r.ActivityDates))
		for k, v := range r.ActivityDates {
			out.ActivityDates[k] = v
		}
	}
	if r.UpdateCounts != nil {
		out.UpdateCounts = make(map[SourceKind]int, len(r.UpdateCounts))
		for k, v := range r.UpdateCounts {
			out.UpdateCounts[k] = v
		}
	}
	return &out
}

// UpsertStrategy controls how accepted records are written to the store.
type UpsertStrategy string

const (
	// UpsertMerge merges accepted fields into existing rows.
	UpsertMerge UpsertStrategy = "merge"
	// UpsertReplace replaces rows wholesale. Requires explicit confirmation
	// at the invocation surface.
	UpsertReplace UpsertStrategy = "replace"
)

// Valid reports whether the strategy is known.
func (s UpsertStrategy) Valid() bool {
	return s == UpsertMerge || s == UpsertReplace
}
