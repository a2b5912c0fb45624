package registry

import (
	"github.com/agentstation/utc"
)

// PlayerIdentity maps a canonical lookup to a stable universal player id.
// Identities are created lazily on first sighting from any source, never
// regenerated for the same lookup, and never deleted.
type PlayerIdentity struct {
	UniversalPlayerID string   `json:"universal_player_id" yaml:"universal_player_id"` // Opaque stable identifier
	CanonicalLookup   string   `json:"canonical_lookup" yaml:"canonical_lookup"`       // Normalized name key
	DisplayName       string   `json:"display_name" yaml:"display_name"`               // Human-readable name as first seen
	CreatedAt         utc.Time `json:"created_at" yaml:"created_at"`
}

// AliasType distinguishes how an alias entry came to exist.
type AliasType string

const (
	// AliasManual is an alias created by operator review.
	AliasManual AliasType = "manual"
	// AliasAutoSuffix is an alias created by the generational-suffix
	// heuristic (two lookups on the same team differing only by a suffix).
	AliasAutoSuffix AliasType = "auto_suffix"
)

// Alias maps an alternate lookup to a canonical lookup. Aliases are
// append-only; corrections come from superseding entries, never edits.
type Alias struct {
	AliasLookup     string    `json:"alias_lookup" yaml:"alias_lookup"`         // The non-canonical form
	CanonicalLookup string    `json:"canonical_lookup" yaml:"canonical_lookup"` // The form records are keyed by
	Type            AliasType `json:"type" yaml:"type"`
	Active          bool      `json:"active" yaml:"active"`
	Notes           string    `json:"notes,omitempty" yaml:"notes,omitempty"` // Provenance notes for operators
	CreatedAt       utc.Time  `json:"created_at" yaml:"created_at"`
}

// UnresolvedNameCandidate accumulates sightings of a name that matched no
// identity, until an operator promotes it to an Alias or discards it.
type UnresolvedNameCandidate struct {
	Lookup          string     `json:"lookup" yaml:"lookup"`
	TeamAbbr        string     `json:"team_abbr" yaml:"team_abbr"`
	Season          int        `json:"season" yaml:"season"`
	Source          SourceKind `json:"source" yaml:"source"`
	OccurrenceCount int        `json:"occurrence_count" yaml:"occurrence_count"`
	ExampleContext  string     `json:"example_context,omitempty" yaml:"example_context,omitempty"` // e.g. the raw line the name came from
	FirstSeenAt     utc.Time   `json:"first_seen_at" yaml:"first_seen_at"`
	LastSeenAt      utc.Time   `json:"last_seen_at" yaml:"last_seen_at"`
}
