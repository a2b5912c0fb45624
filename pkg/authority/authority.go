// Package authority decides which source may mutate shared fields on a
// registry record. Only team assignment is contested: gamebook's verified
// participation always wins it, movement transactions are treated as
// equally authoritative team assertions, and roster snapshots hold it only
// until gamebook has demonstrated the player actually appearing for a team.
package authority

import (
	"github.com/agentstation/playerregistry/pkg/registry"
)

// Decision is the outcome of an authority check for one field write.
type Decision struct {
	Allowed bool   // Whether the source may set the field
	Reason  string // Why, for logs and provenance
}

// Resolver resolves field-level write authority between sources.
type Resolver interface {
	// CanAssignTeam reports whether the source may set team_abbr given the
	// record's current state. A denied roster write must preserve the
	// existing team while remaining free to update jersey and position.
	CanAssignTeam(source registry.SourceKind, existing *registry.RegistryRecord) Decision
}

// resolver is the default implementation.
type resolver struct{}

// New creates a Resolver with the standard source authority rules.
func New() Resolver {
	return &resolver{}
}

// CanAssignTeam applies the team_abbr authority rules.
func (r *resolver) CanAssignTeam(source registry.SourceKind, existing *registry.RegistryRecord) Decision {
	switch source {
	case registry.SourceGamebook:
		return Decision{Allowed: true, Reason: "gamebook participation is verified"}
	case registry.SourceMovement:
		return Decision{Allowed: true, Reason: "trade transactions are authoritative team assertions"}
	case registry.SourceRoster:
		if existing == nil {
			return Decision{Allowed: true, Reason: "new record, no gamebook assertion yet"}
		}
		if existing.GamesPlayed == 0 {
			return Decision{Allowed: true, Reason: "no verified games, gamebook has not asserted a team"}
		}
		return Decision{Allowed: false, Reason: "gamebook holds team authority once games are verified"}
	default:
		return Decision{Allowed: false, Reason: "unknown source"}
	}
}
