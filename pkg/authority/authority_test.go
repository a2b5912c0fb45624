package authority

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/playerregistry/pkg/registry"
)

func TestCanAssignTeam(t *testing.T) {
	r := New()

	verified := &registry.RegistryRecord{PlayerLookup: "curry", TeamAbbr: "GSW", Season: 2024, GamesPlayed: 5}
	unverified := &registry.RegistryRecord{PlayerLookup: "curry", TeamAbbr: "GSW", Season: 2024}

	tests := []struct {
		name     string
		source   registry.SourceKind
		existing *registry.RegistryRecord
		allowed  bool
	}{
		{"gamebook always assigns", registry.SourceGamebook, verified, true},
		{"gamebook assigns new record", registry.SourceGamebook, nil, true},
		{"movement always assigns", registry.SourceMovement, verified, true},
		{"roster assigns new record", registry.SourceRoster, nil, true},
		{"roster assigns before verified games", registry.SourceRoster, unverified, true},
		{"roster denied after verified games", registry.SourceRoster, verified, false},
		{"unknown source denied", registry.SourceKind("boxscore"), nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := r.CanAssignTeam(tt.source, tt.existing)
			assert.Equal(t, tt.allowed, decision.Allowed)
			assert.NotEmpty(t, decision.Reason)
		})
	}
}
