package provenance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/playerregistry/pkg/registry"
)

func TestStamp(t *testing.T) {
	t.Run("initializes maps on first stamp", func(t *testing.T) {
		rec := &registry.RegistryRecord{PlayerLookup: "curry", TeamAbbr: "GSW", Season: 2024}
		Stamp(rec, registry.SourceGamebook, "2024-11-05")

		assert.Equal(t, registry.Date("2024-11-05"), rec.ActivityDate(registry.SourceGamebook))
		assert.Equal(t, 1, rec.UpdateCounts[registry.SourceGamebook])
		assert.Equal(t, registry.SourceGamebook, rec.LastProcessor)
		assert.False(t, rec.UpdatedAt.IsZero())
	})

	t.Run("activity date is monotonic per source", func(t *testing.T) {
		rec := &registry.RegistryRecord{PlayerLookup: "curry", TeamAbbr: "GSW", Season: 2024}
		Stamp(rec, registry.SourceGamebook, "2024-11-05")
		Stamp(rec, registry.SourceGamebook, "2024-11-01")

		// Earlier date never regresses the recorded high-water mark,
		// but the write still counts.
		assert.Equal(t, registry.Date("2024-11-05"), rec.ActivityDate(registry.SourceGamebook))
		assert.Equal(t, 2, rec.UpdateCounts[registry.SourceGamebook])
	})

	t.Run("sources tracked independently", func(t *testing.T) {
		rec := &registry.RegistryRecord{PlayerLookup: "curry", TeamAbbr: "GSW", Season: 2024}
		Stamp(rec, registry.SourceGamebook, "2024-11-05")
		Stamp(rec, registry.SourceRoster, "2024-11-03")

		assert.Equal(t, registry.Date("2024-11-05"), rec.ActivityDate(registry.SourceGamebook))
		assert.Equal(t, registry.Date("2024-11-03"), rec.ActivityDate(registry.SourceRoster))
		assert.Equal(t, registry.SourceRoster, rec.LastProcessor)
	})
}

func TestCorroboration(t *testing.T) {
	assert.Equal(t, 0, Corroboration(nil))

	rec := &registry.RegistryRecord{PlayerLookup: "curry", TeamAbbr: "GSW", Season: 2024}
	assert.Equal(t, 0, Corroboration(rec))

	Stamp(rec, registry.SourceGamebook, "2024-11-05")
	assert.Equal(t, 1, Corroboration(rec))

	Stamp(rec, registry.SourceRoster, "2024-11-03")
	assert.Equal(t, 2, Corroboration(rec))

	// Repeated stamps from the same source do not count twice.
	Stamp(rec, registry.SourceGamebook, "2024-11-06")
	assert.Equal(t, 2, Corroboration(rec))
}
