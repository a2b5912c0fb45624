package guard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/playerregistry/pkg/errors"
	"github.com/agentstation/playerregistry/pkg/registry"
)

// fakeLedger serves canned ledger entries to the guards.
type fakeLedger struct {
	entries map[registry.SourceKind][]registry.RunLedgerEntry
	err     error
}

func (f *fakeLedger) LedgerEntries(_ context.Context, processor registry.SourceKind, _ int) ([]registry.RunLedgerEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.entries[processor], nil
}

func successRun(processor registry.SourceKind, date registry.Date) registry.RunLedgerEntry {
	return registry.RunLedgerEntry{Processor: processor, Status: registry.RunStatusSuccess, DataDate: date}
}

func TestTemporalValidate(t *testing.T) {
	ctx := context.Background()

	t.Run("nil ledger rejected", func(t *testing.T) {
		_, err := NewTemporal(nil)
		assert.Error(t, err)
	})

	t.Run("first run accepts any date", func(t *testing.T) {
		g, err := NewTemporal(&fakeLedger{})
		require.NoError(t, err)

		decision, err := g.Validate(ctx, registry.SourceGamebook, 2024, "2024-10-01", false)
		require.NoError(t, err)
		assert.Equal(t, Accept, decision)
	})

	t.Run("forward progress accepts", func(t *testing.T) {
		ledger := &fakeLedger{entries: map[registry.SourceKind][]registry.RunLedgerEntry{
			registry.SourceGamebook: {successRun(registry.SourceGamebook, "2024-11-05")},
		}}
		g, err := NewTemporal(ledger)
		require.NoError(t, err)

		decision, err := g.Validate(ctx, registry.SourceGamebook, 2024, "2024-11-06", false)
		require.NoError(t, err)
		assert.Equal(t, Accept, decision)
	})

	t.Run("same date accepts for idempotent reruns", func(t *testing.T) {
		ledger := &fakeLedger{entries: map[registry.SourceKind][]registry.RunLedgerEntry{
			registry.SourceGamebook: {successRun(registry.SourceGamebook, "2024-11-05")},
		}}
		g, err := NewTemporal(ledger)
		require.NoError(t, err)

		decision, err := g.Validate(ctx, registry.SourceGamebook, 2024, "2024-11-05", false)
		require.NoError(t, err)
		assert.Equal(t, Accept, decision)
	})

	t.Run("earlier date rejects", func(t *testing.T) {
		ledger := &fakeLedger{entries: map[registry.SourceKind][]registry.RunLedgerEntry{
			registry.SourceGamebook: {successRun(registry.SourceGamebook, "2024-11-05")},
		}}
		g, err := NewTemporal(ledger)
		require.NoError(t, err)

		decision, err := g.Validate(ctx, registry.SourceGamebook, 2024, "2024-10-01", false)
		assert.Equal(t, Reject, decision)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrTemporalOrdering))

		var target *errors.TemporalOrderingError
		require.True(t, errors.As(err, &target))
		assert.Equal(t, registry.Date("2024-11-05"), target.MaxSeenDate)
	})

	t.Run("earlier date with backfill admits insert-only", func(t *testing.T) {
		ledger := &fakeLedger{entries: map[registry.SourceKind][]registry.RunLedgerEntry{
			registry.SourceGamebook: {successRun(registry.SourceGamebook, "2024-11-05")},
		}}
		g, err := NewTemporal(ledger)
		require.NoError(t, err)

		decision, err := g.Validate(ctx, registry.SourceGamebook, 2024, "2024-10-01", true)
		require.NoError(t, err)
		assert.Equal(t, AcceptBackfill, decision)
	})

	t.Run("blocked runs do not advance the high-water mark", func(t *testing.T) {
		ledger := &fakeLedger{entries: map[registry.SourceKind][]registry.RunLedgerEntry{
			registry.SourceGamebook: {
				successRun(registry.SourceGamebook, "2024-11-01"),
				{Processor: registry.SourceGamebook, Status: registry.RunStatusBlocked, DataDate: "2024-12-01"},
			},
		}}
		g, err := NewTemporal(ledger)
		require.NoError(t, err)

		decision, err := g.Validate(ctx, registry.SourceGamebook, 2024, "2024-11-02", false)
		require.NoError(t, err)
		assert.Equal(t, Accept, decision)
	})

	t.Run("ledger failure rejects", func(t *testing.T) {
		g, err := NewTemporal(&fakeLedger{err: errors.New("ledger unreachable")})
		require.NoError(t, err)

		decision, err := g.Validate(ctx, registry.SourceGamebook, 2024, "2024-11-05", false)
		assert.Equal(t, Reject, decision)
		assert.Error(t, err)
	})
}

func TestShouldApply(t *testing.T) {
	touched := func(source registry.SourceKind, date registry.Date) *registry.RegistryRecord {
		return &registry.RegistryRecord{
			ActivityDates: map[registry.SourceKind]registry.Date{source: date},
		}
	}

	tests := []struct {
		name     string
		existing *registry.RegistryRecord
		date     registry.Date
		want     bool
		reason   string
	}{
		{"new record", nil, "2024-11-05", true, ReasonNewRecord},
		{"first write from source", touched(registry.SourceRoster, "2024-11-05"), "2024-11-01", true, ReasonFirstWrite},
		{"fresher candidate", touched(registry.SourceGamebook, "2024-11-01"), "2024-11-05", true, ReasonFresher},
		{"same date idempotent", touched(registry.SourceGamebook, "2024-11-05"), "2024-11-05", true, ReasonIdempotent},
		{"stale candidate", touched(registry.SourceGamebook, "2024-11-05"), "2024-11-01", false, ReasonStaleUpdate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apply, reason := ShouldApply(tt.existing, tt.date, registry.SourceGamebook)
			assert.Equal(t, tt.want, apply)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestPrecedenceCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("nil ledger rejected", func(t *testing.T) {
		_, err := NewPrecedence(nil)
		assert.Error(t, err)
	})

	t.Run("no gamebook progress passes", func(t *testing.T) {
		p, err := NewPrecedence(&fakeLedger{})
		require.NoError(t, err)
		assert.NoError(t, p.Check(ctx, 2024, "2024-10-01"))
	})

	t.Run("date after gamebook progress passes", func(t *testing.T) {
		ledger := &fakeLedger{entries: map[registry.SourceKind][]registry.RunLedgerEntry{
			registry.SourceGamebook: {successRun(registry.SourceGamebook, "2024-11-05")},
		}}
		p, err := NewPrecedence(ledger)
		require.NoError(t, err)
		assert.NoError(t, p.Check(ctx, 2024, "2024-11-06"))
	})

	t.Run("date equal to gamebook progress blocks", func(t *testing.T) {
		ledger := &fakeLedger{entries: map[registry.SourceKind][]registry.RunLedgerEntry{
			registry.SourceGamebook: {successRun(registry.SourceGamebook, "2024-11-05")},
		}}
		p, err := NewPrecedence(ledger)
		require.NoError(t, err)

		err = p.Check(ctx, 2024, "2024-11-05")
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrPrecedence))
	})

	t.Run("first roster run still blocked behind gamebook", func(t *testing.T) {
		// Stricter than the temporal guard: roster has no ledger history
		// at all and is still blocked.
		ledger := &fakeLedger{entries: map[registry.SourceKind][]registry.RunLedgerEntry{
			registry.SourceGamebook: {successRun(registry.SourceGamebook, "2024-11-05")},
		}}
		p, err := NewPrecedence(ledger)
		require.NoError(t, err)

		err = p.Check(ctx, 2024, "2024-10-01")
		require.Error(t, err)

		var target *errors.PrecedenceError
		require.True(t, errors.As(err, &target))
		assert.Equal(t, registry.Date("2024-11-05"), target.GamebookDate)
	})
}

func TestStaleCheck(t *testing.T) {
	now := time.Date(2024, 11, 10, 12, 0, 0, 0, time.UTC)

	t.Run("fresh data validates fully", func(t *testing.T) {
		mode, err := StaleCheck(registry.SourceGamebook, "2024-11-09", now, 3)
		assert.NoError(t, err)
		assert.Equal(t, registry.ValidationFull, mode)
	})

	t.Run("old data degrades to partial", func(t *testing.T) {
		mode, err := StaleCheck(registry.SourceGamebook, "2024-11-01", now, 3)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrStaleSource))
		assert.Equal(t, registry.ValidationPartial, mode)
	})

	t.Run("no data degrades to none", func(t *testing.T) {
		mode, err := StaleCheck(registry.SourceGamebook, "", now, 3)
		require.Error(t, err)
		assert.Equal(t, registry.ValidationNone, mode)
	})
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "accept", Accept.String())
	assert.Equal(t, "accept_backfill", AcceptBackfill.String())
	assert.Equal(t, "reject", Reject.String())
}
