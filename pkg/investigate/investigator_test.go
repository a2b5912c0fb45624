package investigate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/playerregistry/pkg/errors"
	"github.com/agentstation/playerregistry/pkg/registry"
	"github.com/agentstation/playerregistry/pkg/repository"
)

// fakeStore serves canned team lookups.
type fakeStore struct {
	lookups     []repository.TeamLookup
	err         error
	sinceSeason int
}

func (f *fakeStore) DistinctTeamLookups(_ context.Context, _ string, sinceSeason int) ([]repository.TeamLookup, error) {
	f.sinceSeason = sinceSeason
	if f.err != nil {
		return nil, f.err
	}
	return f.lookups, nil
}

var testNow = func() time.Time {
	return time.Date(2024, 11, 10, 0, 0, 0, 0, time.UTC)
}

func TestNew(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	_, err = New(&fakeStore{}, WithLookbackSeasons(0))
	assert.Error(t, err)

	inv, err := New(&fakeStore{}, WithLookbackSeasons(5), WithClock(testNow))
	require.NoError(t, err)
	assert.NotNil(t, inv)
}

func TestInvestigateLookback(t *testing.T) {
	store := &fakeStore{}
	inv, err := New(store, WithLookbackSeasons(3), WithClock(testNow))
	require.NoError(t, err)

	_, err = inv.Investigate(context.Background(), "newname", "GSW", 2024, EnhancementFacts{})
	require.NoError(t, err)
	assert.Equal(t, 2021, store.sinceSeason)
}

func TestInvestigateNoCandidates(t *testing.T) {
	store := &fakeStore{lookups: []repository.TeamLookup{
		{Lookup: "completelyunrelated", LastActive: "2024-11-01"},
	}}
	inv, err := New(store, WithClock(testNow))
	require.NoError(t, err)

	report, err := inv.Investigate(context.Background(), "curry", "GSW", 2024, EnhancementFacts{})
	require.NoError(t, err)
	assert.Empty(t, report.Candidates)
	assert.Zero(t, report.Confidence)
	assert.False(t, report.Urgent)
}

func TestInvestigateRanksCandidates(t *testing.T) {
	store := &fakeStore{lookups: []repository.TeamLookup{
		{Lookup: "smith", LastActive: "2023-01-15"},
		{Lookup: "smyth", LastActive: "2024-11-01"},
		{Lookup: "jones", LastActive: "2024-11-01"},
	}}
	inv, err := New(store, WithClock(testNow))
	require.NoError(t, err)

	report, err := inv.Investigate(context.Background(), "smythe", "GSW", 2024, EnhancementFacts{})
	require.NoError(t, err)

	require.NotEmpty(t, report.Candidates)
	// Closest spelling first.
	assert.Equal(t, "smyth", report.Candidates[0].Lookup)
	for i := 1; i < len(report.Candidates); i++ {
		assert.GreaterOrEqual(t, report.Candidates[i-1].Similarity, report.Candidates[i].Similarity)
	}
	// "jones" is nothing like "smythe".
	for _, c := range report.Candidates {
		assert.NotEqual(t, "jones", c.Lookup)
	}
}

func TestInvestigateExcludesSelf(t *testing.T) {
	store := &fakeStore{lookups: []repository.TeamLookup{
		{Lookup: "curry", LastActive: "2024-11-01"},
	}}
	inv, err := New(store, WithClock(testNow))
	require.NoError(t, err)

	report, err := inv.Investigate(context.Background(), "curry", "GSW", 2024, EnhancementFacts{})
	require.NoError(t, err)
	assert.Empty(t, report.Candidates)
}

func TestInvestigateUrgency(t *testing.T) {
	t.Run("strong recent match is urgent", func(t *testing.T) {
		store := &fakeStore{lookups: []repository.TeamLookup{
			{Lookup: "smyth", LastActive: "2024-11-01"},
		}}
		inv, err := New(store, WithClock(testNow))
		require.NoError(t, err)

		report, err := inv.Investigate(context.Background(), "smith", "GSW", 2024, EnhancementFacts{})
		require.NoError(t, err)

		// Moderate match plus recent activity crosses the urgent line.
		assert.GreaterOrEqual(t, report.Confidence, UrgentConfidence)
		assert.True(t, report.Urgent)
		assert.NotEmpty(t, report.Evidence)
	})

	t.Run("strong match with stale activity is not urgent", func(t *testing.T) {
		store := &fakeStore{lookups: []repository.TeamLookup{
			{Lookup: "smyth", LastActive: "2022-01-15"},
		}}
		inv, err := New(store, WithClock(testNow))
		require.NoError(t, err)

		report, err := inv.Investigate(context.Background(), "smith", "GSW", 2024, EnhancementFacts{})
		require.NoError(t, err)
		assert.Less(t, report.Confidence, UrgentConfidence)
		assert.False(t, report.Urgent)
	})

	t.Run("metadata raises confidence", func(t *testing.T) {
		store := &fakeStore{lookups: []repository.TeamLookup{
			{Lookup: "smyth", LastActive: "2022-01-15"},
		}}
		inv, err := New(store, WithClock(testNow))
		require.NoError(t, err)

		without, err := inv.Investigate(context.Background(), "smith", "GSW", 2024, EnhancementFacts{})
		require.NoError(t, err)
		with, err := inv.Investigate(context.Background(), "smith", "GSW", 2024, EnhancementFacts{JerseyNumber: "30", Source: registry.SourceRoster})
		require.NoError(t, err)

		assert.Greater(t, with.Confidence, without.Confidence)
	})

	t.Run("confidence capped at one", func(t *testing.T) {
		store := &fakeStore{lookups: []repository.TeamLookup{
			{Lookup: "hardaway", LastActive: "2024-11-01"},
			{Lookup: "hardawa", LastActive: "2024-11-01"},
		}}
		inv, err := New(store, WithClock(testNow))
		require.NoError(t, err)

		report, err := inv.Investigate(context.Background(), "hardawayjjr", "DAL", 2024, EnhancementFacts{JerseyNumber: "11"})
		require.NoError(t, err)
		assert.LessOrEqual(t, report.Confidence, 1.0)
	})
}

func TestInvestigateConfidenceOrdering(t *testing.T) {
	// Identical recency and metadata; only the top candidate's
	// similarity band differs. The stronger match must always score
	// higher.
	strongStore := &fakeStore{lookups: []repository.TeamLookup{
		{Lookup: "johnsen", LastActive: "2024-11-01"},
	}}
	moderateStore := &fakeStore{lookups: []repository.TeamLookup{
		{Lookup: "smyth", LastActive: "2024-11-01"},
	}}

	strongInv, err := New(strongStore, WithClock(testNow))
	require.NoError(t, err)
	moderateInv, err := New(moderateStore, WithClock(testNow))
	require.NoError(t, err)

	strong, err := strongInv.Investigate(context.Background(), "johnson", "GSW", 2024, EnhancementFacts{})
	require.NoError(t, err)
	moderate, err := moderateInv.Investigate(context.Background(), "smith", "GSW", 2024, EnhancementFacts{})
	require.NoError(t, err)

	require.NotEmpty(t, strong.Candidates)
	require.NotEmpty(t, moderate.Candidates)
	assert.Greater(t, strong.Candidates[0].Similarity, StrongSimilarity)
	assert.LessOrEqual(t, moderate.Candidates[0].Similarity, StrongSimilarity)

	assert.Greater(t, strong.Confidence, moderate.Confidence)
	assert.InDelta(t, 0.9, strong.Confidence, 1e-9)
	assert.InDelta(t, 0.7, moderate.Confidence, 1e-9)
}

func TestInvestigateStoreFailure(t *testing.T) {
	store := &fakeStore{err: errors.New("store unreachable")}
	inv, err := New(store, WithClock(testNow))
	require.NoError(t, err)

	_, err = inv.Investigate(context.Background(), "curry", "GSW", 2024, EnhancementFacts{})
	assert.Error(t, err)
}
