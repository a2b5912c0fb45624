package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/playerregistry/pkg/errors"
	"github.com/agentstation/playerregistry/pkg/registry"
)

// fakeStore is a minimal in-memory identity store for resolver tests.
type fakeStore struct {
	identities map[string]registry.PlayerIdentity
	getErr     error
	putErr     error
	putCalls   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{identities: make(map[string]registry.PlayerIdentity)}
}

func (f *fakeStore) GetIdentities(_ context.Context, lookups []string) (map[string]registry.PlayerIdentity, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	out := make(map[string]registry.PlayerIdentity)
	for _, l := range lookups {
		if id, ok := f.identities[l]; ok {
			out[l] = id
		}
	}
	return out, nil
}

func (f *fakeStore) PutIdentities(_ context.Context, ids []registry.PlayerIdentity) error {
	f.putCalls++
	if f.putErr != nil {
		return f.putErr
	}
	for _, id := range ids {
		if _, ok := f.identities[id.CanonicalLookup]; !ok {
			f.identities[id.CanonicalLookup] = id
		}
	}
	return nil
}

func TestNewResolver(t *testing.T) {
	_, err := NewResolver(nil)
	assert.Error(t, err)

	r, err := NewResolver(newFakeStore())
	require.NoError(t, err)
	assert.NotNil(t, r)
}

func TestUniversalIDDeterministic(t *testing.T) {
	a := UniversalID("stephencurry")
	b := UniversalID("stephencurry")
	c := UniversalID("lebronjames")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Regexp(t, `^upi_[0-9a-f]{12}$`, a)
	assert.Regexp(t, `^unres_[0-9a-f]{12}$`, PlaceholderID("stephencurry"))
}

func TestResolveCreatesIdentity(t *testing.T) {
	store := newFakeStore()
	r, err := NewResolver(store)
	require.NoError(t, err)

	id, err := r.Resolve(context.Background(), "Stephen Curry")
	require.NoError(t, err)
	assert.Equal(t, "stephencurry", id.CanonicalLookup)
	assert.Equal(t, UniversalID("stephencurry"), id.UniversalPlayerID)
	assert.Equal(t, "Stephen Curry", id.DisplayName)

	// Second resolution returns the same identity and creates nothing.
	again, err := r.Resolve(context.Background(), "STEPHEN CURRY")
	require.NoError(t, err)
	assert.Equal(t, id.UniversalPlayerID, again.UniversalPlayerID)
	assert.Len(t, store.identities, 1)
}

func TestResolveBatch(t *testing.T) {
	t.Run("created flag", func(t *testing.T) {
		store := newFakeStore()
		store.identities["lebronjames"] = registry.PlayerIdentity{
			UniversalPlayerID: UniversalID("lebronjames"),
			CanonicalLookup:   "lebronjames",
		}
		r, err := NewResolver(store)
		require.NoError(t, err)

		results := r.ResolveBatch(context.Background(), []string{"LeBron James", "Stephen Curry"})
		require.Len(t, results, 2)
		assert.False(t, results["LeBron James"].Created)
		assert.True(t, results["Stephen Curry"].Created)
	})

	t.Run("raws collapsing onto one lookup", func(t *testing.T) {
		store := newFakeStore()
		r, err := NewResolver(store)
		require.NoError(t, err)

		results := r.ResolveBatch(context.Background(), []string{"Stephen Curry", "stephen curry"})
		require.Len(t, results, 2)
		assert.Equal(t,
			results["Stephen Curry"].Identity.UniversalPlayerID,
			results["stephen curry"].Identity.UniversalPlayerID)
		assert.Len(t, store.identities, 1)
	})

	t.Run("empty canonical form", func(t *testing.T) {
		r, err := NewResolver(newFakeStore())
		require.NoError(t, err)

		results := r.ResolveBatch(context.Background(), []string{"..."})
		res := results["..."]
		require.Error(t, res.Err)
		assert.True(t, errors.Is(res.Err, errors.ErrIdentityResolution))
		assert.Contains(t, res.Identity.UniversalPlayerID, "unres_")
	})

	t.Run("store fetch failure degrades to placeholders", func(t *testing.T) {
		store := newFakeStore()
		store.getErr = errors.New("store unavailable")
		r, err := NewResolver(store)
		require.NoError(t, err)

		results := r.ResolveBatch(context.Background(), []string{"Stephen Curry"})
		res := results["Stephen Curry"]
		require.Error(t, res.Err)
		assert.True(t, errors.Is(res.Err, errors.ErrIdentityResolution))
		assert.Equal(t, PlaceholderID("stephencurry"), res.Identity.UniversalPlayerID)

		// Placeholder ids are deterministic, so a retry converges.
		retry := r.ResolveBatch(context.Background(), []string{"Stephen Curry"})
		assert.Equal(t, res.Identity.UniversalPlayerID, retry["Stephen Curry"].Identity.UniversalPlayerID)
	})

	t.Run("insert failure keeps deterministic ids", func(t *testing.T) {
		store := newFakeStore()
		store.putErr = errors.New("write refused")
		r, err := NewResolver(store)
		require.NoError(t, err)

		results := r.ResolveBatch(context.Background(), []string{"Stephen Curry"})
		res := results["Stephen Curry"]
		assert.NoError(t, res.Err)
		assert.Equal(t, UniversalID("stephencurry"), res.Identity.UniversalPlayerID)
		assert.Equal(t, 1, store.putCalls)
	})
}
