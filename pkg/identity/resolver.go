package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/agentstation/utc"

	"github.com/agentstation/playerregistry/pkg/errors"
	"github.com/agentstation/playerregistry/pkg/logging"
	"github.com/agentstation/playerregistry/pkg/registry"
)

// Store is the narrow identity persistence surface the resolver needs.
type Store interface {
	// GetIdentities returns existing identities keyed by canonical lookup.
	// Missing lookups are simply absent from the map.
	GetIdentities(ctx context.Context, lookups []string) (map[string]registry.PlayerIdentity, error)

	// PutIdentities inserts new identities. Inserting an identity whose
	// lookup already exists must be a no-op, not an error.
	PutIdentities(ctx context.Context, identities []registry.PlayerIdentity) error
}

// Resolution is the outcome of resolving one raw name.
type Resolution struct {
	Identity registry.PlayerIdentity
	Created  bool  // True when this run first sighted the player
	Err      error // Non-nil when the identity is a placeholder fallback
}

// Resolver maps raw name strings to stable player identities.
type Resolver interface {
	// Resolve returns the identity for a raw name, creating one
	// deterministically if none exists.
	Resolve(ctx context.Context, raw string) (registry.PlayerIdentity, error)

	// ResolveBatch resolves a whole batch in one store round trip,
	// returning resolutions keyed by the raw input strings. Lookup-level
	// failures fall back to deterministic placeholder identities and are
	// reported on the resolution; the batch never aborts.
	ResolveBatch(ctx context.Context, raws []string) map[string]Resolution
}

// resolver is the default store-backed implementation.
type resolver struct {
	store Store
}

// NewResolver creates a Resolver backed by the given store.
func NewResolver(store Store) (Resolver, error) {
	if store == nil {
		return nil, &errors.ValidationError{Field: "store", Message: "cannot be nil"}
	}
	return &resolver{store: store}, nil
}

// UniversalID derives the universal player id for a canonical lookup.
// The derivation is pure, so the same lookup always yields the same id
// no matter which source or run first sights the player.
func UniversalID(canonicalLookup string) string {
	sum := sha256.Sum256([]byte(canonicalLookup))
	return "upi_" + hex.EncodeToString(sum[:6])
}

// PlaceholderID derives the fallback id used when resolution fails.
// Deterministic for the same lookup, so retries converge.
func PlaceholderID(rawLookup string) string {
	sum := sha256.Sum256([]byte(rawLookup))
	return "unres_" + hex.EncodeToString(sum[:6])
}

// Resolve returns the identity for a raw name, creating one if needed.
func (r *resolver) Resolve(ctx context.Context, raw string) (registry.PlayerIdentity, error) {
	res := r.ResolveBatch(ctx, []string{raw})[raw]
	return res.Identity, res.Err
}

// ResolveBatch resolves a batch of raw names in one pass.
func (r *resolver) ResolveBatch(ctx context.Context, raws []string) map[string]Resolution {
	log := logging.FromContext(ctx)
	results := make(map[string]Resolution, len(raws))

	// Canonicalize up front; several raws may collapse onto one lookup.
	lookups := make([]string, 0, len(raws))
	byLookup := make(map[string][]string, len(raws))
	for _, raw := range raws {
		lookup := Canonicalize(raw)
		if lookup == "" {
			results[raw] = Resolution{
				Identity: placeholderIdentity(raw),
				Err: &errors.IdentityResolutionError{
					Lookup:        raw,
					PlaceholderID: PlaceholderID(raw),
					Err:           errors.New("empty canonical form"),
				},
			}
			continue
		}
		if _, seen := byLookup[lookup]; !seen {
			lookups = append(lookups, lookup)
		}
		byLookup[lookup] = append(byLookup[lookup], raw)
	}

	existing, err := r.store.GetIdentities(ctx, lookups)
	if err != nil {
		// Store failure degrades the whole batch to placeholders rather
		// than aborting the run.
		log.Warn().Err(err).Int("lookups", len(lookups)).Msg("identity fetch failed, falling back to placeholders")
		for lookup, sameRaws := range byLookup {
			resErr := &errors.IdentityResolutionError{Lookup: lookup, PlaceholderID: PlaceholderID(lookup), Err: err}
			for _, raw := range sameRaws {
				results[raw] = Resolution{Identity: placeholderIdentity(lookup), Err: resErr}
			}
		}
		return results
	}

	var created []registry.PlayerIdentity
	for _, lookup := range lookups {
		id, ok := existing[lookup]
		if !ok {
			id = registry.PlayerIdentity{
				UniversalPlayerID: UniversalID(lookup),
				CanonicalLookup:   lookup,
				DisplayName:       byLookup[lookup][0],
				CreatedAt:         utc.Now(),
			}
			created = append(created, id)
		}
		for _, raw := range byLookup[lookup] {
			results[raw] = Resolution{Identity: id, Created: !ok}
		}
	}

	if len(created) > 0 {
		if err := r.store.PutIdentities(ctx, created); err != nil {
			// Ids are deterministic, so handing them out before the insert
			// landed is safe: the next run derives the same ids and retries
			// the insert.
			log.Warn().Err(err).Int("created", len(created)).Msg("identity insert failed, ids remain valid")
		} else {
			log.Debug().Int("created", len(created)).Msg("created new player identities")
		}
	}

	return results
}

// placeholderIdentity builds the deterministic fallback identity.
func placeholderIdentity(lookup string) registry.PlayerIdentity {
	return registry.PlayerIdentity{
		UniversalPlayerID: PlaceholderID(lookup),
		CanonicalLookup:   Canonicalize(lookup),
		DisplayName:       lookup,
		CreatedAt:         utc.Now(),
	}
}
