// Package repository defines the persistence abstraction consumed by the
// aggregators and guards. Reads are batched so a run issues a small
// constant number of round trips regardless of player volume. Two
// implementations ship with the repo: the in-memory store in the memory
// subpackage for tests, and the SQLite store under internal/storage.
package repository

import (
	"context"

	"github.com/agentstation/playerregistry/pkg/registry"
)

// TeamLookup is a distinct player lookup previously seen on a team,
// with the last date that player was active. Used by the name-change
// investigator to find candidate prior spellings.
type TeamLookup struct {
	Lookup     string
	LastActive registry.Date
}

// Repository is the registry store consumed by the processors.
type Repository interface {
	// BatchGetRecords returns all registry records for a season.
	BatchGetRecords(ctx context.Context, season int) ([]*registry.RegistryRecord, error)

	// BatchGetActiveAliases returns all active aliases keyed by alias lookup.
	BatchGetActiveAliases(ctx context.Context) (map[string]registry.Alias, error)

	// UpsertRecords writes accepted records using the given strategy.
	// Merge preserves fields the write does not carry; replace rewrites
	// rows wholesale.
	UpsertRecords(ctx context.Context, records []*registry.RegistryRecord, strategy registry.UpsertStrategy) error

	// AppendRunLedgerEntry appends one immutable ledger entry. Entries are
	// never updated in place.
	AppendRunLedgerEntry(ctx context.Context, entry registry.RunLedgerEntry) error

	// LedgerEntries returns ledger entries for a processor and season.
	LedgerEntries(ctx context.Context, processor registry.SourceKind, season int) ([]registry.RunLedgerEntry, error)

	// InsertUnresolvedCandidates records names that matched no identity.
	// Re-inserting an existing candidate increments its occurrence count
	// rather than creating a duplicate row.
	InsertUnresolvedCandidates(ctx context.Context, candidates []registry.UnresolvedNameCandidate) error

	// InsertAliases appends alias entries. Existing (alias, canonical)
	// pairs are left untouched.
	InsertAliases(ctx context.Context, aliases []registry.Alias) error

	// GetIdentities returns identities keyed by canonical lookup; missing
	// lookups are absent from the map.
	GetIdentities(ctx context.Context, lookups []string) (map[string]registry.PlayerIdentity, error)

	// PutIdentities inserts new identities; existing lookups are no-ops.
	PutIdentities(ctx context.Context, identities []registry.PlayerIdentity) error

	// DistinctTeamLookups returns the distinct lookups seen on a team in
	// seasons >= sinceSeason.
	DistinctTeamLookups(ctx context.Context, teamAbbr string, sinceSeason int) ([]TeamLookup, error)
}
