// Package memory provides an in-memory Repository used by tests and local
// experiments. All methods are safe for concurrent use.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/agentstation/utc"

	"github.com/agentstation/playerregistry/pkg/registry"
	"github.com/agentstation/playerregistry/pkg/repository"
)

type candidateKey struct {
	Lookup   string
	TeamAbbr string
	Season   int
	Source   registry.SourceKind
}

type aliasKey struct {
	Alias     string
	Canonical string
}

// Store is an in-memory Repository.
type Store struct {
	mu         sync.RWMutex
	records    map[registry.RecordKey]*registry.RegistryRecord
	aliases    map[aliasKey]registry.Alias
	identities map[string]registry.PlayerIdentity
	candidates map[candidateKey]registry.UnresolvedNameCandidate
	ledger     []registry.RunLedgerEntry
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		records:    make(map[registry.RecordKey]*registry.RegistryRecord),
		aliases:    make(map[aliasKey]registry.Alias),
		identities: make(map[string]registry.PlayerIdentity),
		candidates: make(map[candidateKey]registry.UnresolvedNameCandidate),
	}
}

// BatchGetRecords returns all records for a season.
func (s *Store) BatchGetRecords(_ context.Context, season int) ([]*registry.RegistryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*registry.RegistryRecord
	for _, r := range s.records {
		if r.Season == season {
			out = append(out, r.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key().String() < out[j].Key().String()
	})
	return out, nil
}

// BatchGetActiveAliases returns active aliases keyed by alias lookup.
func (s *Store) BatchGetActiveAliases(_ context.Context) (map[string]registry.Alias, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]registry.Alias)
	for _, a := range s.aliases {
		if a.Active {
			out[a.AliasLookup] = a
		}
	}
	return out, nil
}

// UpsertRecords writes records. The aggregators hand this method fully
// merged records, so merge and replace behave identically in memory.
func (s *Store) UpsertRecords(_ context.Context, records []*registry.RegistryRecord, _ registry.UpsertStrategy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		s.records[r.Key()] = r.Clone()
	}
	return nil
}

// AppendRunLedgerEntry appends one ledger entry.
func (s *Store) AppendRunLedgerEntry(_ context.Context, entry registry.RunLedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ledger = append(s.ledger, entry)
	return nil
}

// LedgerEntries returns ledger entries for a processor and season.
func (s *Store) LedgerEntries(_ context.Context, processor registry.SourceKind, season int) ([]registry.RunLedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []registry.RunLedgerEntry
	for _, e := range s.ledger {
		if e.Processor == processor && e.Season == season {
			out = append(out, e)
		}
	}
	return out, nil
}

// InsertUnresolvedCandidates increments occurrence counts for known
// candidates and inserts new ones.
func (s *Store) InsertUnresolvedCandidates(_ context.Context, candidates []registry.UnresolvedNameCandidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range candidates {
		key := candidateKey{Lookup: c.Lookup, TeamAbbr: c.TeamAbbr, Season: c.Season, Source: c.Source}
		if existing, ok := s.candidates[key]; ok {
			existing.OccurrenceCount++
			existing.LastSeenAt = utc.Now()
			s.candidates[key] = existing
			continue
		}
		if c.OccurrenceCount == 0 {
			c.OccurrenceCount = 1
		}
		s.candidates[key] = c
	}
	return nil
}

// InsertAliases appends alias entries; existing pairs are untouched.
func (s *Store) InsertAliases(_ context.Context, aliases []registry.Alias) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range aliases {
		key := aliasKey{Alias: a.AliasLookup, Canonical: a.CanonicalLookup}
		if _, ok := s.aliases[key]; ok {
			continue
		}
		s.aliases[key] = a
	}
	return nil
}

// GetIdentities returns identities keyed by canonical lookup.
func (s *Store) GetIdentities(_ context.Context, lookups []string) (map[string]registry.PlayerIdentity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]registry.PlayerIdentity)
	for _, lookup := range lookups {
		if id, ok := s.identities[lookup]; ok {
			out[lookup] = id
		}
	}
	return out, nil
}

// PutIdentities inserts new identities; existing lookups are no-ops.
func (s *Store) PutIdentities(_ context.Context, identities []registry.PlayerIdentity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range identities {
		if _, ok := s.identities[id.CanonicalLookup]; ok {
			continue
		}
		s.identities[id.CanonicalLookup] = id
	}
	return nil
}

// DistinctTeamLookups returns lookups seen on a team since a season.
func (s *Store) DistinctTeamLookups(_ context.Context, teamAbbr string, sinceSeason int) ([]repository.TeamLookup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	latest := make(map[string]registry.Date)
	for _, r := range s.records {
		if r.TeamAbbr != teamAbbr || r.Season < sinceSeason {
			continue
		}
		var last registry.Date
		for _, d := range r.ActivityDates {
			if d.After(last) {
				last = d
			}
		}
		if last.After(latest[r.PlayerLookup]) || !seen(latest, r.PlayerLookup) {
			latest[r.PlayerLookup] = last
		}
	}

	out := make([]repository.TeamLookup, 0, len(latest))
	for lookup, last := range latest {
		out = append(out, repository.TeamLookup{Lookup: lookup, LastActive: last})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Lookup < out[j].Lookup })
	return out, nil
}

// Candidates returns a snapshot of unresolved candidates for tests.
func (s *Store) Candidates() []registry.UnresolvedNameCandidate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]registry.UnresolvedNameCandidate, 0, len(s.candidates))
	for _, c := range s.candidates {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Lookup < out[j].Lookup })
	return out
}

// Aliases returns a snapshot of all aliases for tests.
func (s *Store) Aliases() []registry.Alias {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]registry.Alias, 0, len(s.aliases))
	for _, a := range s.aliases {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AliasLookup < out[j].AliasLookup })
	return out
}

// Ledger returns a snapshot of all ledger entries for tests.
func (s *Store) Ledger() []registry.RunLedgerEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]registry.RunLedgerEntry, len(s.ledger))
	copy(out, s.ledger)
	return out
}

func seen(m map[string]registry.Date, key string) bool {
	_, ok := m[key]
	return ok
}
