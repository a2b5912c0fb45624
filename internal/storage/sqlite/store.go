// Package sqlite provides the SQLite-backed registry repository.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/agentstation/utc"
	_ "modernc.org/sqlite"

	"github.com/agentstation/playerregistry/pkg/registry"
	"github.com/agentstation/playerregistry/pkg/repository"
)

// Store persists registry state in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value utc.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) utc.Time {
	return utc.Time{Time: time.UnixMilli(value).UTC()}
}

// Open opens a SQLite registry store and applies the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// BatchGetRecords returns all registry records for a season.
func (s *Store) BatchGetRecords(ctx context.Context, season int) ([]*registry.RegistryRecord, error) {
	const query = `
		SELECT player_lookup, team_abbr, season,
			games_played, total_appearances, inactive_appearances, dnp_appearances,
			jersey_number, position, universal_player_id,
			source_priority, confidence_score, last_processor,
			activity_dates, update_counts, created_at, updated_at
		FROM registry_records
		WHERE season = ?
		ORDER BY player_lookup, team_abbr`
	rows, err := s.sqlDB.QueryContext(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*registry.RegistryRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanRecord(rows *sql.Rows) (*registry.RegistryRecord, error) {
	var rec registry.RegistryRecord
	var activityJSON, countsJSON string
	var createdAt, updatedAt int64
	var lastProcessor string
	err := rows.Scan(
		&rec.PlayerLookup, &rec.TeamAbbr, &rec.Season,
		&rec.GamesPlayed, &rec.TotalAppearances, &rec.InactiveAppearances, &rec.DNPAppearances,
		&rec.JerseyNumber, &rec.Position, &rec.UniversalPlayerID,
		&rec.SourcePriority, &rec.ConfidenceScore, &lastProcessor,
		&activityJSON, &countsJSON, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan record: %w", err)
	}
	rec.LastProcessor = registry.SourceKind(lastProcessor)
	if err := json.Unmarshal([]byte(activityJSON), &rec.ActivityDates); err != nil {
		return nil, fmt.Errorf("decode activity dates: %w", err)
	}
	if err := json.Unmarshal([]byte(countsJSON), &rec.UpdateCounts); err != nil {
		return nil, fmt.Errorf("decode update counts: %w", err)
	}
	rec.CreatedAt = fromMillis(createdAt)
	rec.UpdatedAt = fromMillis(updatedAt)
	return &rec, nil
}

// UpsertRecords writes records. Merge preserves the original created_at
// on conflict; replace rewrites the row wholesale.
func (s *Store) UpsertRecords(ctx context.Context, records []*registry.RegistryRecord, strategy registry.UpsertStrategy) error {
	if len(records) == 0 {
		return nil
	}
	if !strategy.Valid() {
		return fmt.Errorf("unknown upsert strategy %q", strategy)
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const merge = `
		INSERT INTO registry_records (
			player_lookup, team_abbr, season,
			games_played, total_appearances, inactive_appearances, dnp_appearances,
			jersey_number, position, universal_player_id,
			source_priority, confidence_score, last_processor,
			activity_dates, update_counts, last_activity, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (player_lookup, team_abbr, season) DO UPDATE SET
			games_played = excluded.games_played,
			total_appearances = excluded.total_appearances,
			inactive_appearances = excluded.inactive_appearances,
			dnp_appearances = excluded.dnp_appearances,
			jersey_number = excluded.jersey_number,
			position = excluded.position,
			universal_player_id = excluded.universal_player_id,
			source_priority = excluded.source_priority,
			confidence_score = excluded.confidence_score,
			last_processor = excluded.last_processor,
			activity_dates = excluded.activity_dates,
			update_counts = excluded.update_counts,
			last_activity = excluded.last_activity,
			updated_at = excluded.updated_at`
	const replace = `
		INSERT OR REPLACE INTO registry_records (
			player_lookup, team_abbr, season,
			games_played, total_appearances, inactive_appearances, dnp_appearances,
			jersey_number, position, universal_player_id,
			source_priority, confidence_score, last_processor,
			activity_dates, update_counts, last_activity, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	query := merge
	if strategy == registry.UpsertReplace {
		query = replace
	}

	for _, rec := range records {
		activityJSON, err := json.Marshal(rec.ActivityDates)
		if err != nil {
			return fmt.Errorf("encode activity dates for %s: %w", rec.Key(), err)
		}
		countsJSON, err := json.Marshal(rec.UpdateCounts)
		if err != nil {
			return fmt.Errorf("encode update counts for %s: %w", rec.Key(), err)
		}
		if _, err := tx.ExecContext(ctx, query,
			rec.PlayerLookup, rec.TeamAbbr, rec.Season,
			rec.GamesPlayed, rec.TotalAppearances, rec.InactiveAppearances, rec.DNPAppearances,
			rec.JerseyNumber, rec.Position, rec.UniversalPlayerID,
			rec.SourcePriority, rec.ConfidenceScore, rec.LastProcessor.String(),
			string(activityJSON), string(countsJSON), lastActivity(rec).String(),
			toMillis(rec.CreatedAt), toMillis(rec.UpdatedAt),
		); err != nil {
			return fmt.Errorf("upsert record %s: %w", rec.Key(), err)
		}
	}
	return tx.Commit()
}

// lastActivity is the latest per-source activity date, denormalized so
// candidate search can order by recency without decoding JSON.
func lastActivity(rec *registry.RegistryRecord) registry.Date {
	var last registry.Date
	for _, d := range rec.ActivityDates {
		if d.After(last) {
			last = d
		}
	}
	return last
}

// BatchGetActiveAliases returns all active aliases keyed by alias lookup.
func (s *Store) BatchGetActiveAliases(ctx context.Context) (map[string]registry.Alias, error) {
	const query = `
		SELECT alias_lookup, canonical_lookup, alias_type, active, notes, created_at
		FROM aliases WHERE active = 1`
	rows, err := s.sqlDB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query aliases: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]registry.Alias)
	for rows.Next() {
		var a registry.Alias
		var aliasType string
		var active int
		var createdAt int64
		if err := rows.Scan(&a.AliasLookup, &a.CanonicalLookup, &aliasType, &active, &a.Notes, &createdAt); err != nil {
			return nil, fmt.Errorf("scan alias: %w", err)
		}
		a.Type = registry.AliasType(aliasType)
		a.Active = active != 0
		a.CreatedAt = fromMillis(createdAt)
		out[a.AliasLookup] = a
	}
	return out, rows.Err()
}

// InsertAliases appends alias entries; existing pairs are untouched.
func (s *Store) InsertAliases(ctx context.Context, aliases []registry.Alias) error {
	if len(aliases) == 0 {
		return nil
	}
	const query = `
		INSERT INTO aliases (alias_lookup, canonical_lookup, alias_type, active, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (alias_lookup, canonical_lookup) DO NOTHING`
	for _, a := range aliases {
		active := 0
		if a.Active {
			active = 1
		}
		if _, err := s.sqlDB.ExecContext(ctx, query,
			a.AliasLookup, a.CanonicalLookup, string(a.Type), active, a.Notes, toMillis(a.CreatedAt),
		); err != nil {
			return fmt.Errorf("insert alias %s: %w", a.AliasLookup, err)
		}
	}
	return nil
}

// AppendRunLedgerEntry appends one immutable ledger entry.
func (s *Store) AppendRunLedgerEntry(ctx context.Context, entry registry.RunLedgerEntry) error {
	freshnessJSON, err := json.Marshal(entry.SourceFreshness)
	if err != nil {
		return fmt.Errorf("encode source freshness: %w", err)
	}
	const query = `
		INSERT INTO run_ledger (
			processor, run_id, season, status, data_date,
			records_processed, records_created, records_skipped, players_discovered, error_count,
			validation_mode, source_freshness, error_detail, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.sqlDB.ExecContext(ctx, query,
		entry.Processor.String(), entry.RunID, entry.Season, entry.Status.String(), entry.DataDate.String(),
		entry.Counts.RecordsProcessed, entry.Counts.RecordsCreated, entry.Counts.RecordsSkipped,
		entry.Counts.PlayersDiscovered, entry.Counts.Errors,
		string(entry.ValidationMode), string(freshnessJSON), entry.ErrorDetail, toMillis(entry.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("append ledger entry %s: %w", entry.RunID, err)
	}
	return nil
}

// LedgerEntries returns ledger entries for a processor and season.
func (s *Store) LedgerEntries(ctx context.Context, processor registry.SourceKind, season int) ([]registry.RunLedgerEntry, error) {
	const query = `
		SELECT processor, run_id, season, status, data_date,
			records_processed, records_created, records_skipped, players_discovered, error_count,
			validation_mode, source_freshness, error_detail, completed_at
		FROM run_ledger
		WHERE processor = ? AND season = ?
		ORDER BY id`
	rows, err := s.sqlDB.QueryContext(ctx, query, processor.String(), season)
	if err != nil {
		return nil, fmt.Errorf("query ledger: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []registry.RunLedgerEntry
	for rows.Next() {
		var e registry.RunLedgerEntry
		var processorStr, statusStr, dataDate, mode, freshnessJSON string
		var completedAt int64
		if err := rows.Scan(
			&processorStr, &e.RunID, &e.Season, &statusStr, &dataDate,
			&e.Counts.RecordsProcessed, &e.Counts.RecordsCreated, &e.Counts.RecordsSkipped,
			&e.Counts.PlayersDiscovered, &e.Counts.Errors,
			&mode, &freshnessJSON, &e.ErrorDetail, &completedAt,
		); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		e.Processor = registry.SourceKind(processorStr)
		e.Status = registry.RunStatus(statusStr)
		e.DataDate = registry.Date(dataDate)
		e.ValidationMode = registry.ValidationMode(mode)
		if err := json.Unmarshal([]byte(freshnessJSON), &e.SourceFreshness); err != nil {
			return nil, fmt.Errorf("decode source freshness: %w", err)
		}
		e.CompletedAt = fromMillis(completedAt)
		out = append(out, e)
	}
	return out, rows.Err()
}

// InsertUnresolvedCandidates increments occurrence counts for known
// candidates and inserts new ones.
func (s *Store) InsertUnresolvedCandidates(ctx context.Context, candidates []registry.UnresolvedNameCandidate) error {
	if len(candidates) == 0 {
		return nil
	}
	const query = `
		INSERT INTO unresolved_candidates (
			lookup, team_abbr, season, source, occurrence_count, example_context, first_seen_at, last_seen_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (lookup, team_abbr, season, source) DO UPDATE SET
			occurrence_count = occurrence_count + 1,
			last_seen_at = excluded.last_seen_at`
	for _, c := range candidates {
		count := c.OccurrenceCount
		if count == 0 {
			count = 1
		}
		if _, err := s.sqlDB.ExecContext(ctx, query,
			c.Lookup, c.TeamAbbr, c.Season, c.Source.String(),
			count, c.ExampleContext, toMillis(c.FirstSeenAt), toMillis(c.LastSeenAt),
		); err != nil {
			return fmt.Errorf("insert unresolved candidate %s: %w", c.Lookup, err)
		}
	}
	return nil
}

// GetIdentities returns identities keyed by canonical lookup.
func (s *Store) GetIdentities(ctx context.Context, lookups []string) (map[string]registry.PlayerIdentity, error) {
	out := make(map[string]registry.PlayerIdentity, len(lookups))
	if len(lookups) == 0 {
		return out, nil
	}

	placeholders := strings.Repeat("?,", len(lookups))
	placeholders = placeholders[:len(placeholders)-1]
	query := fmt.Sprintf(`
		SELECT canonical_lookup, universal_player_id, display_name, created_at
		FROM identities WHERE canonical_lookup IN (%s)`, placeholders)

	args := make([]any, len(lookups))
	for i, l := range lookups {
		args[i] = l
	}
	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query identities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var id registry.PlayerIdentity
		var createdAt int64
		if err := rows.Scan(&id.CanonicalLookup, &id.UniversalPlayerID, &id.DisplayName, &createdAt); err != nil {
			return nil, fmt.Errorf("scan identity: %w", err)
		}
		id.CreatedAt = fromMillis(createdAt)
		out[id.CanonicalLookup] = id
	}
	return out, rows.Err()
}

// PutIdentities inserts new identities; existing lookups are no-ops.
func (s *Store) PutIdentities(ctx context.Context, identities []registry.PlayerIdentity) error {
	const query = `
		INSERT INTO identities (canonical_lookup, universal_player_id, display_name, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (canonical_lookup) DO NOTHING`
	for _, id := range identities {
		if _, err := s.sqlDB.ExecContext(ctx, query,
			id.CanonicalLookup, id.UniversalPlayerID, id.DisplayName, toMillis(id.CreatedAt),
		); err != nil {
			return fmt.Errorf("insert identity %s: %w", id.CanonicalLookup, err)
		}
	}
	return nil
}

// DistinctTeamLookups returns distinct lookups seen on a team since a
// season, with the latest activity date per lookup.
func (s *Store) DistinctTeamLookups(ctx context.Context, teamAbbr string, sinceSeason int) ([]repository.TeamLookup, error) {
	const query = `
		SELECT player_lookup, MAX(last_activity)
		FROM registry_records
		WHERE team_abbr = ? AND season >= ?
		GROUP BY player_lookup
		ORDER BY player_lookup`
	rows, err := s.sqlDB.QueryContext(ctx, query, teamAbbr, sinceSeason)
	if err != nil {
		return nil, fmt.Errorf("query team lookups: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []repository.TeamLookup
	for rows.Next() {
		var tl repository.TeamLookup
		var last string
		if err := rows.Scan(&tl.Lookup, &last); err != nil {
			return nil, fmt.Errorf("scan team lookup: %w", err)
		}
		tl.LastActive = registry.Date(last)
		out = append(out, tl)
	}
	return out, rows.Err()
}
