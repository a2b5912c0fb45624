package sqlite

// schema is applied at open. All timestamps are UTC millis; calendar
// dates are ISO strings so they compare correctly as text.
const schema = `
CREATE TABLE IF NOT EXISTS identities (
	canonical_lookup    TEXT PRIMARY KEY,
	universal_player_id TEXT NOT NULL,
	display_name        TEXT NOT NULL,
	created_at          INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS aliases (
	alias_lookup     TEXT NOT NULL,
	canonical_lookup TEXT NOT NULL,
	alias_type       TEXT NOT NULL,
	active           INTEGER NOT NULL DEFAULT 1,
	notes            TEXT NOT NULL DEFAULT '',
	created_at       INTEGER NOT NULL,
	PRIMARY KEY (alias_lookup, canonical_lookup)
);

CREATE TABLE IF NOT EXISTS registry_records (
	player_lookup        TEXT NOT NULL,
	team_abbr            TEXT NOT NULL,
	season               INTEGER NOT NULL,
	games_played         INTEGER NOT NULL DEFAULT 0,
	total_appearances    INTEGER NOT NULL DEFAULT 0,
	inactive_appearances INTEGER NOT NULL DEFAULT 0,
	dnp_appearances      INTEGER NOT NULL DEFAULT 0,
	jersey_number        TEXT NOT NULL DEFAULT '',
	position             TEXT NOT NULL DEFAULT '',
	universal_player_id  TEXT NOT NULL DEFAULT '',
	source_priority      INTEGER NOT NULL DEFAULT 0,
	confidence_score     REAL NOT NULL DEFAULT 0,
	last_processor       TEXT NOT NULL DEFAULT '',
	activity_dates       TEXT NOT NULL DEFAULT '{}',
	update_counts        TEXT NOT NULL DEFAULT '{}',
	last_activity        TEXT NOT NULL DEFAULT '',
	created_at           INTEGER NOT NULL,
	updated_at           INTEGER NOT NULL,
	PRIMARY KEY (player_lookup, team_abbr, season)
);

CREATE INDEX IF NOT EXISTS idx_records_team_season
	ON registry_records (team_abbr, season);

CREATE TABLE IF NOT EXISTS run_ledger (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	processor          TEXT NOT NULL,
	run_id             TEXT NOT NULL,
	season             INTEGER NOT NULL,
	status             TEXT NOT NULL,
	data_date          TEXT NOT NULL,
	records_processed  INTEGER NOT NULL DEFAULT 0,
	records_created    INTEGER NOT NULL DEFAULT 0,
	records_skipped    INTEGER NOT NULL DEFAULT 0,
	players_discovered INTEGER NOT NULL DEFAULT 0,
	error_count        INTEGER NOT NULL DEFAULT 0,
	validation_mode    TEXT NOT NULL DEFAULT '',
	source_freshness   TEXT NOT NULL DEFAULT '{}',
	error_detail       TEXT NOT NULL DEFAULT '',
	completed_at       INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ledger_processor_season
	ON run_ledger (processor, season);

CREATE TABLE IF NOT EXISTS unresolved_candidates (
	lookup           TEXT NOT NULL,
	team_abbr        TEXT NOT NULL,
	season           INTEGER NOT NULL,
	source           TEXT NOT NULL,
	occurrence_count INTEGER NOT NULL DEFAULT 1,
	example_context  TEXT NOT NULL DEFAULT '',
	first_seen_at    INTEGER NOT NULL,
	last_seen_at     INTEGER NOT NULL,
	PRIMARY KEY (lookup, team_abbr, season, source)
);
`
