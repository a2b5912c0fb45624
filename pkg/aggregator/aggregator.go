package aggregator

import (
	"context"
	"fmt"
	"sort"

	"github.com/agentstation/utc"

	"github.com/agentstation/playerregistry/pkg/errors"
	"github.com/agentstation/playerregistry/pkg/guard"
	"github.com/agentstation/playerregistry/pkg/identity"
	"github.com/agentstation/playerregistry/pkg/investigate"
	"github.com/agentstation/playerregistry/pkg/logging"
	"github.com/agentstation/playerregistry/pkg/notify"
	"github.com/agentstation/playerregistry/pkg/provenance"
	"github.com/agentstation/playerregistry/pkg/registry"
)

// Request is the invocation surface shared by all aggregators.
type Request struct {
	Season             int
	TeamAbbr           string        // Optional team filter
	From, To           registry.Date // Optional date range filter
	DataDate           registry.Date // Defaults to the latest fact date in scope
	AllowBackfill      bool
	Strategy           registry.UpsertStrategy // Defaults to merge
	ConfirmFullReplace bool                    // Required for the replace strategy
}

// normalize validates and defaults the request.
func (r *Request) normalize() error {
	if r.Season <= 0 {
		return &errors.ValidationError{Field: "season", Value: r.Season, Message: "must be a positive year"}
	}
	if r.Strategy == "" {
		r.Strategy = registry.UpsertMerge
	}
	if !r.Strategy.Valid() {
		return &errors.ValidationError{Field: "strategy", Value: r.Strategy, Message: "must be merge or replace"}
	}
	if !r.From.IsZero() && !r.To.IsZero() && r.To.Before(r.From) {
		return &errors.ValidationError{Field: "dateRange", Message: "end of range precedes start"}
	}
	return nil
}

// inRange reports whether a date passes the request's date filter.
func (r *Request) inRange(d registry.Date) bool {
	if !r.From.IsZero() && d.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && d.After(r.To) {
		return false
	}
	return true
}

// core holds the injected capabilities shared by the aggregator variants.
type core struct {
	*options
	source registry.SourceKind
}

// newCore wires a variant's dependencies.
func newCore(source registry.SourceKind, o *options) *core {
	return &core{options: o, source: source}
}

// state is the bulk-fetched view of the store a run operates against.
type state struct {
	records  map[registry.RecordKey]*registry.RegistryRecord
	byPlayer map[string][]*registry.RegistryRecord // player lookup -> records this season
	aliases  map[string]registry.Alias             // alias lookup -> alias
	staged   map[registry.RecordKey]*registry.RegistryRecord
	created  map[registry.RecordKey]bool
}

// loadState bulk-fetches the season's records and the active aliases.
// Two round trips, independent of player volume.
func (c *core) loadState(ctx context.Context, season int) (*state, error) {
	records, err := c.repo.BatchGetRecords(ctx, season)
	if err != nil {
		return nil, errors.WrapResource(err, "fetch", "registry records", fmt.Sprintf("season %d", season))
	}
	aliases, err := c.repo.BatchGetActiveAliases(ctx)
	if err != nil {
		return nil, errors.WrapResource(err, "fetch", "aliases", "active")
	}

	st := &state{
		records:  make(map[registry.RecordKey]*registry.RegistryRecord, len(records)),
		byPlayer: make(map[string][]*registry.RegistryRecord),
		aliases:  aliases,
		staged:   make(map[registry.RecordKey]*registry.RegistryRecord),
		created:  make(map[registry.RecordKey]bool),
	}
	for _, r := range records {
		st.records[r.Key()] = r
		st.byPlayer[r.PlayerLookup] = append(st.byPlayer[r.PlayerLookup], r)
	}
	return st, nil
}

// resolveLookup canonicalizes a raw name and follows any active alias.
func (st *state) resolveLookup(raw string) string {
	lookup := identity.Canonicalize(raw)
	if alias, ok := st.aliases[lookup]; ok && alias.Active {
		return alias.CanonicalLookup
	}
	return lookup
}

// current returns the freshest view of a record: staged this run, else
// stored, else nil.
func (st *state) current(key registry.RecordKey) *registry.RegistryRecord {
	if r, ok := st.staged[key]; ok {
		return r
	}
	if r, ok := st.records[key]; ok {
		return r
	}
	return nil
}

// authorityRecord returns the record that holds team authority for a
// player this season: among records with verified games, the one
// gamebook touched most recently. A mid-season trade leaves verified
// games on both teams; authority follows the newest verification.
func (st *state) authorityRecord(lookup string) *registry.RegistryRecord {
	var best *registry.RegistryRecord
	for _, r := range st.byPlayer[lookup] {
		current := st.current(r.Key())
		if current == nil || current.GamesPlayed == 0 {
			continue
		}
		if best == nil || current.ActivityDate(registry.SourceGamebook).After(best.ActivityDate(registry.SourceGamebook)) {
			best = current
		}
	}
	return best
}

// mutation is one candidate write produced by a variant.
type mutation struct {
	lookup   string
	playerID string
	teamAbbr string
	season   int
	dataDate registry.Date
	// apply mutates the record. It runs before the provenance stamp, so
	// rec.ActivityDate(source) still reads the pre-write value.
	apply func(rec *registry.RegistryRecord)
}

// key returns the record key the mutation targets.
func (m *mutation) key() registry.RecordKey {
	return registry.RecordKey{PlayerLookup: m.lookup, TeamAbbr: m.teamAbbr, Season: m.season}
}

// pipeline pushes mutations through the freshness arbiter and stages the
// accepted ones. Mutations are applied in date order so per-source
// activity dates stay monotonic within the run. The temporal guard has
// already admitted the run; the authority resolver has already shaped the
// mutations' target keys.
func (c *core) pipeline(ctx context.Context, rctx *RunContext, st *state, muts []mutation, summary *Summary) {
	log := logging.FromContext(ctx)

	sort.SliceStable(muts, func(i, j int) bool { return muts[i].dataDate.Before(muts[j].dataDate) })

	for i := range muts {
		mut := &muts[i]
		key := mut.key()
		existing := st.current(key)

		if rctx.Strategy == registry.UpsertReplace {
			// Full rebuild ignores stored rows; only what this run stages
			// exists afterwards.
			existing = st.staged[key]
		}

		if rctx.InsertOnly && existing != nil && !st.created[key] {
			summary.RecordsSkipped++
			log.Debug().Str("record", key.String()).Msg("backfill is insert-only, existing record untouched")
			continue
		}

		apply, reason := guard.ShouldApply(existing, mut.dataDate, c.source)
		if !apply {
			summary.RecordsSkipped++
			log.Debug().
				Str("record", key.String()).
				Str("candidate_date", mut.dataDate.String()).
				Str("reason", reason).
				Msg("freshness arbiter rejected write")
			continue
		}

		var rec *registry.RegistryRecord
		if existing == nil {
			rec = &registry.RegistryRecord{
				PlayerLookup:      mut.lookup,
				TeamAbbr:          mut.teamAbbr,
				Season:            mut.season,
				UniversalPlayerID: mut.playerID,
				CreatedAt:         utc.Now(),
			}
			st.created[key] = true
			summary.RecordsCreated++
		} else if st.staged[key] == existing {
			rec = existing
		} else {
			rec = existing.Clone()
		}

		mut.apply(rec)
		provenance.Stamp(rec, c.source, mut.dataDate)
		rec.SourcePriority = c.weights.priority(c.source)
		rec.ConfidenceScore = c.weights.confidence(c.source, provenance.Corroboration(rec))

		st.staged[key] = rec
		st.indexStaged(rec)
		summary.RecordsProcessed++
	}
}

// indexStaged keeps byPlayer aware of newly created records so authority
// checks later in the same run see them.
func (st *state) indexStaged(rec *registry.RegistryRecord) {
	for _, r := range st.byPlayer[rec.PlayerLookup] {
		if r.Key() == rec.Key() {
			return
		}
	}
	if _, stored := st.records[rec.Key()]; !stored {
		st.byPlayer[rec.PlayerLookup] = append(st.byPlayer[rec.PlayerLookup], rec)
	}
}

// write persists staged records. The bulk path is one round trip; if it
// fails, each record is retried individually so one bad record cannot
// abort a whole season's batch.
func (c *core) write(ctx context.Context, rctx *RunContext, st *state, summary *Summary) {
	if len(st.staged) == 0 {
		return
	}
	log := logging.FromContext(ctx)

	staged := make([]*registry.RegistryRecord, 0, len(st.staged))
	for _, rec := range st.staged {
		staged = append(staged, rec)
	}
	sort.Slice(staged, func(i, j int) bool { return staged[i].Key().String() < staged[j].Key().String() })

	err := c.repo.UpsertRecords(ctx, staged, rctx.Strategy)
	if err == nil {
		return
	}
	log.Warn().Err(err).Int("records", len(staged)).Msg("bulk upsert failed, retrying per record")

	for _, rec := range staged {
		if err := c.repo.UpsertRecords(ctx, []*registry.RegistryRecord{rec}, rctx.Strategy); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("write %s: %v", rec.Key(), err))
			summary.RecordsProcessed--
			log.Error().Err(err).Str("record", rec.Key().String()).Msg("record write failed, skipping")
		}
	}
}

// discovery is a first-sighted player lookup pending review.
type discovery struct {
	raw      string
	lookup   string
	teamAbbr string
	jersey   string
	position string
	context  string
}

// handleDiscoveries runs the suffix heuristic and the name-change
// investigator over first-sighted lookups, then persists what remains as
// unresolved candidates. It returns the alias mapping it created so the
// caller can rekey this batch's mutations onto canonical lookups. Every
// step here is best-effort: failures are logged and never abort the main
// write path.
func (c *core) handleDiscoveries(ctx context.Context, rctx *RunContext, st *state, discoveries []discovery, summary *Summary) map[string]string {
	if len(discoveries) == 0 {
		return nil
	}
	log := logging.FromContext(ctx)
	summary.PlayersDiscovered += len(discoveries)

	// Known lookups per team: previously stored plus discovered this batch.
	knownByTeam := make(map[string][]string)
	for _, r := range st.records {
		knownByTeam[r.TeamAbbr] = append(knownByTeam[r.TeamAbbr], r.PlayerLookup)
	}
	for _, d := range discoveries {
		knownByTeam[d.teamAbbr] = append(knownByTeam[d.teamAbbr], d.lookup)
	}

	aliased := make(map[string]bool)
	aliasMap := make(map[string]string)
	var newAliases []registry.Alias
	for _, d := range discoveries {
		for _, other := range knownByTeam[d.teamAbbr] {
			aliasForm, canonicalForm, ok := identity.DiffersBySuffix(d.lookup, other)
			if !ok {
				continue
			}
			aliasMap[aliasForm] = canonicalForm
			newAliases = append(newAliases, registry.Alias{
				AliasLookup:     aliasForm,
				CanonicalLookup: canonicalForm,
				Type:            registry.AliasAutoSuffix,
				Active:          true,
				Notes:           fmt.Sprintf("auto-detected generational suffix on %s", d.teamAbbr),
				CreatedAt:       utc.Now(),
			})
			aliased[aliasForm] = true
			aliased[canonicalForm] = true
			break
		}
	}
	if len(newAliases) > 0 {
		if err := c.repo.InsertAliases(ctx, newAliases); err != nil {
			log.Warn().Err(err).Int("aliases", len(newAliases)).Msg("alias insert failed")
		} else {
			log.Info().Int("aliases", len(newAliases)).Msg("created auto-suffix aliases")
		}
	}

	var candidates []registry.UnresolvedNameCandidate
	for _, d := range discoveries {
		if aliased[d.lookup] {
			continue
		}

		report, err := c.investigator.Investigate(ctx, d.lookup, d.teamAbbr, rctx.Season, investigate.EnhancementFacts{
			JerseyNumber: d.jersey,
			Position:     d.position,
			Source:       c.source,
		})
		if err != nil {
			log.Warn().Err(err).Str("lookup", d.lookup).Msg("name-change investigation failed")
		} else if report.Urgent {
			notify.Send(ctx, c.notifier, notify.Alert{
				Kind:     notify.KindNameChange,
				Severity: notify.SeverityUrgent,
				Summary:  fmt.Sprintf("possible name change: %q on %s", d.lookup, d.teamAbbr),
				Detail: map[string]any{
					"confidence": report.Confidence,
					"candidates": len(report.Candidates),
					"evidence":   report.Evidence,
				},
			})
		}

		candidates = append(candidates, registry.UnresolvedNameCandidate{
			Lookup:          d.lookup,
			TeamAbbr:        d.teamAbbr,
			Season:          rctx.Season,
			Source:          c.source,
			OccurrenceCount: 1,
			ExampleContext:  d.context,
			FirstSeenAt:     utc.Now(),
			LastSeenAt:      utc.Now(),
		})
	}

	if len(candidates) > 0 {
		if err := c.repo.InsertUnresolvedCandidates(ctx, candidates); err != nil {
			log.Warn().Err(err).Int("candidates", len(candidates)).Msg("unresolved candidate insert failed")
		}
	}
	if len(candidates) >= c.unresolvedAlert {
		notify.Send(ctx, c.notifier, notify.Alert{
			Kind:     notify.KindUnresolvedPlayers,
			Severity: notify.SeverityWarning,
			Summary:  fmt.Sprintf("%d unresolved players in one %s run", len(candidates), c.source),
			Detail:   map[string]any{"season": rctx.Season, "run_id": rctx.RunID},
		})
	}
	return aliasMap
}

// admit runs the temporal ordering guard for the run's scope. A rejection
// is notified, recorded as a blocked ledger entry, and returned.
func (c *core) admit(ctx context.Context, rctx *RunContext, summary *Summary) error {
	decision, err := c.temporal.Validate(ctx, c.source, rctx.Season, rctx.DataDate, rctx.AllowBackfill)
	switch decision {
	case guard.Accept:
		return nil
	case guard.AcceptBackfill:
		rctx.InsertOnly = true
		return nil
	}

	if errors.Is(err, errors.ErrTemporalOrdering) {
		notify.Send(ctx, c.notifier, notify.Alert{
			Kind:     notify.KindTemporalViolation,
			Severity: notify.SeverityWarning,
			Summary:  err.Error(),
			Detail:   map[string]any{"season": rctx.Season, "run_id": rctx.RunID, "processor": c.source.String()},
		})
	}

	summary.Status = registry.RunStatusBlocked
	summary.Errors = append(summary.Errors, err.Error())
	c.appendLedger(ctx, rctx, summary, nil)
	return err
}

// staleness derives the run's validation mode from the freshness of the
// facts it was handed. Stale upstream data degrades rather than fails.
func (c *core) staleness(ctx context.Context, rctx *RunContext, latest registry.Date) map[registry.SourceKind]registry.Date {
	mode, err := guard.StaleCheck(c.source, latest, c.now(), c.stalenessDays)
	rctx.ValidationMode = mode
	if err != nil {
		logging.FromContext(ctx).Warn().Err(err).Str("mode", string(mode)).Msg("upstream data stale, degrading validation")
		notify.Send(ctx, c.notifier, notify.Alert{
			Kind:     notify.KindStaleSource,
			Severity: notify.SeverityWarning,
			Summary:  err.Error(),
			Detail:   map[string]any{"run_id": rctx.RunID, "validation_mode": string(mode)},
		})
	}
	return map[registry.SourceKind]registry.Date{c.source: latest}
}

// appendLedger writes the run's single completion entry. Append failure is
// logged but does not roll back applied side effects.
func (c *core) appendLedger(ctx context.Context, rctx *RunContext, summary *Summary, freshness map[registry.SourceKind]registry.Date) {
	entry := registry.RunLedgerEntry{
		Processor:       c.source,
		RunID:           rctx.RunID,
		Season:          rctx.Season,
		Status:          summary.Status,
		DataDate:        rctx.DataDate,
		Counts:          summary.counts(),
		ValidationMode:  rctx.ValidationMode,
		SourceFreshness: freshness,
		CompletedAt:     utc.Now(),
	}
	if len(summary.Errors) > 0 {
		entry.ErrorDetail = summary.Errors[0]
	}
	if err := c.repo.AppendRunLedgerEntry(ctx, entry); err != nil {
		logging.FromContext(ctx).Error().Err(err).Str("run_id", rctx.RunID).Msg("ledger append failed, applied writes stand")
	}
}

// finishStatus settles the run's final status from its counts.
func finishStatus(summary *Summary) {
	if summary.Status == registry.RunStatusBlocked {
		return
	}
	switch {
	case len(summary.Errors) > 0 && summary.RecordsProcessed == 0:
		summary.Status = registry.RunStatusFailed
	case len(summary.Errors) > 0:
		summary.Status = registry.RunStatusPartial
	default:
		summary.Status = registry.RunStatusSuccess
	}
}

// guardReplace enforces the confirmation flag on the destructive replace
// strategy.
func (c *core) guardReplace(ctx context.Context, req Request) error {
	if req.Strategy != registry.UpsertReplace || req.ConfirmFullReplace {
		return nil
	}
	notify.Send(ctx, c.notifier, notify.Alert{
		Kind:     notify.KindSafetyViolation,
		Severity: notify.SeverityUrgent,
		Summary:  "full replace requested without confirmation",
		Detail:   map[string]any{"season": req.Season, "processor": c.source.String()},
	})
	return fmt.Errorf("replace strategy rewrites the season wholesale: %w", errors.ErrConfirmationRequired)
}
