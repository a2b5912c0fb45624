package aggregator

import (
	"context"
	"fmt"
	"sort"

	"github.com/agentstation/playerregistry/pkg/errors"
	"github.com/agentstation/playerregistry/pkg/identity"
	"github.com/agentstation/playerregistry/pkg/logging"
	"github.com/agentstation/playerregistry/pkg/notify"
	"github.com/agentstation/playerregistry/pkg/registry"
	"github.com/agentstation/playerregistry/pkg/repository"
)

// Roster aggregates roster snapshot rows from the independent feeds.
// Roster data is scraped and unverified, so it is doubly guarded: the
// usual temporal ordering against its own progress, plus the gamebook
// precedence guard that keeps it from processing dates gamebook has
// already superseded.
type Roster struct {
	*core
}

// NewRoster creates the roster aggregator.
func NewRoster(repo repository.Repository, opts ...Option) (*Roster, error) {
	o, err := newOptions(repo, opts...)
	if err != nil {
		return nil, err
	}
	return &Roster{core: newCore(registry.SourceRoster, o)}, nil
}

// Process runs one roster batch.
func (r *Roster) Process(ctx context.Context, req Request, facts []RosterFact) (*Summary, error) {
	if err := req.normalize(); err != nil {
		return nil, err
	}
	if err := r.guardReplace(ctx, req); err != nil {
		return nil, err
	}

	var scoped []RosterFact
	var latest registry.Date
	for _, f := range facts {
		if f.Season != req.Season || !req.inRange(f.ScrapeDate) {
			continue
		}
		if req.TeamAbbr != "" && f.TeamAbbr != req.TeamAbbr {
			continue
		}
		scoped = append(scoped, f)
		if f.ScrapeDate.After(latest) {
			latest = f.ScrapeDate
		}
	}

	dataDate := req.DataDate
	if dataDate.IsZero() {
		dataDate = latest
	}
	rctx := newRunContext(registry.SourceRoster, req, dataDate, r.now())
	ctx = logging.WithRun(logging.WithSeason(logging.WithProcessor(ctx, rctx.Processor.String()), rctx.Season), rctx.RunID)
	log := logging.FromContext(ctx)

	summary := &Summary{RunID: rctx.RunID, Processor: rctx.Processor, Season: rctx.Season, DataDate: dataDate}
	if len(scoped) == 0 {
		// Nothing in scope: there is no data date to admit and no
		// progress to record, so skip the guards and the ledger.
		summary.Status = registry.RunStatusSuccess
		log.Info().Msg("no roster facts in scope, nothing to process")
		return summary, nil
	}
	if err := r.admit(ctx, &rctx, summary); err != nil {
		return summary, err
	}

	// Gamebook precedence is checked per distinct scrape date: superseded
	// dates drop out, the rest of the run proceeds.
	scoped, blockedErr := r.filterSuperseded(ctx, &rctx, scoped, summary)
	if blockedErr != nil {
		summary.Status = registry.RunStatusBlocked
		summary.Errors = append(summary.Errors, blockedErr.Error())
		r.appendLedger(ctx, &rctx, summary, nil)
		return summary, blockedErr
	}

	freshness := r.staleness(ctx, &rctx, latest)
	summary.ValidationMode = rctx.ValidationMode

	st, err := r.loadState(ctx, req.Season)
	if err != nil {
		summary.Status = registry.RunStatusFailed
		summary.Errors = append(summary.Errors, err.Error())
		r.appendLedger(ctx, &rctx, summary, freshness)
		return summary, err
	}

	lookups := make([]string, 0, len(scoped))
	seen := make(map[string]bool)
	lookupOf := make(map[int]string, len(scoped))
	for i, f := range scoped {
		lookup := st.resolveLookup(f.PlayerName)
		lookupOf[i] = lookup
		if !seen[lookup] {
			seen[lookup] = true
			lookups = append(lookups, lookup)
		}
	}
	resolutions := r.resolver.ResolveBatch(ctx, lookups)

	var discoveries []discovery
	for i, f := range scoped {
		res := resolutions[lookupOf[i]]
		if res.Err != nil {
			summary.Errors = append(summary.Errors, res.Err.Error())
		}
		if res.Created {
			discoveries = append(discoveries, discovery{
				raw:      f.PlayerName,
				lookup:   res.Identity.CanonicalLookup,
				teamAbbr: f.TeamAbbr,
				jersey:   f.JerseyNumber,
				position: f.Position,
				context:  fmt.Sprintf("roster feed %d scraped %s", f.Feed, f.ScrapeDate),
			})
		}
	}
	aliasMap := r.handleDiscoveries(ctx, &rctx, st, dedupeDiscoveries(discoveries), summary)

	muts := make([]mutation, 0, len(scoped))
	for i, f := range scoped {
		fact := f
		lookup := lookupOf[i]
		playerID := resolutions[lookup].Identity.UniversalPlayerID
		if canonical, ok := aliasMap[lookup]; ok {
			lookup = canonical
			playerID = identity.UniversalID(canonical)
		}

		// Once gamebook has verified games for this player's team, roster
		// must preserve that team: the write lands on the authoritative
		// record and only refreshes jersey and position.
		teamAbbr := fact.TeamAbbr
		decision := r.authorities.CanAssignTeam(registry.SourceRoster, st.authorityRecord(lookup))
		if !decision.Allowed {
			auth := st.authorityRecord(lookup)
			if auth.TeamAbbr != teamAbbr {
				log.Debug().
					Str("player", lookup).
					Str("roster_team", teamAbbr).
					Str("registry_team", auth.TeamAbbr).
					Str("reason", decision.Reason).
					Msg("roster team assignment denied, preserving registry team")
			}
			teamAbbr = auth.TeamAbbr
		}

		muts = append(muts, mutation{
			lookup:   lookup,
			playerID: playerID,
			teamAbbr: teamAbbr,
			season:   fact.Season,
			dataDate: fact.ScrapeDate,
			apply: func(rec *registry.RegistryRecord) {
				if fact.JerseyNumber != "" {
					rec.JerseyNumber = fact.JerseyNumber
				}
				if fact.Position != "" {
					rec.Position = fact.Position
				}
			},
		})
	}

	r.pipeline(ctx, &rctx, st, muts, summary)
	r.write(ctx, &rctx, st, summary)
	finishStatus(summary)
	r.appendLedger(ctx, &rctx, summary, freshness)

	log.Info().
		Str("status", summary.Status.String()).
		Int("processed", summary.RecordsProcessed).
		Int("created", summary.RecordsCreated).
		Int("discovered", summary.PlayersDiscovered).
		Msg("roster run complete")
	return summary, nil
}

// filterSuperseded drops scrape dates the gamebook precedence guard
// blocks. When every date in the batch is blocked the whole run is
// blocked and the returned error says so; when only some are, the run
// proceeds with the remainder.
func (r *Roster) filterSuperseded(ctx context.Context, rctx *RunContext, scoped []RosterFact, summary *Summary) ([]RosterFact, error) {
	if len(scoped) == 0 {
		return scoped, nil
	}

	dates := make(map[registry.Date]bool)
	for _, f := range scoped {
		dates[f.ScrapeDate] = true
	}
	ordered := make([]registry.Date, 0, len(dates))
	for d := range dates {
		ordered = append(ordered, d)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Before(ordered[j]) })

	blocked := make(map[registry.Date]bool)
	var firstErr error
	for _, d := range ordered {
		err := r.precedence.Check(ctx, rctx.Season, d)
		if err == nil {
			continue
		}
		if !errors.Is(err, errors.ErrPrecedence) {
			return nil, err
		}
		blocked[d] = true
		if firstErr == nil {
			firstErr = err
		}
		notify.Send(ctx, r.notifier, notify.Alert{
			Kind:     notify.KindPrecedenceViolation,
			Severity: notify.SeverityWarning,
			Summary:  err.Error(),
			Detail:   map[string]any{"run_id": rctx.RunID, "scrape_date": d.String()},
		})
	}

	if len(blocked) == 0 {
		return scoped, nil
	}
	if len(blocked) == len(dates) {
		return nil, firstErr
	}

	kept := scoped[:0]
	for _, f := range scoped {
		if blocked[f.ScrapeDate] {
			summary.RecordsSkipped++
			continue
		}
		kept = append(kept, f)
	}
	return kept, nil
}
