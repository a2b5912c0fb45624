package aggregator

import (
	"context"
	"fmt"

	"github.com/agentstation/playerregistry/pkg/identity"
	"github.com/agentstation/playerregistry/pkg/logging"
	"github.com/agentstation/playerregistry/pkg/registry"
	"github.com/agentstation/playerregistry/pkg/repository"
)

// Gamebook aggregates verified per-game participation into the registry.
// It is the authoritative source for team assignment and participation
// counts.
type Gamebook struct {
	*core
}

// NewGamebook creates the gamebook aggregator.
func NewGamebook(repo repository.Repository, opts ...Option) (*Gamebook, error) {
	o, err := newOptions(repo, opts...)
	if err != nil {
		return nil, err
	}
	return &Gamebook{core: newCore(registry.SourceGamebook, o)}, nil
}

// Process runs one gamebook batch.
func (g *Gamebook) Process(ctx context.Context, req Request, facts []GamebookFact) (*Summary, error) {
	if err := req.normalize(); err != nil {
		return nil, err
	}
	if err := g.guardReplace(ctx, req); err != nil {
		return nil, err
	}

	var scoped []GamebookFact
	var latest registry.Date
	for _, f := range facts {
		if f.Season != req.Season || !req.inRange(f.GameDate) {
			continue
		}
		if req.TeamAbbr != "" && f.TeamAbbr != req.TeamAbbr {
			continue
		}
		scoped = append(scoped, f)
		if f.GameDate.After(latest) {
			latest = f.GameDate
		}
	}

	dataDate := req.DataDate
	if dataDate.IsZero() {
		dataDate = latest
	}
	rctx := newRunContext(registry.SourceGamebook, req, dataDate, g.now())
	ctx = logging.WithRun(logging.WithSeason(logging.WithProcessor(ctx, rctx.Processor.String()), rctx.Season), rctx.RunID)
	log := logging.FromContext(ctx)

	summary := &Summary{RunID: rctx.RunID, Processor: rctx.Processor, Season: rctx.Season, DataDate: dataDate}
	if len(scoped) == 0 {
		// Nothing in scope: there is no data date to admit and no
		// progress to record, so skip the guards and the ledger.
		summary.Status = registry.RunStatusSuccess
		log.Info().Msg("no gamebook facts in scope, nothing to process")
		return summary, nil
	}
	if err := g.admit(ctx, &rctx, summary); err != nil {
		return summary, err
	}
	freshness := g.staleness(ctx, &rctx, latest)
	summary.ValidationMode = rctx.ValidationMode

	st, err := g.loadState(ctx, req.Season)
	if err != nil {
		summary.Status = registry.RunStatusFailed
		summary.Errors = append(summary.Errors, err.Error())
		g.appendLedger(ctx, &rctx, summary, freshness)
		return summary, err
	}

	// One identity round trip for the whole batch.
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
	resolutions := g.resolver.ResolveBatch(ctx, lookups)

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
				context:  fmt.Sprintf("gamebook %s vs %s", f.GameDate, f.TeamAbbr),
			})
		}
	}
	aliasMap := g.handleDiscoveries(ctx, &rctx, st, dedupeDiscoveries(discoveries), summary)

	muts := make([]mutation, 0, len(scoped))
	for i, f := range scoped {
		fact := f
		lookup := lookupOf[i]
		playerID := resolutions[lookup].Identity.UniversalPlayerID
		if canonical, ok := aliasMap[lookup]; ok {
			lookup = canonical
			playerID = identity.UniversalID(canonical)
		}
		muts = append(muts, mutation{
			lookup:   lookup,
			playerID: playerID,
			teamAbbr: fact.TeamAbbr,
			season:   fact.Season,
			dataDate: fact.GameDate,
			apply: func(rec *registry.RegistryRecord) {
				// A game date already recorded by gamebook was already
				// counted; idempotent re-runs must not inflate counts.
				if rec.TouchedBy(registry.SourceGamebook) && !fact.GameDate.After(rec.ActivityDate(registry.SourceGamebook)) {
					return
				}
				rec.TotalAppearances++
				switch fact.Status {
				case StatusActive:
					rec.GamesPlayed++
				case StatusInactive:
					rec.InactiveAppearances++
				case StatusDNP:
					rec.DNPAppearances++
				}
			},
		})
	}

	g.pipeline(ctx, &rctx, st, muts, summary)
	g.write(ctx, &rctx, st, summary)
	finishStatus(summary)
	g.appendLedger(ctx, &rctx, summary, freshness)

	log.Info().
		Str("status", summary.Status.String()).
		Int("processed", summary.RecordsProcessed).
		Int("created", summary.RecordsCreated).
		Int("discovered", summary.PlayersDiscovered).
		Msg("gamebook run complete")
	return summary, nil
}

// dedupeDiscoveries collapses multiple facts for the same new lookup on
// the same team into one discovery.
func dedupeDiscoveries(discoveries []discovery) []discovery {
	type key struct{ lookup, team string }
	seen := make(map[key]bool, len(discoveries))
	out := discoveries[:0]
	for _, d := range discoveries {
		k := key{d.lookup, d.teamAbbr}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, d)
	}
	return out
}
