package aggregator

import (
	"context"
	"fmt"

	"github.com/agentstation/playerregistry/pkg/identity"
	"github.com/agentstation/playerregistry/pkg/logging"
	"github.com/agentstation/playerregistry/pkg/registry"
	"github.com/agentstation/playerregistry/pkg/repository"
)

// Movement aggregates trade and transaction records. A transaction is an
// authoritative assertion that the player now belongs to the new team, so
// it creates the new-team record for the season; the prior team's record
// stays as history, records are never deleted.
type Movement struct {
	*core
}

// NewMovement creates the movement aggregator.
func NewMovement(repo repository.Repository, opts ...Option) (*Movement, error) {
	o, err := newOptions(repo, opts...)
	if err != nil {
		return nil, err
	}
	return &Movement{core: newCore(registry.SourceMovement, o)}, nil
}

// Process runs one movement batch.
func (m *Movement) Process(ctx context.Context, req Request, facts []MovementFact) (*Summary, error) {
	if err := req.normalize(); err != nil {
		return nil, err
	}
	if err := m.guardReplace(ctx, req); err != nil {
		return nil, err
	}

	var scoped []MovementFact
	var latest registry.Date
	for _, f := range facts {
		if f.Season != req.Season || !req.inRange(f.TransactionDate) {
			continue
		}
		if req.TeamAbbr != "" && f.NewTeamAbbr != req.TeamAbbr {
			continue
		}
		scoped = append(scoped, f)
		if f.TransactionDate.After(latest) {
			latest = f.TransactionDate
		}
	}

	dataDate := req.DataDate
	if dataDate.IsZero() {
		dataDate = latest
	}
	rctx := newRunContext(registry.SourceMovement, req, dataDate, m.now())
	ctx = logging.WithRun(logging.WithSeason(logging.WithProcessor(ctx, rctx.Processor.String()), rctx.Season), rctx.RunID)
	log := logging.FromContext(ctx)

	summary := &Summary{RunID: rctx.RunID, Processor: rctx.Processor, Season: rctx.Season, DataDate: dataDate}
	if len(scoped) == 0 {
		// Nothing in scope: there is no data date to admit and no
		// progress to record, so skip the guards and the ledger.
		summary.Status = registry.RunStatusSuccess
		log.Info().Msg("no movement facts in scope, nothing to process")
		return summary, nil
	}
	if err := m.admit(ctx, &rctx, summary); err != nil {
		return summary, err
	}
	freshness := m.staleness(ctx, &rctx, latest)
	summary.ValidationMode = rctx.ValidationMode

	st, err := m.loadState(ctx, req.Season)
	if err != nil {
		summary.Status = registry.RunStatusFailed
		summary.Errors = append(summary.Errors, err.Error())
		m.appendLedger(ctx, &rctx, summary, freshness)
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
	resolutions := m.resolver.ResolveBatch(ctx, lookups)

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
				teamAbbr: f.NewTeamAbbr,
				context:  fmt.Sprintf("%s to %s on %s", f.Type, f.NewTeamAbbr, f.TransactionDate),
			})
		}
	}
	aliasMap := m.handleDiscoveries(ctx, &rctx, st, dedupeDiscoveries(discoveries), summary)

	muts := make([]mutation, 0, len(scoped))
	for i, f := range scoped {
		lookup := lookupOf[i]
		playerID := resolutions[lookup].Identity.UniversalPlayerID
		if canonical, ok := aliasMap[lookup]; ok {
			lookup = canonical
			playerID = identity.UniversalID(canonical)
		}
		muts = append(muts, mutation{
			lookup:   lookup,
			playerID: playerID,
			teamAbbr: f.NewTeamAbbr,
			season:   f.Season,
			dataDate: f.TransactionDate,
			apply:    func(*registry.RegistryRecord) {},
		})
	}

	m.pipeline(ctx, &rctx, st, muts, summary)
	m.write(ctx, &rctx, st, summary)
	finishStatus(summary)
	m.appendLedger(ctx, &rctx, summary, freshness)

	log.Info().
		Str("status", summary.Status.String()).
		Int("processed", summary.RecordsProcessed).
		Int("created", summary.RecordsCreated).
		Int("discovered", summary.PlayersDiscovered).
		Msg("movement run complete")
	return summary, nil
}
