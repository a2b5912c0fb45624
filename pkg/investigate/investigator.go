// Package investigate implements the name-change investigator: a
// similarity heuristic that, given a lookup with no matching identity,
// proposes previously-seen lookups on the same team as candidate prior
// spellings. Reports are confidence-scored advisory output for operator
// review; merges happen only through the explicit alias mechanism.
package investigate

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/agentstation/playerregistry/pkg/errors"
	"github.com/agentstation/playerregistry/pkg/identity"
	"github.com/agentstation/playerregistry/pkg/logging"
	"github.com/agentstation/playerregistry/pkg/registry"
	"github.com/agentstation/playerregistry/pkg/repository"
)

// Similarity and confidence thresholds. The additive confidence weights
// are calibrated so a strong match with recent activity crosses the urgent
// line on its own.
const (
	CandidateThreshold = 0.6
	StrongSimilarity   = 0.8
	UrgentConfidence   = 0.7

	weightStrongMatch     = 0.6
	weightModerateMatch   = 0.4
	weightRecentActivity  = 0.3
	weightSuffix          = 0.2
	weightJerseyMetadata  = 0.1
	weightSecondCandidate = 0.1

	recencyWindow = 365 * 24 * time.Hour
)

// Store is the candidate-search surface the investigator needs.
type Store interface {
	DistinctTeamLookups(ctx context.Context, teamAbbr string, sinceSeason int) ([]repository.TeamLookup, error)
}

// EnhancementFacts are the contextual facts accompanying a new lookup.
type EnhancementFacts struct {
	JerseyNumber string
	Position     string
	Source       registry.SourceKind
}

// Candidate is one possible prior spelling of a new lookup.
type Candidate struct {
	Lookup     string        `json:"lookup" yaml:"lookup"`
	Similarity float64       `json:"similarity" yaml:"similarity"`
	LastActive registry.Date `json:"last_active" yaml:"last_active"`
}

// Report is the investigation result for one unmatched lookup.
type Report struct {
	NewLookup  string      `json:"new_lookup" yaml:"new_lookup"`
	TeamAbbr   string      `json:"team_abbr" yaml:"team_abbr"`
	Season     int         `json:"season" yaml:"season"`
	Candidates []Candidate `json:"candidates" yaml:"candidates"`
	Confidence float64     `json:"confidence" yaml:"confidence"`
	Urgent     bool        `json:"urgent" yaml:"urgent"`
	Evidence   []string    `json:"evidence" yaml:"evidence"`
}

// Investigator produces confidence-scored name-change reports.
type Investigator interface {
	Investigate(ctx context.Context, newLookup, teamAbbr string, season int, facts EnhancementFacts) (*Report, error)
}

// investigator is the default implementation.
type investigator struct {
	store           Store
	lookbackSeasons int
	now             func() time.Time
}

// Option configures an Investigator.
type Option func(*investigator) error

// WithLookbackSeasons sets how many prior seasons to search for candidates.
func WithLookbackSeasons(n int) Option {
	return func(i *investigator) error {
		if n < 1 {
			return &errors.ValidationError{Field: "lookbackSeasons", Value: n, Message: "must be at least 1"}
		}
		i.lookbackSeasons = n
		return nil
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(i *investigator) error {
		if now == nil {
			return &errors.ValidationError{Field: "now", Message: "cannot be nil"}
		}
		i.now = now
		return nil
	}
}

// New creates an Investigator over the given store.
func New(store Store, opts ...Option) (Investigator, error) {
	if store == nil {
		return nil, &errors.ValidationError{Field: "store", Message: "cannot be nil"}
	}
	inv := &investigator{
		store:           store,
		lookbackSeasons: 3,
		now:             time.Now,
	}
	for _, opt := range opts {
		if err := opt(inv); err != nil {
			return nil, err
		}
	}
	return inv, nil
}

// Investigate searches same-team lookups from recent seasons and scores
// how likely the new lookup is a changed or re-spelled name.
func (i *investigator) Investigate(ctx context.Context, newLookup, teamAbbr string, season int, facts EnhancementFacts) (*Report, error) {
	log := logging.FromContext(ctx)

	prior, err := i.store.DistinctTeamLookups(ctx, teamAbbr, season-i.lookbackSeasons)
	if err != nil {
		return nil, errors.WrapResource(err, "search", "team lookups", teamAbbr)
	}

	var candidates []Candidate
	for _, tl := range prior {
		if tl.Lookup == newLookup {
			continue
		}
		ratio := identity.Ratio(newLookup, tl.Lookup)
		if ratio > CandidateThreshold {
			candidates = append(candidates, Candidate{
				Lookup:     tl.Lookup,
				Similarity: ratio,
				LastActive: tl.LastActive,
			})
		}
	}
	sort.Slice(candidates, func(a, b int) bool {
		if candidates[a].Similarity != candidates[b].Similarity {
			return candidates[a].Similarity > candidates[b].Similarity
		}
		return candidates[a].Lookup < candidates[b].Lookup
	})

	report := &Report{
		NewLookup:  newLookup,
		TeamAbbr:   teamAbbr,
		Season:     season,
		Candidates: candidates,
	}
	i.score(report, facts)

	log.Debug().
		Str("lookup", newLookup).
		Str("team", teamAbbr).
		Int("candidates", len(candidates)).
		Float64("confidence", report.Confidence).
		Bool("urgent", report.Urgent).
		Msg("name-change investigation complete")

	return report, nil
}

// score applies the additive confidence model, capped at 1.0.
func (i *investigator) score(report *Report, facts EnhancementFacts) {
	if len(report.Candidates) == 0 {
		return
	}

	top := report.Candidates[0]
	var confidence float64
	var evidence []string

	switch {
	case top.Similarity > StrongSimilarity:
		confidence += weightStrongMatch
		evidence = append(evidence, fmt.Sprintf("top candidate %q similarity %.2f exceeds %.1f", top.Lookup, top.Similarity, StrongSimilarity))
	case top.Similarity > CandidateThreshold:
		confidence += weightModerateMatch
		evidence = append(evidence, fmt.Sprintf("top candidate %q similarity %.2f exceeds %.1f", top.Lookup, top.Similarity, CandidateThreshold))
	}

	if !top.LastActive.IsZero() && i.now().UTC().Sub(top.LastActive.Time()) <= recencyWindow {
		confidence += weightRecentActivity
		evidence = append(evidence, fmt.Sprintf("top candidate last active %s, within the last year", top.LastActive))
	}

	if identity.HasGenerationalSuffix(report.NewLookup) {
		confidence += weightSuffix
		evidence = append(evidence, "new lookup carries a generational suffix")
	}

	if facts.JerseyNumber != "" {
		confidence += weightJerseyMetadata
		evidence = append(evidence, "jersey number metadata present")
	}

	if len(report.Candidates) > 1 && report.Candidates[1].Similarity > CandidateThreshold {
		confidence += weightSecondCandidate
		evidence = append(evidence, fmt.Sprintf("second candidate %q also exceeds %.1f", report.Candidates[1].Lookup, CandidateThreshold))
	}

	if confidence > 1.0 {
		confidence = 1.0
	}

	report.Confidence = confidence
	report.Urgent = confidence >= UrgentConfidence
	report.Evidence = evidence
}
