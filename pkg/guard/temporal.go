// Package guard implements the write-admission rules that make concurrent,
// out-of-order, multi-source processing converge: the temporal ordering
// guard (a processor may not silently regress its own progress), the
// freshness arbiter (per-record, per-source monotonic activity dates), the
// gamebook precedence guard (roster may never fall behind gamebook's
// demonstrated progress), and the staleness check (old upstream data
// degrades validation instead of failing the run).
package guard

import (
	"context"

	"github.com/agentstation/playerregistry/pkg/errors"
	"github.com/agentstation/playerregistry/pkg/logging"
	"github.com/agentstation/playerregistry/pkg/registry"
)

// LedgerReader is the run-ledger surface the guards consult.
type LedgerReader interface {
	// LedgerEntries returns all ledger entries for a processor and season.
	LedgerEntries(ctx context.Context, processor registry.SourceKind, season int) ([]registry.RunLedgerEntry, error)
}

// Decision is the outcome of a temporal ordering check.
type Decision int

const (
	// Accept admits the run normally.
	Accept Decision = iota
	// AcceptBackfill admits the run in insert-only mode: it may create
	// missing records but must not downgrade already-fresher fields.
	AcceptBackfill
	// Reject blocks the run's scope entirely.
	Reject
)

// String returns the decision name.
func (d Decision) String() string {
	switch d {
	case Accept:
		return "accept"
	case AcceptBackfill:
		return "accept_backfill"
	case Reject:
		return "reject"
	}
	return "unknown"
}

// Temporal rejects processing of a date that regresses a processor's own
// prior progress for a season, unless backfill is explicitly requested.
type Temporal struct {
	ledger LedgerReader
}

// NewTemporal creates a temporal ordering guard over the given ledger.
func NewTemporal(ledger LedgerReader) (*Temporal, error) {
	if ledger == nil {
		return nil, &errors.ValidationError{Field: "ledger", Message: "cannot be nil"}
	}
	return &Temporal{ledger: ledger}, nil
}

// Validate admits or rejects a candidate run date. No prior run accepts;
// forward progress or an exact re-run accepts; an earlier date accepts only
// with allowBackfill, and then insert-only. The returned error is a
// *errors.TemporalOrderingError naming both dates when rejected.
func (t *Temporal) Validate(ctx context.Context, processor registry.SourceKind, season int, candidateDate registry.Date, allowBackfill bool) (Decision, error) {
	entries, err := t.ledger.LedgerEntries(ctx, processor, season)
	if err != nil {
		return Reject, errors.WrapResource(err, "read", "run ledger", processor.String())
	}

	maxSeen := registry.MaxDataDate(entries)
	if maxSeen.IsZero() || !candidateDate.Before(maxSeen) {
		return Accept, nil
	}

	if allowBackfill {
		logging.FromContext(ctx).Info().
			Str("candidate_date", candidateDate.String()).
			Str("max_seen", maxSeen.String()).
			Msg("backfill run admitted in insert-only mode")
		return AcceptBackfill, nil
	}

	return Reject, &errors.TemporalOrderingError{
		Processor:     processor,
		Season:        season,
		CandidateDate: candidateDate,
		MaxSeenDate:   maxSeen,
	}
}
