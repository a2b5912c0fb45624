package guard

import (
	"context"

	"github.com/agentstation/playerregistry/pkg/errors"
	"github.com/agentstation/playerregistry/pkg/registry"
)

// Precedence is the gamebook precedence guard. Roster snapshots are
// unverified relative to gamebook's verified participation data, so a
// roster run may never process a data date at or before the latest date
// gamebook has successfully processed for the season. This holds even on
// roster's very first run for a season, which makes it stricter than the
// same-processor temporal guard.
type Precedence struct {
	ledger LedgerReader
}

// NewPrecedence creates a gamebook precedence guard over the given ledger.
func NewPrecedence(ledger LedgerReader) (*Precedence, error) {
	if ledger == nil {
		return nil, &errors.ValidationError{Field: "ledger", Message: "cannot be nil"}
	}
	return &Precedence{ledger: ledger}, nil
}

// Check blocks a roster candidate date that gamebook has already
// superseded. The returned error is a *errors.PrecedenceError; callers
// treat it as non-fatal and proceed with other dates and teams.
func (p *Precedence) Check(ctx context.Context, season int, candidateDate registry.Date) error {
	entries, err := p.ledger.LedgerEntries(ctx, registry.SourceGamebook, season)
	if err != nil {
		return errors.WrapResource(err, "read", "run ledger", registry.SourceGamebook.String())
	}

	gamebookMax := registry.MaxDataDate(entries)
	if gamebookMax.IsZero() || candidateDate.After(gamebookMax) {
		return nil
	}

	return &errors.PrecedenceError{
		Season:        season,
		CandidateDate: candidateDate,
		GamebookDate:  gamebookMax,
	}
}
