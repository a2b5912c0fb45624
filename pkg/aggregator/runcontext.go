package aggregator

import (
	"time"

	"github.com/google/uuid"

	"github.com/agentstation/playerregistry/pkg/registry"
)

// RunContext carries the identity and mode of one processing invocation.
// It is an explicit value threaded through the pipeline; there is no
// global current-run state.
type RunContext struct {
	RunID          string
	Processor      registry.SourceKind
	Season         int
	DataDate       registry.Date
	Strategy       registry.UpsertStrategy
	AllowBackfill  bool
	InsertOnly     bool // Set when the temporal guard admits the run as a backfill
	ValidationMode registry.ValidationMode
	StartedAt      time.Time
}

// newRunID returns a time-ordered run identifier.
func newRunID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// newRunContext builds the run context for a request.
func newRunContext(processor registry.SourceKind, req Request, dataDate registry.Date, now time.Time) RunContext {
	return RunContext{
		RunID:          newRunID(),
		Processor:      processor,
		Season:         req.Season,
		DataDate:       dataDate,
		Strategy:       req.Strategy,
		AllowBackfill:  req.AllowBackfill,
		ValidationMode: registry.ValidationFull,
		StartedAt:      now,
	}
}
