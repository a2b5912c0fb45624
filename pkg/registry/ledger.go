package registry

import (
	"github.com/agentstation/utc"
)

// RunCounts summarizes what a processing run did.
type RunCounts struct {
	RecordsProcessed  int `json:"records_processed" yaml:"records_processed"`
	RecordsCreated    int `json:"records_created" yaml:"records_created"`
	RecordsSkipped    int `json:"records_skipped" yaml:"records_skipped"`
	PlayersDiscovered int `json:"players_discovered" yaml:"players_discovered"`
	Errors            int `json:"errors" yaml:"errors"`
}

// RunLedgerEntry is the immutable record of one processing invocation.
// It is written exactly once at completion and never updated; subsequent
// runs consult the ledger to derive ordering and precedence decisions.
// A crashed run that never reaches the append is simply absent, which
// future runs treat as "no successful run for this scope".
type RunLedgerEntry struct {
	Processor       SourceKind          `json:"processor" yaml:"processor"`
	RunID           string              `json:"run_id" yaml:"run_id"`
	Season          int                 `json:"season" yaml:"season"`
	Status          RunStatus           `json:"status" yaml:"status"`
	DataDate        Date                `json:"data_date" yaml:"data_date"` // The date of the data this run processed
	Counts          RunCounts           `json:"counts" yaml:"counts"`
	ValidationMode  ValidationMode      `json:"validation_mode" yaml:"validation_mode"`
	SourceFreshness map[SourceKind]Date `json:"source_freshness,omitempty" yaml:"source_freshness,omitempty"` // Upstream data dates observed by this run
	ErrorDetail     string              `json:"error_detail,omitempty" yaml:"error_detail,omitempty"`
	CompletedAt     utc.Time            `json:"completed_at" yaml:"completed_at"`
}

// CountsTowardProgress reports whether this entry represents demonstrated
// forward progress for ordering purposes. Blocked and failed runs do not
// advance a processor's high-water mark.
func (e *RunLedgerEntry) CountsTowardProgress() bool {
	switch e.Status {
	case RunStatusSuccess, RunStatusPartial, RunStatusInProgress:
		return true
	}
	return false
}

// MaxDataDate returns the latest data date among entries that count toward
// progress, or the zero date if none do.
func MaxDataDate(entries []RunLedgerEntry) Date {
	var max Date
	for i := range entries {
		e := &entries[i]
		if !e.CountsTowardProgress() {
			continue
		}
		if e.DataDate.After(max) {
			max = e.DataDate
		}
	}
	return max
}
