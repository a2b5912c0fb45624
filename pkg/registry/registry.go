// Package registry defines the core data model for the player registry:
// player identities, aliases, registry records, unresolved name candidates,
// and the append-only run ledger. These types are shared by every processor
// and by the storage layer; behavior (guards, arbitration, aggregation)
// lives in the packages that consume them.
package registry

import (
	"fmt"
	"time"
)

// SourceKind identifies an upstream data source.
type SourceKind string

const (
	// SourceGamebook is verified per-game participation data.
	SourceGamebook SourceKind = "gamebook"
	// SourceRoster is roster snapshot data from the scraped feeds.
	SourceRoster SourceKind = "roster"
	// SourceMovement is trade and transaction data.
	SourceMovement SourceKind = "movement"
)

// String returns the string representation of the source kind.
func (s SourceKind) String() string {
	return string(s)
}

// Valid reports whether the source kind is one of the known sources.
func (s SourceKind) Valid() bool {
	switch s {
	case SourceGamebook, SourceRoster, SourceMovement:
		return true
	}
	return false
}

// RunStatus describes the outcome of a processing run.
type RunStatus string

const (
	// RunStatusInProgress marks a run that has started but not completed.
	RunStatusInProgress RunStatus = "in_progress"
	// RunStatusSuccess marks a run that applied all accepted mutations.
	RunStatusSuccess RunStatus = "success"
	// RunStatusPartial marks a run that applied some mutations and logged the rest.
	RunStatusPartial RunStatus = "partial"
	// RunStatusBlocked marks a run rejected by an ordering or precedence guard.
	RunStatusBlocked RunStatus = "blocked"
	// RunStatusFailed marks a run that aborted before writing.
	RunStatusFailed RunStatus = "failed"
)

// String returns the string representation of the run status.
func (s RunStatus) String() string {
	return string(s)
}

// ValidationMode describes how much upstream validation backed a run.
// Stale canonical data degrades the mode rather than failing the run.
type ValidationMode string

const (
	// ValidationFull means all upstream sources were within their freshness thresholds.
	ValidationFull ValidationMode = "full"
	// ValidationPartial means at least one upstream source was stale.
	ValidationPartial ValidationMode = "partial"
	// ValidationNone means no upstream freshness could be confirmed.
	ValidationNone ValidationMode = "none"
)

// Date is a calendar date in ISO form (YYYY-MM-DD). Registry data is
// day-grained: game dates, scrape dates, and transaction dates all arrive
// as civil dates, and all ordering and freshness comparisons are performed
// at day precision. ISO form makes the zero value ("") sort before any
// real date.
type Date string

// ParseDate validates an ISO calendar date string.
func ParseDate(s string) (Date, error) {
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return "", fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date(s), nil
}

// DateOf truncates a time to its UTC calendar date.
func DateOf(t time.Time) Date {
	return Date(t.UTC().Format("2006-01-02"))
}

// String returns the ISO form of the date.
func (d Date) String() string {
	return string(d)
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d == ""
}

// Before reports whether d is strictly earlier than other.
// ISO dates order lexicographically.
func (d Date) Before(other Date) bool {
	return d < other
}

// After reports whether d is strictly later than other.
func (d Date) After(other Date) bool {
	return d > other
}

// Time returns the date as a UTC time at midnight. The zero date returns
// the zero time.
func (d Date) Time() time.Time {
	if d.IsZero() {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}
