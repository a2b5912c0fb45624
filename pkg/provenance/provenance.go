// Package provenance stamps registry records with the source-level audit
// trail: per-source activity dates, per-source update counters, and the
// last processor to touch each record. Activity dates are monotonic per
// source; a stamp from an earlier date never overwrites a later one.
package provenance

import (
	"github.com/agentstation/utc"

	"github.com/agentstation/playerregistry/pkg/registry"
)

// Stamp records an accepted write from a source onto a record: the activity
// date (kept monotonic), the update counter, the last-processor marker, and
// the updated-at timestamp.
func Stamp(record *registry.RegistryRecord, source registry.SourceKind, dataDate registry.Date) {
	if record.ActivityDates == nil {
		record.ActivityDates = make(map[registry.SourceKind]registry.Date)
	}
	if record.UpdateCounts == nil {
		record.UpdateCounts = make(map[registry.SourceKind]int)
	}

	if dataDate.After(record.ActivityDates[source]) {
		record.ActivityDates[source] = dataDate
	}
	record.UpdateCounts[source]++
	record.LastProcessor = source
	record.UpdatedAt = utc.Now()
}

// Corroboration counts how many distinct sources have contributed to a
// record. Confidence weighting increases with multi-source corroboration.
func Corroboration(record *registry.RegistryRecord) int {
	if record == nil {
		return 0
	}
	return len(record.ActivityDates)
}
