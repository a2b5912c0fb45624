package guard

import (
	"github.com/agentstation/playerregistry/pkg/registry"
)

// Freshness arbitration reasons.
const (
	ReasonNewRecord   = "new record"
	ReasonFirstWrite  = "first write from source"
	ReasonFresher     = "candidate is fresher"
	ReasonIdempotent  = "idempotent reprocess of same date"
	ReasonStaleUpdate = "candidate is older than recorded activity"
)

// ShouldApply decides whether a candidate mutation from a source may be
// applied to a record. Comparison is always same-source to same-source;
// cross-source precedence belongs to the authority resolver, not here.
func ShouldApply(existing *registry.RegistryRecord, candidateDate registry.Date, source registry.SourceKind) (bool, string) {
	if existing == nil {
		return true, ReasonNewRecord
	}
	if !existing.TouchedBy(source) {
		return true, ReasonFirstWrite
	}
	recorded := existing.ActivityDate(source)
	switch {
	case candidateDate.After(recorded):
		return true, ReasonFresher
	case candidateDate == recorded:
		return true, ReasonIdempotent
	default:
		return false, ReasonStaleUpdate
	}
}
