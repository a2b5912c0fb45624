package guard

import (
	"time"

	"github.com/agentstation/playerregistry/pkg/errors"
	"github.com/agentstation/playerregistry/pkg/registry"
)

// StaleCheck compares an upstream source's latest data date against its
// freshness threshold. Stale data degrades the run's validation mode to
// partial rather than failing; a source with no data at all degrades to
// none. The returned error, when non-nil, is a *errors.StaleSourceDataError
// flagged for operator attention but never fatal.
func StaleCheck(source registry.SourceKind, latest registry.Date, now time.Time, thresholdDays int) (registry.ValidationMode, error) {
	if latest.IsZero() {
		return registry.ValidationNone, &errors.StaleSourceDataError{
			Source:        source,
			DataDate:      latest,
			ThresholdDays: thresholdDays,
		}
	}

	age := now.UTC().Sub(latest.Time())
	if age > time.Duration(thresholdDays)*24*time.Hour {
		return registry.ValidationPartial, &errors.StaleSourceDataError{
			Source:        source,
			DataDate:      latest,
			ThresholdDays: thresholdDays,
		}
	}

	return registry.ValidationFull, nil
}
