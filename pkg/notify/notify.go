// Package notify delivers best-effort operator alerts: guard violations,
// high-confidence name-change reports, unresolved-player buildup, and
// stale upstream data. Delivery failure is logged and never fails a run.
package notify

import (
	"context"

	"github.com/agentstation/playerregistry/pkg/logging"
)

// Kind classifies an alert.
type Kind string

const (
	// KindTemporalViolation reports a rejected out-of-order run.
	KindTemporalViolation Kind = "temporal_violation"
	// KindPrecedenceViolation reports roster blocked behind gamebook.
	KindPrecedenceViolation Kind = "precedence_violation"
	// KindStaleSource reports upstream data past its freshness threshold.
	KindStaleSource Kind = "stale_source"
	// KindNameChange reports a high-confidence name-change investigation.
	KindNameChange Kind = "name_change"
	// KindUnresolvedPlayers reports a high unresolved-player count.
	KindUnresolvedPlayers Kind = "unresolved_players"
	// KindSafetyViolation reports a failed safety check, e.g. an
	// unconfirmed full-replace request.
	KindSafetyViolation Kind = "safety_violation"
)

// Severity ranks an alert for routing.
type Severity string

const (
	// SeverityInfo is informational.
	SeverityInfo Severity = "info"
	// SeverityWarning needs operator attention eventually.
	SeverityWarning Severity = "warning"
	// SeverityUrgent needs operator attention now.
	SeverityUrgent Severity = "urgent"
)

// Alert is one operator notification.
type Alert struct {
	Kind     Kind           `json:"kind" yaml:"kind"`
	Severity Severity       `json:"severity" yaml:"severity"`
	Summary  string         `json:"summary" yaml:"summary"`
	Detail   map[string]any `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Channel delivers alerts. Delivery is best effort: callers report
// errors to the log and never fail a run on them.
type Channel interface {
	Notify(ctx context.Context, alert Alert) error
}

// LogChannel writes alerts to the structured log. It is the default
// channel and the fallback when no external channel is configured.
type LogChannel struct{}

// Notify implements Channel.
func (LogChannel) Notify(ctx context.Context, alert Alert) error {
	log := logging.FromContext(ctx)
	event := log.Warn()
	if alert.Severity == SeverityUrgent {
		event = log.Error()
	}
	event.
		Str("alert_kind", string(alert.Kind)).
		Str("severity", string(alert.Severity)).
		Fields(alert.Detail).
		Msg(alert.Summary)
	return nil
}

// Multi fans an alert out to several channels. Each channel's failure is
// logged and does not stop delivery to the rest.
type Multi []Channel

// Notify implements Channel.
func (m Multi) Notify(ctx context.Context, alert Alert) error {
	log := logging.FromContext(ctx)
	for _, ch := range m {
		if err := ch.Notify(ctx, alert); err != nil {
			log.Warn().Err(err).Str("alert_kind", string(alert.Kind)).Msg("notification delivery failed")
		}
	}
	return nil
}

// Send delivers an alert, swallowing any error. This is the helper the
// aggregators call from the main write path.
func Send(ctx context.Context, ch Channel, alert Alert) {
	if ch == nil {
		return
	}
	if err := ch.Notify(ctx, alert); err != nil {
		logging.FromContext(ctx).Warn().Err(err).Str("alert_kind", string(alert.Kind)).Msg("notification delivery failed")
	}
}
