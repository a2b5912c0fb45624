package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/playerregistry/pkg/errors"
	"github.com/agentstation/playerregistry/pkg/logging"
)

// recordingChannel captures delivered alerts.
type recordingChannel struct {
	alerts []Alert
	err    error
}

func (r *recordingChannel) Notify(_ context.Context, alert Alert) error {
	r.alerts = append(r.alerts, alert)
	return r.err
}

func TestSend(t *testing.T) {
	ctx := context.Background()
	alert := Alert{Kind: KindStaleSource, Severity: SeverityWarning, Summary: "roster data is 5 days old"}

	t.Run("delivers to channel", func(t *testing.T) {
		ch := &recordingChannel{}
		Send(ctx, ch, alert)
		assert.Len(t, ch.alerts, 1)
		assert.Equal(t, KindStaleSource, ch.alerts[0].Kind)
	})

	t.Run("nil channel is a no-op", func(t *testing.T) {
		Send(ctx, nil, alert) // must not panic
	})

	t.Run("delivery failure is swallowed", func(t *testing.T) {
		ch := &recordingChannel{err: errors.New("webhook down")}
		Send(ctx, ch, alert) // must not panic or propagate
		assert.Len(t, ch.alerts, 1)
	})
}

func TestMulti(t *testing.T) {
	ctx := context.Background()
	alert := Alert{Kind: KindNameChange, Severity: SeverityUrgent, Summary: "possible name change"}

	t.Run("fans out to all channels", func(t *testing.T) {
		a, b := &recordingChannel{}, &recordingChannel{}
		m := Multi{a, b}
		assert.NoError(t, m.Notify(ctx, alert))
		assert.Len(t, a.alerts, 1)
		assert.Len(t, b.alerts, 1)
	})

	t.Run("one failing channel does not stop the rest", func(t *testing.T) {
		failing := &recordingChannel{err: errors.New("webhook down")}
		healthy := &recordingChannel{}
		m := Multi{failing, healthy}
		assert.NoError(t, m.Notify(ctx, alert))
		assert.Len(t, healthy.alerts, 1)
	})
}

func TestLogChannel(t *testing.T) {
	// The log channel never fails, whatever the severity, and every
	// alert lands on the structured log with its kind attached.
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)

	ch := LogChannel{}
	assert.NoError(t, ch.Notify(ctx, Alert{Kind: KindTemporalViolation, Severity: SeverityWarning, Summary: "x"}))
	assert.NoError(t, ch.Notify(ctx, Alert{Kind: KindSafetyViolation, Severity: SeverityUrgent, Summary: "y"}))

	assert.Len(t, tl.Lines(), 2)
	assert.True(t, tl.Contains(string(KindTemporalViolation)))
	assert.True(t, tl.Contains(string(KindSafetyViolation)))
}

func TestSendLogsDeliveryFailure(t *testing.T) {
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)

	ch := &recordingChannel{err: errors.New("webhook down")}
	Send(ctx, ch, Alert{Kind: KindNameChange, Severity: SeverityUrgent, Summary: "possible name change"})

	assert.True(t, tl.Contains("notification delivery failed"))
	assert.True(t, tl.Contains("webhook down"))
}
