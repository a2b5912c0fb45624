package aggregator

import (
	"time"

	"github.com/agentstation/playerregistry/pkg/authority"
	"github.com/agentstation/playerregistry/pkg/errors"
	"github.com/agentstation/playerregistry/pkg/guard"
	"github.com/agentstation/playerregistry/pkg/identity"
	"github.com/agentstation/playerregistry/pkg/investigate"
	"github.com/agentstation/playerregistry/pkg/notify"
	"github.com/agentstation/playerregistry/pkg/repository"
)

// options configures an aggregator. Every capability is an injected
// dependency; the defaults wire everything to the provided repository.
type options struct {
	repo            repository.Repository
	resolver        identity.Resolver
	investigator    investigate.Investigator
	authorities     authority.Resolver
	temporal        *guard.Temporal
	precedence      *guard.Precedence
	notifier        notify.Channel
	weights         Weights
	stalenessDays   int
	unresolvedAlert int
	now             func() time.Time
}

// Option configures an aggregator.
type Option func(*options) error

// WithResolver overrides the identity resolver.
func WithResolver(resolver identity.Resolver) Option {
	return func(o *options) error {
		if resolver == nil {
			return &errors.ValidationError{Field: "resolver", Message: "cannot be nil"}
		}
		o.resolver = resolver
		return nil
	}
}

// WithInvestigator overrides the name-change investigator.
func WithInvestigator(inv investigate.Investigator) Option {
	return func(o *options) error {
		if inv == nil {
			return &errors.ValidationError{Field: "investigator", Message: "cannot be nil"}
		}
		o.investigator = inv
		return nil
	}
}

// WithAuthorities overrides the field authority resolver.
func WithAuthorities(res authority.Resolver) Option {
	return func(o *options) error {
		if res == nil {
			return &errors.ValidationError{Field: "authorities", Message: "cannot be nil"}
		}
		o.authorities = res
		return nil
	}
}

// WithNotifier sets the notification channel.
func WithNotifier(ch notify.Channel) Option {
	return func(o *options) error {
		if ch == nil {
			return &errors.ValidationError{Field: "notifier", Message: "cannot be nil"}
		}
		o.notifier = ch
		return nil
	}
}

// WithWeights sets the source weighting configuration.
func WithWeights(w Weights) Option {
	return func(o *options) error {
		if err := w.Validate(); err != nil {
			return err
		}
		o.weights = w
		return nil
	}
}

// WithStalenessThreshold sets how old upstream data may be, in days,
// before validation mode degrades.
func WithStalenessThreshold(days int) Option {
	return func(o *options) error {
		if days < 1 {
			return &errors.ValidationError{Field: "stalenessDays", Value: days, Message: "must be at least 1"}
		}
		o.stalenessDays = days
		return nil
	}
}

// WithUnresolvedAlertThreshold sets the unresolved-player count that
// triggers an operator alert.
func WithUnresolvedAlertThreshold(n int) Option {
	return func(o *options) error {
		if n < 1 {
			return &errors.ValidationError{Field: "unresolvedAlert", Value: n, Message: "must be at least 1"}
		}
		o.unresolvedAlert = n
		return nil
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) error {
		if now == nil {
			return &errors.ValidationError{Field: "now", Message: "cannot be nil"}
		}
		o.now = now
		return nil
	}
}

// newOptions builds options for a repository with defaults wired in.
func newOptions(repo repository.Repository, opts ...Option) (*options, error) {
	if repo == nil {
		return nil, &errors.ValidationError{Field: "repository", Message: "cannot be nil"}
	}

	o := &options{
		repo:            repo,
		authorities:     authority.New(),
		notifier:        notify.LogChannel{},
		weights:         DefaultWeights(),
		stalenessDays:   3,
		unresolvedAlert: 25,
		now:             time.Now,
	}

	var err error
	if o.resolver, err = identity.NewResolver(repo); err != nil {
		return nil, err
	}
	if o.investigator, err = investigate.New(repo); err != nil {
		return nil, err
	}
	if o.temporal, err = guard.NewTemporal(repo); err != nil {
		return nil, err
	}
	if o.precedence, err = guard.NewPrecedence(repo); err != nil {
		return nil, err
	}

	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}
