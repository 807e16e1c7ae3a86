package librum

import (
	"log/slog"

	"github.com/librum-dev/librum/pkg/core"
	"github.com/librum-dev/librum/pkg/policy"
)

// options holds the internal configuration assembled by New.
type options struct {
	storage  core.Storage
	logger   *slog.Logger
	clock    core.Clock
	policies *policy.Resolver
	fine     policy.FinePolicy
}

// Option defines a functional option for configuring the app.
type Option func(*options)

func defaultOptions() *options {
	return &options{}
}

// WithStorage injects a custom storage engine; the configured backend
// is skipped.
func WithStorage(storage core.Storage) Option {
	return func(o *options) {
		o.storage = storage
	}
}

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithClock overrides the source of "today" (useful for testing).
func WithClock(clock core.Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithPolicies overrides the loan policy resolver.
func WithPolicies(policies *policy.Resolver) Option {
	return func(o *options) {
		o.policies = policies
	}
}

// WithFinePolicy overrides the fine policy.
func WithFinePolicy(fine policy.FinePolicy) Option {
	return func(o *options) {
		o.fine = fine
	}
}
