package librum

import (
	"log/slog"

	"github.com/librum-dev/librum/pkg/core"
	"github.com/librum-dev/librum/pkg/librum"
	"github.com/librum-dev/librum/pkg/policy"
)

// --- Types ---

// Book is a public alias for the catalog entry type.
type Book = core.Book

// Copy is a public alias for the circulating-unit type.
type Copy = core.Copy

// Member is a public alias for the borrower type.
type Member = core.Member

// Loan is a public alias for the loan record type.
type Loan = core.Loan

// Reservation is a public alias for the reservation type.
type Reservation = core.Reservation

// Date is a public alias for the calendar-date type.
type Date = core.Date

// MemberCategory selects which loan policy applies to a member.
type MemberCategory = core.MemberCategory

// CopyStatus tracks a copy through its lifecycle.
type CopyStatus = core.CopyStatus

// ReservationStatus tracks a reservation through the queue.
type ReservationStatus = core.ReservationStatus

// App is the assembled application.
type App = librum.App

// Config is the application configuration.
type Config = librum.Config

// Backend names a storage implementation.
type Backend = librum.Backend

const (
	// BackendFile is the JSON-file engine.
	BackendFile = librum.BackendFile
	// BackendSQLite delegates transactions to SQLite.
	BackendSQLite = librum.BackendSQLite
)

// --- Configuration ---

// Option defines a functional option for configuring the app.
type Option = librum.Option

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return librum.DefaultConfig()
}

// LoadConfig reads a YAML config file over the defaults, then applies
// LIBRUM_* environment overrides.
func LoadConfig(path string) (Config, error) {
	return librum.LoadConfig(path)
}

// New opens the configured storage backend and builds the services.
func New(cfg Config, opts ...Option) (*App, error) {
	return librum.New(cfg, opts...)
}

// WithStorage injects a custom storage engine.
func WithStorage(storage core.Storage) Option {
	return librum.WithStorage(storage)
}

// WithLogger sets the logger for the services.
func WithLogger(logger *slog.Logger) Option {
	return librum.WithLogger(logger)
}

// WithClock overrides the source of "today".
func WithClock(clock core.Clock) Option {
	return librum.WithClock(clock)
}

// WithPolicies overrides the loan policy resolver.
func WithPolicies(policies *policy.Resolver) Option {
	return librum.WithPolicies(policies)
}

// WithFinePolicy overrides the fine policy.
func WithFinePolicy(fine policy.FinePolicy) Option {
	return librum.WithFinePolicy(fine)
}
