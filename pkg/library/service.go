// Package library is the domain engine: it orchestrates multi-store
// operations inside transaction boundaries and enforces the catalog,
// loan, and reservation invariants.
package library

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/librum-dev/librum/pkg/core"
	"github.com/librum-dev/librum/pkg/policy"
)

// Service exposes the catalog operations consumed by the CLI and
// reports. Every multi-entity mutation runs inside one storage
// transaction, so a caller never observes partial effects.
type Service struct {
	storage  core.Storage
	policies *policy.Resolver
	fine     policy.FinePolicy
	clock    core.Clock
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithPolicies overrides the loan policy resolver.
func WithPolicies(resolver *policy.Resolver) Option {
	return func(s *Service) { s.policies = resolver }
}

// WithFinePolicy overrides the fine policy.
func WithFinePolicy(fine policy.FinePolicy) Option {
	return func(s *Service) { s.fine = fine }
}

// WithClock overrides the source of "today".
func WithClock(clock core.Clock) Option {
	return func(s *Service) { s.clock = clock }
}

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// New builds a Service on top of a storage engine. Defaults: standard
// loan policies, a 50 cents/day fine, and the system clock.
func New(storage core.Storage, opts ...Option) *Service {
	s := &Service{
		storage:  storage,
		policies: policy.NewResolver(),
		fine:     policy.PerDay{CentsPerDay: 50},
		clock:    core.SystemClock{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// resolveISBN turns an ISBN (with or without dashes) or a book alias
// into the canonical ISBN of an existing book.
func (s *Service) resolveISBN(ctx context.Context, stores core.StoreSet, key string) (string, error) {
	trimmed, err := core.RequireNonBlank(key, "ISBN or book ID")
	if err != nil {
		return "", err
	}
	if core.LooksLikeISBN(trimmed) {
		normalized, err := core.ValidateISBN(trimmed)
		if err != nil {
			return "", err
		}
		exists, err := stores.Books().ExistsByID(ctx, normalized)
		if err != nil {
			return "", err
		}
		if exists {
			return normalized, nil
		}
	}
	books, err := stores.Books().FindAll(ctx)
	if err != nil {
		return "", err
	}
	for _, book := range books {
		if book.BookID != "" && strings.EqualFold(book.BookID, trimmed) {
			return book.ISBN, nil
		}
	}
	return "", core.NotFound("book", trimmed)
}

// findFirstCopy returns the first copy of the book in the given
// status, in store order. Store order is deterministic, which is all
// the tie-break between equivalent copies promises.
func (s *Service) findFirstCopy(ctx context.Context, stores core.StoreSet, isbn string, status core.CopyStatus) (core.Copy, bool, error) {
	copies, err := stores.Copies().FindAll(ctx)
	if err != nil {
		return core.Copy{}, false, err
	}
	for _, c := range copies {
		if c.ISBN == isbn && c.Status == status {
			return c, true, nil
		}
	}
	return core.Copy{}, false, nil
}

func (s *Service) activeLoanCount(ctx context.Context, stores core.StoreSet, memberID string) (int, error) {
	loans, err := stores.Loans().FindAll(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, loan := range loans {
		if loan.MemberID == memberID && !loan.Returned() {
			count++
		}
	}
	return count, nil
}

// today resolves an optional caller-supplied date against the clock.
func (s *Service) today(override core.Date) core.Date {
	if !override.IsZero() {
		return override
	}
	return s.clock.Now()
}
