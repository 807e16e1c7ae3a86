package policy

import "github.com/librum-dev/librum/pkg/core"

// FinePolicy computes the fine accrued on a loan as of a given day.
type FinePolicy interface {
	FineCents(loan core.Loan, asOf core.Date) int64
}

// PerDay charges a flat amount for every day past the due date.
// On or before the due date the fine is zero.
type PerDay struct {
	CentsPerDay int64
}

// FineCents implements FinePolicy.
func (p PerDay) FineCents(loan core.Loan, asOf core.Date) int64 {
	if loan.DueDate.IsZero() || !asOf.After(loan.DueDate) {
		return 0
	}
	return int64(loan.DueDate.DaysUntil(asOf)) * p.CentsPerDay
}

// None never charges fines.
type None struct{}

// FineCents implements FinePolicy.
func (None) FineCents(core.Loan, core.Date) int64 { return 0 }
