package library

import (
	"context"

	"github.com/librum-dev/librum/pkg/core"
)

// ReturnResult carries the outcome of a return: the completed loan
// and, when a queued reservation was promoted, the reservation that
// became READY together with the copy now held for it.
type ReturnResult struct {
	Loan         core.Loan
	Promoted     *core.Reservation
	ReservedCopy *core.Copy
}

// Lend creates a loan for a member. Zero dates mean "today" for the
// loan date and "loan date plus the member's policy days" for the due
// date. When the member holds a READY reservation for the book, the
// loan consumes the copy held for that reservation and the
// reservation becomes FULFILLED. Otherwise any AVAILABLE copy is
// taken. The copy flip, the loan record, the book's loan counter, and
// the reservation transition commit atomically.
func (s *Service) Lend(ctx context.Context, key, memberID string, loanDate, dueDate core.Date) (core.Loan, error) {
	var created core.Loan
	err := s.storage.RunInTransaction(ctx, func(ctx context.Context, tx core.StoreSet) error {
		isbn, err := s.resolveISBN(ctx, tx, key)
		if err != nil {
			return err
		}
		cleanedMemberID, err := core.RequireNonBlank(memberID, "member ID")
		if err != nil {
			return err
		}
		member, found, err := tx.Members().FindByID(ctx, cleanedMemberID)
		if err != nil {
			return err
		}
		if !found {
			return core.NotFound("member", cleanedMemberID)
		}
		book, found, err := tx.Books().FindByID(ctx, isbn)
		if err != nil {
			return err
		}
		if !found {
			return core.NotFound("book", isbn)
		}

		pol := s.policies.ForMember(member)
		active, err := s.activeLoanCount(ctx, tx, cleanedMemberID)
		if err != nil {
			return err
		}
		if active >= pol.MaxLoans(member) {
			return core.Violationf("member has reached loan limit")
		}

		resolvedLoanDate := s.today(loanDate)
		resolvedDueDate := dueDate
		if !resolvedDueDate.IsZero() {
			if resolvedDueDate.Before(resolvedLoanDate) {
				return core.Invalidf("due date must be on or after loan date")
			}
		} else {
			resolvedDueDate = resolvedLoanDate.AddDays(pol.LoanDays(member))
		}

		reservations, err := tx.Reservations().FindAll(ctx)
		if err != nil {
			return err
		}
		for _, res := range reservations {
			if res.ISBN == isbn && res.Status == core.ReservationReady && res.MemberID == cleanedMemberID {
				reserved, ok, err := s.findFirstCopy(ctx, tx, isbn, core.CopyReserved)
				if err != nil {
					return err
				}
				if !ok {
					return core.Violationf("reserved copy not found")
				}
				created, err = s.finalizeLoan(ctx, tx, book, member, reserved, &res, resolvedLoanDate, resolvedDueDate)
				return err
			}
		}

		available, ok, err := s.findFirstCopy(ctx, tx, isbn, core.CopyAvailable)
		if err != nil {
			return err
		}
		if !ok {
			return core.Violationf("no available copy, consider reservation")
		}
		created, err = s.finalizeLoan(ctx, tx, book, member, available, nil, resolvedLoanDate, resolvedDueDate)
		return err
	})
	if err != nil {
		return core.Loan{}, err
	}
	return created, nil
}

// finalizeLoan performs the shared tail of a lend: copy to LOANED,
// new loan record, counter bump, and the reservation to FULFILLED
// when one was consumed.
func (s *Service) finalizeLoan(ctx context.Context, tx core.StoreSet, book core.Book, member core.Member, copyRec core.Copy, reservation *core.Reservation, loanDate, dueDate core.Date) (core.Loan, error) {
	copyRec.Status = core.CopyLoaned
	if err := tx.Copies().Save(ctx, copyRec); err != nil {
		return core.Loan{}, err
	}
	loan := core.Loan{
		LoanID:   core.NewID(core.LoanIDPrefix),
		CopyID:   copyRec.CopyID,
		MemberID: member.MemberID,
		LoanDate: loanDate,
		DueDate:  dueDate,
	}
	if err := tx.Loans().Save(ctx, loan); err != nil {
		return core.Loan{}, err
	}
	book.TotalLoans++
	if err := tx.Books().Save(ctx, book); err != nil {
		return core.Loan{}, err
	}
	if reservation != nil {
		res := *reservation
		res.Status = core.ReservationFulfilled
		if err := tx.Reservations().Save(ctx, res); err != nil {
			return core.Loan{}, err
		}
	}
	s.logger.Info("loan created", "loan", loan.LoanID, "copy", loan.CopyID, "member", loan.MemberID)
	return loan, nil
}

// Return completes the active loan on a copy and stamps today as the
// return date. The copy goes back to AVAILABLE unless a queued
// reservation is promoted, in which case it is held as RESERVED.
func (s *Service) Return(ctx context.Context, copyID string) (ReturnResult, error) {
	var result ReturnResult
	err := s.storage.RunInTransaction(ctx, func(ctx context.Context, tx core.StoreSet) error {
		cleaned, err := core.RequireNonBlank(copyID, "copy ID")
		if err != nil {
			return err
		}
		copyRec, found, err := tx.Copies().FindByID(ctx, cleaned)
		if err != nil {
			return err
		}
		if !found {
			return core.NotFound("copy", cleaned)
		}
		loans, err := tx.Loans().FindAll(ctx)
		if err != nil {
			return err
		}
		var loan core.Loan
		foundLoan := false
		for _, existing := range loans {
			if existing.CopyID == cleaned && !existing.Returned() {
				loan = existing
				foundLoan = true
				break
			}
		}
		if !foundLoan {
			return core.Violationf("active loan not found for copy")
		}
		loan.ReturnDate = s.clock.Now()
		if err := tx.Loans().Save(ctx, loan); err != nil {
			return err
		}

		copyRec.Status = core.CopyAvailable
		next, promoted, err := s.promoteNext(ctx, tx, copyRec.ISBN)
		if err != nil {
			return err
		}
		if promoted {
			copyRec.Status = core.CopyReserved
		}
		if err := tx.Copies().Save(ctx, copyRec); err != nil {
			return err
		}
		result = ReturnResult{Loan: loan}
		if promoted {
			result.Promoted = &next
			result.ReservedCopy = &copyRec
		}
		return nil
	})
	if err != nil {
		return ReturnResult{}, err
	}
	return result, nil
}

// ActiveLoans returns every loan without a return date.
func (s *Service) ActiveLoans(ctx context.Context) ([]core.Loan, error) {
	loans, err := s.storage.Loans().FindAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []core.Loan
	for _, loan := range loans {
		if !loan.Returned() {
			out = append(out, loan)
		}
	}
	return out, nil
}

// OverdueLoans returns active loans whose due date is before asOf. A
// zero asOf means today.
func (s *Service) OverdueLoans(ctx context.Context, asOf core.Date) ([]core.Loan, error) {
	date := s.today(asOf)
	loans, err := s.storage.Loans().FindAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []core.Loan
	for _, loan := range loans {
		if loan.Overdue(date) {
			out = append(out, loan)
		}
	}
	return out, nil
}

// LoansForMember returns the full loan history of a member.
func (s *Service) LoansForMember(ctx context.Context, memberID string) ([]core.Loan, error) {
	cleaned, err := core.RequireNonBlank(memberID, "member ID")
	if err != nil {
		return nil, err
	}
	loans, err := s.storage.Loans().FindAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []core.Loan
	for _, loan := range loans {
		if loan.MemberID == cleaned {
			out = append(out, loan)
		}
	}
	return out, nil
}

// SuggestDueDate computes loanDate plus the member's policy loan
// days. A zero loanDate means today.
func (s *Service) SuggestDueDate(ctx context.Context, memberID string, loanDate core.Date) (core.Date, error) {
	cleaned, err := core.RequireNonBlank(memberID, "member ID")
	if err != nil {
		return core.Date{}, err
	}
	member, found, err := s.storage.Members().FindByID(ctx, cleaned)
	if err != nil {
		return core.Date{}, err
	}
	if !found {
		return core.Date{}, core.NotFound("member", cleaned)
	}
	pol := s.policies.ForMember(member)
	return s.today(loanDate).AddDays(pol.LoanDays(member)), nil
}

// UpdateLoanDate moves a loan's start date and shifts the due date to
// keep the original loan span. When the span cannot be derived, the
// member's policy days are applied instead.
func (s *Service) UpdateLoanDate(ctx context.Context, loanID string, newLoanDate core.Date) (core.Loan, error) {
	cleaned, err := core.RequireNonBlank(loanID, "loan ID")
	if err != nil {
		return core.Loan{}, err
	}
	if newLoanDate.IsZero() {
		return core.Loan{}, core.Invalidf("loan date is required")
	}
	var updated core.Loan
	err = s.storage.RunInTransaction(ctx, func(ctx context.Context, tx core.StoreSet) error {
		loan, found, err := tx.Loans().FindByID(ctx, cleaned)
		if err != nil {
			return err
		}
		if !found {
			return core.NotFound("loan", cleaned)
		}
		oldLoanDate := loan.LoanDate
		oldDueDate := loan.DueDate
		loan.LoanDate = newLoanDate
		if due, ok, err := s.shiftedDueDate(ctx, tx, loan, oldLoanDate, oldDueDate); err != nil {
			return err
		} else if ok {
			loan.DueDate = due
		}
		if err := tx.Loans().Save(ctx, loan); err != nil {
			return err
		}
		updated = loan
		return nil
	})
	if err != nil {
		return core.Loan{}, err
	}
	return updated, nil
}

func (s *Service) shiftedDueDate(ctx context.Context, tx core.StoreSet, loan core.Loan, oldLoanDate, oldDueDate core.Date) (core.Date, bool, error) {
	if !oldLoanDate.IsZero() && !oldDueDate.IsZero() {
		if days := oldLoanDate.DaysUntil(oldDueDate); days > 0 {
			return loan.LoanDate.AddDays(days), true, nil
		}
	}
	member, found, err := tx.Members().FindByID(ctx, loan.MemberID)
	if err != nil {
		return core.Date{}, false, err
	}
	if found {
		pol := s.policies.ForMember(member)
		return loan.LoanDate.AddDays(pol.LoanDays(member)), true, nil
	}
	return oldDueDate, !oldDueDate.IsZero(), nil
}

// UpdateLoanDueDate sets a new due date on a loan. The due date may
// not precede the loan date.
func (s *Service) UpdateLoanDueDate(ctx context.Context, loanID string, newDueDate core.Date) (core.Loan, error) {
	cleaned, err := core.RequireNonBlank(loanID, "loan ID")
	if err != nil {
		return core.Loan{}, err
	}
	if newDueDate.IsZero() {
		return core.Loan{}, core.Invalidf("due date is required")
	}
	var updated core.Loan
	err = s.storage.RunInTransaction(ctx, func(ctx context.Context, tx core.StoreSet) error {
		loan, found, err := tx.Loans().FindByID(ctx, cleaned)
		if err != nil {
			return err
		}
		if !found {
			return core.NotFound("loan", cleaned)
		}
		if !loan.LoanDate.IsZero() && newDueDate.Before(loan.LoanDate) {
			return core.Invalidf("due date must be on or after loan date")
		}
		loan.DueDate = newDueDate
		if err := tx.Loans().Save(ctx, loan); err != nil {
			return err
		}
		updated = loan
		return nil
	})
	if err != nil {
		return core.Loan{}, err
	}
	return updated, nil
}

// CalculateFine computes the fine owed on a loan as of the given
// date. A zero date means today.
func (s *Service) CalculateFine(loan core.Loan, asOf core.Date) int64 {
	return s.fine.FineCents(loan, s.today(asOf))
}
