// Package report derives read-only summaries from the catalog and
// exports them as CSV.
package report

import (
	"context"
	"sort"

	"github.com/librum-dev/librum/pkg/core"
	"github.com/librum-dev/librum/pkg/library"
)

// OverdueItem is one row of the overdue report.
type OverdueItem struct {
	ISBN        string
	Title       string
	MemberID    string
	MemberName  string
	DueDate     core.Date
	DaysOverdue int
	FineCents   int64
}

// MemberLoanItem is one row of a member's active-loan report.
type MemberLoanItem struct {
	LoanID   string
	ISBN     string
	Title    string
	CopyID   string
	LoanDate core.Date
	DueDate  core.Date
}

// PopularBookItem is one row of the popular-books report.
type PopularBookItem struct {
	ISBN       string
	Title      string
	Author     string
	TotalLoans int
}

// Service builds reports on top of the domain engine. It only reads.
type Service struct {
	storage core.Storage
	library *library.Service
}

// NewService builds a report service.
func NewService(storage core.Storage, lib *library.Service) *Service {
	return &Service{storage: storage, library: lib}
}

// placeholder fills report cells whose referenced record is missing.
const placeholder = "-"

// Overdue lists every loan past its due date as of the given day,
// with the accrued fine. A zero date means today.
func (s *Service) Overdue(ctx context.Context, asOf core.Date) ([]OverdueItem, error) {
	if asOf.IsZero() {
		asOf = core.Today()
	}
	loans, err := s.library.OverdueLoans(ctx, asOf)
	if err != nil {
		return nil, err
	}
	items := make([]OverdueItem, 0, len(loans))
	for _, loan := range loans {
		item := OverdueItem{
			ISBN:        placeholder,
			Title:       placeholder,
			MemberID:    loan.MemberID,
			MemberName:  placeholder,
			DueDate:     loan.DueDate,
			DaysOverdue: loan.DueDate.DaysUntil(asOf),
			FineCents:   s.library.CalculateFine(loan, asOf),
		}
		if c, ok, err := s.storage.Copies().FindByID(ctx, loan.CopyID); err != nil {
			return nil, err
		} else if ok {
			if book, ok, err := s.storage.Books().FindByID(ctx, c.ISBN); err != nil {
				return nil, err
			} else if ok {
				item.ISBN = book.ISBN
				item.Title = book.Title
			}
		}
		if member, ok, err := s.storage.Members().FindByID(ctx, loan.MemberID); err != nil {
			return nil, err
		} else if ok {
			item.MemberName = member.Name
		}
		items = append(items, item)
	}
	return items, nil
}

// MemberLoans lists a member's active loans with their book details.
func (s *Service) MemberLoans(ctx context.Context, memberID string) ([]MemberLoanItem, error) {
	loans, err := s.library.LoansForMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	var items []MemberLoanItem
	for _, loan := range loans {
		if loan.Returned() {
			continue
		}
		item := MemberLoanItem{
			LoanID:   loan.LoanID,
			ISBN:     placeholder,
			Title:    placeholder,
			CopyID:   loan.CopyID,
			LoanDate: loan.LoanDate,
			DueDate:  loan.DueDate,
		}
		if c, ok, err := s.storage.Copies().FindByID(ctx, loan.CopyID); err != nil {
			return nil, err
		} else if ok {
			if book, ok, err := s.storage.Books().FindByID(ctx, c.ISBN); err != nil {
				return nil, err
			} else if ok {
				item.ISBN = book.ISBN
				item.Title = book.Title
			}
		}
		items = append(items, item)
	}
	return items, nil
}

// PopularBooks ranks the catalog by total loans, descending, capped
// at limit.
func (s *Service) PopularBooks(ctx context.Context, limit int) ([]PopularBookItem, error) {
	books, err := s.storage.Books().FindAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(books, func(i, j int) bool {
		return books[i].TotalLoans > books[j].TotalLoans
	})
	if limit >= 0 && limit < len(books) {
		books = books[:limit]
	}
	items := make([]PopularBookItem, 0, len(books))
	for _, book := range books {
		items = append(items, PopularBookItem{
			ISBN:       book.ISBN,
			Title:      book.Title,
			Author:     book.Author,
			TotalLoans: book.TotalLoans,
		})
	}
	return items, nil
}
