package report_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/librum-dev/librum/pkg/adapters/fs"
	"github.com/librum-dev/librum/pkg/core"
	"github.com/librum-dev/librum/pkg/library"
	"github.com/librum-dev/librum/pkg/policy"
	"github.com/librum-dev/librum/pkg/report"
)

var reportDay = core.NewDate(2024, time.June, 1)

func setup(t *testing.T) (*report.Service, *library.Service) {
	t.Helper()
	engine, err := fs.Open(fs.Config{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("open engine: %v", err)
	}
	lib := library.New(engine,
		library.WithClock(core.FixedClock{Date: reportDay}),
		library.WithFinePolicy(policy.PerDay{CentsPerDay: 50}),
	)
	return report.NewService(engine, lib), lib
}

func seedLoan(t *testing.T, lib *library.Service, isbn, memberID string, loanDate, dueDate core.Date) core.Loan {
	t.Helper()
	if _, err := lib.AddBookWithCopies(context.Background(), core.Book{
		ISBN: isbn, Title: "Title " + isbn, Author: "Author", Year: 2020, Genre: "G",
	}, 1); err != nil {
		t.Fatalf("add book: %v", err)
	}
	if _, err := lib.AddMember(context.Background(), core.Member{
		MemberID: memberID, Name: "Name " + memberID, Email: memberID + "@example.com", Category: core.MemberAdult,
	}); err != nil && !core.IsRuleViolation(err) {
		t.Fatalf("add member: %v", err)
	}
	loan, err := lib.Lend(context.Background(), isbn, memberID, loanDate, dueDate)
	if err != nil {
		t.Fatalf("lend: %v", err)
	}
	return loan
}

func TestOverdue(t *testing.T) {
	reports, lib := setup(t)
	ctx := context.Background()

	// One loan 5 days overdue, one still current.
	seedLoan(t, lib, "9780000000001", "MEM-001", reportDay.AddDays(-30), reportDay.AddDays(-5))
	seedLoan(t, lib, "9780000000002", "MEM-001", reportDay, reportDay.AddDays(21))

	items, err := reports.Overdue(ctx, reportDay)
	if err != nil {
		t.Fatalf("overdue: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 overdue item, got %d", len(items))
	}
	item := items[0]
	if item.ISBN != "9780000000001" || item.Title != "Title 9780000000001" {
		t.Errorf("book fields wrong: %+v", item)
	}
	if item.MemberName != "Name MEM-001" {
		t.Errorf("member name wrong: %s", item.MemberName)
	}
	if item.DaysOverdue != 5 {
		t.Errorf("expected 5 days overdue, got %d", item.DaysOverdue)
	}
	if item.FineCents != 250 {
		t.Errorf("expected 250 cents fine, got %d", item.FineCents)
	}
}

func TestMemberLoansSkipsReturned(t *testing.T) {
	reports, lib := setup(t)
	ctx := context.Background()

	var zero core.Date
	active := seedLoan(t, lib, "9780000000001", "MEM-001", zero, zero)
	returned := seedLoan(t, lib, "9780000000002", "MEM-001", zero, zero)
	if _, err := lib.Return(ctx, returned.CopyID); err != nil {
		t.Fatalf("return: %v", err)
	}

	items, err := reports.MemberLoans(ctx, "MEM-001")
	if err != nil {
		t.Fatalf("member loans: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 active loan, got %d", len(items))
	}
	if items[0].LoanID != active.LoanID {
		t.Errorf("wrong loan listed: %s", items[0].LoanID)
	}
}

func TestPopularBooks(t *testing.T) {
	reports, lib := setup(t)
	ctx := context.Background()

	var zero core.Date
	// Two loans of the first book, one of the second, none of the third.
	loan := seedLoan(t, lib, "9780000000001", "MEM-001", zero, zero)
	lib.Return(ctx, loan.CopyID)
	lib.Lend(ctx, "9780000000001", "MEM-001", zero, zero)
	seedLoan(t, lib, "9780000000002", "MEM-002", zero, zero)
	lib.AddBookWithCopies(ctx, core.Book{ISBN: "9780000000003", Title: "Idle", Author: "A", Year: 2020, Genre: "G"}, 1)

	items, err := reports.PopularBooks(ctx, 2)
	if err != nil {
		t.Fatalf("popular: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected limit of 2, got %d", len(items))
	}
	if items[0].ISBN != "9780000000001" || items[0].TotalLoans != 2 {
		t.Errorf("expected most-loaned first, got %+v", items[0])
	}
	if items[1].ISBN != "9780000000002" {
		t.Errorf("expected second-most next, got %+v", items[1])
	}
}

func TestExportCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "overdue.csv")
	headers, rows := report.OverdueCSV([]report.OverdueItem{
		{
			ISBN: "9780000000001", Title: "Northern Skies", MemberID: "MEM-001",
			MemberName: "Dana Reyes", DueDate: core.NewDate(2024, time.May, 27),
			DaysOverdue: 5, FineCents: 250,
		},
	})
	if err := report.ExportCSV(path, headers, rows); err != nil {
		t.Fatalf("export: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus one row, got %d lines", len(lines))
	}
	if lines[0] != "isbn,title,memberId,memberName,dueDate,daysOverdue,fineCents" {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if lines[1] != "9780000000001,Northern Skies,MEM-001,Dana Reyes,2024-05-27,5,250" {
		t.Errorf("unexpected row: %s", lines[1])
	}
}
