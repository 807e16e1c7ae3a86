package library_test

import (
	"context"
	"testing"
	"time"

	"github.com/librum-dev/librum/pkg/adapters/fs"
	"github.com/librum-dev/librum/pkg/core"
	"github.com/librum-dev/librum/pkg/library"
	"github.com/librum-dev/librum/pkg/policy"
)

var testDay = core.NewDate(2024, time.June, 1)

// setupService builds a service over a fresh file engine with a fixed
// clock so due dates are predictable.
func setupService(t *testing.T) (*library.Service, *fs.Engine) {
	t.Helper()
	engine, err := fs.Open(fs.Config{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("open engine: %v", err)
	}
	svc := library.New(engine, library.WithClock(core.FixedClock{Date: testDay}))
	return svc, engine
}

func addBook(t *testing.T, svc *library.Service, isbn, title string, copies int) core.Book {
	t.Helper()
	book, err := svc.AddBookWithCopies(context.Background(), core.Book{
		ISBN:   isbn,
		Title:  title,
		Author: "Test Author",
		Year:   2020,
		Genre:  "Testing",
	}, copies)
	if err != nil {
		t.Fatalf("add book %s: %v", isbn, err)
	}
	return book
}

func addMember(t *testing.T, svc *library.Service, id string, category core.MemberCategory) core.Member {
	t.Helper()
	member, err := svc.AddMember(context.Background(), core.Member{
		MemberID: id,
		Name:     "Member " + id,
		Email:    id + "@example.com",
		Category: category,
	})
	if err != nil {
		t.Fatalf("add member %s: %v", id, err)
	}
	return member
}

func TestAddBook(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	t.Run("Generates Alias", func(t *testing.T) {
		book := addBook(t, svc, "9780000000001", "Northern Skies", 1)
		if book.BookID == "" {
			t.Error("expected generated alias")
		}
	})

	t.Run("Rejects Duplicate ISBN", func(t *testing.T) {
		_, err := svc.AddBook(ctx, core.Book{
			ISBN: "9780000000001", Title: "Again", Author: "A", Year: 2000, Genre: "G",
		})
		if !core.IsRuleViolation(err) {
			t.Errorf("expected RuleViolationError, got %v", err)
		}
	})

	t.Run("Rejects Bad Year", func(t *testing.T) {
		_, err := svc.AddBook(ctx, core.Book{
			ISBN: "9780000000099", Title: "T", Author: "A", Year: 0, Genre: "G",
		})
		if !core.IsValidation(err) {
			t.Errorf("expected ValidationError, got %v", err)
		}
	})

	t.Run("Negative Copies Rejected", func(t *testing.T) {
		_, err := svc.AddBookWithCopies(ctx, core.Book{
			ISBN: "9780000000098", Title: "T", Author: "A", Year: 2000, Genre: "G",
		}, -1)
		if !core.IsValidation(err) {
			t.Errorf("expected ValidationError, got %v", err)
		}
	})
}

func TestResolveByAlias(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	book := addBook(t, svc, "9780000000001", "Northern Skies", 1)

	got, err := svc.GetBook(ctx, book.BookID)
	if err != nil {
		t.Fatalf("lookup by alias failed: %v", err)
	}
	if got.ISBN != book.ISBN {
		t.Errorf("alias resolved to wrong book: %s", got.ISBN)
	}

	if _, err := svc.GetBook(ctx, "BOOK-NOPE"); !core.IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestLend(t *testing.T) {
	var zero core.Date

	t.Run("Happy Path Uses Policy Due Date", func(t *testing.T) {
		svc, _ := setupService(t)
		ctx := context.Background()
		addBook(t, svc, "9780000000001", "Northern Skies", 1)
		member := addMember(t, svc, "MEM-001", core.MemberStudent)

		loan, err := svc.Lend(ctx, "9780000000001", member.MemberID, zero, zero)
		if err != nil {
			t.Fatalf("lend failed: %v", err)
		}
		if !loan.LoanDate.Equal(testDay) {
			t.Errorf("expected loan date %s, got %s", testDay, loan.LoanDate)
		}
		if !loan.DueDate.Equal(testDay.AddDays(30)) {
			t.Errorf("expected student due date +30d, got %s", loan.DueDate)
		}

		copies, _ := svc.CopiesByISBN(ctx, "9780000000001")
		if copies[0].Status != core.CopyLoaned {
			t.Errorf("expected copy LOANED, got %s", copies[0].Status)
		}
		book, _ := svc.GetBook(ctx, "9780000000001")
		if book.TotalLoans != 1 {
			t.Errorf("expected loan counter 1, got %d", book.TotalLoans)
		}
	})

	t.Run("Due Date Before Loan Date Rejected", func(t *testing.T) {
		svc, _ := setupService(t)
		ctx := context.Background()
		addBook(t, svc, "9780000000001", "Northern Skies", 1)
		member := addMember(t, svc, "MEM-001", core.MemberAdult)

		_, err := svc.Lend(ctx, "9780000000001", member.MemberID, testDay, testDay.AddDays(-1))
		if !core.IsValidation(err) {
			t.Errorf("expected ValidationError, got %v", err)
		}
	})

	t.Run("No Available Copy Suggests Reservation", func(t *testing.T) {
		svc, _ := setupService(t)
		ctx := context.Background()
		addBook(t, svc, "9780000000001", "Northern Skies", 1)
		m1 := addMember(t, svc, "MEM-001", core.MemberAdult)
		m2 := addMember(t, svc, "MEM-002", core.MemberAdult)

		if _, err := svc.Lend(ctx, "9780000000001", m1.MemberID, zero, zero); err != nil {
			t.Fatalf("first lend failed: %v", err)
		}
		_, err := svc.Lend(ctx, "9780000000001", m2.MemberID, zero, zero)
		if !core.IsRuleViolation(err) {
			t.Errorf("expected RuleViolationError, got %v", err)
		}
	})

	t.Run("Adult Loan Limit Enforced", func(t *testing.T) {
		// An adult holding 3 active loans is rejected on the 4th.
		svc, _ := setupService(t)
		ctx := context.Background()
		member := addMember(t, svc, "MEM-001", core.MemberAdult)
		isbns := []string{"9780000000001", "9780000000002", "9780000000003", "9780000000004"}
		for i, isbn := range isbns {
			addBook(t, svc, isbn, "Book", 1)
			_, err := svc.Lend(ctx, isbn, member.MemberID, zero, zero)
			if i < 3 && err != nil {
				t.Fatalf("lend %d failed: %v", i+1, err)
			}
			if i == 3 && !core.IsRuleViolation(err) {
				t.Errorf("expected RuleViolationError on 4th lend, got %v", err)
			}
		}
	})
}

func TestReturnAndPromotion(t *testing.T) {
	// One copy: M1 borrows, M2 reserves, M1 returns (copy goes
	// RESERVED, reservation READY), M2 borrows and must consume the
	// RESERVED copy, fulfilling the reservation.
	svc, _ := setupService(t)
	ctx := context.Background()
	var zero core.Date

	addBook(t, svc, "9780000000001", "Northern Skies", 1)
	m1 := addMember(t, svc, "MEM-001", core.MemberAdult)
	m2 := addMember(t, svc, "MEM-002", core.MemberAdult)

	loan, err := svc.Lend(ctx, "9780000000001", m1.MemberID, zero, zero)
	if err != nil {
		t.Fatalf("lend failed: %v", err)
	}

	res, err := svc.Reserve(ctx, "9780000000001", m2.MemberID)
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if res.Status != core.ReservationQueued {
		t.Fatalf("expected QUEUED, got %s", res.Status)
	}

	result, err := svc.Return(ctx, loan.CopyID)
	if err != nil {
		t.Fatalf("return failed: %v", err)
	}
	if !result.Loan.Returned() {
		t.Error("expected return date stamped")
	}
	if result.Promoted == nil || result.Promoted.Status != core.ReservationReady {
		t.Fatalf("expected promoted READY reservation, got %+v", result.Promoted)
	}
	if result.ReservedCopy == nil || result.ReservedCopy.Status != core.CopyReserved {
		t.Fatalf("expected RESERVED copy, got %+v", result.ReservedCopy)
	}

	loan2, err := svc.Lend(ctx, "9780000000001", m2.MemberID, zero, zero)
	if err != nil {
		t.Fatalf("reserved lend failed: %v", err)
	}
	if loan2.CopyID != loan.CopyID {
		t.Errorf("expected the reserved copy to be consumed, got %s", loan2.CopyID)
	}
	reservations, _ := svc.ReservationsByISBN(ctx, "9780000000001")
	if len(reservations) != 1 || reservations[0].Status != core.ReservationFulfilled {
		t.Errorf("expected FULFILLED reservation, got %+v", reservations)
	}
}

func TestReturnWithoutActiveLoan(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	addBook(t, svc, "9780000000001", "Northern Skies", 1)
	copies, _ := svc.CopiesByISBN(ctx, "9780000000001")

	_, err := svc.Return(ctx, copies[0].CopyID)
	if !core.IsRuleViolation(err) {
		t.Errorf("expected RuleViolationError, got %v", err)
	}
}

func TestReserve(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	var zero core.Date

	addBook(t, svc, "9780000000001", "Northern Skies", 1)
	m1 := addMember(t, svc, "MEM-001", core.MemberAdult)
	m2 := addMember(t, svc, "MEM-002", core.MemberAdult)

	t.Run("Rejected While Copy Available", func(t *testing.T) {
		_, err := svc.Reserve(ctx, "9780000000001", m2.MemberID)
		if !core.IsRuleViolation(err) {
			t.Errorf("expected RuleViolationError, got %v", err)
		}
	})

	if _, err := svc.Lend(ctx, "9780000000001", m1.MemberID, zero, zero); err != nil {
		t.Fatalf("lend failed: %v", err)
	}

	t.Run("Queues When Fully Checked Out", func(t *testing.T) {
		if _, err := svc.Reserve(ctx, "9780000000001", m2.MemberID); err != nil {
			t.Fatalf("reserve failed: %v", err)
		}
	})

	t.Run("Duplicate Active Reservation Rejected", func(t *testing.T) {
		_, err := svc.Reserve(ctx, "9780000000001", m2.MemberID)
		if !core.IsRuleViolation(err) {
			t.Errorf("expected RuleViolationError, got %v", err)
		}
	})
}

func TestPromotionOrderIsCreationAscending(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	var zero core.Date

	addBook(t, svc, "9780000000001", "Northern Skies", 1)
	m1 := addMember(t, svc, "MEM-001", core.MemberAdult)
	m2 := addMember(t, svc, "MEM-002", core.MemberAdult)
	m3 := addMember(t, svc, "MEM-003", core.MemberAdult)

	loan, _ := svc.Lend(ctx, "9780000000001", m1.MemberID, zero, zero)
	first, _ := svc.Reserve(ctx, "9780000000001", m2.MemberID)
	if _, err := svc.Reserve(ctx, "9780000000001", m3.MemberID); err != nil {
		t.Fatalf("second reserve failed: %v", err)
	}

	result, err := svc.Return(ctx, loan.CopyID)
	if err != nil {
		t.Fatalf("return failed: %v", err)
	}
	if result.Promoted.ReservationID != first.ReservationID {
		t.Errorf("expected earliest reservation promoted, got %s", result.Promoted.ReservationID)
	}
}

func TestUpdateReservation(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	var zero core.Date

	addBook(t, svc, "9780000000001", "Northern Skies", 1)
	m1 := addMember(t, svc, "MEM-001", core.MemberAdult)
	m2 := addMember(t, svc, "MEM-002", core.MemberAdult)
	m3 := addMember(t, svc, "MEM-003", core.MemberAdult)

	loan, _ := svc.Lend(ctx, "9780000000001", m1.MemberID, zero, zero)
	res2, _ := svc.Reserve(ctx, "9780000000001", m2.MemberID)
	res3, _ := svc.Reserve(ctx, "9780000000001", m3.MemberID)
	if _, err := svc.Return(ctx, loan.CopyID); err != nil { // promotes res2 to READY
		t.Fatalf("return failed: %v", err)
	}

	t.Run("Ready Back To Queued Forbidden", func(t *testing.T) {
		_, err := svc.UpdateReservation(ctx, res2.ReservationID, "", core.ReservationQueued)
		if !core.IsRuleViolation(err) {
			t.Errorf("expected RuleViolationError, got %v", err)
		}
	})

	t.Run("Second Ready Forbidden", func(t *testing.T) {
		_, err := svc.UpdateReservation(ctx, res3.ReservationID, "", core.ReservationReady)
		if !core.IsRuleViolation(err) {
			t.Errorf("expected RuleViolationError, got %v", err)
		}
	})

	t.Run("Leaving Ready Hands Copy To Next In Queue", func(t *testing.T) {
		updated, err := svc.UpdateReservation(ctx, res2.ReservationID, "", core.ReservationFulfilled)
		if err != nil {
			t.Fatalf("update failed: %v", err)
		}
		if updated.Status != core.ReservationFulfilled {
			t.Errorf("expected FULFILLED, got %s", updated.Status)
		}
		reservations, _ := svc.ReservationsByISBN(ctx, "9780000000001")
		var next core.Reservation
		for _, r := range reservations {
			if r.ReservationID == res3.ReservationID {
				next = r
			}
		}
		if next.Status != core.ReservationReady {
			t.Errorf("expected next reservation READY, got %s", next.Status)
		}
		copies, _ := svc.CopiesByISBN(ctx, "9780000000001")
		if copies[0].Status != core.CopyReserved {
			t.Errorf("expected copy still RESERVED for next, got %s", copies[0].Status)
		}
	})
}

func TestRemoveReservationReleasesCopy(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	var zero core.Date

	addBook(t, svc, "9780000000001", "Northern Skies", 1)
	m1 := addMember(t, svc, "MEM-001", core.MemberAdult)
	m2 := addMember(t, svc, "MEM-002", core.MemberAdult)

	loan, _ := svc.Lend(ctx, "9780000000001", m1.MemberID, zero, zero)
	res, _ := svc.Reserve(ctx, "9780000000001", m2.MemberID)
	if _, err := svc.Return(ctx, loan.CopyID); err != nil {
		t.Fatalf("return failed: %v", err)
	}

	// Queue is now empty behind the READY reservation; removing it
	// must release the held copy.
	if err := svc.RemoveReservation(ctx, res.ReservationID); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	copies, _ := svc.CopiesByISBN(ctx, "9780000000001")
	if copies[0].Status != core.CopyAvailable {
		t.Errorf("expected copy released to AVAILABLE, got %s", copies[0].Status)
	}
}

func TestRemoveBook(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	var zero core.Date

	t.Run("Loan History Blocks Removal Even After Return", func(t *testing.T) {
		addBook(t, svc, "9780000000001", "Northern Skies", 1)
		member := addMember(t, svc, "MEM-001", core.MemberAdult)
		loan, err := svc.Lend(ctx, "9780000000001", member.MemberID, zero, zero)
		if err != nil {
			t.Fatalf("lend failed: %v", err)
		}
		if _, err := svc.Return(ctx, loan.CopyID); err != nil {
			t.Fatalf("return failed: %v", err)
		}
		if err := svc.RemoveBook(ctx, "9780000000001"); !core.IsRuleViolation(err) {
			t.Errorf("expected RuleViolationError, got %v", err)
		}
	})

	t.Run("Clean Book Removes Its Copies Too", func(t *testing.T) {
		addBook(t, svc, "9780000000002", "Code Patterns", 2)
		if err := svc.RemoveBook(ctx, "9780000000002"); err != nil {
			t.Fatalf("remove failed: %v", err)
		}
		if _, err := svc.GetBook(ctx, "9780000000002"); !core.IsNotFound(err) {
			t.Errorf("expected book gone, got %v", err)
		}
		if _, err := svc.CopiesByISBN(ctx, "9780000000002"); !core.IsNotFound(err) {
			t.Errorf("expected copies lookup to fail, got %v", err)
		}
	})
}

func TestRemoveMemberGuards(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	var zero core.Date

	addBook(t, svc, "9780000000001", "Northern Skies", 1)
	member := addMember(t, svc, "MEM-001", core.MemberAdult)
	loan, _ := svc.Lend(ctx, "9780000000001", member.MemberID, zero, zero)

	if err := svc.RemoveMember(ctx, member.MemberID); !core.IsRuleViolation(err) {
		t.Errorf("expected active loan to block removal, got %v", err)
	}
	if _, err := svc.Return(ctx, loan.CopyID); err != nil {
		t.Fatalf("return failed: %v", err)
	}
	if err := svc.RemoveMember(ctx, member.MemberID); err != nil {
		t.Errorf("expected removal after return, got %v", err)
	}
}

func TestRollbackLeavesNoPartialState(t *testing.T) {
	// A lend that fails at the loan-limit check must leave every store
	// untouched, even though it runs inside a transaction that touched
	// nothing yet; stronger: force a mid-transaction failure through
	// the engine directly.
	svc, engine := setupService(t)
	ctx := context.Background()

	addBook(t, svc, "9780000000001", "Northern Skies", 1)
	addMember(t, svc, "MEM-001", core.MemberAdult)

	boom := core.Violationf("boom")
	err := engine.RunInTransaction(ctx, func(ctx context.Context, tx core.StoreSet) error {
		if err := tx.Books().Save(ctx, core.Book{ISBN: "9999999999999", Title: "Ghost", Author: "X", Year: 1, Genre: "None"}); err != nil {
			return err
		}
		if err := tx.Copies().Save(ctx, core.Copy{CopyID: "COPY-GHOST", ISBN: "9999999999999", Status: core.CopyAvailable}); err != nil {
			return err
		}
		if err := tx.Members().Save(ctx, core.Member{MemberID: "MEM-GHOST", Name: "G", Email: "g@example.com", Category: core.MemberAdult}); err != nil {
			return err
		}
		return boom
	})
	if err != boom {
		t.Fatalf("expected transaction error surfaced, got %v", err)
	}

	if ok, _ := engine.Books().ExistsByID(ctx, "9999999999999"); ok {
		t.Error("ghost book visible after rollback")
	}
	if ok, _ := engine.Copies().ExistsByID(ctx, "COPY-GHOST"); ok {
		t.Error("ghost copy visible after rollback")
	}
	if ok, _ := engine.Members().ExistsByID(ctx, "MEM-GHOST"); ok {
		t.Error("ghost member visible after rollback")
	}

	books, err := engine.Books().FindAll(ctx)
	if err != nil {
		t.Fatalf("find all: %v", err)
	}
	if len(books) != 1 {
		t.Errorf("expected only the original book, got %d", len(books))
	}
}

func TestUpdateLoanDates(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	var zero core.Date

	addBook(t, svc, "9780000000001", "Northern Skies", 1)
	member := addMember(t, svc, "MEM-001", core.MemberAdult)
	loan, err := svc.Lend(ctx, "9780000000001", member.MemberID, zero, zero)
	if err != nil {
		t.Fatalf("lend failed: %v", err)
	}

	t.Run("Moving Loan Date Keeps Span", func(t *testing.T) {
		newStart := testDay.AddDays(5)
		updated, err := svc.UpdateLoanDate(ctx, loan.LoanID, newStart)
		if err != nil {
			t.Fatalf("update failed: %v", err)
		}
		if !updated.DueDate.Equal(newStart.AddDays(21)) {
			t.Errorf("expected due date shifted by original 21-day span, got %s", updated.DueDate)
		}
	})

	t.Run("Due Date Cannot Precede Loan Date", func(t *testing.T) {
		_, err := svc.UpdateLoanDueDate(ctx, loan.LoanID, testDay.AddDays(-10))
		if !core.IsValidation(err) {
			t.Errorf("expected ValidationError, got %v", err)
		}
	})

	t.Run("Due Date Update", func(t *testing.T) {
		target := testDay.AddDays(40)
		updated, err := svc.UpdateLoanDueDate(ctx, loan.LoanID, target)
		if err != nil {
			t.Fatalf("update failed: %v", err)
		}
		if !updated.DueDate.Equal(target) {
			t.Errorf("expected %s, got %s", target, updated.DueDate)
		}
	})
}

func TestSuggestDueDate(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	student := addMember(t, svc, "MEM-001", core.MemberStudent)
	due, err := svc.SuggestDueDate(ctx, student.MemberID, core.Date{})
	if err != nil {
		t.Fatalf("suggest failed: %v", err)
	}
	if !due.Equal(testDay.AddDays(30)) {
		t.Errorf("expected %s, got %s", testDay.AddDays(30), due)
	}
}

func TestCalculateFine(t *testing.T) {
	engine, err := fs.Open(fs.Config{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("open engine: %v", err)
	}
	svc := library.New(engine,
		library.WithClock(core.FixedClock{Date: core.NewDate(2024, time.January, 10)}),
		library.WithFinePolicy(policy.PerDay{CentsPerDay: 50}),
	)
	loan := core.Loan{DueDate: core.NewDate(2024, time.January, 5)}
	if got := svc.CalculateFine(loan, core.Date{}); got != 250 {
		t.Errorf("expected 250 cents, got %d", got)
	}
}

func TestInvariantReservedCopiesMatchReadyReservations(t *testing.T) {
	// After a mixed sequence of operations, the RESERVED copy count
	// for each book equals its READY reservation count (0 or 1).
	svc, engine := setupService(t)
	ctx := context.Background()
	var zero core.Date

	addBook(t, svc, "9780000000001", "Northern Skies", 2)
	addBook(t, svc, "9780000000002", "Code Patterns", 1)
	m1 := addMember(t, svc, "MEM-001", core.MemberAdult)
	m2 := addMember(t, svc, "MEM-002", core.MemberAdult)
	m3 := addMember(t, svc, "MEM-003", core.MemberAdult)

	l1, _ := svc.Lend(ctx, "9780000000001", m1.MemberID, zero, zero)
	svc.Lend(ctx, "9780000000001", m2.MemberID, zero, zero)
	svc.Reserve(ctx, "9780000000001", m3.MemberID)
	svc.Return(ctx, l1.CopyID)

	l2, _ := svc.Lend(ctx, "9780000000002", m1.MemberID, zero, zero)
	svc.Reserve(ctx, "9780000000002", m2.MemberID)
	svc.Return(ctx, l2.CopyID)

	copies, _ := engine.Copies().FindAll(ctx)
	loans, _ := engine.Loans().FindAll(ctx)
	reservations, _ := engine.Reservations().FindAll(ctx)

	// A LOANED copy carries exactly one active loan, and vice versa.
	activeByCopy := map[string]int{}
	for _, l := range loans {
		if !l.Returned() {
			activeByCopy[l.CopyID]++
		}
	}
	for _, c := range copies {
		if c.Status == core.CopyLoaned && activeByCopy[c.CopyID] != 1 {
			t.Errorf("copy %s LOANED with %d active loans", c.CopyID, activeByCopy[c.CopyID])
		}
		if c.Status != core.CopyLoaned && activeByCopy[c.CopyID] != 0 {
			t.Errorf("copy %s has active loans but status %s", c.CopyID, c.Status)
		}
	}

	reservedByISBN := map[string]int{}
	readyByISBN := map[string]int{}
	for _, c := range copies {
		if c.Status == core.CopyReserved {
			reservedByISBN[c.ISBN]++
		}
	}
	for _, r := range reservations {
		if r.Status == core.ReservationReady {
			readyByISBN[r.ISBN]++
		}
	}
	for isbn, n := range reservedByISBN {
		if readyByISBN[isbn] != n {
			t.Errorf("book %s: %d RESERVED copies but %d READY reservations", isbn, n, readyByISBN[isbn])
		}
	}
	for isbn, n := range readyByISBN {
		if n > 1 {
			t.Errorf("book %s: %d READY reservations", isbn, n)
		}
	}
}
