package core_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/librum-dev/librum/pkg/core"
)

func TestParseDate(t *testing.T) {
	t.Run("Valid ISO Date", func(t *testing.T) {
		date, err := core.ParseDate("2024-01-05")
		if err != nil {
			t.Fatalf("ParseDate failed: %v", err)
		}
		if date.String() != "2024-01-05" {
			t.Errorf("expected 2024-01-05, got %s", date)
		}
	})

	t.Run("Rejects Garbage", func(t *testing.T) {
		if _, err := core.ParseDate("05/01/2024"); err == nil {
			t.Error("expected error for non-ISO date")
		}
	})
}

func TestDateArithmetic(t *testing.T) {
	start := core.NewDate(2024, time.January, 5)

	t.Run("AddDays", func(t *testing.T) {
		if got := start.AddDays(21).String(); got != "2024-01-26" {
			t.Errorf("expected 2024-01-26, got %s", got)
		}
	})

	t.Run("DaysUntil", func(t *testing.T) {
		end := core.NewDate(2024, time.January, 10)
		if got := start.DaysUntil(end); got != 5 {
			t.Errorf("expected 5 days, got %d", got)
		}
		if got := end.DaysUntil(start); got != -5 {
			t.Errorf("expected -5 days, got %d", got)
		}
	})

	t.Run("Ordering", func(t *testing.T) {
		later := start.AddDays(1)
		if !start.Before(later) || !later.After(start) {
			t.Error("expected start < later")
		}
		if !start.Equal(start) {
			t.Error("expected date equal to itself")
		}
	})
}

func TestDateJSON(t *testing.T) {
	t.Run("Round Trip", func(t *testing.T) {
		date := core.NewDate(2024, time.March, 15)
		data, err := json.Marshal(date)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		if string(data) != `"2024-03-15"` {
			t.Errorf("unexpected encoding: %s", data)
		}
		var decoded core.Date
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if !decoded.Equal(date) {
			t.Errorf("round trip changed date: %s", decoded)
		}
	})

	t.Run("Zero Date Is Null", func(t *testing.T) {
		var zero core.Date
		data, err := json.Marshal(zero)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		if string(data) != "null" {
			t.Errorf("expected null, got %s", data)
		}
		var decoded core.Date
		if err := json.Unmarshal([]byte("null"), &decoded); err != nil {
			t.Fatalf("unmarshal null failed: %v", err)
		}
		if !decoded.IsZero() {
			t.Error("expected null to decode as zero date")
		}
	})
}

func TestLoanDerivedState(t *testing.T) {
	due := core.NewDate(2024, time.January, 5)
	loan := core.Loan{LoanID: "LOAN-1", DueDate: due}

	if loan.Returned() {
		t.Error("loan without return date must be active")
	}
	if !loan.Overdue(due.AddDays(1)) {
		t.Error("expected loan past due date to be overdue")
	}
	if loan.Overdue(due) {
		t.Error("loan is not overdue on its due date")
	}

	loan.ReturnDate = due.AddDays(2)
	if !loan.Returned() {
		t.Error("loan with return date must be returned")
	}
	if loan.Overdue(due.AddDays(10)) {
		t.Error("returned loan is never overdue")
	}
}
