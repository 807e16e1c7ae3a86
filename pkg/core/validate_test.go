package core_test

import (
	"strings"
	"testing"

	"github.com/librum-dev/librum/pkg/core"
)

func TestValidateISBN(t *testing.T) {
	t.Run("Accepts 13 Digits", func(t *testing.T) {
		got, err := core.ValidateISBN("9780000000001")
		if err != nil {
			t.Fatalf("ValidateISBN failed: %v", err)
		}
		if got != "9780000000001" {
			t.Errorf("unexpected result: %s", got)
		}
	})

	t.Run("Strips Dashes", func(t *testing.T) {
		got, err := core.ValidateISBN("978-0-00-000000-1")
		if err != nil {
			t.Fatalf("ValidateISBN failed: %v", err)
		}
		if got != "9780000000001" {
			t.Errorf("expected dashes stripped, got %s", got)
		}
	})

	t.Run("Accepts 10 Digits", func(t *testing.T) {
		if _, err := core.ValidateISBN("0123456789"); err != nil {
			t.Errorf("expected 10-digit ISBN to pass: %v", err)
		}
	})

	t.Run("Rejects Wrong Length", func(t *testing.T) {
		_, err := core.ValidateISBN("12345")
		if !core.IsValidation(err) {
			t.Errorf("expected ValidationError, got %v", err)
		}
	})

	t.Run("Rejects Letters", func(t *testing.T) {
		if _, err := core.ValidateISBN("97800000000AB"); err == nil {
			t.Error("expected error for non-digit ISBN")
		}
	})
}

func TestValidateEmail(t *testing.T) {
	if _, err := core.ValidateEmail("aino.laine@example.com"); err != nil {
		t.Errorf("expected valid email to pass: %v", err)
	}
	if _, err := core.ValidateEmail("not-an-email"); !core.IsValidation(err) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestRequireNonBlank(t *testing.T) {
	got, err := core.RequireNonBlank("  title  ", "title")
	if err != nil {
		t.Fatalf("RequireNonBlank failed: %v", err)
	}
	if got != "title" {
		t.Errorf("expected trimmed value, got %q", got)
	}
	if _, err := core.RequireNonBlank("   ", "title"); !core.IsValidation(err) {
		t.Errorf("expected ValidationError for blank input, got %v", err)
	}
}

func TestLooksLikeISBN(t *testing.T) {
	if !core.LooksLikeISBN("978-0-00-000000-1") {
		t.Error("dashed ISBN should look like an ISBN")
	}
	if core.LooksLikeISBN("BOOK-001") {
		t.Error("alias should not look like an ISBN")
	}
}

func TestNewID(t *testing.T) {
	id := core.NewID(core.LoanIDPrefix)
	if !strings.HasPrefix(id, "LOAN-") {
		t.Errorf("expected LOAN- prefix, got %s", id)
	}
	if len(id) != len("LOAN-")+8 {
		t.Errorf("unexpected ID length: %s", id)
	}
	if id == core.NewID(core.LoanIDPrefix) {
		t.Error("expected distinct IDs")
	}
}

func TestErrorPredicates(t *testing.T) {
	if !core.IsNotFound(core.NotFound("book", "X")) {
		t.Error("IsNotFound failed")
	}
	if !core.IsRuleViolation(core.Violationf("limit reached")) {
		t.Error("IsRuleViolation failed")
	}
	if !core.IsStorage(core.StorageFailed("save", nil)) {
		t.Error("IsStorage failed")
	}
	if core.IsValidation(core.NotFound("book", "X")) {
		t.Error("predicates must not overlap")
	}
}
