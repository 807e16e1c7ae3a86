package search_test

import (
	"testing"

	"github.com/librum-dev/librum/pkg/search"
)

type record struct {
	title  string
	author string
}

func fields(r record) []string { return []string{r.title, r.author} }
func sortKey(r record) string  { return r.title }

var catalog = []record{
	{"Northern Skies", "A. Koskinen"},
	{"Code Patterns", "J. Niemi"},
	{"Winter Roads", "L. Laine"},
	{"Deep Sea", "M. Virtanen"},
	{"Stone Harbor", "T. Kallio"},
}

func TestRankTypoTolerance(t *testing.T) {
	// A transposed-letter typo must still surface the right record
	// first.
	got := search.Rank("Nothern Skies", catalog, fields, sortKey)
	if len(got) == 0 {
		t.Fatal("expected at least one match")
	}
	if got[0].title != "Northern Skies" {
		t.Errorf("expected Northern Skies first, got %s", got[0].title)
	}
}

func TestRankExactSubstringWinsOutright(t *testing.T) {
	got := search.Rank("harbor", catalog, fields, sortKey)
	if len(got) == 0 || got[0].title != "Stone Harbor" {
		t.Fatalf("expected Stone Harbor first, got %v", got)
	}
}

func TestRankShortQueryFallsBackToContainment(t *testing.T) {
	// A single character is below the fuzzy minimum, so only substring
	// containment applies, alphabetically sorted.
	got := search.Rank("s", catalog, fields, sortKey)
	if len(got) == 0 {
		t.Fatal("expected containment matches")
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].title > got[i].title {
			t.Errorf("expected alphabetical order, got %v before %v", got[i-1].title, got[i].title)
		}
	}
	for _, r := range got {
		if !containsFold(r, "s") {
			t.Errorf("%s does not contain query", r.title)
		}
	}
}

func containsFold(r record, q string) bool {
	for _, f := range fields(r) {
		for i := 0; i+len(q) <= len(f); i++ {
			match := true
			for j := 0; j < len(q); j++ {
				c := f[i+j]
				if c >= 'A' && c <= 'Z' {
					c += 'a' - 'A'
				}
				if c != q[j] {
					match = false
					break
				}
			}
			if match {
				return true
			}
		}
	}
	return false
}

func TestRankNoMatchReturnsNothing(t *testing.T) {
	got := search.Rank("zzzzqqqq", catalog, fields, sortKey)
	if len(got) != 0 {
		t.Errorf("expected no matches, got %v", got)
	}
}

func TestRankUnrelatedShortTokenSuppressed(t *testing.T) {
	// "sea" appears as a full token of Deep Sea; a long query sharing
	// only a couple of bigrams with it must not rank it above the real
	// hit.
	items := append([]record{}, catalog...)
	got := search.Rank("winter road", items, fields, sortKey)
	if len(got) == 0 {
		t.Fatal("expected a match")
	}
	if got[0].title != "Winter Roads" {
		t.Errorf("expected Winter Roads first, got %s", got[0].title)
	}
}

func TestRankTiesBreakAlphabetically(t *testing.T) {
	items := []record{
		{"Beta", "Same Author"},
		{"Alpha", "Same Author"},
	}
	got := search.Rank("Same Author", items, fields, sortKey)
	if len(got) != 2 {
		t.Fatalf("expected both records, got %d", len(got))
	}
	if got[0].title != "Alpha" {
		t.Errorf("expected Alpha first on tie, got %s", got[0].title)
	}
}
