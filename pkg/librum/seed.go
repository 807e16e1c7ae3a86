package librum

import (
	"context"
	"fmt"

	"github.com/librum-dev/librum/pkg/core"
)

type bookSeed struct {
	isbn   string
	title  string
	author string
	year   int
	genre  string
	copies int
}

var seedBooks = []bookSeed{
	{"9780000000001", "Northern Skies", "A. Koskinen", 1999, "Fantasy", 2},
	{"9780000000002", "Code Patterns", "J. Niemi", 2008, "Technology", 2},
	{"9780000000003", "Winter Roads", "L. Laine", 2003, "Drama", 2},
	{"9780000000004", "Deep Sea", "M. Virtanen", 2012, "Adventure", 2},
	{"9780000000005", "Quiet Forest", "E. Saarinen", 2001, "Nature", 2},
	{"9780000000006", "Stone Harbor", "T. Kallio", 2015, "Mystery", 2},
	{"9780000000007", "Morning Light", "S. Heikkinen", 2010, "Romance", 2},
	{"9780000000008", "The Last Signal", "R. Lehto", 2018, "Sci-Fi", 2},
	{"9780000000009", "Hidden Trails", "K. Hiltunen", 2006, "Adventure", 1},
	{"9780000000010", "City Lines", "P. Maki", 2014, "Drama", 1},
	{"9780000000011", "Iron Gate", "V. Salminen", 1998, "History", 1},
	{"9780000000012", "White Lake", "H. Nieminen", 2005, "Nature", 1},
	{"9780000000013", "Silent Code", "D. Aaltonen", 2020, "Technology", 1},
	{"9780000000014", "Arctic Dream", "N. Korhonen", 2011, "Fantasy", 1},
	{"9780000000015", "Broken Compass", "I. Lehtinen", 2009, "Thriller", 1},
	{"9780000000016", "Wolves of the North", "V. Karjalainen", 2005, "Fantasy", 2},
}

type memberSeed struct {
	id       string
	name     string
	email    string
	category core.MemberCategory
}

var seedMembers = []memberSeed{
	{"MEM-001", "Aino Laine", "aino.laine@example.com", core.MemberStudent},
	{"MEM-002", "Mikko Rinne", "mikko.rinne@example.com", core.MemberStudent},
	{"MEM-003", "Laura Kaski", "laura.kaski@example.com", core.MemberStudent},
	{"MEM-004", "Olli Mattila", "olli.mattila@example.com", core.MemberAdult},
	{"MEM-005", "Sari Lehto", "sari.lehto@example.com", core.MemberAdult},
	{"MEM-006", "Antti Salmi", "antti.salmi@example.com", core.MemberAdult},
	{"MEM-007", "Eeva Karhu", "eeva.karhu@example.com", core.MemberStudent},
	{"MEM-008", "Jari Holm", "jari.holm@example.com", core.MemberStudent},
}

// Seed populates an empty catalog with demo data: a few checked-out
// books, an overdue loan, returned history, a READY reservation with
// a queue behind it, and one lost copy. It is a no-op when the
// catalog already has books.
func (a *App) Seed(ctx context.Context) error {
	existing, err := a.Library.ListBooks(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	for i, seed := range seedBooks {
		book := core.Book{
			ISBN:   seed.isbn,
			BookID: fmt.Sprintf("BOOK-%03d", i+1),
			Title:  seed.title,
			Author: seed.author,
			Year:   seed.year,
			Genre:  seed.genre,
		}
		if _, err := a.Library.AddBookWithCopies(ctx, book, seed.copies); err != nil {
			return err
		}
	}
	for _, seed := range seedMembers {
		member := core.Member{
			MemberID: seed.id,
			Name:     seed.name,
			Email:    seed.email,
			Category: seed.category,
		}
		if _, err := a.Library.AddMember(ctx, member); err != nil {
			return err
		}
	}

	today := core.Today()
	var zero core.Date

	// Current loans.
	for i := 0; i < 4; i++ {
		if _, err := a.Library.Lend(ctx, seedBooks[i].isbn, seedMembers[i].id, zero, zero); err != nil {
			return err
		}
	}

	// Overdue loans.
	if _, err := a.Library.Lend(ctx, seedBooks[10].isbn, seedMembers[4].id, today.AddDays(-45), today.AddDays(-15)); err != nil {
		return err
	}
	if _, err := a.Library.Lend(ctx, seedBooks[11].isbn, seedMembers[5].id, today.AddDays(-35), today.AddDays(-14)); err != nil {
		return err
	}

	// A READY reservation with one more queued behind it.
	readyBook := seedBooks[8].isbn
	loan, err := a.Library.Lend(ctx, readyBook, seedMembers[6].id, zero, zero)
	if err != nil {
		return err
	}
	if _, err := a.Library.Reserve(ctx, readyBook, seedMembers[7].id); err != nil {
		return err
	}
	if _, err := a.Library.Reserve(ctx, readyBook, seedMembers[0].id); err != nil {
		return err
	}
	if _, err := a.Library.Return(ctx, loan.CopyID); err != nil {
		return err
	}

	// Loan history.
	history, err := a.Library.Lend(ctx, seedBooks[12].isbn, seedMembers[1].id, today.AddDays(-18), today.AddDays(-3))
	if err != nil {
		return err
	}
	if _, err := a.Library.Return(ctx, history.CopyID); err != nil {
		return err
	}

	// One lost copy.
	copies, err := a.Library.CopiesByISBN(ctx, seedBooks[14].isbn)
	if err != nil {
		return err
	}
	if len(copies) > 0 {
		if err := a.Library.MarkCopyLost(ctx, copies[0].CopyID); err != nil {
			return err
		}
	}
	return nil
}
