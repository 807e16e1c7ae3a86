package librum_test

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/librum-dev/librum"
)

// Example_basic demonstrates adding a book with copies, lending one,
// and returning it.
func Example_basic() {
	// Create a temporary data directory for the example
	tmpDir, err := os.MkdirTemp("", "librum-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	cfg := librum.DefaultConfig()
	cfg.DataDir = tmpDir

	app, err := librum.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer app.Close()

	ctx := context.Background()

	// 1. Register a book with two copies and a member
	book, err := app.Library.AddBookWithCopies(ctx, librum.Book{
		ISBN:   "9780000000001",
		Title:  "Northern Skies",
		Author: "A. Koskinen",
		Year:   1999,
		Genre:  "Fantasy",
	}, 2)
	if err != nil {
		log.Fatal(err)
	}
	member, err := app.Library.AddMember(ctx, librum.Member{
		Name:     "Aino Laine",
		Email:    "aino.laine@example.com",
		Category: "STUDENT",
	})
	if err != nil {
		log.Fatal(err)
	}

	// 2. Lend a copy and return it
	loan, err := app.Library.Lend(ctx, book.ISBN, member.MemberID, librum.Date{}, librum.Date{})
	if err != nil {
		log.Fatal(err)
	}
	result, err := app.Library.Return(ctx, loan.CopyID)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Returned: %v\n", result.Loan.Returned())
	// Output:
	// Returned: true
}
