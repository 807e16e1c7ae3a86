// Command bench measures the file engine's load, enumeration, and
// transaction-commit times at a given catalog size.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/librum-dev/librum/pkg/adapters/fs"
	"github.com/librum-dev/librum/pkg/core"
	"github.com/librum-dev/librum/pkg/library"
)

func main() {
	count := flag.Int("count", 1000, "Number of books to generate")
	keep := flag.Bool("keep", false, "Keep the benchmark data directory after running")
	flag.Parse()

	benchDir, err := os.MkdirTemp("", "librum_bench_")
	if err != nil {
		panic(err)
	}
	defer func() {
		if !*keep {
			os.RemoveAll(benchDir)
		} else {
			fmt.Printf("Keeping bench dir: %s\n", benchDir)
		}
	}()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	ctx := context.Background()

	engine, err := fs.Open(fs.Config{Dir: benchDir, Logger: logger})
	if err != nil {
		panic(err)
	}

	fmt.Printf("Generating %d books with copies in %s...\n", *count, benchDir)
	startGen := time.Now()
	err = engine.RunInTransaction(ctx, func(ctx context.Context, tx core.StoreSet) error {
		for i := 0; i < *count; i++ {
			book := core.Book{
				ISBN:   fmt.Sprintf("%013d", i+1),
				Title:  fmt.Sprintf("Bench Title %d", i),
				Author: fmt.Sprintf("Author %d", i%100),
				Year:   2000 + i%25,
				Genre:  "Benchmark",
			}
			if err := tx.Books().Save(ctx, book); err != nil {
				return err
			}
			if err := tx.Copies().Save(ctx, core.Copy{
				CopyID: fmt.Sprintf("COPY-%08d", i),
				ISBN:   book.ISBN,
				Status: core.CopyAvailable,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		panic(err)
	}
	fmt.Printf("Generation + commit took: %v\n", time.Since(startGen))

	// Reopen to measure a cold load of the entity files.
	startLoad := time.Now()
	engine2, err := fs.Open(fs.Config{Dir: benchDir, Logger: logger})
	if err != nil {
		panic(err)
	}
	fmt.Printf("Cold open took: %v\n", time.Since(startLoad))

	startList := time.Now()
	books, err := engine2.Books().FindAll(ctx)
	if err != nil {
		panic(err)
	}
	fmt.Printf("Enumerated %d books in %v\n", len(books), time.Since(startList))

	startSearch := time.Now()
	svc := library.New(engine2, library.WithLogger(logger))
	hits, err := svc.SearchBooks(ctx, "Bench Titl")
	if err != nil {
		panic(err)
	}
	fmt.Printf("Fuzzy search returned %d hits in %v\n", len(hits), time.Since(startSearch))
}
