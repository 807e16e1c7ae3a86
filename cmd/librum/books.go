package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/librum-dev/librum"
)

var (
	bookISBN   string
	bookTitle  string
	bookAuthor string
	bookYear   int
	bookGenre  string
	bookCopies int
	booksJSON  bool
)

var booksCmd = &cobra.Command{
	Use:   "books",
	Short: "Manage the catalog",
}

var booksAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a book with copies",
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		book, err := app.Library.AddBookWithCopies(context.Background(), librum.Book{
			ISBN:   bookISBN,
			Title:  bookTitle,
			Author: bookAuthor,
			Year:   bookYear,
			Genre:  bookGenre,
		}, bookCopies)
		if err != nil {
			fatal("Failed to add book", err)
		}
		fmt.Printf("Added %s (%s) with %d copies\n", book.Title, book.ISBN, bookCopies)
	},
}

var booksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the catalog",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		books, err := app.Library.ListBooks(context.Background())
		if err != nil {
			fatal("Failed to list books", err)
		}
		if booksJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(books); err != nil {
				fatal("Failed to encode JSON", err)
			}
			return
		}
		for _, book := range books {
			fmt.Printf("%s  %-30s %s (%d) [%s] loans=%d\n",
				book.ISBN, book.Title, book.Author, book.Year, book.Genre, book.TotalLoans)
		}
	},
}

var booksSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Fuzzy-search the catalog",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		books, err := app.Library.SearchBooks(context.Background(), args[0])
		if err != nil {
			fatal("Search failed", err)
		}
		for _, book := range books {
			fmt.Printf("%s  %s - %s\n", book.ISBN, book.Title, book.Author)
		}
	},
}

var booksRemoveCmd = &cobra.Command{
	Use:   "remove <isbn-or-id>",
	Short: "Remove a book and its copies",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		if err := app.Library.RemoveBook(context.Background(), args[0]); err != nil {
			fatal("Failed to remove book", err)
		}
		fmt.Printf("Removed %s\n", args[0])
	},
}

var booksCopiesCmd = &cobra.Command{
	Use:   "copies <isbn-or-id>",
	Short: "List the copies of a book",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		copies, err := app.Library.CopiesByISBN(context.Background(), args[0])
		if err != nil {
			fatal("Failed to list copies", err)
		}
		for _, c := range copies {
			fmt.Printf("%s  %s\n", c.CopyID, c.Status)
		}
	},
}

var booksAddCopyCmd = &cobra.Command{
	Use:   "add-copy <isbn-or-id>",
	Short: "Add one copy of a book",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		c, err := app.Library.AddCopy(context.Background(), args[0])
		if err != nil {
			fatal("Failed to add copy", err)
		}
		fmt.Printf("Added copy %s\n", c.CopyID)
	},
}

var booksLostCmd = &cobra.Command{
	Use:   "lost <copy-id>",
	Short: "Mark a copy as lost",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		if err := app.Library.MarkCopyLost(context.Background(), args[0]); err != nil {
			fatal("Failed to mark copy lost", err)
		}
		fmt.Printf("Marked %s as lost\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(booksCmd)
	booksCmd.AddCommand(booksAddCmd, booksListCmd, booksSearchCmd, booksRemoveCmd,
		booksCopiesCmd, booksAddCopyCmd, booksLostCmd)

	booksAddCmd.Flags().StringVar(&bookISBN, "isbn", "", "ISBN (10 or 13 digits)")
	booksAddCmd.Flags().StringVar(&bookTitle, "title", "", "Title")
	booksAddCmd.Flags().StringVar(&bookAuthor, "author", "", "Author")
	booksAddCmd.Flags().IntVar(&bookYear, "year", 0, "Publication year")
	booksAddCmd.Flags().StringVar(&bookGenre, "genre", "", "Genre")
	booksAddCmd.Flags().IntVar(&bookCopies, "copies", 1, "Number of copies")
	booksAddCmd.MarkFlagRequired("isbn")
	booksAddCmd.MarkFlagRequired("title")
	booksAddCmd.MarkFlagRequired("author")

	booksListCmd.Flags().BoolVar(&booksJSON, "json", false, "Output in JSON format")
}
