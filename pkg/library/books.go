package library

import (
	"context"
	"strings"

	"github.com/librum-dev/librum/pkg/core"
)

// AddBook validates and stores a new catalog entry. The alias is
// generated when blank. The normalized book is returned.
func (s *Service) AddBook(ctx context.Context, book core.Book) (core.Book, error) {
	return s.addBook(ctx, s.storage, book)
}

func (s *Service) addBook(ctx context.Context, stores core.StoreSet, book core.Book) (core.Book, error) {
	isbn, err := core.ValidateISBN(book.ISBN)
	if err != nil {
		return core.Book{}, err
	}
	exists, err := stores.Books().ExistsByID(ctx, isbn)
	if err != nil {
		return core.Book{}, err
	}
	if exists {
		return core.Book{}, core.Violationf("book already exists: %s", isbn)
	}
	book.ISBN = isbn
	if book.BookID == "" {
		book.BookID = core.NewID(core.BookIDPrefix)
	}
	if book.Title, err = core.RequireNonBlank(book.Title, "title"); err != nil {
		return core.Book{}, err
	}
	if book.Author, err = core.RequireNonBlank(book.Author, "author"); err != nil {
		return core.Book{}, err
	}
	if book.Genre, err = core.RequireNonBlank(book.Genre, "genre"); err != nil {
		return core.Book{}, err
	}
	if book.Year <= 0 {
		return core.Book{}, core.Invalidf("year must be positive")
	}
	if err := stores.Books().Save(ctx, book); err != nil {
		return core.Book{}, err
	}
	s.logger.Debug("book added", "isbn", book.ISBN, "title", book.Title)
	return book, nil
}

// AddBookWithCopies stores the book and creates the given number of
// AVAILABLE copies in one transaction.
func (s *Service) AddBookWithCopies(ctx context.Context, book core.Book, count int) (core.Book, error) {
	if count < 0 {
		return core.Book{}, core.Invalidf("copies count must be non-negative")
	}
	var stored core.Book
	err := s.storage.RunInTransaction(ctx, func(ctx context.Context, tx core.StoreSet) error {
		var err error
		stored, err = s.addBook(ctx, tx, book)
		if err != nil {
			return err
		}
		for i := 0; i < count; i++ {
			if _, err := s.addCopy(ctx, tx, stored.ISBN); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return core.Book{}, err
	}
	return stored, nil
}

// AddCopy creates a new AVAILABLE copy of an existing book.
func (s *Service) AddCopy(ctx context.Context, key string) (core.Copy, error) {
	return s.addCopy(ctx, s.storage, key)
}

func (s *Service) addCopy(ctx context.Context, stores core.StoreSet, key string) (core.Copy, error) {
	isbn, err := s.resolveISBN(ctx, stores, key)
	if err != nil {
		return core.Copy{}, err
	}
	c := core.Copy{
		CopyID: core.NewID(core.CopyIDPrefix),
		ISBN:   isbn,
		Status: core.CopyAvailable,
	}
	if err := stores.Copies().Save(ctx, c); err != nil {
		return core.Copy{}, err
	}
	return c, nil
}

// MarkCopyLost flips a copy to LOST. Lost copies never count as
// available again.
func (s *Service) MarkCopyLost(ctx context.Context, copyID string) error {
	c, found, err := s.storage.Copies().FindByID(ctx, copyID)
	if err != nil {
		return err
	}
	if !found {
		return core.NotFound("copy", copyID)
	}
	c.Status = core.CopyLost
	return s.storage.Copies().Save(ctx, c)
}

// RemoveBook deletes a book and its copies. Books with any loan or
// reservation history cannot be removed.
func (s *Service) RemoveBook(ctx context.Context, key string) error {
	return s.storage.RunInTransaction(ctx, func(ctx context.Context, tx core.StoreSet) error {
		isbn, err := s.resolveISBN(ctx, tx, key)
		if err != nil {
			return err
		}
		copies, err := tx.Copies().FindAll(ctx)
		if err != nil {
			return err
		}
		copyIDs := make(map[string]bool)
		var related []core.Copy
		for _, c := range copies {
			if c.ISBN == isbn {
				related = append(related, c)
				copyIDs[c.CopyID] = true
			}
		}
		loans, err := tx.Loans().FindAll(ctx)
		if err != nil {
			return err
		}
		for _, loan := range loans {
			if copyIDs[loan.CopyID] {
				return core.Violationf("cannot remove book with loan history")
			}
		}
		reservations, err := tx.Reservations().FindAll(ctx)
		if err != nil {
			return err
		}
		for _, res := range reservations {
			if res.ISBN == isbn {
				return core.Violationf("cannot remove book with reservations")
			}
		}
		for _, c := range related {
			if err := tx.Copies().DeleteByID(ctx, c.CopyID); err != nil {
				return err
			}
		}
		return tx.Books().DeleteByID(ctx, isbn)
	})
}

// UpdateBook replaces the mutable fields of a book. A non-nil alias
// pointer replaces the alias; an empty value clears it.
func (s *Service) UpdateBook(ctx context.Context, key string, alias *string, title, author string, year int, genre string) (core.Book, error) {
	isbn, err := s.resolveISBN(ctx, s.storage, key)
	if err != nil {
		return core.Book{}, err
	}
	book, found, err := s.storage.Books().FindByID(ctx, isbn)
	if err != nil {
		return core.Book{}, err
	}
	if !found {
		return core.Book{}, core.NotFound("book", key)
	}
	if book.Title, err = core.RequireNonBlank(title, "title"); err != nil {
		return core.Book{}, err
	}
	if book.Author, err = core.RequireNonBlank(author, "author"); err != nil {
		return core.Book{}, err
	}
	if book.Genre, err = core.RequireNonBlank(genre, "genre"); err != nil {
		return core.Book{}, err
	}
	if year <= 0 {
		return core.Book{}, core.Invalidf("year must be positive")
	}
	book.Year = year
	if alias != nil {
		book.BookID = strings.TrimSpace(*alias)
	}
	if err := s.storage.Books().Save(ctx, book); err != nil {
		return core.Book{}, err
	}
	return book, nil
}

// ListBooks returns every catalog entry.
func (s *Service) ListBooks(ctx context.Context) ([]core.Book, error) {
	return s.storage.Books().FindAll(ctx)
}

// GetBook resolves an ISBN or alias to its catalog entry.
func (s *Service) GetBook(ctx context.Context, key string) (core.Book, error) {
	isbn, err := s.resolveISBN(ctx, s.storage, key)
	if err != nil {
		return core.Book{}, err
	}
	book, found, err := s.storage.Books().FindByID(ctx, isbn)
	if err != nil {
		return core.Book{}, err
	}
	if !found {
		return core.Book{}, core.NotFound("book", key)
	}
	return book, nil
}

// CopiesByISBN lists the copies of one book.
func (s *Service) CopiesByISBN(ctx context.Context, key string) ([]core.Copy, error) {
	isbn, err := s.resolveISBN(ctx, s.storage, key)
	if err != nil {
		return nil, err
	}
	all, err := s.storage.Copies().FindAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []core.Copy
	for _, c := range all {
		if c.ISBN == isbn {
			out = append(out, c)
		}
	}
	return out, nil
}
