package library

import (
	"context"
	"strings"

	"github.com/librum-dev/librum/pkg/core"
	"github.com/librum-dev/librum/pkg/search"
)

// SearchBooks ranks catalog entries against a free-text query using
// n-gram similarity over title, author, genre, ISBN, and alias.
func (s *Service) SearchBooks(ctx context.Context, query string) ([]core.Book, error) {
	q, err := core.RequireNonBlank(query, "query")
	if err != nil {
		return nil, err
	}
	books, err := s.storage.Books().FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return search.Rank(q, books,
		func(b core.Book) []string {
			return []string{b.Title, b.Author, b.Genre, b.ISBN, b.BookID}
		},
		func(b core.Book) string { return b.Title },
	), nil
}

// SearchBooksByTitleAuthor filters by case-insensitive substring on
// both fields. Empty arguments match everything.
func (s *Service) SearchBooksByTitleAuthor(ctx context.Context, title, author string) ([]core.Book, error) {
	titleQuery := strings.ToLower(strings.TrimSpace(title))
	authorQuery := strings.ToLower(strings.TrimSpace(author))
	books, err := s.storage.Books().FindAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []core.Book
	for _, b := range books {
		if strings.Contains(strings.ToLower(b.Title), titleQuery) &&
			strings.Contains(strings.ToLower(b.Author), authorQuery) {
			out = append(out, b)
		}
	}
	return out, nil
}

// SearchMembers ranks members against a free-text query over name,
// identifier, and email.
func (s *Service) SearchMembers(ctx context.Context, query string) ([]core.Member, error) {
	q, err := core.RequireNonBlank(query, "query")
	if err != nil {
		return nil, err
	}
	members, err := s.storage.Members().FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return search.Rank(q, members,
		func(m core.Member) []string {
			return []string{m.Name, m.MemberID, m.Email}
		},
		func(m core.Member) string { return m.Name },
	), nil
}
