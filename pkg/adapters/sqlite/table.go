package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/librum-dev/librum/pkg/core"
)

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// tableMeta maps one entity type onto its table: column list, value
// extraction for writes, and row scanning for reads. The first column
// is the primary key.
type tableMeta[T core.Entity] struct {
	name    string
	columns []string
	values  func(T) []any
	scan    func(scanner) (T, error)
}

// table is a keyed store backed by one SQLite table. FindAll returns
// rows in rowid order, which for upserts that preserve the rowid is
// insertion order.
type table[T core.Entity] struct {
	engine *Engine
	meta   tableMeta[T]
}

// Save upserts by primary key. ON CONFLICT DO UPDATE keeps the
// original rowid, so enumeration order is stable across updates.
func (t *table[T]) Save(ctx context.Context, entity T) error {
	cols := t.meta.columns
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(cols)), ",")
	var sets []string
	for _, col := range cols[1:] {
		sets = append(sets, fmt.Sprintf("%s=excluded.%s", col, col))
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(%s) DO UPDATE SET %s",
		t.meta.name, strings.Join(cols, ", "), placeholders, cols[0], strings.Join(sets, ", "))
	if _, err := t.engine.querier(ctx).ExecContext(ctx, query, t.meta.values(entity)...); err != nil {
		return core.StorageFailed("save "+t.meta.name, err)
	}
	return nil
}

// FindByID looks a record up by primary key.
func (t *table[T]) FindByID(ctx context.Context, id string) (T, bool, error) {
	var zero T
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?",
		strings.Join(t.meta.columns, ", "), t.meta.name, t.meta.columns[0])
	row := t.engine.querier(ctx).QueryRowContext(ctx, query, id)
	entity, err := t.meta.scan(row)
	if err == sql.ErrNoRows {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, core.StorageFailed("find "+t.meta.name, err)
	}
	return entity, true, nil
}

// FindAll enumerates every record in rowid order.
func (t *table[T]) FindAll(ctx context.Context) ([]T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY rowid",
		strings.Join(t.meta.columns, ", "), t.meta.name)
	rows, err := t.engine.querier(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, core.StorageFailed("list "+t.meta.name, err)
	}
	defer rows.Close()
	var out []T
	for rows.Next() {
		entity, err := t.meta.scan(rows)
		if err != nil {
			return nil, core.StorageFailed("scan "+t.meta.name, err)
		}
		out = append(out, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, core.StorageFailed("list "+t.meta.name, err)
	}
	return out, nil
}

// DeleteByID removes a record. Deleting a missing key is a no-op.
func (t *table[T]) DeleteByID(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", t.meta.name, t.meta.columns[0])
	if _, err := t.engine.querier(ctx).ExecContext(ctx, query, id); err != nil {
		return core.StorageFailed("delete "+t.meta.name, err)
	}
	return nil
}

// ExistsByID reports whether the key is present.
func (t *table[T]) ExistsByID(ctx context.Context, id string) (bool, error) {
	query := fmt.Sprintf("SELECT 1 FROM %s WHERE %s = ?", t.meta.name, t.meta.columns[0])
	row := t.engine.querier(ctx).QueryRowContext(ctx, query, id)
	var one int
	err := row.Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, core.StorageFailed("check "+t.meta.name, err)
	}
	return true, nil
}

// Dates live in TEXT columns as ISO calendar dates; the zero date
// maps to NULL.

func dateValue(d core.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.String()
}

func scanDate(value sql.NullString) (core.Date, error) {
	if !value.Valid {
		return core.Date{}, nil
	}
	return core.ParseDate(value.String)
}

var bookMeta = tableMeta[core.Book]{
	name:    "books",
	columns: []string{"isbn", "book_id", "title", "author", "year", "genre", "total_loans"},
	values: func(b core.Book) []any {
		return []any{b.ISBN, b.BookID, b.Title, b.Author, b.Year, b.Genre, b.TotalLoans}
	},
	scan: func(s scanner) (core.Book, error) {
		var b core.Book
		err := s.Scan(&b.ISBN, &b.BookID, &b.Title, &b.Author, &b.Year, &b.Genre, &b.TotalLoans)
		return b, err
	},
}

var copyMeta = tableMeta[core.Copy]{
	name:    "copies",
	columns: []string{"copy_id", "isbn", "status"},
	values: func(c core.Copy) []any {
		return []any{c.CopyID, c.ISBN, string(c.Status)}
	},
	scan: func(s scanner) (core.Copy, error) {
		var c core.Copy
		var status string
		err := s.Scan(&c.CopyID, &c.ISBN, &status)
		c.Status = core.CopyStatus(status)
		return c, err
	},
}

var memberMeta = tableMeta[core.Member]{
	name:    "members",
	columns: []string{"member_id", "name", "email", "category"},
	values: func(m core.Member) []any {
		return []any{m.MemberID, m.Name, m.Email, string(m.Category)}
	},
	scan: func(s scanner) (core.Member, error) {
		var m core.Member
		var category string
		err := s.Scan(&m.MemberID, &m.Name, &m.Email, &category)
		m.Category = core.MemberCategory(category)
		return m, err
	},
}

var loanMeta = tableMeta[core.Loan]{
	name:    "loans",
	columns: []string{"loan_id", "copy_id", "member_id", "loan_date", "due_date", "return_date"},
	values: func(l core.Loan) []any {
		return []any{l.LoanID, l.CopyID, l.MemberID, dateValue(l.LoanDate), dateValue(l.DueDate), dateValue(l.ReturnDate)}
	},
	scan: func(s scanner) (core.Loan, error) {
		var l core.Loan
		var loanDate, dueDate, returnDate sql.NullString
		if err := s.Scan(&l.LoanID, &l.CopyID, &l.MemberID, &loanDate, &dueDate, &returnDate); err != nil {
			return l, err
		}
		var err error
		if l.LoanDate, err = scanDate(loanDate); err != nil {
			return l, err
		}
		if l.DueDate, err = scanDate(dueDate); err != nil {
			return l, err
		}
		l.ReturnDate, err = scanDate(returnDate)
		return l, err
	},
}

var reservationMeta = tableMeta[core.Reservation]{
	name:    "reservations",
	columns: []string{"reservation_id", "isbn", "member_id", "created_at", "status"},
	values: func(r core.Reservation) []any {
		return []any{r.ReservationID, r.ISBN, r.MemberID, dateValue(r.CreatedAt), string(r.Status)}
	},
	scan: func(s scanner) (core.Reservation, error) {
		var r core.Reservation
		var createdAt sql.NullString
		var status string
		if err := s.Scan(&r.ReservationID, &r.ISBN, &r.MemberID, &createdAt, &status); err != nil {
			return r, err
		}
		r.Status = core.ReservationStatus(status)
		var err error
		r.CreatedAt, err = scanDate(createdAt)
		return r, err
	},
}
