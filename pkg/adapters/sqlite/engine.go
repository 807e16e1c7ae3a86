// Package sqlite is the relational storage backend. It satisfies the
// same store and transaction contracts as the file backend, using
// SQLite's native transactions instead of snapshot/rollback.
package sqlite

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/librum-dev/librum/pkg/core"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS books (
	isbn        TEXT PRIMARY KEY,
	book_id     TEXT,
	title       TEXT NOT NULL,
	author      TEXT NOT NULL,
	year        INTEGER NOT NULL,
	genre       TEXT NOT NULL,
	total_loans INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS copies (
	copy_id TEXT PRIMARY KEY,
	isbn    TEXT NOT NULL,
	status  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS members (
	member_id TEXT PRIMARY KEY,
	name      TEXT NOT NULL,
	email     TEXT NOT NULL,
	category  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS loans (
	loan_id     TEXT PRIMARY KEY,
	copy_id     TEXT NOT NULL,
	member_id   TEXT NOT NULL,
	loan_date   TEXT,
	due_date    TEXT,
	return_date TEXT
);
CREATE TABLE IF NOT EXISTS reservations (
	reservation_id TEXT PRIMARY KEY,
	isbn           TEXT NOT NULL,
	member_id      TEXT NOT NULL,
	created_at     TEXT,
	status         TEXT NOT NULL
);
`

// Config configures the SQLite engine.
type Config struct {
	// Path is the database file. ":memory:" opens an in-memory database.
	Path string
	// Logger receives engine diagnostics. Optional.
	Logger *slog.Logger
}

// Engine implements core.Storage on a SQLite database. Transactions
// map to native BEGIN/COMMIT; isolation comes from the database, not
// from in-memory snapshots.
type Engine struct {
	db     *sql.DB
	logger *slog.Logger

	books        *table[core.Book]
	copies       *table[core.Copy]
	members      *table[core.Member]
	loans        *table[core.Loan]
	reservations *table[core.Reservation]
}

// Open opens (creating if necessary) the database and ensures the
// schema exists.
func Open(cfg Config) (*Engine, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, core.Invalidf("database path is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	dsn := cfg.Path
	if dsn != ":memory:" {
		dsn = filepath.Clean(dsn) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, core.StorageFailed("open database", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, core.StorageFailed("ping database", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, core.StorageFailed("create schema", err)
	}
	e := &Engine{db: db, logger: logger}
	e.books = &table[core.Book]{engine: e, meta: bookMeta}
	e.copies = &table[core.Copy]{engine: e, meta: copyMeta}
	e.members = &table[core.Member]{engine: e, meta: memberMeta}
	e.loans = &table[core.Loan]{engine: e, meta: loanMeta}
	e.reservations = &table[core.Reservation]{engine: e, meta: reservationMeta}
	logger.Debug("sqlite storage opened", "path", cfg.Path)
	return e, nil
}

// Close releases the database handle.
func (e *Engine) Close() error {
	return e.db.Close()
}

// Books returns the book store.
func (e *Engine) Books() core.Store[core.Book] { return e.books }

// Copies returns the copy store.
func (e *Engine) Copies() core.Store[core.Copy] { return e.copies }

// Members returns the member store.
func (e *Engine) Members() core.Store[core.Member] { return e.members }

// Loans returns the loan store.
func (e *Engine) Loans() core.Store[core.Loan] { return e.loans }

// Reservations returns the reservation store.
func (e *Engine) Reservations() core.Store[core.Reservation] { return e.reservations }

// txKey marks a context as carrying an open transaction on this engine.
type txKey struct{}

// RunInTransaction executes fn inside a native database transaction.
// Nested calls on a context already carrying a transaction join it.
func (e *Engine) RunInTransaction(ctx context.Context, fn core.TxFunc) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx, e)
	}
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return core.StorageFailed("begin transaction", err)
	}
	txCtx := context.WithValue(ctx, txKey{}, tx)
	if err := fn(txCtx, e); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			e.logger.Error("rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return core.StorageFailed("commit transaction", err)
	}
	return nil
}

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// querier picks the open transaction from the context when present,
// so store calls made inside a transaction body see its uncommitted
// writes.
func (e *Engine) querier(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return e.db
}
