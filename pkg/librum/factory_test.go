package librum_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librum-dev/librum/pkg/core"
	"github.com/librum-dev/librum/pkg/librum"
)

func newApp(t *testing.T, backend librum.Backend) *librum.App {
	t.Helper()
	cfg := librum.DefaultConfig()
	cfg.Backend = backend
	cfg.DataDir = t.TempDir()
	app, err := librum.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })
	return app
}

func TestNewFileBackend(t *testing.T) {
	app := newApp(t, librum.BackendFile)
	ctx := context.Background()

	_, err := app.Library.AddBookWithCopies(ctx, core.Book{
		ISBN: "9780000000001", Title: "Northern Skies", Author: "A. Koskinen", Year: 1999, Genre: "Fantasy",
	}, 1)
	require.NoError(t, err)

	books, err := app.Library.ListBooks(ctx)
	require.NoError(t, err)
	assert.Len(t, books, 1)

	_, err = os.Stat(filepath.Join(app.Config.DataDir, "books.json"))
	assert.NoError(t, err, "file backend should write an entity file")
}

func TestNewSQLiteBackend(t *testing.T) {
	app := newApp(t, librum.BackendSQLite)
	ctx := context.Background()

	_, err := app.Library.AddBookWithCopies(ctx, core.Book{
		ISBN: "9780000000001", Title: "Northern Skies", Author: "A. Koskinen", Year: 1999, Genre: "Fantasy",
	}, 1)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(app.Config.DataDir, "librum.db"))
	assert.NoError(t, err, "sqlite backend should create the database file")
}

func TestSeed(t *testing.T) {
	app := newApp(t, librum.BackendFile)
	ctx := context.Background()

	require.NoError(t, app.Seed(ctx))

	books, err := app.Library.ListBooks(ctx)
	require.NoError(t, err)
	assert.Len(t, books, 16)

	members, err := app.Library.ListMembers(ctx)
	require.NoError(t, err)
	assert.Len(t, members, 8)

	active, err := app.Library.ActiveLoans(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, active)

	overdue, err := app.Reports.Overdue(ctx, core.Today())
	require.NoError(t, err)
	assert.Len(t, overdue, 2)

	// The reservation queue ends up with one READY entry holding a
	// copy and one QUEUED entry behind it.
	reservations, err := app.Library.ListReservations(ctx)
	require.NoError(t, err)
	var ready, queued int
	for _, r := range reservations {
		switch r.Status {
		case core.ReservationReady:
			ready++
		case core.ReservationQueued:
			queued++
		}
	}
	assert.Equal(t, 1, ready)
	assert.Equal(t, 1, queued)

	// Seeding twice must not duplicate anything.
	require.NoError(t, app.Seed(ctx))
	books, err = app.Library.ListBooks(ctx)
	require.NoError(t, err)
	assert.Len(t, books, 16)
}
