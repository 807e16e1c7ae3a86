// Package librum is the Composition Root for the Librum application.
//
// It connects the domain engine (catalog, circulation, reservations)
// with the storage adapters (JSON files or SQLite) behind a single
// transactional contract.
//
// Philosophy:
//
// Librum treats a directory of pretty-printed JSON files as a small
// transactional database: multi-entity operations either commit all
// of their file writes atomically or leave the files untouched, and a
// crash mid-commit is repaired on the next startup by replaying a
// manifest. The same store and transaction contracts are also served
// by a SQLite backend, selected by configuration.
//
// Features:
//
//   - **Crash-safe commits**: pending-directory staging plus a rename
//     manifest; the manifest's presence is the sole durability boundary.
//   - **Snapshot rollback**: a failed transaction restores every
//     store's in-memory state, so partial effects are never observed.
//   - **Domain invariants**: copy/loan/reservation state machines with
//     policy-driven loan limits and fines.
//   - **Fuzzy search**: n-gram ranking over catalog and member fields.
//   - **Two backends**: JSON files out of the box, SQLite via config.
//
// Usage:
//
//	cfg := librum.DefaultConfig()
//	cfg.DataDir = "./data"
//	app, err := librum.New(cfg, librum.WithLogger(logger))
//
//	// Lend a copy of a book
//	loan, err := app.Library.Lend(ctx, "9780000000001", "MEM-001", librum.Date{}, librum.Date{})
package librum
