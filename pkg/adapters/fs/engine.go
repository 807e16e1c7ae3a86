// Package fs implements the file-backed transactional storage engine.
// Each entity type lives in one pretty-printed JSON file; transactions
// commit all changed files through a pending-transaction directory
// with a manifest, making a crash at any point recoverable on the next
// open.
package fs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/librum-dev/librum/pkg/core"
)

const (
	booksFile        = "books.json"
	copiesFile       = "copies.json"
	membersFile      = "members.json"
	loansFile        = "loans.json"
	reservationsFile = "reservations.json"

	// pendingTxDir holds staged files during a commit. Its manifest is
	// the durability boundary: present means the commit must be
	// replayed, absent means the transaction never happened.
	pendingTxDir = "pending-tx"
	manifestFile = "manifest.txt"
)

// Config holds the settings for opening a file-backed engine.
type Config struct {
	Dir    string
	Logger *slog.Logger
}

// Engine is the file-backed implementation of core.Storage.
//
// Concurrency follows the single-writer model: one mutex serializes
// transactions, and the snapshot/rollback state is engine-wide. A
// RunInTransaction call nested inside an open transaction (detected
// through the context) joins it instead of deadlocking on the lock.
type Engine struct {
	dir    string
	logger *slog.Logger

	txMu sync.Mutex

	books        *fileStore[core.Book]
	copies       *fileStore[core.Copy]
	members      *fileStore[core.Member]
	loans        *fileStore[core.Loan]
	reservations *fileStore[core.Reservation]
	stores       []enginestore
}

// enginestore is the untyped view the engine needs of each fileStore.
type enginestore interface {
	fileName() string
	setAutoPersist(on bool)
	changed() bool
	snapshot() any
	restore(state any)
	writeTo(path string) error
	clearDirty()
}

// Open recovers any pending transaction left by a crash, then loads
// every entity file into memory.
func Open(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, core.StorageFailed("create data dir", err)
	}

	e := &Engine{dir: cfg.Dir, logger: logger}
	if err := e.recoverPending(); err != nil {
		return nil, err
	}

	var err error
	if e.books, err = newFileStore[core.Book](filepath.Join(cfg.Dir, booksFile)); err != nil {
		return nil, err
	}
	if e.copies, err = newFileStore[core.Copy](filepath.Join(cfg.Dir, copiesFile)); err != nil {
		return nil, err
	}
	if e.members, err = newFileStore[core.Member](filepath.Join(cfg.Dir, membersFile)); err != nil {
		return nil, err
	}
	if e.loans, err = newFileStore[core.Loan](filepath.Join(cfg.Dir, loansFile)); err != nil {
		return nil, err
	}
	if e.reservations, err = newFileStore[core.Reservation](filepath.Join(cfg.Dir, reservationsFile)); err != nil {
		return nil, err
	}
	e.stores = []enginestore{e.books, e.copies, e.members, e.loans, e.reservations}
	return e, nil
}

func (e *Engine) Books() core.Store[core.Book]               { return e.books }
func (e *Engine) Copies() core.Store[core.Copy]              { return e.copies }
func (e *Engine) Members() core.Store[core.Member]           { return e.members }
func (e *Engine) Loans() core.Store[core.Loan]               { return e.loans }
func (e *Engine) Reservations() core.Store[core.Reservation] { return e.reservations }

// Close is a no-op: every committed write is already durable.
func (e *Engine) Close() error { return nil }

// txKey marks a context as carrying this engine's open transaction.
type txKey struct{}

// RunInTransaction implements core.Storage. On entry it suspends
// auto-persist and snapshots every store; on failure it restores the
// snapshots and leaves the durable files untouched; on success it
// commits every changed store atomically.
func (e *Engine) RunInTransaction(ctx context.Context, fn core.TxFunc) error {
	if owner, ok := ctx.Value(txKey{}).(*Engine); ok && owner == e {
		// Nested call: join the outer transaction.
		return fn(ctx, e)
	}

	e.txMu.Lock()
	defer e.txMu.Unlock()

	snapshots := make([]any, len(e.stores))
	for i, s := range e.stores {
		snapshots[i] = s.snapshot()
	}
	for _, s := range e.stores {
		s.setAutoPersist(false)
	}
	defer func() {
		for _, s := range e.stores {
			s.setAutoPersist(true)
		}
	}()

	txCtx := context.WithValue(ctx, txKey{}, e)
	if err := fn(txCtx, e); err != nil {
		for i, s := range e.stores {
			s.restore(snapshots[i])
		}
		return err
	}
	return e.commit()
}

// commit stages every changed store into the pending-transaction
// directory, writes the manifest, renames the staged files onto their
// destinations, and removes the directory. The manifest write is the
// point of no return: before it, a crash means the transaction never
// happened; after it, recovery replays the remaining renames.
func (e *Engine) commit() error {
	var changed []enginestore
	for _, s := range e.stores {
		if s.changed() {
			changed = append(changed, s)
		}
	}
	if len(changed) == 0 {
		return nil
	}

	txDir := filepath.Join(e.dir, pendingTxDir)
	if err := os.MkdirAll(txDir, 0755); err != nil {
		return core.StorageFailed("create pending transaction dir", err)
	}

	var manifest strings.Builder
	for _, s := range changed {
		tempName := s.fileName() + ".new"
		if err := s.writeTo(filepath.Join(txDir, tempName)); err != nil {
			os.RemoveAll(txDir)
			return err
		}
		manifest.WriteString(tempName + "|" + s.fileName() + "\n")
	}

	manifestPath := filepath.Join(txDir, manifestFile)
	if err := writeFileAtomic(manifestPath, []byte(manifest.String()), 0644); err != nil {
		os.RemoveAll(txDir)
		return core.StorageFailed("write transaction manifest", err)
	}

	for _, s := range changed {
		source := filepath.Join(txDir, s.fileName()+".new")
		if err := moveReplacing(source, filepath.Join(e.dir, s.fileName())); err != nil {
			// The manifest is durable, so the remaining renames can be
			// replayed before surfacing the fault.
			if recoverErr := e.recoverPending(); recoverErr != nil {
				return core.StorageFailed("commit transaction", errors.Join(err, recoverErr))
			}
			return core.StorageFailed("commit transaction", err)
		}
	}

	if err := os.Remove(manifestPath); err != nil && !os.IsNotExist(err) {
		e.logger.Debug("failed to remove manifest", "error", err)
	}
	if err := os.Remove(txDir); err != nil && !os.IsNotExist(err) {
		e.logger.Debug("failed to remove pending transaction dir", "error", err)
	}
	for _, s := range changed {
		s.clearDirty()
	}
	e.logger.Debug("transaction committed", "files", len(changed))
	return nil
}

// recoverPending replays a commit interrupted by a crash. The manifest
// fully determines the remaining work; a listed temp file that no
// longer exists means its rename already completed. A pending
// directory without a manifest is raw litter from before the
// durability boundary and is simply removed.
func (e *Engine) recoverPending() error {
	txDir := filepath.Join(e.dir, pendingTxDir)
	manifestPath := filepath.Join(txDir, manifestFile)

	data, err := os.ReadFile(manifestPath)
	if errors.Is(err, os.ErrNotExist) {
		if _, statErr := os.Stat(txDir); statErr == nil {
			e.logger.Debug("removing stale pending transaction dir")
			if rmErr := os.RemoveAll(txDir); rmErr != nil {
				return core.StorageFailed("remove stale pending transaction dir", rmErr)
			}
		}
		return nil
	}
	if err != nil {
		return core.StorageFailed("read transaction manifest", err)
	}

	e.logger.Info("recovering interrupted transaction")
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "|", 2)
		if len(parts) != 2 {
			continue
		}
		source := filepath.Join(txDir, parts[0])
		if _, statErr := os.Stat(source); statErr != nil {
			continue // rename already completed before the crash
		}
		if moveErr := moveReplacing(source, filepath.Join(e.dir, parts[1])); moveErr != nil {
			return core.StorageFailed("replay transaction manifest", moveErr)
		}
	}

	if err := os.Remove(manifestPath); err != nil && !os.IsNotExist(err) {
		return core.StorageFailed("remove transaction manifest", err)
	}
	if err := os.RemoveAll(txDir); err != nil {
		return core.StorageFailed("remove pending transaction dir", err)
	}
	return nil
}
