package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/librum-dev/librum/pkg/core"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// fileStore is one keyed in-memory collection backed by one JSON file.
// Records keep their insertion order, which makes FindAll (and the
// serialized file) deterministic. While autoPersist is on, every write
// is immediately committed to the file; the engine turns it off for
// the duration of a transaction and commits all stores together.
type fileStore[T core.Entity] struct {
	mu          sync.Mutex
	path        string
	items       map[string]T
	order       []string
	autoPersist bool
	dirty       bool
}

// storeSnapshot captures a store's full in-memory contents.
type storeSnapshot[T core.Entity] struct {
	items map[string]T
	order []string
}

func newFileStore[T core.Entity](path string) (*fileStore[T], error) {
	s := &fileStore[T]{
		path:        path,
		items:       make(map[string]T),
		autoPersist: true,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// load reads the entity file, if present. A missing file is an empty
// store; an unreadable or corrupt file is a storage fault.
func (s *fileStore[T]) load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return core.StorageFailed("load "+filepath.Base(s.path), err)
	}
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return core.StorageFailed("parse "+filepath.Base(s.path), err)
	}
	s.items = make(map[string]T, len(records))
	s.order = s.order[:0]
	for _, record := range records {
		id := record.EntityID()
		if _, ok := s.items[id]; !ok {
			s.order = append(s.order, id)
		}
		s.items[id] = record
	}
	return nil
}

// Save upserts by key.
func (s *fileStore[T]) Save(ctx context.Context, entity T) error {
	id := entity.EntityID()
	if id == "" {
		return core.Invalidf("entity ID must not be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		s.order = append(s.order, id)
	}
	s.items[id] = entity
	if s.autoPersist {
		return s.persistLocked()
	}
	s.dirty = true
	return nil
}

// FindByID looks up one record; the bool reports whether it exists.
func (s *fileStore[T]) FindByID(ctx context.Context, id string) (T, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entity, ok := s.items[id]
	return entity, ok, nil
}

// FindAll returns every record in insertion order.
func (s *fileStore[T]) FindAll(ctx context.Context) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recordsLocked(), nil
}

// DeleteByID removes a record; deleting a missing key is a no-op.
func (s *fileStore[T]) DeleteByID(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return nil
	}
	delete(s.items, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.autoPersist {
		return s.persistLocked()
	}
	s.dirty = true
	return nil
}

// ExistsByID reports whether the key is present.
func (s *fileStore[T]) ExistsByID(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items[id]
	return ok, nil
}

func (s *fileStore[T]) recordsLocked() []T {
	records := make([]T, 0, len(s.order))
	for _, id := range s.order {
		records = append(records, s.items[id])
	}
	return records
}

// persistLocked durably commits this store's file using the atomic
// write helper. Callers hold s.mu.
func (s *fileStore[T]) persistLocked() error {
	data, err := s.marshalLocked()
	if err != nil {
		return err
	}
	if err := writeFileAtomic(s.path, data, 0644); err != nil {
		return core.StorageFailed("persist "+filepath.Base(s.path), err)
	}
	s.dirty = false
	return nil
}

func (s *fileStore[T]) marshalLocked() ([]byte, error) {
	data, err := json.MarshalIndent(s.recordsLocked(), "", "  ")
	if err != nil {
		return nil, core.StorageFailed("serialize "+filepath.Base(s.path), err)
	}
	return append(data, '\n'), nil
}

// The engine drives the methods below while holding its transaction
// lock, so they take s.mu themselves and never overlap a commit.

func (s *fileStore[T]) fileName() string { return filepath.Base(s.path) }

func (s *fileStore[T]) setAutoPersist(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoPersist = on
}

func (s *fileStore[T]) changed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

func (s *fileStore[T]) snapshot() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := storeSnapshot[T]{
		items: make(map[string]T, len(s.items)),
		order: append([]string(nil), s.order...),
	}
	for id, entity := range s.items {
		snap.items[id] = entity
	}
	return snap
}

func (s *fileStore[T]) restore(state any) {
	snap := state.(storeSnapshot[T])
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = snap.items
	s.order = snap.order
	s.dirty = false
}

// writeTo serializes the current contents to an arbitrary path. Used
// by the engine to stage temp files inside the pending-transaction
// directory.
func (s *fileStore[T]) writeTo(path string) error {
	s.mu.Lock()
	data, err := s.marshalLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if err := writeFileAtomic(path, data, 0644); err != nil {
		return core.StorageFailed("stage "+filepath.Base(path), err)
	}
	return nil
}

// clearDirty marks the store clean after a successful engine commit.
func (s *fileStore[T]) clearDirty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = false
}
