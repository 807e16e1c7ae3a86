package core

import "context"

// Entity is anything the keyed stores can hold. Identifiers, once
// assigned, never change.
type Entity interface {
	EntityID() string
}

// Store is the keyed per-entity-type contract. Save upserts by key.
// FindByID and ExistsByID never treat a missing key as an error; the
// bool return carries that. FindAll returns a stable snapshot in a
// deterministic order (insertion order for the file backend, rowid
// order for SQLite).
//
// Writes made inside an open transaction are visible to subsequent
// reads on the same transaction immediately, but are not durable until
// the transaction commits. Any failure inside a transaction rolls back
// the writes on every store the transaction touched.
type Store[T Entity] interface {
	Save(ctx context.Context, entity T) error
	FindByID(ctx context.Context, id string) (T, bool, error)
	FindAll(ctx context.Context) ([]T, error)
	DeleteByID(ctx context.Context, id string) error
	ExistsByID(ctx context.Context, id string) (bool, error)
}

// StoreSet is one keyed store per entity type. A Storage exposes its
// auto-persisting stores through this interface, and hands a
// transaction-bound StoreSet to transaction bodies.
type StoreSet interface {
	Books() Store[Book]
	Copies() Store[Copy]
	Members() Store[Member]
	Loans() Store[Loan]
	Reservations() Store[Reservation]
}

// TxFunc is a transaction body. All reads and writes inside it must go
// through tx, the transaction handle, so that the engine can commit or
// roll back every touched store together. The ctx passed in carries
// the open transaction: a nested RunInTransaction call with it joins
// the outer transaction instead of opening its own.
type TxFunc func(ctx context.Context, tx StoreSet) error

// Storage owns one store per entity type plus the transaction
// boundary across all of them. Outside a transaction every store
// write is individually durable (auto-persist); inside one, all
// changed stores commit atomically or not at all.
type Storage interface {
	StoreSet

	// RunInTransaction executes fn inside a transaction. If fn returns
	// an error the in-memory state of every store is restored and the
	// durable state is untouched; otherwise all changes commit
	// atomically. A call nested inside an already-open transaction on
	// the same engine joins it: no new snapshot, no new commit
	// boundary.
	RunInTransaction(ctx context.Context, fn TxFunc) error

	Close() error
}

// EventType classifies an external change to an entity file.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event reports an entity file changed outside the engine.
type Event struct {
	Type      EventType
	File      string
	Timestamp int64 // Unix timestamp
}

// Watchable is implemented by storage engines that can report external
// changes to their underlying files.
type Watchable interface {
	Watch(ctx context.Context, pattern string) (<-chan Event, error)
}
