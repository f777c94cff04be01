package store

import "context"

// StoreState represents the initialization state of the datastore.
type StoreState int

const (
	StateMissing         StoreState = iota // File doesn't exist
	StateUninitialized                     // File exists but no schema
	StateVersionMismatch                   // Schema exists but wrong version
	StateReady                             // Initialized and correct version
)

func (s StoreState) String() string {
	switch s {
	case StateMissing:
		return "missing"
	case StateUninitialized:
		return "uninitialized"
	case StateVersionMismatch:
		return "version mismatch"
	case StateReady:
		return "ready"
	}
	return "unknown"
}

// Store defines the book stock datastore contract.
// Every mutating method runs in its own transaction and either applies
// completely or not at all.
type Store interface {
	// Open opens the datastore connection
	Open() error

	// Close closes the datastore connection
	Close() error

	// InitSchema creates the book and schema_migrations tables, loads seed
	// when the book table is empty and records the schema version in a
	// single transaction. It is safe to call on a database that already has
	// a book table. Returns the number of seed rows inserted.
	InitSchema(ctx context.Context, version string, seed []Book) (int, error)

	// CheckState returns the current state of the datastore
	CheckState(ctx context.Context) (StoreState, error)

	// GetSchemaVersion returns the current schema version from the database
	GetSchemaVersion(ctx context.Context) (string, error)

	// Count returns the number of books.
	Count(ctx context.Context) (int, error)

	// Insert adds a book. Returns ErrDuplicateID if the id is in use.
	Insert(ctx context.Context, b Book) error

	// Get returns the book with the given id or ErrNotFound.
	Get(ctx context.Context, id int64) (Book, error)

	// Update sets one field of the book with the given id and returns the
	// book as stored afterwards. Returns ErrNotFound if the id is absent and
	// ErrDuplicateID if the id field is moved onto another book's id.
	Update(ctx context.Context, id int64, field Field, value any) (Book, error)

	// Delete removes the book with the given id or returns ErrNotFound.
	Delete(ctx context.Context, id int64) error

	// Find returns every book whose field equals value, ordered by id.
	Find(ctx context.Context, field Field, value any) ([]Book, error)
}
