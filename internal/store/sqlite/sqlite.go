package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/maloquacious/ebookstore/internal/store"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using modernc.org/sqlite.
type SQLiteStore struct {
	dbPath         string
	db             *sql.DB
	expectedSchema string
}

var _ store.Store = (*SQLiteStore)(nil)

// New creates a new SQLiteStore.
func New(dbPath string, expectedSchema string) *SQLiteStore {
	return &SQLiteStore{
		dbPath:         dbPath,
		expectedSchema: expectedSchema,
	}
}

// Open opens the SQLite database with safe defaults.
func (s *SQLiteStore) Open() error {
	db, err := sql.Open("sqlite", s.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// One operator, one connection. This also keeps ":memory:" databases
	// from splitting across pooled connections.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	s.db = db
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

// InitSchema creates the book and schema_migrations tables, loads seed
// into an empty book table and records version, all in one transaction.
// Returns the number of seed rows inserted.
func (s *SQLiteStore) InitSchema(ctx context.Context, version string, seed []store.Book) (int, error) {
	if s.db == nil {
		return 0, store.ErrNotOpen
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, initialSchema); err != nil {
		return 0, fmt.Errorf("failed to create schema: %w", err)
	}

	n, err := seedEmpty(ctx, tx, seed)
	if err != nil {
		return 0, err
	}

	// The version row goes last: a store without it is initialized again.
	_, err = tx.ExecContext(ctx, `INSERT OR IGNORE INTO schema_migrations (version, applied_at) VALUES (?, strftime('%s', 'now'))`, version)
	if err != nil {
		return 0, fmt.Errorf("failed to insert schema version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return n, nil
}

// CheckState returns the current state of the datastore.
func (s *SQLiteStore) CheckState(ctx context.Context) (store.StoreState, error) {
	if s.db == nil {
		return store.StateMissing, store.ErrNotOpen
	}

	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('schema_migrations', 'book')`).Scan(&count)
	if err != nil {
		return store.StateUninitialized, fmt.Errorf("failed to check schema tables: %w", err)
	}

	if count < 2 {
		return store.StateUninitialized, nil
	}

	version, err := s.GetSchemaVersion(ctx)
	if err != nil {
		return store.StateUninitialized, fmt.Errorf("failed to get schema version: %w", err)
	}

	if version != s.expectedSchema {
		return store.StateVersionMismatch, nil
	}

	return store.StateReady, nil
}

// GetSchemaVersion returns the current schema version from the database.
func (s *SQLiteStore) GetSchemaVersion(ctx context.Context) (string, error) {
	if s.db == nil {
		return "", store.ErrNotOpen
	}

	var version string
	err := s.db.QueryRowContext(ctx, `SELECT version FROM schema_migrations ORDER BY applied_at DESC LIMIT 1`).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query schema version: %w", err)
	}

	return version, nil
}

// seedEmpty inserts books if the book table is empty.
func seedEmpty(ctx context.Context, tx *sql.Tx, books []store.Book) (int, error) {
	var count int
	if err := tx.QueryRowContext(ctx, countBooks).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count books: %w", err)
	}
	if count > 0 || len(books) == 0 {
		return 0, nil
	}

	stmt, err := tx.PrepareContext(ctx, insertBook)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, b := range books {
		if _, err := stmt.ExecContext(ctx, b.ID, b.Title, b.Author, b.Qty); err != nil {
			return 0, fmt.Errorf("failed to seed book %d: %w", b.ID, err)
		}
	}
	return len(books), nil
}

// Count returns the number of books.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	if s.db == nil {
		return 0, store.ErrNotOpen
	}
	var count int
	if err := s.db.QueryRowContext(ctx, countBooks).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count books: %w", err)
	}
	return count, nil
}

// Insert adds a new book.
func (s *SQLiteStore) Insert(ctx context.Context, b store.Book) error {
	if s.db == nil {
		return store.ErrNotOpen
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	found, err := exists(ctx, tx, b.ID)
	if err != nil {
		return err
	}
	if found {
		return fmt.Errorf("id %d: %w", b.ID, store.ErrDuplicateID)
	}

	if _, err := tx.ExecContext(ctx, insertBook, b.ID, b.Title, b.Author, b.Qty); err != nil {
		return fmt.Errorf("failed to insert book %d: %w", b.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Get returns the book with the given id.
func (s *SQLiteStore) Get(ctx context.Context, id int64) (store.Book, error) {
	if s.db == nil {
		return store.Book{}, store.ErrNotOpen
	}
	return get(ctx, s.db, id)
}

// Update sets one field of a book and returns the stored result.
func (s *SQLiteStore) Update(ctx context.Context, id int64, field store.Field, value any) (store.Book, error) {
	if s.db == nil {
		return store.Book{}, store.ErrNotOpen
	}
	query, ok := updateStatements[field]
	if !ok {
		return store.Book{}, fmt.Errorf("update %s: %w", field, store.ErrInvalidField)
	}
	if err := checkValue(field, value); err != nil {
		return store.Book{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return store.Book{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	found, err := exists(ctx, tx, id)
	if err != nil {
		return store.Book{}, err
	}
	if !found {
		return store.Book{}, fmt.Errorf("id %d: %w", id, store.ErrNotFound)
	}

	target := id
	if field == store.FieldID {
		target = value.(int64)
		if target != id {
			taken, err := exists(ctx, tx, target)
			if err != nil {
				return store.Book{}, err
			}
			if taken {
				return store.Book{}, fmt.Errorf("id %d: %w", target, store.ErrDuplicateID)
			}
		}
	}

	if _, err := tx.ExecContext(ctx, query, value, id); err != nil {
		return store.Book{}, fmt.Errorf("failed to update %s of book %d: %w", field, id, err)
	}

	b, err := get(ctx, tx, target)
	if err != nil {
		return store.Book{}, err
	}

	if err := tx.Commit(); err != nil {
		return store.Book{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return b, nil
}

// Delete removes the book with the given id.
func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	if s.db == nil {
		return store.ErrNotOpen
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	found, err := exists(ctx, tx, id)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("id %d: %w", id, store.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, deleteBook, id); err != nil {
		return fmt.Errorf("failed to delete book %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Find returns every book whose field equals value.
func (s *SQLiteStore) Find(ctx context.Context, field store.Field, value any) ([]store.Book, error) {
	if s.db == nil {
		return nil, store.ErrNotOpen
	}
	query, ok := findStatements[field]
	if !ok {
		return nil, fmt.Errorf("search %s: %w", field, store.ErrNotSearchable)
	}
	if err := checkValue(field, value); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, value)
	if err != nil {
		return nil, fmt.Errorf("failed to search by %s: %w", field, err)
	}
	return scanRows(rows)
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func exists(ctx context.Context, q querier, id int64) (bool, error) {
	var count int
	if err := q.QueryRowContext(ctx, countBookID, id).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to look up book %d: %w", id, err)
	}
	return count > 0, nil
}

func get(ctx context.Context, q querier, id int64) (store.Book, error) {
	var b store.Book
	err := q.QueryRowContext(ctx, selectBook+` WHERE id = ?`, id).Scan(&b.ID, &b.Title, &b.Author, &b.Qty)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Book{}, fmt.Errorf("id %d: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return store.Book{}, fmt.Errorf("failed to read book %d: %w", id, err)
	}
	return b, nil
}

func scanRows(rows *sql.Rows) ([]store.Book, error) {
	defer rows.Close()
	results := []store.Book{}
	for rows.Next() {
		var b store.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Qty); err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		results = append(results, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read books: %w", err)
	}
	return results, nil
}

// checkValue rejects values whose Go type does not match the column.
func checkValue(field store.Field, value any) error {
	if field.Integer() {
		n, ok := value.(int64)
		if !ok || n < 0 {
			return fmt.Errorf("%s = %v: %w", field, value, store.ErrNotInteger)
		}
		return nil
	}
	if _, ok := value.(string); !ok {
		return fmt.Errorf("%s = %v: %w", field, value, store.ErrInvalidField)
	}
	return nil
}
