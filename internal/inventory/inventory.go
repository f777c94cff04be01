// Package inventory implements the stock operations the menu shell drives:
// add, update field by field, delete and exact-match search.
package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/maloquacious/ebookstore/internal/logger"
	"github.com/maloquacious/ebookstore/internal/store"
)

// Manager applies validated operator requests to a store.Store.
type Manager struct {
	store store.Store
	log   logger.Logger
}

// New returns a Manager over s. A nil log uses logger.Default.
func New(s store.Store, log logger.Logger) *Manager {
	if log == nil {
		log = logger.Default
	}
	return &Manager{store: s, log: log}
}

// Bootstrap prepares the store for use. A store without a schema is
// initialized and, when its book table is empty, loaded with store.SeedBooks.
// A store that was initialized before is never reseeded.
func (m *Manager) Bootstrap(ctx context.Context) error {
	state, err := m.store.CheckState(ctx)
	if err != nil {
		return fmt.Errorf("check store: %w", err)
	}
	m.log.Debug("store state %s", state)

	switch state {
	case store.StateReady:
		return nil
	case store.StateVersionMismatch:
		version, _ := m.store.GetSchemaVersion(ctx)
		return fmt.Errorf("schema version %q does not match %q", version, store.SchemaVersion)
	}

	n, err := m.store.InitSchema(ctx, store.SchemaVersion, store.SeedBooks())
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	if n > 0 {
		m.log.Info("seeded %d books", n)
	}
	return nil
}

// Exists reports whether a book with id is in stock.
func (m *Manager) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := m.store.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		m.log.Error("look up %d: %v", id, err)
		return false, err
	}
	return true, nil
}

// Add inserts a new book. It returns store.ErrDuplicateID when the id is in use.
func (m *Manager) Add(ctx context.Context, b store.Book) error {
	if b.ID < 0 || b.Qty < 0 {
		return fmt.Errorf("add %d: %w", b.ID, store.ErrNotInteger)
	}
	if err := m.store.Insert(ctx, b); err != nil {
		m.logFailure("add", b.ID, err)
		return err
	}
	m.log.Info("added book %d", b.ID)
	return nil
}

// UpdateField sets one field of the book with id from operator text and
// returns the updated record.
func (m *Manager) UpdateField(ctx context.Context, id int64, field store.Field, text string) (store.Book, error) {
	value, err := field.Value(text)
	if err != nil {
		return store.Book{}, err
	}
	b, err := m.store.Update(ctx, id, field, value)
	if err != nil {
		m.logFailure("update", id, err)
		return store.Book{}, err
	}
	m.log.Info("updated %s of book %d", field, id)
	return b, nil
}

// Delete removes the book with id. It returns store.ErrNotFound when absent.
func (m *Manager) Delete(ctx context.Context, id int64) error {
	if err := m.store.Delete(ctx, id); err != nil {
		m.logFailure("delete", id, err)
		return err
	}
	m.log.Info("deleted book %d", id)
	return nil
}

// Search returns the books whose field equals text exactly.
// An empty result is not an error.
func (m *Manager) Search(ctx context.Context, field store.Field, text string) ([]store.Book, error) {
	if !field.Searchable() {
		return nil, fmt.Errorf("search %s: %w", field, store.ErrNotSearchable)
	}
	value, err := field.Value(text)
	if err != nil {
		return nil, err
	}
	books, err := m.store.Find(ctx, field, value)
	if err != nil {
		m.log.Error("search by %s: %v", field, err)
		return nil, err
	}
	m.log.Debug("search %s=%q matched %d", field, text, len(books))
	return books, nil
}

// Count returns the number of books in stock.
func (m *Manager) Count(ctx context.Context) (int, error) {
	return m.store.Count(ctx)
}

// logFailure logs storage failures at error level; conflicts are ordinary
// operator mistakes and only reach debug.
func (m *Manager) logFailure(op string, id int64, err error) {
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrDuplicateID) {
		m.log.Debug("%s %d: %v", op, id, err)
		return
	}
	m.log.Error("%s %d: %v", op, id, err)
}
