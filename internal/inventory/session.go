package inventory

import (
	"context"
	"fmt"

	"github.com/maloquacious/ebookstore/internal/store"
)

// Change is one field update applied during an UpdateSession.
type Change struct {
	Field store.Field
	Value string
}

// UpdateSession tracks one operator's edits to a single record.
// It follows the record when its id field is changed.
type UpdateSession struct {
	m       *Manager
	id      int64
	record  store.Book
	changes []Change
}

// BeginUpdate starts a session on the book with id.
// It returns store.ErrNotFound when there is no such book.
func (m *Manager) BeginUpdate(ctx context.Context, id int64) (*UpdateSession, error) {
	b, err := m.store.Get(ctx, id)
	if err != nil {
		m.logFailure("begin update", id, err)
		return nil, err
	}
	return &UpdateSession{m: m, id: id, record: b}, nil
}

// ID returns the current id of the record being edited.
func (s *UpdateSession) ID() int64 {
	return s.id
}

// Record returns the record as of the last successful change.
func (s *UpdateSession) Record() store.Book {
	return s.record
}

// Changes returns the changes applied so far, oldest first.
func (s *UpdateSession) Changes() []Change {
	return append([]Change(nil), s.changes...)
}

// Apply updates one field of the session's record.
// A failed change leaves the session and the record untouched.
func (s *UpdateSession) Apply(ctx context.Context, field store.Field, text string) (store.Book, error) {
	if !field.Valid() {
		return store.Book{}, fmt.Errorf("%s: %w", field, store.ErrInvalidField)
	}
	b, err := s.m.UpdateField(ctx, s.id, field, text)
	if err != nil {
		return store.Book{}, err
	}
	s.id = b.ID
	s.record = b
	s.changes = append(s.changes, Change{Field: field, Value: text})
	return b, nil
}
