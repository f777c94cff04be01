package inventory

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/maloquacious/ebookstore/internal/logger"
	"github.com/maloquacious/ebookstore/internal/store"
	"github.com/maloquacious/ebookstore/internal/store/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T, dbPath string) (*Manager, *bytes.Buffer) {
	t.Helper()
	s := sqlite.New(dbPath, store.SchemaVersion)
	require.NoError(t, s.Open())
	t.Cleanup(func() { _ = s.Close() })

	var logs bytes.Buffer
	m := New(s, logger.New(&logs, zerolog.DebugLevel))
	require.NoError(t, m.Bootstrap(context.Background()))
	return m, &logs
}

func testManager(t *testing.T) *Manager {
	t.Helper()
	m, _ := newManager(t, filepath.Join(t.TempDir(), store.DefaultDBFile))
	return m
}

func count(t *testing.T, m *Manager) int {
	t.Helper()
	n, err := m.Count(context.Background())
	require.NoError(t, err)
	return n
}

func TestAddThenSearch(t *testing.T) {
	ctx := context.Background()
	m := testManager(t)

	b := store.Book{ID: 1234, Title: "Middlemarch", Author: "George Eliot", Qty: 6}
	require.NoError(t, m.Add(ctx, b))

	got, err := m.Search(ctx, store.FieldID, "1234")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, b, got[0])
}

func TestAddDuplicateID(t *testing.T) {
	ctx := context.Background()
	m := testManager(t)
	before := count(t, m)

	err := m.Add(ctx, store.Book{ID: 3001, Title: "Bleak House", Author: "Charles Dickens", Qty: 1})
	require.ErrorIs(t, err, store.ErrDuplicateID)
	assert.Equal(t, before, count(t, m))
}

func TestAddRejectsNegative(t *testing.T) {
	m := testManager(t)
	err := m.Add(context.Background(), store.Book{ID: 1, Title: "t", Author: "a", Qty: -3})
	assert.ErrorIs(t, err, store.ErrNotInteger)
}

func TestUpdateQty(t *testing.T) {
	ctx := context.Background()
	m := testManager(t)

	got, err := m.UpdateField(ctx, 3004, store.FieldQty, "99")
	require.NoError(t, err)
	want := store.Book{ID: 3004, Title: "The Lord of the Rings", Author: "J.R.R. Tolkien", Qty: 99}
	assert.Equal(t, want, got)

	found, err := m.Search(ctx, store.FieldID, "3004")
	require.NoError(t, err)
	assert.Equal(t, []store.Book{want}, found)
}

func TestUpdateMissingID(t *testing.T) {
	ctx := context.Background()
	m := testManager(t)

	_, err := m.UpdateField(ctx, 1, store.FieldTitle, "Nothing")
	require.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, 5, count(t, m))

	got, err := m.Search(ctx, store.FieldTitle, "Nothing")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUpdateRejectsText(t *testing.T) {
	m := testManager(t)
	_, err := m.UpdateField(context.Background(), 3001, store.FieldQty, "lots")
	assert.ErrorIs(t, err, store.ErrNotInteger)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	m := testManager(t)

	require.NoError(t, m.Delete(ctx, 3002))
	assert.Equal(t, 4, count(t, m))

	got, err := m.Search(ctx, store.FieldID, "3002")
	require.NoError(t, err)
	assert.Empty(t, got)

	exists, err := m.Exists(ctx, 3001)
	require.NoError(t, err)
	assert.True(t, exists, "only the deleted record is removed")
}

func TestDeleteMissingID(t *testing.T) {
	m := testManager(t)
	err := m.Delete(context.Background(), 77)
	require.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, 5, count(t, m))
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	m := testManager(t)

	got, err := m.Search(ctx, store.FieldAuthor, "Lewis Carroll")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(3005), got[0].ID)

	got, err = m.Search(ctx, store.FieldAuthor, "Lewis")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = m.Search(ctx, store.FieldQty, "30")
	assert.ErrorIs(t, err, store.ErrNotSearchable)

	_, err = m.Search(ctx, store.FieldID, "x")
	assert.ErrorIs(t, err, store.ErrNotInteger)
}

func TestBootstrapSeedsOnce(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), store.DefaultDBFile)

	first, logs := newManager(t, dbPath)
	assert.Contains(t, logs.String(), "seeded 5 books")
	got, err := first.Search(ctx, store.FieldID, "3001")
	require.NoError(t, err)
	require.Equal(t, []store.Book{{ID: 3001, Title: "A Tale of Two Cities", Author: "Charles Dickens", Qty: 30}}, got)

	// Emptying the table must not bring the seed back on the next start.
	for _, b := range store.SeedBooks() {
		require.NoError(t, first.Delete(ctx, b.ID))
	}

	second, _ := newManager(t, dbPath)
	assert.Equal(t, 0, count(t, second))
}

func TestBootstrapSecondStartNoDuplicates(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), store.DefaultDBFile)

	newManager(t, dbPath)
	second, _ := newManager(t, dbPath)

	got, err := second.Search(ctx, store.FieldTitle, "A Tale of Two Cities")
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 5, count(t, second))
}

func TestUpdateSession(t *testing.T) {
	ctx := context.Background()
	m := testManager(t)

	_, err := m.BeginUpdate(ctx, 42)
	require.ErrorIs(t, err, store.ErrNotFound)

	s, err := m.BeginUpdate(ctx, 3003)
	require.NoError(t, err)
	assert.Equal(t, int64(3003), s.ID())

	_, err = s.Apply(ctx, store.FieldID, "6003")
	require.NoError(t, err)
	assert.Equal(t, int64(6003), s.ID(), "session follows the new id")

	b, err := s.Apply(ctx, store.FieldQty, "1")
	require.NoError(t, err)
	assert.Equal(t, store.Book{ID: 6003, Title: "The Lion, the Witch and the Wardrobe", Author: "C.S. Lewis", Qty: 1}, b)

	_, err = s.Apply(ctx, store.FieldID, "3001")
	require.ErrorIs(t, err, store.ErrDuplicateID)
	assert.Equal(t, int64(6003), s.ID())

	_, err = s.Apply(ctx, store.Field(0), "x")
	require.ErrorIs(t, err, store.ErrInvalidField)

	assert.Equal(t, []Change{
		{Field: store.FieldID, Value: "6003"},
		{Field: store.FieldQty, Value: "1"},
	}, s.Changes())
	assert.Equal(t, b, s.Record())

	exists, err := m.Exists(ctx, 3003)
	require.NoError(t, err)
	assert.False(t, exists)
}
