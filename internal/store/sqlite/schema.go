package sqlite

import "github.com/maloquacious/ebookstore/internal/store"

// initialSchema creates the stock table and the version table.
// The book table layout matches databases created by earlier releases, so an
// existing ebookstore.db is adopted as is.
const initialSchema = `
CREATE TABLE IF NOT EXISTS book (
    id     INTEGER PRIMARY KEY,
    title  TEXT,
    author TEXT,
    qty    INTEGER
);

CREATE TABLE IF NOT EXISTS schema_migrations (
    version TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
);
`

const (
	selectBook  = `SELECT id, title, author, qty FROM book`
	countBooks  = `SELECT COUNT(*) FROM book`
	countBookID = `SELECT COUNT(*) FROM book WHERE id = ?`
	insertBook  = `INSERT INTO book (id, title, author, qty) VALUES (?, ?, ?, ?)`
	deleteBook  = `DELETE FROM book WHERE id = ?`
)

// updateStatements and findStatements are the only SQL that depends on a
// field. Operator text never reaches a statement, only a store.Field.
var updateStatements = map[store.Field]string{
	store.FieldID:     `UPDATE book SET id = ? WHERE id = ?`,
	store.FieldTitle:  `UPDATE book SET title = ? WHERE id = ?`,
	store.FieldAuthor: `UPDATE book SET author = ? WHERE id = ?`,
	store.FieldQty:    `UPDATE book SET qty = ? WHERE id = ?`,
}

var findStatements = map[store.Field]string{
	store.FieldID:     selectBook + ` WHERE id = ? ORDER BY id`,
	store.FieldTitle:  selectBook + ` WHERE title = ? ORDER BY id`,
	store.FieldAuthor: selectBook + ` WHERE author = ? ORDER BY id`,
}
