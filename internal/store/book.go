package store

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrNotFound      = errors.New("book not found")
	ErrDuplicateID   = errors.New("book id already exists")
	ErrInvalidField  = errors.New("invalid field")
	ErrNotSearchable = errors.New("field is not searchable")
	ErrNotInteger    = errors.New("value is not a non-negative integer")
	ErrNotOpen       = errors.New("database not opened")
)

// Book is one stock record.
type Book struct {
	ID     int64
	Title  string
	Author string
	Qty    int64
}

func (b Book) String() string {
	return fmt.Sprintf("id: %d | title: %s | author: %s | qty: %d", b.ID, b.Title, b.Author, b.Qty)
}

// SeedBooks is the stock loaded into an empty database on first startup.
func SeedBooks() []Book {
	return []Book{
		{ID: 3001, Title: "A Tale of Two Cities", Author: "Charles Dickens", Qty: 30},
		{ID: 3002, Title: "Harry Potter and the Philosopher's Stone", Author: "J.K. Rowling", Qty: 40},
		{ID: 3003, Title: "The Lion, the Witch and the Wardrobe", Author: "C.S. Lewis", Qty: 25},
		{ID: 3004, Title: "The Lord of the Rings", Author: "J.R.R. Tolkien", Qty: 37},
		{ID: 3005, Title: "Alice in Wonderland", Author: "Lewis Carroll", Qty: 12},
	}
}

// Field names a column of the book table.
// The zero value is not a valid field.
type Field int

const (
	FieldID Field = iota + 1
	FieldTitle
	FieldAuthor
	FieldQty
)

// Fields lists every updatable field in display order.
var Fields = []Field{FieldID, FieldTitle, FieldAuthor, FieldQty}

// SearchFields lists the fields a search may match on.
var SearchFields = []Field{FieldID, FieldTitle, FieldAuthor}

// ParseField maps operator input to a Field.
// Matching ignores case and surrounding space.
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "id":
		return FieldID, nil
	case "title":
		return FieldTitle, nil
	case "author":
		return FieldAuthor, nil
	case "qty":
		return FieldQty, nil
	}
	return 0, fmt.Errorf("%q: %w", s, ErrInvalidField)
}

func (f Field) String() string {
	switch f {
	case FieldID:
		return "id"
	case FieldTitle:
		return "title"
	case FieldAuthor:
		return "author"
	case FieldQty:
		return "qty"
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

// Valid reports whether f is one of the enumerated fields.
func (f Field) Valid() bool {
	return f >= FieldID && f <= FieldQty
}

// Integer reports whether the field holds an integer.
func (f Field) Integer() bool {
	return f == FieldID || f == FieldQty
}

// Searchable reports whether Find accepts the field.
func (f Field) Searchable() bool {
	return f == FieldID || f == FieldTitle || f == FieldAuthor
}

// Value converts operator text into the value stored in the field's column.
// Integer fields go through ParseCount, text fields are kept verbatim.
func (f Field) Value(s string) (any, error) {
	if !f.Valid() {
		return nil, ErrInvalidField
	}
	if f.Integer() {
		n, err := ParseCount(s)
		if err != nil {
			return nil, err
		}
		return n, nil
	}
	return s, nil
}

// ParseCount parses a non-negative base-10 integer.
// Only ASCII digits are accepted; signs, spaces inside the number and
// exponents are rejected rather than coerced.
func ParseCount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty input: %w", ErrNotInteger)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%q: %w", s, ErrNotInteger)
		}
	}
	n, err := strconv.ParseUint(s, 10, 63)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", s, ErrNotInteger)
	}
	return int64(n), nil
}
