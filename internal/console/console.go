// Package console runs the numbered menu the operator uses to manage stock.
// Invalid input is answered with a message and the same question again.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/maloquacious/ebookstore/internal/inventory"
	"github.com/maloquacious/ebookstore/internal/logger"
	"github.com/maloquacious/ebookstore/internal/store"
)

const menu = `
Would you like to:
    1. Enter book
    2. Update book
    3. Delete book
    4. Search books
    0. Exit

    Enter selection: `

var border = strings.Repeat("-", 10)

// Console reads operator lines from in and writes prompts and results to out.
type Console struct {
	m   *inventory.Manager
	in  *bufio.Reader
	out io.Writer
	log logger.Logger
}

// New returns a Console driving m.
func New(m *inventory.Manager, in io.Reader, out io.Writer, log logger.Logger) *Console {
	if log == nil {
		log = logger.Default
	}
	return &Console{m: m, in: bufio.NewReader(in), out: out, log: log}
}

// Run loops over the menu until the operator exits or input ends.
// Only a failure to read input is returned.
func (c *Console) Run(ctx context.Context) error {
	for {
		choice, err := c.readLine(menu)
		if err != nil {
			return c.finish(err)
		}
		n, err := store.ParseCount(choice)
		if err != nil {
			c.println("Incorrect input - please enter selection as an integer.")
			c.println(border)
			continue
		}

		switch n {
		case 1:
			err = c.addBook(ctx)
		case 2:
			err = c.updateBook(ctx)
		case 3:
			err = c.deleteBook(ctx)
		case 4:
			err = c.searchBooks(ctx)
		case 0:
			c.printf("\nGoodbye.\n%s\n", border)
			return nil
		default:
			c.println("Invalid selection - please try again.")
			continue
		}
		if err != nil {
			return c.finish(err)
		}
	}
}

func (c *Console) finish(err error) error {
	if errors.Is(err, io.EOF) {
		c.log.Debug("input closed")
		return nil
	}
	return err
}

func (c *Console) addBook(ctx context.Context) error {
	var id int64
	for {
		n, err := c.promptCount("Enter book ID: ", "Please enter ID as an integer.")
		if err != nil {
			return err
		}
		exists, err := c.m.Exists(ctx, n)
		if err != nil {
			c.reportError(err)
			return nil
		}
		if !exists {
			id = n
			break
		}
		c.printf("ID %d already exists. Please enter a unique ID.\n", n)
	}

	title, err := c.readLine("Enter book title: ")
	if err != nil {
		return err
	}
	author, err := c.readLine("Enter name of author: ")
	if err != nil {
		return err
	}
	qty, err := c.promptCount("Enter quantity in stock: ", "Please enter quantity as an integer.")
	if err != nil {
		return err
	}

	b := store.Book{ID: id, Title: title, Author: author, Qty: qty}
	if err := c.m.Add(ctx, b); err != nil {
		if errors.Is(err, store.ErrDuplicateID) {
			c.printf("ID %d already exists. Please enter a unique ID.\n", id)
			return nil
		}
		c.reportError(err)
		return nil
	}
	c.printf("\n%s has been added to the database. Full record:\n%s\n\n%s\n", title, b, border)
	return nil
}

func (c *Console) updateBook(ctx context.Context) error {
	for {
		session, err := c.selectRecord(ctx)
		if err != nil || session == nil {
			return err
		}
		if err := c.editRecord(ctx, session); err != nil {
			return err
		}
	}
}

// selectRecord returns nil without error when the operator enters done.
func (c *Console) selectRecord(ctx context.Context) (*inventory.UpdateSession, error) {
	for {
		line, err := c.readLine("\nRecord to update (enter ID, or enter 'done' to return to main menu): ")
		if err != nil {
			return nil, err
		}
		if isDone(line) {
			return nil, nil
		}
		id, err := store.ParseCount(line)
		if err != nil {
			c.println("Enter ID as an integer.")
			continue
		}
		session, err := c.m.BeginUpdate(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			c.printf("ID %d does not match any records.\n", id)
			continue
		}
		if err != nil {
			c.reportError(err)
			return nil, nil
		}
		return session, nil
	}
}

func (c *Console) editRecord(ctx context.Context, session *inventory.UpdateSession) error {
	for {
		line, err := c.readLine("\nEnter field to update (id/title/author/qty), or enter 'done' to finish: ")
		if err != nil {
			return err
		}
		if isDone(line) {
			return nil
		}
		field, err := store.ParseField(line)
		if err != nil {
			c.println("Invalid field selection. Please try again.")
			continue
		}

		var value string
		if field.Integer() {
			n, err := c.promptCount(fmt.Sprintf("Enter new %s: ", field), fmt.Sprintf("Enter new %s as an integer.", field))
			if err != nil {
				return err
			}
			value = fmt.Sprint(n)
		} else {
			value, err = c.readLine(fmt.Sprintf("Enter updated %s: ", field))
			if err != nil {
				return err
			}
		}

		before := session.ID()
		b, err := session.Apply(ctx, field, value)
		switch {
		case errors.Is(err, store.ErrDuplicateID):
			c.printf("ID %s already exists. Please enter a unique ID.\n", value)
			continue
		case err != nil:
			c.reportError(err)
			return nil
		}
		c.printf("\nThe %s of record %d has been updated.\nUpdated record:\n%s\n\n%s\n", field, before, b, border)
	}
}

func (c *Console) deleteBook(ctx context.Context) error {
	id, err := c.promptCount("Enter ID of book to delete: ", "Please enter ID as an integer.")
	if err != nil {
		return err
	}
	err = c.m.Delete(ctx, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.printf("ID %d does not match any records.\n", id)
	case err != nil:
		c.reportError(err)
	default:
		c.printf("\nRecord with ID %d has been deleted.\n", id)
	}
	return nil
}

func (c *Console) searchBooks(ctx context.Context) error {
	var field store.Field
	for {
		line, err := c.readLine("\nSearch by field (id/title/author): ")
		if err != nil {
			return err
		}
		field, err = store.ParseField(line)
		if err == nil && field.Searchable() {
			break
		}
		c.println("\nInvalid field. Please try again.")
	}

	var value string
	if field.Integer() {
		n, err := c.promptCount("\nSearch for ID: ", "Enter search ID as an integer.")
		if err != nil {
			return err
		}
		value = fmt.Sprint(n)
	} else {
		var err error
		value, err = c.readLine(fmt.Sprintf("\nSearch for %s: ", field))
		if err != nil {
			return err
		}
	}

	books, err := c.m.Search(ctx, field, value)
	if err != nil {
		c.reportError(err)
		return nil
	}
	if len(books) == 0 {
		c.println("\nNo results found.")
	} else {
		c.println("\nSearch results:")
		for _, b := range books {
			c.printf("\n%s\n", b)
		}
	}
	c.printf("\n%s\n", border)
	return nil
}

// promptCount asks until the operator enters a non-negative integer.
func (c *Console) promptCount(prompt, retry string) (int64, error) {
	for {
		line, err := c.readLine(prompt)
		if err != nil {
			return 0, err
		}
		n, err := store.ParseCount(line)
		if err == nil {
			return n, nil
		}
		c.println(retry)
	}
}

// readLine prints prompt and returns the next input line without its
// line ending. Lines have no length limit. It returns io.EOF when input is
// exhausted.
func (c *Console) readLine(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read input: %w", err)
	}
	if errors.Is(err, io.EOF) && line == "" {
		return "", io.EOF
	}
	// A last line without a newline is still a line; EOF shows up on the next read.
	return strings.TrimRight(line, "\r\n"), nil
}

// reportError tells the operator about a storage failure. The manager has
// already logged it.
func (c *Console) reportError(err error) {
	c.printf("An error occurred: %v\n", err)
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.out, s)
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func isDone(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "done")
}
