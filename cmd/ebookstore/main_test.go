package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(input))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.Execute()
	return out.String(), err
}

func TestDBCreateAndVerify(t *testing.T) {
	db := filepath.Join(t.TempDir(), "stock.db")

	_, err := execute(t, "", "db", "verify", "--db", db, "--log-level", "error")
	require.Error(t, err, "verify on a missing file should fail")

	out, err := execute(t, "", "db", "create", "--db", db, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "ready with 5 books")

	out, err = execute(t, "", "db", "verify", "--db", db, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "state:    ready")
	assert.Contains(t, out, "books:    5")

	// a second create keeps the same five books
	out, err = execute(t, "", "db", "create", "--db", db, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "ready with 5 books")
}

func TestMenuSession(t *testing.T) {
	db := filepath.Join(t.TempDir(), "stock.db")
	input := strings.Join([]string{"1", "77", "Emma", "Jane Austen", "3", "4", "id", "77", "0"}, "\n") + "\n"

	out, err := execute(t, input, "--db", db, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "Emma has been added to the database.")
	assert.Contains(t, out, "id: 77 | title: Emma | author: Jane Austen | qty: 3")
	assert.Contains(t, out, "Goodbye.")

	out, err = execute(t, "", "db", "verify", "--db", db, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "books:    6")
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := execute(t, "", "version", "--log-level", "shouty")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "ebookstore "), out)
}
