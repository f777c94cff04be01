package store

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	DefaultDBFile = "ebookstore.db"

	// SchemaVersion is the version written to schema_migrations by InitSchema.
	SchemaVersion = "1"
)

// CheckExists reports whether a database file exists at dbPath.
// The special path ":memory:" never exists on disk.
func CheckExists(dbPath string) (bool, error) {
	if dbPath == ":memory:" {
		return false, nil
	}
	info, err := os.Stat(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check store existence: %w", err)
	}
	if info.IsDir() {
		return false, fmt.Errorf("datastore path is a directory, expected file: %s", dbPath)
	}
	return true, nil
}

// GetStorePath returns the directory holding the datastore.
// The stock file lives next to wherever the operator starts the program.
func GetStorePath() string {
	return "."
}

// GetDBPath returns the full path to the database file.
func GetDBPath(storePath string) string {
	return filepath.Join(storePath, DefaultDBFile)
}
