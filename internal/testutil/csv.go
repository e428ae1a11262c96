package testutil

import (
	"encoding/csv"
	"errors"
	"io/fs"
	"os"
	"testing"
)

// ReadCSV returns every row of the CSV file at path, or nil when the file
// does not exist
func ReadCSV(t testing.TB, path string) [][]string {
	t.Helper()

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer func() { _ = f.Close() }()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return rows
}
