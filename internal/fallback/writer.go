// Package fallback keeps the local append-only CSV log of operations that
// could not reach the record store. Rows are never read back by the service;
// recovery is manual.
package fallback

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klfajardo/registro-evento-chile/internal/model"
)

// Kind is the operation a fallback row stands in for
type Kind string

const (
	KindRegister Kind = "REGISTER"
	KindPrint    Kind = "PRINT"
	KindCheckIn  Kind = "CHECKIN"
)

// DefaultPath is where the log lives unless configured otherwise
const DefaultPath = "fallback/respaldo.csv"

// Header is the first line of every fallback file
var Header = []string{"op", "ts", "uuid", "dni", "session_id", "sede", "snapshot"}

// Row is one failed operation
type Row struct {
	Kind      Kind
	At        time.Time
	UUID      string
	DNI       string
	SessionID string
	Site      string
	// Snapshot holds the operation's arguments; it is stored as JSON
	Snapshot any
}

// Logger appends fallback rows
type Logger interface {
	Append(ctx context.Context, row Row) error
}

// Writer appends rows to a single CSV file
type Writer struct {
	mu   sync.Mutex
	path string
}

// NewWriter creates a writer for the file at path. The file and its
// directory are created on first append.
func NewWriter(path string) *Writer {
	if path == "" {
		path = DefaultPath
	}
	return &Writer{path: path}
}

// Path returns the file the writer appends to
func (w *Writer) Path() string {
	return w.path
}

// Ensure Writer implements Logger
var _ Logger = (*Writer)(nil)

// Append durably appends one row. It returns only after the row is synced to
// disk; any I/O failure is reported as model.ErrFallbackWrite.
func (w *Writer) Append(ctx context.Context, row Row) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", model.ErrFallbackWrite, err)
	}

	line, err := encode(row)
	if err != nil {
		return fmt.Errorf("%w: %w", model.ErrFallbackWrite, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.appendLocked(line); err != nil {
		return fmt.Errorf("%w: %w", model.ErrFallbackWrite, err)
	}
	return nil
}

func (w *Writer) appendLocked(line []byte) error {
	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return fmt.Errorf("mkdir fallback dir: %w", err)
	}

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open fallback file: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat fallback file: %w", err)
	}

	// Header and row go out in a single write
	var buf bytes.Buffer
	if info.Size() == 0 {
		if err := writeRecord(&buf, Header); err != nil {
			return err
		}
	}
	buf.Write(line)

	if _, err := f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write fallback row: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync fallback file: %w", err)
	}
	return nil
}

func encode(row Row) ([]byte, error) {
	snapshot := ""
	if row.Snapshot != nil {
		data, err := json.Marshal(row.Snapshot)
		if err != nil {
			return nil, fmt.Errorf("marshal snapshot: %w", err)
		}
		snapshot = string(data)
	}

	var buf bytes.Buffer
	err := writeRecord(&buf, []string{
		string(row.Kind),
		model.FormatTime(row.At),
		row.UUID,
		row.DNI,
		row.SessionID,
		row.Site,
		snapshot,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeRecord(buf *bytes.Buffer, record []string) error {
	cw := csv.NewWriter(buf)
	if err := cw.Write(record); err != nil {
		return fmt.Errorf("encode csv row: %w", err)
	}
	cw.Flush()
	return cw.Error()
}
