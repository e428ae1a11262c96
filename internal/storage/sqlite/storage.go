package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/klfajardo/registro-evento-chile/internal/model"
	"github.com/klfajardo/registro-evento-chile/internal/storage"
)

// Field names are spliced into JSON paths, so they are restricted
var fieldName = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Storage keeps records as JSON documents in a single SQLite table
type Storage struct {
	db *sql.DB
}

// New creates a SQLite storage over an open database (see Open)
func New(db *sql.DB) *Storage {
	return &Storage{db: db}
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

func (s *Storage) FindOne(ctx context.Context, collection string, p storage.Predicate) (*storage.Record, error) {
	if !fieldName.MatchString(p.Field) {
		return nil, fmt.Errorf("%w: invalid field name %q", model.ErrValidation, p.Field)
	}

	// lower(...) = lower(?) hits the expression indexes; the exact
	// comparison narrows it further for case-sensitive predicates
	expr := fmt.Sprintf("json_extract(fields, '$.%s')", p.Field)
	query := fmt.Sprintf(
		"SELECT id, fields FROM records WHERE collection = ? AND lower(%s) = lower(?)", expr)
	args := []any{collection, p.Value}
	if !p.IgnoreCase {
		query += fmt.Sprintf(" AND CAST(%s AS TEXT) = ?", expr)
		args = append(args, p.Value)
	}
	query += " ORDER BY seq LIMIT 1"

	var id, raw string
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&id, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, storage.Unavailable("findOne", err)
	}

	fields, err := decode(raw)
	if err != nil {
		return nil, err
	}
	return &storage.Record{ID: id, Fields: fields}, nil
}

func (s *Storage) ListAll(ctx context.Context, collection string, fields ...string) ([]storage.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, fields FROM records WHERE collection = ? ORDER BY seq", collection)
	if err != nil {
		return nil, storage.Unavailable("listAll", err)
	}
	defer func() { _ = rows.Close() }()

	recs := []storage.Record{}
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, storage.Unavailable("listAll", err)
		}
		f, err := decode(raw)
		if err != nil {
			continue // Skip invalid data
		}
		recs = append(recs, storage.Record{ID: id, Fields: storage.Project(f, fields...)})
	}
	if err := rows.Err(); err != nil {
		return nil, storage.Unavailable("listAll", err)
	}
	return recs, nil
}

func (s *Storage) Create(ctx context.Context, collection string, fields storage.Fields) (*storage.Record, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}

	id := "rec" + strings.ReplaceAll(uuid.NewString(), "-", "")[:14]
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO records(collection, id, fields, created_at) VALUES (?, ?, ?, ?)",
		collection, id, string(data), model.FormatTime(time.Now()))
	if err != nil {
		return nil, storage.Unavailable("create", err)
	}

	return &storage.Record{ID: id, Fields: storage.Project(fields)}, nil
}

func (s *Storage) Update(ctx context.Context, collection, id string, fields storage.Fields) (*storage.Record, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}

	// json_patch merges the top-level keys of the patch into the stored document
	var raw string
	err = s.db.QueryRowContext(ctx,
		"UPDATE records SET fields = json_patch(fields, ?) WHERE collection = ? AND id = ? RETURNING fields",
		string(data), collection, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, storage.Unavailable("update", err)
	}

	merged, err := decode(raw)
	if err != nil {
		return nil, err
	}
	return &storage.Record{ID: id, Fields: merged}, nil
}

func decode(raw string) (storage.Fields, error) {
	var f storage.Fields
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return f, nil
}
