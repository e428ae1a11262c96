package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/klfajardo/registro-evento-chile/internal/model"
	"github.com/klfajardo/registro-evento-chile/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	collections map[string]*collection
	nextID      int
}

type collection struct {
	records map[string]storage.Fields
	order   []string // insertion order, so listings are stable
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		collections: make(map[string]*collection),
	}
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

func (s *Storage) FindOne(ctx context.Context, name string, p storage.Predicate) (*storage.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[name]
	if !ok {
		return nil, model.ErrNotFound
	}
	for _, id := range c.order {
		if p.Match(c.records[id]) {
			return &storage.Record{ID: id, Fields: storage.Project(c.records[id])}, nil
		}
	}
	return nil, model.ErrNotFound
}

func (s *Storage) ListAll(ctx context.Context, name string, fields ...string) ([]storage.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[name]
	if !ok {
		return []storage.Record{}, nil
	}
	out := make([]storage.Record, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, storage.Record{ID: id, Fields: storage.Project(c.records[id], fields...)})
	}
	return out, nil
}

func (s *Storage) Create(ctx context.Context, name string, fields storage.Fields) (*storage.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(name)
	s.nextID++
	id := fmt.Sprintf("rec%06d", s.nextID)
	c.records[id] = storage.Project(fields)
	c.order = append(c.order, id)

	return &storage.Record{ID: id, Fields: storage.Project(fields)}, nil
}

func (s *Storage) Update(ctx context.Context, name, id string, fields storage.Fields) (*storage.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		return nil, model.ErrNotFound
	}
	existing, ok := c.records[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	for k, v := range fields {
		existing[k] = v
	}
	return &storage.Record{ID: id, Fields: storage.Project(existing)}, nil
}

// Count returns the number of records in a collection
func (s *Storage) Count(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.collections[name]; ok {
		return len(c.order)
	}
	return 0
}

// collection returns the named collection, creating it. Caller holds the write lock.
func (s *Storage) collection(name string) *collection {
	c, ok := s.collections[name]
	if !ok {
		c = &collection{records: make(map[string]storage.Fields)}
		s.collections[name] = c
	}
	return c
}
