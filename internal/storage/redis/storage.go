package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"

	"github.com/klfajardo/registro-evento-chile/internal/model"
	"github.com/klfajardo/registro-evento-chile/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

func (s *Storage) FindOne(ctx context.Context, collection string, p storage.Predicate) (*storage.Record, error) {
	if !s.indexed(p.Field) {
		// No index on this field: fall back to a scan
		recs, err := s.ListAll(ctx, collection)
		if err != nil {
			return nil, err
		}
		for _, rec := range recs {
			if p.Match(rec.Fields) {
				return &rec, nil
			}
		}
		return nil, model.ErrNotFound
	}

	ids, err := s.client.SMembers(ctx, fieldIndexKey(collection, p.Field, p.Value)).Result()
	if err != nil {
		return nil, storage.Unavailable("findOne", err)
	}
	slices.Sort(ids)

	// The index is case-folded; an exact predicate still has to check each candidate
	for _, id := range ids {
		fields, err := s.get(ctx, collection, id)
		if errors.Is(err, model.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if p.Match(fields) {
			return &storage.Record{ID: id, Fields: fields}, nil
		}
	}
	return nil, model.ErrNotFound
}

func (s *Storage) ListAll(ctx context.Context, collection string, fields ...string) ([]storage.Record, error) {
	ids, err := s.client.ZRange(ctx, collectionIndexKey(collection), 0, -1).Result()
	if err != nil {
		return nil, storage.Unavailable("listAll", err)
	}
	if len(ids) == 0 {
		return []storage.Record{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = recordKey(collection, id)
	}

	// Fetch all records in one round trip
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, storage.Unavailable("listAll", err)
	}

	recs := make([]storage.Record, 0, len(values))
	for i, val := range values {
		raw, ok := val.(string)
		if !ok {
			continue // Record vanished between ZRANGE and MGET
		}
		var f storage.Fields
		if err := json.Unmarshal([]byte(raw), &f); err != nil {
			continue // Skip invalid data
		}
		recs = append(recs, storage.Record{ID: ids[i], Fields: storage.Project(f, fields...)})
	}
	return recs, nil
}

func (s *Storage) Create(ctx context.Context, collection string, fields storage.Fields) (*storage.Record, error) {
	seq, err := s.client.Incr(ctx, sequenceKey()).Result()
	if err != nil {
		return nil, storage.Unavailable("create", err)
	}
	id := fmt.Sprintf("rec%06d", seq)

	data, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}

	// Record, ordering index and field indexes go in together
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, recordKey(collection, id), data, 0)
	pipe.ZAdd(ctx, collectionIndexKey(collection), redis.Z{Score: float64(seq), Member: id})
	for _, field := range s.cfg.IndexedFields {
		if v, ok := fields[field]; ok && v != nil {
			pipe.SAdd(ctx, fieldIndexKey(collection, field, fmt.Sprint(v)), id)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, storage.Unavailable("create", err)
	}

	return &storage.Record{ID: id, Fields: storage.Project(fields)}, nil
}

func (s *Storage) Update(ctx context.Context, collection, id string, fields storage.Fields) (*storage.Record, error) {
	existing, err := s.get(ctx, collection, id)
	if err != nil {
		return nil, err
	}

	merged := storage.Project(existing)
	for k, v := range fields {
		merged[k] = v
	}

	data, err := json.Marshal(merged)
	if err != nil {
		return nil, err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, recordKey(collection, id), data, 0)
	for _, field := range s.cfg.IndexedFields {
		next, changed := fields[field]
		if !changed {
			continue
		}
		if prev, ok := existing[field]; ok && prev != nil {
			pipe.SRem(ctx, fieldIndexKey(collection, field, fmt.Sprint(prev)), id)
		}
		if next != nil {
			pipe.SAdd(ctx, fieldIndexKey(collection, field, fmt.Sprint(next)), id)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, storage.Unavailable("update", err)
	}

	return &storage.Record{ID: id, Fields: merged}, nil
}

func (s *Storage) get(ctx context.Context, collection, id string) (storage.Fields, error) {
	data, err := s.client.Get(ctx, recordKey(collection, id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrNotFound
		}
		return nil, storage.Unavailable("get", err)
	}

	var f storage.Fields
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Storage) indexed(field string) bool {
	return slices.Contains(s.cfg.IndexedFields, field)
}
