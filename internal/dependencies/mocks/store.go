package mocks

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/klfajardo/registro-evento-chile/internal/storage"
)

// ErrInjected is the cause wrapped by FlakyStore failures
var ErrInjected = errors.New("injected store failure")

// FlakyStore wraps a Store and can be switched to fail as unavailable or to
// answer slowly
type FlakyStore struct {
	inner storage.Store

	mu      sync.RWMutex
	down    bool
	delay   time.Duration
	failOps map[string]bool
	found   func()

	calls atomic.Int64
}

// Ensure FlakyStore implements Store
var _ storage.Store = (*FlakyStore)(nil)

// NewFlakyStore wraps inner; it starts healthy
func NewFlakyStore(inner storage.Store) *FlakyStore {
	return &FlakyStore{inner: inner, failOps: map[string]bool{}}
}

// SetDown makes every call fail (or succeed again) as unavailable
func (f *FlakyStore) SetDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = down
}

// FailOps makes only the named operations fail: findOne, listAll, create, update
func (f *FlakyStore) FailOps(ops ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failOps = map[string]bool{}
	for _, op := range ops {
		f.failOps[op] = true
	}
}

// SetDelay makes every call wait d first; the wait honours ctx
func (f *FlakyStore) SetDelay(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delay = d
}

// AfterFindOne runs hook after every successful FindOne, before the result
// reaches the caller; it stands in for another station writing in between
func (f *FlakyStore) AfterFindOne(hook func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.found = hook
}

// Calls returns how many calls reached the wrapper
func (f *FlakyStore) Calls() int64 {
	return f.calls.Load()
}

func (f *FlakyStore) before(ctx context.Context, op string) error {
	f.calls.Add(1)

	f.mu.RLock()
	down, delay, failing := f.down, f.delay, f.failOps[op]
	f.mu.RUnlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return storage.Unavailable(op, ctx.Err())
		case <-timer.C:
		}
	}
	if down || failing {
		return storage.Unavailable(op, ErrInjected)
	}
	return nil
}

func (f *FlakyStore) FindOne(ctx context.Context, collection string, p storage.Predicate) (*storage.Record, error) {
	if err := f.before(ctx, "findOne"); err != nil {
		return nil, err
	}
	rec, err := f.inner.FindOne(ctx, collection, p)
	if err != nil {
		return nil, err
	}

	f.mu.RLock()
	hook := f.found
	f.mu.RUnlock()
	if hook != nil {
		hook()
	}
	return rec, nil
}

func (f *FlakyStore) ListAll(ctx context.Context, collection string, fields ...string) ([]storage.Record, error) {
	if err := f.before(ctx, "listAll"); err != nil {
		return nil, err
	}
	return f.inner.ListAll(ctx, collection, fields...)
}

func (f *FlakyStore) Create(ctx context.Context, collection string, fields storage.Fields) (*storage.Record, error) {
	if err := f.before(ctx, "create"); err != nil {
		return nil, err
	}
	return f.inner.Create(ctx, collection, fields)
}

func (f *FlakyStore) Update(ctx context.Context, collection, id string, fields storage.Fields) (*storage.Record, error) {
	if err := f.before(ctx, "update"); err != nil {
		return nil, err
	}
	return f.inner.Update(ctx, collection, id, fields)
}
