// Package registration creates and merges attendee records keyed by their
// identity document, degrading to the fallback log when the store is down.
package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/klfajardo/registro-evento-chile/internal/dependencies/clock"
	"github.com/klfajardo/registro-evento-chile/internal/dependencies/ids"
	"github.com/klfajardo/registro-evento-chile/internal/fallback"
	"github.com/klfajardo/registro-evento-chile/internal/keylock"
	"github.com/klfajardo/registro-evento-chile/internal/metrics"
	"github.com/klfajardo/registro-evento-chile/internal/model"
	"github.com/klfajardo/registro-evento-chile/internal/storage"
)

// Service is the attendee upsert coordinator
type Service struct {
	store    storage.Store
	fallback fallback.Logger
	ids      ids.Generator
	clock    clock.Clock
	metrics  *metrics.Metrics
	logger   *slog.Logger
	locks    *keylock.Map
}

// New creates a registration service
func New(
	store storage.Store,
	fb fallback.Logger,
	idGen ids.Generator,
	clk clock.Clock,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		store:    store,
		fallback: fb,
		ids:      idGen,
		clock:    clk,
		metrics:  m,
		logger:   logger,
		locks:    keylock.New(),
	}
}

// Result is the stored state of an attendee after an upsert
type Result struct {
	// ID is the store's handle for the record
	ID      string
	Fields  model.Fields
	Created bool
}

// UUID returns the attendee's synthetic identifier
func (r *Result) UUID() string {
	if r == nil || r.Fields.UUID == nil {
		return ""
	}
	return *r.Fields.UUID
}

// Upsert creates the attendee identified by incoming.DNI or merges incoming
// into the existing record. Fields absent from incoming are never erased.
//
// The stored uuid always wins over an incoming one, a stored print timestamp
// is never cleared and a paid attendee never goes back to unpaid.
func (s *Service) Upsert(ctx context.Context, incoming model.Fields) (*Result, error) {
	if incoming.DNI == nil {
		return nil, fmt.Errorf("%w: dni is required", model.ErrValidation)
	}
	key, err := model.NormalizeIdentity(*incoming.DNI)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(key)
	defer unlock()

	found, err := s.store.FindOne(ctx, model.CollectionAttendees, storage.EqualsFold(model.KeyDNI, key))
	switch {
	case errors.Is(err, model.ErrNotFound):
		return s.create(ctx, incoming)
	case err != nil:
		return nil, fmt.Errorf("find attendee: %w", err)
	}

	prev := model.FieldsFromRecord(found.Fields)
	merged := model.Normalize(model.MergeKeepDefined(prev, incoming))
	s.guard(prev, &merged)

	// Only changed keys are written: a default the caller never sent must not
	// overwrite a value another station stored after our read
	changes := model.Changes(prev, merged)
	if len(changes) == 0 {
		return &Result{ID: found.ID, Fields: merged}, nil
	}

	rec, err := s.store.Update(ctx, model.CollectionAttendees, found.ID, changes)
	if err != nil {
		return nil, fmt.Errorf("update attendee: %w", err)
	}
	s.metrics.Upserted(false)

	s.logger.Debug("attendee merged",
		slog.String("record_id", rec.ID),
		slog.String("uuid", *merged.UUID),
		slog.Int("changed", len(changes)),
	)
	return &Result{ID: rec.ID, Fields: merged}, nil
}

func (s *Service) create(ctx context.Context, incoming model.Fields) (*Result, error) {
	fields := model.Normalize(incoming)
	if fields.UUID == nil {
		id := s.ids.New()
		fields.UUID = &id
	}

	rec, err := s.store.Create(ctx, model.CollectionAttendees, fields.Record())
	if err != nil {
		return nil, fmt.Errorf("create attendee: %w", err)
	}
	s.metrics.Upserted(true)

	s.logger.Info("attendee created",
		slog.String("record_id", rec.ID),
		slog.String("uuid", *fields.UUID),
	)
	return &Result{ID: rec.ID, Fields: fields, Created: true}, nil
}

// guard re-applies the lifecycle rules that a plain merge could undo
func (s *Service) guard(prev model.Fields, merged *model.Fields) {
	if prev.UUID != nil && *prev.UUID != "" {
		merged.UUID = prev.UUID
	}
	if merged.UUID == nil {
		// Records created outside the service may lack one
		id := s.ids.New()
		merged.UUID = &id
	}
	if prev.PrintedAt != nil {
		merged.PrintedAt = prev.PrintedAt
	}
	if prev.PaymentStatus != nil && *prev.PaymentStatus == model.PaymentPaid {
		paid := model.PaymentPaid
		merged.PaymentStatus = &paid
		if *merged.PaymentMethod == "" && prev.PaymentMethod != nil {
			merged.PaymentMethod = prev.PaymentMethod
		}
	}
}

// RegisterResult is the outcome of an on-site registration
type RegisterResult struct {
	UUID string
	// Offline is set when the registration went to the fallback log
	Offline bool
}

// Register is the on-site "alta": it requires dni and nombres, upserts the
// attendee and, if the store is unreachable, durably logs the registration
// locally instead.
func (s *Service) Register(ctx context.Context, in model.Fields) (*RegisterResult, error) {
	if in.DNI == nil || in.FirstNames == nil {
		return nil, fmt.Errorf("%w: dni and nombres are required", model.ErrValidation)
	}

	res, err := s.Upsert(ctx, in)
	if err == nil {
		return &RegisterResult{UUID: res.UUID()}, nil
	}
	if !errors.Is(err, model.ErrStoreUnavailable) {
		return nil, err
	}

	snapshot := model.Normalize(in)
	if snapshot.UUID == nil {
		id := s.ids.New()
		snapshot.UUID = &id
	}

	row := fallback.Row{
		Kind:     fallback.KindRegister,
		At:       s.clock.Now(),
		UUID:     *snapshot.UUID,
		DNI:      *snapshot.DNI,
		Site:     *snapshot.Site,
		Snapshot: snapshot.Record(),
	}
	if ferr := s.fallback.Append(ctx, row); ferr != nil {
		s.logger.Error("fallback write failed",
			slog.String("op", string(fallback.KindRegister)),
			slog.String("store_error", err.Error()),
			slog.String("error", ferr.Error()),
		)
		return nil, ferr
	}
	s.metrics.FallbackWritten(string(fallback.KindRegister))

	s.logger.Warn("store unavailable, registration logged offline",
		slog.String("op", string(fallback.KindRegister)),
		slog.String("uuid", row.UUID),
		slog.String("error", err.Error()),
	)
	return &RegisterResult{UUID: row.UUID, Offline: true}, nil
}

// ImportSummary counts the rows of a bulk import
type ImportSummary struct {
	Imported int
	Skipped  int
}

// Import upserts already-parsed spreadsheet rows. Column headers are matched
// through model.FieldsFromRow; rows without a dni are skipped. The import
// has no offline path: it stops at the first store failure.
func (s *Service) Import(ctx context.Context, rows []map[string]string) (ImportSummary, error) {
	var sum ImportSummary
	for i, row := range rows {
		fields := model.FieldsFromRow(row)
		if fields.DNI == nil {
			sum.Skipped++
			continue
		}

		if _, err := s.Upsert(ctx, fields); err != nil {
			if errors.Is(err, model.ErrValidation) {
				sum.Skipped++
				continue
			}
			return sum, fmt.Errorf("import row %d: %w", i+1, err)
		}
		sum.Imported++
	}

	s.logger.Info("import finished",
		slog.Int("imported", sum.Imported),
		slog.Int("skipped", sum.Skipped),
	)
	return sum, nil
}
