// Package badge handles the payment and badge-print lifecycle of an attendee
package badge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/klfajardo/registro-evento-chile/internal/dependencies/clock"
	"github.com/klfajardo/registro-evento-chile/internal/fallback"
	"github.com/klfajardo/registro-evento-chile/internal/keylock"
	"github.com/klfajardo/registro-evento-chile/internal/metrics"
	"github.com/klfajardo/registro-evento-chile/internal/model"
	"github.com/klfajardo/registro-evento-chile/internal/storage"
)

// Service marks payments and badge prints
type Service struct {
	store    storage.Store
	fallback fallback.Logger
	clock    clock.Clock
	metrics  *metrics.Metrics
	logger   *slog.Logger
	prints   *keylock.Map
}

// New creates a badge service
func New(store storage.Store, fb fallback.Logger, clk clock.Clock, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		fallback: fb,
		clock:    clk,
		metrics:  m,
		logger:   logger,
		prints:   keylock.New(),
	}
}

// Pay marks the attendee as paid with the given method ("efectivo" when
// blank). Paying twice keeps the attendee paid and records the new method.
// There is no offline path for payments.
func (s *Service) Pay(ctx context.Context, uuid, method string) error {
	uuid = strings.TrimSpace(uuid)
	if uuid == "" {
		return fmt.Errorf("%w: uuid is required", model.ErrValidation)
	}
	method = strings.TrimSpace(method)
	if method == "" {
		method = model.DefaultPaymentMethod
	}

	rec, err := s.find(ctx, uuid)
	if err != nil {
		return err
	}

	paid := model.PaymentPaid
	patch := model.Fields{PaymentStatus: &paid, PaymentMethod: &method}
	if _, err := s.store.Update(ctx, model.CollectionAttendees, rec.ID, patch.Record()); err != nil {
		return fmt.Errorf("mark payment: %w", err)
	}

	s.logger.Info("payment marked",
		slog.String("uuid", uuid),
		slog.String("method", method),
	)
	return nil
}

// PrintResult is the outcome of a print request
type PrintResult struct {
	PrintedAt time.Time
	// Offline is set when the print went to the fallback log
	Offline bool
}

// Print stamps the badge print time. Only paid attendees can be printed; an
// unpaid attendee is left untouched and model.ErrPaymentRequired returned.
// The timestamp is set once: printing again returns the original one.
// Prints of the same uuid are serialized within the process.
func (s *Service) Print(ctx context.Context, uuid string) (*PrintResult, error) {
	uuid = strings.TrimSpace(uuid)
	if uuid == "" {
		return nil, fmt.Errorf("%w: uuid is required", model.ErrValidation)
	}

	unlock := s.prints.Lock(uuid)
	defer unlock()

	rec, err := s.find(ctx, uuid)
	if errors.Is(err, model.ErrStoreUnavailable) {
		return s.offline(ctx, uuid, err)
	}
	if err != nil {
		return nil, err
	}

	a := model.FieldsFromRecord(rec.Fields).Attendee()
	if !a.IsPaid() {
		return nil, fmt.Errorf("%w: attendee %s", model.ErrPaymentRequired, uuid)
	}
	if a.IsPrinted() {
		return &PrintResult{PrintedAt: *a.PrintedAt}, nil
	}

	now := s.clock.Now()
	patch := model.Fields{PrintedAt: &now}
	updated, err := s.store.Update(ctx, model.CollectionAttendees, rec.ID, patch.Record())
	if errors.Is(err, model.ErrStoreUnavailable) {
		return s.offline(ctx, uuid, err)
	}
	if err != nil {
		return nil, fmt.Errorf("mark print: %w", err)
	}

	// Re-read so the response carries the timestamp the store kept
	printedAt := now
	if stored := model.FieldsFromRecord(updated.Fields).PrintedAt; stored != nil {
		printedAt = *stored
	}
	if again, err := s.find(ctx, uuid); err == nil {
		if stored := model.FieldsFromRecord(again.Fields).PrintedAt; stored != nil {
			printedAt = *stored
		}
	}

	s.logger.Info("badge printed",
		slog.String("uuid", uuid),
		slog.Time("printed_at", printedAt),
	)
	return &PrintResult{PrintedAt: printedAt}, nil
}

func (s *Service) offline(ctx context.Context, uuid string, cause error) (*PrintResult, error) {
	now := s.clock.Now()
	row := fallback.Row{
		Kind:     fallback.KindPrint,
		At:       now,
		UUID:     uuid,
		Snapshot: map[string]string{model.KeyUUID: uuid},
	}
	if err := s.fallback.Append(ctx, row); err != nil {
		s.logger.Error("fallback write failed",
			slog.String("op", string(fallback.KindPrint)),
			slog.String("store_error", cause.Error()),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	s.metrics.FallbackWritten(string(fallback.KindPrint))

	s.logger.Warn("store unavailable, print logged offline",
		slog.String("op", string(fallback.KindPrint)),
		slog.String("uuid", uuid),
		slog.String("error", cause.Error()),
	)
	return &PrintResult{PrintedAt: now, Offline: true}, nil
}

func (s *Service) find(ctx context.Context, uuid string) (*storage.Record, error) {
	rec, err := s.store.FindOne(ctx, model.CollectionAttendees, storage.Equals(model.KeyUUID, uuid))
	if errors.Is(err, model.ErrNotFound) {
		return nil, fmt.Errorf("attendee %s: %w", uuid, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find attendee: %w", err)
	}
	return rec, nil
}
