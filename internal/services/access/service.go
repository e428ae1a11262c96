// Package access logs talk check-ins
package access

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/klfajardo/registro-evento-chile/internal/dependencies/clock"
	"github.com/klfajardo/registro-evento-chile/internal/fallback"
	"github.com/klfajardo/registro-evento-chile/internal/metrics"
	"github.com/klfajardo/registro-evento-chile/internal/model"
	"github.com/klfajardo/registro-evento-chile/internal/storage"
)

// Service appends access events
type Service struct {
	store    storage.Store
	fallback fallback.Logger
	clock    clock.Clock
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// New creates an access service
func New(store storage.Store, fb fallback.Logger, clk clock.Clock, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		fallback: fb,
		clock:    clk,
		metrics:  m,
		logger:   logger,
	}
}

// CheckIn records that an attendee entered a session. Every call appends a
// new event; repeated check-ins are kept. The attendee is not looked up.
// offline reports that the event went to the fallback log.
func (s *Service) CheckIn(ctx context.Context, uuid, sessionID, site string) (offline bool, err error) {
	ev := model.AccessEvent{
		UUID:      strings.TrimSpace(uuid),
		SessionID: strings.TrimSpace(sessionID),
		Site:      strings.TrimSpace(site),
		At:        s.clock.Now(),
	}
	if ev.UUID == "" || ev.SessionID == "" || ev.Site == "" {
		return false, fmt.Errorf("%w: uuid, session_id and sede are required", model.ErrValidation)
	}

	_, err = s.store.Create(ctx, model.CollectionAccess, ev.Record())
	if err == nil {
		s.logger.Debug("check-in recorded",
			slog.String("uuid", ev.UUID),
			slog.String("session_id", ev.SessionID),
		)
		return false, nil
	}
	if !errors.Is(err, model.ErrStoreUnavailable) {
		return false, fmt.Errorf("record access: %w", err)
	}

	row := fallback.Row{
		Kind:      fallback.KindCheckIn,
		At:        ev.At,
		UUID:      ev.UUID,
		SessionID: ev.SessionID,
		Site:      ev.Site,
		Snapshot:  ev.Record(),
	}
	if ferr := s.fallback.Append(ctx, row); ferr != nil {
		s.logger.Error("fallback write failed",
			slog.String("op", string(fallback.KindCheckIn)),
			slog.String("store_error", err.Error()),
			slog.String("error", ferr.Error()),
		)
		return false, ferr
	}
	s.metrics.FallbackWritten(string(fallback.KindCheckIn))

	s.logger.Warn("store unavailable, check-in logged offline",
		slog.String("op", string(fallback.KindCheckIn)),
		slog.String("uuid", ev.UUID),
		slog.String("error", err.Error()),
	)
	return true, nil
}
