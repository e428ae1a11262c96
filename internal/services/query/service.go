// Package query answers read-only questions about attendees and check-ins.
// Reads have no offline path: store failures are returned to the caller.
package query

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/klfajardo/registro-evento-chile/internal/model"
	"github.com/klfajardo/registro-evento-chile/internal/storage"
)

// DefaultLookupTimeout bounds a single attendee lookup
const DefaultLookupTimeout = 5 * time.Second

// MaxSearchResults caps every search response; extra matches are dropped
const MaxSearchResults = 50

// SearchMode selects the field a search matches against
type SearchMode string

const (
	SearchByUUID  SearchMode = "uuid"
	SearchByDNI   SearchMode = "dni"
	SearchByEmail SearchMode = "correo"
	SearchByName  SearchMode = "nombre"
)

// ParseSearchMode reads a mode case-insensitively; unknown modes are uuid
func ParseSearchMode(raw string) SearchMode {
	switch m := SearchMode(strings.ToLower(strings.TrimSpace(raw))); m {
	case SearchByDNI, SearchByEmail, SearchByName:
		return m
	default:
		return SearchByUUID
	}
}

// Service reads attendee state from the store
type Service struct {
	store         storage.Store
	lookupTimeout time.Duration
	logger        *slog.Logger
}

// New creates a query service. A non-positive timeout uses DefaultLookupTimeout.
func New(store storage.Store, lookupTimeout time.Duration, logger *slog.Logger) *Service {
	if lookupTimeout <= 0 {
		lookupTimeout = DefaultLookupTimeout
	}
	return &Service{
		store:         store,
		lookupTimeout: lookupTimeout,
		logger:        logger,
	}
}

type lookup struct {
	rec *storage.Record
	err error
}

// Get returns the attendee with the given uuid. The store call is bounded by
// the lookup timeout; past it model.ErrTimeout is returned and any late
// answer is discarded.
func (s *Service) Get(ctx context.Context, uuid string) (*model.Attendee, error) {
	uuid = strings.TrimSpace(uuid)
	if uuid == "" {
		return nil, fmt.Errorf("%w: uuid is required", model.ErrValidation)
	}

	ctx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()

	// Buffered so a late answer never blocks the goroutine
	done := make(chan lookup, 1)
	go func() {
		rec, err := s.store.FindOne(ctx, model.CollectionAttendees, storage.Equals(model.KeyUUID, uuid))
		done <- lookup{rec: rec, err: err}
	}()

	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			s.logger.Warn("attendee lookup timed out",
				slog.String("uuid", uuid),
				slog.Duration("timeout", s.lookupTimeout),
			)
			return nil, fmt.Errorf("%w: attendee lookup exceeded %s", model.ErrTimeout, s.lookupTimeout)
		}
		return nil, ctx.Err()
	case res := <-done:
		if errors.Is(res.err, model.ErrNotFound) {
			return nil, fmt.Errorf("attendee %s: %w", uuid, model.ErrNotFound)
		}
		if res.err != nil {
			return nil, fmt.Errorf("find attendee: %w", res.err)
		}
		a := model.FieldsFromRecord(res.rec.Fields).Attendee()
		return &a, nil
	}
}

// Search finds attendees by mode. uuid is an exact lookup; the other modes
// list the collection and keep records whose field contains q, ignoring case
// and diacritics. Name matches are sorted by last then first names. At most
// MaxSearchResults are returned.
func (s *Service) Search(ctx context.Context, mode SearchMode, q string) ([]model.Attendee, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fmt.Errorf("%w: q is required", model.ErrValidation)
	}

	if mode == SearchByUUID || mode == "" {
		a, err := s.Get(ctx, q)
		if errors.Is(err, model.ErrNotFound) {
			return []model.Attendee{}, nil
		}
		if err != nil {
			return nil, err
		}
		return []model.Attendee{*a}, nil
	}

	recs, err := s.store.ListAll(ctx, model.CollectionAttendees)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}

	needle := model.Fold(q)
	results := []model.Attendee{}
	for _, rec := range recs {
		a := model.FieldsFromRecord(rec.Fields).Attendee()
		var haystack string
		switch mode {
		case SearchByDNI:
			haystack = a.DNI
		case SearchByEmail:
			haystack = a.Email
		default:
			haystack = a.FullName()
		}
		if strings.Contains(model.Fold(haystack), needle) {
			results = append(results, a)
		}
	}

	if mode == SearchByName {
		slices.SortStableFunc(results, func(x, y model.Attendee) int {
			return cmp.Compare(sortName(x), sortName(y))
		})
	}

	if len(results) > MaxSearchResults {
		results = results[:MaxSearchResults]
	}
	return results, nil
}

// Dashboard is an aggregate over all attendees and access events
type Dashboard struct {
	Total     int
	Paid      int
	Printed   int
	BySession map[string]int
}

// Dashboard recomputes the aggregate from the store on every call
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	attendees, err := s.store.ListAll(ctx, model.CollectionAttendees, model.KeyPaymentStatus, model.KeyPrintedAt)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	events, err := s.store.ListAll(ctx, model.CollectionAccess, model.KeySessionID)
	if err != nil {
		return nil, fmt.Errorf("list access events: %w", err)
	}

	d := &Dashboard{Total: len(attendees), BySession: map[string]int{}}
	for _, rec := range attendees {
		a := model.FieldsFromRecord(rec.Fields).Attendee()
		if a.IsPaid() {
			d.Paid++
		}
		if a.IsPrinted() {
			d.Printed++
		}
	}
	for _, rec := range events {
		session := model.AccessEventFromRecord(rec.Fields).SessionID
		if strings.TrimSpace(session) == "" {
			session = model.UnknownSession
		}
		d.BySession[session]++
	}
	return d, nil
}

func sortName(a model.Attendee) string {
	return model.Fold(strings.TrimSpace(a.LastNames + " " + a.FirstNames))
}
