package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"github.com/klfajardo/registro-evento-chile/internal/model"
	"github.com/klfajardo/registro-evento-chile/internal/storage"
)

// Storage talks to an Airtable base over its REST API
type Storage struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
}

// New creates an Airtable storage
func New(cfg Config) (*Storage, error) {
	if cfg.APIKey == "" || cfg.BaseID == "" {
		return nil, errors.New("airtable: API key and base ID are required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultConfig().BaseURL
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultConfig().RequestsPerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}

	return &Storage{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
	}, nil
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

type apiRecord struct {
	ID     string         `json:"id,omitempty"`
	Fields storage.Fields `json:"fields"`
}

type listResponse struct {
	Records []apiRecord `json:"records"`
	Offset  string      `json:"offset"`
}

type batchRequest struct {
	Records []apiRecord `json:"records"`
}

type apiError struct {
	Error json.RawMessage `json:"error"`
}

func (s *Storage) FindOne(ctx context.Context, collection string, p storage.Predicate) (*storage.Record, error) {
	// Only the first page with a single record: no full-table scans for lookups
	q := url.Values{}
	q.Set("filterByFormula", Formula(p))
	q.Set("maxRecords", "1")
	q.Set("pageSize", "1")

	var resp listResponse
	if err := s.do(ctx, "findOne", http.MethodGet, s.tableURL(collection, q), nil, &resp); err != nil {
		return nil, err
	}
	if len(resp.Records) == 0 {
		return nil, model.ErrNotFound
	}
	r := resp.Records[0]
	return &storage.Record{ID: r.ID, Fields: fieldsOrEmpty(r.Fields)}, nil
}

func (s *Storage) ListAll(ctx context.Context, collection string, fields ...string) ([]storage.Record, error) {
	recs := []storage.Record{}
	offset := ""
	for {
		q := url.Values{}
		for _, f := range fields {
			q.Add("fields[]", f)
		}
		if offset != "" {
			q.Set("offset", offset)
		}

		var resp listResponse
		if err := s.do(ctx, "listAll", http.MethodGet, s.tableURL(collection, q), nil, &resp); err != nil {
			return nil, err
		}
		for _, r := range resp.Records {
			recs = append(recs, storage.Record{ID: r.ID, Fields: fieldsOrEmpty(r.Fields)})
		}

		if resp.Offset == "" {
			return recs, nil
		}
		offset = resp.Offset
	}
}

func (s *Storage) Create(ctx context.Context, collection string, fields storage.Fields) (*storage.Record, error) {
	body := batchRequest{Records: []apiRecord{{Fields: fields}}}
	return s.writeOne(ctx, "create", http.MethodPost, collection, body)
}

func (s *Storage) Update(ctx context.Context, collection, id string, fields storage.Fields) (*storage.Record, error) {
	body := batchRequest{Records: []apiRecord{{ID: id, Fields: fields}}}
	return s.writeOne(ctx, "update", http.MethodPatch, collection, body)
}

func (s *Storage) writeOne(ctx context.Context, op, method, collection string, body batchRequest) (*storage.Record, error) {
	var resp batchRequest
	if err := s.do(ctx, op, method, s.tableURL(collection, nil), body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Records) == 0 {
		return nil, storage.Unavailable(op, errors.New("empty response"))
	}
	r := resp.Records[0]
	return &storage.Record{ID: r.ID, Fields: fieldsOrEmpty(r.Fields)}, nil
}

func (s *Storage) tableURL(collection string, q url.Values) string {
	u := fmt.Sprintf("%s/%s/%s",
		strings.TrimSuffix(s.cfg.BaseURL, "/"),
		url.PathEscape(s.cfg.BaseID),
		url.PathEscape(s.cfg.table(collection)),
	)
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// do performs one throttled API call. Any transport failure or non-2xx
// status is reported as the store being unavailable.
func (s *Storage) do(ctx context.Context, op, method, u string, body, result any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return storage.Unavailable(op, err)
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return storage.Unavailable(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return storage.Unavailable(op, fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode >= 400 {
		return classify(op, resp.StatusCode, respBody)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return storage.Unavailable(op, fmt.Errorf("failed to parse response: %w", err))
		}
	}
	return nil
}

// classify maps an error response. Auth, rate-limit and server failures mean
// the store is unavailable; anything else is a request the base rejected and
// retrying it offline would hide.
func classify(op string, status int, body []byte) error {
	var apiErr apiError
	detail := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &apiErr) == nil && len(apiErr.Error) > 0 {
		detail = string(apiErr.Error)
	}
	err := fmt.Errorf("HTTP %d: %s", status, detail)

	switch {
	case status == http.StatusUnauthorized,
		status == http.StatusForbidden,
		status == http.StatusTooManyRequests,
		status >= 500:
		return storage.Unavailable(op, err)
	case status == http.StatusNotFound:
		return fmt.Errorf("airtable %s: %w: %w", op, model.ErrNotFound, err)
	default:
		return fmt.Errorf("airtable %s: %w", op, err)
	}
}

// Formula renders a predicate as an Airtable filterByFormula expression
func Formula(p storage.Predicate) string {
	value := `"` + strings.ReplaceAll(p.Value, `"`, `""`) + `"`
	field := "{" + p.Field + "}"
	if p.IgnoreCase {
		return fmt.Sprintf("LOWER(%s) = LOWER(%s)", field, value)
	}
	return fmt.Sprintf("%s = %s", field, value)
}

func fieldsOrEmpty(f storage.Fields) storage.Fields {
	if f == nil {
		return storage.Fields{}
	}
	return f
}
