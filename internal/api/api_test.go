package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klfajardo/registro-evento-chile/internal/api"
	"github.com/klfajardo/registro-evento-chile/internal/api/apierr"
	"github.com/klfajardo/registro-evento-chile/internal/api/middleware"
	"github.com/klfajardo/registro-evento-chile/internal/api/response"
	"github.com/klfajardo/registro-evento-chile/internal/factory"
	"github.com/klfajardo/registro-evento-chile/internal/testutil"
)

// testServer wraps the router with the test app behind it
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	app := factory.NewTestApp(t)

	router := api.NewRouter(api.RouterConfig{
		Logger:       testutil.NopLogger(),
		Metrics:      app.Metrics,
		Registration: app.Registration,
		Badge:        app.Badge,
		Access:       app.Access,
		Query:        app.Query,
		AdminToken:   app.AdminToken,
		DefaultSite:  app.DefaultSite,
	})

	return &testServer{handler: router, app: app}
}

func (ts *testServer) request(method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) register(t *testing.T, body map[string]any) string {
	t.Helper()

	rr := ts.request(http.MethodPost, "/api/register", body, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp response.RegisterResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.UUID)
	return resp.UUID
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) apierr.ErrorResponse {
	t.Helper()
	var resp apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}

func TestRegister(t *testing.T) {
	ts := newTestServer(t)

	body := map[string]any{"dni": " 12345678-K ", "nombres": " Ana ", "apellidos": "Pérez"}
	rr := ts.request(http.MethodPost, "/api/register", body, map[string]string{middleware.HeaderSite: "sede_norte"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"uuid":"uuid-1"}`, rr.Body.String())

	rr = ts.request(http.MethodGet, "/api/attendee/uuid-1", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp response.AttendeeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "12345678-K", resp.Attendee.DNI)
	assert.Equal(t, "Ana", resp.Attendee.Nombres)
	assert.Equal(t, "NO_PAGADO", resp.Attendee.EstadoPago)
	assert.Equal(t, "sede_norte", resp.Attendee.SedeAlta)
	assert.Nil(t, resp.Attendee.SeImprimioAt)
}

func TestRegisterSameIdentityUpdates(t *testing.T) {
	ts := newTestServer(t)

	first := ts.register(t, map[string]any{"dni": "11111111-k", "nombres": "Ana", "correo": "ana@example.cl"})
	second := ts.register(t, map[string]any{"dni": " 11111111-K", "nombres": "Ana María"})
	assert.Equal(t, first, second)

	rr := ts.request(http.MethodGet, "/api/attendee/"+first, nil, nil)
	var resp response.AttendeeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Ana María", resp.Attendee.Nombres)
	assert.Equal(t, "ana@example.cl", resp.Attendee.Correo)
}

func TestRegisterRequiresIdentityAndName(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/register", map[string]any{"nombres": "Ana"}, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidRequest, decodeError(t, rr).Message)

	rr = ts.request(http.MethodPost, "/api/register", map[string]any{"dni": "1", "nombres": "  "}, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRegisterMalformedBody(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/register", bytes.NewBufferString("{"))
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRegisterOffline(t *testing.T) {
	ts := newTestServer(t)
	ts.app.Flaky.SetDown(true)

	rr := ts.request(http.MethodPost, "/api/register", map[string]any{"dni": "22222222-2", "nombres": "Luis"}, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"message":"offline"}`, rr.Body.String())

	rows := ts.app.FallbackRows(t)
	require.Len(t, rows, 2)
	assert.Equal(t, "REGISTER", rows[1][0])
	assert.Equal(t, "22222222-2", rows[1][3])
}

func TestImportRequiresAdminToken(t *testing.T) {
	ts := newTestServer(t)
	body := map[string]any{"records": []map[string]any{{"dni": "1", "nombres": "Ana"}}}

	rr := ts.request(http.MethodPost, "/api/import", body, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, apierr.CodeUnauthorized, decodeError(t, rr).Message)

	rr = ts.request(http.MethodPost, "/api/import", body, map[string]string{middleware.HeaderAdminToken: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestImport(t *testing.T) {
	ts := newTestServer(t)
	body := map[string]any{"records": []map[string]any{
		{"Documento": "33333333-3", "Nombres": "Ana", "Estado pago": "pagado"},
		{"dni": 44444444, "nombres": "Beto"},
		{"nombres": "sin documento"},
	}}

	rr := ts.request(http.MethodPost, "/api/import", body, map[string]string{middleware.HeaderAdminToken: factory.TestAdminToken})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.JSONEq(t, `{"success":true,"imported":2,"skipped":1}`, rr.Body.String())

	rr = ts.request(http.MethodGet, "/api/search?by=dni&q=44444444", nil, nil)
	var resp response.SearchResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Beto", resp.Results[0].Nombres)
}

func TestImportEmpty(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/import", map[string]any{"records": []any{}},
		map[string]string{middleware.HeaderAdminToken: factory.TestAdminToken})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAttendeeNotFound(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/attendee/missing", nil, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeNotFound, decodeError(t, rr).Message)
}

func TestAttendeeLookupTimeout(t *testing.T) {
	ts := newTestServer(t)
	ts.app.Flaky.SetDelay(2 * time.Second)

	rr := ts.request(http.MethodGet, "/api/attendee/uuid-1", nil, nil)
	assert.Equal(t, http.StatusGatewayTimeout, rr.Code)
	assert.Equal(t, apierr.CodeTimeout, decodeError(t, rr).Message)
}

func TestAttendeeStoreDown(t *testing.T) {
	ts := newTestServer(t)
	ts.app.Flaky.SetDown(true)

	rr := ts.request(http.MethodGet, "/api/attendee/uuid-1", nil, nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, apierr.CodeBackend, decodeError(t, rr).Message)
}

func TestSearchByName(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, map[string]any{"dni": "1", "nombres": "José", "apellidos": "Zúñiga"})
	ts.register(t, map[string]any{"dni": "2", "nombres": "Josefa", "apellidos": "Álvarez"})
	ts.register(t, map[string]any{"dni": "3", "nombres": "Marta", "apellidos": "Rojas"})

	rr := ts.request(http.MethodGet, "/api/search?by=nombre&q=jose", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp response.SearchResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "Josefa", resp.Results[0].Nombres)
	assert.Equal(t, "José", resp.Results[1].Nombres)
}

func TestSearchByUUIDMissIsEmpty(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/search?q=nope", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"results":[]}`, rr.Body.String())
}

func TestSearchRequiresQuery(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/search?by=dni", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPayThenPrint(t *testing.T) {
	ts := newTestServer(t)
	id := ts.register(t, map[string]any{"dni": "55555555-5", "nombres": "Ana"})

	rr := ts.request(http.MethodPost, "/api/print", map[string]any{"uuid": id}, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, apierr.CodeNotPaid, decodeError(t, rr).Message)

	rr = ts.request(http.MethodPost, "/api/pay", map[string]any{"uuid": id}, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true}`, rr.Body.String())

	rr = ts.request(http.MethodPost, "/api/print", map[string]any{"uuid": id}, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"se_imprimio_at":"2025-03-14T09:00:00Z"}`, rr.Body.String())

	// Reprinting keeps the first timestamp
	ts.app.MockClock.Advance(time.Hour)
	rr = ts.request(http.MethodPost, "/api/print", map[string]any{"uuid": id}, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"se_imprimio_at":"2025-03-14T09:00:00Z"}`, rr.Body.String())

	rr = ts.request(http.MethodGet, "/api/attendee/"+id, nil, nil)
	var resp response.AttendeeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "PAGADO", resp.Attendee.EstadoPago)
	assert.Equal(t, "efectivo", resp.Attendee.MedioPago)
	require.NotNil(t, resp.Attendee.SeImprimioAt)
}

func TestPayUnknownAttendee(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/pay", map[string]any{"uuid": "missing", "medio": "tarjeta"}, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestPayDependsOnStationRole(t *testing.T) {
	ts := newTestServer(t)
	id := ts.register(t, map[string]any{"dni": "66666666-6", "nombres": "Eva"})

	rr := ts.request(http.MethodPost, "/api/pay", map[string]any{"uuid": id}, map[string]string{
		middleware.HeaderRole: "staff",
	})
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, apierr.CodeRoleNotAllowed, decodeError(t, rr).Message)

	rr = ts.request(http.MethodGet, "/api/attendee/"+id, nil, nil)
	var resp response.AttendeeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "NO_PAGADO", resp.Attendee.EstadoPago)

	for _, role := range []string{"cajero", "Admin"} {
		rr = ts.request(http.MethodPost, "/api/pay", map[string]any{"uuid": id}, map[string]string{
			middleware.HeaderRole: role,
		})
		assert.Equal(t, http.StatusOK, rr.Code, role)
	}
}

func TestPrintOffline(t *testing.T) {
	ts := newTestServer(t)
	ts.app.Flaky.SetDown(true)

	rr := ts.request(http.MethodPost, "/api/print", map[string]any{"uuid": "uuid-9"}, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"message":"offline"}`, rr.Body.String())

	rows := ts.app.FallbackRows(t)
	require.Len(t, rows, 2)
	assert.Equal(t, "PRINT", rows[1][0])
	assert.Equal(t, "uuid-9", rows[1][2])
}

func TestCheckInUsesStationHeaders(t *testing.T) {
	ts := newTestServer(t)
	id := ts.register(t, map[string]any{"dni": "66666666-6", "nombres": "Ana"})

	headers := map[string]string{
		middleware.HeaderSite:      "sede_sur",
		middleware.HeaderRole:      "acceso",
		middleware.HeaderSessionID: "charla-1",
	}
	rr := ts.request(http.MethodPost, "/api/checkin", map[string]any{"uuid": id}, headers)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = ts.request(http.MethodPost, "/api/checkin", map[string]any{"uuid": id, "session_id": "charla-2"}, headers)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodGet, "/api/dashboard", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"total":1,"pagados":0,"impresos":0,"porSesion":{"charla-1":1,"charla-2":1}}`, rr.Body.String())
}

func TestCheckInRequiresSession(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/checkin", map[string]any{"uuid": "uuid-1"}, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCheckInOffline(t *testing.T) {
	ts := newTestServer(t)
	ts.app.Flaky.SetDown(true)

	rr := ts.request(http.MethodPost, "/api/checkin", map[string]any{"uuid": "uuid-3", "session_id": "charla-1"}, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"message":"offline"}`, rr.Body.String())

	rows := ts.app.FallbackRows(t)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"CHECKIN", "uuid-3", "charla-1", "sede_principal"},
		[]string{rows[1][0], rows[1][2], rows[1][4], rows[1][5]})
}

func TestDashboardEmpty(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/dashboard", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"total":0,"pagados":0,"impresos":0,"porSesion":{}}`, rr.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.request(http.MethodGet, "/api/attendee/missing", nil, nil)

	rr := ts.request(http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `route="/api/attendee/{uuid}"`)
	assert.Contains(t, rr.Body.String(), `status="404"`)
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
