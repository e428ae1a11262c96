package factory

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/klfajardo/registro-evento-chile/internal/config"
	"github.com/klfajardo/registro-evento-chile/internal/dependencies/mocks"
	"github.com/klfajardo/registro-evento-chile/internal/fallback"
	"github.com/klfajardo/registro-evento-chile/internal/metrics"
	"github.com/klfajardo/registro-evento-chile/internal/storage/memory"
	"github.com/klfajardo/registro-evento-chile/internal/testutil"
)

// TestAdminToken is the admin secret configured on test apps
const TestAdminToken = "test-admin-token"

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	Memory    *memory.Storage
	Flaky     *mocks.FlakyStore
	MockClock *mocks.MockClock
	MockIDs   *mocks.SequenceIDs
}

// NewTestApp creates an App over an in-memory store that tests can switch
// off, with a fixed clock, predictable ids and a fallback file in t's temp dir
func NewTestApp(t testing.TB) *TestApp {
	t.Helper()

	mem := memory.New()
	flaky := mocks.NewFlakyStore(mem)
	mockClock := mocks.NewMockClock(time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC))
	mockIDs := mocks.NewSequenceIDs()

	cfg := config.Default()
	cfg.AdminToken = TestAdminToken
	cfg.FallbackFile = filepath.Join(t.TempDir(), "fallback", "respaldo.csv")
	cfg.LookupTimeout = config.Duration{Duration: 200 * time.Millisecond}

	deps := dependencies{
		store:    flaky,
		fallback: fallback.NewWriter(cfg.FallbackFile),
		clock:    mockClock,
		ids:      mockIDs,
		metrics:  metrics.New(),
	}

	return &TestApp{
		App:       newWithDependencies(deps, cfg, testutil.NopLogger()),
		Memory:    mem,
		Flaky:     flaky,
		MockClock: mockClock,
		MockIDs:   mockIDs,
	}
}

// FallbackRows reads the fallback file, header included
func (a *TestApp) FallbackRows(t testing.TB) [][]string {
	t.Helper()
	return testutil.ReadCSV(t, a.Fallback.Path())
}
