package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/example/skiphire/internal/ports/secondary"
)

// ============================================================================
// Mock Implementations
// ============================================================================

// Ensure mocks implement the interfaces
var (
	_ secondary.CatalogRepository = (*mockCatalogRepository)(nil)
	_ secondary.PaymentGateway    = (*mockPaymentGateway)(nil)
	_ secondary.PhotoStore        = (*mockPhotoStore)(nil)
	_ secondary.LogWriter         = (*mockLogWriter)(nil)
)

// mockCatalogRepository implements secondary.CatalogRepository for testing.
type mockCatalogRepository struct {
	skips   map[int]*secondary.SkipRecord
	listErr error
	getErr  error
}

func newMockCatalogRepository(records ...*secondary.SkipRecord) *mockCatalogRepository {
	m := &mockCatalogRepository{skips: make(map[int]*secondary.SkipRecord)}
	for _, r := range records {
		m.skips[r.ID] = r
	}
	return m
}

func (m *mockCatalogRepository) List(ctx context.Context, filters secondary.SkipFilters) ([]*secondary.SkipRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []*secondary.SkipRecord
	for _, r := range m.skips {
		if filters.Postcode != "" && r.Postcode != filters.Postcode {
			continue
		}
		result = append(result, r)
	}
	return result, nil
}

func (m *mockCatalogRepository) GetByID(ctx context.Context, id int) (*secondary.SkipRecord, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if r, ok := m.skips[id]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("skip %d: %w", id, secondary.ErrNotFound)
}

// mockPaymentGateway implements secondary.PaymentGateway for testing.
type mockPaymentGateway struct {
	mu       sync.Mutex
	requests []secondary.ChargeRequest
	chargeFn func(ctx context.Context, req secondary.ChargeRequest) (*secondary.ChargeResult, error)
}

func (m *mockPaymentGateway) Charge(ctx context.Context, req secondary.ChargeRequest) (*secondary.ChargeResult, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.chargeFn != nil {
		return m.chargeFn(ctx, req)
	}
	return &secondary.ChargeResult{Success: true, TransactionID: "txn_" + req.Reference}, nil
}

func (m *mockPaymentGateway) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// mockPhotoStore implements secondary.PhotoStore for testing.
type mockPhotoStore struct {
	uploaded  map[string][]byte
	uploadErr error
	uploadFn  func(ctx context.Context, p secondary.PhotoUpload)
}

func newMockPhotoStore() *mockPhotoStore {
	return &mockPhotoStore{uploaded: make(map[string][]byte)}
}

func (m *mockPhotoStore) Upload(ctx context.Context, p secondary.PhotoUpload) (*secondary.PhotoReceipt, error) {
	if m.uploadFn != nil {
		m.uploadFn(ctx, p)
	}
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}
	data, err := io.ReadAll(p.Content)
	if err != nil {
		return nil, err
	}
	key := p.SessionID + "/" + p.Filename
	m.uploaded[key] = data
	return &secondary.PhotoReceipt{Location: "mem://" + key}, nil
}

// logEntry is one call captured by mockLogWriter.
type logEntry struct {
	action     string
	entityType string
	entityID   string
	field      string
	oldValue   string
	newValue   string
}

// mockLogWriter implements secondary.LogWriter for testing.
type mockLogWriter struct {
	entries []logEntry
	err     error
}

func (m *mockLogWriter) LogCreate(ctx context.Context, entityType, entityID string) error {
	m.entries = append(m.entries, logEntry{action: "create", entityType: entityType, entityID: entityID})
	return m.err
}

func (m *mockLogWriter) LogUpdate(ctx context.Context, entityType, entityID, fieldName, oldValue, newValue string) error {
	m.entries = append(m.entries, logEntry{
		action:     "update",
		entityType: entityType,
		entityID:   entityID,
		field:      fieldName,
		oldValue:   oldValue,
		newValue:   newValue,
	})
	return m.err
}

func (m *mockLogWriter) LogDelete(ctx context.Context, entityType, entityID string) error {
	m.entries = append(m.entries, logEntry{action: "delete", entityType: entityType, entityID: entityID})
	return m.err
}

func (m *mockLogWriter) updatesFor(entityType, field string) []logEntry {
	var out []logEntry
	for _, e := range m.entries {
		if e.action == "update" && e.entityType == entityType && e.field == field {
			out = append(out, e)
		}
	}
	return out
}

// ============================================================================
// Fixtures
// ============================================================================

var errGatewayDown = errors.New("gateway unreachable")

func float64Ptr(v float64) *float64 { return &v }

// testSkips mirrors a slice of the NR32 catalog.
func testSkips() []*secondary.SkipRecord {
	return []*secondary.SkipRecord{
		{
			ID: 17934, Size: 6, HirePeriodDays: 14, PriceBeforeVAT: 305, VAT: 20,
			Postcode: "NR32", AllowedOnRoad: true, AllowsHeavyWaste: true,
			CreatedAt: "2025-04-03T13:51:46.897146", UpdatedAt: "2025-04-07T13:16:52.992",
		},
		{
			ID: 17933, Size: 4, HirePeriodDays: 14, PriceBeforeVAT: 278, VAT: 20,
			Postcode: "NR32", AllowedOnRoad: true, AllowsHeavyWaste: true,
		},
		{
			ID: 17936, Size: 10, HirePeriodDays: 14, PriceBeforeVAT: 400, VAT: 20,
			Postcode: "NR32", AllowedOnRoad: false, AllowsHeavyWaste: false,
		},
		{
			ID: 15124, Size: 20, HirePeriodDays: 14, TransportCost: float64Ptr(248), PerTonneCost: float64Ptr(248),
			PriceBeforeVAT: 992, VAT: 20, Postcode: "NR32", AllowsHeavyWaste: true,
		},
		{
			ID: 90001, Size: 8, HirePeriodDays: 7, PriceBeforeVAT: 350, VAT: 20,
			Postcode: "NR32", Forbidden: true,
		},
		{
			ID: 50001, Size: 6, HirePeriodDays: 7, PriceBeforeVAT: 250, VAT: 20,
			Postcode: "LE10",
		},
	}
}
