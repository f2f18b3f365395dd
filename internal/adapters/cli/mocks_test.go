package cli

import (
	"context"
	"time"

	"github.com/fatih/color"

	"github.com/example/skiphire/internal/ports/primary"
)

func init() {
	color.NoColor = true
}

// mockCatalogService implements primary.CatalogService for testing
type mockCatalogService struct {
	listSkipsFn func(ctx context.Context, filters primary.SkipFilters) ([]*primary.Skip, error)
	getSkipFn   func(ctx context.Context, skipID int) (*primary.Skip, error)
	quoteSkipFn func(ctx context.Context, skipID int) (*primary.Quote, error)

	lastFilters primary.SkipFilters
}

func (m *mockCatalogService) ListSkips(ctx context.Context, filters primary.SkipFilters) ([]*primary.Skip, error) {
	m.lastFilters = filters
	if m.listSkipsFn != nil {
		return m.listSkipsFn(ctx, filters)
	}
	return []*primary.Skip{testSkip()}, nil
}

func (m *mockCatalogService) GetSkip(ctx context.Context, skipID int) (*primary.Skip, error) {
	if m.getSkipFn != nil {
		return m.getSkipFn(ctx, skipID)
	}
	skip := testSkip()
	skip.ID = skipID
	return skip, nil
}

func (m *mockCatalogService) QuoteSkip(ctx context.Context, skipID int) (*primary.Quote, error) {
	if m.quoteSkipFn != nil {
		return m.quoteSkipFn(ctx, skipID)
	}
	return testQuote(), nil
}

// mockBookingService implements primary.BookingService for testing.
// Without an override it keeps a minimal session: navigation moves freely
// and payment succeeds.
type mockBookingService struct {
	selectSkipFn func(ctx context.Context, skipID int) (*primary.Snapshot, error)
	advanceFn    func(ctx context.Context) (*primary.TransitionResponse, error)
	submitFn     func(ctx context.Context, details primary.PaymentDetails) (*primary.SubmitResponse, error)
	uploadFn     func(ctx context.Context, req primary.UploadPhotoRequest) (*primary.Snapshot, error)

	snap        *primary.Snapshot
	ended       bool
	validated   []string
	lastDetails primary.PaymentDetails
}

func newMockBookingService() *mockBookingService {
	return &mockBookingService{}
}

func (m *mockBookingService) current() *primary.Snapshot {
	if m.snap == nil {
		m.snap = &primary.Snapshot{
			SessionID:           "sess-1",
			Steps:               []string{"Choose Skip", "Placement", "Schedule", "Payment"},
			Errors:              map[string]string{},
			AvailablePlacements: []string{"private", "public"},
		}
	}
	m.snap.StepName = m.snap.Steps[m.snap.Step]
	return m.snap
}

func (m *mockBookingService) StartSession(ctx context.Context) (*primary.Snapshot, error) {
	m.snap = nil
	return m.current(), nil
}

func (m *mockBookingService) EndSession(ctx context.Context) error {
	m.ended = true
	return nil
}

func (m *mockBookingService) GetSnapshot(ctx context.Context) (*primary.Snapshot, error) {
	return m.current(), nil
}

func (m *mockBookingService) SelectSkip(ctx context.Context, skipID int) (*primary.Snapshot, error) {
	if m.selectSkipFn != nil {
		return m.selectSkipFn(ctx, skipID)
	}
	s := m.current()
	skip := testSkip()
	skip.ID = skipID
	s.Booking.Skip = skip
	s.Quote = testQuote()
	return s, nil
}

func (m *mockBookingService) SetPlacement(ctx context.Context, placement string) (*primary.Snapshot, error) {
	s := m.current()
	s.Booking.Placement = placement
	return s, nil
}

func (m *mockBookingService) SetDeliveryDate(ctx context.Context, date time.Time) (*primary.Snapshot, error) {
	s := m.current()
	collection := date.AddDate(0, 0, 14)
	s.Booking.DeliveryDate = &date
	s.Booking.CollectionDate = &collection
	return s, nil
}

func (m *mockBookingService) ClearDeliveryDate(ctx context.Context) (*primary.Snapshot, error) {
	s := m.current()
	s.Booking.DeliveryDate = nil
	s.Booking.CollectionDate = nil
	return s, nil
}

func (m *mockBookingService) SetDeliveryAddress(ctx context.Context, address string) (*primary.Snapshot, error) {
	s := m.current()
	s.Booking.DeliveryAddress = address
	return s, nil
}

func (m *mockBookingService) SetSpecialInstructions(ctx context.Context, notes string) (*primary.Snapshot, error) {
	s := m.current()
	s.Booking.SpecialInstructions = notes
	return s, nil
}

func (m *mockBookingService) SetPhotoUploaded(ctx context.Context, uploaded bool) (*primary.Snapshot, error) {
	s := m.current()
	s.Booking.PhotoUploaded = uploaded
	return s, nil
}

func (m *mockBookingService) UploadPhoto(ctx context.Context, req primary.UploadPhotoRequest) (*primary.Snapshot, error) {
	if m.uploadFn != nil {
		return m.uploadFn(ctx, req)
	}
	s := m.current()
	s.Booking.PhotoUploaded = true
	s.Booking.PhotoLocation = "mem://" + req.Filename
	return s, nil
}

func (m *mockBookingService) UpdateCustomerDetails(ctx context.Context, update primary.CustomerUpdate) (*primary.Snapshot, error) {
	s := m.current()
	if update.Name != nil {
		s.Booking.Customer.Name = *update.Name
	}
	if update.Email != nil {
		s.Booking.Customer.Email = *update.Email
	}
	if update.Phone != nil {
		s.Booking.Customer.Phone = *update.Phone
	}
	return s, nil
}

func (m *mockBookingService) ValidateField(ctx context.Context, field string) (*primary.Snapshot, error) {
	m.validated = append(m.validated, field)
	s := m.current()
	if field == "email" && s.Booking.Customer.Email == "not-an-email" {
		s.Errors["email"] = "Please enter a valid email address"
	} else {
		delete(s.Errors, field)
	}
	return s, nil
}

func (m *mockBookingService) ClearError(ctx context.Context, field string) (*primary.Snapshot, error) {
	s := m.current()
	delete(s.Errors, field)
	return s, nil
}

func (m *mockBookingService) Advance(ctx context.Context) (*primary.TransitionResponse, error) {
	if m.advanceFn != nil {
		return m.advanceFn(ctx)
	}
	s := m.current()
	if s.Step == len(s.Steps)-1 {
		return &primary.TransitionResponse{Snapshot: s}, nil
	}
	s.Step++
	return &primary.TransitionResponse{Snapshot: m.current(), Moved: true}, nil
}

func (m *mockBookingService) Retreat(ctx context.Context) (*primary.TransitionResponse, error) {
	s := m.current()
	if s.Step == 0 {
		return &primary.TransitionResponse{Snapshot: s}, nil
	}
	s.Step--
	return &primary.TransitionResponse{Snapshot: m.current(), Moved: true}, nil
}

func (m *mockBookingService) Submit(ctx context.Context, details primary.PaymentDetails) (*primary.SubmitResponse, error) {
	m.lastDetails = details
	if m.submitFn != nil {
		return m.submitFn(ctx, details)
	}
	s := m.current()
	s.Confirmation = &primary.Confirmation{
		Reference:     "ref-1",
		TransactionID: "txn_ref-1",
		AmountMinor:   36600,
		Message:       "Booking confirmed! You will receive a confirmation email shortly.",
	}
	return &primary.SubmitResponse{Snapshot: s, Success: true, Confirmation: s.Confirmation}, nil
}

func (m *mockBookingService) OnConfirmed(handler func(context.Context, primary.BookingEvent) error) error {
	return nil
}

func (m *mockBookingService) OnPaymentFailed(handler func(context.Context, primary.BookingEvent) error) error {
	return nil
}

func testSkip() *primary.Skip {
	return &primary.Skip{
		ID:               17934,
		Size:             6,
		HirePeriodDays:   14,
		PriceBeforeVAT:   305,
		VAT:              20,
		Postcode:         "NR32",
		AllowedOnRoad:    true,
		AllowsHeavyWaste: true,
		Description:      "Perfect for small home projects, garden clearance",
	}
}

func testQuote() *primary.Quote {
	return &primary.Quote{PriceBeforeVAT: 305, VATPercent: 20, VATAmount: 61, Total: 366, TotalMinor: 36600}
}
