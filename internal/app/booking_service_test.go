package app

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/zoobzio/clockz"

	"github.com/example/skiphire/internal/core/schedule"
	"github.com/example/skiphire/internal/ports/primary"
	"github.com/example/skiphire/internal/ports/secondary"
)

// ============================================================================
// Test Helper
// ============================================================================

type bookingFixture struct {
	service *BookingServiceImpl
	gateway *mockPaymentGateway
	photos  *mockPhotoStore
	logs    *mockLogWriter
	clock   fakeClock
}

// fakeClock is the part of the clockz fake the tests drive.
type fakeClock interface {
	clockz.Clock
	Advance(d time.Duration)
}

func newTestBookingService(t *testing.T, retry RetryPolicy) *bookingFixture {
	t.Helper()
	f := &bookingFixture{
		gateway: &mockPaymentGateway{},
		photos:  newMockPhotoStore(),
		logs:    &mockLogWriter{},
		clock:   clockz.NewFakeClock(),
	}
	f.service = NewBookingService(newMockCatalogRepository(testSkips()...), f.gateway, f.photos, f.logs, f.clock, retry)
	t.Cleanup(f.service.Close)
	return f
}

func strPtr(s string) *string { return &s }

func (f *bookingFixture) daysFromNow(n int) time.Time {
	return schedule.Day(f.clock.Now()).AddDate(0, 0, n)
}

// readyToPay drives a fresh session to the Payment step with valid details.
func (f *bookingFixture) readyToPay(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	mustSnap := func(_ *primary.Snapshot, err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	mustMove := func(resp *primary.TransitionResponse, err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !resp.Moved {
			t.Fatalf("expected to move, reason %q", resp.Reason)
		}
	}

	mustSnap(f.service.StartSession(ctx))
	mustSnap(f.service.SelectSkip(ctx, 17934))
	mustMove(f.service.Advance(ctx))
	mustSnap(f.service.SetPlacement(ctx, "private"))
	mustSnap(f.service.SetDeliveryAddress(ctx, "1 Marine Parade, Lowestoft"))
	mustMove(f.service.Advance(ctx))
	mustSnap(f.service.SetDeliveryDate(ctx, f.daysFromNow(3)))
	mustMove(f.service.Advance(ctx))
	mustSnap(f.service.UpdateCustomerDetails(ctx, primary.CustomerUpdate{
		Name:  strPtr("Sam Carter"),
		Email: strPtr("sam@example.com"),
		Phone: strPtr("07700 900123"),
	}))
}

// ============================================================================
// Session Tests
// ============================================================================

func TestNoSession(t *testing.T) {
	f := newTestBookingService(t, DefaultRetryPolicy)
	ctx := context.Background()

	if _, err := f.service.GetSnapshot(ctx); !errors.Is(err, primary.ErrNoSession) {
		t.Errorf("GetSnapshot: expected ErrNoSession, got %v", err)
	}
	if _, err := f.service.SelectSkip(ctx, 17934); !errors.Is(err, primary.ErrNoSession) {
		t.Errorf("SelectSkip: expected ErrNoSession, got %v", err)
	}
	if _, err := f.service.Advance(ctx); !errors.Is(err, primary.ErrNoSession) {
		t.Errorf("Advance: expected ErrNoSession, got %v", err)
	}
	if err := f.service.EndSession(ctx); !errors.Is(err, primary.ErrNoSession) {
		t.Errorf("EndSession: expected ErrNoSession, got %v", err)
	}
}

func TestStartSession(t *testing.T) {
	f := newTestBookingService(t, DefaultRetryPolicy)
	ctx := context.Background()

	snap, err := f.service.StartSession(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if snap.SessionID == "" {
		t.Error("expected session ID to be set")
	}
	if snap.Step != 0 || snap.StepName != "Choose Skip" {
		t.Errorf("expected Choose Skip step, got %d %q", snap.Step, snap.StepName)
	}
	if len(snap.Steps) != 4 {
		t.Errorf("expected 4 steps, got %v", snap.Steps)
	}
	if len(snap.Errors) != 0 {
		t.Errorf("expected no errors, got %v", snap.Errors)
	}
	if snap.CanProceed {
		t.Error("expected CanProceed=false without a skip")
	}
	if snap.Quote != nil {
		t.Error("expected no quote without a skip")
	}
	if len(f.logs.entries) != 1 || f.logs.entries[0].action != "create" || f.logs.entries[0].entityID != snap.SessionID {
		t.Errorf("expected session create log, got %+v", f.logs.entries)
	}
}

func TestStartSession_DiscardsPrevious(t *testing.T) {
	f := newTestBookingService(t, DefaultRetryPolicy)
	ctx := context.Background()

	first, _ := f.service.StartSession(ctx)
	_, _ = f.service.SelectSkip(ctx, 17934)

	second, err := f.service.StartSession(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if second.SessionID == first.SessionID {
		t.Error("expected a new session ID")
	}
	if second.Booking.Skip != nil {
		t.Error("expected fresh record")
	}
}

func TestEndSession(t *testing.T) {
	f := newTestBookingService(t, DefaultRetryPolicy)
	ctx := context.Background()

	snap, _ := f.service.StartSession(ctx)
	if err := f.service.EndSession(ctx); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := f.service.GetSnapshot(ctx); !errors.Is(err, primary.ErrNoSession) {
		t.Errorf("expected ErrNoSession after end, got %v", err)
	}
	last := f.logs.entries[len(f.logs.entries)-1]
	if last.action != "delete" || last.entityID != snap.SessionID {
		t.Errorf("expected session delete log, got %+v", last)
	}
}

// ============================================================================
// Record Update Tests
// ============================================================================

func TestSelectSkip(t *testing.T) {
	tests := []struct {
		name    string
		skipID  int
		wantErr error
	}{
		{name: "available skip", skipID: 17934},
		{name: "unknown skip", skipID: 1, wantErr: primary.ErrSkipNotFound},
		{name: "forbidden skip", skipID: 90001, wantErr: primary.ErrRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestBookingService(t, DefaultRetryPolicy)
			ctx := context.Background()
			_, _ = f.service.StartSession(ctx)

			snap, err := f.service.SelectSkip(ctx, tt.skipID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if snap.Booking.Skip == nil || snap.Booking.Skip.ID != tt.skipID {
				t.Fatalf("expected skip %d selected", tt.skipID)
			}
			if !snap.CanProceed {
				t.Error("expected CanProceed once a skip is chosen")
			}
			if snap.Quote == nil || snap.Quote.Total != 366 {
				t.Errorf("expected quote total 366, got %+v", snap.Quote)
			}
			if got := strings.Join(snap.AvailablePlacements, ","); got != "private,public" {
				t.Errorf("expected private,public placements, got %q", got)
			}
		})
	}
}

func TestSelectSkip_OnlyOnFirstStep(t *testing.T) {
	f := newTestBookingService(t, DefaultRetryPolicy)
	ctx := context.Background()
	_, _ = f.service.StartSession(ctx)
	_, _ = f.service.SelectSkip(ctx, 17934)
	_, _ = f.service.Advance(ctx)

	_, err := f.service.SelectSkip(ctx, 17936)
	if !errors.Is(err, primary.ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}

	snap, _ := f.service.GetSnapshot(ctx)
	if snap.Booking.Skip.ID != 17934 {
		t.Errorf("expected skip unchanged, got %d", snap.Booking.Skip.ID)
	}
}

func TestSelectSkip_ResetsPublicPlacement(t *testing.T) {
	f := newTestBookingService(t, DefaultRetryPolicy)
	ctx := context.Background()
	_, _ = f.service.StartSession(ctx)
	_, _ = f.service.SelectSkip(ctx, 17934)
	if _, err := f.service.SetPlacement(ctx, "public"); err != nil {
		t.Fatalf("expected public placement allowed, got %v", err)
	}

	snap, err := f.service.SelectSkip(ctx, 17936)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if snap.Booking.Placement != "" {
		t.Errorf("expected placement reset, got %q", snap.Booking.Placement)
	}
	if got := strings.Join(snap.AvailablePlacements, ","); got != "private" {
		t.Errorf("expected only private placement, got %q", got)
	}
}

func TestSetPlacement(t *testing.T) {
	tests := []struct {
		name      string
		skipID    int
		placement string
		wantErr   bool
		want      string
	}{
		{name: "private on any skip", skipID: 17936, placement: "private", want: "private"},
		{name: "public on road skip", skipID: 17934, placement: "Public", want: "public"},
		{name: "public on off-road skip", skipID: 17936, placement: "public", wantErr: true},
		{name: "unknown placement", skipID: 17934, placement: "roof", wantErr: true},
		{name: "public without a skip", placement: "public", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestBookingService(t, DefaultRetryPolicy)
			ctx := context.Background()
			_, _ = f.service.StartSession(ctx)
			if tt.skipID != 0 {
				_, _ = f.service.SelectSkip(ctx, tt.skipID)
			}

			snap, err := f.service.SetPlacement(ctx, tt.placement)
			if tt.wantErr {
				if !errors.Is(err, primary.ErrRejected) {
					t.Fatalf("expected ErrRejected, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if snap.Booking.Placement != tt.want {
				t.Errorf("expected %q, got %q", tt.want, snap.Booking.Placement)
			}
		})
	}
}

func TestSetDeliveryDate(t *testing.T) {
	f := newTestBookingService(t, DefaultRetryPolicy)
	ctx := context.Background()
	_, _ = f.service.StartSession(ctx)
	_, _ = f.service.SelectSkip(ctx, 17934)

	delivery := f.daysFromNow(5)
	snap, err := f.service.SetDeliveryDate(ctx, delivery)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !snap.Booking.DeliveryDate.Equal(delivery) {
		t.Errorf("expected delivery %v, got %v", delivery, snap.Booking.DeliveryDate)
	}
	if want := delivery.AddDate(0, 0, 14); !snap.Booking.CollectionDate.Equal(want) {
		t.Errorf("expected collection %v, got %v", want, snap.Booking.CollectionDate)
	}

	if _, err := f.service.SetDeliveryDate(ctx, f.daysFromNow(0)); err != nil {
		t.Errorf("expected today to be accepted, got %v", err)
	}
	if _, err := f.service.SetDeliveryDate(ctx, f.daysFromNow(-1)); !errors.Is(err, primary.ErrRejected) {
		t.Errorf("expected yesterday to be rejected, got %v", err)
	}

	snap, err = f.service.ClearDeliveryDate(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if snap.Booking.DeliveryDate != nil || snap.Booking.CollectionDate != nil {
		t.Error("expected delivery and collection cleared")
	}
}

func TestUpdates_AuditDiff(t *testing.T) {
	f := newTestBookingService(t, DefaultRetryPolicy)
	ctx := context.Background()
	snap, _ := f.service.StartSession(ctx)

	_, _ = f.service.SelectSkip(ctx, 17934)
	_, _ = f.service.SetDeliveryDate(ctx, f.daysFromNow(1))
	_, _ = f.service.SetDeliveryAddress(ctx, "1 Marine Parade")
	_, _ = f.service.SetDeliveryAddress(ctx, "1 Marine Parade")

	skipLogs := f.logs.updatesFor("booking", "skip")
	if len(skipLogs) != 1 || skipLogs[0].newValue != "17934" || skipLogs[0].entityID != snap.SessionID {
		t.Errorf("expected one skip change to 17934, got %+v", skipLogs)
	}
	if len(f.logs.updatesFor("booking", "collection_date")) != 1 {
		t.Error("expected derived collection date change to be logged")
	}
	if got := len(f.logs.updatesFor("booking", "delivery_address")); got != 1 {
		t.Errorf("expected unchanged address not to be logged again, got %d entries", got)
	}
}

func TestUpdates_LogFailureDoesNotFail(t *testing.T) {
	f := newTestBookingService(t, DefaultRetryPolicy)
	f.logs.err = errors.New("disk full")
	ctx := context.Background()

	if _, err := f.service.StartSession(ctx); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := f.service.SetDeliveryAddress(ctx, "1 Marine Parade"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestUploadPhoto(t *testing.T) {
	f := newTestBookingService(t, DefaultRetryPolicy)
	ctx := context.Background()
	start, _ := f.service.StartSession(ctx)

	snap, err := f.service.UploadPhoto(ctx, primary.UploadPhotoRequest{
		Filename: "drive.jpg",
		Content:  bytes.NewReader([]byte("jpeg")),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !snap.Booking.PhotoUploaded {
		t.Error("expected photo flag set")
	}
	wantLoc := "mem://" + start.SessionID + "/drive.jpg"
	if snap.Booking.PhotoLocation != wantLoc {
		t.Errorf("expected location %q, got %q", wantLoc, snap.Booking.PhotoLocation)
	}

	snap, _ = f.service.SetPhotoUploaded(ctx, false)
	if snap.Booking.PhotoUploaded || snap.Booking.PhotoLocation != "" {
		t.Error("expected photo flag and location cleared")
	}
}

func TestUploadPhoto_StoreError(t *testing.T) {
	f := newTestBookingService(t, DefaultRetryPolicy)
	f.photos.uploadErr = errors.New("quota exceeded")
	ctx := context.Background()
	_, _ = f.service.StartSession(ctx)

	if _, err := f.service.UploadPhoto(ctx, primary.UploadPhotoRequest{Filename: "a.jpg", Content: strings.NewReader("x")}); err == nil {
		t.Fatal("expected error")
	}
	snap, _ := f.service.GetSnapshot(ctx)
	if snap.Booking.PhotoUploaded {
		t.Error("expected photo flag unchanged")
	}
}

func TestUploadPhoto_ReadsNotBlockedDuringUpload(t *testing.T) {
	f := newTestBookingService(t, DefaultRetryPolicy)
	ctx := context.Background()
	_, _ = f.service.StartSession(ctx)

	started := make(chan struct{})
	release := make(chan struct{})
	f.photos.uploadFn = func(ctx context.Context, p secondary.PhotoUpload) {
		close(started)
		<-release
	}

	done := make(chan error)
	go func() {
		_, err := f.service.UploadPhoto(ctx, primary.UploadPhotoRequest{Filename: "slow.jpg", Content: strings.NewReader("x")})
		done <- err
	}()
	<-started

	reads := make(chan error)
	go func() {
		_, err := f.service.GetSnapshot(ctx)
		if err == nil {
			_, err = f.service.SetSpecialInstructions(ctx, "gate code 1234")
		}
		reads <- err
	}()
	select {
	case err := <-reads:
		if err != nil {
			t.Fatalf("expected session usable during upload, got %v", err)
		}
	case <-time.After(time.Second):
		close(release)
		t.Fatal("session blocked while photo was uploading")
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("expected upload to succeed, got %v", err)
	}
	snap, _ := f.service.GetSnapshot(ctx)
	if !snap.Booking.PhotoUploaded || snap.Booking.SpecialInstructions != "gate code 1234" {
		t.Errorf("expected both edits kept, got %+v", snap.Booking)
	}
}

func TestUploadPhoto_SessionReplacedDuringUpload(t *testing.T) {
	f := newTestBookingService(t, DefaultRetryPolicy)
	ctx := context.Background()
	_, _ = f.service.StartSession(ctx)

	started := make(chan struct{})
	release := make(chan struct{})
	f.photos.uploadFn = func(ctx context.Context, p secondary.PhotoUpload) {
		close(started)
		<-release
	}

	done := make(chan error)
	go func() {
		_, err := f.service.UploadPhoto(ctx, primary.UploadPhotoRequest{Filename: "late.jpg", Content: strings.NewReader("x")})
		done <- err
	}()
	<-started
	if _, err := f.service.StartSession(ctx); err != nil {
		t.Fatalf("expected restart during upload, got %v", err)
	}
	close(release)

	if err := <-done; !errors.Is(err, primary.ErrNoSession) {
		t.Errorf("expected ErrNoSession, got %v", err)
	}
	snap, _ := f.service.GetSnapshot(ctx)
	if snap.Booking.PhotoUploaded {
		t.Error("expected new session untouched by the stale upload")
	}
}

// ============================================================================
// Validation Tests
// ============================================================================

func TestValidateField(t *testing.T) {
	tests := []struct {
		name    string
		update  primary.CustomerUpdate
		field   string
		wantMsg string
		wantErr bool
	}{
		{name: "bad email", update: primary.CustomerUpdate{Email: strPtr("not-an-email")}, field: "email", wantMsg: "Please enter a valid email address"},
		{name: "empty email", field: "email", wantMsg: "email is required"},
		{name: "bad phone", update: primary.CustomerUpdate{Phone: strPtr("0123")}, field: "phone", wantMsg: "Please enter a valid phone number"},
		{name: "good phone", update: primary.CustomerUpdate{Phone: strPtr("+44 7700 900123")}, field: "phone"},
		{name: "empty name", field: "name", wantMsg: "name is required"},
		{name: "unknown field", field: "favourite_colour", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestBookingService(t, DefaultRetryPolicy)
			ctx := context.Background()
			_, _ = f.service.StartSession(ctx)
			_, _ = f.service.UpdateCustomerDetails(ctx, tt.update)

			snap, err := f.service.ValidateField(ctx, tt.field)
			if tt.wantErr {
				if !errors.Is(err, primary.ErrRejected) {
					t.Fatalf("expected ErrRejected, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got := snap.Errors[tt.field]; got != tt.wantMsg {
				t.Errorf("expected %q, got %q", tt.wantMsg, got)
			}
		})
	}
}

func TestClearError(t *testing.T) {
	f := newTestBookingService(t, DefaultRetryPolicy)
	ctx := context.Background()
	_, _ = f.service.StartSession(ctx)
	_, _ = f.service.ValidateField(ctx, "name")
	_, _ = f.service.ValidateField(ctx, "email")

	snap, err := f.service.ClearError(ctx, "name")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := snap.Errors["name"]; ok {
		t.Error("expected name error cleared")
	}
	if _, ok := snap.Errors["email"]; !ok {
		t.Error("expected email error kept")
	}
}

func TestSnapshot_ErrorsAreCopies(t *testing.T) {
	f := newTestBookingService(t, DefaultRetryPolicy)
	ctx := context.Background()
	_, _ = f.service.StartSession(ctx)

	snap, _ := f.service.ValidateField(ctx, "name")
	snap.Errors["name"] = "tampered"
	delete(snap.Errors, "name")

	again, _ := f.service.GetSnapshot(ctx)
	if again.Errors["name"] != "name is required" {
		t.Errorf("expected session errors untouched, got %v", again.Errors)
	}
}

// ============================================================================
// Navigation Tests
// ============================================================================

func TestAdvance_EmptyAddress(t *testing.T) {
	f := newTestBookingService(t, DefaultRetryPolicy)
	ctx := context.Background()
	_, _ = f.service.StartSession(ctx)
	_, _ = f.service.SelectSkip(ctx, 17934)
	_, _ = f.service.Advance(ctx)
	_, _ = f.service.SetPlacement(ctx, "private")

	resp, err := f.service.Advance(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.Moved {
		t.Fatal("expected not to move")
	}
	if resp.Snapshot.Step != 1 {
		t.Errorf("expected step 1, got %d", resp.Snapshot.Step)
	}
	if resp.Snapshot.Errors["address"] == "" {
		t.Error("expected address error")
	}
}

func TestAdvance_LogsStepChange(t *testing.T) {
	f := newTestBookingService(t, DefaultRetryPolicy)
	ctx := context.Background()
	_, _ = f.service.StartSession(ctx)
	_, _ = f.service.SelectSkip(ctx, 17934)
	_, _ = f.service.Advance(ctx)

	steps := f.logs.updatesFor("session", "step")
	if len(steps) != 1 || steps[0].oldValue != "Choose Skip" || steps[0].newValue != "Placement" {
		t.Errorf("expected Choose Skip -> Placement, got %+v", steps)
	}
}

func TestRetreat(t *testing.T) {
	f := newTestBookingService(t, DefaultRetryPolicy)
	ctx := context.Background()
	_, _ = f.service.StartSession(ctx)

	resp, err := f.service.Retreat(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.Moved || resp.Snapshot.Step != 0 {
		t.Errorf("expected to stay on first step, got moved=%v step=%d", resp.Moved, resp.Snapshot.Step)
	}

	_, _ = f.service.SelectSkip(ctx, 17934)
	_, _ = f.service.Advance(ctx)
	_, _ = f.service.Advance(ctx) // fails: no placement or address

	resp, _ = f.service.Retreat(ctx)
	if !resp.Moved || resp.Snapshot.Step != 0 {
		t.Errorf("expected back on first step, got moved=%v step=%d", resp.Moved, resp.Snapshot.Step)
	}
	if len(resp.Snapshot.Errors) != 0 {
		t.Errorf("expected errors cleared, got %v", resp.Snapshot.Errors)
	}
}

// ============================================================================
// Submit Tests
// ============================================================================

func TestSubmit_Success(t *testing.T) {
	f := newTestBookingService(t, DefaultRetryPolicy)
	f.readyToPay(t)
	ctx := context.Background()

	confirmed := make(chan primary.BookingEvent, 1)
	if err := f.service.OnConfirmed(func(_ context.Context, ev primary.BookingEvent) error {
		confirmed <- ev
		return nil
	}); err != nil {
		t.Fatalf("failed to register hook: %v", err)
	}

	resp, err := f.service.Submit(ctx, primary.PaymentDetails{
		Card:    primary.CardDetails{Number: "4242424242424242", Expiry: "12/30", CVV: "123", HolderName: "S CARTER"},
		Billing: primary.BillingAddress{Line1: "1 Marine Parade", City: "Lowestoft", Postcode: "NR32 1AA"},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected success, reason %q", resp.Reason)
	}
	if resp.Confirmation.Message != ConfirmationMessage {
		t.Errorf("unexpected message %q", resp.Confirmation.Message)
	}
	if resp.Confirmation.AmountMinor != 36600 {
		t.Errorf("expected 36600 pence, got %d", resp.Confirmation.AmountMinor)
	}
	if resp.Confirmation.TransactionID == "" || resp.Confirmation.Reference == "" {
		t.Error("expected reference and transaction ID")
	}
	if resp.Snapshot.Busy {
		t.Error("expected busy cleared")
	}

	req := f.gateway.requests[0]
	if req.Currency != "gbp" || req.Customer.Email != "sam@example.com" || req.Card.Number != "4242424242424242" {
		t.Errorf("unexpected charge request %+v", req)
	}

	select {
	case ev := <-confirmed:
		if ev.Reference != resp.Confirmation.Reference {
			t.Errorf("expected event for %s, got %s", resp.Confirmation.Reference, ev.Reference)
		}
	case <-time.After(time.Second):
		t.Fatal("confirmed hook not called")
	}

	// A confirmed booking is closed.
	if _, err := f.service.Submit(ctx, primary.PaymentDetails{}); !errors.Is(err, primary.ErrNotReadyToSubmit) {
		t.Errorf("expected ErrNotReadyToSubmit on resubmit, got %v", err)
	}
	if _, err := f.service.SetDeliveryAddress(ctx, "elsewhere"); !errors.Is(err, primary.ErrRejected) {
		t.Errorf("expected edits rejected after confirmation, got %v", err)
	}
}

func TestSubmit_WrongStep(t *testing.T) {
	f := newTestBookingService(t, DefaultRetryPolicy)
	ctx := context.Background()
	_, _ = f.service.StartSession(ctx)
	_, _ = f.service.SelectSkip(ctx, 17934)

	_, err := f.service.Submit(ctx, primary.PaymentDetails{})
	if !errors.Is(err, primary.ErrNotReadyToSubmit) {
		t.Fatalf("expected ErrNotReadyToSubmit, got %v", err)
	}
	if f.gateway.calls() != 0 {
		t.Error("expected gateway not called")
	}
}

func TestSubmit_InvalidDetails(t *testing.T) {
	f := newTestBookingService(t, DefaultRetryPolicy)
	f.readyToPay(t)
	ctx := context.Background()
	_, _ = f.service.UpdateCustomerDetails(ctx, primary.CustomerUpdate{Email: strPtr("not-an-email")})

	resp, err := f.service.Submit(ctx, primary.PaymentDetails{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.Success || !resp.Invalid {
		t.Fatalf("expected invalid response, got %+v", resp)
	}
	if resp.Snapshot.Errors["email"] != "Please enter a valid email address" {
		t.Errorf("expected email format error, got %v", resp.Snapshot.Errors)
	}
	if f.gateway.calls() != 0 {
		t.Error("expected gateway not called")
	}
}

func TestSubmit_BusyGuard(t *testing.T) {
	f := newTestBookingService(t, DefaultRetryPolicy)
	f.readyToPay(t)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	f.gateway.chargeFn = func(ctx context.Context, req secondary.ChargeRequest) (*secondary.ChargeResult, error) {
		close(started)
		<-release
		return &secondary.ChargeResult{Success: true, TransactionID: "txn_1"}, nil
	}

	done := make(chan *primary.SubmitResponse)
	go func() {
		resp, _ := f.service.Submit(ctx, primary.PaymentDetails{})
		done <- resp
	}()
	<-started

	if _, err := f.service.Submit(ctx, primary.PaymentDetails{}); !errors.Is(err, primary.ErrSubmissionInProgress) {
		t.Errorf("expected ErrSubmissionInProgress, got %v", err)
	}
	if _, err := f.service.SetDeliveryAddress(ctx, "elsewhere"); !errors.Is(err, primary.ErrSubmissionInProgress) {
		t.Errorf("expected edits blocked while busy, got %v", err)
	}
	if _, err := f.service.Retreat(ctx); !errors.Is(err, primary.ErrSubmissionInProgress) {
		t.Errorf("expected navigation blocked while busy, got %v", err)
	}
	snap, err := f.service.GetSnapshot(ctx)
	if err != nil {
		t.Fatalf("expected snapshot while busy, got %v", err)
	}
	if !snap.Busy {
		t.Error("expected busy flag set")
	}

	close(release)
	resp := <-done
	if resp == nil || !resp.Success {
		t.Fatalf("expected first submission to succeed, got %+v", resp)
	}
	if f.gateway.calls() != 1 {
		t.Errorf("expected exactly one charge, got %d", f.gateway.calls())
	}
}

func TestSubmit_FailureKeepsDataAndAllowsRetry(t *testing.T) {
	f := newTestBookingService(t, DefaultRetryPolicy)
	f.readyToPay(t)
	ctx := context.Background()

	failed := make(chan primary.BookingEvent, 1)
	_ = f.service.OnPaymentFailed(func(_ context.Context, ev primary.BookingEvent) error {
		failed <- ev
		return nil
	})

	f.gateway.chargeFn = func(ctx context.Context, req secondary.ChargeRequest) (*secondary.ChargeResult, error) {
		return &secondary.ChargeResult{Success: false, FailureReason: "Your card was declined."}, nil
	}

	resp, err := f.service.Submit(ctx, primary.PaymentDetails{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.Success || resp.Invalid || resp.Reason != "Your card was declined." {
		t.Fatalf("expected decline, got %+v", resp)
	}
	if resp.Snapshot.LastFailure != "Your card was declined." {
		t.Errorf("expected failure recorded, got %q", resp.Snapshot.LastFailure)
	}
	if resp.Snapshot.Booking.Customer.Name != "Sam Carter" || resp.Snapshot.Booking.Skip == nil {
		t.Error("expected entered data retained")
	}

	select {
	case ev := <-failed:
		if ev.Reason != "Your card was declined." {
			t.Errorf("unexpected event reason %q", ev.Reason)
		}
	case <-time.After(time.Second):
		t.Fatal("payment failed hook not called")
	}

	f.gateway.chargeFn = nil
	resp, err = f.service.Submit(ctx, primary.PaymentDetails{})
	if err != nil {
		t.Fatalf("expected retry to run, got %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected retry to succeed, got %q", resp.Reason)
	}
	if resp.Snapshot.LastFailure != "" {
		t.Error("expected failure cleared after success")
	}
}

func TestSubmit_GatewayError(t *testing.T) {
	f := newTestBookingService(t, DefaultRetryPolicy)
	f.readyToPay(t)
	f.gateway.chargeFn = func(ctx context.Context, req secondary.ChargeRequest) (*secondary.ChargeResult, error) {
		return nil, errGatewayDown
	}

	resp, err := f.service.Submit(context.Background(), primary.PaymentDetails{})
	if err != nil {
		t.Fatalf("expected failure in response, got %v", err)
	}
	if resp.Success || !strings.Contains(resp.Reason, "gateway unreachable") {
		t.Errorf("expected gateway error reason, got %+v", resp)
	}
}

func TestSubmit_RetryThrottled(t *testing.T) {
	f := newTestBookingService(t, RetryPolicy{Interval: 30 * time.Second, Burst: 1})
	f.readyToPay(t)
	ctx := context.Background()
	f.gateway.chargeFn = func(ctx context.Context, req secondary.ChargeRequest) (*secondary.ChargeResult, error) {
		return &secondary.ChargeResult{Success: false, FailureReason: "declined"}, nil
	}

	// First attempt is never throttled; the retry uses the single token.
	for i := 0; i < 2; i++ {
		if _, err := f.service.Submit(ctx, primary.PaymentDetails{}); err != nil {
			t.Fatalf("attempt %d: expected no error, got %v", i+1, err)
		}
	}

	if _, err := f.service.Submit(ctx, primary.PaymentDetails{}); !errors.Is(err, primary.ErrRetryThrottled) {
		t.Fatalf("expected ErrRetryThrottled, got %v", err)
	}
	if f.gateway.calls() != 2 {
		t.Errorf("expected 2 charges, got %d", f.gateway.calls())
	}

	f.clock.Advance(30 * time.Second)
	if _, err := f.service.Submit(ctx, primary.PaymentDetails{}); err != nil {
		t.Fatalf("expected retry allowed after interval, got %v", err)
	}
	if f.gateway.calls() != 3 {
		t.Errorf("expected 3 charges, got %d", f.gateway.calls())
	}
}

func TestSubmit_SessionLockedDuringPayment(t *testing.T) {
	f := newTestBookingService(t, DefaultRetryPolicy)
	f.readyToPay(t)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	f.gateway.chargeFn = func(ctx context.Context, req secondary.ChargeRequest) (*secondary.ChargeResult, error) {
		close(started)
		<-release
		return &secondary.ChargeResult{Success: true, TransactionID: "txn_9"}, nil
	}

	done := make(chan *primary.SubmitResponse)
	go func() {
		resp, _ := f.service.Submit(ctx, primary.PaymentDetails{})
		done <- resp
	}()
	<-started

	if err := f.service.EndSession(ctx); !errors.Is(err, primary.ErrSubmissionInProgress) {
		t.Errorf("EndSession: expected ErrSubmissionInProgress, got %v", err)
	}
	if _, err := f.service.StartSession(ctx); !errors.Is(err, primary.ErrSubmissionInProgress) {
		t.Errorf("StartSession: expected ErrSubmissionInProgress, got %v", err)
	}
	for _, e := range f.logs.entries {
		if e.action == "delete" {
			t.Errorf("expected no session delete while paying, got %+v", e)
		}
	}

	close(release)
	resp := <-done
	if resp == nil || !resp.Success || resp.Confirmation.TransactionID != "txn_9" {
		t.Fatalf("expected charged booking to be confirmed, got %+v", resp)
	}
	snap, err := f.service.GetSnapshot(ctx)
	if err != nil {
		t.Fatalf("expected session kept, got %v", err)
	}
	if snap.Confirmation == nil {
		t.Error("expected confirmation on the session")
	}
	if err := f.service.EndSession(ctx); err != nil {
		t.Errorf("expected EndSession after payment, got %v", err)
	}
}

func TestSubmit_EarlierStepNoLongerComplete(t *testing.T) {
	tests := []struct {
		name       string
		edit       func(f *bookingFixture) (*primary.Snapshot, error)
		wantReason string
	}{
		{
			name: "address blanked",
			edit: func(f *bookingFixture) (*primary.Snapshot, error) {
				return f.service.SetDeliveryAddress(context.Background(), "   ")
			},
			wantReason: "enter a delivery address",
		},
		{
			name: "placement cleared",
			edit: func(f *bookingFixture) (*primary.Snapshot, error) {
				return f.service.SetPlacement(context.Background(), "")
			},
			wantReason: "choose where the skip will be placed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestBookingService(t, DefaultRetryPolicy)
			f.readyToPay(t)
			if _, err := tt.edit(f); err != nil {
				t.Fatalf("edit: unexpected error: %v", err)
			}

			_, err := f.service.Submit(context.Background(), primary.PaymentDetails{})
			if !errors.Is(err, primary.ErrNotReadyToSubmit) {
				t.Fatalf("expected ErrNotReadyToSubmit, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantReason) {
				t.Errorf("expected reason %q in %v", tt.wantReason, err)
			}
			if f.gateway.calls() != 0 {
				t.Error("expected gateway not called")
			}
		})
	}
}

func TestSubmit_DeliveryDateLapsed(t *testing.T) {
	f := newTestBookingService(t, DefaultRetryPolicy)
	f.readyToPay(t)
	ctx := context.Background()

	// Delivery was booked three days out; the session sat idle past it.
	f.clock.Advance(4 * 24 * time.Hour)

	_, err := f.service.Submit(ctx, primary.PaymentDetails{})
	if !errors.Is(err, primary.ErrNotReadyToSubmit) {
		t.Fatalf("expected ErrNotReadyToSubmit, got %v", err)
	}
	if !strings.Contains(err.Error(), "is in the past") {
		t.Errorf("expected past-date reason, got %v", err)
	}
	if f.gateway.calls() != 0 {
		t.Error("expected gateway not called")
	}

	if _, err := f.service.SetDeliveryDate(ctx, f.daysFromNow(1)); err != nil {
		t.Fatalf("expected new date accepted, got %v", err)
	}
	resp, err := f.service.Submit(ctx, primary.PaymentDetails{})
	if err != nil || !resp.Success {
		t.Fatalf("expected submit with fresh date to succeed, got %+v %v", resp, err)
	}
}
