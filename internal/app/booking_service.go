package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zoobzio/clockz"
	"github.com/zoobzio/hookz"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/example/skiphire/internal/core/booking"
	"github.com/example/skiphire/internal/core/pricing"
	"github.com/example/skiphire/internal/core/schedule"
	"github.com/example/skiphire/internal/core/validation"
	"github.com/example/skiphire/internal/core/wizard"
	"github.com/example/skiphire/internal/ports/primary"
	"github.com/example/skiphire/internal/ports/secondary"
)

// Hook event keys for the booking lifecycle.
const (
	EventBookingConfirmed = hookz.Key("booking.confirmed")
	EventPaymentFailed    = hookz.Key("booking.payment_failed")
)

// ConfirmationMessage is shown once a booking has been paid for.
const ConfirmationMessage = "Booking confirmed! You will receive a confirmation email shortly."

const (
	entitySession = "session"
	entityBooking = "booking"
)

// RetryPolicy throttles payment attempts that follow a failed one.
type RetryPolicy struct {
	Interval time.Duration
	Burst    int
}

// DefaultRetryPolicy allows three quick retries, then one every 30 seconds.
var DefaultRetryPolicy = RetryPolicy{Interval: 30 * time.Second, Burst: 3}

// bookingSession is the context of one wizard run.
type bookingSession struct {
	id            string
	state         wizard.State
	busy          bool
	photoLocation string
	confirmation  *primary.Confirmation
	lastFailure   string
	retries       *rate.Limiter
}

// BookingServiceImpl implements the BookingService interface.
// All session access happens under mu; the lock is released while the
// payment gateway runs and the busy flag keeps the session read-only.
type BookingServiceImpl struct {
	mu      sync.Mutex
	session *bookingSession

	catalogRepo secondary.CatalogRepository
	gateway     secondary.PaymentGateway
	photoStore  secondary.PhotoStore
	logWriter   secondary.LogWriter
	clock       clockz.Clock
	retry       RetryPolicy
	hooks       *hookz.Hooks[primary.BookingEvent]
	tracer      trace.Tracer
}

// NewBookingService creates a new BookingService with injected dependencies.
// logWriter may be nil. A nil clock means the real clock.
func NewBookingService(
	catalogRepo secondary.CatalogRepository,
	gateway secondary.PaymentGateway,
	photoStore secondary.PhotoStore,
	logWriter secondary.LogWriter,
	clock clockz.Clock,
	retry RetryPolicy,
) *BookingServiceImpl {
	if clock == nil {
		clock = clockz.RealClock
	}
	if retry.Burst < 1 {
		retry.Burst = 1
	}
	if retry.Interval <= 0 {
		retry.Interval = DefaultRetryPolicy.Interval
	}
	return &BookingServiceImpl{
		catalogRepo: catalogRepo,
		gateway:     gateway,
		photoStore:  photoStore,
		logWriter:   logWriter,
		clock:       clock,
		retry:       retry,
		hooks:       hookz.New[primary.BookingEvent](),
		tracer:      otel.Tracer("github.com/example/skiphire/internal/app"),
	}
}

// Close shuts down the lifecycle hooks.
func (s *BookingServiceImpl) Close() {
	s.hooks.Close()
}

// StartSession begins a fresh session, discarding any previous one.
// A session with a payment in flight cannot be replaced.
func (s *BookingServiceImpl) StartSession(ctx context.Context) (*primary.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil {
		if s.session.busy {
			return nil, primary.ErrSubmissionInProgress
		}
		s.logDelete(ctx, entitySession, s.session.id)
	}

	sess := &bookingSession{
		id:      uuid.NewString(),
		state:   wizard.NewState(),
		retries: rate.NewLimiter(rate.Every(s.retry.Interval), s.retry.Burst),
	}
	s.session = sess

	if s.logWriter != nil {
		_ = s.logWriter.LogCreate(ctx, entitySession, sess.id)
	}
	return s.snapshot(sess), nil
}

// EndSession disposes of the current session.
func (s *BookingServiceImpl) EndSession(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.current()
	if err != nil {
		return err
	}
	if sess.busy {
		return primary.ErrSubmissionInProgress
	}
	s.session = nil
	s.logDelete(ctx, entitySession, sess.id)
	return nil
}

// GetSnapshot returns the current session state.
func (s *BookingServiceImpl) GetSnapshot(ctx context.Context) (*primary.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.current()
	if err != nil {
		return nil, err
	}
	return s.snapshot(sess), nil
}

// SelectSkip chooses a skip from the catalog.
func (s *BookingServiceImpl) SelectSkip(ctx context.Context, skipID int) (*primary.Snapshot, error) {
	return s.update(ctx, "skip", func(sess *bookingSession) (booking.Record, error) {
		skip, err := lookupSkip(ctx, s.catalogRepo, skipID)
		if err != nil {
			return sess.state.Record, err
		}
		next, res := booking.SelectSkip(sess.state.Record, skip)
		if !res.Allowed {
			return sess.state.Record, rejected(res.Reason)
		}
		return next, nil
	})
}

// SetPlacement chooses private or public placement.
func (s *BookingServiceImpl) SetPlacement(ctx context.Context, placement string) (*primary.Snapshot, error) {
	return s.update(ctx, "placement", func(sess *bookingSession) (booking.Record, error) {
		p, ok := booking.ParsePlacement(placement)
		if !ok {
			p = booking.PlacementType(placement)
		}
		next, res := booking.SetPlacement(sess.state.Record, p)
		if !res.Allowed {
			return sess.state.Record, rejected(res.Reason)
		}
		return next, nil
	})
}

// SetDeliveryDate sets the delivery day. Days before today are rejected.
func (s *BookingServiceImpl) SetDeliveryDate(ctx context.Context, date time.Time) (*primary.Snapshot, error) {
	return s.update(ctx, "delivery_date", func(sess *bookingSession) (booking.Record, error) {
		next, res := booking.SetDeliveryDate(sess.state.Record, date, schedule.Day(s.clock.Now()))
		if !res.Allowed {
			return sess.state.Record, rejected(res.Reason)
		}
		return next, nil
	})
}

// ClearDeliveryDate removes the delivery and collection days.
func (s *BookingServiceImpl) ClearDeliveryDate(ctx context.Context) (*primary.Snapshot, error) {
	return s.update(ctx, "delivery_date", func(sess *bookingSession) (booking.Record, error) {
		return booking.ClearDeliveryDate(sess.state.Record), nil
	})
}

// SetDeliveryAddress sets the delivery address.
func (s *BookingServiceImpl) SetDeliveryAddress(ctx context.Context, address string) (*primary.Snapshot, error) {
	return s.update(ctx, "delivery_address", func(sess *bookingSession) (booking.Record, error) {
		return booking.SetDeliveryAddress(sess.state.Record, address), nil
	})
}

// SetSpecialInstructions sets the optional delivery notes.
func (s *BookingServiceImpl) SetSpecialInstructions(ctx context.Context, notes string) (*primary.Snapshot, error) {
	return s.update(ctx, "special_instructions", func(sess *bookingSession) (booking.Record, error) {
		return booking.SetSpecialInstructions(sess.state.Record, notes), nil
	})
}

// SetPhotoUploaded flips the placement photo flag directly.
func (s *BookingServiceImpl) SetPhotoUploaded(ctx context.Context, uploaded bool) (*primary.Snapshot, error) {
	return s.update(ctx, "photo_uploaded", func(sess *bookingSession) (booking.Record, error) {
		if !uploaded {
			sess.photoLocation = ""
		}
		return booking.SetPhotoUploaded(sess.state.Record, uploaded), nil
	})
}

// UploadPhoto sends a placement photo to the photo store and sets the flag.
// The session lock is released while the store runs, so reads and other
// edits proceed; the flag is applied only if the session is still editable.
func (s *BookingServiceImpl) UploadPhoto(ctx context.Context, req primary.UploadPhotoRequest) (*primary.Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "booking.upload_photo",
		trace.WithAttributes(attribute.String("photo.filename", req.Filename)))
	defer span.End()

	snap, err := s.uploadPhoto(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return snap, nil
}

func (s *BookingServiceImpl) uploadPhoto(ctx context.Context, req primary.UploadPhotoRequest) (*primary.Snapshot, error) {
	s.mu.Lock()
	sess, err := s.editable("photo_uploaded")
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	receipt, err := s.photoStore.Upload(ctx, secondary.PhotoUpload{
		SessionID: sess.id,
		Filename:  req.Filename,
		Content:   req.Content,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload photo: %w", err)
	}

	return s.update(ctx, "photo_uploaded", func(current *bookingSession) (booking.Record, error) {
		if current != sess {
			return current.state.Record, fmt.Errorf("%w: session ended during upload", primary.ErrNoSession)
		}
		current.photoLocation = receipt.Location
		return booking.SetPhotoUploaded(current.state.Record, true), nil
	})
}

// UpdateCustomerDetails changes the provided contact fields.
func (s *BookingServiceImpl) UpdateCustomerDetails(ctx context.Context, update primary.CustomerUpdate) (*primary.Snapshot, error) {
	return s.update(ctx, "customer", func(sess *bookingSession) (booking.Record, error) {
		c := sess.state.Record.Customer
		if update.Name != nil {
			c.Name = *update.Name
		}
		if update.Email != nil {
			c.Email = *update.Email
		}
		if update.Phone != nil {
			c.Phone = *update.Phone
		}
		return booking.SetCustomerDetails(sess.state.Record, c), nil
	})
}

// ValidateField validates a single field as it is filled in.
func (s *BookingServiceImpl) ValidateField(ctx context.Context, field string) (*primary.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.current()
	if err != nil {
		return nil, err
	}
	errs, _, err := wizard.ValidateField(field, sess.state.Record, sess.state.Errors)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", primary.ErrRejected, err)
	}
	sess.state.Errors = errs
	return s.snapshot(sess), nil
}

// ClearError removes the error for one field.
func (s *BookingServiceImpl) ClearError(ctx context.Context, field string) (*primary.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.current()
	if err != nil {
		return nil, err
	}
	sess.state.Errors = validation.ClearField(sess.state.Errors, field)
	return s.snapshot(sess), nil
}

// Advance attempts to move to the next step.
func (s *BookingServiceImpl) Advance(ctx context.Context) (*primary.TransitionResponse, error) {
	return s.navigate(ctx, wizard.Advance)
}

// Retreat moves to the previous step.
func (s *BookingServiceImpl) Retreat(ctx context.Context) (*primary.TransitionResponse, error) {
	return s.navigate(ctx, wizard.Retreat)
}

func (s *BookingServiceImpl) navigate(ctx context.Context, move func(wizard.State) wizard.TransitionResult) (*primary.TransitionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.current()
	if err != nil {
		return nil, err
	}
	if sess.busy {
		return nil, primary.ErrSubmissionInProgress
	}

	from := sess.state.Step
	res := move(sess.state)
	sess.state = res.State
	if res.Moved && s.logWriter != nil {
		_ = s.logWriter.LogUpdate(ctx, entitySession, sess.id, "step", from.String(), res.State.Step.String())
	}

	return &primary.TransitionResponse{
		Snapshot: s.snapshot(sess),
		Moved:    res.Moved,
		Reason:   res.Reason,
	}, nil
}

// Submit takes payment for the booking.
// The session must be on the Payment step with valid contact details. The
// session lock is released while the gateway runs; the busy flag rejects a
// second submission and any edits until the gateway answers.
func (s *BookingServiceImpl) Submit(ctx context.Context, details primary.PaymentDetails) (*primary.SubmitResponse, error) {
	ctx, span := s.tracer.Start(ctx, "booking.submit")
	defer span.End()

	s.mu.Lock()
	sess, err := s.current()
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if sess.busy {
		s.mu.Unlock()
		return nil, primary.ErrSubmissionInProgress
	}

	record := sess.state.Record
	guard := wizard.CanSubmit(wizard.SubmitContext{
		Step:      sess.state.Step,
		Busy:      sess.busy,
		Submitted: sess.confirmation != nil,
		Record:    record,
		Today:     schedule.Day(s.clock.Now()),
	})
	if !guard.Allowed {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", primary.ErrNotReadyToSubmit, guard.Reason)
	}

	errs, valid := wizard.ValidateStep(wizard.StepPayment, record, sess.state.Errors)
	sess.state.Errors = errs
	if !valid {
		snap := s.snapshot(sess)
		s.mu.Unlock()
		return &primary.SubmitResponse{Snapshot: snap, Invalid: true, Reason: "please correct the highlighted fields"}, nil
	}

	if sess.lastFailure != "" && !sess.retries.AllowN(s.clock.Now(), 1) {
		s.mu.Unlock()
		return nil, primary.ErrRetryThrottled
	}

	req := chargeRequest(record, details)
	sess.busy = true
	s.mu.Unlock()

	span.SetAttributes(
		attribute.String("booking.reference", req.Reference),
		attribute.Int64("booking.amount_minor", req.AmountMinor),
		attribute.Int("skip.id", record.Skip.ID),
	)
	result, chargeErr := s.gateway.Charge(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	sess.busy = false

	if s.session != sess {
		return nil, fmt.Errorf("%w: session ended during payment", primary.ErrNoSession)
	}

	event := primary.BookingEvent{
		SessionID:   sess.id,
		Reference:   req.Reference,
		AmountMinor: req.AmountMinor,
	}
	hookCtx := context.WithoutCancel(ctx)

	if reason := failureReason(result, chargeErr); reason != "" {
		if chargeErr != nil {
			span.RecordError(chargeErr)
		}
		span.SetStatus(codes.Error, reason)
		sess.lastFailure = reason
		event.Reason = reason
		_ = s.hooks.Emit(hookCtx, EventPaymentFailed, event)
		return &primary.SubmitResponse{Snapshot: s.snapshot(sess), Reason: reason}, nil
	}

	conf := &primary.Confirmation{
		Reference:     req.Reference,
		TransactionID: result.TransactionID,
		AmountMinor:   req.AmountMinor,
		Message:       ConfirmationMessage,
		ConfirmedAt:   s.clock.Now(),
	}
	sess.confirmation = conf
	sess.lastFailure = ""
	if s.logWriter != nil {
		_ = s.logWriter.LogUpdate(ctx, entityBooking, sess.id, "status", "pending", "confirmed")
	}
	_ = s.hooks.Emit(hookCtx, EventBookingConfirmed, event)

	confCopy := *conf
	return &primary.SubmitResponse{
		Snapshot:     s.snapshot(sess),
		Success:      true,
		Confirmation: &confCopy,
	}, nil
}

// OnConfirmed registers a handler called after a booking is paid for.
func (s *BookingServiceImpl) OnConfirmed(handler func(context.Context, primary.BookingEvent) error) error {
	_, err := s.hooks.Hook(EventBookingConfirmed, handler)
	return err
}

// OnPaymentFailed registers a handler called after a payment attempt fails.
func (s *BookingServiceImpl) OnPaymentFailed(handler func(context.Context, primary.BookingEvent) error) error {
	_, err := s.hooks.Hook(EventPaymentFailed, handler)
	return err
}

// current returns the active session. Callers must hold mu.
func (s *BookingServiceImpl) current() (*bookingSession, error) {
	if s.session == nil {
		return nil, primary.ErrNoSession
	}
	return s.session, nil
}

// update applies an edit to the booking record and audits the changed fields.
func (s *BookingServiceImpl) update(ctx context.Context, field string, edit func(*bookingSession) (booking.Record, error)) (*primary.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.editable(field)
	if err != nil {
		return nil, err
	}

	before := sess.state.Record
	after, err := edit(sess)
	if err != nil {
		return nil, err
	}
	sess.state.Record = after

	if s.logWriter != nil {
		for _, ch := range booking.Diff(before, after) {
			_ = s.logWriter.LogUpdate(ctx, entityBooking, sess.id, ch.Field, ch.OldValue, ch.NewValue)
		}
	}
	return s.snapshot(sess), nil
}

// editable returns the current session if field may be changed. Callers must hold mu.
func (s *BookingServiceImpl) editable(field string) (*bookingSession, error) {
	sess, err := s.current()
	if err != nil {
		return nil, err
	}
	if sess.busy {
		return nil, primary.ErrSubmissionInProgress
	}
	if res := wizard.CanEdit(wizard.EditContext{
		Step:      sess.state.Step,
		Field:     field,
		Submitted: sess.confirmation != nil,
	}); !res.Allowed {
		return nil, rejected(res.Reason)
	}
	return sess, nil
}

func (s *BookingServiceImpl) logDelete(ctx context.Context, entityType, id string) {
	if s.logWriter != nil {
		_ = s.logWriter.LogDelete(ctx, entityType, id)
	}
}

// snapshot copies the session for presentation. Callers must hold mu.
func (s *BookingServiceImpl) snapshot(sess *bookingSession) *primary.Snapshot {
	st := sess.state
	proceed := wizard.CanProceed(st.Step, st.Record)

	placements := booking.AvailablePlacements(st.Record.Skip)
	available := make([]string, len(placements))
	for i, p := range placements {
		available[i] = string(p)
	}

	snap := &primary.Snapshot{
		SessionID:           sess.id,
		Step:                int(st.Step),
		StepName:            st.Step.String(),
		Steps:               wizard.Names(),
		Booking:             bookingToDTO(st.Record, sess.photoLocation),
		Errors:              map[string]string(st.Errors.Clone()),
		Busy:                sess.busy,
		CanProceed:          proceed.Allowed,
		ProceedHint:         proceed.Reason,
		AvailablePlacements: available,
		LastFailure:         sess.lastFailure,
	}
	if q, ok := st.Record.Quote(); ok {
		snap.Quote = quoteToDTO(q)
	}
	if sess.confirmation != nil {
		c := *sess.confirmation
		snap.Confirmation = &c
	}
	return snap
}

func bookingToDTO(r booking.Record, photoLocation string) primary.Booking {
	r = r.Clone()
	b := primary.Booking{
		Placement:           string(r.Placement),
		DeliveryDate:        r.DeliveryDate,
		CollectionDate:      r.CollectionDate,
		DeliveryAddress:     r.DeliveryAddress,
		PhotoUploaded:       r.PhotoUploaded,
		PhotoLocation:       photoLocation,
		SpecialInstructions: r.SpecialInstructions,
		Customer: primary.Customer{
			Name:  r.Customer.Name,
			Email: r.Customer.Email,
			Phone: r.Customer.Phone,
		},
	}
	if r.Skip != nil {
		b.Skip = skipToDTO(*r.Skip)
	}
	return b
}

// chargeRequest builds the gateway request for a validated record.
func chargeRequest(r booking.Record, details primary.PaymentDetails) secondary.ChargeRequest {
	quote, _ := r.Quote()
	return secondary.ChargeRequest{
		Reference:   uuid.NewString(),
		AmountMinor: pricing.ToMinorUnits(quote.Total),
		Currency:    "gbp",
		Description: fmt.Sprintf("%d yard skip hire, delivery %s", r.Skip.Size, schedule.FormatDate(*r.DeliveryDate)),
		Customer: secondary.ChargeCustomer{
			Name:  r.Customer.Name,
			Email: r.Customer.Email,
			Phone: r.Customer.Phone,
		},
		Card: secondary.ChargeCard{
			Number:     details.Card.Number,
			Expiry:     details.Card.Expiry,
			CVV:        details.Card.CVV,
			HolderName: details.Card.HolderName,
		},
		Billing: secondary.ChargeBilling{
			Line1:    details.Billing.Line1,
			Line2:    details.Billing.Line2,
			City:     details.Billing.City,
			Postcode: details.Billing.Postcode,
		},
		PaymentMethodID: details.PaymentMethodID,
	}
}

// failureReason returns why a charge did not succeed, or "" on success.
func failureReason(result *secondary.ChargeResult, err error) string {
	switch {
	case err != nil:
		return fmt.Sprintf("payment could not be processed: %v", err)
	case result == nil:
		return "payment gateway returned no result"
	case !result.Success && result.FailureReason != "":
		return result.FailureReason
	case !result.Success:
		return "payment was declined"
	}
	return ""
}

func rejected(reason string) error {
	return fmt.Errorf("%w: %s", primary.ErrRejected, reason)
}

// Ensure BookingServiceImpl implements the interface
var _ primary.BookingService = (*BookingServiceImpl)(nil)
