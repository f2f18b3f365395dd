// Package primary defines the primary ports (driving adapters) for the application.
// These are the interfaces through which the outside world drives the application.
package primary

import (
	"context"
	"errors"
	"io"
	"time"
)

// Errors returned by BookingService. Field validation failures are not
// errors; they are reported in Snapshot.Errors.
var (
	ErrNoSession            = errors.New("no booking session in progress")
	ErrRejected             = errors.New("update rejected")
	ErrSkipNotFound         = errors.New("skip not found")
	ErrSubmissionInProgress = errors.New("payment is already being processed")
	ErrNotReadyToSubmit     = errors.New("booking is not ready to submit")
	ErrRetryThrottled       = errors.New("too many payment attempts, try again shortly")
)

// BookingService defines the primary port for the booking wizard.
// It owns one session at a time: the step index, the booking record, the
// field errors and the busy flag of an in-flight payment.
type BookingService interface {
	// StartSession begins a fresh session, discarding any previous one.
	StartSession(ctx context.Context) (*Snapshot, error)

	// EndSession disposes of the current session.
	EndSession(ctx context.Context) error

	// GetSnapshot returns the current session state.
	GetSnapshot(ctx context.Context) (*Snapshot, error)

	// SelectSkip chooses a skip from the catalog. Only allowed on the first step.
	SelectSkip(ctx context.Context, skipID int) (*Snapshot, error)

	// SetPlacement chooses private or public placement.
	SetPlacement(ctx context.Context, placement string) (*Snapshot, error)

	// SetDeliveryDate sets the delivery day; the collection day follows.
	SetDeliveryDate(ctx context.Context, date time.Time) (*Snapshot, error)

	// ClearDeliveryDate removes the delivery and collection days.
	ClearDeliveryDate(ctx context.Context) (*Snapshot, error)

	// SetDeliveryAddress sets the delivery address.
	SetDeliveryAddress(ctx context.Context, address string) (*Snapshot, error)

	// SetSpecialInstructions sets the optional delivery notes.
	SetSpecialInstructions(ctx context.Context, notes string) (*Snapshot, error)

	// SetPhotoUploaded flips the placement photo flag directly.
	SetPhotoUploaded(ctx context.Context, uploaded bool) (*Snapshot, error)

	// UploadPhoto sends a placement photo to the upload target and sets the flag.
	UploadPhoto(ctx context.Context, req UploadPhotoRequest) (*Snapshot, error)

	// UpdateCustomerDetails changes the provided contact fields.
	UpdateCustomerDetails(ctx context.Context, update CustomerUpdate) (*Snapshot, error)

	// ValidateField validates a single field as it is filled in.
	ValidateField(ctx context.Context, field string) (*Snapshot, error)

	// ClearError removes the error for one field.
	ClearError(ctx context.Context, field string) (*Snapshot, error)

	// Advance attempts to move to the next step.
	Advance(ctx context.Context) (*TransitionResponse, error)

	// Retreat moves to the previous step.
	Retreat(ctx context.Context) (*TransitionResponse, error)

	// Submit takes payment for the booking. Only one submission may be in flight.
	Submit(ctx context.Context, details PaymentDetails) (*SubmitResponse, error)

	// OnConfirmed registers a handler called after a booking is paid for.
	OnConfirmed(handler func(context.Context, BookingEvent) error) error

	// OnPaymentFailed registers a handler called after a payment attempt fails.
	OnPaymentFailed(handler func(context.Context, BookingEvent) error) error
}

// Snapshot is a read-only copy of the session for presentation.
type Snapshot struct {
	SessionID           string            `json:"session_id"`
	Step                int               `json:"step"`
	StepName            string            `json:"step_name"`
	Steps               []string          `json:"steps"`
	Booking             Booking           `json:"booking"`
	Errors              map[string]string `json:"errors"`
	Busy                bool              `json:"busy"`
	CanProceed          bool              `json:"can_proceed"`
	ProceedHint         string            `json:"proceed_hint,omitempty"`
	AvailablePlacements []string          `json:"available_placements"`
	Quote               *Quote            `json:"quote,omitempty"`
	Confirmation        *Confirmation     `json:"confirmation,omitempty"`
	LastFailure         string            `json:"last_failure,omitempty"`
}

// IsFinalStep reports whether the snapshot is on the last wizard step.
func (s *Snapshot) IsFinalStep() bool {
	return s.Step == len(s.Steps)-1
}

// Booking is the presentation view of the booking record.
type Booking struct {
	Skip                *Skip      `json:"skip,omitempty"`
	Placement           string     `json:"placement,omitempty"`
	DeliveryDate        *time.Time `json:"delivery_date,omitempty"`
	CollectionDate      *time.Time `json:"collection_date,omitempty"`
	DeliveryAddress     string     `json:"delivery_address"`
	PhotoUploaded       bool       `json:"photo_uploaded"`
	PhotoLocation       string     `json:"photo_location,omitempty"`
	SpecialInstructions string     `json:"special_instructions"`
	Customer            Customer   `json:"customer"`
}

// Customer holds the contact details.
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// CustomerUpdate changes only the non-nil fields.
type CustomerUpdate struct {
	Name  *string
	Email *string
	Phone *string
}

// UploadPhotoRequest contains the photo to upload.
type UploadPhotoRequest struct {
	Filename string
	Content  io.Reader
}

// TransitionResponse contains the result of a navigation attempt.
type TransitionResponse struct {
	Snapshot *Snapshot `json:"snapshot"`
	Moved    bool      `json:"moved"`
	Reason   string    `json:"reason,omitempty"`
}

// PaymentDetails are the fields of the payment form.
type PaymentDetails struct {
	Card            CardDetails    `json:"card"`
	Billing         BillingAddress `json:"billing"`
	PaymentMethodID string         `json:"payment_method_id,omitempty"`
}

// CardDetails holds the card fields of the payment form.
type CardDetails struct {
	Number     string `json:"number"`
	Expiry     string `json:"expiry"`
	CVV        string `json:"cvv"`
	HolderName string `json:"holder_name"`
}

// BillingAddress holds the billing address of the payment form.
type BillingAddress struct {
	Line1    string `json:"line1"`
	Line2    string `json:"line2,omitempty"`
	City     string `json:"city"`
	Postcode string `json:"postcode"`
}

// SubmitResponse contains the result of a payment submission.
// Invalid means the payment fields failed validation and the gateway was not
// called; the field errors are in Snapshot.Errors. Otherwise Success=false
// with a Reason means the gateway declined or failed and the booking may be
// resubmitted.
type SubmitResponse struct {
	Snapshot     *Snapshot     `json:"snapshot"`
	Success      bool          `json:"success"`
	Invalid      bool          `json:"invalid,omitempty"`
	Reason       string        `json:"reason,omitempty"`
	Confirmation *Confirmation `json:"confirmation,omitempty"`
}

// Confirmation is the receipt of a paid booking.
type Confirmation struct {
	Reference     string    `json:"reference"`
	TransactionID string    `json:"transaction_id"`
	AmountMinor   int64     `json:"amount_minor"`
	Message       string    `json:"message"`
	ConfirmedAt   time.Time `json:"confirmed_at"`
}

// BookingEvent is delivered to lifecycle handlers.
type BookingEvent struct {
	SessionID   string
	Reference   string
	AmountMinor int64
	Reason      string // failure reason, empty on confirmation
}
