package secondary

import "context"

// PaymentGateway defines the secondary port for taking payment.
type PaymentGateway interface {
	// Charge takes payment for a booking. A declined payment is reported as
	// a ChargeResult with Success=false; an error means the gateway could
	// not be reached or did not answer.
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}

// ChargeRequest carries everything a gateway may need to take payment.
type ChargeRequest struct {
	Reference       string
	AmountMinor     int64  // pence
	Currency        string // ISO 4217, lower case
	Description     string
	Customer        ChargeCustomer
	Card            ChargeCard
	Billing         ChargeBilling
	PaymentMethodID string // tokenised card, required by hosted gateways
}

// ChargeCustomer holds the contact details sent with a charge.
type ChargeCustomer struct {
	Name  string
	Email string
	Phone string
}

// ChargeCard holds raw card fields as typed into the payment form.
type ChargeCard struct {
	Number     string
	Expiry     string
	CVV        string
	HolderName string
}

// ChargeBilling holds the billing address.
type ChargeBilling struct {
	Line1    string
	Line2    string
	City     string
	Postcode string
}

// ChargeResult is the gateway's answer.
type ChargeResult struct {
	Success       bool
	TransactionID string
	FailureReason string
}
