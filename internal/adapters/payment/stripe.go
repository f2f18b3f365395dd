package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"

	"github.com/example/skiphire/internal/ports/secondary"
)

// intentCreator creates payment intents. paymentintent.Client satisfies it.
type intentCreator interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// StripeGateway charges cards through Stripe PaymentIntents. The card must
// already be tokenised client-side; raw card numbers never reach Stripe
// from here.
type StripeGateway struct {
	intents intentCreator
}

// NewStripeGateway creates a gateway using the given secret key.
func NewStripeGateway(secretKey string) *StripeGateway {
	return &StripeGateway{
		intents: paymentintent.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey},
	}
}

// Charge creates and confirms a PaymentIntent for the booking amount.
func (g *StripeGateway) Charge(ctx context.Context, req secondary.ChargeRequest) (*secondary.ChargeResult, error) {
	if req.PaymentMethodID == "" {
		return &secondary.ChargeResult{FailureReason: "card details must be tokenised before payment"}, nil
	}

	params := intentParams(req)
	params.Context = ctx

	pi, err := g.intents.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
			return &secondary.ChargeResult{FailureReason: stripeErr.Msg}, nil
		}
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded, stripe.PaymentIntentStatusProcessing:
		return &secondary.ChargeResult{Success: true, TransactionID: pi.ID}, nil
	case stripe.PaymentIntentStatusRequiresAction:
		return &secondary.ChargeResult{FailureReason: "the card needs additional authentication"}, nil
	default:
		return &secondary.ChargeResult{FailureReason: fmt.Sprintf("payment not completed (status %s)", pi.Status)}, nil
	}
}

// intentParams maps a charge request onto PaymentIntent parameters.
func intentParams(req secondary.ChargeRequest) *stripe.PaymentIntentParams {
	currency := req.Currency
	if currency == "" {
		currency = string(stripe.CurrencyGBP)
	}

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(req.AmountMinor),
		Currency:           stripe.String(currency),
		PaymentMethod:      stripe.String(req.PaymentMethodID),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Confirm:            stripe.Bool(true),
		Description:        stripe.String(req.Description),
	}
	if req.Customer.Email != "" {
		params.ReceiptEmail = stripe.String(req.Customer.Email)
	}
	params.SetIdempotencyKey(req.Reference)
	params.AddMetadata("booking_reference", req.Reference)
	return params
}

// Ensure StripeGateway implements the interface
var _ secondary.PaymentGateway = (*StripeGateway)(nil)
