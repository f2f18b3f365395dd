// Package payment contains payment gateway adapters.
package payment

import (
	"context"
	"strings"
	"time"

	"github.com/zoobzio/clockz"

	"github.com/example/skiphire/internal/ports/secondary"
)

// DeclineCardNumber is the card the stub gateway always declines.
const DeclineCardNumber = "4000000000000002"

// StubGateway simulates a gateway: it waits a fixed delay and approves
// every charge except the decline test card.
type StubGateway struct {
	delay time.Duration
	clock clockz.Clock
}

// NewStubGateway creates a new StubGateway. A nil clock means the real clock.
func NewStubGateway(delay time.Duration, clock clockz.Clock) *StubGateway {
	if clock == nil {
		clock = clockz.RealClock
	}
	return &StubGateway{delay: delay, clock: clock}
}

// Charge waits for the simulated processing delay, then answers.
func (g *StubGateway) Charge(ctx context.Context, req secondary.ChargeRequest) (*secondary.ChargeResult, error) {
	if g.delay > 0 {
		select {
		case <-g.clock.After(g.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if digitsOnly(req.Card.Number) == DeclineCardNumber {
		return &secondary.ChargeResult{FailureReason: "Your card was declined."}, nil
	}
	return &secondary.ChargeResult{Success: true, TransactionID: "stub_" + req.Reference}, nil
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// Ensure StubGateway implements the interface
var _ secondary.PaymentGateway = (*StubGateway)(nil)
