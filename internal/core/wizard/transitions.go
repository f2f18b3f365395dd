package wizard

import (
	"fmt"
	"time"

	"github.com/example/skiphire/internal/core/booking"
	"github.com/example/skiphire/internal/core/schedule"
	"github.com/example/skiphire/internal/core/validation"
)

// State is the navigation state of one booking session.
type State struct {
	Step   Step
	Record booking.Record
	Errors validation.Errors
}

// NewState returns the state a fresh session starts in.
func NewState() State {
	return State{
		Step:   FirstStep,
		Record: booking.New(),
		Errors: validation.Clear(),
	}
}

// TransitionResult captures the outcome of a navigation attempt. The
// returned State is always consistent: on failure only Errors may differ
// from the input.
type TransitionResult struct {
	State  State
	Moved  bool
	Reason string // why the step did not change; empty when Moved
}

// Advance attempts to move forward one step.
// The step's validations always run so their failures are surfaced; the
// step index changes only if they pass, the completion predicate holds and
// the step is not the last one. A successful move clears all errors.
func Advance(s State) TransitionResult {
	errs, valid := ValidateStep(s.Step, s.Record, s.Errors)
	next := s
	next.Errors = errs

	if !valid {
		return TransitionResult{State: next, Reason: "please correct the highlighted fields"}
	}
	if res := CanProceed(s.Step, s.Record); !res.Allowed {
		return TransitionResult{State: next, Reason: res.Reason}
	}
	if s.Step >= LastStep {
		return TransitionResult{State: next, Reason: fmt.Sprintf("%s is the final step", s.Step)}
	}

	next.Step = s.Step + 1
	next.Errors = validation.Clear()
	return TransitionResult{State: next, Moved: true}
}

// Retreat moves back one step, never below the first. Errors are always
// cleared and no validation runs.
func Retreat(s State) TransitionResult {
	next := s
	next.Errors = validation.Clear()
	if s.Step <= FirstStep {
		return TransitionResult{State: next, Reason: fmt.Sprintf("%s is the first step", s.Step)}
	}

	next.Step = s.Step - 1
	return TransitionResult{State: next, Moved: true}
}

// EditContext provides context for record edit guards.
type EditContext struct {
	Step      Step
	Field     string
	Submitted bool
}

// CanEdit evaluates whether a record field may change in the current step.
// Rules:
// - Nothing changes once the booking is confirmed
// - The skip can only change on the ChooseSkip step
func CanEdit(ctx EditContext) GuardResult {
	if ctx.Submitted {
		return GuardResult{Allowed: false, Reason: "booking is already confirmed"}
	}
	if ctx.Field == "skip" && ctx.Step != StepChooseSkip {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("the skip can only be changed on the %s step", StepChooseSkip),
		}
	}

	return GuardResult{Allowed: true}
}

// SubmitContext provides context for submission guards.
type SubmitContext struct {
	Step      Step
	Busy      bool
	Submitted bool
	Record    booking.Record
	Today     time.Time
}

// CanSubmit evaluates whether payment may be submitted.
// Rules:
// - Booking must not already be confirmed
// - No other submission may be in flight
// - Session must be on the Payment step
// - Every earlier step must still be complete
// - Delivery must not have slipped into the past
func CanSubmit(ctx SubmitContext) GuardResult {
	if ctx.Submitted {
		return GuardResult{Allowed: false, Reason: "booking is already confirmed"}
	}
	if ctx.Busy {
		return GuardResult{Allowed: false, Reason: "payment is already being processed"}
	}
	if ctx.Step != StepPayment {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("payment can only be submitted on the %s step (current step: %s)", StepPayment, ctx.Step),
		}
	}
	for step := FirstStep; step < StepPayment; step++ {
		if res := CanProceed(step, ctx.Record); !res.Allowed {
			return GuardResult{
				Allowed: false,
				Reason:  fmt.Sprintf("%s step is incomplete: %s", step, res.Reason),
			}
		}
	}
	if res := schedule.CanDeliverOn(schedule.DeliveryContext{Date: *ctx.Record.DeliveryDate, Today: ctx.Today}); !res.Allowed {
		return GuardResult{Allowed: false, Reason: res.Reason}
	}

	return GuardResult{Allowed: true}
}
