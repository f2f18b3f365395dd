// Package wizard contains the step state machine for the booking wizard.
// This is part of the Functional Core - no I/O, only pure functions.
//
// Steps are strictly linear: ChooseSkip -> Placement -> Schedule -> Payment.
// Forward moves are gated by per-step validation and a completion predicate;
// backward moves are always allowed.
package wizard

import (
	"fmt"
	"strings"

	"github.com/example/skiphire/internal/core/booking"
	"github.com/example/skiphire/internal/core/validation"
)

// Step is a zero-based wizard step index.
type Step int

const (
	StepChooseSkip Step = iota
	StepPlacement
	StepSchedule
	StepPayment
)

// FirstStep and LastStep bound the step index.
const (
	FirstStep = StepChooseSkip
	LastStep  = StepPayment
)

var stepNames = [...]string{"Choose Skip", "Placement", "Schedule", "Payment"}

// String returns the display name of the step.
func (s Step) String() string {
	if s < FirstStep || s > LastStep {
		return fmt.Sprintf("Step(%d)", int(s))
	}
	return stepNames[s]
}

// Names returns the display names of all steps in order.
func Names() []string {
	return append([]string(nil), stepNames[:]...)
}

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// CanProceed evaluates the completion predicate of a step.
// Rules:
// - ChooseSkip: a skip is selected
// - Placement: a placement is chosen and the delivery address is non-empty
// - Schedule: a delivery date is set
// - Payment: name, email and phone are non-empty
func CanProceed(step Step, r booking.Record) GuardResult {
	switch step {
	case StepChooseSkip:
		if r.Skip == nil {
			return GuardResult{Allowed: false, Reason: "choose a skip to continue"}
		}
	case StepPlacement:
		if r.Placement == booking.PlacementUnset {
			return GuardResult{Allowed: false, Reason: "choose where the skip will be placed"}
		}
		if blank(r.DeliveryAddress) {
			return GuardResult{Allowed: false, Reason: "enter a delivery address"}
		}
	case StepSchedule:
		if r.DeliveryDate == nil {
			return GuardResult{Allowed: false, Reason: "choose a delivery date"}
		}
	case StepPayment:
		if blank(r.Customer.Name) || blank(r.Customer.Email) || blank(r.Customer.Phone) {
			return GuardResult{Allowed: false, Reason: "enter your name, email and phone number"}
		}
	default:
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("unknown step %d", int(step))}
	}

	return GuardResult{Allowed: true}
}

// ValidateStep runs the required-field validations of a step against the
// record and returns the updated error snapshot. Every validator runs, so
// all failures are reported at once.
func ValidateStep(step Step, r booking.Record, errs validation.Errors) (validation.Errors, bool) {
	ok := true
	switch step {
	case StepPlacement:
		errs, ok = validation.Required(errs, validation.FieldAddress, r.DeliveryAddress)
	case StepPayment:
		var nameOK, emailOK, phoneOK bool
		errs, nameOK = validation.Required(errs, validation.FieldName, r.Customer.Name)
		errs, emailOK = validation.Email(errs, r.Customer.Email)
		errs, phoneOK = validation.Required(errs, validation.FieldPhone, r.Customer.Phone)
		ok = nameOK && emailOK && phoneOK
	}
	if errs == nil {
		errs = validation.Errors{}
	}
	return errs, ok
}

// ValidateField runs the field-level validator for a single input as the
// customer fills it in. Phone numbers get a format check here that the
// step gate does not apply.
func ValidateField(field string, r booking.Record, errs validation.Errors) (validation.Errors, bool, error) {
	switch field {
	case validation.FieldAddress:
		errs, ok := validation.Required(errs, field, r.DeliveryAddress)
		return errs, ok, nil
	case validation.FieldName:
		errs, ok := validation.Required(errs, field, r.Customer.Name)
		return errs, ok, nil
	case validation.FieldEmail:
		errs, ok := validation.Email(errs, r.Customer.Email)
		return errs, ok, nil
	case validation.FieldPhone:
		errs, ok := validation.Phone(errs, r.Customer.Phone)
		return errs, ok, nil
	}
	return errs, false, fmt.Errorf("unknown field %q", field)
}
