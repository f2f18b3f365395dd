// Package schedule contains the pure date rules for delivery and collection.
// This is part of the Functional Core - no I/O, only pure functions.
//
// Dates are calendar days, carried as time.Time values at midnight UTC.
package schedule

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

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

// Day normalises t to its calendar day at midnight UTC, using the
// wall-clock fields of t in its own location.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return d, nil
}

// FormatDate renders a calendar date as YYYY-MM-DD.
func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}

// FormatLong renders a calendar date the way it is shown to customers,
// e.g. "Friday, 20 June 2025".
func FormatLong(d time.Time) string {
	return d.Format("Monday, 2 January 2006")
}

// CollectionDate returns the automatic collection day for a delivery:
// hirePeriodDays calendar days after delivery, rolling over months and years.
func CollectionDate(delivery time.Time, hirePeriodDays int) time.Time {
	return Day(delivery).AddDate(0, 0, hirePeriodDays)
}

// DeliveryContext provides context for delivery date guards.
type DeliveryContext struct {
	Date  time.Time
	Today time.Time
}

// CanDeliverOn evaluates whether a delivery can be booked for the given day.
// Rules:
// - Delivery must be today or later
func CanDeliverOn(ctx DeliveryContext) GuardResult {
	date := Day(ctx.Date)
	today := Day(ctx.Today)
	if date.Before(today) {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("delivery date %s is in the past (earliest is %s)", FormatDate(date), FormatDate(today)),
		}
	}

	return GuardResult{Allowed: true}
}
