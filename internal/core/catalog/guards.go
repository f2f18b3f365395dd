// Package catalog contains the pure business logic for the skip catalog.
// Guards are pure functions that evaluate preconditions without side effects.
package catalog

import (
	"fmt"
	"time"
)

// Skip is a rentable container size as published by the catalog source.
type Skip struct {
	ID               int
	Size             int // cubic yards
	HirePeriodDays   int
	TransportCost    *float64
	PerTonneCost     *float64
	PriceBeforeVAT   float64
	VAT              float64 // percent
	Postcode         string
	Area             string
	Forbidden        bool
	AllowedOnRoad    bool
	AllowsHeavyWaste bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
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

// SelectContext provides context for skip selection guards.
type SelectContext struct {
	SkipID    int
	Forbidden bool
}

// CanSelect evaluates whether a skip may be chosen for a booking.
// Rules:
// - Forbidden skips are never selectable
func CanSelect(ctx SelectContext) GuardResult {
	if ctx.Forbidden {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("skip %d is not available for booking", ctx.SkipID),
		}
	}

	return GuardResult{Allowed: true}
}

// Describe returns the marketing blurb for a skip size band.
func Describe(size int) string {
	switch {
	case size <= 6:
		return "Perfect for small home projects, garden clearance"
	case size <= 10:
		return "Ideal for medium renovations, kitchen/bathroom refits"
	case size <= 16:
		return "Great for large home projects, construction waste"
	default:
		return "Commercial projects, large construction sites"
	}
}

// Validate checks the catalog invariants a record must satisfy before it is served.
func Validate(s Skip) error {
	if s.PriceBeforeVAT < 0 {
		return fmt.Errorf("skip %d has negative price %.2f", s.ID, s.PriceBeforeVAT)
	}
	if s.VAT < 0 {
		return fmt.Errorf("skip %d has negative VAT rate %.2f", s.ID, s.VAT)
	}
	if s.HirePeriodDays < 0 {
		return fmt.Errorf("skip %d has negative hire period %d", s.ID, s.HirePeriodDays)
	}
	return nil
}
