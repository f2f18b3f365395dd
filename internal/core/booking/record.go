// Package booking contains the pure business logic for the in-progress booking record.
// This is part of the Functional Core - no I/O, only pure functions.
//
// A Record is a value. Update operations take a record and return a new one;
// derived fields (the collection date) are recomputed inside every update
// that touches their inputs.
package booking

import (
	"strings"
	"time"

	"github.com/example/skiphire/internal/core/catalog"
	"github.com/example/skiphire/internal/core/pricing"
	"github.com/example/skiphire/internal/core/schedule"
)

// PlacementType is where the skip will stand.
type PlacementType string

const (
	PlacementUnset   PlacementType = ""
	PlacementPrivate PlacementType = "private"
	PlacementPublic  PlacementType = "public"
)

// ParsePlacement maps user input to a placement type.
func ParsePlacement(s string) (PlacementType, bool) {
	switch PlacementType(strings.ToLower(strings.TrimSpace(s))) {
	case PlacementPrivate:
		return PlacementPrivate, true
	case PlacementPublic:
		return PlacementPublic, true
	case PlacementUnset:
		return PlacementUnset, true
	}
	return PlacementUnset, false
}

// CustomerDetails are the contact fields collected on the payment step.
type CustomerDetails struct {
	Name  string
	Email string
	Phone string
}

// Record holds every selection made across the wizard steps.
type Record struct {
	Skip                *catalog.Skip
	Placement           PlacementType
	DeliveryDate        *time.Time
	CollectionDate      *time.Time
	DeliveryAddress     string
	PhotoUploaded       bool
	SpecialInstructions string
	Customer            CustomerDetails
}

// New returns an empty record.
func New() Record {
	return Record{}
}

// Clone returns a deep copy so callers can hand out snapshots safely.
func (r Record) Clone() Record {
	out := r
	if r.Skip != nil {
		s := *r.Skip
		out.Skip = &s
	}
	if r.DeliveryDate != nil {
		d := *r.DeliveryDate
		out.DeliveryDate = &d
	}
	if r.CollectionDate != nil {
		d := *r.CollectionDate
		out.CollectionDate = &d
	}
	return out
}

// Quote returns the price breakdown for the selected skip.
func (r Record) Quote() (pricing.Quote, bool) {
	if r.Skip == nil {
		return pricing.Quote{}, false
	}
	return pricing.NewQuote(r.Skip.PriceBeforeVAT, r.Skip.VAT), true
}

// AvailablePlacements lists the placements the skip supports. Private land
// is always possible; the road only when the skip is allowed on it.
func AvailablePlacements(skip *catalog.Skip) []PlacementType {
	if skip != nil && skip.AllowedOnRoad {
		return []PlacementType{PlacementPrivate, PlacementPublic}
	}
	return []PlacementType{PlacementPrivate}
}

// derive recomputes the collection date from its two inputs.
func derive(r Record) Record {
	if r.Skip == nil || r.DeliveryDate == nil {
		r.CollectionDate = nil
		return r
	}
	c := schedule.CollectionDate(*r.DeliveryDate, r.Skip.HirePeriodDays)
	r.CollectionDate = &c
	return r
}

// SelectSkip sets the selected skip. A public placement the new skip cannot
// support is reset to unset.
func SelectSkip(r Record, skip catalog.Skip) (Record, GuardResult) {
	if res := catalog.CanSelect(catalog.SelectContext{SkipID: skip.ID, Forbidden: skip.Forbidden}); !res.Allowed {
		return r, GuardResult{Allowed: false, Reason: res.Reason}
	}

	out := r.Clone()
	out.Skip = &skip
	if out.Placement == PlacementPublic && !skip.AllowedOnRoad {
		out.Placement = PlacementUnset
	}
	return derive(out), GuardResult{Allowed: true}
}

// SetPlacement sets where the skip will stand.
func SetPlacement(r Record, p PlacementType) (Record, GuardResult) {
	ctx := PlacementContext{Requested: p}
	if r.Skip != nil {
		ctx.SkipSelected = true
		ctx.AllowedOnRoad = r.Skip.AllowedOnRoad
	}
	if res := CanSetPlacement(ctx); !res.Allowed {
		return r, res
	}

	out := r.Clone()
	out.Placement = p
	return out, GuardResult{Allowed: true}
}

// SetDeliveryDate sets the delivery day and recomputes the collection day.
func SetDeliveryDate(r Record, date, today time.Time) (Record, GuardResult) {
	if res := schedule.CanDeliverOn(schedule.DeliveryContext{Date: date, Today: today}); !res.Allowed {
		return r, GuardResult{Allowed: false, Reason: res.Reason}
	}

	out := r.Clone()
	d := schedule.Day(date)
	out.DeliveryDate = &d
	return derive(out), GuardResult{Allowed: true}
}

// ClearDeliveryDate removes the delivery day and with it the collection day.
func ClearDeliveryDate(r Record) Record {
	out := r.Clone()
	out.DeliveryDate = nil
	return derive(out)
}

// SetDeliveryAddress sets the delivery address.
func SetDeliveryAddress(r Record, address string) Record {
	out := r.Clone()
	out.DeliveryAddress = address
	return out
}

// SetSpecialInstructions sets the free-text delivery notes.
func SetSpecialInstructions(r Record, notes string) Record {
	out := r.Clone()
	out.SpecialInstructions = notes
	return out
}

// SetPhotoUploaded records whether a placement photo has been provided.
func SetPhotoUploaded(r Record, uploaded bool) Record {
	out := r.Clone()
	out.PhotoUploaded = uploaded
	return out
}

// SetCustomerDetails replaces the customer contact fields.
func SetCustomerDetails(r Record, c CustomerDetails) Record {
	out := r.Clone()
	out.Customer = c
	return out
}
