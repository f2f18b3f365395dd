package booking

import "fmt"

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

// PlacementContext provides context for placement guards.
type PlacementContext struct {
	Requested     PlacementType
	SkipSelected  bool
	AllowedOnRoad bool
}

// CanSetPlacement evaluates whether a placement may be chosen.
// Rules:
// - Placement must be private, public, or unset
// - Public placement requires a skip that is allowed on the road
func CanSetPlacement(ctx PlacementContext) GuardResult {
	switch ctx.Requested {
	case PlacementUnset, PlacementPrivate:
		return GuardResult{Allowed: true}
	case PlacementPublic:
		if !ctx.SkipSelected {
			return GuardResult{
				Allowed: false,
				Reason:  "choose a skip before selecting road placement",
			}
		}
		if !ctx.AllowedOnRoad {
			return GuardResult{
				Allowed: false,
				Reason:  "this skip cannot be placed on a public road",
			}
		}
		return GuardResult{Allowed: true}
	default:
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("unknown placement type %q (expected private or public)", ctx.Requested),
		}
	}
}
