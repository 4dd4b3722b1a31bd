package auth

import (
	"errors"
	"fmt"
)

// ErrForbidden is returned when a valid claim is not allowed to reach a
// resource. Distinct from token errors: the caller is known, just not
// entitled.
var ErrForbidden = errors.New("forbidden")

// Resource identifies a protected resource class in the authorization
// matrix.
type Resource string

// Protected resources.
const (
	// ResourceVehicleHealth covers single-vehicle health, history and
	// contact-decision reads.
	ResourceVehicleHealth Resource = "vehicle_health"

	// ResourceFleetList is the fleet vehicle list.
	ResourceFleetList Resource = "fleet_list"

	// ResourceFleetSummary is the fleet aggregate summary, counts only.
	ResourceFleetSummary Resource = "fleet_summary"

	// ResourceBookingConfirm is booking confirmation.
	ResourceBookingConfirm Resource = "booking_confirm"

	// ResourceBookingsUpcoming is the global upcoming-bookings view.
	ResourceBookingsUpcoming Resource = "bookings_upcoming"

	// ResourceBookingHistory is per-vehicle booking history.
	ResourceBookingHistory Resource = "booking_history"
)

// Scope is the breadth of access a role has on a resource.
type Scope int

// Access scopes.
const (
	// ScopeDenied grants nothing.
	ScopeDenied Scope = iota

	// ScopeOwnVehicle grants access only to the vehicle bound in the
	// claim.
	ScopeOwnVehicle

	// ScopeAll grants access across all vehicles.
	ScopeAll

	// ScopeAggregate grants access to counts only, never per-vehicle
	// rows. Handlers on aggregate resources must not return ids.
	ScopeAggregate
)

// matrix is the role-to-resource authorization table. Kept as data so
// the whole policy is auditable in one place and testable in isolation.
var matrix = map[Resource]map[Role]Scope{
	ResourceVehicleHealth: {
		RoleOwner: ScopeOwnVehicle,
	},
	ResourceFleetList: {
		RoleOwner:         ScopeOwnVehicle,
		RoleServiceCenter: ScopeAll,
	},
	ResourceFleetSummary: {
		RoleManufacturing: ScopeAggregate,
	},
	ResourceBookingConfirm: {
		RoleOwner: ScopeOwnVehicle,
	},
	ResourceBookingsUpcoming: {
		RoleServiceCenter: ScopeAll,
	},
	ResourceBookingHistory: {
		RoleOwner: ScopeOwnVehicle,
	},
}

// ScopeFor returns the scope the role holds on the resource. Roles and
// resources absent from the matrix are denied.
func ScopeFor(role Role, resource Resource) Scope {
	return matrix[resource][role]
}

// Authorize checks whether the claim may access the resource, for
// vehicle-scoped resources also checking the target vehicle. An owner
// claim without a bound vehicle id fails closed on own-vehicle scopes.
func Authorize(claims *Claims, resource Resource, vehicleID string) error {
	if claims == nil {
		return ErrForbidden
	}

	switch ScopeFor(claims.Role, resource) {
	case ScopeAll, ScopeAggregate:
		return nil
	case ScopeOwnVehicle:
		if claims.VehicleID == "" {
			return fmt.Errorf("%w: claim has no bound vehicle", ErrForbidden)
		}
		if vehicleID != "" && vehicleID != claims.VehicleID {
			return fmt.Errorf("%w: vehicle %q is not bound to this claim", ErrForbidden, vehicleID)
		}
		return nil
	default:
		return fmt.Errorf("%w: role %q may not access %s", ErrForbidden, claims.Role, resource)
	}
}
