// Package auth provides authentication and authorization for AuraFleet.
package auth

// Role is a caller's declared role. The authorization matrix keys on it.
type Role string

// Known roles.
const (
	// RoleOwner is a vehicle owner. Owner claims may carry a bound
	// vehicle id restricting them to that vehicle's resources.
	RoleOwner Role = "owner"

	// RoleServiceCenter is service-center staff with fleet-wide read
	// access to scores and statuses.
	RoleServiceCenter Role = "service_center"

	// RoleManufacturing is manufacturing analytics with access to
	// aggregate counts only, never per-vehicle data.
	RoleManufacturing Role = "manufacturing"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleServiceCenter, RoleManufacturing:
		return true
	}
	return false
}

// Identity is a verified caller: the outcome of credential verification,
// before any token is minted.
type Identity struct {
	// Subject is the stable caller identifier.
	Subject string

	// Role is the caller's role.
	Role Role

	// VehicleID binds an owner to a single vehicle. Empty for
	// non-owner roles.
	VehicleID string
}

// LoginRequest is the request body for username/password login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`

	// Role is the role the caller asserts; verification rejects the
	// login if it does not match the stored role.
	Role Role `json:"role"`
}

// Validate validates the login request.
func (r *LoginRequest) Validate() []FieldError {
	var errors []FieldError

	if r.Username == "" {
		errors = append(errors, FieldError{
			Field:   "username",
			Message: "username is required",
			Code:    "REQUIRED",
		})
	}
	if r.Password == "" {
		errors = append(errors, FieldError{
			Field:   "password",
			Message: "password is required",
			Code:    "REQUIRED",
		})
	}
	if r.Role != "" && !r.Role.Valid() {
		errors = append(errors, FieldError{
			Field:   "role",
			Message: "role must be one of owner, service_center, manufacturing",
			Code:    "INVALID",
		})
	}

	return errors
}

// FieldError represents a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// TokenResponse represents the response after successful login.
type TokenResponse struct {
	// AccessToken is the JWT access token for API authentication.
	AccessToken string `json:"accessToken"`

	// TokenType is always "Bearer".
	TokenType string `json:"tokenType"`

	// ExpiresIn is the number of seconds until the access token expires.
	ExpiresIn int64 `json:"expiresIn"`

	// Role echoes the authenticated role.
	Role Role `json:"role"`

	// VehicleID is the bound vehicle for owner tokens, if any.
	VehicleID string `json:"vehicleId,omitempty"`
}

// ValidationResult is the decoded view of a presented token, returned by
// the token-validate endpoint.
type ValidationResult struct {
	Valid     bool   `json:"valid"`
	Subject   string `json:"subject,omitempty"`
	Role      Role   `json:"role,omitempty"`
	VehicleID string `json:"vehicleId,omitempty"`
	ExpiresAt int64  `json:"expiresAt,omitempty"`
	Reason    string `json:"reason,omitempty"`
}
