package auth

import (
	"crypto/subtle"
	"errors"
)

// ErrBadCredentials is returned for any failed verification. Unknown
// user, wrong password, and role mismatch deliberately share one error
// so login responses leak nothing about which part failed.
var ErrBadCredentials = errors.New("invalid credentials")

// CredentialVerifier checks a username/password pair and returns the
// caller's identity. Implementations must treat a declared role that
// does not match the stored role as a failure.
type CredentialVerifier interface {
	Verify(username, password string, declaredRole Role) (*Identity, error)
}

// StaticCredential is one entry in the static verifier's table.
type StaticCredential struct {
	Username  string
	Password  string
	Role      Role
	VehicleID string
}

// StaticVerifier verifies against a fixed in-process table. Suitable
// for demos and tests; production deployments supply their own
// CredentialVerifier backed by a directory or identity provider.
type StaticVerifier struct {
	byUsername map[string]StaticCredential
}

// NewStaticVerifier creates a verifier over the given credential table.
func NewStaticVerifier(credentials []StaticCredential) *StaticVerifier {
	table := make(map[string]StaticCredential, len(credentials))
	for _, c := range credentials {
		table[c.Username] = c
	}
	return &StaticVerifier{byUsername: table}
}

// DefaultCredentials is the demo credential table used when no external
// verifier is configured.
func DefaultCredentials() []StaticCredential {
	return []StaticCredential{
		{Username: "owner_v001", Password: "owner123", Role: RoleOwner, VehicleID: "V001"},
		{Username: "owner_v002", Password: "owner123", Role: RoleOwner, VehicleID: "V002"},
		{Username: "service_center", Password: "service123", Role: RoleServiceCenter},
		{Username: "manufacturing", Password: "mfg123", Role: RoleManufacturing},
	}
}

// Verify checks the pair against the table in constant time.
func (v *StaticVerifier) Verify(username, password string, declaredRole Role) (*Identity, error) {
	stored, ok := v.byUsername[username]
	if !ok {
		// Burn a comparison anyway so lookups and mismatches take
		// similar time.
		subtle.ConstantTimeCompare([]byte(password), []byte(password))
		return nil, ErrBadCredentials
	}

	if subtle.ConstantTimeCompare([]byte(password), []byte(stored.Password)) != 1 {
		return nil, ErrBadCredentials
	}
	if declaredRole != "" && declaredRole != stored.Role {
		return nil, ErrBadCredentials
	}

	return &Identity{
		Subject:   stored.Username,
		Role:      stored.Role,
		VehicleID: stored.VehicleID,
	}, nil
}

var _ CredentialVerifier = (*StaticVerifier)(nil)
