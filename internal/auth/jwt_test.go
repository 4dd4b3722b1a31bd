package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurafleet/aurafleet/internal/auth"
)

func newTokenService(opts ...func(*auth.TokenConfig)) *auth.TokenService {
	cfg := auth.TokenConfig{
		SigningKey: "test-secret-key-for-testing-only",
		Issuer:     "https://api.aurafleet.io",
		Audience:   "aurafleet-api",
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return auth.NewTokenService(cfg)
}

func TestTokenService_GenerateAndValidate(t *testing.T) {
	svc := newTokenService()

	identity := &auth.Identity{
		Subject:   "owner_v001",
		Role:      auth.RoleOwner,
		VehicleID: "V001",
	}

	token, expiresAt, err := svc.Generate(identity)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "owner_v001", claims.Subject)
	assert.Equal(t, auth.RoleOwner, claims.Role)
	assert.Equal(t, "V001", claims.VehicleID)
	assert.Equal(t, "https://api.aurafleet.io", claims.Issuer)
}

func TestTokenService_InvalidToken(t *testing.T) {
	svc := newTokenService()

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"malformed token", "not.a.valid.jwt"},
		{"invalid base64", "xxx.yyy.zzz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Validate(tt.token)
			assert.ErrorIs(t, err, auth.ErrTokenInvalid)
		})
	}
}

func TestTokenService_WrongSigningKey(t *testing.T) {
	svc1 := newTokenService(func(cfg *auth.TokenConfig) { cfg.SigningKey = "key-one" })

	token, _, err := svc1.Generate(&auth.Identity{Subject: "service_center", Role: auth.RoleServiceCenter})
	require.NoError(t, err)

	svc2 := newTokenService(func(cfg *auth.TokenConfig) { cfg.SigningKey = "key-two" })

	_, err = svc2.Validate(token)
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
}

func TestTokenService_ExpiredToken(t *testing.T) {
	issued := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	clock := issued

	svc := newTokenService(func(cfg *auth.TokenConfig) {
		cfg.Expiry = time.Minute
		cfg.Now = func() time.Time { return clock }
	})

	// Expiry must reject every role, not just some.
	for _, role := range []auth.Role{auth.RoleOwner, auth.RoleServiceCenter, auth.RoleManufacturing} {
		clock = issued
		token, _, err := svc.Generate(&auth.Identity{Subject: "s", Role: role, VehicleID: "V001"})
		require.NoError(t, err)

		clock = issued.Add(2 * time.Minute)
		_, err = svc.Validate(token)
		assert.ErrorIs(t, err, auth.ErrTokenExpired, "role %s", role)
	}
}

func TestTokenService_UnknownRoleRejected(t *testing.T) {
	svc := newTokenService()

	token, _, err := svc.Generate(&auth.Identity{Subject: "s", Role: auth.Role("superuser")})
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
}
