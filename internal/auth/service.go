package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Service provides login and token validation.
type Service struct {
	verifier CredentialVerifier
	tokens   *TokenService
	logger   zerolog.Logger
}

// ServiceConfig holds configuration for the auth service.
type ServiceConfig struct {
	Verifier CredentialVerifier
	Tokens   *TokenService
	Logger   zerolog.Logger
}

// NewService creates a new auth service. When no verifier is supplied
// the demo credential table is used.
func NewService(cfg ServiceConfig) *Service {
	verifier := cfg.Verifier
	if verifier == nil {
		verifier = NewStaticVerifier(DefaultCredentials())
	}
	return &Service{
		verifier: verifier,
		tokens:   cfg.Tokens,
		logger:   cfg.Logger,
	}
}

// Login verifies the credentials and mints a signed claim.
func (s *Service) Login(req *LoginRequest) (*TokenResponse, error) {
	identity, err := s.verifier.Verify(req.Username, req.Password, req.Role)
	if err != nil {
		s.logger.Warn().
			Str("username", req.Username).
			Msg("login rejected")
		return nil, err
	}

	token, expiresAt, err := s.tokens.Generate(identity)
	if err != nil {
		return nil, fmt.Errorf("generating access token: %w", err)
	}

	s.logger.Info().
		Str("subject", identity.Subject).
		Str("role", string(identity.Role)).
		Msg("login succeeded")

	return &TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(time.Until(expiresAt).Seconds()),
		Role:        identity.Role,
		VehicleID:   identity.VehicleID,
	}, nil
}

// ValidateToken decodes a presented token into a validation result.
// Rejections are reported in the result, not as errors: an invalid
// token is a well-formed answer to "is this valid".
func (s *Service) ValidateToken(tokenString string) *ValidationResult {
	claims, err := s.tokens.Validate(tokenString)
	if err != nil {
		reason := "invalid_token"
		if errors.Is(err, ErrTokenExpired) {
			reason = "token_expired"
		}
		return &ValidationResult{Valid: false, Reason: reason}
	}

	result := &ValidationResult{
		Valid:     true,
		Subject:   claims.Subject,
		Role:      claims.Role,
		VehicleID: claims.VehicleID,
	}
	if claims.ExpiresAt != nil {
		result.ExpiresAt = claims.ExpiresAt.Unix()
	}
	return result
}

// Claims validates the raw token and returns its claims, for middleware.
func (s *Service) Claims(tokenString string) (*Claims, error) {
	return s.tokens.Validate(tokenString)
}
