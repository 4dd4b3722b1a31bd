package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aurafleet/aurafleet/internal/api/models"
	"github.com/aurafleet/aurafleet/internal/api/response"
	"github.com/aurafleet/aurafleet/internal/auth"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService *auth.Service
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Login handles POST /v1/auth/login - username/password login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		response.BadRequest(w, r, "validation error", toFieldErrors(errs))
		return
	}

	tokenResp, err := h.authService.Login(&req)
	if err != nil {
		if errors.Is(err, auth.ErrBadCredentials) {
			response.Unauthorized(w, r, "invalid credentials")
			return
		}
		response.InternalError(w, r, "login failed")
		return
	}

	response.JSON(w, r, http.StatusOK, tokenResp)
}

// ValidateToken handles POST /v1/auth/validate - decode a presented
// token. Always returns 200: validity is reported in the body, not the
// status code.
func (h *AuthHandler) ValidateToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	token := req.Token
	if token == "" {
		// Fall back to the Authorization header.
		header := r.Header.Get("Authorization")
		const bearerPrefix = "Bearer "
		if len(header) > len(bearerPrefix) && strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
			token = header[len(bearerPrefix):]
		}
	}
	if token == "" {
		response.BadRequest(w, r, "token is required", []models.FieldError{
			{Field: "token", Message: "token is required", Code: "REQUIRED"},
		})
		return
	}

	response.JSON(w, r, http.StatusOK, h.authService.ValidateToken(token))
}

// toFieldErrors converts auth field errors to API field errors.
func toFieldErrors(errs []auth.FieldError) []models.FieldError {
	fieldErrors := make([]models.FieldError, len(errs))
	for i, e := range errs {
		fieldErrors[i] = models.FieldError{
			Field:   e.Field,
			Message: e.Message,
			Code:    e.Code,
		}
	}
	return fieldErrors
}
