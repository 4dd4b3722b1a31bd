package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aurafleet/aurafleet/internal/api/handler"
)

type fakePinger struct {
	err error
}

func (p *fakePinger) Ping(context.Context) error { return p.err }

func TestOpsHandler_ReadinessCheck(t *testing.T) {
	ops := handler.NewOpsHandler("1.0.0", "2026-03-10T00:00:00Z", &fakePinger{})

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/ready", http.NoBody)
	rec := httptest.NewRecorder()

	ops.ReadinessCheck(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"OK"`)
}

func TestOpsHandler_ReadinessCheck_DatabaseDown(t *testing.T) {
	ops := handler.NewOpsHandler("1.0.0", "2026-03-10T00:00:00Z", &fakePinger{
		err: errors.New("dial tcp: connection refused"),
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/ready", http.NoBody)
	rec := httptest.NewRecorder()

	ops.ReadinessCheck(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "database unreachable")
}

func TestOpsHandler_ReadinessCheck_NoDatabase(t *testing.T) {
	// Running without a durable store, the probe reports ready.
	ops := handler.NewOpsHandler("1.0.0", "2026-03-10T00:00:00Z", nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/ready", http.NoBody)
	rec := httptest.NewRecorder()

	ops.ReadinessCheck(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
