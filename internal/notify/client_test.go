package notify_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurafleet/aurafleet/internal/health"
	"github.com/aurafleet/aurafleet/internal/notify"
)

func TestClient_ForwardDecision(t *testing.T) {
	var received struct {
		VehicleID     string  `json:"vehicle_id"`
		Severity      string  `json:"severity"`
		ShouldContact bool    `json:"should_contact"`
		Reason        string  `json:"reason"`
		Score         float64 `json:"score"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/contact-requests", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client := notify.NewClient(notify.ClientConfig{
		BaseURL: server.URL,
		APIKey:  "secret",
		Logger:  zerolog.Nop(),
	})

	decision := health.Decide("V001", 0.85)
	require.NoError(t, client.ForwardDecision(context.Background(), decision))

	assert.Equal(t, "V001", received.VehicleID)
	assert.Equal(t, "critical", received.Severity)
	assert.True(t, received.ShouldContact)
	assert.Equal(t, health.ReasonHighRisk, received.Reason)
	assert.Equal(t, 0.85, received.Score)
}

func TestClient_ForwardDecision_LowRiskSkipped(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client := notify.NewClient(notify.ClientConfig{BaseURL: server.URL, Logger: zerolog.Nop()})

	decision := health.Decide("V001", 0.05)
	require.NoError(t, client.ForwardDecision(context.Background(), decision))
	assert.Zero(t, calls.Load(), "low-risk decisions never leave the process")
}

func TestClient_ForwardDecision_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client := notify.NewClient(notify.ClientConfig{BaseURL: server.URL, Logger: zerolog.Nop()})

	err := client.ForwardDecision(context.Background(), health.Decide("V001", 0.85))
	assert.ErrorIs(t, err, notify.ErrForwardRejected)
}
