package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	"github.com/aurafleet/aurafleet/internal/api/models"
)

// RateLimitConfig is a request budget over a fixed window.
type RateLimitConfig struct {
	RequestLimit int
	WindowLength time.Duration
}

// Tiered budgets. Login attempts get the tightest limit, telemetry
// ingestion sits in the middle, and read traffic gets the loosest.
var (
	AuthRateLimit      = RateLimitConfig{RequestLimit: 10, WindowLength: time.Minute}
	ExpensiveRateLimit = RateLimitConfig{RequestLimit: 30, WindowLength: time.Minute}
	StandardRateLimit  = RateLimitConfig{RequestLimit: 100, WindowLength: time.Minute}
)

// RateLimitByIP buckets requests by client IP. Run RealIP ahead of this
// so proxied traffic keys on the originating address.
func RateLimitByIP(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowLength,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(limitExceeded),
	)
}

// RateLimitByUser buckets requests by the authenticated subject, so one
// fleet account cannot starve another behind a shared NAT. Requests with
// no subject fall back to the IP bucket.
func RateLimitByUser(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowLength,
		httprate.WithKeyFuncs(keyByUserOrIP),
		httprate.WithLimitHandler(limitExceeded),
	)
}

func keyByUserOrIP(r *http.Request) (string, error) {
	if subject := GetSubject(r.Context()); subject != "" {
		return "user:" + subject, nil
	}
	return httprate.KeyByRealIP(r)
}

// limitExceeded writes the 429 problem. httprate does not expose the
// window reset, so Retry-After carries the full window as an upper bound.
func limitExceeded(w http.ResponseWriter, r *http.Request) {
	problem := models.NewTooManyRequests(GetRequestID(r.Context()), "Rate limit exceeded. Please try again later.")
	problem.Instance = r.URL.Path

	w.Header().Set("Retry-After", strconv.Itoa(60))
	problem.Write(w)
}
