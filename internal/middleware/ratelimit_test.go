package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/ticklist/ticklist/internal/ratelimit"
)

func newLoginLimiter(t *testing.T, rpm, burst int) *ratelimit.Limiter {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return ratelimit.New(client, rpm, burst)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitLogin_Disabled(t *testing.T) {
	handler := RateLimitLogin(RateLimitConfig{
		Logger:  testLogger(),
		Limiter: newLoginLimiter(t, 1, 1),
		Enabled: false,
	})(okHandler())

	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/session", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("disabled limiter must pass all requests, got %d", rec.Code)
		}
	}
}

func TestRateLimitLogin_BlocksPastBurst(t *testing.T) {
	handler := RateLimitLogin(RateLimitConfig{
		Logger:  testLogger(),
		Limiter: newLoginLimiter(t, 6, 2),
		Enabled: true,
	})(okHandler())

	var lastCode int
	var lastRec *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/session", nil)
		req.RemoteAddr = "203.0.113.50:4242"
		lastRec = httptest.NewRecorder()
		handler.ServeHTTP(lastRec, req)
		lastCode = lastRec.Code
	}

	if lastCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 past burst, got %d", lastCode)
	}
	if lastRec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header on 429")
	}
}

// Reconnecting per attempt hands out a fresh ephemeral port each
// time. The bucket must track the IP, not the full address, or the
// limit never fires for a client that dials per request.
func TestRateLimitLogin_SameIPAcrossPorts(t *testing.T) {
	handler := RateLimitLogin(RateLimitConfig{
		Logger:  testLogger(),
		Limiter: newLoginLimiter(t, 6, 1),
		Enabled: true,
	})(okHandler())

	blocked := 0
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/session", nil)
		req.RemoteAddr = fmt.Sprintf("203.0.113.50:%d", 40000+i)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			blocked++
		}
	}

	if blocked < 18 {
		t.Errorf("burst=1 over 20 reconnects: expected at least 18 blocked, got %d", blocked)
	}
}

func TestRateLimitLogin_BareIPRemoteAddr(t *testing.T) {
	handler := RateLimitLogin(RateLimitConfig{
		Logger:  testLogger(),
		Limiter: newLoginLimiter(t, 6, 1),
		Enabled: true,
	})(okHandler())

	// RealIP rewrites RemoteAddr to a bare address with no port.
	var lastCode int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/session", nil)
		req.RemoteAddr = "198.51.100.7"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		lastCode = rec.Code
	}

	if lastCode != http.StatusTooManyRequests {
		t.Errorf("expected 429 for bare-IP RemoteAddr past burst, got %d", lastCode)
	}
}
