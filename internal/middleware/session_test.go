package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ticklist/ticklist/internal/auth"
	"github.com/ticklist/ticklist/internal/model"
	"github.com/ticklist/ticklist/internal/service"
)

// stubResolver resolves a single known token.
type stubResolver struct {
	token    string
	identity *model.Identity
	err      error
}

func (s *stubResolver) Resolve(_ context.Context, token string) (*model.Identity, error) {
	if s.err != nil {
		return nil, s.err
	}
	if token != s.token {
		return nil, service.ErrUnauthenticated
	}
	return s.identity, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSession_ValidCookie(t *testing.T) {
	resolver := &stubResolver{
		token:    "tok123",
		identity: &model.Identity{UserID: 5, Username: "alice"},
	}

	var seen *model.Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = auth.IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := Session(SessionConfig{Logger: testLogger(), Resolver: resolver})(next)

	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "tok123"})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if seen == nil || seen.UserID != 5 || seen.Username != "alice" {
		t.Errorf("expected identity in context, got %+v", seen)
	}
}

func TestSession_MissingCookie(t *testing.T) {
	handler := Session(SessionConfig{
		Logger:   testLogger(),
		Resolver: &stubResolver{token: "tok123"},
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run without a session")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestSession_UnknownToken(t *testing.T) {
	handler := Session(SessionConfig{
		Logger:   testLogger(),
		Resolver: &stubResolver{token: "tok123"},
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run with an invalid session")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "stale"})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestSession_ResolverFailure(t *testing.T) {
	handler := Session(SessionConfig{
		Logger:   testLogger(),
		Resolver: &stubResolver{err: errors.New("redis down")},
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run when resolution fails")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "tok123"})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	// Store failures are server errors, not authentication failures.
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestSessionToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := SessionToken(req); got != "" {
		t.Errorf("expected empty token without cookie, got %q", got)
	}

	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "abc"})
	if got := SessionToken(req); got != "abc" {
		t.Errorf("expected token abc, got %q", got)
	}
}
