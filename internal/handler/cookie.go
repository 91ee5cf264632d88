package handler

import (
	"net/http"
	"time"

	"github.com/ticklist/ticklist/internal/middleware"
)

// CookieConfig controls how the session cookie is issued.
type CookieConfig struct {
	// Secure marks the cookie for HTTPS-only transmission.
	Secure bool
	// TTL becomes the cookie Max-Age, matching the server-side session TTL.
	TTL time.Duration
}

// sessionCookiePath scopes the cookie to the API so it is not sent
// with static asset requests.
const sessionCookiePath = "/api"

// setSessionCookie attaches a freshly issued session token to the response.
func setSessionCookie(w http.ResponseWriter, cfg CookieConfig, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     sessionCookiePath,
		MaxAge:   int(cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie expires the session cookie on the client.
func clearSessionCookie(w http.ResponseWriter, cfg CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     sessionCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
