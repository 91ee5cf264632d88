package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ticklist/ticklist/internal/handler/dto"
	"github.com/ticklist/ticklist/internal/middleware"
	"github.com/ticklist/ticklist/internal/service"
)

// invalidCredentialsMessage is returned on both fields of a failed
// sign-in so the response shape never reveals which one was wrong.
const invalidCredentialsMessage = "username and/or password is incorrect"

// SessionHandler handles sign-in and sign-out.
type SessionHandler struct {
	auth   *service.AuthService
	cookie CookieConfig
	logger *slog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(auth *service.AuthService, cookie CookieConfig, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{auth: auth, cookie: cookie, logger: logger}
}

// SignIn handles POST /api/session.
func (h *SessionHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req dto.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFieldErrors(w, http.StatusUnprocessableEntity, dto.FieldErrors{
			"body": "invalid JSON body",
		})
		return
	}

	if errs := req.Validate(); errs != nil {
		writeFieldErrors(w, http.StatusUnprocessableEntity, errs)
		return
	}

	user, token, err := h.auth.SignIn(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.logger.Warn("sign-in failed",
				"ip", r.RemoteAddr,
				"request_id", middleware.GetRequestID(r.Context()),
			)
			writeFieldErrors(w, http.StatusUnauthorized, dto.FieldErrors{
				"username": invalidCredentialsMessage,
				"password": invalidCredentialsMessage,
			})
			return
		}
		h.logger.Error("sign-in error",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("signed_in", "user_id", user.ID)

	setSessionCookie(w, h.cookie, token)
	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// SignOut handles DELETE /api/session.
// Always succeeds: an absent or stale cookie is treated as a no-op.
func (h *SessionHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	token := middleware.SessionToken(r)

	if err := h.auth.SignOut(r.Context(), token); err != nil {
		h.logger.Error("sign-out error",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	clearSessionCookie(w, h.cookie)
	w.WriteHeader(http.StatusNoContent)
}
