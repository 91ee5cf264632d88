package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ticklist/ticklist/internal/auth"
	"github.com/ticklist/ticklist/internal/handler/dto"
	"github.com/ticklist/ticklist/internal/middleware"
	"github.com/ticklist/ticklist/internal/service"
)

// UserHandler handles sign-up and the current-user endpoint.
type UserHandler struct {
	auth   *service.AuthService
	cookie CookieConfig
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(auth *service.AuthService, cookie CookieConfig, logger *slog.Logger) *UserHandler {
	return &UserHandler{auth: auth, cookie: cookie, logger: logger}
}

// SignUp handles POST /api/user.
// On success the new user is signed in immediately: the response
// carries both the user and a session cookie.
func (h *UserHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req dto.SignUpRequest
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

	user, token, err := h.auth.SignUp(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) {
			writeFieldErrors(w, http.StatusUnprocessableEntity, dto.FieldErrors{
				"username": "username is already taken",
			})
			return
		}
		h.logger.Error("sign-up error",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("signed_up", "user_id", user.ID)

	setSessionCookie(w, h.cookie, token)
	writeJSON(w, http.StatusCreated, dto.ToUserResponse(user))
}

// Current handles GET /api/user.
// Runs behind the session middleware, so the identity is always present.
func (h *UserHandler) Current(w http.ResponseWriter, r *http.Request) {
	id := auth.MustIdentityFromContext(r.Context())
	writeJSON(w, http.StatusOK, dto.UserResponse{
		ID:       id.UserID,
		Username: id.Username,
	})
}
