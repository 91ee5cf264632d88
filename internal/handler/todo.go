package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ticklist/ticklist/internal/auth"
	"github.com/ticklist/ticklist/internal/handler/dto"
	"github.com/ticklist/ticklist/internal/middleware"
	"github.com/ticklist/ticklist/internal/service"
)

// TodoHandler handles todo CRUD. All routes run behind the session
// middleware and operate only on the caller's own todos.
type TodoHandler struct {
	svc    *service.TodoService
	logger *slog.Logger
}

// NewTodoHandler creates a new TodoHandler.
func NewTodoHandler(svc *service.TodoService, logger *slog.Logger) *TodoHandler {
	return &TodoHandler{svc: svc, logger: logger}
}

// List handles GET /api/todo.
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	id := auth.MustIdentityFromContext(r.Context())

	todos, err := h.svc.List(r.Context(), id.UserID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTodoListResponse(todos))
}

// Create handles POST /api/todo.
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	id := auth.MustIdentityFromContext(r.Context())

	var req dto.CreateTodoRequest
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

	todo, err := h.svc.Create(r.Context(), id.UserID, req.Name)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("todo_created", "todo_id", todo.ID, "user_id", id.UserID)

	writeJSON(w, http.StatusCreated, dto.ToTodoResponse(todo))
}

// Update handles PATCH /api/todo/{id}.
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := auth.MustIdentityFromContext(r.Context())

	todoID, ok := todoIDParam(w, r)
	if !ok {
		return
	}

	var req dto.UpdateTodoRequest
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

	todo, err := h.svc.Update(r.Context(), todoID, id.UserID, req.Name, req.Completed)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTodoResponse(todo))
}

// Delete handles DELETE /api/todo/{id}.
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := auth.MustIdentityFromContext(r.Context())

	todoID, ok := todoIDParam(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), todoID, id.UserID); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// todoIDParam parses the {id} path parameter, writing a 404 when it is
// not a valid identifier. A malformed ID can never match a todo, so it
// gets the same response as a missing one.
func todoIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusNotFound, "todo not found")
		return 0, false
	}
	return id, true
}

// handleServiceError maps service errors to HTTP responses.
func (h *TodoHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrTodoNotFound):
		writeError(w, http.StatusNotFound, "todo not found")
	default:
		h.logger.Error("internal_error",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
