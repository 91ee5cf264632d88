package dto

import (
	"strings"
	"time"

	"github.com/ticklist/ticklist/internal/model"
)

// MaxTodoNameLength bounds todo names.
const MaxTodoNameLength = 512

// TodoResponse is the public representation of a todo.
type TodoResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TodoListResponse wraps the list endpoint payload.
type TodoListResponse struct {
	Todos []TodoResponse `json:"todos"`
}

// ToTodoResponse converts a todo model to its public representation.
// The owner ID is implied by the session and never echoed back.
func ToTodoResponse(t *model.Todo) TodoResponse {
	return TodoResponse{
		ID:        t.ID,
		Name:      t.Name,
		Completed: t.Completed,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// ToTodoListResponse converts a slice of todos.
func ToTodoListResponse(todos []*model.Todo) TodoListResponse {
	out := make([]TodoResponse, 0, len(todos))
	for _, t := range todos {
		out = append(out, ToTodoResponse(t))
	}
	return TodoListResponse{Todos: out}
}

// CreateTodoRequest is the payload for POST /api/todo.
type CreateTodoRequest struct {
	Name string `json:"name"`
}

// Validate normalizes and validates the create payload.
func (r *CreateTodoRequest) Validate() FieldErrors {
	errs := make(FieldErrors)

	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		errs["name"] = "name is required"
	} else if len(r.Name) > MaxTodoNameLength {
		errs["name"] = "name is too long"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// UpdateTodoRequest is the payload for PATCH /api/todo/{id}.
// Nil fields are left unchanged.
type UpdateTodoRequest struct {
	Name      *string `json:"name"`
	Completed *bool   `json:"completed"`
}

// Validate validates the partial-update payload.
func (r *UpdateTodoRequest) Validate() FieldErrors {
	errs := make(FieldErrors)

	if r.Name == nil && r.Completed == nil {
		errs["name"] = "at least one of name or completed is required"
		return errs
	}

	if r.Name != nil {
		trimmed := strings.TrimSpace(*r.Name)
		*r.Name = trimmed
		if trimmed == "" {
			errs["name"] = "name is required"
		} else if len(trimmed) > MaxTodoNameLength {
			errs["name"] = "name is too long"
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
