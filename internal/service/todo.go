package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ticklist/ticklist/internal/metrics"
	"github.com/ticklist/ticklist/internal/model"
	"github.com/ticklist/ticklist/internal/repository"
)

// ErrTodoNotFound covers both a missing todo and a todo owned by
// someone else; callers cannot tell the two apart.
var ErrTodoNotFound = errors.New("todo not found")

// TodoStore is the todo persistence contract. *repository.Repository
// satisfies it.
type TodoStore interface {
	CreateTodo(ctx context.Context, userID int64, name string) (*model.Todo, error)
	ListTodosByUser(ctx context.Context, userID int64) ([]*model.Todo, error)
	GetTodoForUser(ctx context.Context, id, userID int64) (*model.Todo, error)
	UpdateTodo(ctx context.Context, id, userID int64, name *string, completed *bool) (*model.Todo, error)
	DeleteTodo(ctx context.Context, id, userID int64) error
}

// TodoService handles todo business logic. Every operation takes the
// owner ID from the resolved request identity; ownership is enforced
// in the store query itself.
type TodoService struct {
	todos   TodoStore
	metrics metrics.Recorder
}

// NewTodoService creates a new TodoService.
func NewTodoService(todos TodoStore, recorder metrics.Recorder) *TodoService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &TodoService{todos: todos, metrics: recorder}
}

// Create adds a todo for the user. Name validation happens at the
// handler boundary; the service assumes a non-empty name.
func (s *TodoService) Create(ctx context.Context, userID int64, name string) (*model.Todo, error) {
	todo, err := s.todos.CreateTodo(ctx, userID, name)
	if err != nil {
		return nil, fmt.Errorf("create todo: %w", err)
	}
	s.metrics.IncTodoCreated()
	return todo, nil
}

// List returns the user's todos.
func (s *TodoService) List(ctx context.Context, userID int64) ([]*model.Todo, error) {
	todos, err := s.todos.ListTodosByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return todos, nil
}

// Update applies a partial update (name and/or completed) to the
// user's todo.
func (s *TodoService) Update(ctx context.Context, id, userID int64, name *string, completed *bool) (*model.Todo, error) {
	todo, err := s.todos.UpdateTodo(ctx, id, userID, name, completed)
	if err != nil {
		if errors.Is(err, repository.ErrTodoNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("update todo: %w", err)
	}
	s.metrics.IncTodoUpdated()
	return todo, nil
}

// Delete removes the user's todo.
func (s *TodoService) Delete(ctx context.Context, id, userID int64) error {
	if err := s.todos.DeleteTodo(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrTodoNotFound) {
			return ErrTodoNotFound
		}
		return fmt.Errorf("delete todo: %w", err)
	}
	s.metrics.IncTodoDeleted()
	return nil
}
