package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ticklist/ticklist/internal/model"
)

// ErrTodoNotFound indicates the todo does not exist or belongs to
// another user. The two cases are deliberately indistinguishable.
var ErrTodoNotFound = errors.New("todo not found")

// CreateTodo inserts a new todo for the user and returns it with the
// generated ID.
func (r *Repository) CreateTodo(ctx context.Context, userID int64, name string) (*model.Todo, error) {
	query := `
		INSERT INTO todos (user_id, name)
		VALUES ($1, $2)
		RETURNING id, user_id, name, completed, created_at, updated_at
	`

	var todo model.Todo
	err := r.pool.QueryRow(ctx, query, userID, name).Scan(
		&todo.ID,
		&todo.UserID,
		&todo.Name,
		&todo.Completed,
		&todo.CreatedAt,
		&todo.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	return &todo, nil
}

// ListTodosByUser returns all todos owned by the user, oldest first.
func (r *Repository) ListTodosByUser(ctx context.Context, userID int64) ([]*model.Todo, error) {
	query := `
		SELECT id, user_id, name, completed, created_at, updated_at
		FROM todos
		WHERE user_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	todos := make([]*model.Todo, 0)
	for rows.Next() {
		var todo model.Todo
		if err := rows.Scan(
			&todo.ID,
			&todo.UserID,
			&todo.Name,
			&todo.Completed,
			&todo.CreatedAt,
			&todo.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		todos = append(todos, &todo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate todos: %w", err)
	}

	return todos, nil
}

// GetTodoForUser retrieves a todo by ID, scoped to the owning user.
func (r *Repository) GetTodoForUser(ctx context.Context, id, userID int64) (*model.Todo, error) {
	query := `
		SELECT id, user_id, name, completed, created_at, updated_at
		FROM todos
		WHERE id = $1 AND user_id = $2
	`

	var todo model.Todo
	err := r.pool.QueryRow(ctx, query, id, userID).Scan(
		&todo.ID,
		&todo.UserID,
		&todo.Name,
		&todo.Completed,
		&todo.CreatedAt,
		&todo.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}

	return &todo, nil
}

// UpdateTodo applies the given name and/or completed changes to a todo
// owned by the user. Nil fields are left unchanged.
func (r *Repository) UpdateTodo(ctx context.Context, id, userID int64, name *string, completed *bool) (*model.Todo, error) {
	query := `
		UPDATE todos
		SET name = COALESCE($3, name),
		    completed = COALESCE($4, completed),
		    updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, name, completed, created_at, updated_at
	`

	var todo model.Todo
	err := r.pool.QueryRow(ctx, query, id, userID, name, completed).Scan(
		&todo.ID,
		&todo.UserID,
		&todo.Name,
		&todo.Completed,
		&todo.CreatedAt,
		&todo.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}

	return &todo, nil
}

// DeleteTodo removes a todo owned by the user.
func (r *Repository) DeleteTodo(ctx context.Context, id, userID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM todos WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTodoNotFound
	}
	return nil
}

// DeleteUser removes a user. Todos cascade at the database level.
// Exposed for admin tooling and tests; there is no HTTP surface for it.
func (r *Repository) DeleteUser(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
