package model

import "time"

// Todo represents a single to-do item owned by a user.
// Rows are removed by the database when the owning user is deleted.
type Todo struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
