package models

import "time"

type Todo struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TodoFilter selects one page of a user's todos. Search, when non-empty,
// is matched case-insensitively against title and description.
type TodoFilter struct {
	UserID string
	Search string
	Limit  int
	Offset int
}

// TodoPatch carries a partial update; nil fields are left unchanged.
type TodoPatch struct {
	Title       *string
	Description *string
	Status      *string
}
