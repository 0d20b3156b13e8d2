package todos

import (
	"context"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

// Repository stores todos. Every lookup is scoped by owner: a todo that
// belongs to someone else is reported as not found.
type Repository interface {
	Create(ctx context.Context, todo *models.Todo) (*models.Todo, error)
	GetByID(ctx context.Context, userID, id string) (*models.Todo, error)
	Update(ctx context.Context, todo *models.Todo) (*models.Todo, error)
	Delete(ctx context.Context, userID, id string) error
	List(ctx context.Context, filter models.TodoFilter) ([]*models.Todo, error)
	Count(ctx context.Context, filter models.TodoFilter) (int, error)
	ListAll(ctx context.Context, userID string) ([]*models.Todo, error)
	DeleteByUser(ctx context.Context, userID string) error
}
