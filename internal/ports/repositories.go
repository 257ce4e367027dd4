package ports

import (
	"context"

	"github.com/taskflow/core/internal/domain/entities"
)

// TaskRepository defines the interface for task data operations
type TaskRepository interface {
	List(ctx context.Context) ([]*entities.Task, error)
	GetByID(ctx context.Context, id int64) (*entities.Task, error)
	Create(ctx context.Context, task *entities.Task) (*entities.Task, error)
	Update(ctx context.Context, id int64, update TaskUpdate) (*entities.Task, error)
	Delete(ctx context.Context, id int64) error
}

// TaskUpdate holds the mutable task fields; nil means leave unchanged.
type TaskUpdate struct {
	Status      *entities.TaskStatus
	DueDate     *entities.Date
	Description *string
}

// IsEmpty reports whether no field would change.
func (u TaskUpdate) IsEmpty() bool {
	return u.Status == nil && u.DueDate == nil && u.Description == nil
}
