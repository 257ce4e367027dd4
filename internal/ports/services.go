package ports

import (
	"context"
	"encoding/json"

	"github.com/taskflow/core/internal/domain/entities"
	"github.com/taskflow/core/internal/domain/validation"
)

// TaskService interface for task management operations
type TaskService interface {
	ListTasks(ctx context.Context) ([]*entities.Task, error)
	GetTask(ctx context.Context, id int64) (*entities.Task, error)
	CreateTask(ctx context.Context, req TaskPayload) (*entities.Task, error)
	UpdateTask(ctx context.Context, id int64, req TaskPayload) (*entities.Task, error)
	DeleteTask(ctx context.Context, id int64) error
}

// TaskPayload is the body accepted by task create and update requests. The browser UI sends
// the due date under both "dueDate" and "due_date" and echoes "id" back on updates.
type TaskPayload struct {
	ID          json.RawMessage `json:"id,omitempty" swaggerignore:"true"`
	Title       *string         `json:"title,omitempty" example:"Write report"`
	Description *string         `json:"description,omitempty" example:"Quarterly numbers"`
	Status      *string         `json:"status,omitempty" example:"Open"`
	DueDate     *string         `json:"dueDate,omitempty" example:"2026-12-31"`
	DueDateAlt  *string         `json:"due_date,omitempty" swaggerignore:"true"`
}

// DueDateValue returns dueDate, falling back to due_date.
func (p TaskPayload) DueDateValue() *string {
	if p.DueDate != nil && *p.DueDate != "" {
		return p.DueDate
	}
	return p.DueDateAlt
}

// Candidate converts the payload for validation.
func (p TaskPayload) Candidate() validation.Candidate {
	return validation.Candidate{
		Title:       p.Title,
		Description: p.Description,
		Status:      p.Status,
		DueDate:     p.DueDateValue(),
	}
}
