package entities

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors
var (
	ErrTaskNotFound        = errors.New("task not found")
	ErrNoUpdatableFields   = errors.New("at least one field (status, dueDate, description) is required")
	ErrInvalidRequestShape = errors.New("invalid request format")
)

// Field limits
const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
)

type TaskStatus string

const (
	TaskStatusOpen       TaskStatus = "Open"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusCompleted  TaskStatus = "Completed"
)

// TaskStatuses lists the allowed statuses in display order.
var TaskStatuses = []TaskStatus{TaskStatusOpen, TaskStatusInProgress, TaskStatusCompleted}

func (ts TaskStatus) IsValid() bool {
	switch ts {
	case TaskStatusOpen, TaskStatusInProgress, TaskStatusCompleted:
		return true
	default:
		return false
	}
}

// Next returns the status after ts in display order, wrapping around.
func (ts TaskStatus) Next() TaskStatus {
	for i, s := range TaskStatuses {
		if s == ts {
			return TaskStatuses[(i+1)%len(TaskStatuses)]
		}
	}
	return TaskStatusOpen
}

// StatusList renders the allowed statuses as "Open, In Progress, Completed".
func StatusList() string {
	names := make([]string, len(TaskStatuses))
	for i, s := range TaskStatuses {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// Task represents a tracked task
type Task struct {
	ID          int64      `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Status      TaskStatus `json:"status" db:"status"`
	DueDate     Date       `json:"due_date" db:"due_date"`
}

// ValidationError carries every rule a candidate payload violated.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// StorageError wraps a failed database operation. Code holds the SQLSTATE when the driver
// reported one.
type StorageError struct {
	Op   string
	Code string
	Err  error
}

func (e *StorageError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("failed to %s (sqlstate %s): %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
