package services

import (
	"context"
	"fmt"

	"github.com/taskflow/core/internal/domain/entities"
	"github.com/taskflow/core/internal/domain/validation"
	"github.com/taskflow/core/internal/infrastructure/logger"
	"github.com/taskflow/core/internal/ports"
)

var _ ports.TaskService = (*TaskService)(nil)

// TaskService handles task-related operations
type TaskService struct {
	taskRepo  ports.TaskRepository
	validator *validation.TaskValidator
	logger    *logger.Logger
}

// NewTaskService creates a new task service
func NewTaskService(taskRepo ports.TaskRepository, validator *validation.TaskValidator, log *logger.Logger) *TaskService {
	return &TaskService{
		taskRepo:  taskRepo,
		validator: validator,
		logger:    log.WithComponent("task_service"),
	}
}

// ListTasks returns every task
func (s *TaskService) ListTasks(ctx context.Context) ([]*entities.Task, error) {
	tasks, err := s.taskRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, nil
}

// GetTask retrieves a task by ID
func (s *TaskService) GetTask(ctx context.Context, id int64) (*entities.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get task %d: %w", id, err)
	}

	return task, nil
}

// CreateTask validates the full payload and stores a new task
func (s *TaskService) CreateTask(ctx context.Context, req ports.TaskPayload) (*entities.Task, error) {
	candidate := req.Candidate()
	if err := s.validator.Check(candidate, validation.ModeFull); err != nil {
		return nil, err
	}

	dueDate, err := validation.ParseDate(*candidate.DueDate)
	if err != nil {
		return nil, &entities.ValidationError{Messages: []string{err.Error()}}
	}

	task := &entities.Task{
		Title:   *req.Title,
		Status:  entities.TaskStatus(*req.Status),
		DueDate: dueDate,
	}
	if req.Description != nil {
		task.Description = *req.Description
	}

	created, err := s.taskRepo.Create(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.Infow("Task created successfully", "task_id", created.ID, "title", created.Title)

	return created, nil
}

// UpdateTask validates the supplied fields and applies status, due date and description
// changes. The title is never updated.
func (s *TaskService) UpdateTask(ctx context.Context, id int64, req ports.TaskPayload) (*entities.Task, error) {
	candidate := req.Candidate()
	if err := s.validator.Check(candidate, validation.ModePartial); err != nil {
		return nil, err
	}

	update, err := buildUpdate(candidate)
	if err != nil {
		return nil, err
	}
	if update.IsEmpty() {
		return nil, entities.ErrNoUpdatableFields
	}

	updated, err := s.taskRepo.Update(ctx, id, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update task %d: %w", id, err)
	}

	s.logger.Infow("Task updated successfully", "task_id", id)

	return updated, nil
}

// DeleteTask deletes a task
func (s *TaskService) DeleteTask(ctx context.Context, id int64) error {
	if err := s.taskRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task %d: %w", id, err)
	}

	s.logger.Infow("Task deleted successfully", "task_id", id)

	return nil
}

func buildUpdate(c validation.Candidate) (ports.TaskUpdate, error) {
	var update ports.TaskUpdate

	if present(c.Status) {
		status := entities.TaskStatus(*c.Status)
		update.Status = &status
	}

	if present(c.DueDate) {
		d, err := validation.ParseDate(*c.DueDate)
		if err != nil {
			return update, &entities.ValidationError{Messages: []string{err.Error()}}
		}
		update.DueDate = &d
	}

	if present(c.Description) {
		desc := *c.Description
		update.Description = &desc
	}

	return update, nil
}

func present(s *string) bool {
	return s != nil && *s != ""
}
