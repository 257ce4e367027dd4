package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/taskflow/core/internal/domain/entities"
	"github.com/taskflow/core/internal/infrastructure/logger"
	"github.com/taskflow/core/internal/ports"
)

const taskColumns = `id, title, COALESCE(description, '') AS description, status, due_date`

// Every statement the repository runs. Values are always bound as parameters.
const (
	listTasksQuery = `SELECT ` + taskColumns + ` FROM tasks ORDER BY id`

	getTaskQuery = `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	createTaskQuery = `
		INSERT INTO tasks (title, description, status, due_date)
		VALUES ($1, NULLIF($2, ''), $3, $4::date)
		RETURNING ` + taskColumns

	// NULL parameters leave the column unchanged, so one statement covers every field subset.
	updateTaskQuery = `
		UPDATE tasks
		SET status = COALESCE($2::text, status),
			due_date = COALESCE($3::date, due_date),
			description = COALESCE($4::text, description)
		WHERE id = $1
		RETURNING ` + taskColumns

	deleteTaskQuery = `DELETE FROM tasks WHERE id = $1`
)

// TaskRepositoryImpl implements the TaskRepository interface on PostgreSQL
type TaskRepositoryImpl struct {
	db     *sqlx.DB
	logger *logger.Logger
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *sqlx.DB, log *logger.Logger) ports.TaskRepository {
	return &TaskRepositoryImpl{
		db:     db,
		logger: log.WithComponent("task_repository"),
	}
}

// List returns every task ordered by id
func (r *TaskRepositoryImpl) List(ctx context.Context) ([]*entities.Task, error) {
	start := time.Now()
	tasks := make([]*entities.Task, 0)
	err := r.db.SelectContext(ctx, &tasks, listTasksQuery)
	r.logQuery(listTasksQuery, start, err)
	if err != nil {
		return nil, storageErr("list tasks", err)
	}

	return tasks, nil
}

// GetByID retrieves a task by ID
func (r *TaskRepositoryImpl) GetByID(ctx context.Context, id int64) (*entities.Task, error) {
	start := time.Now()
	var task entities.Task
	err := r.db.GetContext(ctx, &task, getTaskQuery, id)
	r.logQuery(getTaskQuery, start, ignoreNoRows(err))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrTaskNotFound
		}
		return nil, storageErr("get task", err)
	}

	return &task, nil
}

// Create inserts a task and returns the stored row including its generated id
func (r *TaskRepositoryImpl) Create(ctx context.Context, task *entities.Task) (*entities.Task, error) {
	start := time.Now()
	var created entities.Task
	err := r.db.GetContext(ctx, &created, createTaskQuery,
		task.Title,
		task.Description,
		task.Status,
		task.DueDate,
	)
	r.logQuery(createTaskQuery, start, err)
	if err != nil {
		return nil, storageErr("create task", err)
	}

	return &created, nil
}

// Update applies the supplied fields and returns the updated row
func (r *TaskRepositoryImpl) Update(ctx context.Context, id int64, update ports.TaskUpdate) (*entities.Task, error) {
	start := time.Now()
	var updated entities.Task
	err := r.db.GetContext(ctx, &updated, updateTaskQuery,
		id,
		update.Status,
		update.DueDate,
		update.Description,
	)
	r.logQuery(updateTaskQuery, start, ignoreNoRows(err))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrTaskNotFound
		}
		return nil, storageErr("update task", err)
	}

	return &updated, nil
}

// Delete deletes a task
func (r *TaskRepositoryImpl) Delete(ctx context.Context, id int64) error {
	start := time.Now()
	result, err := r.db.ExecContext(ctx, deleteTaskQuery, id)
	r.logQuery(deleteTaskQuery, start, err)
	if err != nil {
		return storageErr("delete task", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storageErr("get rows affected", err)
	}

	if rowsAffected == 0 {
		return entities.ErrTaskNotFound
	}

	return nil
}

func (r *TaskRepositoryImpl) logQuery(query string, start time.Time, err error) {
	r.logger.LogDatabaseQuery(query, float64(time.Since(start).Microseconds())/1000, err)
}

// storageErr wraps err with the operation name and, when available, the SQLSTATE code.
func storageErr(op string, err error) error {
	se := &entities.StorageError{Op: op, Err: err}

	var pqErr *pq.Error
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pqErr):
		se.Code = string(pqErr.Code)
	case errors.As(err, &pgErr):
		se.Code = pgErr.Code
	}

	return se
}

func ignoreNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	return err
}
