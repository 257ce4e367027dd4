package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow/core/internal/domain/entities"
	"github.com/taskflow/core/internal/infrastructure/logger"
	"github.com/taskflow/core/internal/ports"
)

var taskRowColumns = []string{"id", "title", "description", "status", "due_date"}

func setupMockRepo(t *testing.T) (ports.TaskRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})

	return NewTaskRepository(sqlx.NewDb(db, "postgres"), logger.NewNop()), mock
}

func dueDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestTaskRepository_List(t *testing.T) {
	repo, mock := setupMockRepo(t)

	mock.ExpectQuery(listTasksQuery).WillReturnRows(
		sqlmock.NewRows(taskRowColumns).
			AddRow(int64(1), "Test Task 1", "Description 1", "Open", dueDate(2026, 4, 28)).
			AddRow(int64(2), "Test Task 2", "", "Completed", nil),
	)

	tasks, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	assert.Equal(t, int64(1), tasks[0].ID)
	assert.Equal(t, entities.TaskStatusOpen, tasks[0].Status)
	assert.Equal(t, "2026-04-28", tasks[0].DueDate.String())
	assert.False(t, tasks[1].DueDate.Valid)
	assert.Equal(t, entities.TaskStatusCompleted, tasks[1].Status)
}

func TestTaskRepository_List_Empty(t *testing.T) {
	repo, mock := setupMockRepo(t)

	mock.ExpectQuery(listTasksQuery).WillReturnRows(sqlmock.NewRows(taskRowColumns))

	tasks, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestTaskRepository_List_StorageError(t *testing.T) {
	repo, mock := setupMockRepo(t)

	mock.ExpectQuery(listTasksQuery).WillReturnError(&pq.Error{Code: "08006", Message: "connection failure"})

	_, err := repo.List(context.Background())
	require.Error(t, err)

	var se *entities.StorageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "list tasks", se.Op)
	assert.Equal(t, "08006", se.Code)
}

func TestTaskRepository_GetByID(t *testing.T) {
	repo, mock := setupMockRepo(t)

	mock.ExpectQuery(getTaskQuery).WithArgs(int64(7)).WillReturnRows(
		sqlmock.NewRows(taskRowColumns).AddRow(int64(7), "Test Task", "Testing backend", "In Progress", dueDate(2026, 12, 31)),
	)
	mock.ExpectQuery(getTaskQuery).WithArgs(int64(8)).WillReturnError(sql.ErrNoRows)

	task, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Test Task", task.Title)
	assert.Equal(t, entities.TaskStatusInProgress, task.Status)

	_, err = repo.GetByID(context.Background(), 8)
	assert.ErrorIs(t, err, entities.ErrTaskNotFound)
}

func TestTaskRepository_Create(t *testing.T) {
	repo, mock := setupMockRepo(t)

	due := entities.NewDate(dueDate(2026, 12, 31))
	mock.ExpectQuery(createTaskQuery).
		WithArgs("Test Task", "Testing backend", "Open", "2026-12-31").
		WillReturnRows(sqlmock.NewRows(taskRowColumns).AddRow(int64(1), "Test Task", "Testing backend", "Open", dueDate(2026, 12, 31)))

	created, err := repo.Create(context.Background(), &entities.Task{
		Title:       "Test Task",
		Description: "Testing backend",
		Status:      entities.TaskStatusOpen,
		DueDate:     due,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, due, created.DueDate)
}

func TestTaskRepository_Create_NullDueDate(t *testing.T) {
	repo, mock := setupMockRepo(t)

	mock.ExpectQuery(createTaskQuery).
		WithArgs("No date", "", "Open", nil).
		WillReturnRows(sqlmock.NewRows(taskRowColumns).AddRow(int64(3), "No date", "", "Open", nil))

	created, err := repo.Create(context.Background(), &entities.Task{Title: "No date", Status: entities.TaskStatusOpen})
	require.NoError(t, err)
	assert.False(t, created.DueDate.Valid)
}

func TestTaskRepository_Update_UsesOneStatementForEverySubset(t *testing.T) {
	repo, mock := setupMockRepo(t)

	status := entities.TaskStatusCompleted
	due := entities.NewDate(dueDate(2027, 1, 15))
	desc := "Updated"

	mock.ExpectQuery(updateTaskQuery).
		WithArgs(int64(5), "Completed", nil, nil).
		WillReturnRows(sqlmock.NewRows(taskRowColumns).AddRow(int64(5), "T", "", "Completed", nil))
	mock.ExpectQuery(updateTaskQuery).
		WithArgs(int64(5), nil, "2027-01-15", "Updated").
		WillReturnRows(sqlmock.NewRows(taskRowColumns).AddRow(int64(5), "T", "Updated", "Completed", dueDate(2027, 1, 15)))

	updated, err := repo.Update(context.Background(), 5, ports.TaskUpdate{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, entities.TaskStatusCompleted, updated.Status)

	updated, err = repo.Update(context.Background(), 5, ports.TaskUpdate{DueDate: &due, Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "Updated", updated.Description)
	assert.Equal(t, "2027-01-15", updated.DueDate.String())
}

func TestTaskRepository_Update_NotFound(t *testing.T) {
	repo, mock := setupMockRepo(t)

	status := entities.TaskStatusOpen
	mock.ExpectQuery(updateTaskQuery).
		WithArgs(int64(404), "Open", nil, nil).
		WillReturnRows(sqlmock.NewRows(taskRowColumns))

	_, err := repo.Update(context.Background(), 404, ports.TaskUpdate{Status: &status})
	assert.ErrorIs(t, err, entities.ErrTaskNotFound)
}

func TestTaskRepository_Delete(t *testing.T) {
	repo, mock := setupMockRepo(t)

	mock.ExpectExec(deleteTaskQuery).WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(deleteTaskQuery).WithArgs(int64(2)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(deleteTaskQuery).WithArgs(int64(3)).WillReturnError(errors.New("conn reset"))

	assert.NoError(t, repo.Delete(context.Background(), 1))
	assert.ErrorIs(t, repo.Delete(context.Background(), 2), entities.ErrTaskNotFound)

	err := repo.Delete(context.Background(), 3)
	var se *entities.StorageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "delete task", se.Op)
	assert.Empty(t, se.Code)
}
