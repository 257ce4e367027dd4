package logger

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/taskflow/core/internal/infrastructure/config"
)

func newObserved() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return &Logger{SugaredLogger: zap.New(core).Sugar()}, logs
}

func TestNew(t *testing.T) {
	l, err := New(config.LoggerConfig{Level: "debug", Format: "json", Output: "stdout"})
	require.NoError(t, err)
	assert.NotNil(t, l)

	_, err = New(config.LoggerConfig{Level: "loud", Format: "json"})
	assert.Error(t, err)
}

func TestLogDatabaseQuery(t *testing.T) {
	l, logs := newObserved()

	l.LogDatabaseQuery("SELECT 1", 1.5, nil)
	l.LogDatabaseQuery("SELECT 2", 2.5, errors.New("boom"))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "Database query executed", entries[0].Message)
	assert.Equal(t, zap.DebugLevel, entries[0].Level)
	assert.Equal(t, "Database query failed", entries[1].Message)
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
}

func TestWithComponent(t *testing.T) {
	l, logs := newObserved()

	l.WithComponent("task_service").WithRequestID("req-1").Infow("Task created", "task_id", 1)

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "task_service", fields["component"])
	assert.Equal(t, "req-1", fields["request_id"])
	assert.EqualValues(t, 1, fields["task_id"])
}

func TestLogHTTPRequest(t *testing.T) {
	l, logs := newObserved()

	l.LogHTTPRequest("GET", "/api/tasks", "req-2", "127.0.0.1", 200, 3.2, nil)
	l.LogHTTPRequest("POST", "/api/tasks", "req-3", "127.0.0.1", 500, 1.0, errors.New("db down"))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "HTTP request", entries[0].Message)
	assert.Equal(t, "HTTP request failed", entries[1].Message)
	assert.Equal(t, zap.ErrorLevel, entries[1].Level)
}

func TestCallerIsTheCallSite(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core, zap.AddCaller()).Sugar()}

	l.Infow("direct")
	l.WithComponent("task_service").Infow("derived")
	l.LogHTTPRequest("GET", "/api/tasks", "req-4", "127.0.0.1", 200, 1.0, nil)
	l.LogDatabaseQuery("SELECT 1", 0.5, nil)

	entries := logs.All()
	require.Len(t, entries, 4)
	for _, e := range entries {
		require.True(t, e.Caller.Defined, e.Message)
		assert.Equal(t, "logger_test.go", filepath.Base(e.Caller.File), e.Message)
	}
}
