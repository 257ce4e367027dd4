package entities

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_JSON(t *testing.T) {
	task := Task{ID: 1, Title: "Write report", Status: TaskStatusOpen, DueDate: NewDate(time.Date(2025, 12, 31, 15, 0, 0, 0, time.UTC))}

	data, err := json.Marshal(task)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"title":"Write report","description":"","status":"Open","due_date":"2025-12-31"}`, string(data))

	task.DueDate = Date{}
	data, err = json.Marshal(task)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"due_date":null`)
}

func TestDate_UnmarshalJSON(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2025-04-28T00:00:00.000Z"`), &d))
	assert.Equal(t, "2025-04-28", d.String())

	require.NoError(t, json.Unmarshal([]byte(`null`), &d))
	assert.False(t, d.Valid)

	assert.Error(t, json.Unmarshal([]byte(`"tomorrow"`), &d))
}

func TestDate_Scan(t *testing.T) {
	tests := []struct {
		name  string
		src   interface{}
		want  string
		valid bool
	}{
		{name: "nil", src: nil, want: "", valid: false},
		{name: "time", src: time.Date(2026, 1, 2, 0, 0, 0, 0, time.FixedZone("X", 3600)), want: "2026-01-02", valid: true},
		{name: "bytes", src: []byte("2026-03-04"), want: "2026-03-04", valid: true},
		{name: "timestamp text", src: "2026-03-04T00:00:00Z", want: "2026-03-04", valid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			require.NoError(t, d.Scan(tt.src))
			assert.Equal(t, tt.valid, d.Valid)
			assert.Equal(t, tt.want, d.String())
		})
	}

	var d Date
	assert.Error(t, d.Scan(42))
}

func TestDate_Value(t *testing.T) {
	v, err := Date{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = NewDate(time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC)).Value()
	require.NoError(t, err)
	assert.Equal(t, "2025-12-31", v)
}

func TestTaskStatus(t *testing.T) {
	assert.True(t, TaskStatusInProgress.IsValid())
	assert.False(t, TaskStatus("Done").IsValid())
	assert.Equal(t, TaskStatusCompleted, TaskStatusInProgress.Next())
	assert.Equal(t, TaskStatusOpen, TaskStatusCompleted.Next())
	assert.Equal(t, "Open, In Progress, Completed", StatusList())
}
