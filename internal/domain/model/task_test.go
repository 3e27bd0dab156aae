package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskStatus_Valid(t *testing.T) {
	for _, s := range []TaskStatus{TaskStatusPending, TaskStatusRunning, TaskStatusCompleted, TaskStatusFailed} {
		assert.True(t, s.Valid(), "status %s", s)
	}
	assert.False(t, TaskStatus("cancelled").Valid())
	assert.False(t, TaskStatus("").Valid())
}

func TestTaskStatus_Terminal(t *testing.T) {
	assert.False(t, TaskStatusPending.Terminal())
	assert.False(t, TaskStatusRunning.Terminal())
	assert.True(t, TaskStatusCompleted.Terminal())
	assert.True(t, TaskStatusFailed.Terminal())
}

func TestNewTaskView(t *testing.T) {
	now := time.Now().UTC()
	errMsg := "boom"
	task := &Task{
		ID:          uuid.New(),
		Name:        "sum",
		Status:      TaskStatusFailed,
		Error:       &errMsg,
		CreatedAt:   now.Add(-time.Minute),
		CompletedAt: &now,
	}

	view := NewTaskView(task)
	assert.Equal(t, task.ID, view.TaskUUID)
	assert.Equal(t, TaskStatusFailed, view.Status)
	assert.Equal(t, &errMsg, view.Error)
	assert.Equal(t, task.CreatedAt, view.CreatedAt)
	assert.Equal(t, &now, view.CompletedAt)
	assert.Nil(t, view.TaskOutput)
}

func TestTaskView_JSONShape(t *testing.T) {
	view := &TaskView{
		TaskUUID:   uuid.New(),
		Status:     TaskStatusCompleted,
		TaskOutput: map[string]any{"result": float64(5)},
		CreatedAt:  time.Now().UTC(),
	}

	data, err := json.Marshal(view)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Contains(t, got, "task_uuid")
	assert.Contains(t, got, "task_output")
	assert.Contains(t, got, "completed_at")
	assert.Equal(t, "completed", got["status"])
}

func TestIsValidationError(t *testing.T) {
	err := NewValidationError("bad input %d", 7)
	assert.True(t, IsValidationError(err))
	assert.Equal(t, "bad input 7", err.Error())
	assert.False(t, IsValidationError(ErrTaskNotFound))
}
