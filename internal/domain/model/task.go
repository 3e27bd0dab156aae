// Package model defines the core data types and structures used throughout the tasker system.
package model

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the current status of a task.
type TaskStatus string

const (
	// TaskStatusPending indicates a task has been recorded but not yet picked up.
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusRunning indicates a task is currently being executed.
	TaskStatusRunning TaskStatus = "running"
	// TaskStatusCompleted indicates a task has finished successfully.
	TaskStatusCompleted TaskStatus = "completed"
	// TaskStatusFailed indicates a task has failed.
	TaskStatusFailed TaskStatus = "failed"
)

// Valid returns true if the TaskStatus is valid.
func (s TaskStatus) Valid() bool {
	return s == TaskStatusPending || s == TaskStatusRunning || s == TaskStatusCompleted ||
		s == TaskStatusFailed
}

// Terminal returns true if no further transitions leave this status.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// Task represents one unit of asynchronous work. The task store exclusively
// owns the persisted record; the result cache only ever holds a time-bounded
// copy of the terminal view.
//
// Lifecycle: pending -> running -> completed | failed. Output is non-nil only
// in completed, Error only in failed; both are nil while pending/running.
type Task struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"task_name"`
	Parameters  map[string]any `json:"task_parameters"`
	Status      TaskStatus     `json:"status"`
	Output      map[string]any `json:"task_output,omitempty"`
	Error       *string        `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	StartedAt   *time.Time     `json:"started_at,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}

// TaskView is the client-facing projection of a task returned by the query
// path and cached for completed tasks.
type TaskView struct {
	TaskUUID    uuid.UUID      `json:"task_uuid"`
	Status      TaskStatus     `json:"status"`
	TaskOutput  map[string]any `json:"task_output"`
	Error       *string        `json:"error"`
	CreatedAt   time.Time      `json:"created_at"`
	CompletedAt *time.Time     `json:"completed_at"`
}

// NewTaskView builds the client-facing view from a stored task record.
func NewTaskView(t *Task) *TaskView {
	return &TaskView{
		TaskUUID:    t.ID,
		Status:      t.Status,
		TaskOutput:  t.Output,
		Error:       t.Error,
		CreatedAt:   t.CreatedAt,
		CompletedAt: t.CompletedAt,
	}
}

// DispatchMessage is the queue payload handed from submission to the worker
// pool. Parameters are a snapshot of the task's parameters at enqueue time;
// the message is read-only once sent and may be redelivered after a crash
// before acknowledgment (at-least-once delivery).
type DispatchMessage struct {
	TaskID     uuid.UUID      `json:"task_id"`
	TaskName   string         `json:"task_name"`
	Parameters map[string]any `json:"task_parameters"`
}
