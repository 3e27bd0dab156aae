// Package service holds the business logic between the HTTP layer and the
// store, cache and queue ports.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/target/tasker/internal/core"
	"github.com/target/tasker/internal/domain/model"
	"github.com/target/tasker/internal/observability/metrics"
)

// TaskServiceOptions groups dependencies for TaskService.
type TaskServiceOptions struct {
	Repo       core.TaskRepository  // Required: task store
	Dispatcher core.Dispatcher      // Required: queue producer
	Resolver   core.HandlerResolver // Required: known task types
	Cache      core.ResultCache     // Optional: result read-through cache
	Metrics    *metrics.Metrics     // Optional: instrument set
	Logger     *slog.Logger         // Optional: structured logger
}

// TaskService provides the submission and result-retrieval operations.
//
// Submission persists first and enqueues second: a task visible in the
// store but absent from the queue surfaces as failed, never lost.
type TaskService struct {
	repo       core.TaskRepository
	dispatcher core.Dispatcher
	resolver   core.HandlerResolver
	cache      core.ResultCache
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewTaskService constructs a new TaskService.
func NewTaskService(opts TaskServiceOptions) (*TaskService, error) {
	if opts.Repo == nil {
		return nil, errors.New("TaskRepository is required")
	}
	if opts.Dispatcher == nil {
		return nil, errors.New("Dispatcher is required")
	}
	if opts.Resolver == nil {
		return nil, errors.New("HandlerResolver is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskService{
		repo:       opts.Repo,
		dispatcher: opts.Dispatcher,
		resolver:   opts.Resolver,
		cache:      opts.Cache,
		metrics:    opts.Metrics,
		logger:     logger.With("component", "task_service"),
	}, nil
}

// MustNewTaskService constructs a new TaskService and panics on error.
func MustNewTaskService(opts TaskServiceOptions) *TaskService {
	svc, err := NewTaskService(opts)
	if err != nil {
		panic(fmt.Sprintf("failed to create TaskService: %v", err))
	}
	return svc
}

// Submit validates the task type, persists the task in pending status and
// enqueues it for execution. An unknown type returns a ValidationError
// before anything is written. A queue failure after the insert marks the
// task failed and returns the dispatch error; the caller still has a task
// id to poll.
func (s *TaskService) Submit(ctx context.Context, name string, params map[string]any) (*model.Task, error) {
	if _, ok := s.resolver.Resolve(name); !ok {
		known := strings.Join(s.resolver.Names(), ", ")
		return nil, model.NewValidationError("unknown task type %q, available types: %s", name, known)
	}

	task, err := s.repo.Create(ctx, name, params)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	if s.metrics != nil {
		s.metrics.ObserveSubmission(name)
	}

	msg := model.DispatchMessage{
		TaskID:     task.ID,
		TaskName:   task.Name,
		Parameters: task.Parameters,
	}
	if err := s.dispatcher.Enqueue(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "enqueue failed", "task_id", task.ID, "error", err)
		if failErr := s.repo.Fail(ctx, task.ID, fmt.Sprintf("dispatch failed: %v", err), time.Now().UTC()); failErr != nil {
			s.logger.ErrorContext(ctx, "mark dispatch failure failed", "task_id", task.ID, "error", failErr)
		}
		return nil, fmt.Errorf("enqueue task %s: %w", task.ID, err)
	}

	s.logger.InfoContext(ctx, "task submitted", "task_id", task.ID, "task_name", name)
	return task, nil
}

// GetOutput returns the current view of a task. Completed views are served
// from the cache when present; a store read that finds a completed task
// writes the view through so the next poll is a cache hit.
func (s *TaskService) GetOutput(ctx context.Context, id uuid.UUID) (*model.TaskView, error) {
	if s.cache != nil {
		view, err := s.cache.GetView(ctx, id)
		if err != nil {
			s.logger.WarnContext(ctx, "cache read failed", "task_id", id, "error", err)
		} else if view != nil {
			return view, nil
		}
	}

	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	view := model.NewTaskView(task)
	if s.cache != nil && task.Status == model.TaskStatusCompleted {
		if err := s.cache.SetView(ctx, view); err != nil {
			s.logger.WarnContext(ctx, "cache write failed", "task_id", id, "error", err)
		}
	}
	return view, nil
}

// TaskTypes returns the registered task-type names.
func (s *TaskService) TaskTypes() []string {
	return s.resolver.Names()
}
