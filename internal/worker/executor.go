// Package worker consumes dispatch messages from the queue and drives
// tasks through their lifecycle.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/target/tasker/internal/core"
	"github.com/target/tasker/internal/domain/model"
	"github.com/target/tasker/internal/observability/metrics"
)

// ExecutorOptions configures the executor.
type ExecutorOptions struct {
	Repo     core.TaskRepository
	Cache    core.ResultCache
	Resolver core.HandlerResolver
	// HandlerTimeout bounds a single handler execution. Zero means the
	// handler runs under the message context alone.
	HandlerTimeout time.Duration
	Metrics        *metrics.Metrics
	Logger         *slog.Logger
}

// Executor processes one dispatch message at a time: mark running, run the
// handler, record the terminal state. Returning an error signals the broker
// to redeliver; returning nil acknowledges the message.
type Executor struct {
	repo           core.TaskRepository
	cache          core.ResultCache
	resolver       core.HandlerResolver
	handlerTimeout time.Duration
	metrics        *metrics.Metrics
	logger         *slog.Logger
}

// NewExecutor constructs an Executor.
func NewExecutor(opts ExecutorOptions) (*Executor, error) {
	if opts.Repo == nil {
		return nil, fmt.Errorf("task repository is required")
	}
	if opts.Resolver == nil {
		return nil, fmt.Errorf("handler resolver is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		repo:           opts.Repo,
		cache:          opts.Cache,
		resolver:       opts.Resolver,
		handlerTimeout: opts.HandlerTimeout,
		metrics:        opts.Metrics,
		logger:         logger.With("component", "executor"),
	}, nil
}

// MustNewExecutor is NewExecutor for startup wiring; it panics on error.
func MustNewExecutor(opts ExecutorOptions) *Executor {
	e, err := NewExecutor(opts)
	if err != nil {
		panic(err)
	}
	return e
}

// ProcessTask handles a single queue message. Delivery is at-least-once, so
// every store write here must tolerate re-execution: MarkRunning overwrites
// a stale attempt and the terminal writes are idempotent by task id.
func (e *Executor) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var msg model.DispatchMessage
	if err := json.Unmarshal(t.Payload(), &msg); err != nil {
		// Undecodable payloads can never succeed; archive immediately.
		return fmt.Errorf("unmarshal dispatch message: %v: %w", err, asynq.SkipRetry)
	}

	logger := e.logger.With("task_id", msg.TaskID, "task_name", msg.TaskName)

	h, ok := e.resolver.Resolve(msg.TaskName)
	if !ok {
		// A message for an unregistered type is a deployment mismatch, not
		// a transient fault. Record the failure and skip the retry budget.
		e.failTask(ctx, logger, msg, fmt.Sprintf("unknown task type: %s", msg.TaskName), 0)
		return fmt.Errorf("unknown task type %q: %w", msg.TaskName, asynq.SkipRetry)
	}

	startedAt := time.Now().UTC()
	if err := e.repo.MarkRunning(ctx, msg.TaskID, startedAt); err != nil {
		logger.ErrorContext(ctx, "mark running failed", "error", err)
		return fmt.Errorf("mark running: %w", err)
	}
	logger.InfoContext(ctx, "task started")

	output, err := e.runHandler(ctx, h, msg.Parameters)
	duration := time.Since(startedAt)
	if err != nil {
		logger.WarnContext(ctx, "task failed", "error", err, "duration", duration)
		e.failTask(ctx, logger, msg, err.Error(), duration)
		return fmt.Errorf("execute %s: %w", msg.TaskName, err)
	}

	completedAt := time.Now().UTC()
	if err := e.repo.Complete(ctx, msg.TaskID, output, completedAt); err != nil {
		logger.ErrorContext(ctx, "record completion failed", "error", err)
		return fmt.Errorf("complete: %w", err)
	}
	if e.metrics != nil {
		e.metrics.ObserveCompletion(msg.TaskName, model.TaskStatusCompleted, duration)
	}
	logger.InfoContext(ctx, "task completed", "duration", duration)

	e.populateCache(ctx, logger, msg.TaskID)
	return nil
}

func (e *Executor) runHandler(ctx context.Context, h core.Handler, params map[string]any) (map[string]any, error) {
	if e.handlerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.handlerTimeout)
		defer cancel()
	}
	return h.Execute(ctx, params)
}

// failTask records a terminal failure. Errors here are logged and swallowed:
// the caller's return value already controls redelivery, and a store outage
// must not change that decision.
func (e *Executor) failTask(ctx context.Context, logger *slog.Logger, msg model.DispatchMessage, errMsg string, duration time.Duration) {
	if err := e.repo.Fail(ctx, msg.TaskID, errMsg, time.Now().UTC()); err != nil {
		logger.ErrorContext(ctx, "record failure failed", "error", err)
		return
	}
	if e.metrics != nil {
		e.metrics.ObserveCompletion(msg.TaskName, model.TaskStatusFailed, duration)
	}
}

// populateCache writes the completed view through to the cache so the first
// poll after completion skips the store. Best effort.
func (e *Executor) populateCache(ctx context.Context, logger *slog.Logger, id uuid.UUID) {
	if e.cache == nil {
		return
	}
	task, err := e.repo.GetByID(ctx, id)
	if err != nil {
		logger.WarnContext(ctx, "cache populate read failed", "error", err)
		return
	}
	if err := e.cache.SetView(ctx, model.NewTaskView(task)); err != nil {
		logger.WarnContext(ctx, "cache populate failed", "error", err)
	}
}
