// Package dispatch hands tasks off from the submission path to the
// Redis-backed execution queue.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/target/tasker/internal/core"
	"github.com/target/tasker/internal/domain/model"
)

// TypeExecuteTask is the queue message type carrying a dispatch message.
// The task-type name travels inside the payload; routing by a single queue
// type keeps handler resolution in the executor, next to the registry.
const TypeExecuteTask = "task:execute"

// Options configures the dispatcher.
type Options struct {
	Client *asynq.Client // Required: queue producer client
	Queue  string        // Queue name; defaults to "default"
	// MaxRetry is the broker-enforced retry budget per message. Each retry
	// re-executes the handler; after the budget is exhausted the broker
	// archives the message (dead-letter) and the task stays failed.
	MaxRetry int
	// Timeout bounds one processing attempt on the consumer side.
	Timeout time.Duration
	Logger  *slog.Logger
}

// Dispatcher enqueues dispatch messages with at-least-once delivery.
type Dispatcher struct {
	client   *asynq.Client
	queue    string
	maxRetry int
	timeout  time.Duration
	logger   *slog.Logger
}

var _ core.Dispatcher = (*Dispatcher)(nil)

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(opts Options) (*Dispatcher, error) {
	if opts.Client == nil {
		return nil, errors.New("asynq client is required")
	}
	queue := opts.Queue
	if queue == "" {
		queue = "default"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		client:   opts.Client,
		queue:    queue,
		maxRetry: opts.MaxRetry,
		timeout:  opts.Timeout,
		logger:   logger.With("component", "dispatcher"),
	}, nil
}

// Enqueue publishes a dispatch message. Callers must have committed the
// store insert first (store-write-before-enqueue); a broker failure is
// returned as a model.DispatchError for the submission path to convert
// into a failed task.
func (d *Dispatcher) Enqueue(ctx context.Context, msg model.DispatchMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal dispatch message: %w", err)
	}

	opts := []asynq.Option{
		asynq.Queue(d.queue),
		asynq.MaxRetry(d.maxRetry),
	}
	if d.timeout > 0 {
		opts = append(opts, asynq.Timeout(d.timeout))
	}

	info, err := d.client.EnqueueContext(ctx, asynq.NewTask(TypeExecuteTask, payload), opts...)
	if err != nil {
		return &model.DispatchError{Err: err}
	}

	d.logger.DebugContext(ctx, "task dispatched",
		"task_id", msg.TaskID,
		"task_name", msg.TaskName,
		"queue", info.Queue,
	)
	return nil
}

// Close releases the underlying client connection.
func (d *Dispatcher) Close() error {
	return d.client.Close()
}
