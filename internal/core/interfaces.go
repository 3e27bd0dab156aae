// Package core contains the port interfaces between the lifecycle engine's
// service layer and its collaborators (store, cache, queue, handlers).
// Service implementations depend on these interfaces, not concrete types.
package core

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/target/tasker/internal/domain/model"
)

// TaskRepository defines the interface for task store operations.
// All writes are committed before the call returns; nothing is buffered
// across calls. Terminal writes (Complete, Fail) are idempotent overwrites
// keyed by task id, which makes queue redelivery safe without deduplication.
type TaskRepository interface {
	// Create inserts a new pending task with a server-generated id and
	// created_at timestamp.
	Create(ctx context.Context, name string, params map[string]any) (*model.Task, error)

	// GetByID returns model.ErrTaskNotFound when no record exists.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error)

	// MarkRunning records the running transition. It is an unconditional
	// overwrite so a redelivered message can re-drive the same sequence.
	MarkRunning(ctx context.Context, id uuid.UUID, startedAt time.Time) error

	// Complete records the terminal success state, clearing any error.
	Complete(ctx context.Context, id uuid.UUID, output map[string]any, completedAt time.Time) error

	// Fail records the terminal failure state, clearing any output.
	// Later calls win; retry attempts overwrite the recorded error.
	Fail(ctx context.Context, id uuid.UUID, errMsg string, completedAt time.Time) error

	// CountByStatus returns the number of tasks in the given status.
	CountByStatus(ctx context.Context, status model.TaskStatus) (int64, error)

	// Health checks store reachability.
	Health(ctx context.Context) error
}

// ResultCache defines the interface for the terminal-response cache.
// The cache is a derived, TTL-bounded copy of completed task views and is
// never the source of truth.
type ResultCache interface {
	// GetView returns (nil, nil) on a cache miss.
	GetView(ctx context.Context, id uuid.UUID) (*model.TaskView, error)

	// SetView stores a terminal view with the configured TTL.
	SetView(ctx context.Context, view *model.TaskView) error

	// Health checks cache reachability.
	Health(ctx context.Context) error
}

// Dispatcher defines the interface for handing a task off to the execution
// queue. Enqueue must be called only after the store insert has committed so
// a message is never dispatched for a task the store does not know about.
type Dispatcher interface {
	Enqueue(ctx context.Context, msg model.DispatchMessage) error
}

// Handler executes one task type. Implementations are pure with respect to
// persistence: they must not perform their own store or cache writes, and
// they own their operation timeouts.
type Handler interface {
	Execute(ctx context.Context, params map[string]any) (map[string]any, error)
}

// HandlerResolver resolves task-type names registered at process init.
// Lookup fails closed: an unknown name is a permanent failure, never a crash.
type HandlerResolver interface {
	Resolve(name string) (Handler, bool)
	Names() []string
}
