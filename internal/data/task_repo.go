// Package data contains the repositories backing the lifecycle engine's
// ports: the Postgres task store and the Redis result cache.
package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/target/tasker/internal/core"
	"github.com/target/tasker/internal/domain/model"
)

// TaskRepo provides Postgres-backed task store operations.
// Every method commits before returning; no write is buffered across calls.
type TaskRepo struct {
	DB     *sql.DB
	logger *slog.Logger
}

var _ core.TaskRepository = (*TaskRepo)(nil)

// NewTaskRepo creates a new TaskRepo instance with the given database connection.
func NewTaskRepo(db *sql.DB, logger *slog.Logger) *TaskRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskRepo{DB: db, logger: logger.With("component", "task_repo")}
}

const taskColumns = `
  id,
  task_name,
  task_parameters,
  status,
  task_output,
  error,
  created_at,
  started_at,
  completed_at
`

// Create inserts a new task in pending status. The identifier and created_at
// are generated server-side and returned with the record.
func (r *TaskRepo) Create(ctx context.Context, name string, params map[string]any) (*model.Task, error) {
	if params == nil {
		params = map[string]any{}
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshal task parameters: %w", err)
	}

	row := r.DB.QueryRowContext(ctx, `
		INSERT INTO tasks (task_name, task_parameters, status)
		VALUES ($1, $2, 'pending')
		RETURNING `+taskColumns,
		name, paramsJSON)

	task, err := scanTask(row)
	if err != nil {
		return nil, storeError("create", err)
	}
	return task, nil
}

// GetByID returns the task record or model.ErrTaskNotFound.
func (r *TaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)

	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrTaskNotFound
		}
		return nil, storeError("get", err)
	}
	return task, nil
}

// MarkRunning records the pending->running transition. The write is an
// unconditional overwrite: a redelivered queue message legitimately re-drives
// a previously failed attempt back through running, and clearing the stale
// terminal fields keeps output/error null outside terminal states.
func (r *TaskRepo) MarkRunning(ctx context.Context, id uuid.UUID, startedAt time.Time) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE tasks
		SET status = 'running',
		    started_at = $2,
		    task_output = NULL,
		    error = NULL,
		    completed_at = NULL
		WHERE id = $1`,
		id, startedAt.UTC())
	if err != nil {
		return storeError("mark running", err)
	}
	return oneRowOrNotFound(res)
}

// Complete records the terminal success state. Calling it twice leaves the
// record in the state of the last call; a prior error is cleared.
func (r *TaskRepo) Complete(ctx context.Context, id uuid.UUID, output map[string]any, completedAt time.Time) error {
	if output == nil {
		output = map[string]any{}
	}
	outputJSON, err := json.Marshal(output)
	if err != nil {
		return fmt.Errorf("marshal task output: %w", err)
	}

	res, err := r.DB.ExecContext(ctx, `
		UPDATE tasks
		SET status = 'completed',
		    task_output = $2,
		    error = NULL,
		    completed_at = $3
		WHERE id = $1`,
		id, outputJSON, completedAt.UTC())
	if err != nil {
		return storeError("complete", err)
	}
	return oneRowOrNotFound(res)
}

// Fail records the terminal failure state. Retry attempts overwrite the
// recorded error; the last write wins.
func (r *TaskRepo) Fail(ctx context.Context, id uuid.UUID, errMsg string, completedAt time.Time) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE tasks
		SET status = 'failed',
		    error = $2,
		    task_output = NULL,
		    completed_at = $3
		WHERE id = $1`,
		id, errMsg, completedAt.UTC())
	if err != nil {
		return storeError("fail", err)
	}
	return oneRowOrNotFound(res)
}

// CountByStatus returns the number of tasks currently in the given status.
func (r *TaskRepo) CountByStatus(ctx context.Context, status model.TaskStatus) (int64, error) {
	var count int64
	err := r.DB.QueryRowContext(ctx, `SELECT count(*) FROM tasks WHERE status = $1`, string(status)).Scan(&count)
	if err != nil {
		return 0, storeError("count", err)
	}
	return count, nil
}

// Health checks store reachability.
func (r *TaskRepo) Health(ctx context.Context) error {
	var one int
	if err := r.DB.QueryRowContext(ctx, `SELECT 1`).Scan(&one); err != nil {
		return storeError("health", err)
	}
	return nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*model.Task, error) {
	var (
		task        model.Task
		paramsJSON  []byte
		outputJSON  []byte
		errMsg      sql.NullString
		startedAt   sql.NullTime
		completedAt sql.NullTime
		status      string
	)

	if err := row.Scan(
		&task.ID,
		&task.Name,
		&paramsJSON,
		&status,
		&outputJSON,
		&errMsg,
		&task.CreatedAt,
		&startedAt,
		&completedAt,
	); err != nil {
		return nil, err
	}

	task.Status = model.TaskStatus(status)
	if len(paramsJSON) > 0 {
		if err := json.Unmarshal(paramsJSON, &task.Parameters); err != nil {
			return nil, fmt.Errorf("unmarshal task parameters: %w", err)
		}
	}
	if len(outputJSON) > 0 {
		if err := json.Unmarshal(outputJSON, &task.Output); err != nil {
			return nil, fmt.Errorf("unmarshal task output: %w", err)
		}
	}
	if errMsg.Valid {
		task.Error = &errMsg.String
	}
	if startedAt.Valid {
		t := startedAt.Time
		task.StartedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		task.CompletedAt = &t
	}
	return &task, nil
}

func oneRowOrNotFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return storeError("rows affected", err)
	}
	if n == 0 {
		return model.ErrTaskNotFound
	}
	return nil
}

// storeError wraps a database failure in a model.StoreError, classifying
// recognizable Postgres conditions for easier triage in logs.
func storeError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgerrcode.IsConnectionException(pgErr.Code):
			return &model.StoreError{Op: op, Err: fmt.Errorf("connection failure: %w", pgErr)}
		case pgerrcode.IsIntegrityConstraintViolation(pgErr.Code):
			return &model.StoreError{Op: op, Err: fmt.Errorf("constraint %s violated: %w", pgErr.ConstraintName, pgErr)}
		}
	}
	return &model.StoreError{Op: op, Err: err}
}
