package worker

import (
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/target/tasker/config"
	"github.com/target/tasker/internal/dispatch"
)

// ServerOptions configures the queue consumer.
type ServerOptions struct {
	Redis    config.RedisConfig
	Worker   config.WorkerConfig
	Executor *Executor
	Logger   *slog.Logger
}

// Server wraps the asynq consumer with the executor mounted on the
// execute-task message type.
type Server struct {
	srv    *asynq.Server
	mux    *asynq.ServeMux
	logger *slog.Logger
}

// NewServer builds the queue consumer. Retry scheduling uses asynq's
// default exponential backoff; the per-message retry budget is set on the
// producer side at enqueue time.
func NewServer(opts ServerOptions) (*Server, error) {
	if opts.Executor == nil {
		return nil, fmt.Errorf("executor is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "worker")

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     opts.Redis.Addr,
			Password: opts.Redis.Password,
			DB:       opts.Redis.DB,
		},
		asynq.Config{
			Concurrency: opts.Worker.Concurrency,
			Queues:      map[string]int{opts.Worker.Queue: 1},
			Logger:      newAsynqLogger(logger),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(dispatch.TypeExecuteTask, opts.Executor.ProcessTask)

	return &Server{srv: srv, mux: mux, logger: logger}, nil
}

// Run starts consuming and blocks until Shutdown is called.
func (s *Server) Run() error {
	s.logger.Info("worker starting")
	return s.srv.Run(s.mux)
}

// Shutdown waits for in-flight handlers to finish, then stops the consumer.
// Unacknowledged messages return to the queue for redelivery.
func (s *Server) Shutdown() {
	s.logger.Info("worker stopping")
	s.srv.Shutdown()
}
