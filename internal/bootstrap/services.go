package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/target/tasker/config"
	"github.com/target/tasker/internal/data"
	"github.com/target/tasker/internal/dispatch"
	"github.com/target/tasker/internal/handler"
	"github.com/target/tasker/internal/httpx"
	"github.com/target/tasker/internal/observability/metrics"
	"github.com/target/tasker/internal/service"
	"github.com/target/tasker/internal/worker"
)

// ServiceDeps contains the connections services are built from.
type ServiceDeps struct {
	Config *config.AppConfig
	DB     *sql.DB
	Redis  redis.UniversalClient
	Logger *slog.Logger
}

// ServiceContainer holds all constructed services and their ports.
type ServiceContainer struct {
	Repo       *data.TaskRepo
	Cache      *data.ResultCache
	Dispatcher *dispatch.Dispatcher
	Registry   *handler.Registry
	Tasks      *service.TaskService
	Metrics    *metrics.Metrics
	Prom       *prometheus.Registry
}

// NewServices constructs the full service graph from shared connections.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps with config are required")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	repo := data.NewTaskRepo(deps.DB, logger)
	cache := data.NewResultCache(deps.Redis, cfg.Cache.TTL)

	prom := prometheus.NewRegistry()
	prom.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics(prom)
	m.RegisterPendingGauge(prom, repo)

	registry := handler.NewRegistry()
	registry.MustRegister("sum", handler.NewSum())
	registry.MustRegister("file_hash", handler.NewFileHash())
	llm, err := handler.NewQueryLLM(cfg.Ollama)
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create query_llm handler: %w", err)
	}
	registry.MustRegister("query_llm", llm)

	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	dispatcher, err := dispatch.NewDispatcher(dispatch.Options{
		Client:   client,
		Queue:    cfg.Worker.Queue,
		MaxRetry: cfg.Worker.MaxRetries,
		Timeout:  cfg.Worker.HandlerTimeout,
		Logger:   logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create dispatcher: %w", err)
	}

	tasks := service.MustNewTaskService(service.TaskServiceOptions{
		Repo:       repo,
		Dispatcher: dispatcher,
		Resolver:   registry,
		Cache:      cache,
		Metrics:    m,
		Logger:     logger,
	})

	return ServiceContainer{
		Repo:       repo,
		Cache:      cache,
		Dispatcher: dispatcher,
		Registry:   registry,
		Tasks:      tasks,
		Metrics:    m,
		Prom:       prom,
	}, nil
}

// StartHTTPServer creates and starts the HTTP server.
// Returns the server instance for graceful shutdown.
func StartHTTPServer(cfg config.HTTPConfig, services ServiceContainer, logger *slog.Logger, errCh chan<- error) *http.Server {
	router := httpx.NewRouter(httpx.RouterServices{
		Tasks:    services.Tasks,
		DB:       services.Repo,
		Redis:    services.Cache,
		Metrics:  services.Metrics,
		Gatherer: services.Prom,
		Logger:   logger,
	})

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	return server
}

// ServiceOrchestrationConfig contains everything RunServicesWithShutdown needs.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Executor *worker.Executor
	Logger   *slog.Logger
}

// RunServicesWithShutdown starts all enabled services and manages their
// lifecycle. It blocks until a shutdown signal is received or a service
// fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("service orchestration config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	errCh := make(chan error, 2)

	var httpServer *http.Server
	if cfg.Config.IsAPIEnabled() {
		httpServer = StartHTTPServer(cfg.Config.HTTP, cfg.Services, logger, errCh)
	}

	var workerServer *worker.Server
	if cfg.Config.IsWorkerEnabled() {
		if cfg.Executor == nil {
			return errors.New("worker service enabled but no executor provided")
		}
		srv, err := worker.NewServer(worker.ServerOptions{
			Redis:    cfg.Config.Redis,
			Worker:   cfg.Config.Worker,
			Executor: cfg.Executor,
			Logger:   logger,
		})
		if err != nil {
			return fmt.Errorf("create worker server: %w", err)
		}
		workerServer = srv
		go func() {
			if err := workerServer.Run(); err != nil {
				errCh <- fmt.Errorf("worker server: %w", err)
			}
		}()
	}

	err := waitForShutdown(errCh, logger)

	if workerServer != nil {
		workerServer.Shutdown()
	}
	if httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Config.HTTP.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down HTTP server")
		if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown http server: %w", shutdownErr))
		}
	}
	if closeErr := cfg.Services.Dispatcher.Close(); closeErr != nil {
		logger.Warn("close dispatcher", "error", closeErr)
	}
	return err
}

// waitForShutdown blocks until a termination signal arrives or a service
// reports a fatal error.
func waitForShutdown(errCh <-chan error, logger *slog.Logger) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		logger.Info("shutdown signal received", "signal", sig.String())
		return nil
	case err := <-errCh:
		logger.Error("service failed", "error", err)
		return err
	}
}
