package httpx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/target/tasker/internal/observability/metrics"
	"github.com/target/tasker/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Tasks    *service.TaskService
	DB       HealthChecker
	Redis    HealthChecker
	Metrics  *metrics.Metrics    // Optional: request instrumentation
	Gatherer prometheus.Gatherer // Optional: /metrics scrape source
	Logger   *slog.Logger        // Optional: request logging
}

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	taskHandlers := &TaskHandlers{
		Svc:      services.Tasks,
		Validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	healthHandlers := &HealthHandlers{DB: services.DB, Redis: services.Redis}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(Logging(logger))
	r.Use(Recover(logger))
	r.Use(Instrument(services.Metrics))

	r.Post("/run-task", taskHandlers.RunTask)
	r.Get("/get-task-output", taskHandlers.GetTaskOutput)
	r.Get("/health", healthHandlers.Health)
	r.Get("/healthz", healthzHandler)
	r.Head("/healthz", healthzHandler)

	if services.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(services.Gatherer, promhttp.HandlerOpts{}))
	}

	return r
}
