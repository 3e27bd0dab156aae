package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/tasker/internal/domain/model"
	"github.com/target/tasker/internal/mocks"
	"github.com/target/tasker/internal/observability/metrics"
	"github.com/target/tasker/internal/service"
	"go.uber.org/mock/gomock"
)

type routerMocks struct {
	repo       *mocks.MockTaskRepository
	dispatcher *mocks.MockDispatcher
	resolver   *mocks.MockHandlerResolver
	cache      *mocks.MockResultCache
}

func newTestRouter(t *testing.T) (http.Handler, routerMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := routerMocks{
		repo:       mocks.NewMockTaskRepository(ctrl),
		dispatcher: mocks.NewMockDispatcher(ctrl),
		resolver:   mocks.NewMockHandlerResolver(ctrl),
		cache:      mocks.NewMockResultCache(ctrl),
	}

	tasks := service.MustNewTaskService(service.TaskServiceOptions{
		Repo:       m.repo,
		Dispatcher: m.dispatcher,
		Resolver:   m.resolver,
		Cache:      m.cache,
	})

	reg := prometheus.NewRegistry()
	router := NewRouter(RouterServices{
		Tasks:    tasks,
		DB:       m.repo,
		Redis:    m.cache,
		Metrics:  metrics.NewMetrics(reg),
		Gatherer: reg,
	})
	return router, m
}

func doJSON(t *testing.T, router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRunTask_Accepted(t *testing.T) {
	router, m := newTestRouter(t)

	created := &model.Task{
		ID:        uuid.New(),
		Name:      "sum",
		Status:    model.TaskStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	m.resolver.EXPECT().Resolve("sum").Return(nil, true)
	m.repo.EXPECT().
		Create(gomock.Any(), "sum", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, params map[string]any) (*model.Task, error) {
			assert.Equal(t, map[string]any{"a": float64(1), "b": float64(2)}, params)
			return created, nil
		})
	m.dispatcher.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(nil)

	rec := doJSON(t, router, http.MethodPost, "/run-task", `{"task_name":"sum","a":1,"b":2}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		TaskUUID uuid.UUID `json:"task_uuid"`
		Status   string    `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, created.ID, resp.TaskUUID)
	assert.Equal(t, "pending", resp.Status)
}

// Optional parameters default at the boundary, so what the store and
// queue see is already fully resolved.
func TestRunTask_BoundaryDefaults(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		taskName   string
		wantParams map[string]any
	}{
		{
			name:       "file_hash algorithm defaults to sha256",
			body:       `{"task_name":"file_hash","content":"hello world"}`,
			taskName:   "file_hash",
			wantParams: map[string]any{"content": "hello world", "algorithm": "sha256"},
		},
		{
			name:       "query_llm max_tokens defaults to 1024",
			body:       `{"task_name":"query_llm","prompt":"why is the sky blue"}`,
			taskName:   "query_llm",
			wantParams: map[string]any{"prompt": "why is the sky blue", "max_tokens": 1024},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, m := newTestRouter(t)

			created := &model.Task{ID: uuid.New(), Name: tt.taskName, Status: model.TaskStatusPending}
			m.resolver.EXPECT().Resolve(tt.taskName).Return(nil, true)
			m.repo.EXPECT().
				Create(gomock.Any(), tt.taskName, gomock.Any()).
				DoAndReturn(func(_ context.Context, _ string, params map[string]any) (*model.Task, error) {
					assert.Equal(t, tt.wantParams, params)
					return created, nil
				})
			m.dispatcher.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(nil)

			rec := doJSON(t, router, http.MethodPost, "/run-task", tt.body)
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

func TestRunTask_InvalidJSON(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/run-task", `{"task_name":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_json")
}

// Business-invalid bodies are rejected before anything is persisted or
// dispatched; the absent mock expectations enforce that nothing else ran.
func TestRunTask_InvalidBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "sum missing operand", body: `{"task_name":"sum","a":5}`},
		{name: "sum with field from another task", body: `{"task_name":"sum","a":5,"b":3,"prompt":"hi"}`},
		{name: "query_llm empty prompt", body: `{"task_name":"query_llm","prompt":""}`},
		{name: "query_llm max_tokens over ceiling", body: `{"task_name":"query_llm","prompt":"p","max_tokens":5000}`},
		{name: "file_hash unsupported algorithm", body: `{"task_name":"file_hash","content":"x","algorithm":"crc32"}`},
		{name: "legacy nested parameters shape", body: `{"task_name":"sum","task_parameters":{"a":1,"b":2}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newTestRouter(t)

			rec := doJSON(t, router, http.MethodPost, "/run-task", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "validation_error")
		})
	}
}

func TestRunTask_MissingTaskName(t *testing.T) {
	router, m := newTestRouter(t)

	m.resolver.EXPECT().Names().Return([]string{"file_hash", "query_llm", "sum"})

	rec := doJSON(t, router, http.MethodPost, "/run-task", `{"a":1,"b":2}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation_error")
}

func TestRunTask_UnknownTaskType(t *testing.T) {
	router, m := newTestRouter(t)

	m.resolver.EXPECT().Names().Return([]string{"file_hash", "query_llm", "sum"})

	rec := doJSON(t, router, http.MethodPost, "/run-task", `{"task_name":"teleport"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation_error")
	assert.Contains(t, rec.Body.String(), "teleport")
}

func TestRunTask_DispatchFailure(t *testing.T) {
	router, m := newTestRouter(t)

	created := &model.Task{ID: uuid.New(), Name: "sum", Status: model.TaskStatusPending, CreatedAt: time.Now()}
	m.resolver.EXPECT().Resolve("sum").Return(nil, true)
	m.repo.EXPECT().Create(gomock.Any(), "sum", gomock.Any()).Return(created, nil)
	m.dispatcher.EXPECT().Enqueue(gomock.Any(), gomock.Any()).
		Return(&model.DispatchError{Err: errors.New("broker down")})
	m.repo.EXPECT().Fail(gomock.Any(), created.ID, gomock.Any(), gomock.Any()).Return(nil)

	rec := doJSON(t, router, http.MethodPost, "/run-task", `{"task_name":"sum","a":1,"b":2}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "dispatch_error")
}

func TestGetTaskOutput_Completed(t *testing.T) {
	router, m := newTestRouter(t)

	id := uuid.New()
	view := &model.TaskView{
		TaskUUID:   id,
		Status:     model.TaskStatusCompleted,
		TaskOutput: map[string]any{"result": float64(3)},
	}
	m.cache.EXPECT().GetView(gomock.Any(), id).Return(view, nil)

	rec := doJSON(t, router, http.MethodGet, "/get-task-output?taskuuid="+id.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got model.TaskView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, id, got.TaskUUID)
	assert.Equal(t, model.TaskStatusCompleted, got.Status)
	assert.Equal(t, float64(3), got.TaskOutput["result"])
}

func TestGetTaskOutput_BadRequests(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/get-task-output", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing_task_uuid")

	rec = doJSON(t, router, http.MethodGet, "/get-task-output?taskuuid=not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_task_uuid")
}

func TestGetTaskOutput_NotFound(t *testing.T) {
	router, m := newTestRouter(t)

	id := uuid.New()
	m.cache.EXPECT().GetView(gomock.Any(), id).Return(nil, nil)
	m.repo.EXPECT().GetByID(gomock.Any(), id).Return(nil, model.ErrTaskNotFound)

	rec := doJSON(t, router, http.MethodGet, "/get-task-output?taskuuid="+id.String(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "task_not_found")
}

func TestHealth_OK(t *testing.T) {
	router, m := newTestRouter(t)

	m.repo.EXPECT().Health(gomock.Any()).Return(nil)
	m.cache.EXPECT().Health(gomock.Any()).Return(nil)

	rec := doJSON(t, router, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var status struct {
		Status   string `json:"status"`
		Database string `json:"database"`
		Redis    string `json:"redis"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "ok", status.Database)
	assert.Equal(t, "ok", status.Redis)
}

func TestHealth_DegradedStillAnswers200(t *testing.T) {
	router, m := newTestRouter(t)

	m.repo.EXPECT().Health(gomock.Any()).Return(nil)
	m.cache.EXPECT().Health(gomock.Any()).Return(errors.New("redis down"))

	rec := doJSON(t, router, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var status struct {
		Status   string `json:"status"`
		Database string `json:"database"`
		Redis    string `json:"redis"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "degraded", status.Status)
	assert.Equal(t, "ok", status.Database)
	assert.Equal(t, "unavailable", status.Redis)
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	router, m := newTestRouter(t)

	// Drive one instrumented request so the counter exists on scrape.
	id := uuid.New()
	m.cache.EXPECT().GetView(gomock.Any(), id).Return(nil, nil)
	m.repo.EXPECT().GetByID(gomock.Any(), id).Return(nil, model.ErrTaskNotFound)
	doJSON(t, router, http.MethodGet, "/get-task-output?taskuuid="+id.String(), "")

	rec := doJSON(t, router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tasker_http_requests_total")
}

// Instrument labels by route pattern so unmatched paths cannot explode
// metric cardinality.
func TestInstrument_UnmatchedRoute(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/nope/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
