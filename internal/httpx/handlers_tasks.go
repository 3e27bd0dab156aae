package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/target/tasker/internal/domain/model"
	"github.com/target/tasker/internal/service"
)

// TaskHandlers handles task submission and result retrieval.
type TaskHandlers struct {
	Svc      *service.TaskService
	Validate *validator.Validate
}

// Boundary defaults for optional task parameters.
const (
	defaultLLMMaxTokens  = 1024
	defaultHashAlgorithm = "sha256"
)

// runTaskEnvelope carries only the discriminator; the full body is
// re-decoded into the request type it selects.
type runTaskEnvelope struct {
	TaskName string `json:"task_name"`
}

// taskRequest is a validated, typed submission body. params erases it to
// the opaque parameter map the store and queue persist, with defaults
// applied.
type taskRequest interface {
	params() map[string]any
}

type sumTaskRequest struct {
	TaskName string   `json:"task_name" validate:"required"`
	A        *float64 `json:"a" validate:"required"`
	B        *float64 `json:"b" validate:"required"`
}

func (r *sumTaskRequest) params() map[string]any {
	return map[string]any{"a": *r.A, "b": *r.B}
}

type queryLLMTaskRequest struct {
	TaskName  string `json:"task_name" validate:"required"`
	Prompt    string `json:"prompt" validate:"required,min=1"`
	MaxTokens *int   `json:"max_tokens" validate:"omitempty,gte=1,lte=4096"`
}

func (r *queryLLMTaskRequest) params() map[string]any {
	maxTokens := defaultLLMMaxTokens
	if r.MaxTokens != nil {
		maxTokens = *r.MaxTokens
	}
	return map[string]any{"prompt": r.Prompt, "max_tokens": maxTokens}
}

type fileHashTaskRequest struct {
	TaskName  string `json:"task_name" validate:"required"`
	Content   string `json:"content" validate:"required,min=1"`
	Algorithm string `json:"algorithm" validate:"omitempty,oneof=md5 sha1 sha256"`
}

func (r *fileHashTaskRequest) params() map[string]any {
	algorithm := r.Algorithm
	if algorithm == "" {
		algorithm = defaultHashAlgorithm
	}
	return map[string]any{"content": r.Content, "algorithm": algorithm}
}

type runTaskResponse struct {
	TaskUUID uuid.UUID        `json:"task_uuid"`
	Status   model.TaskStatus `json:"status"`
}

// RunTask accepts a task for asynchronous execution and returns its id.
// The body is flat and discriminated by task_name; a business-invalid
// request is rejected here, before anything is persisted. The response
// says the task was accepted, not that it succeeded; callers poll the
// output endpoint with the returned id.
func (h *TaskHandlers) RunTask(w http.ResponseWriter, r *http.Request) {
	body, ok := ReadBody(w, r)
	if !ok {
		return
	}

	var env runTaskEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_json", Err: err})
		return
	}

	var req taskRequest
	switch env.TaskName {
	case "sum":
		req = &sumTaskRequest{}
	case "query_llm":
		req = &queryLLMTaskRequest{}
	case "file_hash":
		req = &fileHashTaskRequest{}
	default:
		err := model.NewValidationError("unknown task name %q, valid tasks: %s",
			env.TaskName, strings.Join(h.Svc.TaskTypes(), ", "))
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_error", Err: err})
		return
	}

	if err := decodeStrict(body, req); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_error", Err: err})
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_error", Err: err})
		return
	}

	task, err := h.Svc.Submit(r.Context(), env.TaskName, req.params())
	if err != nil {
		writeSubmitError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, runTaskResponse{TaskUUID: task.ID, Status: task.Status})
}

func writeSubmitError(w http.ResponseWriter, err error) {
	var dispatchErr *model.DispatchError
	switch {
	case model.IsValidationError(err):
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_error", Err: err})
	case errors.As(err, &dispatchErr):
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "dispatch_error", Err: err})
	default:
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "internal_error", Err: err})
	}
}

// GetTaskOutput returns the current view of a task looked up by the
// taskuuid query parameter.
func (h *TaskHandlers) GetTaskOutput(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("taskuuid")
	if raw == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "missing_task_uuid", Err: errors.New("query parameter taskuuid is required")})
		return
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_task_uuid", Err: err})
		return
	}

	view, err := h.Svc.GetOutput(r.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrTaskNotFound) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "task_not_found", Err: err})
			return
		}
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "internal_error", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, view)
}
