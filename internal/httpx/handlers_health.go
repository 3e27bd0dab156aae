package httpx

import (
	"context"
	"io"
	"net/http"
	"time"
)

const healthResponse = `{"status":"ok"}`

// healthzHandler returns a simple 200 OK status for readiness/liveness checks.
func healthzHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.WriteString(w, healthResponse); err != nil {
		// Nothing more to do if the client connection is gone.
		return
	}
}

// HealthChecker reports reachability of a dependency.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// HealthHandlers reports dependency health for the deep health endpoint.
type HealthHandlers struct {
	DB    HealthChecker
	Redis HealthChecker
}

type healthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

// Health checks the store and cache independently and reports each one.
// The endpoint always answers 200; degraded state lives in the body so a
// flapping dependency does not take the whole service out of rotation.
func (h *HealthHandlers) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := healthStatus{Status: "ok", Database: "ok", Redis: "ok"}
	if err := h.DB.Health(ctx); err != nil {
		status.Database = "unavailable"
		status.Status = "degraded"
	}
	if err := h.Redis.Health(ctx); err != nil {
		status.Redis = "unavailable"
		status.Status = "degraded"
	}

	WriteJSON(w, http.StatusOK, status)
}
