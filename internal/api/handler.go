// Package api provides shared HTTP helpers and the health endpoint.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// Pinger is anything whose reachability the health check reports.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health reports the status of named dependencies.
type Health struct {
	checks map[string]Pinger
}

// NewHealth creates a health handler over checks.
func NewHealth(checks map[string]Pinger) *Health {
	return &Health{checks: checks}
}

// ServeHTTP handles GET /api/health.
func (h *Health) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	result := map[string]string{}
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			result[name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		result[name] = "ok"
	}
	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	JSON(w, status, map[string]any{"status": overall, "checks": result})
}
