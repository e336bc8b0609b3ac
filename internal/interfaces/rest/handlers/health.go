package handlers

import (
	"net/http"

	"github.com/DanielPopoola/payment-gateway/internal/interfaces/rest"
)

type healthStatus struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Healthz reports liveness plus the result of each registered dependency check.
func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	status := healthStatus{Status: "ok"}
	code := http.StatusOK

	if len(h.checks) > 0 {
		status.Checks = make(map[string]string, len(h.checks))
		for name, check := range h.checks {
			if err := check(r.Context()); err != nil {
				h.logger.Warn("health check failed", "check", name, "error", err)
				status.Checks[name] = "unavailable"
				status.Status = "degraded"
				code = http.StatusServiceUnavailable
				continue
			}
			status.Checks[name] = "ok"
		}
	}

	rest.WriteJSON(w, code, status, h.logger)
}
