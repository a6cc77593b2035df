package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/response"
)

const healthPingTimeout = 2 * time.Second

// HealthHandler responds with service health information.
type HealthHandler struct {
	DB Pinger
}

// Handle implements GET /api/v1/healthcheck.
func (h HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.DB != nil {
		pingCtx, cancel := context.WithTimeout(ctx, healthPingTimeout)
		defer cancel()
		if err := h.DB.Ping(pingCtx); err != nil {
			logging.FromContext(ctx).Error("database ping failed", "error", err)
			response.Error(ctx, w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}

	response.Success(ctx, w, http.StatusOK, healthStatus{Status: "ok"}, "service is healthy")
}

type healthStatus struct {
	Status string `json:"status"`
}
