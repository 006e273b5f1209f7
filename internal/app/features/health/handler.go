package health

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/nmercer/insighthub/internal/app/system/timeouts"
	"github.com/nmercer/insighthub/internal/monitorapi"
)

// Handler holds dependencies needed for health checks.
type Handler struct {
	Monitor *monitorapi.Client
	Log     *zap.Logger
}

// NewHandler constructs a health Handler with the monitoring client and logger.
func NewHandler(monitor *monitorapi.Client, logger *zap.Logger) *Handler {
	return &Handler{
		Monitor: monitor,
		Log:     logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "backend":"reachable" }
//
// On backend failure: 503 and
//
//	{ "status":"error", "backend":"unreachable", "message":"…" }
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Ping(), h.Log, "health check")
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:  "ok",
		Backend: "reachable",
	}

	if err := h.Monitor.Ping(ctx); err != nil {
		h.Log.Error("health-check: backend ping failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		resp.Status = "error"
		resp.Backend = "unreachable"
		resp.Message = "Monitoring backend unavailable"
		resp.Error = err.Error()
		_ = json.NewEncoder(w).Encode(resp)
		return
	}

	_ = json.NewEncoder(w).Encode(resp)
}
