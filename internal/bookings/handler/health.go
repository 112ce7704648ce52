package handler

import (
	"net/http"

	httputil "barbershop/pkg/http"
	"barbershop/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type HealthResponse struct {
	Status        string `json:"status"`
	Notifications string `json:"notifications,omitempty"`
}

// ReadinessChecker reports whether a background dependency can accept work.
type ReadinessChecker interface {
	Running() bool
}

type HealthHandler struct {
	notifier ReadinessChecker
	log      *logger.Logger
}

func NewHealthHandler(notifier ReadinessChecker, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		notifier: notifier,
		log:      log,
	}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Health", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !h.notifier.Running() {
		h.log.Error("Notification worker is not running",
			"path", r.URL.Path,
		)
		if writeErr := httputil.WriteJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:        "unavailable",
			Notifications: "stopped",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Ready", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteJSON(w, http.StatusOK, HealthResponse{
		Status:        "ready",
		Notifications: "ok",
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Ready", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}
