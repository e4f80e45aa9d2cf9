package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"roomdesk/pkg/client"
	httputil "roomdesk/pkg/http"
	kafka_middleware "roomdesk/pkg/kafka/middleware"
	"roomdesk/pkg/logger"
)

const readyTimeout = 2 * time.Second

type HealthResponse struct {
	Status string                            `json:"status"`
	Checks map[string]string                 `json:"checks,omitempty"`
	Events *kafka_middleware.MetricsSnapshot `json:"events,omitempty"`
}

type HealthHandler struct {
	client  *client.Client
	metrics *kafka_middleware.Metrics
	log     *logger.Logger
}

// NewHealthHandler checks every backend set on c. metrics may be nil when
// event publishing is disabled.
func NewHealthHandler(c *client.Client, metrics *kafka_middleware.Metrics, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		client:  c,
		metrics: metrics,
		log:     log,
	}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	httputil.WriteJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	checks := map[string]string{}
	healthy := true
	record := func(name string, err error) {
		if err != nil {
			h.log.Error("Dependency health check failed", "dependency", name, "error", err, "path", r.URL.Path)
			checks[name] = "error"
			healthy = false
			return
		}
		checks[name] = "ok"
	}

	if h.client != nil {
		if h.client.Mongo != nil {
			record("mongo", h.client.Mongo.Ping(ctx, nil))
		}
		if h.client.Redis != nil {
			record("redis", h.client.Redis.Ping(ctx).Err())
		}
		if h.client.Directory != nil {
			sqlDB, err := h.client.Directory.DB()
			if err == nil {
				err = sqlDB.PingContext(ctx)
			}
			record("directory", err)
		}
	}

	resp := HealthResponse{Status: "ready", Checks: checks}
	if h.metrics != nil {
		snapshot := h.metrics.Snapshot()
		resp.Events = &snapshot
	}

	if !healthy {
		resp.Status = "unavailable"
		httputil.WriteJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}
