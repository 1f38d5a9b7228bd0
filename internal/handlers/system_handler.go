package handlers

import (
	"context"
	"net/http"
	"time"

	"cheflink/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const healthCheckTimeout = 2 * time.Second

// Pinger reports whether a backing dependency is reachable.
type Pinger func(ctx context.Context) error

type SystemHandler struct {
	service string
	version string
	db      Pinger
}

func NewSystemHandler(service, version string, db Pinger) *SystemHandler {
	return &SystemHandler{service: service, version: version, db: db}
}

func (h *SystemHandler) Register(r gin.IRoutes) {
	r.GET("/", h.Health)
	r.GET("/info", h.Info)
}

type healthStatus struct {
	Message string `json:"message"`
	Version string `json:"version"`
	Status  string `json:"status"`
}

type serviceInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Version     string   `json:"version"`
	Features    []string `json:"features"`
	Endpoints   []string `json:"endpoints"`
}

func (h *SystemHandler) Health(c *gin.Context) {
	body := healthStatus{Message: h.service + " is running", Version: h.version, Status: "healthy"}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()
		if err := h.db(ctx); err != nil {
			log.Warn().Err(err).Str("request_id", logger.RequestID(c.Request.Context())).Msg("database ping failed")
			respondFailure(c, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "service degraded: database unreachable")
			return
		}
	}
	respondOK(c, http.StatusOK, "service healthy", body)
}

func (h *SystemHandler) Info(c *gin.Context) {
	respondOK(c, http.StatusOK, "service info", serviceInfo{
		Name:        h.service,
		Description: "Order management backend: create, list, update and delete customer orders",
		Version:     h.version,
		Features: []string{
			"daily sequential order ids (ORD-YYYYMMDD-NNNN)",
			"date range filtering with pagination",
			"order and payment status tracking",
			"order lifecycle events",
		},
		Endpoints: []string{
			"GET /orders/get_all_orders",
			"GET /orders/get_order_by_id/:id",
			"POST /orders/create_order",
			"POST /orders/update_order_by_id/:id",
			"POST /orders/update_order_status_by_id/:id",
			"POST /orders/update_payment_status_by_id/:id",
			"POST /orders/delete_order_by_id/:id",
		},
	})
}
