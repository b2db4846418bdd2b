package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/dealledger/backend/internal/interfaces/http/dto"
	"github.com/dealledger/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// Pinger is a dependency the health check can probe
type Pinger interface {
	Ping() error
}

// HealthCheck is an additional named probe, such as the Redis client
type HealthCheck struct {
	Name  string
	Probe func(ctx context.Context) error
}

// HealthHandler reports liveness and dependency health
type HealthHandler struct {
	BaseHandler
	db        Pinger
	checks    []HealthCheck
	startTime time.Time
	timeout   time.Duration
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db Pinger, checks ...HealthCheck) *HealthHandler {
	return &HealthHandler{
		db:        db,
		checks:    checks,
		startTime: time.Now(),
		timeout:   2 * time.Second,
	}
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status string            `json:"status" example:"ok"`
	Checks map[string]string `json:"checks"`
	Uptime string            `json:"uptime" example:"1h30m45s"`
}

// Health godoc
// @Summary      Health check
// @Description  Pings the database and any other registered dependency
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=HealthResponse}
// @Failure      503 {object} dto.Response{data=HealthResponse}
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status: "ok",
		Checks: map[string]string{},
		Uptime: time.Since(h.startTime).Round(time.Second).String(),
	}

	if err := h.db.Ping(); err != nil {
		resp.Status = "unavailable"
		resp.Checks["database"] = err.Error()
	} else {
		resp.Checks["database"] = "ok"
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()
	for _, check := range h.checks {
		if err := check.Probe(ctx); err != nil {
			resp.Status = "unavailable"
			resp.Checks[check.Name] = err.Error()
			continue
		}
		resp.Checks[check.Name] = "ok"
	}

	if resp.Status != "ok" {
		body := dto.NewErrorResponseWithRequestID(dto.ErrCodeUnavailable, "A dependency is unavailable", middleware.GetRequestID(c))
		body.Data = resp
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	h.Success(c, resp)
}
