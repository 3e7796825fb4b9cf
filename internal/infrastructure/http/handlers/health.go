package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// HealthHandler handles GET /health, the liveness check.
// Returns 200 immediately; confirms the process is alive.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// HealthDependenciesHandler handles GET /health/ready, the readiness check.
// MongoDB is required. Redis is optional: when it was never configured it is
// reported as disabled, when it is configured but down the service is
// degraded but still ready because sale numbers fall back to a local
// generator.
type HealthDependenciesHandler struct {
	mongo   *mongo.Client
	redis   *redis.Client
	timeout time.Duration
}

func NewHealthDependenciesHandler(client *mongo.Client, rdb *redis.Client) *HealthDependenciesHandler {
	return &HealthDependenciesHandler{
		mongo:   client,
		redis:   rdb,
		timeout: 3 * time.Second,
	}
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

func (h *HealthDependenciesHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	deps := make(map[string]dependencyStatus, 2)
	ready := true
	degraded := false

	// --- MongoDB ping (primary: sales need transactions) ---
	switch {
	case h.mongo == nil:
		deps["mongodb"] = dependencyStatus{Status: "unhealthy", Error: "not connected"}
		ready = false
	default:
		if err := h.mongo.Ping(ctx, readpref.Primary()); err != nil {
			deps["mongodb"] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
			ready = false
		} else {
			deps["mongodb"] = dependencyStatus{Status: "ok"}
		}
	}

	// --- Redis ping ---
	switch {
	case h.redis == nil:
		deps["redis"] = dependencyStatus{Status: "disabled"}
	default:
		if err := h.redis.Ping(ctx).Err(); err != nil {
			deps["redis"] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
			degraded = true
		} else {
			deps["redis"] = dependencyStatus{Status: "ok"}
		}
	}

	status := "ok"
	httpStatus := http.StatusOK
	switch {
	case !ready:
		status = "unavailable"
		httpStatus = http.StatusServiceUnavailable
	case degraded:
		status = "degraded"
	}

	return c.JSON(httpStatus, readinessResponse{
		Status:       status,
		Dependencies: deps,
	})
}
