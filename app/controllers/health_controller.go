package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/recipe-parser/app/responses"
	"go.uber.org/zap"
)

// Version phiên bản service
const Version = "1.0.0"

// DependencyCheck kiểm tra một dependency (MongoDB, Redis, Meilisearch)
type DependencyCheck = func(ctx context.Context) error

// HealthController health, readiness và liveness
type HealthController struct {
	checks    map[string]DependencyCheck
	startTime time.Time
	timeout   time.Duration
	logger    *zap.Logger
}

// NewHealthController tạo mới HealthController
func NewHealthController(checks map[string]DependencyCheck, logger *zap.Logger) *HealthController {
	return &HealthController{
		checks:    checks,
		startTime: time.Now(),
		timeout:   2 * time.Second,
		logger:    logger,
	}
}

// HealthCheck trạng thái từng dependency, luôn 200
func (hc *HealthController) HealthCheck(c *gin.Context) {
	status, services := hc.run(c.Request.Context())
	c.JSON(http.StatusOK, hc.response(status, services))
}

// ReadinessCheck 503 khi có dependency lỗi
func (hc *HealthController) ReadinessCheck(c *gin.Context) {
	status, services := hc.run(c.Request.Context())
	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, hc.response(status, services))
}

// LivenessCheck process còn chạy
func (hc *HealthController) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, hc.response("alive", nil))
}

func (hc *HealthController) run(ctx context.Context) (string, map[string]string) {
	ctx, cancel := context.WithTimeout(ctx, hc.timeout)
	defer cancel()

	status := "healthy"
	services := make(map[string]string, len(hc.checks))
	for name, check := range hc.checks {
		if err := check(ctx); err != nil {
			hc.logger.Warn("Dependency không sẵn sàng", zap.String("dependency", name), zap.Error(err))
			services[name] = "unhealthy"
			status = "degraded"
			continue
		}
		services[name] = "healthy"
	}
	return status, services
}

func (hc *HealthController) response(status string, services map[string]string) responses.HealthCheckResponse {
	return responses.HealthCheckResponse{
		Status:    status,
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    time.Since(hc.startTime).Round(time.Second).String(),
		Version:   Version,
		Services:  services,
	}
}
