// Package routes cung cấp tất cả routing functions cho Recipe Parser Service
//
// Cấu trúc:
// - api.go: API routes (/v1/*) và health routes
// - web.go: Web routes (/, /docs)
// - middleware.go: request id, CORS, logging, timeout
package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Options cấu hình middleware của router
type Options struct {
	CORSOrigins    []string
	RequestTimeout time.Duration
	Logger         *zap.Logger
}

// SetupAllRoutes thiết lập tất cả routes
func SetupAllRoutes(router *gin.Engine, ctrl Controllers, opts Options) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	// Thiết lập middleware
	setupMiddleware(router, opts)

	// Thiết lập các loại routes
	SetupWebRoutes(router)
	SetupHealthRoutes(router, ctrl.Health)
	SetupAPIRoutes(router, ctrl)

	// 404 handler
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":  "Route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})
}

// setupMiddleware thiết lập middleware cho router
func setupMiddleware(router *gin.Engine, opts Options) {
	router.Use(recovery(opts.Logger))
	router.Use(requestid.New())
	router.Use(requestLogger(opts.Logger))
	router.Use(cors.New(corsConfig(opts.CORSOrigins)))
	router.Use(bodySizeLimit(maxBodySize))
	router.Use(requestTimeout(opts.RequestTimeout))
}
