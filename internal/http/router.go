package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/bridgeos/bridgeos/internal/http/handlers"
	httpMW "github.com/bridgeos/bridgeos/internal/http/middleware"
)

type RouterConfig struct {
	AuthMiddleware *httpMW.AuthMiddleware
	HealthHandler  *httpH.HealthHandler
	WebhookHandler *httpH.WebhookHandler
	OpsHandler     *httpH.OpsHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	r.Use(httpMW.AttachRequestContext())
	r.Use(httpMW.CORS())

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	if cfg.WebhookHandler != nil {
		r.POST("/webhooks/billing", cfg.WebhookHandler.Billing)
	}

	ops := r.Group("/ops")
	{
		if cfg.AuthMiddleware != nil {
			ops.Use(cfg.AuthMiddleware.RequireOpsAuth())
		}
		if cfg.OpsHandler != nil {
			ops.GET("/connections", cfg.OpsHandler.ListConnections)
			ops.GET("/tasks", cfg.OpsHandler.ListTasks)
			ops.GET("/usage/:manager_id", cfg.OpsHandler.GetUsage)
		}
	}

	return r
}
