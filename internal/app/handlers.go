package app

import (
	"github.com/bridgeos/bridgeos/internal/config"
	httpH "github.com/bridgeos/bridgeos/internal/http/handlers"
	httpMW "github.com/bridgeos/bridgeos/internal/http/middleware"
	"github.com/bridgeos/bridgeos/internal/pkg/logger"
)

type Handlers struct {
	Health  *httpH.HealthHandler
	Webhook *httpH.WebhookHandler
	Ops     *httpH.OpsHandler
}

func wireHandlers(cfg config.Config, services Services, log *logger.Logger) Handlers {
	log.Info("wiring http handlers")
	return Handlers{
		Health:  httpH.NewHealthHandler(),
		Webhook: httpH.NewWebhookHandler(services.Webhook, []byte(cfg.WebhookSecret), log),
		Ops:     httpH.NewOpsHandler(services.Connection, services.Tasks, services.Usage, log),
	}
}

func wireAuthMiddleware(cfg config.Config, log *logger.Logger) *httpMW.AuthMiddleware {
	return httpMW.NewAuthMiddleware(log, []byte(cfg.OpsJWTSecret))
}
