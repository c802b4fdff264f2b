package app

import (
	bridgehttp "github.com/bridgeos/bridgeos/internal/http"
	httpMW "github.com/bridgeos/bridgeos/internal/http/middleware"
)

func wireRouter(handlers Handlers, auth *httpMW.AuthMiddleware) *bridgehttp.Server {
	return bridgehttp.NewServer(bridgehttp.RouterConfig{
		AuthMiddleware: auth,
		HealthHandler:  handlers.Health,
		WebhookHandler: handlers.Webhook,
		OpsHandler:     handlers.Ops,
	})
}
