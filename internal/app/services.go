package app

import (
	"gorm.io/gorm"

	"github.com/bridgeos/bridgeos/internal/config"
	"github.com/bridgeos/bridgeos/internal/pkg/logger"
	"github.com/bridgeos/bridgeos/internal/services/connection"
	"github.com/bridgeos/bridgeos/internal/services/extraction"
	"github.com/bridgeos/bridgeos/internal/services/identity"
	"github.com/bridgeos/bridgeos/internal/services/invite"
	"github.com/bridgeos/bridgeos/internal/services/messaging"
	"github.com/bridgeos/bridgeos/internal/services/subscription"
	"github.com/bridgeos/bridgeos/internal/services/tasks"
	"github.com/bridgeos/bridgeos/internal/services/usage"
	"github.com/bridgeos/bridgeos/internal/services/webhook"
)

// Services bundles every domain service, wired over Repos and Platform.
type Services struct {
	Identity     *identity.Service
	Connection   *connection.Service
	Messaging    *messaging.Service
	Tasks        *tasks.Service
	Usage        *usage.Service
	Subscription *subscription.Service
	Webhook      *webhook.Service
	Extraction   *extraction.Service
	Invite       *invite.Service
}

func wireServices(gdb *gorm.DB, repos Repos, platform Platform, cfg config.Config, log *logger.Logger) Services {
	log.Info("wiring services")

	identitySvc := identity.NewService(gdb, repos.Users, repos.Managers, repos.Workers, repos.Connections, log)
	connectionSvc := connection.NewService(gdb, repos.Connections, repos.Managers, repos.Workers, log)
	usageSvc := usage.NewService(gdb, repos.Usage, log)
	subscriptionSvc := subscription.NewService(gdb, repos.Subscriptions, log)
	inviteSvc := invite.NewService(repos.Managers, log)

	messagingSvc := messaging.NewService(
		gdb,
		repos.Messages,
		repos.Users,
		repos.Managers,
		identitySvc,
		connectionSvc,
		subscriptionSvc,
		usageSvc,
		platform.Translator,
		platform.Transport,
		messaging.Config{
			FreeLimit:     cfg.FreeMessageLimit,
			TestUserIDs:   cfg.TestUserIDs,
			ContextWindow: cfg.TranslationContextSize,
		},
		log,
	)

	tasksSvc := tasks.NewService(gdb, repos.Tasks, repos.Users, repos.Managers, connectionSvc, platform.Translator, log)
	webhookSvc := webhook.NewService(gdb, repos.WebhookEvents, subscriptionSvc, platform.Notifier, log)
	extractionSvc := extraction.NewService(repos.Messages, connectionSvc, platform.Summarizer, log)

	return Services{
		Identity:     identitySvc,
		Connection:   connectionSvc,
		Messaging:    messagingSvc,
		Tasks:        tasksSvc,
		Usage:        usageSvc,
		Subscription: subscriptionSvc,
		Webhook:      webhookSvc,
		Extraction:   extractionSvc,
		Invite:       inviteSvc,
	}
}
