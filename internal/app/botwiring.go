package app

import (
	"github.com/bridgeos/bridgeos/internal/bot"
	"github.com/bridgeos/bridgeos/internal/pkg/logger"
)

func wireBotHandler(services Services, platform Platform, log *logger.Logger) *bot.Handler {
	return bot.NewHandler(
		services.Identity,
		services.Connection,
		services.Invite,
		services.Tasks,
		services.Messaging,
		platform.Dedup,
		platform.Checkout,
		log,
	)
}
