package app

import (
	"fmt"

	"github.com/bridgeos/bridgeos/internal/config"
	"github.com/bridgeos/bridgeos/internal/pkg/logger"
	"github.com/bridgeos/bridgeos/internal/platform/billing"
	"github.com/bridgeos/bridgeos/internal/platform/chattransport"
	"github.com/bridgeos/bridgeos/internal/platform/dedup"
	"github.com/bridgeos/bridgeos/internal/platform/notify"
	"github.com/bridgeos/bridgeos/internal/platform/openaiadapter"
	"github.com/bridgeos/bridgeos/internal/platform/summarizer"
	"github.com/bridgeos/bridgeos/internal/platform/translator"
)

// Platform bundles the external-collaborator adapters named in spec §0's
// platform/ package: translator, summarizer, transport, dedup, notify,
// billing checkout URL building.
type Platform struct {
	Translator translator.Translator
	Summarizer summarizer.Summarizer
	Transport  chattransport.Transport
	Dedup      dedup.Guard
	Notifier   *notify.Dispatcher
	Checkout   billing.CheckoutURLBuilder
}

// noopContactResolver satisfies notify.ContactResolver by reporting no
// email address or phone number for any manager (BridgeOS's domain model
// carries no email/phone column), so the SendGrid and Twilio channels,
// when configured, have no address to send to.
type noopContactResolver struct{}

func (noopContactResolver) ResolveEmail(managerID int64) (string, bool) { return "", false }
func (noopContactResolver) ResolvePhone(managerID int64) (string, bool) { return "", false }

// wirePlatform constructs every external-collaborator adapter. transport
// is left as the in-memory double here; cmd/bot's real-SDK binding
// (out of scope) is responsible for swapping it for a live client.
func wirePlatform(cfg config.Config, log *logger.Logger) (Platform, error) {
	log.Info("wiring platform adapters")

	oai := openaiadapter.New(cfg.TranslatorKey, "", log)

	dedupGuard, err := dedup.New(cfg.RedisAddr, "bridgeos:dedup:", cfg.DedupTTL(), log)
	if err != nil {
		return Platform{}, fmt.Errorf("init dedup guard: %w", err)
	}

	resolver := noopContactResolver{}
	var channels []notify.Channel
	if cfg.SendGridAPIKey != "" {
		channels = append(channels, notify.NewSendGridChannel(cfg.SendGridAPIKey, cfg.SendGridFrom, "BridgeOS", resolver, log))
	}
	if cfg.TwilioSID != "" && cfg.TwilioAuthToken != "" {
		channels = append(channels, notify.NewTwilioChannel(cfg.TwilioSID, cfg.TwilioAuthToken, cfg.TwilioFrom, resolver, log))
	}
	dispatcher := notify.NewDispatcher(log, 0, channels...)

	return Platform{
		Translator: oai,
		Summarizer: oai,
		Transport:  chattransport.NewInMemory(),
		Dedup:      dedupGuard,
		Notifier:   dispatcher,
		Checkout:   billing.NewURLBuilder(cfg.CheckoutBaseURL),
	}, nil
}
