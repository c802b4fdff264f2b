// Package config loads the process configuration named in spec §6:
// translation provider selection, quota knobs, the test-user whitelist,
// and the secrets each platform adapter needs — read the way the
// teacher's internal/app/config.go reads its own JWT/TTL settings, via
// internal/pkg/env.
package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/bridgeos/bridgeos/internal/pkg/env"
	"github.com/bridgeos/bridgeos/internal/pkg/logger"
)

type Config struct {
	// Core process identity.
	BotID        string // e.g. "bot1".."bot5"
	BotSlot      int    // trailing digit of BotID
	DatabaseURL  string
	LogMode      string
	HTTPAddress  string

	// Quota / translation knobs (spec §6).
	TranslationProvider    string
	TranslationContextSize int
	FreeMessageLimit       int64
	EnforceLimits          bool
	TestUserIDs            map[int64]bool

	// Secrets.
	TransportToken  string
	TranslatorKey   string
	WebhookSecret   string
	OpsJWTSecret    string
	RedisAddr       string
	SendGridAPIKey  string
	SendGridFrom    string
	TwilioSID       string
	TwilioAuthToken string
	TwilioFrom      string
	CheckoutBaseURL string
}

// Load reads every recognized option from the environment. Callers
// running as a specific bot slot (cmd/bot) must have BOT_ID set; the
// webhook daemon (cmd/webhook) leaves it empty.
func Load(log *logger.Logger) Config {
	botID := env.GetString("BOT_ID", "", log)
	return Config{
		BotID:       botID,
		BotSlot:     slotFromBotID(botID),
		DatabaseURL: env.GetString("DATABASE_URL", "", log),
		LogMode:     env.GetString("LOG_MODE", "development", log),
		HTTPAddress: env.GetString("HTTP_ADDRESS", ":8080", log),

		TranslationProvider:    env.GetString("TRANSLATION_PROVIDER", "openai", log),
		TranslationContextSize: env.GetInt("TRANSLATION_CONTEXT_SIZE", 6, log),
		FreeMessageLimit:       env.GetInt64("FREE_MESSAGE_LIMIT", 8, log),
		EnforceLimits:          env.GetString("ENFORCE_LIMITS", "true", log) == "true",
		TestUserIDs:            parseTestUserIDs(env.GetString("TEST_USER_IDS", "", log)),

		TransportToken:  env.GetString("TRANSPORT_TOKEN", "", log),
		TranslatorKey:   env.GetString("TRANSLATOR_API_KEY", "", log),
		WebhookSecret:   env.GetString("BILLING_WEBHOOK_SECRET", "", log),
		OpsJWTSecret:    env.GetString("OPS_JWT_SECRET", "", log),
		RedisAddr:       env.GetString("REDIS_ADDR", "localhost:6379", log),
		SendGridAPIKey:  env.GetString("SENDGRID_API_KEY", "", log),
		SendGridFrom:    env.GetString("SENDGRID_FROM_EMAIL", "", log),
		TwilioSID:       env.GetString("TWILIO_ACCOUNT_SID", "", log),
		TwilioAuthToken: env.GetString("TWILIO_AUTH_TOKEN", "", log),
		TwilioFrom:      env.GetString("TWILIO_FROM_NUMBER", "", log),
		CheckoutBaseURL: env.GetString("CHECKOUT_BASE_URL", "", log),
	}
}

// DedupTTL is how long a transport update id is remembered for at-least-
// once delivery dedup (spec §4.4.6 / platform/dedup).
func (c Config) DedupTTL() time.Duration { return 24 * time.Hour }

// slotFromBotID extracts the trailing digit of a BOT_ID like "bot3",
// per spec §6's "bot slot determination".
func slotFromBotID(botID string) int {
	if botID == "" {
		return 0
	}
	i := len(botID) - 1
	for i >= 0 && botID[i] >= '0' && botID[i] <= '9' {
		i--
	}
	n, err := strconv.Atoi(botID[i+1:])
	if err != nil {
		return 0
	}
	return n
}

func parseTestUserIDs(raw string) map[int64]bool {
	out := map[int64]bool{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if id, err := strconv.ParseInt(part, 10, 64); err == nil {
			out[id] = true
		}
	}
	return out
}
