package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bridgeos/bridgeos/internal/pkg/logger"
)

// ContactResolver looks up the out-of-band address (email or phone) a
// manager should be reached at. BridgeOS's core domain model has no such
// column — it is a property of whatever onboarding flow associates a
// manager with a billing contact — so it is injected rather than assumed.
type ContactResolver interface {
	ResolveEmail(managerID int64) (string, bool)
	ResolvePhone(managerID int64) (string, bool)
}

// SendGridChannel posts a plain-text email via SendGrid's v3 mail/send
// endpoint. Adapted from the teacher's platform/sendgrid client, trimmed
// to the single template-free text send this channel needs.
type SendGridChannel struct {
	apiKey     string
	fromEmail  string
	fromName   string
	baseURL    string
	httpClient *http.Client
	resolver   ContactResolver
	log        *logger.Logger
}

func NewSendGridChannel(apiKey, fromEmail, fromName string, resolver ContactResolver, log *logger.Logger) *SendGridChannel {
	return &SendGridChannel{
		apiKey:     apiKey,
		fromEmail:  fromEmail,
		fromName:   fromName,
		baseURL:    "https://api.sendgrid.com",
		httpClient: &http.Client{Timeout: 10 * time.Second},
		resolver:   resolver,
		log:        log.With("channel", "notify.SendGridChannel"),
	}
}

func (c *SendGridChannel) Name() string { return "sendgrid" }

func (c *SendGridChannel) Notify(ctx context.Context, managerID int64, message string) error {
	to, ok := c.resolver.ResolveEmail(managerID)
	if !ok || strings.TrimSpace(to) == "" {
		return fmt.Errorf("no email on file for manager %d", managerID)
	}

	payload := map[string]any{
		"personalizations": []map[string]any{
			{"to": []map[string]string{{"email": to}}},
		},
		"from":    map[string]string{"email": c.fromEmail, "name": c.fromName},
		"subject": "BridgeOS billing update",
		"content": []map[string]string{{"type": "text/plain", "value": message}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode sendgrid payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v3/mail/send", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build sendgrid request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send sendgrid request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid responded %d", resp.StatusCode)
	}
	return nil
}
