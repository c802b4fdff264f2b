package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bridgeos/bridgeos/internal/pkg/logger"
)

// TwilioChannel posts an SMS via Twilio's Messages resource using HTTP
// Basic Auth (account SID / auth token), adapted from the teacher's
// clients/twilio client trimmed to the single outbound text this channel
// needs.
type TwilioChannel struct {
	accountSID string
	authToken  string
	fromNumber string
	baseURL    string
	httpClient *http.Client
	resolver   ContactResolver
	log        *logger.Logger
}

func NewTwilioChannel(accountSID, authToken, fromNumber string, resolver ContactResolver, log *logger.Logger) *TwilioChannel {
	return &TwilioChannel{
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: fromNumber,
		baseURL:    "https://api.twilio.com/2010-04-01",
		httpClient: &http.Client{Timeout: 10 * time.Second},
		resolver:   resolver,
		log:        log.With("channel", "notify.TwilioChannel"),
	}
}

func (c *TwilioChannel) Name() string { return "twilio" }

func (c *TwilioChannel) Notify(ctx context.Context, managerID int64, message string) error {
	to, ok := c.resolver.ResolvePhone(managerID)
	if !ok || strings.TrimSpace(to) == "" {
		return fmt.Errorf("no phone on file for manager %d", managerID)
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", c.fromNumber)
	form.Set("Body", message)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", c.baseURL, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build twilio request: %w", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send twilio request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("twilio responded %d", resp.StatusCode)
	}
	return nil
}
