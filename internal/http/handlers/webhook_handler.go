package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bridgeos/bridgeos/internal/http/response"
	"github.com/bridgeos/bridgeos/internal/pkg/logger"
	"github.com/bridgeos/bridgeos/internal/platform/billing"
	"github.com/bridgeos/bridgeos/internal/services/webhook"
)

// maxWebhookBody bounds the body read so a malicious sender can't force an
// unbounded allocation before signature verification even runs.
const maxWebhookBody = 1 << 20

type WebhookHandler struct {
	webhooks *webhook.Service
	secret   []byte
	log      *logger.Logger
}

func NewWebhookHandler(webhooks *webhook.Service, secret []byte, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{webhooks: webhooks, secret: secret, log: log.With("handler", "WebhookHandler")}
}

// Billing implements spec §4.9's contract exactly: verify the HMAC
// signature over the raw body first and reject with 401 (no side effects)
// on mismatch; once verification passes, respond 200 unconditionally and
// log any downstream application failure rather than surfacing it to the
// billing provider, since a 5xx there triggers a retry storm on an event
// we've already recorded.
func (h *WebhookHandler) Billing(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody)
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	signature := c.GetHeader("X-Signature")
	if !billing.VerifySignature(h.secret, raw, signature) {
		h.log.Warn("billing webhook signature rejected")
		response.RespondError(c, http.StatusUnauthorized, "invalid_signature", nil)
		return
	}

	ev, err := billing.ParseEvent(raw)
	if err != nil {
		h.log.Error("billing webhook payload unparseable", "error", err)
		c.Status(http.StatusOK)
		return
	}

	if err := h.webhooks.Apply(c.Request.Context(), ev); err != nil {
		h.log.Error("billing webhook application failed", "error", err, "manager_id", ev.ManagerID, "kind", ev.Kind)
	}
	c.Status(http.StatusOK)
}
