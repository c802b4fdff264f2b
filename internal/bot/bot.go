package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/bridgeos/bridgeos/internal/pkg/logger"

	berrors "github.com/bridgeos/bridgeos/internal/pkg/errors"
	"github.com/bridgeos/bridgeos/internal/platform/billing"
	"github.com/bridgeos/bridgeos/internal/platform/dedup"
	"github.com/bridgeos/bridgeos/internal/services/connection"
	"github.com/bridgeos/bridgeos/internal/services/identity"
	"github.com/bridgeos/bridgeos/internal/services/invite"
	"github.com/bridgeos/bridgeos/internal/services/messaging"
	"github.com/bridgeos/bridgeos/internal/services/tasks"
)

const inviteStartPrefix = "invite_"

// Handler is the single entry point cmd/bot calls for every normalized
// inbound Update, on whichever slot this process owns.
type Handler struct {
	identity   *identity.Service
	connection *connection.Service
	invite     *invite.Service
	tasks      *tasks.Service
	messaging  *messaging.Service
	dedup      dedup.Guard
	checkout   billing.CheckoutURLBuilder
	log        *logger.Logger
}

func NewHandler(
	identitySvc *identity.Service,
	connectionSvc *connection.Service,
	inviteSvc *invite.Service,
	tasksSvc *tasks.Service,
	messagingSvc *messaging.Service,
	dedupGuard dedup.Guard,
	checkout billing.CheckoutURLBuilder,
	log *logger.Logger,
) *Handler {
	return &Handler{
		identity:   identitySvc,
		connection: connectionSvc,
		invite:     inviteSvc,
		tasks:      tasksSvc,
		messaging:  messagingSvc,
		dedup:      dedupGuard,
		checkout:   checkout,
		log:        log.With("component", "bot.Handler"),
	}
}

// HandleUpdate routes one inbound Update: transport-boundary dedup first
// (spec §4.4.6), then upserts the sender's identity, then dispatches to
// invite redemption, task creation, or plain message delivery.
func (h *Handler) HandleUpdate(ctx context.Context, u Update) (*Reply, error) {
	if u.UpdateID != "" {
		seen, err := h.dedup.SeenBefore(ctx, u.UpdateID)
		if err != nil {
			h.log.Warn("dedup check failed, proceeding without it", "error", err)
		} else if seen {
			return nil, nil
		}
	}

	if _, err := h.identity.UpsertUser(ctx, u.SenderUserID, u.DisplayName, u.UILanguage, u.Gender); err != nil {
		return nil, err
	}

	if code, ok := parseInviteCode(u.StartParam); ok {
		return h.redeem(ctx, u, code)
	}

	if tasks.IsTaskText(u.Text) {
		return h.createTask(ctx, u)
	}

	if taskID, ok := parseCompleteCommand(u.Text); ok {
		return h.completeTask(ctx, u, taskID)
	}

	if industry, ok := parseRegisterCommand(u.Text); ok {
		return h.registerManager(ctx, u, industry)
	}

	return h.deliverMessage(ctx, u)
}

func (h *Handler) redeem(ctx context.Context, u Update, code string) (*Reply, error) {
	mgr, err := h.invite.Resolve(ctx, code)
	if err != nil {
		return &Reply{Text: "That invitation link is no longer valid."}, nil
	}

	role, err := h.identity.GetRole(ctx, u.SenderUserID)
	if err != nil {
		return nil, err
	}
	if role == identity.RoleNone {
		if _, err := h.identity.CreateWorker(ctx, u.SenderUserID); err != nil {
			return nil, err
		}
	}

	if _, err := h.connection.Bind(ctx, mgr.ManagerID, u.SenderUserID, u.BotSlot); err != nil {
		return &Reply{Text: userFacingMessage(err)}, nil
	}
	return &Reply{Text: "You're connected. Messages you send here will be relayed and translated."}, nil
}

func (h *Handler) createTask(ctx context.Context, u Update) (*Reply, error) {
	role, err := h.identity.GetRole(ctx, u.SenderUserID)
	if err != nil {
		return nil, err
	}
	if role != identity.RoleManager {
		return &Reply{Text: "Only a manager can create a task."}, nil
	}

	_, translated, err := h.tasks.Create(ctx, u.SenderUserID, u.BotSlot, u.Text)
	if err != nil {
		return &Reply{Text: userFacingMessage(err)}, nil
	}
	return &Reply{Text: fmt.Sprintf("Task sent: %s", translated)}, nil
}

// completeCommandPrefix is this deployment's wire convention for a worker
// marking a task done. Spec §4.5 leaves the trigger unspecified (the
// real keyboard/button affordance is transport-layer, out of scope); a
// plain-text command keeps the contract testable without a concrete SDK.
// registerCommandPrefix is this deployment's linear-flow trigger for
// explicit manager registration (spec §9: a short flow carried in the
// in-flight handler's locals, no durable "registration session" row).
const registerCommandPrefix = "/register "

const completeCommandPrefix = "/done "

func parseCompleteCommand(text string) (int64, bool) {
	if !strings.HasPrefix(text, completeCommandPrefix) {
		return 0, false
	}
	rest := strings.TrimSpace(strings.TrimPrefix(text, completeCommandPrefix))
	var taskID int64
	if _, err := fmt.Sscanf(rest, "%d", &taskID); err != nil || taskID == 0 {
		return 0, false
	}
	return taskID, true
}

func parseRegisterCommand(text string) (string, bool) {
	if !strings.HasPrefix(text, registerCommandPrefix) {
		return "", false
	}
	industry := strings.TrimSpace(strings.TrimPrefix(text, registerCommandPrefix))
	return industry, industry != ""
}

func (h *Handler) registerManager(ctx context.Context, u Update, industry string) (*Reply, error) {
	role, err := h.identity.GetRole(ctx, u.SenderUserID)
	if err != nil {
		return nil, err
	}
	if role != identity.RoleNone {
		return &Reply{Text: "You're already registered."}, nil
	}

	code, err := h.invite.Generate(ctx)
	if err != nil {
		return &Reply{Text: userFacingMessage(err)}, nil
	}
	if _, err := h.identity.CreateManager(ctx, u.SenderUserID, industry, code); err != nil {
		return &Reply{Text: userFacingMessage(err)}, nil
	}
	return &Reply{Text: fmt.Sprintf("You're registered. Share this code with your workers: %s", code)}, nil
}

func (h *Handler) completeTask(ctx context.Context, u Update, taskID int64) (*Reply, error) {
	_, err := h.tasks.Complete(ctx, taskID, u.SenderUserID)
	if err != nil {
		if berrors.CodeOf(err) == berrors.CodeAlreadyCompleted {
			return &Reply{Text: "That task was already marked complete."}, nil
		}
		return &Reply{Text: userFacingMessage(err)}, nil
	}
	return &Reply{Text: "Marked complete."}, nil
}

func (h *Handler) deliverMessage(ctx context.Context, u Update) (*Reply, error) {
	_, err := h.messaging.DeliverText(ctx, u.SenderUserID, u.BotSlot, u.Text)
	if err != nil {
		if berrors.CodeOf(err) == berrors.CodeLimitReached {
			return &Reply{Text: h.limitReachedMessage(u.SenderUserID)}, nil
		}
		return &Reply{Text: userFacingMessage(err)}, nil
	}
	return nil, nil
}

func (h *Handler) limitReachedMessage(managerID int64) string {
	if h.checkout == nil {
		return "You've reached your free message limit. Contact support to upgrade."
	}
	url, err := h.checkout.BuildCheckoutURL(managerID)
	if err != nil {
		return "You've reached your free message limit. Contact support to upgrade."
	}
	return "You've reached your free message limit. Subscribe to keep going: " + url
}

func parseInviteCode(startParam string) (string, bool) {
	if !strings.HasPrefix(startParam, inviteStartPrefix) {
		return "", false
	}
	code := strings.TrimPrefix(startParam, inviteStartPrefix)
	return code, code != ""
}

// userFacingMessage implements spec §7's propagation policy: translate a
// typed error code into short, localized-ready copy, never the
// underlying constraint or driver message.
func userFacingMessage(err error) string {
	switch berrors.CodeOf(err) {
	case berrors.CodeSlotOccupied:
		return "That slot is already connected to someone else."
	case berrors.CodeWorkerAlreadyConnected:
		return "You're already connected to a manager."
	case berrors.CodeManagerGone, berrors.CodeWorkerGone:
		return "That connection no longer exists."
	case berrors.CodeNotConnected:
		return "You're not connected yet. Use your invitation link first."
	case berrors.CodeWrongSlot:
		return "That message came in on the wrong connection."
	case berrors.CodeForbidden:
		return "You can't do that."
	case berrors.CodeAlreadyDisconnected:
		return "Already disconnected."
	case berrors.CodeAlreadyCompleted:
		return "That task is already marked complete."
	case berrors.CodeValidation:
		return "That message couldn't be understood — try again."
	case berrors.CodeTranslationFailed, berrors.CodeTransportFailed, berrors.CodePoolExhausted:
		return "Something went wrong. Please try again in a moment."
	default:
		return "Something went wrong. Please try again in a moment."
	}
}
