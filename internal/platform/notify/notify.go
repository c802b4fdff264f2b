// Package notify fans a billing event out to every configured
// out-of-band channel, best-effort: failures never fail the webhook.
// The package provides email (SendGrid) and SMS (Twilio) channels only;
// no chat-transport channel is included, so a manager is not notified
// through the bot. Grounded on the teacher's use of
// golang.org/x/sync/errgroup for bounded concurrent fan-out.
package notify

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bridgeos/bridgeos/internal/pkg/logger"
)

// Channel is one out-of-band delivery mechanism (email, SMS). A Channel
// never returns an error that should abort the others.
type Channel interface {
	Name() string
	Notify(ctx context.Context, managerID int64, message string) error
}

// Dispatcher fans a notification out across every registered channel
// concurrently, bounded by a per-channel deadline, logging (not
// propagating) individual failures.
type Dispatcher struct {
	channels []Channel
	log      *logger.Logger
	timeout  time.Duration
}

func NewDispatcher(log *logger.Logger, timeout time.Duration, channels ...Channel) *Dispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Dispatcher{channels: channels, log: log.With("component", "notify.Dispatcher"), timeout: timeout}
}

// Dispatch never returns an error: every channel failure is logged and
// swallowed, per §4.9's response discipline.
func (d *Dispatcher) Dispatch(ctx context.Context, managerID int64, message string) {
	if len(d.channels) == 0 {
		return
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, ch := range d.channels {
		ch := ch
		g.Go(func() error {
			sendCtx, cancel := context.WithTimeout(gctx, d.timeout)
			defer cancel()
			if err := ch.Notify(sendCtx, managerID, message); err != nil {
				d.log.Warn("notify channel failed", "channel", ch.Name(), "manager_id", managerID, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}
