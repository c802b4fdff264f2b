// Command bot runs one bot-fleet process bound to a single slot (1..5),
// selected by the BOT_ID environment variable (spec §6: "bot slot
// determination"). The concrete chat-platform SDK — polling or
// webhook-based — is out of scope (spec §1 non-goals); this entrypoint
// builds the App, checks that BOT_ID selects a slot in 1..5, logs that
// the process is ready and then blocks. It does not call
// bot.Handler.HandleUpdate itself; no inbound transport is bound here.
package main

import (
	"fmt"
	"os"

	"github.com/bridgeos/bridgeos/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Printf("failed to initialize app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	if a.Cfg.BotSlot < 1 || a.Cfg.BotSlot > 5 {
		a.Log.Fatal("BOT_ID must select a slot in 1..5", "bot_id", a.Cfg.BotID)
	}
	a.Log.Info("bot process ready", "bot_id", a.Cfg.BotID, "slot", a.Cfg.BotSlot)

	// A real deployment's transport client drives HandleUpdate here,
	// one call per inbound chat-platform event, and delivers the
	// returned Reply back through its own send API. Kept alive so the
	// process behaves correctly under a process supervisor even before
	// that binding exists.
	select {}
}
