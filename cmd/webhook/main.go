// Command webhook runs the billing webhook HTTP receiver (spec §4.9,
// C9) plus the internal ops read API.
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

	a.Log.Info("webhook server listening", "address", a.Cfg.HTTPAddress)
	if err := a.Server.Run(a.Cfg.HTTPAddress); err != nil {
		a.Log.Error("webhook server exited", "error", err)
		os.Exit(1)
	}
}
