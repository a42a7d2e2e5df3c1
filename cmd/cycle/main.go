// Command cycle runs one issue-and-evaluate pass and exits. Intended to be
// invoked from cron when the HTTP cycle endpoint is not used.
package main

import (
	"context"
	"log"
	"os"

	"github.com/lastmessage-app/server/internal/server"
	"github.com/lastmessage-app/server/internal/server/config"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

	report := app.RunCycleOnce(ctx)
	if report.Errors > 0 {
		os.Exit(1)
	}
}
