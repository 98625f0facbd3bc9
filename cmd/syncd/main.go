// Command syncd keeps the local menuroll store in sync with the configured
// remote while auto sync is on.
package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/menuroll/internal/buildinfo"
	"github.com/dmitrijs2005/menuroll/internal/client/config"
	"github.com/dmitrijs2005/menuroll/internal/client/services"
	"github.com/dmitrijs2005/menuroll/internal/daemon"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	app, err := daemon.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	err = app.Run(ctx)
	if cerr := app.Close(); cerr != nil {
		log.Printf("close: %v", cerr)
	}
	if err != nil {
		log.Printf("%s", services.UserMessage(err))
		os.Exit(1)
	}
}
