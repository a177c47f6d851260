package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/pdfdesk/internal/client/cli"
	"github.com/dmitrijs2005/pdfdesk/internal/client/config"
	"github.com/dmitrijs2005/pdfdesk/internal/logging"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	app, err := cli.NewApp(cfg, logging.NewJSONLogger(os.Stderr, "warn"))
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}
