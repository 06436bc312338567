package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/gophauth/internal/server"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	app, err := server.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	key, n, err := app.ExportActivity(ctx)
	if err != nil {
		log.Fatalf("export failed: %v", err)
	}

	log.Printf("exported %d login activities to %s/%s", n, cfg.S3Bucket, key)

}
