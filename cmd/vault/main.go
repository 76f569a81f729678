package main

import (
	"context"
	"log"

	"github.com/skarpenko/govault/internal/app"
	"github.com/skarpenko/govault/internal/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	a, err := app.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	a.Run(ctx)
}
