package main

import (
	"context"
	"log"

	"github.com/studiodanca/pagamentos/pkg/commence"
	"github.com/studiodanca/pagamentos/pkg/config"
)

func main() {
	cfg := config.Load()

	router, err := commence.Start(context.Background(), cfg)
	if err != nil {
		log.Fatalf("failed to start: %v", err)
	}

	log.Printf("listening on %s", cfg.HTTPAddr)
	if err := router.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
