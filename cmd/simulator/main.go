package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"proby/internal/client"
	"proby/internal/config"
	"proby/internal/simulator"
)

func main() {
	config.LoadDotEnv()
	cfg, err := config.LoadSimulator()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("Simulating %s every %s to %s\n", cfg.Schema, cfg.Interval, cfg.APIURL)

	walker := simulator.NewWalker(cfg.Schema, time.Now().UnixNano())
	sent, err := simulator.Run(ctx, client.New(cfg.APIURL, nil), walker, cfg.Interval, cfg.Count)
	if err != nil && err != context.Canceled {
		log.Fatalf("Simulator error: %v", err)
	}

	log.Printf("Simulator stopped after %d readings\n", sent)
}
