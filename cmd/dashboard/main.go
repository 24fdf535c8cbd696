package main

import (
	"context"
	"log"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"proby/internal/client"
	"proby/internal/config"
	"proby/internal/dashboard"
	"proby/internal/liveness"
	"proby/internal/metrics"
	"proby/internal/poller"
)

// actions связывает клавиши дашборда с циклом опроса и API
type actions struct {
	poller *poller.Poller
	client *client.Client
}

func (a actions) Reconnect() poller.Snapshot {
	return a.poller.Reconnect()
}

func (a actions) Clear(ctx context.Context) (poller.Snapshot, int64, error) {
	deleted, err := a.client.Clear(ctx)
	if err != nil {
		return a.poller.Snapshot(), 0, err
	}
	return a.poller.Forget(), deleted, nil
}

func main() {
	config.LoadDotEnv()
	cfg, err := config.LoadDashboard()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	api := client.New(cfg.APIURL, nil)

	tracker := liveness.NewTracker(cfg.PauseAfter, cfg.ConnectAfter)
	p, err := poller.New(api, tracker, cfg.Thresholds, cfg.PollInterval, cfg.ReadingsLimit)
	if err != nil {
		log.Fatalf("Failed to create poller: %v", err)
	}

	// Prometheus endpoint клиента опроса (необязательно)
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/prometheus", metrics.ClientHandler())
		metricsServer := &http.Server{
			Addr:         cfg.MetricsAddr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("Metrics server error: %v", err)
			}
		}()
		defer metricsServer.Close()
	}

	model := dashboard.New(actions{poller: p, client: api}, cfg.Schema, cfg.Thresholds, p.Snapshot())
	program := tea.NewProgram(model, tea.WithAltScreen())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := make(chan poller.Snapshot)
	go p.Run(ctx, updates)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case snap := <-updates:
				program.Send(dashboard.SnapshotMsg{Snapshot: snap})
			}
		}
	}()

	if _, err := program.Run(); err != nil {
		log.Fatalf("Dashboard error: %v", err)
	}
}
