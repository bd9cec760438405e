package service

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// RoundWorker keeps rounds advancing on schedule even when no client is
// reading the current round
type RoundWorker struct {
	rounds   RoundService
	interval time.Duration
}

// NewRoundWorker creates a new round worker
func NewRoundWorker(rounds RoundService, interval time.Duration) *RoundWorker {
	return &RoundWorker{
		rounds:   rounds,
		interval: interval,
	}
}

// Start begins the round worker
func (w *RoundWorker) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})

	go func() {
		log.Info("Round worker started")

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			if _, err := w.rounds.GetCurrentRound(ctx); err != nil {
				log.Errorf("Failed to advance rounds: %v", err)
			}

			select {
			case <-ctx.Done():
				log.Info("Round worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Round worker shutting down (stop requested)...")
				return
			case <-ticker.C:
			}
		}
	}()

	// Return cleanup function
	return func() {
		close(stopChan)
	}
}
