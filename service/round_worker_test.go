package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"wingo/models"

	"github.com/stretchr/testify/assert"
)

// countingRoundService counts advancement ticks
type countingRoundService struct {
	calls atomic.Int64
}

func (s *countingRoundService) GetCurrentRound(ctx context.Context) (*models.Round, error) {
	s.calls.Add(1)
	return &models.Round{ID: 1, State: models.RoundStateActive}, nil
}

func (s *countingRoundService) GetRoundByIssueNumber(ctx context.Context, issueNumber string) (*models.Round, error) {
	return nil, nil
}

func (s *countingRoundService) GetRecentRounds(ctx context.Context, limit int) ([]*models.Round, error) {
	return nil, nil
}

func TestRoundWorker_AdvancesOnInterval(t *testing.T) {
	rounds := &countingRoundService{}
	worker := NewRoundWorker(rounds, 10*time.Millisecond)

	stop := worker.Start(context.Background())
	defer stop()

	assert.Eventually(t, func() bool {
		return rounds.calls.Load() >= 3
	}, 2*time.Second, 5*time.Millisecond)
}

func TestRoundWorker_StopHaltsTicks(t *testing.T) {
	rounds := &countingRoundService{}
	worker := NewRoundWorker(rounds, 10*time.Millisecond)

	stop := worker.Start(context.Background())
	stop()

	// Give the goroutine a moment to observe the stop
	time.Sleep(50 * time.Millisecond)
	settled := rounds.calls.Load()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, rounds.calls.Load())
}

func TestRoundWorker_ContextCancelHalts(t *testing.T) {
	rounds := &countingRoundService{}
	worker := NewRoundWorker(rounds, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	stop := worker.Start(ctx)
	defer stop()

	cancel()
	time.Sleep(50 * time.Millisecond)
	settled := rounds.calls.Load()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, rounds.calls.Load())
}
