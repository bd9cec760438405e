package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wingo/models"

	log "github.com/sirupsen/logrus"
)

// roundAdvanceAttempts bounds the advancement loop so a badly skewed
// clock cannot spin forever
const roundAdvanceAttempts = 5

type roundService struct {
	uowFactory    UnitOfWorkFactory
	settlement    SettlementService
	clock         Clock
	roundDuration time.Duration
	lockWindow    time.Duration
}

// NewRoundService creates a new round service
func NewRoundService(uowFactory UnitOfWorkFactory, settlement SettlementService, clock Clock, roundDuration, lockWindow time.Duration) RoundService {
	return &roundService{
		uowFactory:    uowFactory,
		settlement:    settlement,
		clock:         clock,
		roundDuration: roundDuration,
		lockWindow:    lockWindow,
	}
}

// GetCurrentRound returns the round currently accepting or holding
// wagers. Expired rounds are locked and settled on the way, and a fresh
// round is created when none is open. Every state move is a conditional
// update, so concurrent callers race harmlessly: losers observe the
// winner's result.
func (s *roundService) GetCurrentRound(ctx context.Context) (*models.Round, error) {
	for attempt := 0; attempt < roundAdvanceAttempts; attempt++ {
		round, settleID, err := s.advanceOnce(ctx)
		if err != nil {
			return nil, err
		}
		if settleID != 0 {
			if err := s.settleRound(ctx, settleID); err != nil {
				return nil, err
			}
			continue
		}
		if round != nil {
			return round, nil
		}
	}
	return nil, fmt.Errorf("failed to advance to an open round after %d attempts", roundAdvanceAttempts)
}

// advanceOnce performs a single advancement step. It returns the
// current round when one is open, or a round ID that must be settled
// before advancement can continue.
func (s *roundService) advanceOnce(ctx context.Context) (*models.Round, int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	now := s.clock.Now()

	round, err := uow.RoundRepository().GetCurrent(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get current round: %w", err)
	}

	if round == nil {
		round, err = s.createRound(ctx, uow, now)
		if err != nil {
			if isUniqueViolation(err) {
				// Another caller created the round first; re-read
				return nil, 0, nil
			}
			return nil, 0, err
		}
		if err := uow.Commit(); err != nil {
			return nil, 0, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return round, 0, nil
	}

	// Past the end: make sure the round is locked, then hand it to
	// settlement outside this transaction
	if !now.Before(round.EndTime) {
		if round.State == models.RoundStateActive {
			if _, err := uow.RoundRepository().TransitionState(ctx, round.ID, models.RoundStateActive, models.RoundStateLocked); err != nil {
				return nil, 0, err
			}
		}
		if err := uow.Commit(); err != nil {
			return nil, 0, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil, round.ID, nil
	}

	// Inside the lock window: stop accepting wagers
	if round.State == models.RoundStateActive && !now.Before(round.LockTime(s.lockWindow)) {
		moved, err := uow.RoundRepository().TransitionState(ctx, round.ID, models.RoundStateActive, models.RoundStateLocked)
		if err != nil {
			return nil, 0, err
		}
		if moved {
			round.State = models.RoundStateLocked
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return round, 0, nil
}

func (s *roundService) createRound(ctx context.Context, uow UnitOfWork, now time.Time) (*models.Round, error) {
	issueNumber, err := s.nextIssueNumber(ctx, uow, now)
	if err != nil {
		return nil, err
	}

	round := &models.Round{
		IssueNumber: issueNumber,
		State:       models.RoundStateActive,
		StartTime:   now,
		EndTime:     now.Add(s.roundDuration),
	}
	if err := uow.RoundRepository().Create(ctx, round); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"round_id":     round.ID,
		"issue_number": round.IssueNumber,
		"end_time":     round.EndTime,
	}).Info("Opened new round")

	return round, nil
}

// nextIssueNumber builds the date-prefixed sequential issue number,
// e.g. 20260901042 for the day's 42nd round. Sequence races end in a
// unique violation and a retry.
func (s *roundService) nextIssueNumber(ctx context.Context, uow UnitOfWork, now time.Time) (string, error) {
	prefix := now.Format("20060102")
	count, err := uow.RoundRepository().CountByIssuePrefix(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to count today's rounds: %w", err)
	}
	return fmt.Sprintf("%s%03d", prefix, count+1), nil
}

func (s *roundService) settleRound(ctx context.Context, roundID int64) error {
	err := s.settlement.Settle(ctx, roundID)
	if err == nil {
		return nil
	}

	// A partial settlement still completed the round; the failed
	// payouts are logged and published by the settlement engine
	var partial *SettlementPartialError
	if errors.As(err, &partial) {
		log.WithFields(log.Fields{
			"round_id":       partial.RoundID,
			"failed_payouts": len(partial.Failures),
		}).Warn("Round settled with failed payouts")
		return nil
	}

	return fmt.Errorf("failed to settle round %d: %w", roundID, err)
}

func (s *roundService) GetRoundByIssueNumber(ctx context.Context, issueNumber string) (*models.Round, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	round, err := uow.RoundRepository().GetByIssueNumber(ctx, issueNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to get round: %w", err)
	}
	if round == nil {
		return nil, ErrRoundNotFound
	}

	return round, nil
}

func (s *roundService) GetRecentRounds(ctx context.Context, limit int) ([]*models.Round, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	rounds, err := uow.RoundRepository().ListRecentCompleted(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent rounds: %w", err)
	}

	return rounds, nil
}
