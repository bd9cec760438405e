package service

import (
	"context"
	"fmt"

	"wingo/events"
	"wingo/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type settlementService struct {
	uowFactory UnitOfWorkFactory
	outcomes   OutcomeSource
	clock      Clock
	eventBus   *events.Bus
}

// NewSettlementService creates a new settlement service
func NewSettlementService(uowFactory UnitOfWorkFactory, outcomes OutcomeSource, clock Clock, eventBus *events.Bus) SettlementService {
	return &settlementService{
		uowFactory: uowFactory,
		outcomes:   outcomes,
		clock:      clock,
		eventBus:   eventBus,
	}
}

// Settle draws an outcome for a locked round, resolves every wager, and
// credits the winners.
//
// The outcome record and all wager resolutions commit in one
// transaction guarded by the locked-to-completed state move, so
// concurrent callers settle a round exactly once. Payout credits run
// afterwards, each in its own transaction: a failed credit cannot hold
// the round open, but every failure is logged, published, and returned
// in a SettlementPartialError for reconciliation.
func (s *settlementService) Settle(ctx context.Context, roundID int64) error {
	digit, err := s.outcomes.Draw()
	if err != nil {
		return fmt.Errorf("failed to draw outcome: %w", err)
	}
	color := models.ColorForDigit(digit)
	size := models.SizeForDigit(digit)

	winners, settled, err := s.completeRound(ctx, roundID, digit, color, size)
	if err != nil {
		return err
	}
	if !settled {
		// Another caller completed the round first
		return nil
	}

	var failures []PayoutFailure
	for _, wager := range winners {
		if err := s.creditPayout(ctx, wager); err != nil {
			log.WithFields(log.Fields{
				"round_id":   roundID,
				"wager_id":   wager.ID,
				"account_id": wager.AccountID,
				"amount":     wager.PotentialPayout,
				"error":      err,
			}).Error("Failed to credit payout")

			s.eventBus.Emit(ctx, events.PayoutFailedEvent{
				RoundID:   roundID,
				WagerID:   wager.ID,
				AccountID: wager.AccountID,
				Amount:    wager.PotentialPayout,
				Reason:    err.Error(),
			})

			failures = append(failures, PayoutFailure{
				WagerID:   wager.ID,
				AccountID: wager.AccountID,
				Err:       err,
			})
		}
	}

	if len(failures) > 0 {
		return &SettlementPartialError{RoundID: roundID, Failures: failures}
	}
	return nil
}

// completeRound records the outcome and resolves every wager in one
// transaction. Returns the winning wagers and whether this caller
// performed the settlement.
func (s *settlementService) completeRound(ctx context.Context, roundID int64, digit int, color models.OutcomeColor, size models.OutcomeSize) ([]*models.Wager, bool, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	round, err := uow.RoundRepository().GetByID(ctx, roundID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get round: %w", err)
	}
	if round == nil {
		return nil, false, ErrRoundNotFound
	}
	if round.State == models.RoundStateCompleted {
		return nil, false, nil
	}
	if round.State == models.RoundStateActive {
		// Settlement invoked directly on an active round; lock it first
		if _, err := uow.RoundRepository().TransitionState(ctx, roundID, models.RoundStateActive, models.RoundStateLocked); err != nil {
			return nil, false, err
		}
	}

	won, err := uow.RoundRepository().CompleteWithOutcome(ctx, roundID, digit, color, size)
	if err != nil {
		return nil, false, err
	}
	if !won {
		return nil, false, nil
	}

	wagers, err := uow.WagerRepository().ListByRound(ctx, roundID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to list wagers: %w", err)
	}

	now := s.clock.Now()
	var winners []*models.Wager
	totalPayout := decimal.Zero
	for _, wager := range wagers {
		if wager.IsResolved() {
			continue
		}
		resolution := models.WagerResolutionLost
		if wager.Wins(digit) {
			resolution = models.WagerResolutionWon
			winners = append(winners, wager)
			totalPayout = totalPayout.Add(wager.PotentialPayout)
		}
		if err := uow.WagerRepository().Resolve(ctx, wager.ID, resolution, now); err != nil {
			return nil, false, err
		}
		wager.Resolution = resolution
		wager.ResolvedAt = &now
	}

	uow.EventBus().Publish(events.RoundCompletedEvent{
		RoundID:      roundID,
		IssueNumber:  round.IssueNumber,
		OutcomeDigit: digit,
		OutcomeColor: color,
		OutcomeSize:  size,
		WagerCount:   len(wagers),
		WinnerCount:  len(winners),
		TotalPayout:  totalPayout,
	})

	if err := uow.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"round_id":      roundID,
		"issue_number":  round.IssueNumber,
		"outcome_digit": digit,
		"outcome_color": color,
		"outcome_size":  size,
		"wager_count":   len(wagers),
		"winner_count":  len(winners),
		"total_payout":  totalPayout,
	}).Info("Round settled")

	return winners, true, nil
}

// creditPayout applies one winner's credit in its own transaction
func (s *settlementService) creditPayout(ctx context.Context, wager *models.Wager) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	_, err := Credit(ctx, uow, wager.AccountID, models.EntryKindWin, wager.PotentialPayout,
		fmt.Sprintf("payout for wager %d", wager.ID))
	if err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
