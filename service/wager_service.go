package service

import (
	"context"
	"fmt"

	"wingo/config"
	"wingo/events"
	"wingo/models"

	"github.com/shopspring/decimal"
)

type wagerService struct {
	uowFactory UnitOfWorkFactory
	rounds     RoundService
	clock      Clock
	cfg        *config.Config
}

// NewWagerService creates a new wager service
func NewWagerService(uowFactory UnitOfWorkFactory, rounds RoundService, clock Clock, cfg *config.Config) WagerService {
	return &wagerService{
		uowFactory: uowFactory,
		rounds:     rounds,
		clock:      clock,
		cfg:        cfg,
	}
}

// PlaceWager stakes an amount on the round named by issueNumber, which
// must still be the current open round. Validation failures surface in
// a fixed order: amount, wager shape, round availability, duplicates,
// then funds. The debit and the wager record commit in one
// transaction, so a failure at any point leaves the balance untouched.
func (s *wagerService) PlaceWager(ctx context.Context, accountID int64, kind models.WagerKind, value string, amount decimal.Decimal, issueNumber string) (*models.WagerReceipt, error) {
	if err := s.validateAmount(amount); err != nil {
		return nil, err
	}
	if !models.ValidValue(kind, value) {
		return nil, ErrInvalidWager
	}
	if issueNumber == "" {
		return nil, ErrInvalidWager
	}

	// Advances expired rounds so a stale target is detected against the
	// true current round
	current, err := s.rounds.GetCurrentRound(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve current round: %w", err)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	// Re-read inside the transaction; the round may have locked since
	round, err := uow.RoundRepository().GetByIssueNumber(ctx, issueNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to get round: %w", err)
	}
	if round == nil {
		return nil, ErrRoundNotFound
	}
	// A wager aimed at a round that already rolled over must fail so the
	// caller can retry against the new round, not land on it silently
	if round.ID != current.ID {
		return nil, ErrRoundClosed
	}
	if !round.AcceptsWagersAt(s.clock.Now(), s.cfg.LockWindow) {
		return nil, ErrRoundClosed
	}

	exists, err := uow.WagerRepository().Exists(ctx, accountID, round.ID, kind, value)
	if err != nil {
		return nil, fmt.Errorf("failed to check for duplicate wager: %w", err)
	}
	if exists {
		return nil, ErrDuplicateWager
	}

	entry, err := Debit(ctx, uow, accountID, models.EntryKindBet, amount,
		fmt.Sprintf("wager on round %s", round.IssueNumber))
	if err != nil {
		return nil, err
	}

	multiplier := s.multiplierFor(kind)
	wager := &models.Wager{
		AccountID:       accountID,
		RoundID:         round.ID,
		Kind:            kind,
		Value:           value,
		Amount:          amount,
		Multiplier:      multiplier,
		PotentialPayout: amount.Mul(multiplier),
	}
	if err := uow.WagerRepository().Create(ctx, wager); err != nil {
		if isUniqueViolation(err) {
			// Lost a duplicate race to a concurrent request
			return nil, ErrDuplicateWager
		}
		return nil, fmt.Errorf("failed to create wager: %w", err)
	}

	uow.EventBus().Publish(events.WagerPlacedEvent{
		WagerID:   wager.ID,
		AccountID: accountID,
		RoundID:   round.ID,
		Kind:      kind,
		Value:     value,
		Amount:    amount,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.WagerReceipt{
		Wager:      wager,
		NewBalance: entry.BalanceAfter,
	}, nil
}

func (s *wagerService) validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	// Stakes settle to the cent
	if !amount.Equal(amount.Round(2)) {
		return ErrInvalidAmount
	}
	if amount.LessThan(s.cfg.MinBetAmount) || amount.GreaterThan(s.cfg.MaxBetAmount) {
		return ErrInvalidAmount
	}
	return nil
}

func (s *wagerService) multiplierFor(kind models.WagerKind) decimal.Decimal {
	switch kind {
	case models.WagerKindNumber:
		return s.cfg.NumberMultiplier
	case models.WagerKindColor:
		return s.cfg.ColorMultiplier
	default:
		return s.cfg.SizeMultiplier
	}
}

func (s *wagerService) ListWagers(ctx context.Context, accountID, roundID int64, limit, offset int) ([]*models.Wager, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	wagers, err := uow.WagerRepository().ListByAccount(ctx, accountID, roundID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list wagers: %w", err)
	}

	return wagers, nil
}
