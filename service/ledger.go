package service

import (
	"context"
	"fmt"

	"wingo/events"
	"wingo/models"

	"github.com/shopspring/decimal"
)

// Credit increases an account's balance inside the caller's unit of work.
// This and Debit are the only entry points for balance changes: every
// change locks the account row, writes the new balance, appends a ledger
// entry carrying the before/after pair, and publishes a balance change
// event that flushes when the transaction commits.
func Credit(ctx context.Context, uow UnitOfWork, accountID int64, kind models.EntryKind, amount decimal.Decimal, description string) (*models.LedgerEntry, error) {
	if !kind.IsCredit() {
		return nil, fmt.Errorf("entry kind %s is not a credit", kind)
	}
	return applyChange(ctx, uow, accountID, kind, amount, description)
}

// Debit decreases an account's balance inside the caller's unit of work.
// Returns ErrInsufficientFunds when the balance does not cover the amount.
func Debit(ctx context.Context, uow UnitOfWork, accountID int64, kind models.EntryKind, amount decimal.Decimal, description string) (*models.LedgerEntry, error) {
	if kind.IsCredit() {
		return nil, fmt.Errorf("entry kind %s is not a debit", kind)
	}
	return applyChange(ctx, uow, accountID, kind, amount, description)
}

func applyChange(ctx context.Context, uow UnitOfWork, accountID int64, kind models.EntryKind, amount decimal.Decimal, description string) (*models.LedgerEntry, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	account, err := uow.AccountRepository().GetByIDForUpdate(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock account %d: %w", accountID, err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	before := account.Balance
	var after decimal.Decimal
	if kind.IsCredit() {
		after = before.Add(amount)
	} else {
		if !account.CanAfford(amount) {
			return nil, ErrInsufficientFunds
		}
		after = before.Sub(amount)
	}

	// Lifetime totals only move on wagering activity
	wageredDelta := decimal.Zero
	wonDelta := decimal.Zero
	switch kind {
	case models.EntryKindBet:
		wageredDelta = amount
	case models.EntryKindWin:
		wonDelta = amount
	}

	if err := uow.AccountRepository().ApplyBalance(ctx, accountID, after, wageredDelta, wonDelta); err != nil {
		return nil, fmt.Errorf("failed to apply balance for account %d: %w", accountID, err)
	}

	entry := &models.LedgerEntry{
		AccountID:     accountID,
		Kind:          kind,
		Amount:        amount,
		BalanceBefore: before,
		BalanceAfter:  after,
		Description:   description,
	}
	if err := uow.LedgerRepository().Record(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record ledger entry: %w", err)
	}

	// Emit balance change event (will be flushed after transaction commits)
	uow.EventBus().Publish(events.BalanceChangeEvent{
		AccountID:    accountID,
		EntryKind:    kind,
		OldBalance:   before,
		NewBalance:   after,
		ChangeAmount: amount,
	})

	return entry, nil
}
