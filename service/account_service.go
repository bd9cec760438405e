package service

import (
	"context"
	"fmt"

	"wingo/events"
	"wingo/models"

	"github.com/shopspring/decimal"
)

type accountService struct {
	uowFactory     UnitOfWorkFactory
	initialBalance decimal.Decimal
}

// NewAccountService creates a new account service
func NewAccountService(uowFactory UnitOfWorkFactory, initialBalance decimal.Decimal) AccountService {
	return &accountService{
		uowFactory:     uowFactory,
		initialBalance: initialBalance,
	}
}

func (s *accountService) GetOrCreateAccount(ctx context.Context, accountID int64) (*models.Account, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	account, err := uow.AccountRepository().GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account != nil {
		return account, nil
	}

	account, err = uow.AccountRepository().Create(ctx, accountID)
	if err != nil {
		if isUniqueViolation(err) {
			// Lost a creation race; the account exists now
			uow.Rollback()
			return s.GetAccount(ctx, accountID)
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	if s.initialBalance.IsPositive() {
		entry, err := Credit(ctx, uow, accountID, models.EntryKindDeposit, s.initialBalance, "initial balance")
		if err != nil {
			return nil, fmt.Errorf("failed to seed initial balance: %w", err)
		}
		account.Balance = entry.BalanceAfter
	}

	uow.EventBus().Publish(events.AccountCreatedEvent{
		AccountID:      accountID,
		InitialBalance: account.Balance,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return account, nil
}

func (s *accountService) GetAccount(ctx context.Context, accountID int64) (*models.Account, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	return account, nil
}

func (s *accountService) Deposit(ctx context.Context, accountID int64, amount decimal.Decimal, description string) (*models.Account, error) {
	return s.applyEntry(ctx, accountID, models.EntryKindDeposit, amount, description)
}

func (s *accountService) Withdraw(ctx context.Context, accountID int64, amount decimal.Decimal, description string) (*models.Account, error) {
	return s.applyEntry(ctx, accountID, models.EntryKindWithdrawal, amount, description)
}

func (s *accountService) applyEntry(ctx context.Context, accountID int64, kind models.EntryKind, amount decimal.Decimal, description string) (*models.Account, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	var entry *models.LedgerEntry
	var err error
	if kind.IsCredit() {
		entry, err = Credit(ctx, uow, accountID, kind, amount, description)
	} else {
		entry, err = Debit(ctx, uow, accountID, kind, amount, description)
	}
	if err != nil {
		return nil, err
	}

	account, err := uow.AccountRepository().GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload account: %w", err)
	}
	account.Balance = entry.BalanceAfter

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return account, nil
}

func (s *accountService) ListLedgerEntries(ctx context.Context, accountID int64, kind *models.EntryKind, limit, offset int) ([]*models.LedgerEntry, error) {
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

	account, err := uow.AccountRepository().GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	entries, err := uow.LedgerRepository().ListByAccount(ctx, accountID, kind, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}

	return entries, nil
}
