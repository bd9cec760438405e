package service

import (
	"context"
	"time"

	"wingo/events"
	"wingo/models"

	"github.com/shopspring/decimal"
)

// AccountRepository defines the interface for account data access
type AccountRepository interface {
	// GetByID retrieves an account by its ID
	GetByID(ctx context.Context, id int64) (*models.Account, error)

	// GetByIDForUpdate retrieves an account and locks its row for the
	// duration of the transaction
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Account, error)

	// Create creates a new account with a zero balance
	Create(ctx context.Context, id int64) (*models.Account, error)

	// ApplyBalance writes a new balance and adds the given deltas to the
	// lifetime totals
	ApplyBalance(ctx context.Context, id int64, newBalance, wageredDelta, wonDelta decimal.Decimal) error
}

// LedgerRepository defines the interface for ledger entry tracking
type LedgerRepository interface {
	// Record creates a new ledger entry
	Record(ctx context.Context, entry *models.LedgerEntry) error

	// ListByAccount returns ledger entries for an account, newest first.
	// A nil kind returns entries of every kind.
	ListByAccount(ctx context.Context, accountID int64, kind *models.EntryKind, limit, offset int) ([]*models.LedgerEntry, error)
}

// RoundRepository defines the interface for round data access
type RoundRepository interface {
	// Create inserts a new round
	Create(ctx context.Context, round *models.Round) error

	// GetByID retrieves a round by its ID
	GetByID(ctx context.Context, id int64) (*models.Round, error)

	// GetByIssueNumber retrieves a round by its issue number
	GetByIssueNumber(ctx context.Context, issueNumber string) (*models.Round, error)

	// GetCurrent returns the round that is active or locked, if any
	GetCurrent(ctx context.Context) (*models.Round, error)

	// TransitionState moves a round from one state to another.
	// Returns false when the round was not in the expected state.
	TransitionState(ctx context.Context, id int64, from, to models.RoundState) (bool, error)

	// CompleteWithOutcome moves a locked round to completed and records
	// the outcome in the same statement. Returns false when the round
	// was not locked, which means another settlement already won.
	CompleteWithOutcome(ctx context.Context, id int64, digit int, color models.OutcomeColor, size models.OutcomeSize) (bool, error)

	// ListRecentCompleted returns the most recently completed rounds
	ListRecentCompleted(ctx context.Context, limit int) ([]*models.Round, error)

	// CountByIssuePrefix returns how many rounds share an issue number prefix
	CountByIssuePrefix(ctx context.Context, prefix string) (int, error)
}

// WagerRepository defines the interface for wager data access
type WagerRepository interface {
	// Create inserts a new wager
	Create(ctx context.Context, wager *models.Wager) error

	// GetByID retrieves a wager by its ID
	GetByID(ctx context.Context, id int64) (*models.Wager, error)

	// Exists checks whether the account already holds an identical
	// wager on the round
	Exists(ctx context.Context, accountID, roundID int64, kind models.WagerKind, value string) (bool, error)

	// ListByRound returns all wagers on a round
	ListByRound(ctx context.Context, roundID int64) ([]*models.Wager, error)

	// ListByAccount returns an account's wagers, newest first.
	// A zero roundID returns wagers across all rounds.
	ListByAccount(ctx context.Context, accountID, roundID int64, limit, offset int) ([]*models.Wager, error)

	// Resolve marks a wager won or lost
	Resolve(ctx context.Context, id int64, resolution models.WagerResolution, resolvedAt time.Time) error
}

// AccountService defines the interface for account operations
type AccountService interface {
	// GetOrCreateAccount retrieves an existing account or creates a new
	// one seeded with the initial balance
	GetOrCreateAccount(ctx context.Context, accountID int64) (*models.Account, error)

	// GetAccount retrieves an account without creating it
	GetAccount(ctx context.Context, accountID int64) (*models.Account, error)

	// Deposit credits the account and records a deposit ledger entry
	Deposit(ctx context.Context, accountID int64, amount decimal.Decimal, description string) (*models.Account, error)

	// Withdraw debits the account and records a withdrawal ledger entry
	Withdraw(ctx context.Context, accountID int64, amount decimal.Decimal, description string) (*models.Account, error)

	// ListLedgerEntries returns the account's ledger entries, newest first
	ListLedgerEntries(ctx context.Context, accountID int64, kind *models.EntryKind, limit, offset int) ([]*models.LedgerEntry, error)
}

// RoundService defines the interface for round lifecycle operations
type RoundService interface {
	// GetCurrentRound returns the round currently accepting or holding
	// wagers, advancing expired rounds and creating a fresh one as needed
	GetCurrentRound(ctx context.Context) (*models.Round, error)

	// GetRoundByIssueNumber retrieves a round by its issue number
	GetRoundByIssueNumber(ctx context.Context, issueNumber string) (*models.Round, error)

	// GetRecentRounds returns the most recently completed rounds
	GetRecentRounds(ctx context.Context, limit int) ([]*models.Round, error)
}

// WagerService defines the interface for wager operations
type WagerService interface {
	// PlaceWager stakes an amount on the round named by issueNumber,
	// which must still be the current open round. The debit and the
	// wager record commit atomically.
	PlaceWager(ctx context.Context, accountID int64, kind models.WagerKind, value string, amount decimal.Decimal, issueNumber string) (*models.WagerReceipt, error)

	// ListWagers returns an account's wagers, newest first
	ListWagers(ctx context.Context, accountID, roundID int64, limit, offset int) ([]*models.Wager, error)
}

// SettlementService defines the interface for round settlement
type SettlementService interface {
	// Settle draws an outcome for a locked round, resolves every wager,
	// and credits the winners. Safe to call concurrently; only one
	// caller completes the round.
	Settle(ctx context.Context, roundID int64) error
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	AccountRepository() AccountRepository
	LedgerRepository() LedgerRepository
	RoundRepository() RoundRepository
	WagerRepository() WagerRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork instance
	Create() UnitOfWork
}
