package repository

import (
	"context"
	"fmt"

	"wingo/database"
	"wingo/models"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AccountRepository implements the AccountRepository interface
type AccountRepository struct {
	q queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

// newAccountRepositoryWithTx creates a new account repository with a transaction
func newAccountRepositoryWithTx(tx queryable) *AccountRepository {
	return &AccountRepository{q: tx}
}

// GetByID retrieves an account by its ID
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	return r.get(ctx, id, false)
}

// GetByIDForUpdate retrieves an account and locks its row for the
// duration of the transaction
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Account, error) {
	return r.get(ctx, id, true)
}

func (r *AccountRepository) get(ctx context.Context, id int64, forUpdate bool) (*models.Account, error) {
	query := `
		SELECT id, balance, total_wagered, total_won, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`
	if forUpdate {
		query += " FOR UPDATE"
	}

	var account models.Account
	err := r.q.QueryRow(ctx, query, id).Scan(
		&account.ID,
		&account.Balance,
		&account.TotalWagered,
		&account.TotalWon,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %d: %w", id, err)
	}

	return &account, nil
}

// Create creates a new account with a zero balance
func (r *AccountRepository) Create(ctx context.Context, id int64) (*models.Account, error) {
	query := `
		INSERT INTO accounts (id)
		VALUES ($1)
		RETURNING id, balance, total_wagered, total_won, created_at, updated_at
	`

	var account models.Account
	err := r.q.QueryRow(ctx, query, id).Scan(
		&account.ID,
		&account.Balance,
		&account.TotalWagered,
		&account.TotalWon,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create account %d: %w", id, err)
	}

	return &account, nil
}

// ApplyBalance writes a new balance and adds the given deltas to the
// lifetime totals
func (r *AccountRepository) ApplyBalance(ctx context.Context, id int64, newBalance, wageredDelta, wonDelta decimal.Decimal) error {
	query := `
		UPDATE accounts
		SET balance = $1,
		    total_wagered = total_wagered + $2,
		    total_won = total_won + $3,
		    updated_at = NOW()
		WHERE id = $4
	`

	result, err := r.q.Exec(ctx, query, newBalance, wageredDelta, wonDelta, id)
	if err != nil {
		return fmt.Errorf("failed to apply balance for account %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("account %d not found", id)
	}

	return nil
}
