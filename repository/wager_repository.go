package repository

import (
	"context"
	"fmt"
	"time"

	"wingo/database"
	"wingo/models"

	"github.com/jackc/pgx/v5"
)

// WagerRepository implements the WagerRepository interface
type WagerRepository struct {
	q queryable
}

// NewWagerRepository creates a new wager repository
func NewWagerRepository(db *database.DB) *WagerRepository {
	return &WagerRepository{q: db.Pool}
}

// newWagerRepositoryWithTx creates a new wager repository with a transaction
func newWagerRepositoryWithTx(tx queryable) *WagerRepository {
	return &WagerRepository{q: tx}
}

const wagerColumns = `id, account_id, round_id, kind, value, amount, multiplier, potential_payout, resolution, created_at, resolved_at`

func scanWager(row pgx.Row) (*models.Wager, error) {
	var wager models.Wager
	err := row.Scan(
		&wager.ID,
		&wager.AccountID,
		&wager.RoundID,
		&wager.Kind,
		&wager.Value,
		&wager.Amount,
		&wager.Multiplier,
		&wager.PotentialPayout,
		&wager.Resolution,
		&wager.CreatedAt,
		&wager.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return &wager, nil
}

// Create inserts a new wager. A unique violation surfaces unwrapped so
// callers can map it to a duplicate wager error.
func (r *WagerRepository) Create(ctx context.Context, wager *models.Wager) error {
	query := `
		INSERT INTO wagers
		(account_id, round_id, kind, value, amount, multiplier, potential_payout)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, resolution, created_at
	`

	err := r.q.QueryRow(ctx, query,
		wager.AccountID,
		wager.RoundID,
		wager.Kind,
		wager.Value,
		wager.Amount,
		wager.Multiplier,
		wager.PotentialPayout,
	).Scan(&wager.ID, &wager.Resolution, &wager.CreatedAt)

	if err != nil {
		if IsUniqueViolation(err) {
			return err
		}
		return fmt.Errorf("failed to create wager for account %d on round %d: %w", wager.AccountID, wager.RoundID, err)
	}

	return nil
}

// GetByID retrieves a wager by its ID
func (r *WagerRepository) GetByID(ctx context.Context, id int64) (*models.Wager, error) {
	query := `SELECT ` + wagerColumns + ` FROM wagers WHERE id = $1`

	wager, err := scanWager(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wager %d: %w", id, err)
	}

	return wager, nil
}

// Exists checks whether the account already holds an identical wager on the round
func (r *WagerRepository) Exists(ctx context.Context, accountID, roundID int64, kind models.WagerKind, value string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM wagers
			WHERE account_id = $1 AND round_id = $2 AND kind = $3 AND value = $4
		)
	`

	var exists bool
	err := r.q.QueryRow(ctx, query, accountID, roundID, kind, value).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check wager existence: %w", err)
	}

	return exists, nil
}

// ListByRound returns all wagers on a round
func (r *WagerRepository) ListByRound(ctx context.Context, roundID int64) ([]*models.Wager, error) {
	query := `SELECT ` + wagerColumns + ` FROM wagers WHERE round_id = $1 ORDER BY id`

	rows, err := r.q.Query(ctx, query, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wagers for round %d: %w", roundID, err)
	}
	defer rows.Close()

	return collectWagers(rows)
}

// ListByAccount returns an account's wagers, newest first.
// A zero roundID returns wagers across all rounds.
func (r *WagerRepository) ListByAccount(ctx context.Context, accountID, roundID int64, limit, offset int) ([]*models.Wager, error) {
	query := `
		SELECT ` + wagerColumns + `
		FROM wagers
		WHERE account_id = $1 AND ($2 = 0 OR round_id = $2)
		ORDER BY id DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.q.Query(ctx, query, accountID, roundID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list wagers for account %d: %w", accountID, err)
	}
	defer rows.Close()

	return collectWagers(rows)
}

// Resolve marks a wager won or lost
func (r *WagerRepository) Resolve(ctx context.Context, id int64, resolution models.WagerResolution, resolvedAt time.Time) error {
	query := `
		UPDATE wagers
		SET resolution = $1, resolved_at = $2
		WHERE id = $3 AND resolution = 'pending'
	`

	result, err := r.q.Exec(ctx, query, resolution, resolvedAt, id)
	if err != nil {
		return fmt.Errorf("failed to resolve wager %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("wager %d not found or already resolved", id)
	}

	return nil
}

func collectWagers(rows pgx.Rows) ([]*models.Wager, error) {
	var wagers []*models.Wager
	for rows.Next() {
		wager, err := scanWager(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wager: %w", err)
		}
		wagers = append(wagers, wager)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate wagers: %w", err)
	}

	return wagers, nil
}
