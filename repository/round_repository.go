package repository

import (
	"context"
	"fmt"

	"wingo/database"
	"wingo/models"

	"github.com/jackc/pgx/v5"
)

// RoundRepository implements the RoundRepository interface
type RoundRepository struct {
	q queryable
}

// NewRoundRepository creates a new round repository
func NewRoundRepository(db *database.DB) *RoundRepository {
	return &RoundRepository{q: db.Pool}
}

// newRoundRepositoryWithTx creates a new round repository with a transaction
func newRoundRepositoryWithTx(tx queryable) *RoundRepository {
	return &RoundRepository{q: tx}
}

const roundColumns = `id, issue_number, state, start_time, end_time, outcome_digit, outcome_color, outcome_size, created_at, updated_at`

func scanRound(row pgx.Row) (*models.Round, error) {
	var round models.Round
	err := row.Scan(
		&round.ID,
		&round.IssueNumber,
		&round.State,
		&round.StartTime,
		&round.EndTime,
		&round.OutcomeDigit,
		&round.OutcomeColor,
		&round.OutcomeSize,
		&round.CreatedAt,
		&round.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &round, nil
}

// Create inserts a new round. A unique violation surfaces unwrapped so
// callers can detect losing a creation race.
func (r *RoundRepository) Create(ctx context.Context, round *models.Round) error {
	query := `
		INSERT INTO rounds (issue_number, state, start_time, end_time)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		round.IssueNumber,
		round.State,
		round.StartTime,
		round.EndTime,
	).Scan(&round.ID, &round.CreatedAt, &round.UpdatedAt)

	if err != nil {
		if IsUniqueViolation(err) {
			return err
		}
		return fmt.Errorf("failed to create round %s: %w", round.IssueNumber, err)
	}

	return nil
}

// GetByID retrieves a round by its ID
func (r *RoundRepository) GetByID(ctx context.Context, id int64) (*models.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM rounds WHERE id = $1`

	round, err := scanRound(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get round %d: %w", id, err)
	}

	return round, nil
}

// GetByIssueNumber retrieves a round by its issue number
func (r *RoundRepository) GetByIssueNumber(ctx context.Context, issueNumber string) (*models.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM rounds WHERE issue_number = $1`

	round, err := scanRound(r.q.QueryRow(ctx, query, issueNumber))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get round %s: %w", issueNumber, err)
	}

	return round, nil
}

// GetCurrent returns the round that is active or locked, if any
func (r *RoundRepository) GetCurrent(ctx context.Context) (*models.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM rounds WHERE state IN ('active', 'locked')`

	round, err := scanRound(r.q.QueryRow(ctx, query))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get current round: %w", err)
	}

	return round, nil
}

// TransitionState moves a round from one state to another.
// Returns false when the round was not in the expected state.
func (r *RoundRepository) TransitionState(ctx context.Context, id int64, from, to models.RoundState) (bool, error) {
	query := `
		UPDATE rounds
		SET state = $1, updated_at = NOW()
		WHERE id = $2 AND state = $3
	`

	result, err := r.q.Exec(ctx, query, to, id, from)
	if err != nil {
		return false, fmt.Errorf("failed to transition round %d from %s to %s: %w", id, from, to, err)
	}

	return result.RowsAffected() == 1, nil
}

// CompleteWithOutcome moves a locked round to completed and records the
// outcome in the same statement. Returns false when the round was not
// locked, which means another settlement already won.
func (r *RoundRepository) CompleteWithOutcome(ctx context.Context, id int64, digit int, color models.OutcomeColor, size models.OutcomeSize) (bool, error) {
	query := `
		UPDATE rounds
		SET state = 'completed',
		    outcome_digit = $1,
		    outcome_color = $2,
		    outcome_size = $3,
		    updated_at = NOW()
		WHERE id = $4 AND state = 'locked'
	`

	result, err := r.q.Exec(ctx, query, digit, color, size, id)
	if err != nil {
		return false, fmt.Errorf("failed to complete round %d: %w", id, err)
	}

	return result.RowsAffected() == 1, nil
}

// ListRecentCompleted returns the most recently completed rounds
func (r *RoundRepository) ListRecentCompleted(ctx context.Context, limit int) ([]*models.Round, error) {
	query := `
		SELECT ` + roundColumns + `
		FROM rounds
		WHERE state = 'completed'
		ORDER BY end_time DESC
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent rounds: %w", err)
	}
	defer rows.Close()

	var rounds []*models.Round
	for rows.Next() {
		round, err := scanRound(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan round: %w", err)
		}
		rounds = append(rounds, round)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rounds: %w", err)
	}

	return rounds, nil
}

// CountByIssuePrefix returns how many rounds share an issue number prefix
func (r *RoundRepository) CountByIssuePrefix(ctx context.Context, prefix string) (int, error) {
	query := `SELECT COUNT(*) FROM rounds WHERE issue_number LIKE $1 || '%'`

	var count int
	if err := r.q.QueryRow(ctx, query, prefix).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rounds with prefix %s: %w", prefix, err)
	}

	return count, nil
}
