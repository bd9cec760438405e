package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrInvalidAmount indicates a stake outside the configured bounds
	// or a non-positive amount
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidWager indicates an unknown wager kind or a value that is
	// illegal for the kind
	ErrInvalidWager = errors.New("invalid wager")

	// ErrRoundClosed indicates the round is locked, completed, or inside
	// its lock window
	ErrRoundClosed = errors.New("round closed for wagering")

	// ErrDuplicateWager indicates the account already holds an identical
	// wager on the round
	ErrDuplicateWager = errors.New("duplicate wager")

	// ErrInsufficientFunds indicates the account balance does not cover
	// the requested debit
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrRoundNotFound indicates no round matches the given identifier
	ErrRoundNotFound = errors.New("round not found")

	// ErrAccountNotFound indicates no account matches the given identifier
	ErrAccountNotFound = errors.New("account not found")
)

// isUniqueViolation reports whether the error is a postgres unique
// constraint violation, which repositories surface unwrapped for
// insert races
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// PayoutFailure describes one winning wager whose credit could not be
// applied during settlement
type PayoutFailure struct {
	WagerID   int64
	AccountID int64
	Err       error
}

// SettlementPartialError reports a completed settlement in which one or
// more payout credits failed. The round is completed and every wager is
// resolved; only the listed credits need operator attention.
type SettlementPartialError struct {
	RoundID  int64
	Failures []PayoutFailure
}

func (e *SettlementPartialError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "settlement of round %d completed with %d failed payouts:", e.RoundID, len(e.Failures))
	for _, f := range e.Failures {
		fmt.Fprintf(&sb, " wager %d (account %d): %v;", f.WagerID, f.AccountID, f.Err)
	}
	return sb.String()
}
