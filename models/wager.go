package models

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// WagerKind represents what aspect of the outcome a wager predicts
type WagerKind string

const (
	WagerKindNumber WagerKind = "number"
	WagerKindColor  WagerKind = "color"
	WagerKindSize   WagerKind = "size"
)

// WagerResolution represents the settlement result of a wager
type WagerResolution string

const (
	WagerResolutionPending WagerResolution = "pending"
	WagerResolutionWon     WagerResolution = "won"
	WagerResolutionLost    WagerResolution = "lost"
)

// Wager represents a single stake placed by an account on a round
type Wager struct {
	ID              int64           `db:"id"`
	AccountID       int64           `db:"account_id"`
	RoundID         int64           `db:"round_id"`
	Kind            WagerKind       `db:"kind"`
	Value           string          `db:"value"`
	Amount          decimal.Decimal `db:"amount"`
	Multiplier      decimal.Decimal `db:"multiplier"`
	PotentialPayout decimal.Decimal `db:"potential_payout"`
	Resolution      WagerResolution `db:"resolution"`
	CreatedAt       time.Time       `db:"created_at"`
	ResolvedAt      *time.Time      `db:"resolved_at"`
}

// WagerReceipt is returned when a wager is accepted
type WagerReceipt struct {
	Wager      *Wager
	NewBalance decimal.Decimal
}

// ValidValue checks whether the value string is legal for the wager kind
func ValidValue(kind WagerKind, value string) bool {
	switch kind {
	case WagerKindNumber:
		n, err := strconv.Atoi(value)
		return err == nil && n >= 0 && n <= 9 && value == strconv.Itoa(n)
	case WagerKindColor:
		return value == string(ColorRed) || value == string(ColorGreen) || value == string(ColorViolet)
	case WagerKindSize:
		return value == string(SizeBig) || value == string(SizeSmall)
	default:
		return false
	}
}

// Wins checks whether the wager's prediction matches the winning digit
func (w *Wager) Wins(digit int) bool {
	switch w.Kind {
	case WagerKindNumber:
		return w.Value == strconv.Itoa(digit)
	case WagerKindColor:
		return w.Value == string(ColorForDigit(digit))
	case WagerKindSize:
		return w.Value == string(SizeForDigit(digit))
	default:
		return false
	}
}

// IsResolved checks whether the wager has been settled
func (w *Wager) IsResolved() bool {
	return w.Resolution != WagerResolutionPending
}
