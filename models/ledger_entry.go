package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryKind represents the type of balance change
type EntryKind string

const (
	EntryKindDeposit    EntryKind = "deposit"
	EntryKindWithdrawal EntryKind = "withdrawal"
	EntryKindBet        EntryKind = "bet"
	EntryKindWin        EntryKind = "win"
	EntryKindBonus      EntryKind = "bonus"
)

// IsCredit reports whether the entry kind increases the balance
func (k EntryKind) IsCredit() bool {
	switch k {
	case EntryKindDeposit, EntryKindWin, EntryKindBonus:
		return true
	default:
		return false
	}
}

// LedgerEntry represents a single balance change on an account.
// Amount is always positive; the kind determines direction, and
// BalanceBefore/BalanceAfter capture the balance on either side
// of the change so the full history chains together.
type LedgerEntry struct {
	ID            int64           `db:"id"`
	AccountID     int64           `db:"account_id"`
	Kind          EntryKind       `db:"kind"`
	Amount        decimal.Decimal `db:"amount"`
	BalanceBefore decimal.Decimal `db:"balance_before"`
	BalanceAfter  decimal.Decimal `db:"balance_after"`
	Description   string          `db:"description"`
	CreatedAt     time.Time       `db:"created_at"`
}
