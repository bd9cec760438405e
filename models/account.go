package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a player account with a balance
type Account struct {
	ID           int64           `db:"id"`
	Balance      decimal.Decimal `db:"balance"`
	TotalWagered decimal.Decimal `db:"total_wagered"`
	TotalWon     decimal.Decimal `db:"total_won"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}

// CanAfford checks whether the account balance covers the given amount
func (a *Account) CanAfford(amount decimal.Decimal) bool {
	return a.Balance.GreaterThanOrEqual(amount)
}
