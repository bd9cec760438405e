package testutil

import (
	"time"

	"wingo/models"

	"github.com/shopspring/decimal"
)

// NewTestAccount creates a test account with the given balance
func NewTestAccount(id int64, balance string) *models.Account {
	now := time.Now()
	return &models.Account{
		ID:           id,
		Balance:      decimal.RequireFromString(balance),
		TotalWagered: decimal.Zero,
		TotalWon:     decimal.Zero,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewTestRound creates a test round starting now with the given duration
func NewTestRound(issueNumber string, state models.RoundState, duration time.Duration) *models.Round {
	now := time.Now().UTC()
	return &models.Round{
		IssueNumber: issueNumber,
		State:       state,
		StartTime:   now,
		EndTime:     now.Add(duration),
	}
}

// NewTestWager creates a test wager with a 9x number multiplier
func NewTestWager(accountID, roundID int64, kind models.WagerKind, value, amount string) *models.Wager {
	stake := decimal.RequireFromString(amount)
	multiplier := decimal.NewFromInt(9)
	if kind != models.WagerKindNumber {
		multiplier = decimal.NewFromInt(2)
	}
	return &models.Wager{
		AccountID:       accountID,
		RoundID:         roundID,
		Kind:            kind,
		Value:           value,
		Amount:          stake,
		Multiplier:      multiplier,
		PotentialPayout: stake.Mul(multiplier),
	}
}

// NewTestLedgerEntry creates a test ledger entry chaining from the given balance
func NewTestLedgerEntry(accountID int64, kind models.EntryKind, amount, before string) *models.LedgerEntry {
	amt := decimal.RequireFromString(amount)
	bal := decimal.RequireFromString(before)
	after := bal.Sub(amt)
	if kind.IsCredit() {
		after = bal.Add(amt)
	}
	return &models.LedgerEntry{
		AccountID:     accountID,
		Kind:          kind,
		Amount:        amt,
		BalanceBefore: bal,
		BalanceAfter:  after,
		Description:   "test entry",
	}
}
