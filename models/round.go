package models

import (
	"time"
)

// RoundState represents the lifecycle state of a round
type RoundState string

const (
	RoundStatePending   RoundState = "pending"
	RoundStateActive    RoundState = "active"
	RoundStateLocked    RoundState = "locked"
	RoundStateCompleted RoundState = "completed"
)

// OutcomeColor is the color derived from the winning digit
type OutcomeColor string

const (
	ColorRed    OutcomeColor = "red"
	ColorGreen  OutcomeColor = "green"
	ColorViolet OutcomeColor = "violet"
)

// OutcomeSize is the size class derived from the winning digit
type OutcomeSize string

const (
	SizeBig   OutcomeSize = "big"
	SizeSmall OutcomeSize = "small"
)

// ColorForDigit maps a winning digit to its color.
// Even digits are red, odd digits are green, except 0 and 5 which
// are violet.
func ColorForDigit(digit int) OutcomeColor {
	switch digit {
	case 0, 5:
		return ColorViolet
	case 2, 4, 6, 8:
		return ColorRed
	default:
		return ColorGreen
	}
}

// SizeForDigit maps a winning digit to its size class. Digits 5-9
// are big, 0-4 are small.
func SizeForDigit(digit int) OutcomeSize {
	if digit >= 5 {
		return SizeBig
	}
	return SizeSmall
}

// Round represents one betting round. Outcome fields are nil until
// the round completes.
type Round struct {
	ID           int64         `db:"id"`
	IssueNumber  string        `db:"issue_number"`
	State        RoundState    `db:"state"`
	StartTime    time.Time     `db:"start_time"`
	EndTime      time.Time     `db:"end_time"`
	OutcomeDigit *int          `db:"outcome_digit"`
	OutcomeColor *OutcomeColor `db:"outcome_color"`
	OutcomeSize  *OutcomeSize  `db:"outcome_size"`
	CreatedAt    time.Time     `db:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at"`
}

// LockTime returns the instant after which the round no longer
// accepts wagers
func (r *Round) LockTime(lockWindow time.Duration) time.Time {
	return r.EndTime.Add(-lockWindow)
}

// AcceptsWagersAt checks whether a wager arriving at the given
// instant may join the round
func (r *Round) AcceptsWagersAt(at time.Time, lockWindow time.Duration) bool {
	return r.State == RoundStateActive && at.Before(r.LockTime(lockWindow))
}

// IsSettled checks whether the round has a recorded outcome
func (r *Round) IsSettled() bool {
	return r.State == RoundStateCompleted && r.OutcomeDigit != nil
}
