package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// Clock provides the current time. Services take a Clock so tests can
// pin the round schedule.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall-clock implementation of Clock
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// OutcomeSource draws winning digits for settlement
type OutcomeSource interface {
	// Draw returns a digit in [0, 9]
	Draw() (int, error)
}

// CryptoOutcomeSource draws digits from the operating system's
// cryptographic randomness
type CryptoOutcomeSource struct{}

var ten = big.NewInt(10)

func (CryptoOutcomeSource) Draw() (int, error) {
	n, err := rand.Int(rand.Reader, ten)
	if err != nil {
		return 0, fmt.Errorf("failed to draw winning digit: %w", err)
	}
	return int(n.Int64()), nil
}
