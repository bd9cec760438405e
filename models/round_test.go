package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestColorForDigit(t *testing.T) {
	expected := map[int]OutcomeColor{
		0: ColorViolet,
		1: ColorGreen,
		2: ColorRed,
		3: ColorGreen,
		4: ColorRed,
		5: ColorViolet,
		6: ColorRed,
		7: ColorGreen,
		8: ColorRed,
		9: ColorGreen,
	}
	for digit, color := range expected {
		assert.Equal(t, color, ColorForDigit(digit), "digit %d", digit)
	}
}

func TestSizeForDigit(t *testing.T) {
	for digit := 0; digit <= 4; digit++ {
		assert.Equal(t, SizeSmall, SizeForDigit(digit), "digit %d", digit)
	}
	for digit := 5; digit <= 9; digit++ {
		assert.Equal(t, SizeBig, SizeForDigit(digit), "digit %d", digit)
	}
}

func TestOutcomeMappingIsTotal(t *testing.T) {
	// Every digit lands in exactly one color and one size class
	colorCounts := map[OutcomeColor]int{}
	sizeCounts := map[OutcomeSize]int{}
	for digit := 0; digit <= 9; digit++ {
		colorCounts[ColorForDigit(digit)]++
		sizeCounts[SizeForDigit(digit)]++
	}
	assert.Equal(t, 4, colorCounts[ColorRed])
	assert.Equal(t, 4, colorCounts[ColorGreen])
	assert.Equal(t, 2, colorCounts[ColorViolet])
	assert.Equal(t, 5, sizeCounts[SizeBig])
	assert.Equal(t, 5, sizeCounts[SizeSmall])
}

func TestRound_AcceptsWagersAt(t *testing.T) {
	start := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	round := &Round{
		State:     RoundStateActive,
		StartTime: start,
		EndTime:   start.Add(60 * time.Second),
	}
	lockWindow := 10 * time.Second

	assert.True(t, round.AcceptsWagersAt(start, lockWindow))
	assert.True(t, round.AcceptsWagersAt(start.Add(49*time.Second), lockWindow))
	// The lock boundary itself is closed
	assert.False(t, round.AcceptsWagersAt(start.Add(50*time.Second), lockWindow))
	assert.False(t, round.AcceptsWagersAt(start.Add(55*time.Second), lockWindow))
	assert.False(t, round.AcceptsWagersAt(start.Add(2*time.Minute), lockWindow))

	round.State = RoundStateLocked
	assert.False(t, round.AcceptsWagersAt(start, lockWindow))

	round.State = RoundStateCompleted
	assert.False(t, round.AcceptsWagersAt(start, lockWindow))
}

func TestRound_IsSettled(t *testing.T) {
	round := &Round{State: RoundStateLocked}
	assert.False(t, round.IsSettled())

	digit := 5
	round.State = RoundStateCompleted
	round.OutcomeDigit = &digit
	assert.True(t, round.IsSettled())
}
