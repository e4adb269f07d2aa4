package challenge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComposeDayShareMessage(t *testing.T) {
	msg := ComposeDayShareMessage(12, "chest", "Cable Crossover", 450)
	assert.Equal(t, "Day 12/100 of my 100-day challenge done! 💪 Crushed Cable Crossover in 7m 30s. #LinkFit100", msg)

	// Deterministic given the same inputs.
	assert.Equal(t, msg, ComposeDayShareMessage(12, "chest", "Cable Crossover", 450))
}

func TestComposeBadgeShareMessage(t *testing.T) {
	msg := ComposeBadgeShareMessage("Quick Start", 10)
	assert.Contains(t, msg, `"Quick Start"`)
	assert.Contains(t, msg, "10 days")
}

func TestComposeChallengeCompleteMessage(t *testing.T) {
	msg := ComposeChallengeCompleteMessage(3900)
	assert.Contains(t, msg, "100 days")
	assert.Contains(t, msg, "1h 05m")
}

func TestEmojiForMuscleGroup(t *testing.T) {
	for _, group := range MuscleGroups {
		assert.NotEmpty(t, EmojiForMuscleGroup(group))
	}
	assert.Equal(t, "💪", EmojiForMuscleGroup("unknown"))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "42s", FormatDuration(42))
	assert.Equal(t, "7m 30s", FormatDuration(450))
	assert.Equal(t, "1m 00s", FormatDuration(60))
	assert.Equal(t, "1h 05m", FormatDuration(3900))
	assert.Equal(t, "0s", FormatDuration(-3))
}
