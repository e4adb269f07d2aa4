package challenge

import "fmt"

// muscleGroupEmoji maps each body-region tag to the emoji used in share
// messages. Static lookup, not randomness.
var muscleGroupEmoji = map[string]string{
	"back":       "🏋️",
	"cardio":     "🏃",
	"chest":      "💪",
	"lower arms": "✊",
	"lower legs": "🦵",
	"neck":       "🧘",
	"shoulders":  "🤸",
	"upper arms": "💪",
	"upper legs": "🦵",
	"waist":      "🔥",
}

// EmojiForMuscleGroup returns the share emoji for a muscle group, with a
// generic fallback for unknown tags.
func EmojiForMuscleGroup(muscleGroup string) string {
	if emoji, ok := muscleGroupEmoji[muscleGroup]; ok {
		return emoji
	}
	return "💪"
}

// ComposeDayShareMessage formats the achievement message for a completed day.
// Pure and deterministic given its inputs.
func ComposeDayShareMessage(day int, muscleGroup, exerciseName string, elapsedSeconds int) string {
	return fmt.Sprintf("Day %d/%d of my 100-day challenge done! %s Crushed %s in %s. #LinkFit100",
		day, TotalDays, EmojiForMuscleGroup(muscleGroup), exerciseName, FormatDuration(elapsedSeconds))
}

// ComposeBadgeShareMessage formats the achievement message for an earned badge.
func ComposeBadgeShareMessage(badgeName string, requiredDays int) string {
	return fmt.Sprintf("I just earned the %q badge for completing %d days of the 100-day challenge! 🏅 #LinkFit100",
		badgeName, requiredDays)
}

// ComposeChallengeCompleteMessage formats the message for finishing all 100 days.
func ComposeChallengeCompleteMessage(totalElapsedSeconds int) string {
	return fmt.Sprintf("100 days. Every single one. I finished the LinkFit challenge in %s of total workout time! 🏆 #LinkFit100",
		FormatDuration(totalElapsedSeconds))
}

// FormatDuration renders elapsed seconds as a compact human string,
// e.g. "42s", "7m 30s", "1h 05m".
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	if seconds < 3600 {
		return fmt.Sprintf("%dm %02ds", seconds/60, seconds%60)
	}
	return fmt.Sprintf("%dh %02dm", seconds/3600, (seconds%3600)/60)
}
