package challenge

import (
	"fmt"
)

// TotalDays is the fixed length of the 100-day challenge.
const TotalDays = 100

// GuestUserKey is the fallback challenge key for unauthenticated sessions.
// Every guest session shares it; that is a documented limitation, not a bug.
const GuestUserKey = "guest"

// MuscleGroups is the fixed set of body-region tags a day can be assigned.
var MuscleGroups = []string{
	"back",
	"cardio",
	"chest",
	"lower arms",
	"lower legs",
	"neck",
	"shoulders",
	"upper arms",
	"upper legs",
	"waist",
}

// Exercise is the assigned workout for a single challenge day. It is fetched
// lazily from the exercise catalog on first visit and cached on the day entry.
type Exercise struct {
	Name         string `json:"name"`
	Equipment    string `json:"equipment"`
	GifURL       string `json:"gif_url"`
	Instructions string `json:"instructions,omitempty"`
}

// ChallengeDay is one of the 100 ordered entries of a user's challenge.
type ChallengeDay struct {
	Day              int       `json:"day"`
	MuscleGroup      string    `json:"muscle_group"`
	Exercise         *Exercise `json:"exercise,omitempty"`
	Completed        bool      `json:"completed"`
	CompletedDate    string    `json:"completed_date,omitempty"`
	TimeSpentSeconds int       `json:"time_spent_seconds,omitempty"`
}

// DayStatus is the progression state of a single day.
type DayStatus string

const (
	StatusLocked    DayStatus = "locked"
	StatusActive    DayStatus = "active"
	StatusCompleted DayStatus = "completed"
)

// State is the derived progression summary for a challenge.
type State struct {
	CompletedCount int `json:"completed_count"`
	ActiveDay      int `json:"active_day"`
}

// ComputeActiveDay returns the lowest-numbered incomplete day, pinned at 100
// once every day is completed.
func ComputeActiveDay(days []ChallengeDay) int {
	for _, d := range days {
		if !d.Completed {
			return d.Day
		}
	}
	return TotalDays
}

// CountCompleted returns the number of completed days.
func CountCompleted(days []ChallengeDay) int {
	count := 0
	for _, d := range days {
		if d.Completed {
			count++
		}
	}
	return count
}

// StateOf derives the progression summary from a day set.
func StateOf(days []ChallengeDay) State {
	return State{
		CompletedCount: CountCompleted(days),
		ActiveDay:      ComputeActiveDay(days),
	}
}

// StatusOf classifies a day relative to the current active day.
func StatusOf(days []ChallengeDay, day int) DayStatus {
	entry := days[day-1]
	if entry.Completed {
		return StatusCompleted
	}
	if day == ComputeActiveDay(days) {
		return StatusActive
	}
	return StatusLocked
}

var muscleGroupSet = func() map[string]bool {
	set := make(map[string]bool, len(MuscleGroups))
	for _, g := range MuscleGroups {
		set[g] = true
	}
	return set
}()

// ValidateDays checks a cached day set for structural damage: wrong length,
// non-contiguous day numbers, unknown muscle groups, or completion fields set
// on incomplete days. A non-nil result is always a *CorruptStateError.
func ValidateDays(days []ChallengeDay) error {
	if len(days) != TotalDays {
		return &CorruptStateError{Reason: fmt.Sprintf("expected %d days, found %d", TotalDays, len(days))}
	}
	for i, d := range days {
		if d.Day != i+1 {
			return &CorruptStateError{Reason: fmt.Sprintf("day %d found at position %d", d.Day, i+1)}
		}
		if !muscleGroupSet[d.MuscleGroup] {
			return &CorruptStateError{Reason: fmt.Sprintf("day %d has unknown muscle group %q", d.Day, d.MuscleGroup)}
		}
		if !d.Completed && (d.CompletedDate != "" || d.TimeSpentSeconds != 0) {
			return &CorruptStateError{Reason: fmt.Sprintf("day %d is incomplete but carries completion data", d.Day)}
		}
	}
	return nil
}
