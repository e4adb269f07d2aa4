package challenge

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Engine enforces the day-progression state machine for one user's challenge.
// Each day is Locked, Active, or Completed; only the active day is eligible
// for first-time completion. The active-day pointer is always derived by
// re-scanning for the lowest incomplete day, which keeps the invariant intact
// across resets without a stored pointer that can drift.
type Engine struct {
	store   *Store
	userKey string
	days    []ChallengeDay
}

func NewEngine(store *Store, userKey string, days []ChallengeDay) *Engine {
	return &Engine{store: store, userKey: userKey, days: days}
}

func (e *Engine) Days() []ChallengeDay { return e.days }

func (e *Engine) State() State { return StateOf(e.days) }

// SelectDecision is the outcome of the propose step of a day selection.
// When NeedsConfirmation is set the caller must get user confirmation and
// call ConfirmSelect; the engine itself never blocks waiting for it.
type SelectDecision struct {
	Day               int  `json:"day"`
	NeedsConfirmation bool `json:"needs_confirmation"`
}

// ProposeSelect checks whether a day may be opened. Completed and active days
// are selectable; locked days fail with *OutOfOrderError. A timer running for
// a different day demands confirmation before the switch.
func (e *Engine) ProposeSelect(day int, timerRunning bool, timerDay int) (SelectDecision, error) {
	if err := e.checkRange(day); err != nil {
		return SelectDecision{}, err
	}
	if StatusOf(e.days, day) == StatusLocked {
		return SelectDecision{}, &OutOfOrderError{Day: day, ActiveDay: ComputeActiveDay(e.days)}
	}
	return SelectDecision{
		Day:               day,
		NeedsConfirmation: timerRunning && timerDay != day,
	}, nil
}

// ConfirmSelect finalizes a selection after the caller obtained confirmation.
// The lock check is repeated because state may have moved in between.
func (e *Engine) ConfirmSelect(day int) error {
	if err := e.checkRange(day); err != nil {
		return err
	}
	if StatusOf(e.days, day) == StatusLocked {
		return &OutOfOrderError{Day: day, ActiveDay: ComputeActiveDay(e.days)}
	}
	return nil
}

// CompleteResult reports a successful completion.
type CompleteResult struct {
	Day            int  `json:"day"`
	CompletedCount int  `json:"completed_count"`
	ActiveDay      int  `json:"active_day"`
	NewCompletion  bool `json:"new_completion"`
	AllCompleted   bool `json:"all_completed"`

	// Before is the completed count prior to this call, for badge detection.
	Before int `json:"-"`
}

// Complete marks a day as done with the elapsed timer value. The active day
// and any already-completed day are accepted; a locked day fails with
// *OutOfOrderError and no state change. Re-completing an already-completed
// day only refreshes its date and time spent.
func (e *Engine) Complete(ctx context.Context, day, elapsedSeconds int) (CompleteResult, error) {
	if err := e.checkRange(day); err != nil {
		return CompleteResult{}, err
	}

	before := CountCompleted(e.days)
	entry := &e.days[day-1]

	switch StatusOf(e.days, day) {
	case StatusLocked:
		return CompleteResult{}, &OutOfOrderError{Day: day, ActiveDay: ComputeActiveDay(e.days)}
	case StatusCompleted:
		entry.CompletedDate = todayDate()
		entry.TimeSpentSeconds = elapsedSeconds
	default:
		entry.Completed = true
		entry.CompletedDate = todayDate()
		entry.TimeSpentSeconds = elapsedSeconds
	}

	if err := e.store.Save(ctx, e.userKey, e.days); err != nil {
		return CompleteResult{}, err
	}

	after := CountCompleted(e.days)
	return CompleteResult{
		Day:            day,
		CompletedCount: after,
		ActiveDay:      ComputeActiveDay(e.days),
		NewCompletion:  after > before,
		AllCompleted:   after == TotalDays,
		Before:         before,
	}, nil
}

// ResetDay clears a completed day so it can be done again. Resetting an
// earlier day moves the active pointer backward via the usual re-scan.
// Resetting an already-incomplete day is a logged no-op.
func (e *Engine) ResetDay(ctx context.Context, day int) error {
	if err := e.checkRange(day); err != nil {
		return err
	}
	entry := &e.days[day-1]
	if !entry.Completed {
		log.Printf("ChallengeEngine: reset of day %d for %s ignored, day is not completed", day, e.userKey)
		return nil
	}
	entry.Completed = false
	entry.CompletedDate = ""
	entry.TimeSpentSeconds = 0
	return e.store.Save(ctx, e.userKey, e.days)
}

// ResetChallenge discards all 100 entries and recreates the challenge from
// scratch with re-randomized muscle groups.
func (e *Engine) ResetChallenge(ctx context.Context) error {
	days, err := e.store.Create(ctx, e.userKey)
	if err != nil {
		return err
	}
	e.days = days
	return nil
}

func (e *Engine) checkRange(day int) error {
	if day < 1 || day > TotalDays {
		return fmt.Errorf("day %d out of range 1..%d", day, TotalDays)
	}
	return nil
}

func todayDate() string {
	return time.Now().UTC().Format("2006-01-02")
}
