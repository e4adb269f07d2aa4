package challenge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) (*Engine, *fakeCache) {
	t.Helper()
	cache := newFakeCache()
	store := NewStore(cache, &fakeCatalog{candidates: []Exercise{{Name: "push-up"}}})
	days, err := store.Create(context.Background(), "u")
	require.NoError(t, err)
	return NewEngine(store, "u", days), cache
}

func completeDays(t *testing.T, e *Engine, from, to int) {
	t.Helper()
	for day := from; day <= to; day++ {
		_, err := e.Complete(context.Background(), day, 10)
		require.NoError(t, err)
	}
}

func TestCompleteAdvancesActiveDay(t *testing.T) {
	e, _ := newTestEngine(t)

	res, err := e.Complete(context.Background(), 1, 42)
	require.NoError(t, err)

	assert.Equal(t, 2, res.ActiveDay)
	assert.Equal(t, 1, res.CompletedCount)
	assert.True(t, res.NewCompletion)
	assert.True(t, e.Days()[0].Completed)
	assert.Equal(t, 42, e.Days()[0].TimeSpentSeconds)
	assert.NotEmpty(t, e.Days()[0].CompletedDate)
}

func TestCompleteLockedDayFailsWithoutMutation(t *testing.T) {
	e, _ := newTestEngine(t)
	completeDays(t, e, 1, 2)

	before := StateOf(e.Days())
	_, err := e.Complete(context.Background(), 5, 30)

	var oooErr *OutOfOrderError
	require.ErrorAs(t, err, &oooErr)
	assert.Equal(t, 5, oooErr.Day)
	assert.Equal(t, 3, oooErr.ActiveDay)
	assert.Equal(t, before, StateOf(e.Days()), "failed completion must not mutate state")
	assert.False(t, e.Days()[4].Completed)
}

func TestCompletePersistsAfterEachMutation(t *testing.T) {
	e, cache := newTestEngine(t)
	completeDays(t, e, 1, 3)

	persisted, err := cache.GetChallenge(context.Background(), "u")
	require.NoError(t, err)
	assert.Equal(t, 3, CountCompleted(persisted))
}

func TestRecompleteRefreshesWithoutRecounting(t *testing.T) {
	e, _ := newTestEngine(t)
	completeDays(t, e, 1, 3)

	res, err := e.Complete(context.Background(), 2, 77)
	require.NoError(t, err)

	assert.False(t, res.NewCompletion)
	assert.Equal(t, 3, res.CompletedCount)
	assert.Equal(t, 77, e.Days()[1].TimeSpentSeconds)
}

func TestResetDayMovesActivePointerBackward(t *testing.T) {
	e, _ := newTestEngine(t)
	completeDays(t, e, 1, TotalDays)
	require.Equal(t, TotalDays, ComputeActiveDay(e.Days()))

	require.NoError(t, e.ResetDay(context.Background(), 50))

	state := e.State()
	assert.Equal(t, 50, state.ActiveDay)
	assert.Equal(t, 99, state.CompletedCount)
	for day := 51; day <= TotalDays; day++ {
		assert.True(t, e.Days()[day-1].Completed, "day %d must stay completed", day)
	}
	assert.Empty(t, e.Days()[49].CompletedDate)
	assert.Zero(t, e.Days()[49].TimeSpentSeconds)
}

func TestResetDayIsIdempotent(t *testing.T) {
	e, _ := newTestEngine(t)
	completeDays(t, e, 1, 1)

	require.NoError(t, e.ResetDay(context.Background(), 1))
	require.NoError(t, e.ResetDay(context.Background(), 1), "second reset is a no-op, not an error")
	assert.Equal(t, 1, e.State().ActiveDay)
}

func TestRecompletingResetDayCountsAgain(t *testing.T) {
	e, _ := newTestEngine(t)
	completeDays(t, e, 1, 9)
	require.NoError(t, e.ResetDay(context.Background(), 5))

	// Day 5 is the lowest incomplete day again, so it is the active day.
	res, err := e.Complete(context.Background(), 5, 20)
	require.NoError(t, err)
	assert.True(t, res.NewCompletion)
	assert.Equal(t, 9, res.CompletedCount)
	assert.Equal(t, 10, res.ActiveDay)
}

func TestActiveDayInvariantHoldsAcrossMixedSequences(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	type op struct {
		reset bool
		day   int
	}
	sequence := []op{
		{day: 1}, {day: 2}, {day: 3}, {day: 4},
		{reset: true, day: 2},
		{day: 2}, {day: 5},
		{reset: true, day: 1},
		{reset: true, day: 5},
		{day: 1},
	}
	for _, o := range sequence {
		if o.reset {
			require.NoError(t, e.ResetDay(ctx, o.day))
		} else {
			_, err := e.Complete(ctx, o.day, 5)
			require.NoError(t, err)
		}
		lowest := TotalDays
		for _, d := range e.Days() {
			if !d.Completed {
				lowest = d.Day
				break
			}
		}
		assert.Equal(t, lowest, e.State().ActiveDay)
	}
}

func TestProposeSelect(t *testing.T) {
	e, _ := newTestEngine(t)
	completeDays(t, e, 1, 2)

	// Active day, no timer: proceed directly.
	decision, err := e.ProposeSelect(3, false, 0)
	require.NoError(t, err)
	assert.False(t, decision.NeedsConfirmation)

	// Completed day while a timer runs elsewhere: needs confirmation.
	decision, err = e.ProposeSelect(1, true, 3)
	require.NoError(t, err)
	assert.True(t, decision.NeedsConfirmation)
	require.NoError(t, e.ConfirmSelect(1))

	// Timer already on the requested day: no confirmation round-trip.
	decision, err = e.ProposeSelect(3, true, 3)
	require.NoError(t, err)
	assert.False(t, decision.NeedsConfirmation)

	// Locked day always fails.
	_, err = e.ProposeSelect(10, false, 0)
	var oooErr *OutOfOrderError
	assert.ErrorAs(t, err, &oooErr)
	assert.ErrorAs(t, e.ConfirmSelect(10), &oooErr)
}

func TestCompleteFinalDayReportsFullCompletion(t *testing.T) {
	e, _ := newTestEngine(t)
	completeDays(t, e, 1, 99)

	res, err := e.Complete(context.Background(), 100, 60)
	require.NoError(t, err)
	assert.True(t, res.AllCompleted)
	assert.Equal(t, TotalDays, res.CompletedCount)
	assert.Equal(t, TotalDays, res.ActiveDay)
}

func TestResetChallengeRestoresFreshState(t *testing.T) {
	e, cache := newTestEngine(t)
	completeDays(t, e, 1, 37)

	require.NoError(t, e.ResetChallenge(context.Background()))

	state := e.State()
	assert.Equal(t, 1, state.ActiveDay)
	assert.Zero(t, state.CompletedCount)
	require.Len(t, e.Days(), TotalDays)
	assert.NoError(t, ValidateDays(e.Days()))

	persisted, err := cache.GetChallenge(context.Background(), "u")
	require.NoError(t, err)
	assert.Zero(t, CountCompleted(persisted))
}

func TestDayOutOfRangeRejected(t *testing.T) {
	e, _ := newTestEngine(t)
	_, err := e.Complete(context.Background(), 0, 1)
	assert.Error(t, err)
	_, err = e.Complete(context.Background(), 101, 1)
	assert.Error(t, err)
}
