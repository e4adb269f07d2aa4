package challenge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProducesFreshChallenge(t *testing.T) {
	cache := newFakeCache()
	store := NewStore(cache, &fakeCatalog{})

	days, err := store.Create(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, days, TotalDays)

	for i, d := range days {
		assert.Equal(t, i+1, d.Day)
		assert.False(t, d.Completed)
		assert.Nil(t, d.Exercise)
		assert.Empty(t, d.CompletedDate)
		assert.Zero(t, d.TimeSpentSeconds)
		assert.Contains(t, MuscleGroups, d.MuscleGroup)
	}

	// Create persists immediately.
	persisted, err := cache.GetChallenge(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, persisted, TotalDays)
}

func TestLoadReturnsNilWhenAbsent(t *testing.T) {
	store := NewStore(newFakeCache(), &fakeCatalog{})

	days, err := store.Load(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, days)
}

func TestLoadDiscardsCorruptState(t *testing.T) {
	ctx := context.Background()
	cache := newFakeCache()
	store := NewStore(cache, &fakeCatalog{})

	// Truncated set.
	require.NoError(t, cache.SetChallenge(ctx, "u", []ChallengeDay{{Day: 1, MuscleGroup: "back"}}))
	days, err := store.Load(ctx, "u")
	require.NoError(t, err)
	assert.Nil(t, days)

	// Completion data on an incomplete day.
	full, err := store.Create(ctx, "u2")
	require.NoError(t, err)
	full[4].TimeSpentSeconds = 99
	require.NoError(t, cache.SetChallenge(ctx, "u2", full))
	days, err = store.Load(ctx, "u2")
	require.NoError(t, err)
	assert.Nil(t, days)
}

func TestLoadOrCreateRecreatesAfterCorruption(t *testing.T) {
	ctx := context.Background()
	cache := newFakeCache()
	store := NewStore(cache, &fakeCatalog{})

	require.NoError(t, cache.SetChallenge(ctx, "u", []ChallengeDay{{Day: 7}}))

	days, err := store.LoadOrCreate(ctx, "u")
	require.NoError(t, err)
	require.Len(t, days, TotalDays)
	assert.NoError(t, ValidateDays(days))
}

func TestResolveExerciseIsIdempotent(t *testing.T) {
	ctx := context.Background()
	cache := newFakeCache()
	catalog := &fakeCatalog{candidates: []Exercise{
		{Name: "cable crossover", Equipment: "cable", GifURL: "https://cdn.example/1.gif"},
		{Name: "push-up", Equipment: "body weight", GifURL: "https://cdn.example/2.gif"},
	}}
	store := NewStore(cache, catalog)

	days, err := store.Create(ctx, "u")
	require.NoError(t, err)

	first, err := store.ResolveExercise(ctx, "u", 3, days)
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := store.ResolveExercise(ctx, "u", 3, days)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, catalog.calls, "an assigned exercise must never be re-rolled")
}

func TestResolveExercisePersistsAssignment(t *testing.T) {
	ctx := context.Background()
	cache := newFakeCache()
	catalog := &fakeCatalog{candidates: []Exercise{{Name: "squat", Equipment: "barbell"}}}
	store := NewStore(cache, catalog)

	days, err := store.Create(ctx, "u")
	require.NoError(t, err)

	_, err = store.ResolveExercise(ctx, "u", 1, days)
	require.NoError(t, err)

	reloaded, err := store.Load(ctx, "u")
	require.NoError(t, err)
	require.NotNil(t, reloaded[0].Exercise)
	assert.Equal(t, "squat", reloaded[0].Exercise.Name)
}

func TestResolveExerciseCatalogFailureLeavesDayUnset(t *testing.T) {
	ctx := context.Background()
	cache := newFakeCache()
	catalog := &fakeCatalog{err: errBoom}
	store := NewStore(cache, catalog)

	days, err := store.Create(ctx, "u")
	require.NoError(t, err)

	_, err = store.ResolveExercise(ctx, "u", 1, days)
	var fetchErr *CatalogFetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Nil(t, days[0].Exercise)

	// Empty result is the same failure class.
	catalog.err = nil
	catalog.candidates = nil
	_, err = store.ResolveExercise(ctx, "u", 1, days)
	require.ErrorAs(t, err, &fetchErr)

	// Retry succeeds once the catalog recovers.
	catalog.candidates = []Exercise{{Name: "plank"}}
	ex, err := store.ResolveExercise(ctx, "u", 1, days)
	require.NoError(t, err)
	assert.Equal(t, "plank", ex.Name)
}

func TestComputeActiveDay(t *testing.T) {
	cache := newFakeCache()
	store := NewStore(cache, &fakeCatalog{})
	days, err := store.Create(context.Background(), "u")
	require.NoError(t, err)

	assert.Equal(t, 1, ComputeActiveDay(days))

	days[0].Completed = true
	days[1].Completed = true
	assert.Equal(t, 3, ComputeActiveDay(days))

	for i := range days {
		days[i].Completed = true
	}
	assert.Equal(t, TotalDays, ComputeActiveDay(days), "active day stays pinned at 100 when all complete")
}
