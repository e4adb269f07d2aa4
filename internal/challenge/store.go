package challenge

import (
	"context"
	"log"
	"math/rand"
)

// Cache persists the full 100-entry day set for a user key. GetChallenge
// returns (nil, nil) when no set exists for the key.
type Cache interface {
	GetChallenge(ctx context.Context, userKey string) ([]ChallengeDay, error)
	SetChallenge(ctx context.Context, userKey string, days []ChallengeDay) error
}

// Catalog fetches candidate exercises for a muscle group from the external
// exercise database. It may be slow, fail, or return nothing.
type Catalog interface {
	FetchCandidates(ctx context.Context, muscleGroup string) ([]Exercise, error)
}

// Store owns the canonical 100-day set for each user key: creation, lookup,
// persistence, and lazy exercise assignment.
type Store struct {
	cache   Cache
	catalog Catalog
}

func NewStore(cache Cache, catalog Catalog) *Store {
	return &Store{cache: cache, catalog: catalog}
}

// Create generates a fresh challenge for the key: 100 incomplete days, each
// with an independently random muscle group, persisted before returning.
func (s *Store) Create(ctx context.Context, userKey string) ([]ChallengeDay, error) {
	days := make([]ChallengeDay, TotalDays)
	for i := range days {
		days[i] = ChallengeDay{
			Day:         i + 1,
			MuscleGroup: MuscleGroups[rand.Intn(len(MuscleGroups))],
		}
	}
	if err := s.cache.SetChallenge(ctx, userKey, days); err != nil {
		return nil, err
	}
	return days, nil
}

// Load returns the persisted day set for the key, or nil when none exists.
// A set that fails validation is treated as absent so the caller recreates it.
func (s *Store) Load(ctx context.Context, userKey string) ([]ChallengeDay, error) {
	days, err := s.cache.GetChallenge(ctx, userKey)
	if err != nil {
		return nil, err
	}
	if days == nil {
		return nil, nil
	}
	if err := ValidateDays(days); err != nil {
		log.Printf("ChallengeStore: discarding cached challenge for %s: %v", userKey, err)
		return nil, nil
	}
	return days, nil
}

// LoadOrCreate loads the challenge for the key, creating it on first engage.
func (s *Store) LoadOrCreate(ctx context.Context, userKey string) ([]ChallengeDay, error) {
	days, err := s.Load(ctx, userKey)
	if err != nil {
		return nil, err
	}
	if days != nil {
		return days, nil
	}
	return s.Create(ctx, userKey)
}

// Save persists the full day set, overwriting prior state. Called after every
// mutation so a restart never loses progress.
func (s *Store) Save(ctx context.Context, userKey string, days []ChallengeDay) error {
	return s.cache.SetChallenge(ctx, userKey, days)
}

// ResolveExercise returns the assigned exercise for a day, fetching and
// pinning one on first visit. Once assigned it is never re-rolled. A failed
// or empty catalog fetch leaves the day untouched and returns a
// *CatalogFetchError so the caller can retry later.
func (s *Store) ResolveExercise(ctx context.Context, userKey string, day int, days []ChallengeDay) (*Exercise, error) {
	entry := &days[day-1]
	if entry.Exercise != nil && entry.Exercise.Name != "" {
		return entry.Exercise, nil
	}

	candidates, err := s.catalog.FetchCandidates(ctx, entry.MuscleGroup)
	if err != nil {
		return nil, &CatalogFetchError{MuscleGroup: entry.MuscleGroup, Err: err}
	}
	if len(candidates) == 0 {
		return nil, &CatalogFetchError{MuscleGroup: entry.MuscleGroup}
	}

	picked := candidates[rand.Intn(len(candidates))]
	entry.Exercise = &picked
	if err := s.Save(ctx, userKey, days); err != nil {
		// Keep the in-memory assignment; the next save will carry it.
		log.Printf("ChallengeStore: failed to persist exercise for %s day %d: %v", userKey, day, err)
	}
	return entry.Exercise, nil
}
