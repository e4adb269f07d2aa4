package challenge

import (
	"context"
	"errors"
	"sync"
)

// fakeCache is an in-memory Cache with injectable failures.
type fakeCache struct {
	mu     sync.Mutex
	data   map[string][]ChallengeDay
	getErr error
	setErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]ChallengeDay{}}
}

func (c *fakeCache) GetChallenge(_ context.Context, userKey string) ([]ChallengeDay, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	days, ok := c.data[userKey]
	if !ok {
		return nil, nil
	}
	out := make([]ChallengeDay, len(days))
	copy(out, days)
	return out, nil
}

func (c *fakeCache) SetChallenge(_ context.Context, userKey string, days []ChallengeDay) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	stored := make([]ChallengeDay, len(days))
	copy(stored, days)
	c.data[userKey] = stored
	return nil
}

// fakeCatalog returns a fixed candidate list and counts fetches.
type fakeCatalog struct {
	mu         sync.Mutex
	candidates []Exercise
	err        error
	calls      int
}

func (c *fakeCatalog) FetchCandidates(_ context.Context, _ string) ([]Exercise, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.candidates, nil
}

// fakeProgressStore is an in-memory durable counter.
type fakeProgressStore struct {
	mu     sync.Mutex
	counts map[string]int
	getErr error
	setErr error
	writes int
}

func newFakeProgressStore() *fakeProgressStore {
	return &fakeProgressStore{counts: map[string]int{}}
}

func (p *fakeProgressStore) GetProgress(_ context.Context, userKey string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.getErr != nil {
		return 0, p.getErr
	}
	return p.counts[userKey], nil
}

func (p *fakeProgressStore) SetProgress(_ context.Context, userKey string, completedDays int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.setErr != nil {
		return p.setErr
	}
	p.counts[userKey] = completedDays
	p.writes++
	return nil
}

func (p *fakeProgressStore) count(userKey string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counts[userKey]
}

// fakeBadgeStore records awards keyed by user and level.
type fakeBadgeStore struct {
	mu     sync.Mutex
	earned map[string]map[int]AwardedBadge
	addErr error
}

func newFakeBadgeStore() *fakeBadgeStore {
	return &fakeBadgeStore{earned: map[string]map[int]AwardedBadge{}}
}

func (b *fakeBadgeStore) AddBadge(_ context.Context, userKey string, badge AwardedBadge) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.addErr != nil {
		return b.addErr
	}
	if b.earned[userKey] == nil {
		b.earned[userKey] = map[int]AwardedBadge{}
	}
	b.earned[userKey][badge.Level] = badge
	return nil
}

func (b *fakeBadgeStore) EarnedLevels(_ context.Context, userKey string) (map[int]bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	levels := map[int]bool{}
	for level := range b.earned[userKey] {
		levels[level] = true
	}
	return levels, nil
}

var errBoom = errors.New("boom")
