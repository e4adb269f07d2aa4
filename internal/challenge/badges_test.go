package challenge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectNewBadges(t *testing.T) {
	tests := []struct {
		name    string
		before  int
		after   int
		want    []int
	}{
		{"no crossing", 3, 9, nil},
		{"first milestone", 9, 10, []int{1}},
		{"exactly at threshold before", 10, 11, nil},
		{"single increment mid-challenge", 49, 50, []int{5}},
		{"reconciliation jump over several", 5, 47, []int{1, 2, 3, 4}},
		{"jump to full completion", 0, 100, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}},
		{"backward transition", 20, 15, nil},
		{"final milestone", 99, 100, []int{10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectNewBadges(tt.before, tt.after))
		})
	}
}

func TestBadgeTable(t *testing.T) {
	badges := AllBadges()
	require.Len(t, badges, BadgeLevels)
	for i, b := range badges {
		assert.Equal(t, i+1, b.Level)
		assert.Equal(t, (i+1)*10, b.RequiredDays)
		assert.NotEmpty(t, b.Name)
		assert.NotEmpty(t, b.Icon)
		assert.NotEmpty(t, b.Color)
	}

	first, ok := BadgeForLevel(1)
	require.True(t, ok)
	assert.Equal(t, "Quick Start", first.Name)

	last, ok := BadgeForLevel(10)
	require.True(t, ok)
	assert.Equal(t, "Challenge Champion", last.Name)

	_, ok = BadgeForLevel(0)
	assert.False(t, ok)
	_, ok = BadgeForLevel(11)
	assert.False(t, ok)
}

func TestAwarderFiresEachLevelExactlyOnce(t *testing.T) {
	ctx := context.Background()
	store := newFakeBadgeStore()
	awarder := NewAwarder(store)

	fired := map[int]int{}
	for count := 1; count <= 100; count++ {
		for _, ev := range awarder.Award(ctx, "u", count-1, count) {
			fired[ev.Level]++
			assert.Equal(t, count, ev.Level*10, "level %d must fire exactly when count reaches %d", ev.Level, ev.Level*10)
		}
	}

	require.Len(t, fired, BadgeLevels)
	for level := 1; level <= BadgeLevels; level++ {
		assert.Equal(t, 1, fired[level])
	}
}

func TestAwarderDeduplicatesReplays(t *testing.T) {
	ctx := context.Background()
	store := newFakeBadgeStore()
	awarder := NewAwarder(store)

	events := awarder.Award(ctx, "u", 9, 10)
	require.Len(t, events, 1)
	assert.Equal(t, AwardEvent{Level: 1, Name: "Quick Start", Icon: "flash"}, events[0])

	// Re-observing the same transition (reconciliation replay) must not re-fire.
	assert.Empty(t, awarder.Award(ctx, "u", 9, 10))
	assert.Empty(t, awarder.Award(ctx, "u", 0, 10))

	// A later overlapping jump only fires the genuinely new levels.
	events = awarder.Award(ctx, "u", 5, 25)
	require.Len(t, events, 1)
	assert.Equal(t, 2, events[0].Level)
}

func TestAwarderIsolatesUsers(t *testing.T) {
	ctx := context.Background()
	awarder := NewAwarder(newFakeBadgeStore())

	require.Len(t, awarder.Award(ctx, "alice", 9, 10), 1)
	require.Len(t, awarder.Award(ctx, "bob", 9, 10), 1)
}

func TestAwarderPersistsAwardRecord(t *testing.T) {
	ctx := context.Background()
	store := newFakeBadgeStore()
	awarder := NewAwarder(store)

	awarder.Award(ctx, "u", 29, 30)

	record := store.earned["u"][3]
	assert.Equal(t, 3, record.Level)
	assert.Equal(t, "On A Roll", record.Name)
	assert.False(t, record.AchievedAt.IsZero())
}

func TestAwarderEmitsEvenWhenDurableWriteFails(t *testing.T) {
	ctx := context.Background()
	store := newFakeBadgeStore()
	store.addErr = errBoom
	awarder := NewAwarder(store)

	// Local completion already committed; the celebration still happens.
	events := awarder.Award(ctx, "u", 9, 10)
	require.Len(t, events, 1)
}
