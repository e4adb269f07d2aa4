package challenge

import (
	"context"
	"log"
	"time"
)

// BadgeLevels is the number of milestone badges, one per 10 completed days.
const BadgeLevels = 10

// Badge is a static milestone definition. Identity is the level; name, icon
// and color theme are fixed per level.
type Badge struct {
	Level        int    `json:"level"`
	RequiredDays int    `json:"required_days"`
	Name         string `json:"name"`
	Icon         string `json:"icon"`
	Color        string `json:"color"`
}

var badgeTable = [BadgeLevels]Badge{
	{Level: 1, RequiredDays: 10, Name: "Quick Start", Icon: "flash", Color: "#FFB300"},
	{Level: 2, RequiredDays: 20, Name: "Warming Up", Icon: "flame", Color: "#FB8C00"},
	{Level: 3, RequiredDays: 30, Name: "On A Roll", Icon: "bicycle", Color: "#F4511E"},
	{Level: 4, RequiredDays: 40, Name: "Committed", Icon: "ribbon", Color: "#8E24AA"},
	{Level: 5, RequiredDays: 50, Name: "Halfway Hero", Icon: "shield-half", Color: "#3949AB"},
	{Level: 6, RequiredDays: 60, Name: "Relentless", Icon: "barbell", Color: "#1E88E5"},
	{Level: 7, RequiredDays: 70, Name: "Iron Will", Icon: "hammer", Color: "#00897B"},
	{Level: 8, RequiredDays: 80, Name: "Unstoppable", Icon: "rocket", Color: "#43A047"},
	{Level: 9, RequiredDays: 90, Name: "Final Stretch", Icon: "flag", Color: "#C0CA33"},
	{Level: 10, RequiredDays: 100, Name: "Challenge Champion", Icon: "trophy", Color: "#FFD700"},
}

// AllBadges returns the full static badge table in level order.
func AllBadges() []Badge {
	badges := make([]Badge, BadgeLevels)
	copy(badges, badgeTable[:])
	return badges
}

// BadgeForLevel looks up the static definition for a level.
func BadgeForLevel(level int) (Badge, bool) {
	if level < 1 || level > BadgeLevels {
		return Badge{}, false
	}
	return badgeTable[level-1], true
}

// DetectNewBadges returns every level k whose threshold 10k was crossed by
// the transition from before to after, in ascending order. Correct for
// arbitrary jumps, not just single increments.
func DetectNewBadges(before, after int) []int {
	var levels []int
	for k := 1; k <= BadgeLevels; k++ {
		required := k * 10
		if before < required && required <= after {
			levels = append(levels, k)
		}
	}
	return levels
}

// AwardedBadge is the durable record of an earned badge.
type AwardedBadge struct {
	Level      int       `json:"level"`
	Name       string    `json:"name"`
	Icon       string    `json:"icon"`
	AchievedAt time.Time `json:"achieved_at"`
}

// BadgeStore persists earned badges per user. AddBadge must be idempotent on
// (user, level); EarnedLevels reports which levels are already recorded.
type BadgeStore interface {
	AddBadge(ctx context.Context, userKey string, badge AwardedBadge) error
	EarnedLevels(ctx context.Context, userKey string) (map[int]bool, error)
}

// AwardEvent is the payload handed to the presentation layer for each newly
// earned badge.
type AwardEvent struct {
	Level int    `json:"level"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
}

// Awarder turns completed-count transitions into at-most-once badge awards.
// Detection is pure; the awarder owns the de-duplication against the durable
// per-level flags, so replays and reconciliation jumps never re-fire a level.
type Awarder struct {
	badges BadgeStore
}

func NewAwarder(badges BadgeStore) *Awarder {
	return &Awarder{badges: badges}
}

// Award persists and returns the events for every level newly crossed between
// before and after that has not already been recorded for the user. Durable
// write failures are logged, not surfaced; the event still fires because the
// local completion already committed.
func (a *Awarder) Award(ctx context.Context, userKey string, before, after int) []AwardEvent {
	levels := DetectNewBadges(before, after)
	if len(levels) == 0 {
		return nil
	}

	earned, err := a.badges.EarnedLevels(ctx, userKey)
	if err != nil {
		log.Printf("BadgeAwarder: could not read earned levels for %s: %v", userKey, err)
		earned = map[int]bool{}
	}

	var events []AwardEvent
	for _, level := range levels {
		if earned[level] {
			continue
		}
		badge, _ := BadgeForLevel(level)
		record := AwardedBadge{
			Level:      level,
			Name:       badge.Name,
			Icon:       badge.Icon,
			AchievedAt: time.Now().UTC(),
		}
		if err := a.badges.AddBadge(ctx, userKey, record); err != nil {
			log.Printf("BadgeAwarder: %v", &PersistenceWriteError{Op: "badge award for " + userKey, Err: err})
		}
		events = append(events, AwardEvent{Level: level, Name: badge.Name, Icon: badge.Icon})
	}
	return events
}
