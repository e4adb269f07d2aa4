package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"linkFitAPI/internal/challenge"
)

var (
	daysCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "challenge_days_completed_total",
		Help: "Total number of first-time day completions",
	})
	badgesAwardedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "challenge_badges_awarded_total",
		Help: "Total number of badge awards by level",
	}, []string{"level"})
	challengeResetsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "challenge_resets_total",
		Help: "Total number of full challenge resets",
	})
)

// pgChallengeCache implements challenge.Cache on the challenge_days table.
type pgChallengeCache struct {
	db *pgxpool.Pool
}

func (c *pgChallengeCache) GetChallenge(ctx context.Context, userKey string) ([]challenge.ChallengeDay, error) {
	rows, err := c.db.Query(ctx, `
	SELECT day, muscle_group, exercise_name, exercise_equipment, exercise_gif_url, exercise_instructions,
	       completed, completed_date, time_spent_seconds
	FROM challenge_days
	WHERE user_key = $1
	ORDER BY day
	`, userKey)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch challenge days: %w", err)
	}
	defer rows.Close()

	var days []challenge.ChallengeDay
	for rows.Next() {
		var d challenge.ChallengeDay
		var ex challenge.Exercise
		if err := rows.Scan(
			&d.Day,
			&d.MuscleGroup,
			&ex.Name,
			&ex.Equipment,
			&ex.GifURL,
			&ex.Instructions,
			&d.Completed,
			&d.CompletedDate,
			&d.TimeSpentSeconds,
		); err != nil {
			return nil, fmt.Errorf("failed to scan challenge day: %w", err)
		}
		if ex.Name != "" {
			d.Exercise = &ex
		}
		days = append(days, d)
	}
	if len(days) == 0 {
		return nil, nil
	}
	return days, nil
}

func (c *pgChallengeCache) SetChallenge(ctx context.Context, userKey string, days []challenge.ChallengeDay) error {
	tx, err := c.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin challenge save: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM challenge_days WHERE user_key = $1`, userKey); err != nil {
		return fmt.Errorf("failed to clear challenge days: %w", err)
	}

	batch := &pgx.Batch{}
	for _, d := range days {
		var ex challenge.Exercise
		if d.Exercise != nil {
			ex = *d.Exercise
		}
		batch.Queue(`
		INSERT INTO challenge_days
			(user_key, day, muscle_group, exercise_name, exercise_equipment, exercise_gif_url, exercise_instructions,
			 completed, completed_date, time_spent_seconds)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, userKey, d.Day, d.MuscleGroup, ex.Name, ex.Equipment, ex.GifURL, ex.Instructions,
			d.Completed, d.CompletedDate, d.TimeSpentSeconds)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert challenge days: %w", err)
	}

	return tx.Commit(ctx)
}

// pgProgressStore implements challenge.ProgressStore on user_progress.
type pgProgressStore struct {
	db *pgxpool.Pool
}

func (p *pgProgressStore) GetProgress(ctx context.Context, userKey string) (int, error) {
	var count int
	err := p.db.QueryRow(ctx, `SELECT completed_days FROM user_progress WHERE user_key = $1`, userKey).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read progress: %w", err)
	}
	return count, nil
}

func (p *pgProgressStore) SetProgress(ctx context.Context, userKey string, completedDays int) error {
	_, err := p.db.Exec(ctx, `
	INSERT INTO user_progress (user_key, completed_days, updated_at)
	VALUES ($1, $2, NOW())
	ON CONFLICT (user_key) DO UPDATE SET completed_days = $2, updated_at = NOW()
	`, userKey, completedDays)
	if err != nil {
		return fmt.Errorf("failed to write progress: %w", err)
	}
	return nil
}

// pgBadgeStore implements challenge.BadgeStore on user_badges.
type pgBadgeStore struct {
	db *pgxpool.Pool
}

func (b *pgBadgeStore) AddBadge(ctx context.Context, userKey string, badge challenge.AwardedBadge) error {
	_, err := b.db.Exec(ctx, `
	INSERT INTO user_badges (id, user_key, level, name, icon, achieved_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (user_key, level) DO NOTHING
	`, uuid.New(), userKey, badge.Level, badge.Name, badge.Icon, badge.AchievedAt)
	if err != nil {
		return fmt.Errorf("failed to persist badge: %w", err)
	}
	return nil
}

func (b *pgBadgeStore) EarnedLevels(ctx context.Context, userKey string) (map[int]bool, error) {
	rows, err := b.db.Query(ctx, `SELECT level FROM user_badges WHERE user_key = $1`, userKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read earned badges: %w", err)
	}
	defer rows.Close()

	levels := map[int]bool{}
	for rows.Next() {
		var level int
		if err := rows.Scan(&level); err != nil {
			return nil, fmt.Errorf("failed to scan badge level: %w", err)
		}
		levels[level] = true
	}
	return levels, nil
}

// ChallengeService wires the challenge core to its Postgres-backed
// collaborators and exposes the operations the handlers call.
type ChallengeService struct {
	store      *challenge.Store
	reconciler *challenge.Reconciler
	awarder    *challenge.Awarder
	cache      challenge.Cache
}

func NewChallengeService(db *pgxpool.Pool, catalog challenge.Catalog) *ChallengeService {
	cache := &pgChallengeCache{db: db}
	progress := &pgProgressStore{db: db}
	badges := &pgBadgeStore{db: db}

	return &ChallengeService{
		store:      challenge.NewStore(cache, catalog),
		reconciler: challenge.NewReconciler(progress, cache),
		awarder:    challenge.NewAwarder(badges),
		cache:      cache,
	}
}

// ChallengeResponse is the board view: all 100 days plus the derived state.
type ChallengeResponse struct {
	Days  []challenge.ChallengeDay `json:"days"`
	State challenge.State          `json:"state"`
}

// GetChallenge loads the user's challenge, creating it on first engage.
func (s *ChallengeService) GetChallenge(ctx context.Context, userKey string) (*ChallengeResponse, error) {
	days, err := s.store.LoadOrCreate(ctx, userKey)
	if err != nil {
		return nil, err
	}
	return &ChallengeResponse{Days: days, State: challenge.StateOf(days)}, nil
}

// GetProgress returns the reconciled authoritative completed count.
func (s *ChallengeService) GetProgress(ctx context.Context, userKey string) int {
	return s.reconciler.Reconcile(ctx, userKey)
}

// GetDayExercise resolves (and pins, on first visit) the exercise for a day.
func (s *ChallengeService) GetDayExercise(ctx context.Context, userKey string, day int) (*challenge.Exercise, error) {
	days, err := s.store.LoadOrCreate(ctx, userKey)
	if err != nil {
		return nil, err
	}
	if day < 1 || day > challenge.TotalDays {
		return nil, fmt.Errorf("day %d out of range 1..%d", day, challenge.TotalDays)
	}
	return s.store.ResolveExercise(ctx, userKey, day, days)
}

// SelectDay runs the propose step (and the confirm step when the caller has
// already confirmed) of the day-selection state machine.
func (s *ChallengeService) SelectDay(ctx context.Context, userKey string, day int, timerRunning bool, timerDay int, confirmed bool) (*challenge.SelectDecision, error) {
	days, err := s.store.LoadOrCreate(ctx, userKey)
	if err != nil {
		return nil, err
	}
	engine := challenge.NewEngine(s.store, userKey, days)

	if confirmed {
		if err := engine.ConfirmSelect(day); err != nil {
			return nil, err
		}
		return &challenge.SelectDecision{Day: day}, nil
	}

	decision, err := engine.ProposeSelect(day, timerRunning, timerDay)
	if err != nil {
		return nil, err
	}
	return &decision, nil
}

// CompleteDayResponse is returned after a successful completion: the new
// board state plus any badge awards and the one-time full-completion flag.
type CompleteDayResponse struct {
	Result             challenge.CompleteResult `json:"result"`
	NewBadges          []challenge.AwardEvent   `json:"new_badges,omitempty"`
	ChallengeCompleted bool                     `json:"challenge_completed"`
}

// CompleteDay marks a day done, persists, detects milestone crossings and
// awards badges at most once per level. The whole-challenge celebration is
// gated on the level-10 badge being newly awarded so it cannot re-fire on a
// re-completion of day 100 alone.
func (s *ChallengeService) CompleteDay(ctx context.Context, userKey string, day, elapsedSeconds int) (*CompleteDayResponse, error) {
	days, err := s.store.LoadOrCreate(ctx, userKey)
	if err != nil {
		return nil, err
	}
	engine := challenge.NewEngine(s.store, userKey, days)

	result, err := engine.Complete(ctx, day, elapsedSeconds)
	if err != nil {
		return nil, err
	}

	var newBadges []challenge.AwardEvent
	if result.NewCompletion {
		daysCompletedTotal.Inc()
		newBadges = s.awarder.Award(ctx, userKey, result.Before, result.CompletedCount)
		for _, ev := range newBadges {
			badgesAwardedTotal.WithLabelValues(fmt.Sprintf("%d", ev.Level)).Inc()
		}
	}

	completedAll := false
	for _, ev := range newBadges {
		if ev.Level == challenge.BadgeLevels {
			completedAll = true
		}
	}

	return &CompleteDayResponse{
		Result:             result,
		NewBadges:          newBadges,
		ChallengeCompleted: completedAll && result.AllCompleted,
	}, nil
}

// ResetDay clears a single completed day.
func (s *ChallengeService) ResetDay(ctx context.Context, userKey string, day int) (*ChallengeResponse, error) {
	days, err := s.store.LoadOrCreate(ctx, userKey)
	if err != nil {
		return nil, err
	}
	engine := challenge.NewEngine(s.store, userKey, days)

	if err := engine.ResetDay(ctx, day); err != nil {
		return nil, err
	}
	return &ChallengeResponse{Days: engine.Days(), State: engine.State()}, nil
}

// ResetChallenge recreates the full 100-day set and zeroes the durable
// counter best-effort. Earned badges are permanent and survive the reset.
func (s *ChallengeService) ResetChallenge(ctx context.Context, userKey string) (*ChallengeResponse, error) {
	days, err := s.store.Create(ctx, userKey)
	if err != nil {
		return nil, err
	}
	s.reconciler.ResetProgress(ctx, userKey)
	challengeResetsTotal.Inc()
	return &ChallengeResponse{Days: days, State: challenge.StateOf(days)}, nil
}

// TotalTimeSpent sums the recorded workout seconds across completed days,
// used for the challenge-complete share message.
func (s *ChallengeService) TotalTimeSpent(ctx context.Context, userKey string) (int, error) {
	days, err := s.store.Load(ctx, userKey)
	if err != nil || days == nil {
		return 0, err
	}
	total := 0
	for _, d := range days {
		total += d.TimeSpentSeconds
	}
	return total, nil
}

// DayForShare fetches a single completed day for the share flow.
func (s *ChallengeService) DayForShare(ctx context.Context, userKey string, day int) (*challenge.ChallengeDay, error) {
	days, err := s.store.Load(ctx, userKey)
	if err != nil {
		return nil, err
	}
	if days == nil || day < 1 || day > challenge.TotalDays {
		return nil, fmt.Errorf("day not found")
	}
	d := days[day-1]
	if !d.Completed {
		return nil, fmt.Errorf("day %d is not completed", day)
	}
	return &d, nil
}
