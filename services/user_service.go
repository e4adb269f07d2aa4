package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"linkFitAPI/internal/challenge"
	"linkFitAPI/internal/user"
)

type UserService struct {
	db *pgxpool.Pool
}

func NewUserService(db *pgxpool.Pool) *UserService {
	return &UserService{db: db}
}

func (s *UserService) GetUserByID(ctx context.Context, userID string) (*user.User, error) {
	query := `
	SELECT id, firebase_uid, email, username, first_name, last_name, image_url, bio, email_verified, created_at, updated_at
	FROM users
	WHERE id = $1
	`

	u := &user.User{}
	err := s.db.QueryRow(ctx, query, userID).Scan(
		&u.ID,
		&u.FirebaseUID,
		&u.Email,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&u.ImageURL,
		&u.Bio,
		&u.EmailVerified,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return u, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, req *user.UpdateProfileRequest) (*user.User, error) {
	query := `
	UPDATE users
	SET
		username = COALESCE(NULLIF($2, ''), username),
		first_name = COALESCE(NULLIF($3, ''), first_name),
		last_name = COALESCE(NULLIF($4, ''), last_name),
		image_url = COALESCE(NULLIF($5, ''), image_url),
		bio = COALESCE(NULLIF($6, ''), bio),
		updated_at = NOW()
	WHERE id = $1
	RETURNING id, firebase_uid, email, username, first_name, last_name, image_url, bio, email_verified, created_at, updated_at
	`

	u := &user.User{}
	err := s.db.QueryRow(
		ctx,
		query,
		userID,
		req.Username,
		req.FirstName,
		req.LastName,
		req.ImageURL,
		req.Bio,
	).Scan(
		&u.ID,
		&u.FirebaseUID,
		&u.Email,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&u.ImageURL,
		&u.Bio,
		&u.EmailVerified,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return u, nil
}

func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	result, err := s.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user not found")
	}

	// Challenge state and badges are keyed by the user key, not a FK.
	for _, table := range []string{"challenge_days", "user_progress", "user_badges"} {
		if _, err := s.db.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE user_key = $1", table), userID); err != nil {
			log.Printf("UserService: failed to clean %s for %s: %v", table, userID, err)
		}
	}
	return nil
}

func (s *UserService) SearchUsers(ctx context.Context, userID string, search string) ([]*user.User, error) {
	query := `
	SELECT id, firebase_uid, email, username, first_name, last_name, image_url, bio, email_verified, created_at, updated_at
	FROM users
	WHERE id != $1
	  AND (username ILIKE $2 OR first_name ILIKE $2 OR last_name ILIKE $2)
	ORDER BY username
	LIMIT 20
	`

	rows, err := s.db.Query(ctx, query, userID, "%"+search+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		u := &user.User{}
		if err := rows.Scan(
			&u.ID,
			&u.FirebaseUID,
			&u.Email,
			&u.Username,
			&u.FirstName,
			&u.LastName,
			&u.ImageURL,
			&u.Bio,
			&u.EmailVerified,
			&u.CreatedAt,
			&u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}

	return users, nil
}

// GetPublicProfile assembles what another user sees when browsing a profile:
// the user row, the completed-days count, the badge shelf and the post count.
func (s *UserService) GetPublicProfile(ctx context.Context, profileUserID string) (*user.PublicProfileResponse, error) {
	u, err := s.GetUserByID(ctx, profileUserID)
	if err != nil {
		return nil, err
	}

	var completedDays int
	err = s.db.QueryRow(ctx, `SELECT COALESCE(completed_days, 0) FROM user_progress WHERE user_key = $1`, profileUserID).Scan(&completedDays)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		log.Printf("UserService: failed to read progress for %s: %v", profileUserID, err)
	}

	badges, err := s.GetBadgeShelf(ctx, profileUserID)
	if err != nil {
		return nil, err
	}

	var postCount int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM posts WHERE user_id = $1`, profileUserID).Scan(&postCount); err != nil {
		log.Printf("UserService: failed to count posts for %s: %v", profileUserID, err)
	}

	return &user.PublicProfileResponse{
		User:          u,
		CompletedDays: completedDays,
		Badges:        badges,
		PostCount:     postCount,
	}, nil
}

// GetBadgeShelf returns all 10 badge levels with the per-user earned status,
// keeping the unearned ones visible as placeholders.
func (s *UserService) GetBadgeShelf(ctx context.Context, userKey string) ([]user.BadgeWithStatus, error) {
	rows, err := s.db.Query(ctx, `SELECT level, achieved_at FROM user_badges WHERE user_key = $1`, userKey)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch badges: %w", err)
	}
	defer rows.Close()

	achieved := map[int]string{}
	for rows.Next() {
		var level int
		var achievedAt time.Time
		if err := rows.Scan(&level, &achievedAt); err != nil {
			return nil, fmt.Errorf("failed to scan badge: %w", err)
		}
		achieved[level] = achievedAt.UTC().Format(time.RFC3339)
	}

	shelf := make([]user.BadgeWithStatus, 0, challenge.BadgeLevels)
	for _, b := range challenge.AllBadges() {
		entry := user.BadgeWithStatus{Badge: b}
		if at, ok := achieved[b.Level]; ok {
			entry.Earned = true
			entry.AchievedAt = at
		}
		shelf = append(shelf, entry)
	}
	return shelf, nil
}
