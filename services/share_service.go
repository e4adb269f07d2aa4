package services

import (
	"context"
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"

	"linkFitAPI/internal/challenge"
	"linkFitAPI/internal/types/post"
)

// ShareService turns challenge achievements into feed posts. Messages come
// from the pure composer; the post service is the sharing collaborator.
type ShareService struct {
	posts     *PostService
	challenge *ChallengeService
}

func NewShareService(posts *PostService, challengeService *ChallengeService) *ShareService {
	return &ShareService{posts: posts, challenge: challengeService}
}

// ShareResponse carries the created post plus a scannable deep link so the
// achievement can also be shared outside the app.
type ShareResponse struct {
	Post         *post.Post `json:"post"`
	ShareLink    string     `json:"share_link"`
	QrCodeBase64 string     `json:"qr_code_base64"`
}

func generateShareLink(userID string, day int) string {
	return fmt.Sprintf("linkfit://challenge?user=%s&day=%d", userID, day)
}

// ShareDay posts the achievement message for a completed day.
func (s *ShareService) ShareDay(ctx context.Context, userID, userKey string, day int) (*ShareResponse, error) {
	d, err := s.challenge.DayForShare(ctx, userKey, day)
	if err != nil {
		return nil, err
	}

	exerciseName := "my workout"
	var imageURL *string
	if d.Exercise != nil {
		exerciseName = d.Exercise.Name
		if d.Exercise.GifURL != "" {
			gif := d.Exercise.GifURL
			imageURL = &gif
		}
	}
	message := challenge.ComposeDayShareMessage(d.Day, d.MuscleGroup, exerciseName, d.TimeSpentSeconds)

	created, err := s.posts.CreatePost(ctx, userID, message, imageURL)
	if err != nil {
		return nil, err
	}

	return s.withQrCode(created, generateShareLink(userID, day))
}

// ShareBadge posts the achievement message for an earned badge level.
func (s *ShareService) ShareBadge(ctx context.Context, userID string, level int) (*ShareResponse, error) {
	badge, ok := challenge.BadgeForLevel(level)
	if !ok {
		return nil, fmt.Errorf("unknown badge level %d", level)
	}

	message := challenge.ComposeBadgeShareMessage(badge.Name, badge.RequiredDays)
	created, err := s.posts.CreatePost(ctx, userID, message, nil)
	if err != nil {
		return nil, err
	}

	return s.withQrCode(created, generateShareLink(userID, badge.RequiredDays))
}

// ShareChallengeComplete posts the full-completion message with the total
// workout time across all 100 days.
func (s *ShareService) ShareChallengeComplete(ctx context.Context, userID, userKey string) (*ShareResponse, error) {
	total, err := s.challenge.TotalTimeSpent(ctx, userKey)
	if err != nil {
		return nil, err
	}

	message := challenge.ComposeChallengeCompleteMessage(total)
	created, err := s.posts.CreatePost(ctx, userID, message, nil)
	if err != nil {
		return nil, err
	}

	return s.withQrCode(created, generateShareLink(userID, challenge.TotalDays))
}

func (s *ShareService) withQrCode(created *post.Post, link string) (*ShareResponse, error) {
	png, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}

	return &ShareResponse{
		Post:         created,
		ShareLink:    link,
		QrCodeBase64: base64.StdEncoding.EncodeToString(png),
	}, nil
}
