package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"linkFitAPI/internal/types/post"
)

type PostService struct {
	db *pgxpool.Pool
}

func NewPostService(db *pgxpool.Pool) *PostService {
	return &PostService{db: db}
}

// CreatePost inserts a post. This is also the sharing collaborator: the
// challenge share flow calls it with a composed achievement message.
func (s *PostService) CreatePost(ctx context.Context, userID string, body string, imageURL *string) (*post.Post, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id")
	}

	p := &post.Post{
		ID:        uuid.New(),
		UserID:    userUUID,
		Body:      body,
		ImageURL:  imageURL,
		CreatedAt: time.Now(),
	}

	err = s.db.QueryRow(ctx, `
	INSERT INTO posts (id, user_id, body, image_url, created_at)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING created_at
	`, p.ID, p.UserID, p.Body, p.ImageURL, p.CreatedAt).Scan(&p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	return p, nil
}

// GetFeed returns the most recent posts with author info and social counters.
func (s *PostService) GetFeed(ctx context.Context, viewerID string, limit int) ([]*post.FeedPost, error) {
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	viewerUUID, err := uuid.Parse(viewerID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id")
	}

	query := `
	SELECT
		p.id, p.user_id, p.body, p.image_url, p.created_at,
		u.username, u.image_url,
		COUNT(DISTINCT pl.user_id) AS like_count,
		COUNT(DISTINCT pc.id) AS comment_count,
		BOOL_OR(pl.user_id = $1) AS liked_by_me
	FROM posts p
	JOIN users u ON u.id = p.user_id
	LEFT JOIN post_likes pl ON pl.post_id = p.id
	LEFT JOIN post_comments pc ON pc.post_id = p.id
	GROUP BY p.id, p.user_id, p.body, p.image_url, p.created_at, u.username, u.image_url
	ORDER BY p.created_at DESC
	LIMIT $2
	`

	rows, err := s.db.Query(ctx, query, viewerUUID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer rows.Close()

	var feed []*post.FeedPost
	for rows.Next() {
		fp := &post.FeedPost{}
		var likedByMe *bool
		if err := rows.Scan(
			&fp.ID,
			&fp.UserID,
			&fp.Body,
			&fp.ImageURL,
			&fp.CreatedAt,
			&fp.Username,
			&fp.UserImageURL,
			&fp.LikeCount,
			&fp.CommentCount,
			&likedByMe,
		); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		fp.LikedByMe = likedByMe != nil && *likedByMe
		feed = append(feed, fp)
	}

	return feed, nil
}

func (s *PostService) LikePost(ctx context.Context, userID string, postID string) error {
	postUUID, err := uuid.Parse(postID)
	if err != nil {
		return fmt.Errorf("invalid post id")
	}

	_, err = s.db.Exec(ctx, `
	INSERT INTO post_likes (post_id, user_id)
	VALUES ($1, $2)
	ON CONFLICT (post_id, user_id) DO NOTHING
	`, postUUID, userID)
	if err != nil {
		return fmt.Errorf("failed to like post: %w", err)
	}
	return nil
}

func (s *PostService) UnlikePost(ctx context.Context, userID string, postID string) error {
	postUUID, err := uuid.Parse(postID)
	if err != nil {
		return fmt.Errorf("invalid post id")
	}

	_, err = s.db.Exec(ctx, `DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postUUID, userID)
	if err != nil {
		return fmt.Errorf("failed to unlike post: %w", err)
	}
	return nil
}

func (s *PostService) AddComment(ctx context.Context, userID string, postID string, body string) (*post.Comment, error) {
	postUUID, err := uuid.Parse(postID)
	if err != nil {
		return nil, fmt.Errorf("invalid post id")
	}
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id")
	}

	c := &post.Comment{
		ID:        uuid.New(),
		PostID:    postUUID,
		UserID:    userUUID,
		Body:      body,
		CreatedAt: time.Now(),
	}

	err = s.db.QueryRow(ctx, `
	INSERT INTO post_comments (id, post_id, user_id, body, created_at)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING created_at
	`, c.ID, c.PostID, c.UserID, c.Body, c.CreatedAt).Scan(&c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}

	if err := s.db.QueryRow(ctx, `SELECT username FROM users WHERE id = $1`, userUUID).Scan(&c.Username); err != nil {
		c.Username = ""
	}

	return c, nil
}

func (s *PostService) GetComments(ctx context.Context, postID string) ([]*post.Comment, error) {
	postUUID, err := uuid.Parse(postID)
	if err != nil {
		return nil, fmt.Errorf("invalid post id")
	}

	rows, err := s.db.Query(ctx, `
	SELECT c.id, c.post_id, c.user_id, u.username, c.body, c.created_at
	FROM post_comments c
	JOIN users u ON u.id = c.user_id
	WHERE c.post_id = $1
	ORDER BY c.created_at
	`, postUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch comments: %w", err)
	}
	defer rows.Close()

	var comments []*post.Comment
	for rows.Next() {
		c := &post.Comment{}
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Username, &c.Body, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}

	return comments, nil
}

// DeleteComment removes a comment the caller owns.
func (s *PostService) DeleteComment(ctx context.Context, userID string, commentID string) error {
	commentUUID, err := uuid.Parse(commentID)
	if err != nil {
		return fmt.Errorf("invalid comment id")
	}

	result, err := s.db.Exec(ctx, `DELETE FROM post_comments WHERE id = $1 AND user_id = $2`, commentUUID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("comment not found")
	}
	return nil
}

// DeletePost removes a post the caller owns.
func (s *PostService) DeletePost(ctx context.Context, userID string, postID string) error {
	postUUID, err := uuid.Parse(postID)
	if err != nil {
		return fmt.Errorf("invalid post id")
	}

	result, err := s.db.Exec(ctx, `DELETE FROM posts WHERE id = $1 AND user_id = $2`, postUUID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("post not found")
	}
	return nil
}
