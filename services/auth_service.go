package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"google.golang.org/api/option"

	"linkFitAPI/internal/user"
)

// IDTokenVerifier is what AuthService needs from Firebase; *fbauth.Client
// satisfies it, and tests swap in a stub.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

type AuthService struct {
	db       *pgxpool.Pool
	verifier IDTokenVerifier
}

// NewFirebaseAuthClient initializes the Firebase Admin auth client. It first
// attempts Base64 credentials from FIREBASE_SERVICE_ACCOUNT_JSON, then falls
// back to a local service account key file.
func NewFirebaseAuthClient(localFilePath string) (*fbauth.Client, error) {
	var opt option.ClientOption

	encodedCreds := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON")
	if encodedCreds != "" {
		decoded, err := base64.StdEncoding.DecodeString(encodedCreds)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 firebase credentials from FIREBASE_SERVICE_ACCOUNT_JSON: %v", err)
		}
		opt = option.WithCredentialsJSON(decoded)
		log.Println("Auth Service: Initializing Firebase from FIREBASE_SERVICE_ACCOUNT_JSON environment variable.")
	} else {
		if _, err := os.Stat(localFilePath); os.IsNotExist(err) {
			return nil, fmt.Errorf("local firebase file not found: %s, and FIREBASE_SERVICE_ACCOUNT_JSON environment variable is not set", localFilePath)
		}
		opt = option.WithCredentialsFile(localFilePath)
		log.Printf("Auth Service: Initializing Firebase from local file: %s.", localFilePath)
	}

	app, err := firebase.NewApp(context.Background(), nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %v", err)
	}

	client, err := app.Auth(context.Background())
	if err != nil {
		return nil, fmt.Errorf("error getting auth client: %v", err)
	}

	return client, nil
}

func NewAuthService(db *pgxpool.Pool, verifier IDTokenVerifier) *AuthService {
	return &AuthService{db: db, verifier: verifier}
}

// EstablishSession verifies a Firebase ID token, upserts the user row and
// mints the custom server JWT the rest of the API authenticates with.
func (s *AuthService) EstablishSession(ctx context.Context, idToken string) (*user.SessionResponse, error) {
	token, err := s.verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("firebase token verification failed: %w", err)
	}

	email, _ := token.Claims["email"].(string)
	emailVerified, _ := token.Claims["email_verified"].(bool)
	name, _ := token.Claims["name"].(string)
	picture, _ := token.Claims["picture"].(string)

	u, err := s.upsertUser(ctx, token.UID, email, emailVerified, name, picture)
	if err != nil {
		return nil, err
	}

	signed, err := MintSessionToken(u.ID)
	if err != nil {
		return nil, err
	}

	return &user.SessionResponse{Token: signed, User: u}, nil
}

// MintSessionToken signs the server JWT for an internal user ID.
func MintSessionToken(userID string) (string, error) {
	secret := os.Getenv("AUTH_JWT_SECRET")
	if secret == "" {
		return "", fmt.Errorf("AUTH_JWT_SECRET environment variable is not set")
	}

	claims := jwt.MapClaims{
		"sub": userID,
		"iss": "linkfit-api",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(7 * 24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

func (s *AuthService) upsertUser(ctx context.Context, firebaseUID, email string, emailVerified bool, name, picture string) (*user.User, error) {
	existing := &user.User{}
	err := s.db.QueryRow(ctx, `
	SELECT id, firebase_uid, email, username, first_name, last_name, image_url, bio, email_verified, created_at, updated_at
	FROM users
	WHERE firebase_uid = $1
	`, firebaseUID).Scan(
		&existing.ID,
		&existing.FirebaseUID,
		&existing.Email,
		&existing.Username,
		&existing.FirstName,
		&existing.LastName,
		&existing.ImageURL,
		&existing.Bio,
		&existing.EmailVerified,
		&existing.CreatedAt,
		&existing.UpdatedAt,
	)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	firstName, lastName := splitName(name)
	created := &user.User{
		ID:            uuid.New().String(),
		FirebaseUID:   firebaseUID,
		Email:         email,
		Username:      usernameFromEmail(email, firebaseUID),
		FirstName:     firstName,
		LastName:      lastName,
		ImageURL:      picture,
		EmailVerified: emailVerified,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	err = s.db.QueryRow(ctx, `
	INSERT INTO users (id, firebase_uid, email, username, first_name, last_name, image_url, email_verified, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING id, created_at, updated_at
	`,
		created.ID,
		created.FirebaseUID,
		created.Email,
		created.Username,
		created.FirstName,
		created.LastName,
		created.ImageURL,
		created.EmailVerified,
		created.CreatedAt,
		created.UpdatedAt,
	).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return created, nil
}

func splitName(name string) (string, string) {
	parts := strings.SplitN(strings.TrimSpace(name), " ", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return parts[0], ""
}

func usernameFromEmail(email, firebaseUID string) string {
	if at := strings.Index(email, "@"); at > 0 {
		suffix := firebaseUID
		if len(suffix) > 6 {
			suffix = suffix[:6]
		}
		return email[:at] + "_" + suffix
	}
	return firebaseUID
}
