package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"linkFitAPI/internal/challenge"
)

func mintTestToken(t *testing.T, secret, subject string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestJWTAuthMiddleware(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "test-secret")

	var gotUserID string
	handler := JWTAuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = GetUserID(r.Context())
	}))

	// Missing header.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/user", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for missing header, got %d", rec.Code)
	}

	// Malformed scheme.
	rec = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/user", nil)
	req.Header.Set("Authorization", "Token abc")
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad scheme, got %d", rec.Code)
	}

	// Wrong secret.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/api/v1/user", nil)
	req.Header.Set("Authorization", "Bearer "+mintTestToken(t, "other-secret", "u-1"))
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad signature, got %d", rec.Code)
	}

	// Valid token.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/api/v1/user", nil)
	req.Header.Set("Authorization", "Bearer "+mintTestToken(t, "test-secret", "u-1"))
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for valid token, got %d", rec.Code)
	}
	if gotUserID != "u-1" {
		t.Errorf("expected user ID u-1 on context, got %q", gotUserID)
	}
}

func TestOptionalAuthAndUserKeyResolution(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "test-secret")

	var gotKey string
	handler := OptionalAuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = ResolveUserKey(r.Context())
	}))

	// No token: guest key.
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/v1/challenge", nil))
	if gotKey != challenge.GuestUserKey {
		t.Errorf("expected guest key, got %q", gotKey)
	}

	// Invalid token: still guest, request not rejected.
	req := httptest.NewRequest("GET", "/api/v1/challenge", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("optional auth must not reject, got %d", rec.Code)
	}
	if gotKey != challenge.GuestUserKey {
		t.Errorf("expected guest key for invalid token, got %q", gotKey)
	}

	// Valid token: stable user key.
	req = httptest.NewRequest("GET", "/api/v1/challenge", nil)
	req.Header.Set("Authorization", "Bearer "+mintTestToken(t, "test-secret", "u-42"))
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if gotKey != "u-42" {
		t.Errorf("expected u-42, got %q", gotKey)
	}
}
