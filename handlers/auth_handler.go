package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"linkFitAPI/internal/user"
	"linkFitAPI/services"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// EstablishSession exchanges a Firebase ID token for the server session JWT.
func (h *AuthHandler) EstablishSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var req user.EstablishSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.IDToken == "" {
		respondWithError(w, http.StatusBadRequest, "idToken is required")
		return
	}

	session, err := h.authService.EstablishSession(ctx, req.IDToken)
	if err != nil {
		log.Printf("EstablishSession: %v", err)
		respondWithError(w, http.StatusUnauthorized, "Invalid Firebase token")
		return
	}

	respondWithJSON(w, http.StatusOK, session)
}
