package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"linkFitAPI/internal/challenge"
	"linkFitAPI/middleware"
	"linkFitAPI/services"
)

type ChallengeHandler struct {
	challengeService *services.ChallengeService
	shareService     *services.ShareService
}

func NewChallengeHandler(challengeService *services.ChallengeService, shareService *services.ShareService) *ChallengeHandler {
	return &ChallengeHandler{
		challengeService: challengeService,
		shareService:     shareService,
	}
}

// GetChallenge serves the 100-day board, creating it on first engage.
// Works for guests via the shared guest key.
func (h *ChallengeHandler) GetChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userKey := middleware.ResolveUserKey(ctx)

	board, err := h.challengeService.GetChallenge(ctx, userKey)
	if err != nil {
		log.Printf("GetChallenge: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to load challenge")
		return
	}

	respondWithJSON(w, http.StatusOK, board)
}

// GetProgress serves the reconciled completed-days counter.
func (h *ChallengeHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userKey := middleware.ResolveUserKey(ctx)
	count := h.challengeService.GetProgress(ctx, userKey)

	respondWithJSON(w, http.StatusOK, map[string]int{"completed_days": count})
}

// GetDayExercise resolves the exercise assigned to a day, fetching one from
// the catalog on first visit. A catalog failure is a retryable 503; it never
// corrupts the day.
func (h *ChallengeHandler) GetDayExercise(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	userKey := middleware.ResolveUserKey(ctx)
	day, ok := dayFromPath(w, r)
	if !ok {
		return
	}

	exercise, err := h.challengeService.GetDayExercise(ctx, userKey, day)
	if err != nil {
		var fetchErr *challenge.CatalogFetchError
		if errors.As(err, &fetchErr) {
			log.Printf("GetDayExercise: %v", err)
			respondWithError(w, http.StatusServiceUnavailable, "Exercise catalog unavailable, try again")
			return
		}
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, exercise)
}

type selectDayRequest struct {
	TimerRunning bool `json:"timer_running"`
	TimerDay     int  `json:"timer_day"`
	Confirmed    bool `json:"confirmed"`
}

// SelectDay runs the propose/confirm selection handshake for a day.
func (h *ChallengeHandler) SelectDay(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userKey := middleware.ResolveUserKey(ctx)
	day, ok := dayFromPath(w, r)
	if !ok {
		return
	}

	var req selectDayRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	decision, err := h.challengeService.SelectDay(ctx, userKey, day, req.TimerRunning, req.TimerDay, req.Confirmed)
	if err != nil {
		respondChallengeError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, decision)
}

type completeDayRequest struct {
	ElapsedSeconds int `json:"elapsed_seconds"`
}

// CompleteDay marks a day done and reports any badge awards.
func (h *ChallengeHandler) CompleteDay(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userKey := middleware.ResolveUserKey(ctx)
	day, ok := dayFromPath(w, r)
	if !ok {
		return
	}

	var req completeDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.challengeService.CompleteDay(ctx, userKey, day, req.ElapsedSeconds)
	if err != nil {
		respondChallengeError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// ResetDay clears a single completed day.
func (h *ChallengeHandler) ResetDay(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userKey := middleware.ResolveUserKey(ctx)
	day, ok := dayFromPath(w, r)
	if !ok {
		return
	}

	board, err := h.challengeService.ResetDay(ctx, userKey, day)
	if err != nil {
		respondChallengeError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, board)
}

// ResetChallenge discards all progress and recreates the board.
func (h *ChallengeHandler) ResetChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userKey := middleware.ResolveUserKey(ctx)

	board, err := h.challengeService.ResetChallenge(ctx, userKey)
	if err != nil {
		log.Printf("ResetChallenge: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to reset challenge")
		return
	}

	respondWithJSON(w, http.StatusOK, board)
}

// ShareDay posts the achievement message for a completed day. Requires a
// signed-in user because the share lands on the feed.
func (h *ChallengeHandler) ShareDay(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}
	day, ok := dayFromPath(w, r)
	if !ok {
		return
	}

	share, err := h.shareService.ShareDay(ctx, userID, middleware.ResolveUserKey(ctx), day)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, share)
}

type shareBadgeRequest struct {
	Level int `json:"level"`
}

// ShareBadge posts the achievement message for an earned badge.
func (h *ChallengeHandler) ShareBadge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req shareBadgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	share, err := h.shareService.ShareBadge(ctx, userID, req.Level)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, share)
}

// ShareChallengeComplete posts the full-completion message.
func (h *ChallengeHandler) ShareChallengeComplete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	share, err := h.shareService.ShareChallengeComplete(ctx, userID, middleware.ResolveUserKey(ctx))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, share)
}

func dayFromPath(w http.ResponseWriter, r *http.Request) (int, bool) {
	day, err := strconv.Atoi(mux.Vars(r)["day"])
	if err != nil || day < 1 || day > challenge.TotalDays {
		respondWithError(w, http.StatusBadRequest, "Day must be a number between 1 and 100")
		return 0, false
	}
	return day, true
}

// respondChallengeError maps the challenge error taxonomy to HTTP statuses.
// OutOfOrderError is the only one the user must see synchronously.
func respondChallengeError(w http.ResponseWriter, err error) {
	var oooErr *challenge.OutOfOrderError
	if errors.As(err, &oooErr) {
		respondWithJSON(w, http.StatusConflict, map[string]interface{}{
			"error":      oooErr.Error(),
			"day":        oooErr.Day,
			"active_day": oooErr.ActiveDay,
		})
		return
	}
	log.Printf("Challenge operation failed: %v", err)
	respondWithError(w, http.StatusInternalServerError, "Challenge operation failed")
}
