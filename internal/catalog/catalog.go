package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"linkFitAPI/internal/challenge"
)

// Client fetches candidate exercises from an ExerciseDB-style HTTP API.
// The catalog is third-party data: it may be slow, fail, or return nothing,
// and callers are expected to tolerate all three.
type Client struct {
	baseURL    string
	apiKey     string
	apiHost    string
	httpClient *http.Client
}

// NewClientFromEnv reads EXERCISE_API_URL, EXERCISE_API_KEY and
// EXERCISE_API_HOST. The URL is required; key and host are passed through as
// RapidAPI headers when present.
func NewClientFromEnv() (*Client, error) {
	baseURL := os.Getenv("EXERCISE_API_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("EXERCISE_API_URL environment variable is not set")
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  os.Getenv("EXERCISE_API_KEY"),
		apiHost: os.Getenv("EXERCISE_API_HOST"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

type exercisePayload struct {
	Name         string   `json:"name"`
	BodyPart     string   `json:"bodyPart"`
	Equipment    string   `json:"equipment"`
	GifURL       string   `json:"gifUrl"`
	Instructions []string `json:"instructions"`
}

// FetchCandidates returns the catalog's exercises for a muscle group, capped
// at a small page. Implements challenge.Catalog.
func (c *Client) FetchCandidates(ctx context.Context, muscleGroup string) ([]challenge.Exercise, error) {
	endpoint := fmt.Sprintf("%s/exercises/bodyPart/%s?limit=25", c.baseURL, url.PathEscape(muscleGroup))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-RapidAPI-Key", c.apiKey)
	}
	if c.apiHost != "" {
		req.Header.Set("X-RapidAPI-Host", c.apiHost)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}

	var payload []exercisePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode catalog response: %w", err)
	}

	exercises := make([]challenge.Exercise, 0, len(payload))
	for _, p := range payload {
		exercises = append(exercises, challenge.Exercise{
			Name:         p.Name,
			Equipment:    p.Equipment,
			GifURL:       p.GifURL,
			Instructions: strings.Join(p.Instructions, "\n"),
		})
	}
	return exercises, nil
}
