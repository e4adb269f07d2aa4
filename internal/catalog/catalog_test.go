package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     "test-key",
		apiHost:    "test-host",
		httpClient: &http.Client{Timeout: 2 * time.Second},
	}
}

func TestFetchCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/exercises/bodyPart/lower%20legs" && r.URL.Path != "/exercises/bodyPart/lower legs" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("X-RapidAPI-Key") != "test-key" {
			t.Error("missing API key header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"name":"calf raise","bodyPart":"lower legs","equipment":"body weight","gifUrl":"https://cdn.example/calf.gif","instructions":["Stand tall.","Raise heels."]},
			{"name":"seated calf press","bodyPart":"lower legs","equipment":"machine","gifUrl":"https://cdn.example/press.gif","instructions":[]}
		]`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	exercises, err := client.FetchCandidates(context.Background(), "lower legs")
	if err != nil {
		t.Fatalf("FetchCandidates failed: %v", err)
	}
	if len(exercises) != 2 {
		t.Fatalf("expected 2 exercises, got %d", len(exercises))
	}
	if exercises[0].Name != "calf raise" {
		t.Errorf("unexpected name: %s", exercises[0].Name)
	}
	if exercises[0].Instructions != "Stand tall.\nRaise heels." {
		t.Errorf("instructions not joined: %q", exercises[0].Instructions)
	}
}

func TestFetchCandidatesNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	if _, err := client.FetchCandidates(context.Background(), "back"); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestFetchCandidatesBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"a list"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	if _, err := client.FetchCandidates(context.Background(), "back"); err == nil {
		t.Fatal("expected error for malformed response")
	}
}
