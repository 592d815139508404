package sleeper

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, nil)
	c.HTTP = srv.Client()
	c.Limiter = nil
	c.Retry = RetryConfig{MaxRetries: 2, InitialBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond, Multiplier: 2}
	return c
}

func TestGetUser(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user/analytics_andy" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"user_id":"7311","username":"analytics_andy","display_name":"Andy","avatar":"abc123"}`))
	}))

	user, err := c.GetUser(context.Background(), "analytics_andy")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if user.UserId != "7311" || user.DisplayName != "Andy" || user.Avatar != "abc123" {
		t.Errorf("Unexpected user %+v", user)
	}
}

func TestGetUserNullBodyIsNotFound(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("null"))
	}))

	if _, err := c.GetUser(context.Background(), "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestNotFoundStatus(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))

	if _, err := c.GetLeague(context.Background(), "1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("404 must not be retried, got %d calls", calls.Load())
	}
}

func TestResponsesAreCached(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"league_id":"99","name":"Dynasty Degens","total_rosters":12,"scoring_settings":{"rec":0.5}}`))
	}))

	for i := 0; i < 3; i++ {
		league, err := c.GetLeague(context.Background(), "99")
		if err != nil {
			t.Fatalf("GetLeague failed: %v", err)
		}
		if league.Name != "Dynasty Degens" || league.ScoringSettings["rec"] != 0.5 {
			t.Errorf("Unexpected league %+v", league)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("Expected one upstream call, got %d", calls.Load())
	}
}

func TestRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`[{"user_id":"1","display_name":"one"}]`))
	}))

	users, err := c.GetLeagueUsers(context.Background(), "99")
	if err != nil {
		t.Fatalf("GetLeagueUsers failed: %v", err)
	}
	if len(users) != 1 || users[0].DisplayName != "one" {
		t.Errorf("Unexpected users %+v", users)
	}
	if calls.Load() != 3 {
		t.Errorf("Expected 3 calls, got %d", calls.Load())
	}
}

func TestGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	_, err := c.GetLeagueRosters(context.Background(), "99")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected StatusError 503, got %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("Expected 1 call plus 2 retries, got %d", calls.Load())
	}
}

func TestClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))

	_, err := c.GetLeague(context.Background(), "99")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected StatusError 400, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("Expected a single call, got %d", calls.Load())
	}
}

func TestGetUserRoster(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"roster_id":1,"owner_id":"a","players":["1","2"],"starters":["1"]},
			{"roster_id":2,"owner_id":"b","players":["3"],"starters":["3"],"settings":{"wins":4,"fpts":1201,"fpts_decimal":55}}
		]`))
	}))

	roster, err := c.GetUserRoster(context.Background(), "b", "99")
	if err != nil {
		t.Fatalf("GetUserRoster failed: %v", err)
	}
	if roster.RosterId != 2 || roster.Settings.Wins != 4 {
		t.Errorf("Unexpected roster %+v", roster)
	}
	if got := roster.Settings.PointsFor(); math.Abs(got-1201.55) > 1e-9 {
		t.Errorf("Expected 1201.55 points, got %v", got)
	}

	if _, err := c.GetUserRoster(context.Background(), "zz", "99"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for a user without roster, got %v", err)
	}
}

func TestGetAllPlayers(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/players/nfl" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"4046":{"player_id":"4046","first_name":"Patrick","last_name":"Mahomes","position":"QB","team":"KC","injury_status":null}}`))
	}))

	players, err := c.GetAllPlayers(context.Background(), "nfl")
	if err != nil {
		t.Fatalf("GetAllPlayers failed: %v", err)
	}
	p, ok := players["4046"]
	if !ok {
		t.Fatal("Expected player 4046")
	}
	if p.FullName() != "Patrick Mahomes" || p.InjuryStatus != "" {
		t.Errorf("Unexpected player %+v", p)
	}
}

func TestCalculateBackoff(t *testing.T) {
	cfg := RetryConfig{InitialBackoff: time.Second, MaxBackoff: 5 * time.Second, Multiplier: 2}

	tests := []struct {
		attempt    int
		retryAfter time.Duration
		expected   time.Duration
	}{
		{0, 0, time.Second},
		{1, 0, 2 * time.Second},
		{2, 0, 4 * time.Second},
		{3, 0, 5 * time.Second},
		{1, 7 * time.Second, 7 * time.Second},
	}

	for _, tt := range tests {
		if got := CalculateBackoff(cfg, tt.attempt, tt.retryAfter); got != tt.expected {
			t.Errorf("CalculateBackoff(attempt=%d, retryAfter=%v) = %v, want %v", tt.attempt, tt.retryAfter, got, tt.expected)
		}
	}
}

func TestAvatarURL(t *testing.T) {
	if got := AvatarURL(""); got != "" {
		t.Errorf("Expected empty URL, got %s", got)
	}
	if got := AvatarURL("abc"); got != "https://sleepercdn.com/avatars/thumbs/abc" {
		t.Errorf("Unexpected URL %s", got)
	}
}
