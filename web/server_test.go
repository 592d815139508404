package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/deemkeen/huddle/db"
	"github.com/deemkeen/huddle/domain"
	"github.com/deemkeen/huddle/sleeper"
	"github.com/deemkeen/huddle/util"
	"github.com/gin-gonic/gin"
)

// fakeProvider serves canned Sleeper records.
type fakeProvider struct {
	users   map[string]sleeper.User
	leagues map[string]sleeper.League
	rosters map[string][]sleeper.Roster
	members map[string][]sleeper.LeagueUser
	players sleeper.Players
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		users: map[string]sleeper.User{
			"alice": {UserId: "s-alice", Username: "alice", DisplayName: "Alice", Avatar: "av-a"},
			"bob":   {UserId: "s-bob", Username: "bob", DisplayName: "Bob"},
			"carol": {UserId: "s-carol", Username: "carol"},
		},
		leagues: map[string]sleeper.League{
			"L1": {LeagueId: "L1", Name: "Sunday Scaries", Sport: "nfl", TotalRosters: 2, Settings: sleeper.LeagueSettings{WaiverType: 2}, ScoringSettings: map[string]float64{"rec": 0.5}},
		},
		rosters: map[string][]sleeper.Roster{
			"L1": {
				{RosterId: 1, OwnerId: "s-alice", Players: []string{"4046", "6794"}, Starters: []string{"4046"}, Settings: sleeper.RosterSettings{Wins: 3, Losses: 5}},
				{RosterId: 2, OwnerId: "s-bob", Players: []string{"9509"}, Starters: []string{"9509"}, Settings: sleeper.RosterSettings{Wins: 6, Losses: 2}},
			},
		},
		members: map[string][]sleeper.LeagueUser{
			"L1": {{UserId: "s-alice", DisplayName: "Alice"}, {UserId: "s-bob", DisplayName: "Bob"}},
		},
		players: sleeper.Players{
			"4046": {FirstName: "Patrick", LastName: "Mahomes", Position: "QB", Team: "KC"},
			"6794": {FirstName: "Justin", LastName: "Jefferson", Position: "WR", Team: "MIN"},
			"9509": {FirstName: "Bijan", LastName: "Robinson", Position: "RB", Team: "ATL"},
		},
	}
}

func (f *fakeProvider) GetUser(_ context.Context, username string) (*sleeper.User, error) {
	u, ok := f.users[username]
	if !ok {
		return nil, sleeper.ErrNotFound
	}
	return &u, nil
}

func (f *fakeProvider) GetUserLeagues(_ context.Context, userId, _, _ string) ([]sleeper.League, error) {
	var out []sleeper.League
	for id, rosters := range f.rosters {
		for _, r := range rosters {
			if r.OwnerId == userId {
				out = append(out, f.leagues[id])
			}
		}
	}
	return out, nil
}

func (f *fakeProvider) GetLeague(_ context.Context, leagueId string) (*sleeper.League, error) {
	l, ok := f.leagues[leagueId]
	if !ok {
		return nil, sleeper.ErrNotFound
	}
	return &l, nil
}

func (f *fakeProvider) GetLeagueRosters(_ context.Context, leagueId string) ([]sleeper.Roster, error) {
	return f.rosters[leagueId], nil
}

func (f *fakeProvider) GetLeagueUsers(_ context.Context, leagueId string) ([]sleeper.LeagueUser, error) {
	return f.members[leagueId], nil
}

func (f *fakeProvider) GetUserRoster(_ context.Context, userId, leagueId string) (*sleeper.Roster, error) {
	for _, r := range f.rosters[leagueId] {
		if r.OwnerId == userId {
			r := r
			return &r, nil
		}
	}
	return nil, sleeper.ErrNotFound
}

func (f *fakeProvider) GetAllPlayers(_ context.Context, _ string) (sleeper.Players, error) {
	return f.players, nil
}

func setupTestStore(t *testing.T) *db.DB {
	t.Helper()
	store, err := db.Open(filepath.Join(t.TempDir(), "web.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func createAccount(t *testing.T, store *db.DB, username string) int64 {
	t.Helper()
	id, err := store.CreateAccount(domain.NewAccount{ExternalUsername: username, ExternalId: "s-" + username})
	if err != nil {
		t.Fatalf("Failed to create account %s: %v", username, err)
	}
	return id
}

func testConf() *util.AppConfig {
	conf := &util.AppConfig{}
	conf.Conf.Host = "localhost"
	conf.Conf.HttpPort = 9595
	conf.Conf.FeedLimit = 50
	conf.Conf.RateLimit = 1000
	conf.Conf.Sport = "nfl"
	conf.Conf.Season = "2025"
	return conf
}

type testServer struct {
	store   *db.DB
	handler *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := setupTestStore(t)
	server := NewServer(testConf(), store, newFakeProvider())
	t.Cleanup(server.Close)
	return &testServer{
		store:   store,
		handler: server.Handler(),
	}
}

// do sends a request as viewer (0 means anonymous) with an optional JSON body.
func (ts *testServer) do(t *testing.T, method, path string, viewer int64, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.RemoteAddr = "10.0.0.1:5555"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if viewer != 0 {
		req.Header.Set(ViewerHeader, strconv.FormatInt(viewer, 10))
	}
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return v
}
