package roster

import (
	"math"
	"testing"

	"github.com/deemkeen/huddle/sleeper"
)

func TestScoringFormat(t *testing.T) {
	tests := []struct {
		rec      float64
		set      bool
		expected string
	}{
		{1, true, FormatPPR},
		{0.5, true, FormatHalfPPR},
		{0, true, FormatStandard},
		{0, false, FormatStandard},
	}

	for _, tt := range tests {
		league := &sleeper.League{ScoringSettings: map[string]float64{}}
		if tt.set {
			league.ScoringSettings["rec"] = tt.rec
		}
		if got := ScoringFormat(league); got != tt.expected {
			t.Errorf("rec=%v set=%v: expected %s, got %s", tt.rec, tt.set, tt.expected, got)
		}
	}
}

func TestStandingsOrdering(t *testing.T) {
	rosters := []sleeper.Roster{
		{OwnerId: "a", Settings: sleeper.RosterSettings{Wins: 5, Losses: 3, Fpts: 900}},
		{OwnerId: "b", Settings: sleeper.RosterSettings{Wins: 7, Losses: 1, Fpts: 850}},
		{OwnerId: "c", Settings: sleeper.RosterSettings{Wins: 5, Losses: 3, Fpts: 900, FptsDecimal: 50}},
		{OwnerId: "ghost", Settings: sleeper.RosterSettings{Losses: 8}},
	}
	users := []sleeper.LeagueUser{
		{UserId: "a", DisplayName: "Alpha"},
		{UserId: "b", DisplayName: "Bravo"},
		{UserId: "c", DisplayName: "Charlie"},
	}

	rows := Standings(rosters, users)
	order := []string{"Bravo", "Charlie", "Alpha", "Unknown"}
	if len(rows) != len(order) {
		t.Fatalf("Expected %d rows, got %d", len(order), len(rows))
	}
	for i, team := range order {
		if rows[i].Team != team {
			t.Errorf("Rank %d: expected %s, got %s", i+1, team, rows[i].Team)
		}
		if rows[i].Rank != i+1 {
			t.Errorf("Expected rank %d, got %d", i+1, rows[i].Rank)
		}
	}
	if math.Abs(rows[1].PointsFor-900.5) > 1e-9 {
		t.Errorf("Expected decimal points folded in, got %v", rows[1].PointsFor)
	}
}

func TestWinPct(t *testing.T) {
	if got := WinPct(3, 1); got != 0.75 {
		t.Errorf("Expected 0.75, got %v", got)
	}
	if got := WinPct(0, 0); got != 0 {
		t.Errorf("Expected 0 without decisions, got %v", got)
	}
}

func TestStandingsCarryWinPct(t *testing.T) {
	rosters := []sleeper.Roster{
		{OwnerId: "a", Settings: sleeper.RosterSettings{Wins: 3, Losses: 1, Ties: 4}},
		{OwnerId: "b", Settings: sleeper.RosterSettings{Ties: 2}},
	}
	rows := Standings(rosters, nil)
	if rows[0].WinPct != 0.75 {
		t.Errorf("Expected ties ignored for 0.75, got %v", rows[0].WinPct)
	}
	if rows[1].WinPct != 0 {
		t.Errorf("Expected 0 for a tie-only record, got %v", rows[1].WinPct)
	}
}

func TestWaiverLabel(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{0, "Rolling"},
		{1, "Reverse Standings"},
		{2, "FAAB"},
		{7, "Unknown"},
	}
	for _, tt := range tests {
		if got := WaiverLabel(tt.code); got != tt.want {
			t.Errorf("WaiverLabel(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestSummarizeLeague(t *testing.T) {
	league := &sleeper.League{
		LeagueId:        "1",
		Name:            "Dynasty Degens",
		TotalRosters:    12,
		Settings:        sleeper.LeagueSettings{PlayoffTeams: 6, WaiverType: 2, TradeDeadline: 11},
		ScoringSettings: map[string]float64{"rec": 1},
		RosterPositions: []string{"QB", "RB", "RB", "WR", "WR", "TE", "FLEX", "BN"},
	}

	s := SummarizeLeague(league, nil, nil)
	if s.Scoring != FormatPPR || s.Teams != 12 || s.PlayoffTeams != 6 || s.RosterSize != 8 {
		t.Errorf("Unexpected summary %+v", s)
	}
	if s.WaiverType != 2 || s.Waivers != "FAAB" {
		t.Errorf("Expected FAAB waivers, got %d %q", s.WaiverType, s.Waivers)
	}
	if s.Standings == nil || len(s.Standings) != 0 {
		t.Errorf("Expected empty standings, got %v", s.Standings)
	}
}
