package roster

import (
	"sort"

	"github.com/deemkeen/huddle/sleeper"
)

const (
	FormatPPR      = "PPR"
	FormatHalfPPR  = "Half PPR"
	FormatStandard = "Standard"
)

// ScoringFormat classifies a league by its points per reception.
func ScoringFormat(league *sleeper.League) string {
	switch league.ScoringSettings["rec"] {
	case 1:
		return FormatPPR
	case 0.5:
		return FormatHalfPPR
	}
	return FormatStandard
}

type Standing struct {
	Rank          int     `json:"rank"`
	Team          string  `json:"team"`
	OwnerId       string  `json:"owner_id"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	Ties          int     `json:"ties"`
	PointsFor     float64 `json:"points_for"`
	PointsAgainst float64 `json:"points_against"`
	WinPct        float64 `json:"win_pct"`
}

// WinPct ignores ties; a team without decisions has 0.
func WinPct(wins, losses int) float64 {
	games := wins + losses
	if games == 0 {
		return 0
	}
	return float64(wins) / float64(games)
}

// WaiverLabel names the waiver type codes the provider reports.
func WaiverLabel(waiverType int) string {
	switch waiverType {
	case 0:
		return "Rolling"
	case 1:
		return "Reverse Standings"
	case 2:
		return "FAAB"
	}
	return "Unknown"
}

// Standings ranks rosters by wins, then points for. Rosters whose owner is
// not among users are listed as "Unknown".
func Standings(rosters []sleeper.Roster, users []sleeper.LeagueUser) []Standing {
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.UserId] = u.DisplayName
	}

	rows := make([]Standing, 0, len(rosters))
	for _, r := range rosters {
		team, ok := names[r.OwnerId]
		if !ok || team == "" {
			team = "Unknown"
		}
		rows = append(rows, Standing{
			Team:          team,
			OwnerId:       r.OwnerId,
			Wins:          r.Settings.Wins,
			Losses:        r.Settings.Losses,
			Ties:          r.Settings.Ties,
			PointsFor:     r.Settings.PointsFor(),
			PointsAgainst: r.Settings.PointsAgainst(),
			WinPct:        WinPct(r.Settings.Wins, r.Settings.Losses),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Wins != rows[j].Wins {
			return rows[i].Wins > rows[j].Wins
		}
		return rows[i].PointsFor > rows[j].PointsFor
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

// Summary is the league detail view.
type Summary struct {
	LeagueId      string     `json:"league_id"`
	Name          string     `json:"name"`
	Season        string     `json:"season"`
	Scoring       string     `json:"scoring"`
	Teams         int        `json:"teams"`
	PlayoffTeams  int        `json:"playoff_teams"`
	TradeDeadline int        `json:"trade_deadline"`
	WaiverType    int        `json:"waiver_type"`
	Waivers       string     `json:"waivers"`
	RosterSize    int        `json:"roster_size"`
	Standings     []Standing `json:"standings"`
}

func SummarizeLeague(league *sleeper.League, rosters []sleeper.Roster, users []sleeper.LeagueUser) Summary {
	return Summary{
		LeagueId:      league.LeagueId,
		Name:          league.Name,
		Season:        league.Season,
		Scoring:       ScoringFormat(league),
		Teams:         league.TotalRosters,
		PlayoffTeams:  league.Settings.PlayoffTeams,
		TradeDeadline: league.Settings.TradeDeadline,
		WaiverType:    league.Settings.WaiverType,
		Waivers:       WaiverLabel(league.Settings.WaiverType),
		RosterSize:    len(league.RosterPositions),
		Standings:     Standings(rosters, users),
	}
}
