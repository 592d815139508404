package roster

import (
	"context"
	"errors"

	"github.com/deemkeen/huddle/domain"
	"github.com/deemkeen/huddle/sleeper"
)

// LoadLeague fetches a league with its rosters and members and summarizes it.
func LoadLeague(ctx context.Context, p sleeper.Provider, leagueId string) (Summary, error) {
	league, err := p.GetLeague(ctx, leagueId)
	if err != nil {
		return Summary{}, err
	}
	rosters, err := p.GetLeagueRosters(ctx, leagueId)
	if err != nil {
		return Summary{}, err
	}
	users, err := p.GetLeagueUsers(ctx, leagueId)
	if err != nil {
		return Summary{}, err
	}
	return SummarizeLeague(league, rosters, users), nil
}

// Request names the roster slice a post should carry.
type Request struct {
	Sport    string
	LeagueId string
	Mode     domain.ShareMode
	Selected []string
}

// BuildAttachment fetches the owner's roster in the requested league and
// turns it into an attachment.
func BuildAttachment(ctx context.Context, p sleeper.Provider, externalUserId string, req Request) (*domain.Attachment, error) {
	league, err := p.GetLeague(ctx, req.LeagueId)
	if err != nil {
		return nil, err
	}
	r, err := p.GetUserRoster(ctx, externalUserId, req.LeagueId)
	if err != nil {
		return nil, err
	}
	sport := req.Sport
	if sport == "" {
		sport = league.Sport
	}
	players, err := p.GetAllPlayers(ctx, sport)
	if err != nil {
		return nil, err
	}
	return Attach(req.Mode, league, r, players, req.Selected)
}

// Record is one manager's line in a league.
type Record struct {
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	Ties          int     `json:"ties"`
	PointsFor     float64 `json:"points_for"`
	PointsAgainst float64 `json:"points_against"`
	WinPct        float64 `json:"win_pct"`
}

// AccountLeague is a league on a profile together with the owner's record in
// it. Record is nil when the user holds no roster there.
type AccountLeague struct {
	LeagueId string  `json:"league_id"`
	Name     string  `json:"name"`
	Season   string  `json:"season"`
	Status   string  `json:"status"`
	Teams    int     `json:"teams"`
	Scoring  string  `json:"scoring"`
	Record   *Record `json:"record"`
}

// LoadAccountLeagues lists the user's leagues for a sport and season with the
// record of the user's roster in each.
func LoadAccountLeagues(ctx context.Context, p sleeper.Provider, externalUserId, sport, season string) ([]AccountLeague, error) {
	leagues, err := p.GetUserLeagues(ctx, externalUserId, sport, season)
	if err != nil {
		return nil, err
	}

	out := make([]AccountLeague, 0, len(leagues))
	for i := range leagues {
		l := &leagues[i]
		entry := AccountLeague{
			LeagueId: l.LeagueId,
			Name:     l.Name,
			Season:   l.Season,
			Status:   l.Status,
			Teams:    l.TotalRosters,
			Scoring:  ScoringFormat(l),
		}

		r, err := p.GetUserRoster(ctx, externalUserId, l.LeagueId)
		switch {
		case errors.Is(err, sleeper.ErrNotFound):
		case err != nil:
			return nil, err
		default:
			entry.Record = &Record{
				Wins:          r.Settings.Wins,
				Losses:        r.Settings.Losses,
				Ties:          r.Settings.Ties,
				PointsFor:     r.Settings.PointsFor(),
				PointsAgainst: r.Settings.PointsAgainst(),
				WinPct:        WinPct(r.Settings.Wins, r.Settings.Losses),
			}
		}
		out = append(out, entry)
	}
	return out, nil
}
