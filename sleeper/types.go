package sleeper

import "fmt"

const avatarBaseURL = "https://sleepercdn.com/avatars/thumbs/"

type User struct {
	UserId      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar"`
}

type LeagueSettings struct {
	PlayoffTeams  int `json:"playoff_teams"`
	WaiverType    int `json:"waiver_type"`
	TradeDeadline int `json:"trade_deadline"`
}

type League struct {
	LeagueId        string             `json:"league_id"`
	Name            string             `json:"name"`
	Season          string             `json:"season"`
	Sport           string             `json:"sport"`
	Status          string             `json:"status"`
	TotalRosters    int                `json:"total_rosters"`
	Settings        LeagueSettings     `json:"settings"`
	ScoringSettings map[string]float64 `json:"scoring_settings"`
	RosterPositions []string           `json:"roster_positions"`
}

type RosterSettings struct {
	Wins               int `json:"wins"`
	Losses             int `json:"losses"`
	Ties               int `json:"ties"`
	Fpts               int `json:"fpts"`
	FptsDecimal        int `json:"fpts_decimal"`
	FptsAgainst        int `json:"fpts_against"`
	FptsAgainstDecimal int `json:"fpts_against_decimal"`
}

// PointsFor combines the whole and hundredths parts the API reports separately.
func (s RosterSettings) PointsFor() float64 {
	return float64(s.Fpts) + float64(s.FptsDecimal)/100
}

func (s RosterSettings) PointsAgainst() float64 {
	return float64(s.FptsAgainst) + float64(s.FptsAgainstDecimal)/100
}

type Roster struct {
	RosterId int            `json:"roster_id"`
	OwnerId  string         `json:"owner_id"`
	LeagueId string         `json:"league_id"`
	Players  []string       `json:"players"`
	Starters []string       `json:"starters"`
	Settings RosterSettings `json:"settings"`
}

type LeagueUser struct {
	UserId      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar"`
	Metadata    struct {
		TeamName string `json:"team_name"`
	} `json:"metadata"`
}

type Player struct {
	PlayerId     string `json:"player_id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Position     string `json:"position"`
	Team         string `json:"team"`
	InjuryStatus string `json:"injury_status"`
}

// Players maps player ids to their records, as served by /players/{sport}.
type Players map[string]Player

func (p Player) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	}
	return fmt.Sprintf("%s %s", p.FirstName, p.LastName)
}

// AvatarURL turns an avatar id into its CDN thumbnail URL.
func AvatarURL(avatarId string) string {
	if avatarId == "" {
		return ""
	}
	return avatarBaseURL + avatarId
}
