package domain

import "time"

type NewAccount struct {
	ExternalUsername string
	ExternalId       string
	DisplayName      string
	Bio              string
	AvatarRef        string
}

type Account struct {
	Id               int64
	ExternalUsername string
	ExternalId       string
	DisplayName      string
	Bio              string // empty when never set
	AvatarRef        string // Sleeper avatar id, empty when absent
	CreatedAt        time.Time
}

// AccountStats is always computed from live rows.
type AccountStats struct {
	Posts     int `json:"posts"`
	Following int `json:"following"`
	Followers int `json:"followers"`
}

// AccountSummary is an account with its live stats, as seen by a viewer.
// IsFollowing is false when there is no viewer.
type AccountSummary struct {
	Account
	Stats       AccountStats
	IsFollowing bool
}

// Activity ranks accounts on the leaderboard.
func (s AccountSummary) Activity() int {
	return s.Stats.Posts + s.Stats.Followers
}
