// Package roster turns provider records into post attachments and league
// summaries.
package roster

import (
	"errors"
	"fmt"

	"github.com/deemkeen/huddle/domain"
	"github.com/deemkeen/huddle/sleeper"
)

const (
	unknownField  = "N/A"
	defaultStatus = "Active"
)

var ErrNoSelection = errors.New("no players selected")

// Enrich resolves player ids against the players dump. Ids the dump does not
// know are skipped.
func Enrich(ids []string, players sleeper.Players) []domain.PlayerSummary {
	out := make([]domain.PlayerSummary, 0, len(ids))
	for _, id := range ids {
		p, ok := players[id]
		if !ok {
			continue
		}
		out = append(out, Summarize(id, p))
	}
	return out
}

func Summarize(id string, p sleeper.Player) domain.PlayerSummary {
	return domain.PlayerSummary{
		Id:       id,
		Name:     p.FullName(),
		Position: orDefault(p.Position, unknownField),
		Team:     orDefault(p.Team, unknownField),
		Status:   orDefault(p.InjuryStatus, defaultStatus),
	}
}

// Attach builds the attachment for one of the three share modes. For
// ShareSelected only the selected ids that are on the roster are kept, and
// at least one must remain.
func Attach(mode domain.ShareMode, league *sleeper.League, r *sleeper.Roster, players sleeper.Players, selected []string) (*domain.Attachment, error) {
	if league == nil || r == nil {
		return nil, fmt.Errorf("attach %s: missing league or roster", mode)
	}

	var ids []string
	switch mode {
	case domain.ShareFullRoster:
		ids = r.Players
	case domain.ShareStarters:
		ids = r.Starters
	case domain.ShareSelected:
		onRoster := make(map[string]bool, len(r.Players))
		for _, id := range r.Players {
			onRoster[id] = true
		}
		for _, id := range selected {
			if onRoster[id] {
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			return nil, ErrNoSelection
		}
	default:
		return nil, fmt.Errorf("attach: unknown share mode %q", mode)
	}

	return &domain.Attachment{
		ShareMode:  mode,
		LeagueId:   league.LeagueId,
		LeagueName: league.Name,
		Players:    Enrich(ids, players),
	}, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
