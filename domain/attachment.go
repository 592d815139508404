package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ShareMode says which slice of a roster a post carries.
type ShareMode string

const (
	ShareFullRoster ShareMode = "full_roster"
	ShareStarters   ShareMode = "starters"
	ShareSelected   ShareMode = "selected"
)

func (m ShareMode) Valid() bool {
	switch m {
	case ShareFullRoster, ShareStarters, ShareSelected:
		return true
	}
	return false
}

// Label renders "full_roster" as "Full Roster".
func (m ShareMode) Label() string {
	words := strings.Split(string(m), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

type PlayerSummary struct {
	Id       string `json:"id"`
	Name     string `json:"name"`
	Position string `json:"position"`
	Team     string `json:"team"`
	Status   string `json:"status"`
}

func (p PlayerSummary) Active() bool {
	return p.Status == "Active"
}

// Attachment is a roster snapshot embedded in a post. The ShareMode is the
// variant tag; every variant carries the same league and player payload.
type Attachment struct {
	ShareMode  ShareMode       `json:"share_type"`
	LeagueId   string          `json:"league_id"`
	LeagueName string          `json:"league_name"`
	Players    []PlayerSummary `json:"players"`
}

var errMalformedAttachment = errors.New("malformed attachment")

func EncodeAttachment(a *Attachment) (json.RawMessage, error) {
	if a == nil {
		return nil, nil
	}
	if !a.ShareMode.Valid() {
		return nil, fmt.Errorf("%w: unknown share mode %q", errMalformedAttachment, a.ShareMode)
	}
	return json.Marshal(a)
}

// DecodeAttachment checks shape only: a known share mode and a players list.
// Cross-field consistency is not validated.
func DecodeAttachment(raw []byte) (*Attachment, error) {
	var a Attachment
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedAttachment, err)
	}
	if !a.ShareMode.Valid() {
		return nil, fmt.Errorf("%w: unknown share mode %q", errMalformedAttachment, a.ShareMode)
	}
	if a.Players == nil {
		return nil, fmt.Errorf("%w: missing players", errMalformedAttachment)
	}
	return &a, nil
}
