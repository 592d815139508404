package domain

import (
	"encoding/json"
	"strings"
	"time"
)

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// ParseVisibility maps "" to public.
func ParseVisibility(s string) (Visibility, error) {
	switch Visibility(strings.ToLower(strings.TrimSpace(s))) {
	case "", VisibilityPublic:
		return VisibilityPublic, nil
	case VisibilityPrivate:
		return VisibilityPrivate, nil
	}
	return "", ErrInvalidVisibility
}

// FeedMode selects the lens a viewer reads the feed through. It is distinct
// from a post's Visibility: public mode shows every public post plus private
// posts of the viewer's circle, private mode shows only the viewer's circle.
type FeedMode string

const (
	FeedPublic  FeedMode = "public"
	FeedPrivate FeedMode = "private"
)

func ParseFeedMode(s string) (FeedMode, error) {
	switch FeedMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", FeedPublic:
		return FeedPublic, nil
	case FeedPrivate:
		return FeedPrivate, nil
	}
	return "", ErrInvalidFeedMode
}

const DefaultCategory = "general"

// NormalizeCategory turns a label like "Trade Talk" into "trade_talk".
func NormalizeCategory(category string) string {
	c := strings.Join(strings.Fields(strings.ToLower(category)), "_")
	if c == "" {
		return DefaultCategory
	}
	return c
}

type PostDraft struct {
	OwnerId    int64
	Content    string
	Category   string
	LeagueId   string
	Attachment *Attachment
	Visibility Visibility
}

type Post struct {
	Id         int64
	OwnerId    int64
	Content    string
	Category   string
	LeagueId   string
	Metadata   json.RawMessage // stored verbatim, nil when nothing was attached
	Likes      int
	Visibility Visibility
	CreatedAt  time.Time
	// author fields joined from accounts
	DisplayName      string
	ExternalUsername string
	AvatarRef        string
}

// Attachment decodes Metadata. Malformed or unknown blobs report false.
func (p *Post) Attachment() (*Attachment, bool) {
	if len(p.Metadata) == 0 {
		return nil, false
	}
	a, err := DecodeAttachment(p.Metadata)
	if err != nil {
		return nil, false
	}
	return a, true
}

type Comment struct {
	Id        int64
	PostId    int64
	AuthorId  int64
	Content   string
	CreatedAt time.Time
	// author fields joined from accounts
	DisplayName      string
	ExternalUsername string
}
