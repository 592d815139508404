package web

import (
	"fmt"
	"time"

	"github.com/deemkeen/huddle/domain"
	"github.com/deemkeen/huddle/sleeper"
)

type AccountView struct {
	Id          int64                `json:"id"`
	Username    string               `json:"username"`
	DisplayName string               `json:"display_name"`
	Bio         string               `json:"bio,omitempty"`
	AvatarURL   string               `json:"avatar_url,omitempty"`
	JoinedAgo   string               `json:"joined_ago"`
	Stats       *domain.AccountStats `json:"stats,omitempty"`
	IsFollowing *bool                `json:"is_following,omitempty"`
}

// LeaderView is one row of the activity leaderboard.
type LeaderView struct {
	Rank     int         `json:"rank"`
	Account  AccountView `json:"account"`
	Activity int         `json:"activity"`
}

type PostView struct {
	Id         int64              `json:"id"`
	Author     AuthorView         `json:"author"`
	Content    string             `json:"content"`
	Category   string             `json:"category"`
	LeagueId   string             `json:"league_id,omitempty"`
	Visibility domain.Visibility  `json:"visibility"`
	Likes      int                `json:"likes"`
	CreatedAt  time.Time          `json:"created_at"`
	TimeAgo    string             `json:"time_ago"`
	Attachment *domain.Attachment `json:"attachment,omitempty"`
	Comments   []CommentView      `json:"comments,omitempty"`
}

type AuthorView struct {
	Id          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

type CommentView struct {
	Id        int64      `json:"id"`
	Author    AuthorView `json:"author"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	TimeAgo   string     `json:"time_ago"`
}

func newAccountView(acc domain.Account) AccountView {
	return AccountView{
		Id:          acc.Id,
		Username:    acc.ExternalUsername,
		DisplayName: acc.DisplayName,
		Bio:         acc.Bio,
		AvatarURL:   sleeper.AvatarURL(acc.AvatarRef),
		JoinedAgo:   formatTimeAgo(acc.CreatedAt),
	}
}

func newAccountViews(accounts []domain.Account) []AccountView {
	views := make([]AccountView, 0, len(accounts))
	for _, acc := range accounts {
		views = append(views, newAccountView(acc))
	}
	return views
}

// newSummaryView carries the follow state only when a viewer asked.
func newSummaryView(sum domain.AccountSummary, withFollow bool) AccountView {
	view := newAccountView(sum.Account)
	stats := sum.Stats
	view.Stats = &stats
	if withFollow {
		following := sum.IsFollowing
		view.IsFollowing = &following
	}
	return view
}

func newSummaryViews(summaries []domain.AccountSummary, withFollow bool) []AccountView {
	views := make([]AccountView, 0, len(summaries))
	for _, sum := range summaries {
		views = append(views, newSummaryView(sum, withFollow))
	}
	return views
}

// newPostView decodes the attachment for display; metadata that does not
// decode is left out.
func newPostView(p domain.Post) PostView {
	view := PostView{
		Id: p.Id,
		Author: AuthorView{
			Id:          p.OwnerId,
			Username:    p.ExternalUsername,
			DisplayName: p.DisplayName,
			AvatarURL:   sleeper.AvatarURL(p.AvatarRef),
		},
		Content:    p.Content,
		Category:   p.Category,
		LeagueId:   p.LeagueId,
		Visibility: p.Visibility,
		Likes:      p.Likes,
		CreatedAt:  p.CreatedAt,
		TimeAgo:    formatTimeAgo(p.CreatedAt),
	}
	if a, ok := p.Attachment(); ok {
		view.Attachment = a
	}
	return view
}

func newPostViews(posts []domain.Post) []PostView {
	views := make([]PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, newPostView(p))
	}
	return views
}

func newCommentView(cm domain.Comment) CommentView {
	return CommentView{
		Id: cm.Id,
		Author: AuthorView{
			Id:          cm.AuthorId,
			Username:    cm.ExternalUsername,
			DisplayName: cm.DisplayName,
		},
		Content:   cm.Content,
		CreatedAt: cm.CreatedAt,
		TimeAgo:   formatTimeAgo(cm.CreatedAt),
	}
}

func newCommentViews(comments []domain.Comment) []CommentView {
	views := make([]CommentView, 0, len(comments))
	for _, cm := range comments {
		views = append(views, newCommentView(cm))
	}
	return views
}

func formatTimeAgo(t time.Time) string {
	duration := time.Since(t)

	if duration < time.Minute {
		return "just now"
	} else if duration < time.Hour {
		mins := int(duration.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	} else if duration < 24*time.Hour {
		hours := int(duration.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	} else if duration < 30*24*time.Hour {
		days := int(duration.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	}
	return t.Format("Jan 2, 2006")
}
