package common

import "github.com/deemkeen/huddle/domain"

type SessionState uint

const (
	FeedView SessionState = iota
	ComposeView
	PeopleView
	FollowersView
	FollowingView
)

// PostCreatedMsg is sent once a draft has been stored.
type PostCreatedMsg struct {
	Id         int64
	Visibility domain.Visibility
}

// ReloadFeedMsg asks the feed to fetch its posts again.
type ReloadFeedMsg struct{}

// FollowChangedMsg is sent after the session account followed or unfollowed
// AccountId.
type FollowChangedMsg struct {
	AccountId int64
	Following bool
}

// Store is the part of the database the TUI works against.
type Store interface {
	ReadFeed(viewerId int64, limit int, mode domain.FeedMode) ([]domain.Post, error)
	IncrementLikes(postId int64) error
	CreatePost(draft domain.PostDraft) (int64, error)

	ReadAccountSummaries(viewerId int64, limit int) ([]domain.AccountSummary, error)
	ReadFollowers(id int64) ([]domain.Account, error)
	ReadFollowing(id int64) ([]domain.Account, error)
	Follow(followerId, followedId int64) (bool, error)
	Unfollow(followerId, followedId int64) error
}
