package db

import (
	"github.com/deemkeen/huddle/domain"
)

// The viewer's circle: the viewer plus every account the viewer follows.
const sqlViewerCircle = `p.user_id = ? OR p.user_id IN (SELECT following_id FROM follows WHERE follower_id = ?)`

// feedPredicate builds the WHERE clause for a feed mode.
//
// The modes are not complements. A private post by a stranger shows up in
// neither; a public post by a stranger only in public mode; anything by the
// viewer's circle shows up in both.
func feedPredicate(viewerId int64, mode domain.FeedMode) (string, []any, error) {
	switch mode {
	case domain.FeedPublic:
		return `p.visibility = 'public' OR (p.visibility = 'private' AND (` + sqlViewerCircle + `))`,
			[]any{viewerId, viewerId}, nil
	case domain.FeedPrivate:
		return sqlViewerCircle, []any{viewerId, viewerId}, nil
	}
	return "", nil, domain.ErrInvalidFeedMode
}

// ReadFeed assembles the viewer's feed, newest first. Posts created in the
// same second keep insertion order through the id tie-break.
func (db *DB) ReadFeed(viewerId int64, limit int, mode domain.FeedMode) ([]domain.Post, error) {
	predicate, args, err := feedPredicate(viewerId, mode)
	if err != nil {
		return nil, err
	}
	args = append(args, postLimit(limit))

	rows, err := db.db.Query(sqlSelectPosts+` WHERE (`+predicate+`)`+sqlNewestFirst, args...)
	if err != nil {
		return nil, err
	}
	return scanPosts(rows)
}
