package db

import (
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/deemkeen/huddle/domain"
)

const (
	sqlInsertFollow    = `INSERT INTO follows(follower_id, following_id) VALUES (?, ?)`
	sqlDeleteFollow    = `DELETE FROM follows WHERE follower_id = ? AND following_id = ?`
	sqlSelectFollowing = `SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = ? AND following_id = ?)`
	sqlSelectFollowers = `SELECT ` + sqlAccountColumns + ` FROM users u
		INNER JOIN follows f ON u.id = f.follower_id
		WHERE f.following_id = ?`
	sqlSelectFollowedAccounts = `SELECT ` + sqlAccountColumns + ` FROM users u
		INNER JOIN follows f ON u.id = f.following_id
		WHERE f.follower_id = ?`
)

// Follow adds the edge follower -> followed. It reports false without an
// error for a self-follow (no store access at all) and for an edge that
// already exists; the unique index is the only guard, so of two concurrent
// calls for the same pair exactly one reports true.
func (db *DB) Follow(followerId, followedId int64) (bool, error) {
	if followerId == followedId {
		return false, nil
	}

	err := db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlInsertFollow, followerId, followedId)
		return err
	})
	if isUniqueViolation(err) {
		log.Debug("already following", "follower", followerId, "followed", followedId)
		return false, nil
	}
	if isForeignKeyViolation(err) {
		return false, fmt.Errorf("follow %d -> %d: %w", followerId, followedId, domain.ErrNotFound)
	}
	if err != nil {
		return false, fmt.Errorf("follow %d -> %d: %w", followerId, followedId, err)
	}
	return true, nil
}

// Unfollow removes the edge if present. Removing a missing edge is a no-op.
func (db *DB) Unfollow(followerId, followedId int64) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlDeleteFollow, followerId, followedId)
		return err
	})
}

func (db *DB) IsFollowing(followerId, followedId int64) (bool, error) {
	var exists bool
	err := db.db.QueryRow(sqlSelectFollowing, followerId, followedId).Scan(&exists)
	return exists, err
}

// ReadFollowers lists the accounts following id, in no particular order.
func (db *DB) ReadFollowers(id int64) ([]domain.Account, error) {
	rows, err := db.db.Query(sqlSelectFollowers, id)
	if err != nil {
		return nil, err
	}
	return scanAccounts(rows)
}

// ReadFollowing lists the accounts id follows, in no particular order.
func (db *DB) ReadFollowing(id int64) ([]domain.Account, error) {
	rows, err := db.db.Query(sqlSelectFollowedAccounts, id)
	if err != nil {
		return nil, err
	}
	return scanAccounts(rows)
}
