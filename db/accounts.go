package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/deemkeen/huddle/domain"
)

const (
	sqlAccountColumns = `u.id, u.sleeper_username, u.sleeper_user_id, u.display_name, u.bio, u.avatar_url, u.created_at`

	sqlInsertAccount           = `INSERT INTO users(sleeper_username, sleeper_user_id, display_name, bio, avatar_url) VALUES (?, ?, ?, ?, ?)`
	sqlSelectAccountById       = `SELECT ` + sqlAccountColumns + ` FROM users u WHERE u.id = ?`
	sqlSelectAccountByUsername = `SELECT ` + sqlAccountColumns + ` FROM users u WHERE u.sleeper_username = ?`
	sqlSelectAccountByExtId    = `SELECT ` + sqlAccountColumns + ` FROM users u WHERE u.sleeper_user_id = ?`
	sqlSelectAllAccounts       = `SELECT ` + sqlAccountColumns + ` FROM users u ORDER BY u.created_at DESC, u.id DESC LIMIT ?`
	sqlUpdateDisplayName       = `UPDATE users SET display_name = ? WHERE id = ?`
	sqlUpdateBio               = `UPDATE users SET bio = ? WHERE id = ?`

	sqlSummaryColumns = sqlAccountColumns + `,
		(SELECT COUNT(*) FROM posts p WHERE p.user_id = u.id) AS post_count,
		(SELECT COUNT(*) FROM follows f WHERE f.follower_id = u.id) AS following_count,
		(SELECT COUNT(*) FROM follows f WHERE f.following_id = u.id) AS follower_count,
		EXISTS(SELECT 1 FROM follows f WHERE f.follower_id = ? AND f.following_id = u.id) AS is_following`
	// the viewer id 0 matches no account, so nobody is excluded
	sqlSelectAccountSummaries = `SELECT ` + sqlSummaryColumns + ` FROM users u
		WHERE u.id != ?
		ORDER BY u.created_at DESC, u.id DESC LIMIT ?`
	sqlSelectLeaderboard = `SELECT ` + sqlSummaryColumns + ` FROM users u
		ORDER BY (SELECT COUNT(*) FROM posts p WHERE p.user_id = u.id) +
			(SELECT COUNT(*) FROM follows f WHERE f.following_id = u.id) DESC,
			u.created_at DESC, u.id DESC LIMIT ?`

	sqlCountPostsByAccount = `SELECT COUNT(*) FROM posts WHERE user_id = ?`
	sqlCountFollowing      = `SELECT COUNT(*) FROM follows WHERE follower_id = ?`
	sqlCountFollowers      = `SELECT COUNT(*) FROM follows WHERE following_id = ?`
)

// CreateAccount registers a linked Sleeper account. A username or external id
// that is already taken yields domain.ErrAlreadyExists and leaves the store
// untouched.
func (db *DB) CreateAccount(acc domain.NewAccount) (int64, error) {
	displayName := acc.DisplayName
	if displayName == "" {
		displayName = acc.ExternalUsername
	}

	var id int64
	err := db.wrapTransaction(func(tx *sql.Tx) error {
		res, err := tx.Exec(sqlInsertAccount,
			acc.ExternalUsername,
			acc.ExternalId,
			displayName,
			nullString(acc.Bio),
			nullString(acc.AvatarRef),
		)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if isUniqueViolation(err) {
		log.Debug("account already exists", "username", acc.ExternalUsername, "externalId", acc.ExternalId)
		return 0, domain.ErrAlreadyExists
	}
	if err != nil {
		return 0, fmt.Errorf("create account %s: %w", acc.ExternalUsername, err)
	}
	return id, nil
}

func (db *DB) ReadAccById(id int64) (*domain.Account, error) {
	return scanAccountRow(db.db.QueryRow(sqlSelectAccountById, id))
}

func (db *DB) ReadAccByExternalUsername(username string) (*domain.Account, error) {
	return scanAccountRow(db.db.QueryRow(sqlSelectAccountByUsername, username))
}

// ReadAccByExternalId finds the account linked to a Sleeper user id. The id
// is stable across username changes and letter case.
func (db *DB) ReadAccByExternalId(externalId string) (*domain.Account, error) {
	return scanAccountRow(db.db.QueryRow(sqlSelectAccountByExtId, externalId))
}

// UpdateProfile applies only the non-empty fields; an empty string means
// "leave unchanged", so a bio cannot be cleared through this call.
func (db *DB) UpdateProfile(id int64, displayName, bio string) error {
	if displayName == "" && bio == "" {
		return nil
	}
	return db.wrapTransaction(func(tx *sql.Tx) error {
		if displayName != "" {
			if _, err := tx.Exec(sqlUpdateDisplayName, displayName, id); err != nil {
				return err
			}
		}
		if bio != "" {
			if _, err := tx.Exec(sqlUpdateBio, bio, id); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReadAllAccounts lists accounts newest first, for discovery.
func (db *DB) ReadAllAccounts(limit int) ([]domain.Account, error) {
	rows, err := db.db.Query(sqlSelectAllAccounts, accountLimit(limit))
	if err != nil {
		return nil, err
	}
	return scanAccounts(rows)
}

func (db *DB) ReadAccountStats(id int64) (domain.AccountStats, error) {
	var stats domain.AccountStats
	if err := db.db.QueryRow(sqlCountPostsByAccount, id).Scan(&stats.Posts); err != nil {
		return stats, err
	}
	if err := db.db.QueryRow(sqlCountFollowing, id).Scan(&stats.Following); err != nil {
		return stats, err
	}
	if err := db.db.QueryRow(sqlCountFollowers, id).Scan(&stats.Followers); err != nil {
		return stats, err
	}
	return stats, nil
}

// ReadAccountSummaries lists accounts other than the viewer, newest first,
// with their stats and whether the viewer follows them. A viewerId of 0
// lists everyone.
func (db *DB) ReadAccountSummaries(viewerId int64, limit int) ([]domain.AccountSummary, error) {
	rows, err := db.db.Query(sqlSelectAccountSummaries, viewerId, viewerId, accountLimit(limit))
	if err != nil {
		return nil, err
	}
	return scanAccountSummaries(rows)
}

// ReadLeaderboard ranks accounts by posts plus followers. Ties keep the
// newest-first account order.
func (db *DB) ReadLeaderboard(limit int) ([]domain.AccountSummary, error) {
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	rows, err := db.db.Query(sqlSelectLeaderboard, 0, limit)
	if err != nil {
		return nil, err
	}
	return scanAccountSummaries(rows)
}

func scanAccountSummaries(rows *sql.Rows) ([]domain.AccountSummary, error) {
	defer rows.Close()

	summaries := []domain.AccountSummary{}
	for rows.Next() {
		var s domain.AccountSummary
		var displayName, bio, avatar sql.NullString
		err := rows.Scan(
			&s.Id, &s.ExternalUsername, &s.ExternalId, &displayName, &bio, &avatar, &s.CreatedAt,
			&s.Stats.Posts, &s.Stats.Following, &s.Stats.Followers, &s.IsFollowing,
		)
		if err != nil {
			return summaries, err
		}
		s.DisplayName = displayName.String
		if s.DisplayName == "" {
			s.DisplayName = s.ExternalUsername
		}
		s.Bio = bio.String
		s.AvatarRef = avatar.String
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func scanAccount(row rowScanner) (domain.Account, error) {
	var acc domain.Account
	var displayName, bio, avatar sql.NullString
	err := row.Scan(&acc.Id, &acc.ExternalUsername, &acc.ExternalId, &displayName, &bio, &avatar, &acc.CreatedAt)
	if err != nil {
		return acc, err
	}
	acc.DisplayName = displayName.String
	if acc.DisplayName == "" {
		acc.DisplayName = acc.ExternalUsername
	}
	acc.Bio = bio.String
	acc.AvatarRef = avatar.String
	return acc, nil
}

func scanAccountRow(row *sql.Row) (*domain.Account, error) {
	acc, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

func scanAccounts(rows *sql.Rows) ([]domain.Account, error) {
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return accounts, err
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}
