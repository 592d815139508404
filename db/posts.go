package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/deemkeen/huddle/domain"
)

const (
	sqlPostColumns = `p.id, p.user_id, p.content, p.post_type, p.league_id, p.metadata, p.likes, p.visibility, p.created_at,
		u.display_name, u.sleeper_username, u.avatar_url`
	sqlSelectPosts = `SELECT ` + sqlPostColumns + ` FROM posts p
		INNER JOIN users u ON u.id = p.user_id`
	sqlNewestFirst = ` ORDER BY p.created_at DESC, p.id DESC LIMIT ?`

	sqlInsertPost            = `INSERT INTO posts(user_id, content, post_type, league_id, metadata, visibility) VALUES (?, ?, ?, ?, ?, ?)`
	sqlSelectPostById        = sqlSelectPosts + ` WHERE p.id = ?`
	sqlSelectAllPosts        = sqlSelectPosts + sqlNewestFirst
	sqlSelectPostsByAccount  = sqlSelectPosts + ` WHERE p.user_id = ?` + sqlNewestFirst
	sqlSelectPublicByAccount = sqlSelectPosts + ` WHERE p.user_id = ? AND p.visibility = 'public'` + sqlNewestFirst
	sqlIncrementLikes        = `UPDATE posts SET likes = likes + 1 WHERE id = ?`
	sqlSelectPostOwner       = `SELECT user_id FROM posts WHERE id = ?`
	sqlDeleteCommentsForPost = `DELETE FROM comments WHERE post_id = ?`
	sqlDeletePost            = `DELETE FROM posts WHERE id = ?`
)

// CreatePost stores a new post. Content is trimmed and must not be empty; the
// attachment, if any, is serialised to JSON text here and never parsed again
// by the store.
func (db *DB) CreatePost(draft domain.PostDraft) (int64, error) {
	content := strings.TrimSpace(draft.Content)
	if content == "" {
		return 0, domain.ErrEmptyContent
	}
	visibility, err := domain.ParseVisibility(string(draft.Visibility))
	if err != nil {
		return 0, err
	}
	metadata, err := domain.EncodeAttachment(draft.Attachment)
	if err != nil {
		return 0, err
	}
	var metadataText sql.NullString
	if metadata != nil {
		metadataText = sql.NullString{String: string(metadata), Valid: true}
	}

	var id int64
	err = db.wrapTransaction(func(tx *sql.Tx) error {
		res, err := tx.Exec(sqlInsertPost,
			draft.OwnerId,
			content,
			domain.NormalizeCategory(draft.Category),
			nullString(draft.LeagueId),
			metadataText,
			string(visibility),
		)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if isForeignKeyViolation(err) {
		return 0, fmt.Errorf("account %d: %w", draft.OwnerId, domain.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("create post: %w", err)
	}
	return id, nil
}

func (db *DB) ReadPost(id int64) (*domain.Post, error) {
	post, err := scanPost(db.db.QueryRow(sqlSelectPostById, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// ReadPosts returns the newest posts of every account, ignoring visibility.
func (db *DB) ReadPosts(limit int) ([]domain.Post, error) {
	rows, err := db.db.Query(sqlSelectAllPosts, postLimit(limit))
	if err != nil {
		return nil, err
	}
	return scanPosts(rows)
}

func (db *DB) ReadPostsByAccount(accountId int64, limit int) ([]domain.Post, error) {
	rows, err := db.db.Query(sqlSelectPostsByAccount, accountId, postLimit(limit))
	if err != nil {
		return nil, err
	}
	return scanPosts(rows)
}

// ReadPublicPostsByAccount is ReadPostsByAccount without private posts. The
// limit counts public posts only.
func (db *DB) ReadPublicPostsByAccount(accountId int64, limit int) ([]domain.Post, error) {
	rows, err := db.db.Query(sqlSelectPublicByAccount, accountId, postLimit(limit))
	if err != nil {
		return nil, err
	}
	return scanPosts(rows)
}

// IncrementLikes adds one like. There is no per-caller bookkeeping: every call
// counts, and an unknown post id is a no-op.
func (db *DB) IncrementLikes(postId int64) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlIncrementLikes, postId)
		return err
	})
}

// DeletePost removes a post and all of its comments in one transaction, but
// only when requesterId owns the post. It reports false, without touching
// anything, for a missing post or a different requester.
func (db *DB) DeletePost(postId, requesterId int64) (bool, error) {
	var deleted bool
	err := db.wrapTransaction(func(tx *sql.Tx) error {
		deleted = false

		var ownerId int64
		err := tx.QueryRow(sqlSelectPostOwner, postId).Scan(&ownerId)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		if ownerId != requesterId {
			log.Debug("refusing to delete post of another account", "post", postId, "owner", ownerId, "requester", requesterId)
			return nil
		}

		if _, err := tx.Exec(sqlDeleteCommentsForPost, postId); err != nil {
			return fmt.Errorf("delete comments of post %d: %w", postId, err)
		}
		if _, err := tx.Exec(sqlDeletePost, postId); err != nil {
			return fmt.Errorf("delete post %d: %w", postId, err)
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func scanPost(row rowScanner) (domain.Post, error) {
	var post domain.Post
	var category, leagueId, metadata, visibility, displayName, avatar sql.NullString
	var likes sql.NullInt64
	err := row.Scan(
		&post.Id,
		&post.OwnerId,
		&post.Content,
		&category,
		&leagueId,
		&metadata,
		&likes,
		&visibility,
		&post.CreatedAt,
		&displayName,
		&post.ExternalUsername,
		&avatar,
	)
	if err != nil {
		return post, err
	}

	post.Category = category.String
	if post.Category == "" {
		post.Category = domain.DefaultCategory
	}
	post.LeagueId = leagueId.String
	if metadata.Valid && metadata.String != "" {
		post.Metadata = json.RawMessage(metadata.String)
	}
	post.Likes = int(likes.Int64)
	post.Visibility = domain.Visibility(visibility.String)
	if post.Visibility == "" {
		post.Visibility = domain.VisibilityPublic
	}
	post.DisplayName = displayName.String
	if post.DisplayName == "" {
		post.DisplayName = post.ExternalUsername
	}
	post.AvatarRef = avatar.String
	return post, nil
}

func scanPosts(rows *sql.Rows) ([]domain.Post, error) {
	defer rows.Close()

	posts := []domain.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return posts, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}
