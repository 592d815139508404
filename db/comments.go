package db

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/deemkeen/huddle/domain"
)

const (
	sqlInsertComment         = `INSERT INTO comments(post_id, user_id, content) VALUES (?, ?, ?)`
	sqlSelectCommentsForPost = `SELECT c.id, c.post_id, c.user_id, c.content, c.created_at, u.display_name, u.sleeper_username
		FROM comments c
		INNER JOIN users u ON u.id = c.user_id
		WHERE c.post_id = ?
		ORDER BY c.created_at ASC, c.id ASC`
)

// CreateComment attaches a comment to a post. Any account may comment on any
// post; visibility is not consulted.
func (db *DB) CreateComment(postId, authorId int64, content string) (int64, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return 0, domain.ErrEmptyContent
	}

	var id int64
	err := db.wrapTransaction(func(tx *sql.Tx) error {
		res, err := tx.Exec(sqlInsertComment, postId, authorId, content)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if isForeignKeyViolation(err) {
		return 0, fmt.Errorf("post %d or account %d: %w", postId, authorId, domain.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("create comment: %w", err)
	}
	return id, nil
}

// ReadComments returns a post's comments oldest first.
func (db *DB) ReadComments(postId int64) ([]domain.Comment, error) {
	rows, err := db.db.Query(sqlSelectCommentsForPost, postId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []domain.Comment{}
	for rows.Next() {
		var c domain.Comment
		var displayName sql.NullString
		if err := rows.Scan(&c.Id, &c.PostId, &c.AuthorId, &c.Content, &c.CreatedAt, &displayName, &c.ExternalUsername); err != nil {
			return comments, err
		}
		c.DisplayName = displayName.String
		if c.DisplayName == "" {
			c.DisplayName = c.ExternalUsername
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
