package db

import (
	"database/sql"

	"github.com/charmbracelet/log"
)

// Table and column names match the files written by the first version of the
// app, so an existing fantasy_social.db opens without a data migration.
const (
	sqlCreateUsersTable = `CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sleeper_username TEXT UNIQUE NOT NULL,
		sleeper_user_id TEXT UNIQUE NOT NULL,
		display_name TEXT,
		bio TEXT,
		avatar_url TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`

	sqlCreatePostsTable = `CREATE TABLE IF NOT EXISTS posts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		content TEXT NOT NULL,
		post_type TEXT DEFAULT 'general',
		league_id TEXT,
		metadata TEXT,
		likes INTEGER DEFAULT 0,
		visibility TEXT DEFAULT 'public',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users (id)
	)`

	sqlCreateFollowsTable = `CREATE TABLE IF NOT EXISTS follows (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		follower_id INTEGER NOT NULL,
		following_id INTEGER NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (follower_id) REFERENCES users (id),
		FOREIGN KEY (following_id) REFERENCES users (id),
		UNIQUE(follower_id, following_id)
	)`

	sqlCreateCommentsTable = `CREATE TABLE IF NOT EXISTS comments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		post_id INTEGER NOT NULL,
		user_id INTEGER NOT NULL,
		content TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (post_id) REFERENCES posts (id),
		FOREIGN KEY (user_id) REFERENCES users (id)
	)`

	sqlCreatePostsIndices = `
		CREATE INDEX IF NOT EXISTS idx_posts_user_id ON posts(user_id);
		CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at DESC);
	`

	sqlCreateFollowsIndices = `
		CREATE INDEX IF NOT EXISTS idx_follows_following_id ON follows(following_id);
	`

	sqlCreateCommentsIndices = `
		CREATE INDEX IF NOT EXISTS idx_comments_post_id ON comments(post_id);
	`
)

// CreateDB creates the database.
func (db *DB) CreateDB() error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		if err := db.createTableIfNotExists(tx, sqlCreateUsersTable, "users"); err != nil {
			return err
		}
		if err := db.createTableIfNotExists(tx, sqlCreatePostsTable, "posts"); err != nil {
			return err
		}
		if err := db.createTableIfNotExists(tx, sqlCreateFollowsTable, "follows"); err != nil {
			return err
		}
		if err := db.createTableIfNotExists(tx, sqlCreateCommentsTable, "comments"); err != nil {
			return err
		}

		// Older files predate the visibility flag.
		if err := db.addColumnIfMissing(tx, "posts", "visibility", "TEXT DEFAULT 'public'"); err != nil {
			return err
		}

		if _, err := tx.Exec(sqlCreatePostsIndices); err != nil {
			log.Warn("Failed to create posts indices", "err", err)
		}
		if _, err := tx.Exec(sqlCreateFollowsIndices); err != nil {
			log.Warn("Failed to create follows indices", "err", err)
		}
		if _, err := tx.Exec(sqlCreateCommentsIndices); err != nil {
			log.Warn("Failed to create comments indices", "err", err)
		}

		return nil
	})
}

func (db *DB) createTableIfNotExists(tx *sql.Tx, createSQL string, tableName string) error {
	_, err := tx.Exec(createSQL)
	if err != nil {
		log.Error("Error creating table", "table", tableName, "err", err)
		return err
	}
	log.Debug("Table created or already exists", "table", tableName)
	return nil
}

func (db *DB) addColumnIfMissing(tx *sql.Tx, table, column, definition string) error {
	var count int
	err := tx.QueryRow(`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`, table, column).Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if _, err := tx.Exec("ALTER TABLE " + table + " ADD COLUMN " + column + " " + definition); err != nil {
		return err
	}
	log.Info("Extended table with new column", "table", table, "column", column)
	return nil
}
