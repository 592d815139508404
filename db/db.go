package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/deemkeen/huddle/util"
	"modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

// DB is the database struct.
type DB struct {
	db *sql.DB
}

var (
	dbInstance *DB
	dbOnce     sync.Once
	dbPath     = util.DatabaseFileName
)

const (
	defaultPostLimit        = 50
	defaultAccountLimit     = 100
	defaultLeaderboardLimit = 10
	maxBusyRetries          = 5
)

// SetPath changes the file GetDB opens. It has no effect after the first GetDB call.
func SetPath(path string) {
	dbPath = path
}

func GetDB() *DB {
	dbOnce.Do(func() {
		database, err := Open(util.ResolveFilePath(dbPath))
		if err != nil {
			panic(err)
		}
		dbInstance = database
	})

	return dbInstance
}

// Open opens (and creates if needed) the SQLite file at path and brings the
// schema up to date. Foreign keys and the busy timeout are set through the
// DSN so every pooled connection gets them.
func Open(path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)", path)
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	var journalMode string
	if err := sqlDB.QueryRow("PRAGMA journal_mode=WAL").Scan(&journalMode); err != nil {
		log.Warn("Failed to enable WAL mode", "err", err)
	} else {
		log.Debug("Database journal mode", "mode", journalMode)
	}

	database := &DB{db: sqlDB}
	if err := database.CreateDB(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("create schema in %s: %w", path, err)
	}

	log.Info("Database initialized", "path", path)
	return database, nil
}

func (db *DB) Close() error {
	return db.db.Close()
}

// wrapTransaction runs the given function within a transaction. The whole
// transaction is retried when SQLite reports the database as busy.
func (db *DB) wrapTransaction(f func(tx *sql.Tx) error) error {
	for attempt := 0; ; attempt++ {
		err := db.runTransaction(f)
		if err != nil && isBusy(err) && attempt < maxBusyRetries {
			log.Debug("database busy, retrying transaction", "attempt", attempt+1)
			time.Sleep(time.Duration(attempt+1) * 25 * time.Millisecond)
			continue
		}
		return err
	}
}

func (db *DB) runTransaction(f func(tx *sql.Tx) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("error starting transaction", "err", err)
		return err
	}
	if err := f(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error("error rolling back transaction", "err", rbErr)
		}
		log.Debug("transaction rolled back", "err", err)
		return err
	}
	if err := tx.Commit(); err != nil {
		log.Error("error committing transaction", "err", err)
		return err
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func sqliteCode(err error) (int, bool) {
	var serr *sqlite.Error
	if errors.As(err, &serr) {
		return serr.Code(), true
	}
	return 0, false
}

func isBusy(err error) bool {
	code, ok := sqliteCode(err)
	if !ok {
		return false
	}
	primary := code & 0xff
	return primary == sqlitelib.SQLITE_BUSY || primary == sqlitelib.SQLITE_LOCKED
}

func isUniqueViolation(err error) bool {
	code, ok := sqliteCode(err)
	if !ok {
		return false
	}
	switch code {
	case sqlitelib.SQLITE_CONSTRAINT_UNIQUE, sqlitelib.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	case sqlitelib.SQLITE_CONSTRAINT:
		return strings.Contains(err.Error(), "UNIQUE constraint failed")
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	code, ok := sqliteCode(err)
	if !ok {
		return false
	}
	switch code {
	case sqlitelib.SQLITE_CONSTRAINT_FOREIGNKEY:
		return true
	case sqlitelib.SQLITE_CONSTRAINT:
		return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
	}
	return false
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func postLimit(limit int) int {
	if limit <= 0 {
		return defaultPostLimit
	}
	return limit
}

func accountLimit(limit int) int {
	if limit <= 0 {
		return defaultAccountLimit
	}
	return limit
}
