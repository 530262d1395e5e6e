package credentials

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/jrsteele09/secops-console/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	_ "modernc.org/sqlite" // pure Go driver, registers "sqlite"
)

const createKVTable = `CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

var _ Store = (*SQLiteStore)(nil)

// SQLiteStore keeps the entries as rows of a key/value table. Save and Clear each run
// in a single transaction.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dbPath.
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
			return nil, errors.Wrap(err, "[NewSQLiteStore] create database directory")
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, errors.Wrap(err, "[NewSQLiteStore] open")
	}
	// One connection keeps ":memory:" databases shared between calls.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "[NewSQLiteStore] ping")
	}
	if _, err := db.ExecContext(ctx, createKVTable); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "[NewSQLiteStore] create table")
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Save(ctx context.Context, token string, user users.Profile) error {
	rawUser, err := EncodeProfile(user)
	if err != nil {
		return errors.Wrap(err, "[SQLiteStore.Save] encode profile")
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		const upsert = `INSERT INTO kv (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value`
		if _, err := tx.ExecContext(ctx, upsert, TokenKey, token); err != nil {
			return errors.Wrap(err, "[SQLiteStore.Save] token")
		}
		if _, err := tx.ExecContext(ctx, upsert, UserKey, rawUser); err != nil {
			return errors.Wrap(err, "[SQLiteStore.Save] user")
		}
		return nil
	})
}

func (s *SQLiteStore) Read(ctx context.Context) (string, *users.Profile) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM kv WHERE key IN (?, ?)`, TokenKey, UserKey)
	if err != nil {
		log.Err(err).Msg("Failed to read session from sqlite")
		return "", nil
	}
	defer rows.Close()

	values := make(map[string]string, 2)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			log.Err(err).Msg("Failed to scan session row")
			return "", nil
		}
		values[k] = v
	}
	if err := rows.Err(); err != nil {
		log.Err(err).Msg("Failed to iterate session rows")
		return "", nil
	}
	return values[TokenKey], DecodeProfile(values[UserKey])
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM kv WHERE key IN (?, ?)`, TokenKey, UserKey); err != nil {
			return errors.Wrap(err, "[SQLiteStore.Clear] delete")
		}
		return nil
	})
}

// putRaw writes a raw value under key, bypassing profile encoding.
func (s *SQLiteStore) putRaw(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

func (s *SQLiteStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "commit")
}
