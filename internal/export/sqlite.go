package export

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"

	"slackdm/internal/slack"
)

// SQLiteArchive is the optional structured export sink: one row per message
// plus the user map, with the raw record kept alongside the indexed columns.
type SQLiteArchive struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteArchive opens (or creates) the archive database at path.
func NewSQLiteArchive(path string, logger *slog.Logger) (*SQLiteArchive, error) {
	if err := makeDirs(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	// Single connection for SQLite.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	a := &SQLiteArchive{db: db, logger: logger}
	if err := a.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database migration failed: %w", err)
	}
	return a, nil
}

func (a *SQLiteArchive) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS messages (
		ts         TEXT PRIMARY KEY,
		channel    TEXT NOT NULL,
		user       TEXT,
		subtype    TEXT,
		thread_ts  TEXT,
		text       TEXT,
		raw        TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_channel ON messages(channel, ts);
	CREATE INDEX IF NOT EXISTS idx_messages_thread ON messages(thread_ts);

	CREATE TABLE IF NOT EXISTS users (
		id           TEXT PRIMARY KEY,
		display_name TEXT
	);`

	if _, err := a.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// SaveMessages upserts the message list for one channel. Re-archiving a
// range is idempotent: ts is the identity.
func (a *SQLiteArchive) SaveMessages(ctx context.Context, channel string, msgs []slack.Message) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO messages (ts, channel, user, subtype, thread_ts, text, raw)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(ts) DO UPDATE SET
			channel = excluded.channel,
			user = excluded.user,
			subtype = excluded.subtype,
			thread_ts = excluded.thread_ts,
			text = excluded.text,
			raw = excluded.raw`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for i := range msgs {
		msg := &msgs[i]
		raw, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("marshal message %s: %w", msg.TS, err)
		}
		if _, err := stmt.ExecContext(ctx,
			msg.TS, channel, msg.User, msg.Subtype, msg.ThreadTS, msg.Text, string(raw)); err != nil {
			return fmt.Errorf("insert message %s: %w", msg.TS, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	a.logger.Info("archived messages to sqlite", "channel", channel, "count", len(msgs))
	return nil
}

// SaveUsers upserts the id to display-name map.
func (a *SQLiteArchive) SaveUsers(ctx context.Context, users map[string]string) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO users (id, display_name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET display_name = excluded.display_name`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for id, name := range users {
		if _, err := stmt.ExecContext(ctx, id, name); err != nil {
			return fmt.Errorf("insert user %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (a *SQLiteArchive) Close() error {
	return a.db.Close()
}
