// Copyright (c) 2026 desokit Contributors.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package chatstore keeps conversations, messages and read markers in a
// local SQLite database, so that unread counts survive restarts and threads
// can be shown before the node answers.
package chatstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Driver is the database/sql driver name.
const Driver = "sqlite"

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// Conversation is a row of the CONVERSATION table.  Rows are keyed by
// owner and ID, so several accounts can share one database.
type Conversation struct {
	ID           string  `db:"ID"`
	OwnerKey     string  `db:"OWNER_KEY"`
	OtherKey     string  `db:"OTHER_KEY"`
	GroupKeyName string  `db:"GROUP_KEY_NAME"`
	ChatType     string  `db:"CHAT_TYPE"`
	Username     *string `db:"USERNAME"`
	LastMessage  *string `db:"LAST_MESSAGE"`
	LastTS       int64   `db:"LAST_TS"`
}

// LastTime returns the timestamp of the last message.
func (c Conversation) LastTime() time.Time {
	return fromNanos(c.LastTS)
}

// Message is a row of the MESSAGE table.
type Message struct {
	OwnerKey       string `db:"OWNER_KEY"`
	ID             string `db:"ID"`
	ConversationID string `db:"CONVERSATION_ID"`
	SenderKey      string `db:"SENDER_KEY"`
	RecipientKey   string `db:"RECIPIENT_KEY"`
	Text           string `db:"TXT"`
	TS             int64  `db:"TS"`
	Encrypted      bool   `db:"ENCRYPTED"`
	Failed         bool   `db:"FAILED"`
}

// Time returns the message timestamp.
func (m Message) Time() time.Time {
	return fromNanos(m.TS)
}

// Store is the chat database.
type Store struct {
	db *sqlx.DB
	lg *slog.Logger
}

// Option configures the Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(lg *slog.Logger) Option {
	return func(s *Store) {
		if lg == nil {
			lg = slog.Default()
		}
		s.lg = lg
	}
}

// Open opens the database at dsn (a file name or ":memory:") and migrates
// it to the latest schema.
func Open(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	db, err := sqlx.Open(Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dsn, err)
	}
	s, err := New(ctx, db, opts...)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database and migrates it to the latest schema.
func New(ctx context.Context, db *sqlx.DB, opts ...Option) (*Store, error) {
	s := &Store{db: db, lg: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	// sqlite allows one writer; a single connection also keeps ":memory:"
	// databases alive across calls.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("foreign keys: %w", err)
	}
	if err := Migrate(ctx, db.DB, s.lg); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

const stmtUpsertConversation = `INSERT INTO CONVERSATION
  (ID, OWNER_KEY, OTHER_KEY, GROUP_KEY_NAME, CHAT_TYPE, USERNAME, LAST_MESSAGE, LAST_TS)
VALUES
  (:ID, :OWNER_KEY, :OTHER_KEY, :GROUP_KEY_NAME, :CHAT_TYPE, :USERNAME, :LAST_MESSAGE, :LAST_TS)
ON CONFLICT (OWNER_KEY, ID) DO UPDATE SET
  USERNAME = COALESCE(excluded.USERNAME, USERNAME),
  LAST_MESSAGE = CASE WHEN excluded.LAST_TS >= LAST_TS THEN excluded.LAST_MESSAGE ELSE LAST_MESSAGE END,
  LAST_TS = MAX(LAST_TS, excluded.LAST_TS),
  UPDATED_AT = CAST(strftime('%s','now') AS INTEGER)`

// UpsertConversations inserts or updates conversations.  The last message
// is only replaced by a newer one.
func (s *Store) UpsertConversations(ctx context.Context, cc []Conversation) error {
	if len(cc) == 0 {
		return nil
	}
	return s.tx(ctx, func(tx *sqlx.Tx) error {
		for _, c := range cc {
			if c.GroupKeyName == "" {
				c.GroupKeyName = "default-key"
			}
			if c.ChatType == "" {
				c.ChatType = "DM"
			}
			if _, err := tx.NamedExecContext(ctx, stmtUpsertConversation, c); err != nil {
				return fmt.Errorf("upsert conversation %s: %w", c.ID, err)
			}
		}
		return nil
	})
}

const stmtUpsertMessage = `INSERT INTO MESSAGE
  (OWNER_KEY, ID, CONVERSATION_ID, SENDER_KEY, RECIPIENT_KEY, TXT, TS, ENCRYPTED, FAILED)
VALUES
  (:OWNER_KEY, :ID, :CONVERSATION_ID, :SENDER_KEY, :RECIPIENT_KEY, :TXT, :TS, :ENCRYPTED, :FAILED)
ON CONFLICT (OWNER_KEY, ID) DO UPDATE SET
  TXT = excluded.TXT,
  ENCRYPTED = excluded.ENCRYPTED,
  FAILED = excluded.FAILED`

// UpsertMessages inserts or updates messages.  The conversations of the
// same owner must exist.
func (s *Store) UpsertMessages(ctx context.Context, mm []Message) error {
	if len(mm) == 0 {
		return nil
	}
	return s.tx(ctx, func(tx *sqlx.Tx) error {
		for _, m := range mm {
			if _, err := tx.NamedExecContext(ctx, stmtUpsertMessage, m); err != nil {
				return fmt.Errorf("upsert message %s: %w", m.ID, err)
			}
		}
		return nil
	})
}

// Conversations returns the conversations of owner, newest first.
func (s *Store) Conversations(ctx context.Context, owner string) ([]Conversation, error) {
	var cc []Conversation
	const stmt = `SELECT ID, OWNER_KEY, OTHER_KEY, GROUP_KEY_NAME, CHAT_TYPE, USERNAME, LAST_MESSAGE, LAST_TS
FROM CONVERSATION WHERE OWNER_KEY = ? ORDER BY LAST_TS DESC, ID`
	if err := s.db.SelectContext(ctx, &cc, stmt, owner); err != nil {
		return nil, fmt.Errorf("conversations: %w", err)
	}
	return cc, nil
}

// Conversation returns one conversation of owner.
func (s *Store) Conversation(ctx context.Context, owner, id string) (Conversation, error) {
	var c Conversation
	const stmt = `SELECT ID, OWNER_KEY, OTHER_KEY, GROUP_KEY_NAME, CHAT_TYPE, USERNAME, LAST_MESSAGE, LAST_TS
FROM CONVERSATION WHERE OWNER_KEY = ? AND ID = ?`
	if err := s.db.GetContext(ctx, &c, stmt, owner, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Conversation{}, ErrNotFound
		}
		return Conversation{}, fmt.Errorf("conversation: %w", err)
	}
	return c, nil
}

// Messages returns up to limit newest messages of the conversation of owner
// in chronological order.  Non-positive limit returns all messages.
func (s *Store) Messages(ctx context.Context, owner, convID string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = -1
	}
	var mm []Message
	const stmt = `SELECT OWNER_KEY, ID, CONVERSATION_ID, SENDER_KEY, RECIPIENT_KEY, TXT, TS, ENCRYPTED, FAILED
FROM MESSAGE WHERE OWNER_KEY = ? AND CONVERSATION_ID = ? ORDER BY TS DESC, ID DESC LIMIT ?`
	if err := s.db.SelectContext(ctx, &mm, stmt, owner, convID, limit); err != nil {
		return nil, fmt.Errorf("messages: %w", err)
	}
	slices.Reverse(mm)
	return mm, nil
}

// MarkRead moves the read marker of the conversation of owner to ts.  The
// marker never moves backwards.
func (s *Store) MarkRead(ctx context.Context, owner, convID string, ts time.Time) error {
	const stmt = `INSERT INTO READ_MARKER (OWNER_KEY, CONVERSATION_ID, TS) VALUES (?, ?, ?)
ON CONFLICT (OWNER_KEY, CONVERSATION_ID) DO UPDATE SET TS = MAX(TS, excluded.TS)`
	if _, err := s.db.ExecContext(ctx, stmt, owner, convID, toNanos(ts)); err != nil {
		return fmt.Errorf("mark read %s: %w", convID, err)
	}
	return nil
}

// ReadMarker returns the read marker of the conversation of owner.
func (s *Store) ReadMarker(ctx context.Context, owner, convID string) (time.Time, error) {
	var ts int64
	if err := s.db.GetContext(ctx, &ts, `SELECT TS FROM READ_MARKER WHERE OWNER_KEY = ? AND CONVERSATION_ID = ?`, owner, convID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, ErrNotFound
		}
		return time.Time{}, fmt.Errorf("read marker: %w", err)
	}
	return fromNanos(ts), nil
}

// UnreadCount returns the number of messages sent by otherKey in the
// conversation of owner after its read marker.
func (s *Store) UnreadCount(ctx context.Context, owner, convID, otherKey string) (int, error) {
	const stmt = `SELECT COUNT(*) FROM MESSAGE M
WHERE M.OWNER_KEY = ? AND M.CONVERSATION_ID = ? AND M.SENDER_KEY = ?
  AND M.TS > COALESCE((SELECT R.TS FROM READ_MARKER R
    WHERE R.OWNER_KEY = M.OWNER_KEY AND R.CONVERSATION_ID = M.CONVERSATION_ID), 0)`
	var n int
	if err := s.db.GetContext(ctx, &n, stmt, owner, convID, otherKey); err != nil {
		return 0, fmt.Errorf("unread count: %w", err)
	}
	return n, nil
}

// UnreadCounts returns the unread counts of all conversations of owner that
// have unread messages.
func (s *Store) UnreadCounts(ctx context.Context, owner string) (map[string]int, error) {
	const stmt = `SELECT M.CONVERSATION_ID, COUNT(*) FROM MESSAGE M
JOIN CONVERSATION C ON C.OWNER_KEY = M.OWNER_KEY AND C.ID = M.CONVERSATION_ID
WHERE C.OWNER_KEY = ? AND M.SENDER_KEY <> C.OWNER_KEY
  AND M.TS > COALESCE((SELECT R.TS FROM READ_MARKER R
    WHERE R.OWNER_KEY = M.OWNER_KEY AND R.CONVERSATION_ID = M.CONVERSATION_ID), 0)
GROUP BY M.CONVERSATION_ID`
	rows, err := s.db.QueryContext(ctx, stmt, owner)
	if err != nil {
		return nil, fmt.Errorf("unread counts: %w", err)
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var (
			id string
			n  int
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("unread counts: %w", err)
		}
		out[id] = n
	}
	return out, rows.Err()
}

// tx runs fn in a transaction.
func (s *Store) tx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			s.lg.WarnContext(ctx, "rollback failed", "error", rerr)
		}
		return err
	}
	return tx.Commit()
}

func toNanos(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromNanos(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}
