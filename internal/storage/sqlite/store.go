// Package sqlite backs the two durable collaborators of the relay: the
// session token table written by the login flow and the per-room muted
// list slot.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/solidarity-overthrow/relay/internal/core"
	"github.com/solidarity-overthrow/relay/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	token      TEXT PRIMARY KEY,
	username   TEXT NOT NULL,
	user_id    TEXT NOT NULL,
	is_admin   INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
);
CREATE TABLE IF NOT EXISTS muted_lists (
	room     TEXT PRIMARY KEY,
	user_ids TEXT NOT NULL
);
`

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// modernc sqlite supports one writer at a time.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// CreateSession mints an opaque bearer token for the identity. Called
// by the login flow and by tests; the relay never creates sessions.
func (s *Store) CreateSession(ctx context.Context, identity domain.Identity) (string, error) {
	if err := identity.Validate(); err != nil {
		return "", err
	}
	token := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (token, username, user_id, is_admin) VALUES (?, ?, ?, ?)`,
		token, identity.Username, string(identity.UserID), identity.IsAdmin,
	)
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	return token, nil
}

func (s *Store) Lookup(ctx context.Context, token string) (domain.Identity, error) {
	var identity domain.Identity
	var userID string
	err := s.db.QueryRowContext(ctx,
		`SELECT username, user_id, is_admin FROM sessions WHERE token = ?`, token,
	).Scan(&identity.Username, &userID, &identity.IsAdmin)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Identity{}, core.ErrSessionNotFound
	}
	if err != nil {
		return domain.Identity{}, fmt.Errorf("lookup session: %w", err)
	}
	identity.UserID = domain.UserID(userID)
	return identity, nil
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// LoadMuted returns the muted set for a room. An absent slot is an
// empty set, not an error.
func (s *Store) LoadMuted(ctx context.Context, room string) ([]domain.UserID, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT user_ids FROM muted_lists WHERE room = ?`, room,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load muted list: %w", err)
	}
	var ids []domain.UserID
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("decode muted list: %w", err)
	}
	return ids, nil
}

func (s *Store) SaveMuted(ctx context.Context, room string, ids []domain.UserID) error {
	if ids == nil {
		ids = []domain.UserID{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode muted list: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO muted_lists (room, user_ids) VALUES (?, ?)
		 ON CONFLICT(room) DO UPDATE SET user_ids = excluded.user_ids`,
		room, string(raw),
	)
	if err != nil {
		return fmt.Errorf("save muted list: %w", err)
	}
	return nil
}
