package core

import (
	"context"
	"errors"

	"github.com/solidarity-overthrow/relay/internal/domain"
)

// Frame is a JSON-encoded wire event.
type Frame []byte

var (
	ErrBackpressure    = errors.New("backpressure")
	ErrConnClosed      = errors.New("connection closed")
	ErrSessionNotFound = errors.New("session not found")
)

// Conn abstracts the transport endpoint of one connected session.
// Owned by the adapter; the adapter must Close() it.
type Conn interface {
	TrySend(Frame) error
	Close()
}

// SessionStore resolves opaque bearer tokens to identities. The login
// flow writes records; the relay only reads them.
type SessionStore interface {
	Lookup(ctx context.Context, token string) (domain.Identity, error)
}

// MuteStore is the durable slot holding the muted set for one room.
// The in-memory set is the source of truth for the live room; the slot
// exists so the set survives a restart.
type MuteStore interface {
	LoadMuted(ctx context.Context, room string) ([]domain.UserID, error)
	SaveMuted(ctx context.Context, room string, ids []domain.UserID) error
}
