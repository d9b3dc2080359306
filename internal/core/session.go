package core

import "github.com/solidarity-overthrow/relay/internal/domain"

// Session is one live connection plus its resolved identity.
// Identity fields never change after construction; privilege cannot
// escalate mid-session.
type Session struct {
	conn     Conn
	identity domain.Identity
}

func NewSession(conn Conn, identity domain.Identity) *Session {
	return &Session{conn: conn, identity: identity}
}

func (s *Session) Identity() domain.Identity { return s.identity }
func (s *Session) Conn() Conn                { return s.conn }

// SessionInfo is a read-only view for the admin surface (no transport fields).
type SessionInfo struct {
	Username string        `json:"username"`
	UserID   domain.UserID `json:"userId"`
	IsAdmin  bool          `json:"isAdmin"`
}

// Status is a point-in-time snapshot of one room.
type Status struct {
	Sessions []SessionInfo   `json:"sessions"`
	Muted    []domain.UserID `json:"muted"`
}
