// Package domain contains entity types without logic, just meta-data
package domain

import "errors"

const MaxUsernameLen = 36

var (
	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameEmpty   = errors.New("username empty")
)

type UserID string

// Identity is the resolved owner of a session token. All fields are
// fixed at login time and immutable for the life of a connection.
type Identity struct {
	Username string `json:"username"`
	UserID   UserID `json:"userId"`
	IsAdmin  bool   `json:"isAdmin"`
}

func (id Identity) Validate() error {
	if len(id.Username) == 0 {
		return ErrUsernameEmpty
	}
	if len(id.Username) > MaxUsernameLen {
		return ErrUsernameTooLong
	}
	return nil
}
