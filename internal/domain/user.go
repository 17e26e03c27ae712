// Package domain contains entity without logic, just meta-data
package domain

import "errors"

const MaxNameLen = 72

var (
	ErrNameTooLong = errors.New("display name too long")
	ErrNameEmpty   = errors.New("display name empty")
)

type UserID string

// Identity is a validated user as resolved by the credential validator.
// It is captured once per connection and never re-resolved.
type Identity struct {
	ID   UserID `json:"id"`
	Name string `json:"userName"`
}

// NewIdentity is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewIdentity(id UserID, name string) (*Identity, error) {
	if len(name) == 0 {
		return nil, ErrNameEmpty
	}
	if len(name) > MaxNameLen {
		return nil, ErrNameTooLong
	}
	return &Identity{ID: id, Name: name}, nil
}
