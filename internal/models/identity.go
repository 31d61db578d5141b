package models

import "errors"

// Identity is the authenticated caller of a request. The zero value carries no
// username and is refused by every operation that requires one.
type Identity struct {
	username string
}

// NewIdentity wraps an authenticated username.
func NewIdentity(username string) (Identity, error) {
	if username == "" {
		return Identity{}, errors.New("identity requires a username")
	}
	return Identity{username: username}, nil
}

// Username returns the authenticated username.
func (i Identity) Username() string { return i.username }

// IsZero reports whether no user is attached.
func (i Identity) IsZero() bool { return i.username == "" }
