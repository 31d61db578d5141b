package models

import "time"

// User represents a registered account.
type User struct {
	Username  string    `json:"username"`
	Password  string    `json:"-"` // Plaintext or bcrypt hash depending on storage mode; never exposed
	CreatedAt time.Time `json:"createdAt"`
}
