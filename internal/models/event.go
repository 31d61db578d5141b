package models

import "time"

// Event represents a recorded activity in the service.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`  // e.g., "review.upsert", "user.register"
	Level     string    `json:"level"` // e.g., "info", "warn"
	Message   string    `json:"message"`
	ISBN      *string   `json:"isbn,omitempty"`     // Nullable for account events
	Username  *string   `json:"username,omitempty"` // Nullable for anonymous events
	CreatedAt time.Time `json:"createdAt"`
}
