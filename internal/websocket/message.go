package websocket

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
)

// Message defines the structure for websocket messages.
type Message struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload"`
}

// Actions pushed to clients.
const (
	ActionReviewUpdated = "review_updated"
	ActionReviewDeleted = "review_deleted"
	ActionCatalogStats  = "catalog_stats"
	ActionError         = "error"
)

// Actions accepted from clients.
const (
	ActionSubscribe   = "subscribe"
	ActionUnsubscribe = "unsubscribe"
)

// GlobalTopic receives every review change and the periodic stats.
const GlobalTopic = "global"

// BookTopic is the topic for changes to one book.
func BookTopic(isbn string) string { return "book:" + isbn }

// ReviewPayload describes a single review change.
type ReviewPayload struct {
	ISBN      string    `json:"isbn"`
	Username  string    `json:"username"`
	Review    string    `json:"review,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewReviewMessage encodes a review change.
func NewReviewMessage(action, isbn, username, review string) []byte {
	return encode(Message{
		Action:  action,
		Payload: ReviewPayload{ISBN: isbn, Username: username, Review: review, Timestamp: time.Now().UTC()},
	})
}

// NewStatsMessage encodes a catalog statistics snapshot.
func NewStatsMessage(stats interface{}) []byte {
	return encode(Message{Action: ActionCatalogStats, Payload: stats})
}

// NewErrorMessage encodes an error for a single client.
func NewErrorMessage(msg string) []byte {
	return encode(Message{Action: ActionError, Payload: map[string]string{"message": msg}})
}

func encode(msg Message) []byte {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("action", msg.Action).Msg("Failed to encode websocket message")
		return nil
	}
	return data
}
