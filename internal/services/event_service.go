package services

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/bookshelf-be/internal/models"
)

// EventServiceProvider defines the interface for event services.
type EventServiceProvider interface {
	CreateEvent(eventType, level, message string, isbn, username *string) error
	GetRecentEvents(limit int) ([]models.Event, error)
}

// EventService records activity in the events table.
type EventService struct {
	db  *sql.DB
	now func() time.Time
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{db: db, now: time.Now}
}

// CreateEvent logs a new event to the database.
func (s *EventService) CreateEvent(eventType, level, message string, isbn, username *string) error {
	event := models.Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Level:     level,
		Message:   message,
		ISBN:      isbn,
		Username:  username,
		CreatedAt: s.now().UTC(),
	}

	stmt, err := s.db.Prepare("INSERT INTO events (id, type, level, message, isbn, username, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.Exec(event.ID, event.Type, event.Level, event.Message, event.ISBN, event.Username, event.CreatedAt)
	return err
}

// GetRecentEvents retrieves the most recent events, newest first.
func (s *EventService) GetRecentEvents(limit int) ([]models.Event, error) {
	rows, err := s.db.Query("SELECT id, type, level, message, isbn, username, created_at FROM events ORDER BY created_at DESC, rowid DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var event models.Event
		var isbn, username sql.NullString
		if err := rows.Scan(&event.ID, &event.Type, &event.Level, &event.Message, &isbn, &username, &event.CreatedAt); err != nil {
			return nil, err
		}
		if isbn.Valid {
			event.ISBN = &isbn.String
		}
		if username.Valid {
			event.Username = &username.String
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
