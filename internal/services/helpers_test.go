package services

import (
	"sync"
	"testing"

	"github.com/isdelr/bookshelf-be/internal/models"
	"github.com/stretchr/testify/require"
)

type recordedEvent struct {
	eventType string
	isbn      string
	username  string
}

type fakeEvents struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (f *fakeEvents) CreateEvent(eventType, level, message string, isbn, username *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e := recordedEvent{eventType: eventType}
	if isbn != nil {
		e.isbn = *isbn
	}
	if username != nil {
		e.username = *username
	}
	f.events = append(f.events, e)
	return nil
}

func (f *fakeEvents) GetRecentEvents(limit int) ([]models.Event, error) { return nil, nil }

func (f *fakeEvents) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, e := range f.events {
		out = append(out, e.eventType)
	}
	return out
}

type fakeHub struct {
	mu     sync.Mutex
	topics []string
}

func (f *fakeHub) BroadcastTo(topic string, message []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topics = append(f.topics, topic)
}

func identity(t *testing.T, username string) models.Identity {
	t.Helper()
	id, err := models.NewIdentity(username)
	require.NoError(t, err)
	return id
}

func testSeed() map[string]models.Book {
	return map[string]models.Book{
		"ISBN001": {Author: "Robert Martin", Title: "Clean Code", Reviews: models.Reviews{}},
		"ISBN002": {Author: "J.R.R. Tolkien", Title: "The Hobbit"},
		"ISBN003": {Author: "Leo Tolstoy", Title: "War and Peace", Reviews: models.Reviews{"bob": "long"}},
	}
}
