package services

import (
	"fmt"
	"strings"
	"sync"

	"github.com/isdelr/bookshelf-be/internal/models"
	"github.com/isdelr/bookshelf-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

// CatalogServiceProvider defines the interface for catalog and review services.
type CatalogServiceProvider interface {
	GetAllBooks() map[string]models.Book
	GetBookByISBN(isbn string) (models.Book, error)
	SearchByAuthor(query string) (map[string]models.Book, error)
	SearchByTitle(query string) (map[string]models.Book, error)
	GetReviews(isbn string) (models.Reviews, error)
	UpsertReview(isbn string, who models.Identity, text string) (models.Reviews, error)
	DeleteReview(isbn string, who models.Identity) (models.Reviews, error)
	Stats() models.CatalogStats
}

// Broadcaster pushes messages to live feed subscribers of a topic.
type Broadcaster interface {
	BroadcastTo(topic string, message []byte)
}

// CatalogService owns the seeded books and their reviews.
type CatalogService struct {
	mu           sync.RWMutex
	books        map[string]*models.Book
	eventService EventServiceProvider
	hub          Broadcaster
}

// NewCatalogService creates a CatalogService seeded with books.
// eventService and hub may be nil.
func NewCatalogService(seed map[string]models.Book, eventService EventServiceProvider, hub Broadcaster) *CatalogService {
	books := make(map[string]*models.Book, len(seed))
	for isbn, b := range seed {
		book := b.Clone()
		book.ISBN = isbn
		books[isbn] = &book
	}
	return &CatalogService{books: books, eventService: eventService, hub: hub}
}

// GetAllBooks returns a snapshot of the whole catalog.
func (s *CatalogService) GetAllBooks() map[string]models.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter(func(*models.Book) bool { return true })
}

// GetBookByISBN retrieves a single book by its ISBN.
func (s *CatalogService) GetBookByISBN(isbn string) (models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	book, ok := s.books[isbn]
	if !ok {
		return models.Book{}, fmt.Errorf("isbn %s: %w", isbn, ErrBookNotFound)
	}
	return book.Clone(), nil
}

// SearchByAuthor returns every book whose author contains query, ignoring case.
func (s *CatalogService) SearchByAuthor(query string) (map[string]models.Book, error) {
	return s.search(query, func(b *models.Book) string { return b.Author })
}

// SearchByTitle returns every book whose title contains query, ignoring case.
func (s *CatalogService) SearchByTitle(query string) (map[string]models.Book, error) {
	return s.search(query, func(b *models.Book) string { return b.Title })
}

func (s *CatalogService) search(query string, field func(*models.Book) string) (map[string]models.Book, error) {
	needle := strings.ToLower(query)

	s.mu.RLock()
	matches := s.filter(func(b *models.Book) bool {
		return strings.Contains(strings.ToLower(field(b)), needle)
	})
	s.mu.RUnlock()

	if len(matches) == 0 {
		return nil, fmt.Errorf("query %q: %w", query, ErrNoMatch)
	}
	return matches, nil
}

// filter must be called with s.mu held.
func (s *CatalogService) filter(keep func(*models.Book) bool) map[string]models.Book {
	out := make(map[string]models.Book)
	for isbn, b := range s.books {
		if keep(b) {
			out[isbn] = b.Clone()
		}
	}
	return out
}

// GetReviews returns all reviews of a book. A missing and an empty reviews map
// are both reported as ErrNoReviews.
func (s *CatalogService) GetReviews(isbn string) (models.Reviews, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	book, ok := s.books[isbn]
	if !ok {
		return nil, fmt.Errorf("isbn %s: %w", isbn, ErrBookNotFound)
	}
	if len(book.Reviews) == 0 {
		return nil, fmt.Errorf("isbn %s: %w", isbn, ErrNoReviews)
	}
	return book.Reviews.Clone(), nil
}

// UpsertReview sets who's review of a book, overwriting any earlier one, and
// returns the book's updated reviews.
func (s *CatalogService) UpsertReview(isbn string, who models.Identity, text string) (models.Reviews, error) {
	if text == "" {
		return nil, ErrMissingReviewText
	}
	if who.IsZero() {
		return nil, ErrUnauthenticated
	}

	s.mu.Lock()
	book, ok := s.books[isbn]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("isbn %s: %w", isbn, ErrBookNotFound)
	}
	if book.Reviews == nil {
		book.Reviews = models.Reviews{}
	}
	book.Reviews[who.Username()] = text
	reviews := book.Reviews.Clone()
	s.mu.Unlock()

	s.notify("review.upsert", websocket.ActionReviewUpdated, isbn, who.Username(), text,
		fmt.Sprintf("User '%s' reviewed '%s'", who.Username(), book.Title))
	return reviews, nil
}

// DeleteReview removes who's review of a book and returns the remaining reviews.
// The reviews map is left in place even when it becomes empty.
func (s *CatalogService) DeleteReview(isbn string, who models.Identity) (models.Reviews, error) {
	if who.IsZero() {
		return nil, ErrUnauthenticated
	}

	s.mu.Lock()
	book, ok := s.books[isbn]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("isbn %s: %w", isbn, ErrBookNotFound)
	}
	if _, exists := book.Reviews[who.Username()]; !exists {
		s.mu.Unlock()
		return nil, fmt.Errorf("isbn %s, user %s: %w", isbn, who.Username(), ErrReviewNotFound)
	}
	delete(book.Reviews, who.Username())
	reviews := book.Reviews.Clone()
	s.mu.Unlock()

	s.notify("review.delete", websocket.ActionReviewDeleted, isbn, who.Username(), "",
		fmt.Sprintf("User '%s' deleted their review of '%s'", who.Username(), book.Title))
	return reviews, nil
}

// Stats counts books and reviews.
func (s *CatalogService) Stats() models.CatalogStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := models.CatalogStats{Books: len(s.books)}
	for _, b := range s.books {
		if len(b.Reviews) > 0 {
			stats.ReviewedBooks++
			stats.Reviews += len(b.Reviews)
		}
	}
	return stats
}

// notify records the mutation and pushes it to the book's live feed topic.
func (s *CatalogService) notify(eventType, action, isbn, username, text, msg string) {
	if s.eventService != nil {
		if err := s.eventService.CreateEvent(eventType, "info", msg, &isbn, &username); err != nil {
			log.Error().Err(err).Str("isbn", isbn).Msg("Failed to record review event")
		}
	}
	if s.hub != nil {
		payload := websocket.NewReviewMessage(action, isbn, username, text)
		s.hub.BroadcastTo(websocket.BookTopic(isbn), payload)
		s.hub.BroadcastTo(websocket.GlobalTopic, payload)
	}
}
