package services

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/isdelr/bookshelf-be/internal/models"
)

// DefaultCatalog returns the built-in seed catalog keyed by ISBN.
func DefaultCatalog() map[string]models.Book {
	seed := []struct{ isbn, author, title string }{
		{"1", "Chinua Achebe", "Things Fall Apart"},
		{"2", "Hans Christian Andersen", "Fairy tales"},
		{"3", "Dante Alighieri", "The Divine Comedy"},
		{"4", "Unknown", "The Epic Of Gilgamesh"},
		{"5", "Unknown", "The Book Of Job"},
		{"6", "Unknown", "One Thousand and One Nights"},
		{"7", "Unknown", "Njál's Saga"},
		{"8", "Jane Austen", "Pride and Prejudice"},
		{"9", "Honoré de Balzac", "Le Père Goriot"},
		{"10", "Samuel Beckett", "Molloy, Malone Dies, The Unnamable, the trilogy"},
	}

	books := make(map[string]models.Book, len(seed))
	for _, s := range seed {
		books[s.isbn] = models.Book{ISBN: s.isbn, Author: s.author, Title: s.title, Reviews: models.Reviews{}}
	}
	return books
}

// LoadCatalogFile reads a seed catalog from a JSON object of ISBN to book.
// Books without a "reviews" key start without a reviews map.
func LoadCatalogFile(path string) (map[string]models.Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var raw map[string]models.Book
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	books := make(map[string]models.Book, len(raw))
	for isbn, book := range raw {
		if isbn == "" {
			return nil, fmt.Errorf("catalog file contains an empty ISBN")
		}
		book.ISBN = isbn
		books[isbn] = book
	}
	return books, nil
}
