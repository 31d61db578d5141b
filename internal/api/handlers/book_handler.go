package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/bookshelf-be/internal/models"
	"github.com/isdelr/bookshelf-be/internal/services"
	"github.com/rs/zerolog/log"
)

// BookHandler handles HTTP requests for catalog lookups.
type BookHandler struct {
	service services.CatalogServiceProvider
	async   *services.AsyncCatalog
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(service services.CatalogServiceProvider, async *services.AsyncCatalog) *BookHandler {
	return &BookHandler{service: service, async: async}
}

// GetAll handles the request to list the whole catalog.
func (h *BookHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, envelope{
		"message": "Books retrieved successfully",
		"books":   h.service.GetAllBooks(),
	})
}

// GetByISBN handles the request to get a single book.
func (h *BookHandler) GetByISBN(w http.ResponseWriter, r *http.Request) {
	isbn := chi.URLParam(r, "isbn")
	book, err := h.service.GetBookByISBN(isbn)
	if err != nil {
		h.lookupFailed(w, err, "Book not found with the provided ISBN")
		return
	}
	writeJSON(w, http.StatusOK, envelope{"message": "Book found successfully", "book": book})
}

// GetByAuthor handles case-insensitive author substring search.
func (h *BookHandler) GetByAuthor(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.SearchByAuthor(chi.URLParam(r, "author"))
	if err != nil {
		h.lookupFailed(w, err, "No books found by this author")
		return
	}
	writeJSON(w, http.StatusOK, envelope{"message": "Books by author retrieved successfully", "books": books})
}

// GetByTitle handles case-insensitive title substring search.
func (h *BookHandler) GetByTitle(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.SearchByTitle(chi.URLParam(r, "title"))
	if err != nil {
		h.lookupFailed(w, err, "No books found with this title")
		return
	}
	writeJSON(w, http.StatusOK, envelope{"message": "Books by title retrieved successfully", "books": books})
}

// GetAllAsync awaits the delayed catalog listing.
func (h *BookHandler) GetAllAsync(w http.ResponseWriter, r *http.Request) {
	books, err := h.async.GetAllBooks(r.Context()).Await(r.Context())
	if err != nil {
		log.Warn().Err(err).Msg("Async catalog listing aborted")
		writeMessage(w, http.StatusInternalServerError, "Error retrieving books")
		return
	}
	writeJSON(w, http.StatusOK, envelope{"message": "Books retrieved successfully using async/await", "books": books})
}

// GetByAuthorAsync awaits the delayed author search.
func (h *BookHandler) GetByAuthorAsync(w http.ResponseWriter, r *http.Request) {
	books, err := h.async.SearchByAuthor(r.Context(), chi.URLParam(r, "author")).Await(r.Context())
	if err != nil {
		h.lookupFailed(w, err, "No books found by this author")
		return
	}
	writeJSON(w, http.StatusOK, envelope{"message": "Books by author retrieved successfully using async/await", "books": books})
}

// GetByISBNPromise resolves the delayed lookup through continuations.
func (h *BookHandler) GetByISBNPromise(w http.ResponseWriter, r *http.Request) {
	done := make(chan struct{})
	h.async.GetBookByISBN(r.Context(), chi.URLParam(r, "isbn")).Then(
		func(book models.Book) {
			writeJSON(w, http.StatusOK, envelope{"message": "Book found successfully using Promise", "book": book})
			close(done)
		},
		func(err error) {
			h.lookupFailed(w, err, "Book not found with the provided ISBN")
			close(done)
		},
	)
	<-done
}

// GetByTitlePromise resolves the delayed title search through continuations.
func (h *BookHandler) GetByTitlePromise(w http.ResponseWriter, r *http.Request) {
	done := make(chan struct{})
	h.async.SearchByTitle(r.Context(), chi.URLParam(r, "title")).Then(
		func(books map[string]models.Book) {
			writeJSON(w, http.StatusOK, envelope{"message": "Books by title retrieved successfully using Promise", "books": books})
			close(done)
		},
		func(err error) {
			h.lookupFailed(w, err, "No books found with this title")
			close(done)
		},
	)
	<-done
}

// lookupFailed answers 404 for expected misses and 500 otherwise.
func (h *BookHandler) lookupFailed(w http.ResponseWriter, err error, notFoundMsg string) {
	if errors.Is(err, services.ErrBookNotFound) || errors.Is(err, services.ErrNoMatch) {
		writeMessage(w, http.StatusNotFound, notFoundMsg)
		return
	}
	log.Error().Err(err).Msg("Catalog lookup failed")
	writeMessage(w, http.StatusInternalServerError, "Error retrieving books")
}
