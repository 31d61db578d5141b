package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/bookshelf-be/internal/auth"
	"github.com/isdelr/bookshelf-be/internal/services"
	"github.com/rs/zerolog/log"
)

// ReviewRecorder counts successful review mutations.
type ReviewRecorder interface {
	RecordReviewMutation(action string)
}

// ReviewHandler handles HTTP requests for book reviews.
type ReviewHandler struct {
	service  services.CatalogServiceProvider
	recorder ReviewRecorder
}

// NewReviewHandler creates a new ReviewHandler. recorder may be nil.
func NewReviewHandler(service services.CatalogServiceProvider, recorder ReviewRecorder) *ReviewHandler {
	return &ReviewHandler{service: service, recorder: recorder}
}

// Get handles the request for a book's reviews.
func (h *ReviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	isbn := chi.URLParam(r, "isbn")
	reviews, err := h.service.GetReviews(isbn)
	switch {
	case errors.Is(err, services.ErrBookNotFound):
		writeMessage(w, http.StatusNotFound, "Book not found with the provided ISBN")
	case errors.Is(err, services.ErrNoReviews):
		writeMessage(w, http.StatusNotFound, "No reviews found for this book")
	case err != nil:
		log.Error().Err(err).Str("isbn", isbn).Msg("Failed to get reviews")
		writeMessage(w, http.StatusInternalServerError, "Failed to retrieve reviews")
	default:
		writeJSON(w, http.StatusOK, envelope{"message": "Book reviews retrieved successfully", "reviews": reviews})
	}
}

// Upsert adds or replaces the caller's review. The text comes from the
// "review" query parameter.
func (h *ReviewHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusForbidden, "User not authenticated")
		return
	}

	isbn := chi.URLParam(r, "isbn")
	reviews, err := h.service.UpsertReview(isbn, identity, r.URL.Query().Get("review"))
	switch {
	case errors.Is(err, services.ErrMissingReviewText):
		writeMessage(w, http.StatusBadRequest, "Review text is required as query parameter")
	case errors.Is(err, services.ErrBookNotFound):
		writeMessage(w, http.StatusNotFound, "Book not found")
	case err != nil:
		log.Error().Err(err).Str("isbn", isbn).Str("username", identity.Username()).Msg("Failed to upsert review")
		writeMessage(w, http.StatusInternalServerError, "Failed to save review")
	default:
		h.record("upsert")
		writeJSON(w, http.StatusOK, envelope{"message": "Review added/updated successfully", "reviews": reviews})
	}
}

// Delete removes the caller's review.
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusForbidden, "User not authenticated")
		return
	}

	isbn := chi.URLParam(r, "isbn")
	reviews, err := h.service.DeleteReview(isbn, identity)
	switch {
	case errors.Is(err, services.ErrBookNotFound):
		writeMessage(w, http.StatusNotFound, "Book not found")
	case errors.Is(err, services.ErrReviewNotFound):
		writeMessage(w, http.StatusNotFound, "Review not found for this user")
	case err != nil:
		log.Error().Err(err).Str("isbn", isbn).Str("username", identity.Username()).Msg("Failed to delete review")
		writeMessage(w, http.StatusInternalServerError, "Failed to delete review")
	default:
		h.record("delete")
		writeJSON(w, http.StatusOK, envelope{"message": "Review deleted successfully", "reviews": reviews})
	}
}

func (h *ReviewHandler) record(action string) {
	if h.recorder != nil {
		h.recorder.RecordReviewMutation(action)
	}
}
