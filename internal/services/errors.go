package services

import "errors"

// Expected failures. Handlers map each one to a client-facing status.
var (
	ErrMissingCredentials = errors.New("username and password are required")
	ErrInvalidUsername    = errors.New("username must be at least 3 characters long and alphanumeric")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthenticated    = errors.New("user not authenticated")
	ErrSessionNotFound    = errors.New("session not found or revoked")

	ErrBookNotFound      = errors.New("book not found")
	ErrNoMatch           = errors.New("no matching books")
	ErrNoReviews         = errors.New("no reviews found for this book")
	ErrReviewNotFound    = errors.New("review not found for this user")
	ErrMissingReviewText = errors.New("review text is required")
)
