package services

import (
	"context"
	"time"

	"github.com/isdelr/bookshelf-be/internal/async"
	"github.com/isdelr/bookshelf-be/internal/models"
)

// AsyncCatalog exposes catalog lookups that resolve after a fixed delay.
// Results are the same as the synchronous calls.
type AsyncCatalog struct {
	catalog CatalogServiceProvider
	delay   time.Duration
}

// NewAsyncCatalog wraps catalog.
func NewAsyncCatalog(catalog CatalogServiceProvider, delay time.Duration) *AsyncCatalog {
	return &AsyncCatalog{catalog: catalog, delay: delay}
}

// GetAllBooks resolves to the whole catalog.
func (a *AsyncCatalog) GetAllBooks(ctx context.Context) *async.Future[map[string]models.Book] {
	return async.Run(ctx, a.delay, func() (map[string]models.Book, error) {
		return a.catalog.GetAllBooks(), nil
	})
}

// GetBookByISBN resolves to one book or ErrBookNotFound.
func (a *AsyncCatalog) GetBookByISBN(ctx context.Context, isbn string) *async.Future[models.Book] {
	return async.Run(ctx, a.delay, func() (models.Book, error) {
		return a.catalog.GetBookByISBN(isbn)
	})
}

// SearchByAuthor resolves to the matching books or ErrNoMatch.
func (a *AsyncCatalog) SearchByAuthor(ctx context.Context, query string) *async.Future[map[string]models.Book] {
	return async.Run(ctx, a.delay, func() (map[string]models.Book, error) {
		return a.catalog.SearchByAuthor(query)
	})
}

// SearchByTitle resolves to the matching books or ErrNoMatch.
func (a *AsyncCatalog) SearchByTitle(ctx context.Context, query string) *async.Future[map[string]models.Book] {
	return async.Run(ctx, a.delay, func() (map[string]models.Book, error) {
		return a.catalog.SearchByTitle(query)
	})
}
