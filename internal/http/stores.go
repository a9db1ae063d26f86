package http

import (
	"context"

	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// CatalogService is the catalog contract the book and favorite controllers
// serve. *catalog.Service implements it.
type CatalogService interface {
	ListAll(page, pageSize int) (catalog.Page, error)
	ListByOwner(userID uint, page, pageSize int) (catalog.Page, error)
	ListFavorites(userID uint, page, pageSize int) (catalog.Page, error)
	Search(title string) ([]entities.BookSummary, error)
	GetBook(id uint) (*entities.BookSummary, error)
	GetPDF(id uint) ([]byte, error)
	GetCover(id uint) ([]byte, string, error)
	CreateBook(ownerID uint, in books.BookInput) (*entities.BookSummary, error)
	UpdateBook(bookID, requestorID uint, patch books.BookPatch) (*entities.BookSummary, error)
	DeleteBook(bookID, requestorID uint) error
	SetFavorite(userID, bookID uint, desired bool) error
	IsFavorite(userID, bookID uint) (bool, error)
	FavoriteFlags(userID uint, items []entities.BookSummary) (map[uint]bool, error)
}

// ActivityReader lists a user's audit trail.
type ActivityReader interface {
	GetEvents(userID uint, eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error)
}

// Pinger is a dependency the health check probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }
