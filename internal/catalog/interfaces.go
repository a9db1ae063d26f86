package catalog

import (
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// BookStore is the book repository contract the catalog composes.
type BookStore interface {
	CreateBook(ownerID uint, in books.BookInput) (*entities.Book, error)
	UpdateBook(bookID, requestorID uint, patch books.BookPatch) error
	DeleteBook(bookID, requestorID uint) error
	GetBookByID(id uint) (*entities.BookSummary, error)
	GetPDF(id uint) ([]byte, error)
	GetCoverImage(id uint) ([]byte, string, error)
	ListAll(offset, limit int) ([]entities.BookSummary, int64, error)
	ListByOwner(ownerID uint, offset, limit int) ([]entities.BookSummary, int64, error)
	SearchByTitle(query string) ([]entities.BookSummary, error)
}

// FavoriteStore is the ownership and favorite index.
type FavoriteStore interface {
	IsOwner(userID, bookID uint) (bool, error)
	SetFavorite(userID, bookID uint, desired bool) error
	IsFavorite(userID, bookID uint) (bool, error)
	FavoriteBookIDs(userID uint, bookIDs []uint) (map[uint]bool, error)
	ListFavorites(userID uint, offset, limit int) ([]entities.BookSummary, int64, error)
}

// AuditLogger receives successful catalog writes. It may be nil.
type AuditLogger interface {
	LogBook(userID uint, action string, bookID uint, title string)
	LogFavorite(userID, bookID uint, added bool)
}
