// Package catalog composes the book repository and the favorite index into
// the operations the HTTP layer serves: paginated listings, title search and
// owner-checked writes.
package catalog

import (
	"strings"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// Service is the single catalog contract shared by every surface.
type Service struct {
	books     BookStore
	favorites FavoriteStore
	audit     AuditLogger
	pageSize  int
}

// NewService creates a catalog service. A non-positive pageSize selects
// DefaultPageSize.
func NewService(bookStore BookStore, favoriteStore FavoriteStore, auditLogger AuditLogger, pageSize int) *Service {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return &Service{
		books:     bookStore,
		favorites: favoriteStore,
		audit:     auditLogger,
		pageSize:  pageSize,
	}
}

// PageSize returns the default page size.
func (s *Service) PageSize() int {
	return s.pageSize
}

// ListAll returns one page of the whole catalog.
func (s *Service) ListAll(page, pageSize int) (Page, error) {
	page, pageSize, offset := s.clamp(page, pageSize)
	items, total, err := s.books.ListAll(offset, pageSize)
	if err != nil {
		return Page{}, err
	}
	return newPage(items, total, page, pageSize), nil
}

// ListByOwner returns one page of the books uploaded by userID.
func (s *Service) ListByOwner(userID uint, page, pageSize int) (Page, error) {
	page, pageSize, offset := s.clamp(page, pageSize)
	items, total, err := s.books.ListByOwner(userID, offset, pageSize)
	if err != nil {
		return Page{}, err
	}
	return newPage(items, total, page, pageSize), nil
}

// ListFavorites returns one page of the books userID has favorited.
func (s *Service) ListFavorites(userID uint, page, pageSize int) (Page, error) {
	page, pageSize, offset := s.clamp(page, pageSize)
	items, total, err := s.favorites.ListFavorites(userID, offset, pageSize)
	if err != nil {
		return Page{}, err
	}
	return newPage(items, total, page, pageSize), nil
}

// Search matches title substrings case-insensitively. An empty query is
// rejected rather than treated as "match all".
func (s *Service) Search(title string) ([]entities.BookSummary, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperr.Validation("search query is required")
	}
	return s.books.SearchByTitle(title)
}

// GetBook returns the metadata of one book.
func (s *Service) GetBook(id uint) (*entities.BookSummary, error) {
	return s.books.GetBookByID(id)
}

// GetPDF returns the PDF payload of a book.
func (s *Service) GetPDF(id uint) ([]byte, error) {
	return s.books.GetPDF(id)
}

// GetCover returns the cover image of a book and its media type.
func (s *Service) GetCover(id uint) ([]byte, string, error) {
	return s.books.GetCoverImage(id)
}

// CreateBook stores a new book owned by ownerID.
func (s *Service) CreateBook(ownerID uint, in books.BookInput) (*entities.BookSummary, error) {
	book, err := s.books.CreateBook(ownerID, in)
	if err != nil {
		return nil, err
	}
	if s.audit != nil {
		s.audit.LogBook(ownerID, audit.ActionBookCreate, book.ID, book.Title)
	}
	summary := book.Summary()
	return &summary, nil
}

// UpdateBook applies a partial update on behalf of requestorID.
func (s *Service) UpdateBook(bookID, requestorID uint, patch books.BookPatch) (*entities.BookSummary, error) {
	if err := s.books.UpdateBook(bookID, requestorID, patch); err != nil {
		return nil, err
	}
	book, err := s.books.GetBookByID(bookID)
	if err != nil {
		return nil, err
	}
	if s.audit != nil && !patch.IsEmpty() {
		s.audit.LogBook(requestorID, audit.ActionBookUpdate, bookID, book.Title)
	}
	return book, nil
}

// DeleteBook removes a book owned by requestorID.
func (s *Service) DeleteBook(bookID, requestorID uint) error {
	if err := s.books.DeleteBook(bookID, requestorID); err != nil {
		return err
	}
	if s.audit != nil {
		s.audit.LogBook(requestorID, audit.ActionBookDelete, bookID, "")
	}
	return nil
}

// SetFavorite reconciles the favorite flag of userID on bookID.
func (s *Service) SetFavorite(userID, bookID uint, desired bool) error {
	if err := s.favorites.SetFavorite(userID, bookID, desired); err != nil {
		return err
	}
	if s.audit != nil {
		s.audit.LogFavorite(userID, bookID, desired)
	}
	return nil
}

// IsFavorite reports whether userID has favorited bookID.
func (s *Service) IsFavorite(userID, bookID uint) (bool, error) {
	return s.favorites.IsFavorite(userID, bookID)
}

// IsOwner reports whether userID uploaded bookID.
func (s *Service) IsOwner(userID, bookID uint) (bool, error) {
	return s.favorites.IsOwner(userID, bookID)
}

// FavoriteFlags reports which of the listed books userID has favorited.
func (s *Service) FavoriteFlags(userID uint, items []entities.BookSummary) (map[uint]bool, error) {
	ids := make([]uint, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return s.favorites.FavoriteBookIDs(userID, ids)
}
