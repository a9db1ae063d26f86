// Package books provides database operations for books: creation with blob
// validation, owner-checked partial updates and deletes, blob reads and the
// paginated catalog listings.
//
// # Usage
//
//	repo := books.NewRepository(db, books.Limits{MaxCoverBytes: 2 << 20, MaxPDFBytes: 80485760})
//	book, err := repo.CreateBook(ownerID, books.BookInput{...})
//	items, total, err := repo.ListAll(0, 12)
package books

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// Repository handles all book database operations.
type Repository struct {
	db     *gorm.DB
	limits Limits
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB, limits Limits) *Repository {
	return &Repository{db: db, limits: limits}
}

// CreateBook validates the input and stores a new book owned by ownerID.
func (r *Repository) CreateBook(ownerID uint, in BookInput) (*entities.Book, error) {
	book, err := r.buildBook(ownerID, in)
	if err != nil {
		return nil, err
	}
	if err := r.db.Omit(clause.Associations).Create(book).Error; err != nil {
		return nil, apperr.Storage("create book", err)
	}
	return book, nil
}

// UpdateBook applies the supplied fields of patch. Only the owner may update;
// the ownership check and the write share one transaction.
func (r *Repository) UpdateBook(bookID, requestorID uint, patch BookPatch) error {
	updates, validationErr := r.buildUpdates(patch)

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := checkOwner(tx, bookID, requestorID); err != nil {
			return err
		}
		if validationErr != nil {
			return validationErr
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&entities.Book{}).Where("id = ?", bookID).Updates(updates).Error
	})
	return apperr.Storage("update book", err)
}

// DeleteBook removes the book and every favorite pointing at it.
func (r *Repository) DeleteBook(bookID, requestorID uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := checkOwner(tx, bookID, requestorID); err != nil {
			return err
		}
		if err := tx.Where("book_id = ?", bookID).Delete(&entities.Favorite{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entities.Book{}, bookID).Error
	})
	return apperr.Storage("delete book", err)
}

// GetBookByID returns the book metadata without blob payloads.
func (r *Repository) GetBookByID(id uint) (*entities.BookSummary, error) {
	var items []entities.BookSummary
	err := r.db.Model(&entities.Book{}).
		Select(SummaryColumns).
		Where("books.id = ?", id).
		Limit(1).
		Scan(&items).Error
	if err != nil {
		return nil, apperr.Storage("get book", err)
	}
	if len(items) == 0 {
		return nil, apperr.ErrNotFound
	}
	return &items[0], nil
}

type pdfRow struct {
	PDF []byte `gorm:"column:pdf"`
}

// GetPDF returns the stored PDF bytes. Books without a PDF report ErrNotFound.
func (r *Repository) GetPDF(id uint) ([]byte, error) {
	var rows []pdfRow
	err := r.db.Model(&entities.Book{}).Select("pdf").Where("id = ?", id).Limit(1).Scan(&rows).Error
	if err != nil {
		return nil, apperr.Storage("get pdf", err)
	}
	if len(rows) == 0 || len(rows[0].PDF) == 0 {
		return nil, apperr.ErrNotFound
	}
	return rows[0].PDF, nil
}

type coverRow struct {
	CoverImage []byte `gorm:"column:cover_image"`
	CoverMIME  string `gorm:"column:cover_mime"`
}

// GetCoverImage returns the stored cover and its detected media type.
func (r *Repository) GetCoverImage(id uint) ([]byte, string, error) {
	var rows []coverRow
	err := r.db.Model(&entities.Book{}).
		Select("cover_image, cover_mime").
		Where("id = ?", id).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, "", apperr.Storage("get cover image", err)
	}
	if len(rows) == 0 || len(rows[0].CoverImage) == 0 {
		return nil, "", apperr.ErrNotFound
	}
	return rows[0].CoverImage, rows[0].CoverMIME, nil
}

// checkOwner loads the owner of bookID inside tx, locking the row where the
// engine supports it.
func checkOwner(tx *gorm.DB, bookID, requestorID uint) error {
	var owners []uint
	err := lockForUpdate(tx).Model(&entities.Book{}).
		Where("id = ?", bookID).
		Pluck("owner_id", &owners).Error
	if err != nil {
		return err
	}
	if len(owners) == 0 {
		return apperr.ErrNotFound
	}
	if owners[0] != requestorID {
		return apperr.ErrForbidden
	}
	return nil
}

// lockForUpdate adds SELECT ... FOR UPDATE on engines with row locks.
// SQLite serializes writers on the whole database instead.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
