// Package favourites provides database operations for the ownership and
// favorite relations between users and books.
//
// # Usage
//
//	repo := favourites.NewRepository(db)
//	err := repo.SetFavorite(userID, bookID, true)
//	items, total, err := repo.ListFavorites(userID, 0, 12)
package favourites

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// Repository handles all favourites database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new favourites repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// IsOwner reports whether userID uploaded bookID. Unknown books are not owned
// by anyone.
func (r *Repository) IsOwner(userID, bookID uint) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).
		Where("id = ? AND owner_id = ?", bookID, userID).
		Count(&count).Error
	if err != nil {
		return false, apperr.Storage("check owner", err)
	}
	return count > 0, nil
}

// SetFavorite reconciles the relation with desired. Adding an existing
// favorite or removing an absent one succeeds without changes.
func (r *Repository) SetFavorite(userID, bookID uint, desired bool) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entities.Book{}).Where("id = ?", bookID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return apperr.ErrNotFound
		}

		if !desired {
			return tx.Where("user_id = ? AND book_id = ?", userID, bookID).
				Delete(&entities.Favorite{}).Error
		}

		favorite := &entities.Favorite{UserID: userID, BookID: bookID}
		return tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(favorite).Error
	})
	return apperr.Storage("set favorite", err)
}

// IsFavorite reports whether userID has favorited bookID.
func (r *Repository) IsFavorite(userID, bookID uint) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Favorite{}).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Count(&count).Error
	if err != nil {
		return false, apperr.Storage("check favorite", err)
	}
	return count > 0, nil
}

// FavoriteBookIDs returns which of bookIDs userID has favorited.
func (r *Repository) FavoriteBookIDs(userID uint, bookIDs []uint) (map[uint]bool, error) {
	result := make(map[uint]bool, len(bookIDs))
	if len(bookIDs) == 0 {
		return result, nil
	}

	var ids []uint
	err := r.db.Model(&entities.Favorite{}).
		Where("user_id = ? AND book_id IN ?", userID, bookIDs).
		Pluck("book_id", &ids).Error
	if err != nil {
		return nil, apperr.Storage("list favorite ids", err)
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}

// ListFavorites returns one page of the books userID has favorited, in
// catalog order.
func (r *Repository) ListFavorites(userID uint, offset, limit int) ([]entities.BookSummary, int64, error) {
	return books.Summaries(r.db, func(db *gorm.DB) *gorm.DB {
		return db.Joins("JOIN favorites ON favorites.book_id = books.id").
			Where("favorites.user_id = ?", userID)
	}, offset, limit)
}
