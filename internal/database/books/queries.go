package books

import (
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// SummaryColumns selects a book row without its blobs. The has_* flags are
// computed in SQL so listings never transfer cover or PDF bytes.
const SummaryColumns = "books.id, books.title, books.author, books.description, " +
	"books.publish_date, books.owner_id, books.pdf_pages, books.created_at, " +
	"COALESCE(LENGTH(books.cover_image), 0) > 0 AS has_cover, " +
	"COALESCE(LENGTH(books.pdf), 0) > 0 AS has_pdf"

// CatalogOrder is the deterministic order of every listing: newest
// publication first, insertion order among books published the same day.
const CatalogOrder = "books.publish_date DESC, books.id ASC"

// Summaries runs a paginated listing over books narrowed by scope and
// returns the page plus the total number of matching rows.
func Summaries(db *gorm.DB, scope func(*gorm.DB) *gorm.DB, offset, limit int) ([]entities.BookSummary, int64, error) {
	var total int64
	if err := db.Model(&entities.Book{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, apperr.Storage("count books", err)
	}

	items := make([]entities.BookSummary, 0)
	if total == 0 {
		return items, 0, nil
	}

	query := db.Model(&entities.Book{}).Scopes(scope).Select(SummaryColumns).Order(CatalogOrder)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Scan(&items).Error; err != nil {
		return nil, 0, apperr.Storage("list books", err)
	}
	return items, total, nil
}

func allBooks(db *gorm.DB) *gorm.DB {
	return db
}

// ListAll returns one page of the whole catalog.
func (r *Repository) ListAll(offset, limit int) ([]entities.BookSummary, int64, error) {
	return Summaries(r.db, allBooks, offset, limit)
}

// ListByOwner returns one page of the books uploaded by ownerID.
func (r *Repository) ListByOwner(ownerID uint, offset, limit int) ([]entities.BookSummary, int64, error) {
	return Summaries(r.db, func(db *gorm.DB) *gorm.DB {
		return db.Where("books.owner_id = ?", ownerID)
	}, offset, limit)
}

// SearchByTitle matches a case-insensitive substring of the title. Both
// sides are Unicode case-folded in Go since SQLite folds ASCII only. LIKE
// wildcards typed by the user are matched literally.
func (r *Repository) SearchByTitle(query string) ([]entities.BookSummary, error) {
	pattern := "%" + escapeLike(entities.FoldTitle(query)) + "%"
	items, _, err := Summaries(r.db, func(db *gorm.DB) *gorm.DB {
		return db.Where("books.title_folded LIKE ? ESCAPE '\\'", pattern)
	}, 0, 0)
	return items, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
