package catalog

import (
	"math"

	"github.com/mrlokans/bookshelf/internal/entities"
)

const (
	// DefaultPageSize matches the twelve-card grid of the catalog pages.
	DefaultPageSize = 12
	MaxPageSize     = 100
)

// Page is one slice of an ordered listing.
type Page struct {
	Items      []entities.BookSummary `json:"items"`
	Total      int64                  `json:"total"`
	Page       int                    `json:"page"`
	PageSize   int                    `json:"page_size"`
	TotalPages int                    `json:"total_pages"`
}

// HasNext reports whether a later page exists.
func (p Page) HasNext() bool {
	return p.Page < p.TotalPages
}

// HasPrev reports whether an earlier page exists.
func (p Page) HasPrev() bool {
	return p.Page > 1
}

func newPage(items []entities.BookSummary, total int64, page, pageSize int) Page {
	if items == nil {
		items = []entities.BookSummary{}
	}
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Page{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// clamp normalizes the requested page and page size and returns the row
// offset of the page. A page whose offset does not fit in an int gets the
// largest offset, which lies past any stored row.
func (s *Service) clamp(page, pageSize int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = s.pageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if page-1 > math.MaxInt/pageSize {
		return page, pageSize, math.MaxInt
	}
	return page, pageSize, (page - 1) * pageSize
}
