package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/utils"
)

// BookView is a book as the API presents it. Favorite and ownership flags
// are only filled in for session users.
type BookView struct {
	entities.BookSummary
	IsFavorite *bool `json:"is_favorite,omitempty"`
	IsOwner    *bool `json:"is_owner,omitempty"`
}

// PageResponse is one page of a book listing.
type PageResponse struct {
	Items      []BookView `json:"items"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int        `json:"total_pages"`
	HasNext    bool       `json:"has_next"`
	HasPrev    bool       `json:"has_prev"`
}

type BooksController struct {
	catalog CatalogService
	uploads uploadReader
}

func NewBooksController(catalogService CatalogService, limits config.Upload) *BooksController {
	return &BooksController{
		catalog: catalogService,
		uploads: uploadReader{limits: limits},
	}
}

// ListBooks returns one page of the whole catalog.
// GET /api/books?page=N
func (bc *BooksController) ListBooks(c *gin.Context) {
	page, pageSize := parsePaging(c)
	result, err := bc.catalog.ListAll(page, pageSize)
	if err != nil {
		respondAppError(c, err, "list books")
		return
	}
	bc.respondPage(c, result)
}

// ListMyBooks returns one page of the session user's uploads.
// GET /api/me/books?page=N
func (bc *BooksController) ListMyBooks(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	page, pageSize := parsePaging(c)
	result, err := bc.catalog.ListByOwner(userID, page, pageSize)
	if err != nil {
		respondAppError(c, err, "list my books")
		return
	}
	bc.respondPage(c, result)
}

// ListFavorites returns one page of the session user's favorites.
// GET /api/me/favorites?page=N
func (bc *BooksController) ListFavorites(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	page, pageSize := parsePaging(c)
	result, err := bc.catalog.ListFavorites(userID, page, pageSize)
	if err != nil {
		respondAppError(c, err, "list favorites")
		return
	}
	bc.respondPage(c, result)
}

// SearchBooks matches a title substring. Results are not paginated.
// GET /api/books/search?title=...
func (bc *BooksController) SearchBooks(c *gin.Context) {
	items, err := bc.catalog.Search(c.Query("title"))
	if err != nil {
		respondAppError(c, err, "search books")
		return
	}

	views, err := bc.views(c, items)
	if err != nil {
		respondAppError(c, err, "search books")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": views, "total": len(views)})
}

// GetBook returns the metadata of one book.
// GET /api/books/:id
func (bc *BooksController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.catalog.GetBook(id)
	if err != nil {
		respondAppError(c, err, "get book")
		return
	}

	views, err := bc.views(c, []entities.BookSummary{*book})
	if err != nil {
		respondAppError(c, err, "get book")
		return
	}
	c.JSON(http.StatusOK, views[0])
}

// CreateBook stores a new book owned by the session user.
// POST /api/books (multipart: title, author, description, publish_date,
// cover_image, pdf_file)
func (bc *BooksController) CreateBook(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	input, err := bc.uploads.bindBookInput(c)
	if err != nil {
		respondAppError(c, err, "create book")
		return
	}

	book, err := bc.catalog.CreateBook(userID, input)
	if err != nil {
		respondAppError(c, err, "create book")
		return
	}

	owner := true
	favorite := false
	c.JSON(http.StatusCreated, BookView{BookSummary: *book, IsOwner: &owner, IsFavorite: &favorite})
}

// UpdateBook applies the supplied fields. Only the owner may update.
// PATCH /api/books/:id
func (bc *BooksController) UpdateBook(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	patch, err := bc.uploads.bindBookPatch(c)
	if err != nil {
		respondAppError(c, err, "update book")
		return
	}

	book, err := bc.catalog.UpdateBook(id, userID, patch)
	if err != nil {
		respondAppError(c, err, "update book")
		return
	}

	views, err := bc.views(c, []entities.BookSummary{*book})
	if err != nil {
		respondAppError(c, err, "update book")
		return
	}
	c.JSON(http.StatusOK, views[0])
}

// DownloadPDF sends the stored PDF as an attachment.
// GET /api/books/:id/pdf
func (bc *BooksController) DownloadPDF(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.catalog.GetBook(id)
	if err != nil {
		respondAppError(c, err, "download pdf")
		return
	}
	data, err := bc.catalog.GetPDF(id)
	if err != nil {
		respondAppError(c, err, "download pdf")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, attachmentName(book.Title, id)))
	c.Data(http.StatusOK, "application/pdf", data)
}

// GetCover sends the stored cover image with its detected media type.
// GET /api/books/:id/cover
func (bc *BooksController) GetCover(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	data, mime, err := bc.catalog.GetCover(id)
	if err != nil {
		respondAppError(c, err, "get cover")
		return
	}

	c.Header("Cache-Control", "private, max-age=300")
	c.Data(http.StatusOK, mime, data)
}

func (bc *BooksController) respondPage(c *gin.Context, result catalog.Page) {
	views, err := bc.views(c, result.Items)
	if err != nil {
		respondAppError(c, err, "list books")
		return
	}
	c.JSON(http.StatusOK, PageResponse{
		Items:      views,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
		HasNext:    result.HasNext(),
		HasPrev:    result.HasPrev(),
	})
}

// views decorates summaries with the session user's favorite and ownership
// flags. Anonymous requests get bare summaries.
func (bc *BooksController) views(c *gin.Context, items []entities.BookSummary) ([]BookView, error) {
	views := make([]BookView, len(items))
	for i, item := range items {
		views[i] = BookView{BookSummary: item}
	}

	userID := GetUserID(c)
	if userID == 0 || len(items) == 0 {
		return views, nil
	}

	flags, err := bc.catalog.FavoriteFlags(userID, items)
	if err != nil {
		return nil, err
	}
	for i := range views {
		favorite := flags[views[i].ID]
		owner := views[i].OwnerID == userID
		views[i].IsFavorite = &favorite
		views[i].IsOwner = &owner
	}
	return views, nil
}

// attachmentName turns a title into a header-safe file name.
func attachmentName(title string, id uint) string {
	return utils.SanitizeFilename(title, fmt.Sprintf("book-%d", id))
}
