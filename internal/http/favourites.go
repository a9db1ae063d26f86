package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/apperr"
)

// Favorite toggle actions.
const (
	FavoriteActionAdd    = "add"
	FavoriteActionRemove = "remove"
)

// FavoriteRequest is the body of POST /api/books/:id/favorite.
type FavoriteRequest struct {
	Action string `json:"action" form:"action" binding:"required,oneof=add remove"`
}

// FavoriteResponse reports the favorite state after a change.
type FavoriteResponse struct {
	Message    string `json:"message"`
	BookID     uint   `json:"book_id"`
	IsFavorite bool   `json:"is_favorite"`
}

type FavouritesController struct {
	catalog CatalogService
}

func NewFavouritesController(catalogService CatalogService) *FavouritesController {
	return &FavouritesController{catalog: catalogService}
}

// ToggleFavourite adds or removes a favorite according to the action field.
// Adding an existing favorite or removing an absent one succeeds.
// POST /api/books/:id/favorite
func (fc *FavouritesController) ToggleFavourite(c *gin.Context) {
	var req FavoriteRequest
	if err := c.ShouldBind(&req); err != nil {
		respondAppError(c, apperr.FromBinding(err), "")
		return
	}
	fc.setFavourite(c, req.Action == FavoriteActionAdd)
}

// AddFavourite marks a book as favorite.
// PUT /api/books/:id/favorite
func (fc *FavouritesController) AddFavourite(c *gin.Context) {
	fc.setFavourite(c, true)
}

// RemoveFavourite removes a book from favorites.
// DELETE /api/books/:id/favorite
func (fc *FavouritesController) RemoveFavourite(c *gin.Context) {
	fc.setFavourite(c, false)
}

func (fc *FavouritesController) setFavourite(c *gin.Context, desired bool) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := fc.catalog.SetFavorite(userID, id, desired); err != nil {
		respondAppError(c, err, "set favourite")
		return
	}

	message := "favourite removed"
	if desired {
		message = "favourite added"
	}
	c.JSON(http.StatusOK, FavoriteResponse{Message: message, BookID: id, IsFavorite: desired})
}
