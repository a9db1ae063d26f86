package http

import (
	"github.com/gin-gonic/gin"
)

// DeleteBook removes a book and every favorite pointing at it. Only the
// owner may delete.
// DELETE /api/books/:id
func (bc *BooksController) DeleteBook(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := bc.catalog.DeleteBook(id, userID); err != nil {
		respondAppError(c, err, "delete book")
		return
	}

	respondSuccess(c, "book deleted", map[string]uint{"id": id})
}
