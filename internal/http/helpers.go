package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/auth"
)

// GetUserID extracts the session user's ID from the Gin context.
// Returns 0 for anonymous requests.
func GetUserID(c *gin.Context) uint {
	return auth.GetUserID(c)
}

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse = apperr.Response

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// --- Error Response Helpers ---

// respondAppError maps err to its HTTP status. Storage failures are logged
// with their cause; the client only sees the kind.
func respondAppError(c *gin.Context, err error, context string) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Error: "request body too large",
			Code:  "payload_too_large",
		})
		return
	}

	status, body := apperr.HTTPResponse(err)
	if status >= http.StatusInternalServerError {
		log.Printf("Internal error (%s): %v", context, err)
	}
	c.AbortWithStatusJSON(status, body)
}

// respondBadRequest sends a 400 validation response with one problem.
func respondBadRequest(c *gin.Context, problem string) {
	respondAppError(c, apperr.Validation(problem), "")
}

// respondSuccess sends a 200 OK response with a message.
func respondSuccess(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message, Data: data})
}

// --- Parameter Parsing ---

// parseIDParam extracts and validates an unsigned integer ID from URL parameters.
// Returns the parsed ID or responds with a 400 error and returns 0, false.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	idStr := c.Param(paramName)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}

// parsePaging reads the page and page_size query parameters. Missing or
// malformed values fall back to zero, which the catalog clamps to its
// defaults.
func parsePaging(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.Query("page"))
	pageSize, _ = strconv.Atoi(c.Query("page_size"))
	return page, pageSize
}

// requireUserID returns the session user or answers 401.
func requireUserID(c *gin.Context) (uint, bool) {
	userID := GetUserID(c)
	if userID == 0 {
		respondAppError(c, apperr.ErrUnauthenticated, "")
		return 0, false
	}
	return userID, true
}
