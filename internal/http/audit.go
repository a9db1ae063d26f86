package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/entities"
)

const (
	defaultActivityLimit = 25
	maxActivityLimit     = 100
)

// parseEventType accepts an empty filter or one of the recorded event types.
func parseEventType(s string) (entities.AuditEventType, bool) {
	switch t := entities.AuditEventType(s); t {
	case "", entities.AuditEventAuth, entities.AuditEventBook, entities.AuditEventFavorite:
		return t, true
	}
	return "", false
}

type AuditController struct {
	events ActivityReader
}

func NewAuditController(events ActivityReader) *AuditController {
	return &AuditController{events: events}
}

// GetActivity returns the session user's audit events, newest first.
// GET /api/me/activity?page=N&limit=N&type=auth|book|favorite
func (ac *AuditController) GetActivity(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultActivityLimit)))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxActivityLimit {
		limit = defaultActivityLimit
	}

	eventType, known := parseEventType(c.Query("type"))
	if !known {
		respondBadRequest(c, "type must be one of: auth, book, favorite")
		return
	}

	events, total, err := ac.events.GetEvents(userID, eventType, limit, (page-1)*limit)
	if err != nil {
		respondAppError(c, err, "list activity")
		return
	}

	totalPages := (int(total) + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}

	c.JSON(http.StatusOK, gin.H{
		"events":       events,
		"page":         page,
		"limit":        limit,
		"total_pages":  totalPages,
		"total_events": total,
	})
}
