package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"tickevo.app/backend/common/id"
	"tickevo.app/backend/internal/http/middleware"
	"tickevo.app/backend/internal/service"
)

// respondError maps service errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	var status int
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInvalidStage),
		errors.Is(err, service.ErrNotQueued),
		errors.Is(err, service.ErrUsernameTaken):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrUserNotFound):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrMissingToken),
		errors.Is(err, service.ErrNotYourTurn),
		errors.Is(err, service.ErrCreatorMustWait):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrTicketNotFound):
		status = http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		slog.ErrorContext(ctx, "store deadline exceeded", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store timeout"})
		return
	default:
		slog.ErrorContext(ctx, "request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(status, gin.H{"error": err.Error()})
}

func bindError(c *gin.Context, err error) {
	slog.WarnContext(c.Request.Context(), "invalid request body", "error", err)
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// ticketParam reads :id; it writes the 400 itself when the id is malformed.
func ticketParam(c *gin.Context) (int64, bool) {
	ticketID, err := id.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ticket id"})
		return 0, false
	}
	return ticketID, true
}

// currentUser is only reachable behind RequireAuth, so a miss is a wiring bug.
func currentUser(c *gin.Context) (int64, bool) {
	userID, ok := middleware.GetUserID(c.Request.Context())
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "no token provided"})
	}
	return userID, ok
}
