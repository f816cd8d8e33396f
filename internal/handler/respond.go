package handler

import (
	"errors"
	"net/http"
	"strings"

	"carebridge-chat/internal/domain/chat"
	"carebridge-chat/internal/transport/httpdto"
	carebridge_errors "carebridge-chat/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// respondError maps service errors onto the HTTP surface. Remote store
// failures that carry no known sentinel pass through verbatim so the client
// can display them; nothing escapes as an unhandled panic.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, carebridge_errors.ErrNotAuthenticated),
		errors.Is(err, carebridge_errors.ErrSessionRevoked):
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
	case errors.Is(err, carebridge_errors.ErrForbidden):
		c.JSON(http.StatusForbidden, httpdto.NewErrorResponse("forbidden", "FORBIDDEN"))
	case errors.Is(err, carebridge_errors.ErrNotFound):
		c.JSON(http.StatusNotFound, httpdto.NewErrorResponse("not found", "NOT_FOUND"))
	case errors.Is(err, carebridge_errors.ErrAlreadyExists):
		c.JSON(http.StatusConflict, httpdto.NewErrorResponse("already exists", "ALREADY_EXISTS"))
	case errors.Is(err, carebridge_errors.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid input", "INVALID_REQUEST"))
	case errors.Is(err, carebridge_errors.ErrTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, httpdto.NewErrorResponse("file too large", "TOO_LARGE"))
	case errors.Is(err, carebridge_errors.ErrNotUploaded):
		c.JSON(http.StatusBadGateway, httpdto.NewErrorResponse(err.Error(), "UPLOAD_FAILED"))
	default:
		c.JSON(http.StatusBadGateway, httpdto.NewErrorResponse(err.Error(), "REQUEST_FAILED"))
	}
}

func parseUUID(value string) (uuid.UUID, error) {
	return uuid.Parse(value)
}

func reactionKind(value string) chat.ReactionKind {
	return chat.ReactionKind(strings.ToUpper(strings.TrimSpace(value)))
}
