package handler

import (
	"errors"
	"net/http"
	"strconv"

	"guild-chat/internal/transport/httpdto"
	guild_errors "guild-chat/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func parseUUID(value string) (uuid.UUID, error) {
	if value == "" {
		return uuid.Nil, guild_errors.ErrInvalidInput
	}
	return uuid.Parse(value)
}

func parseIntDefault(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
		return parsed
	}
	return fallback
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, guild_errors.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse(err.Error(), "INVALID_REQUEST"))
	case errors.Is(err, guild_errors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse(err.Error(), "UNAUTHORIZED"))
	case errors.Is(err, guild_errors.ErrForbidden), errors.Is(err, guild_errors.ErrNotParticipant):
		c.JSON(http.StatusForbidden, httpdto.NewErrorResponse(err.Error(), "FORBIDDEN"))
	case errors.Is(err, guild_errors.ErrNotFound):
		c.JSON(http.StatusNotFound, httpdto.NewErrorResponse(err.Error(), "NOT_FOUND"))
	case errors.Is(err, guild_errors.ErrAlreadyExists), errors.Is(err, guild_errors.ErrConflict):
		c.JSON(http.StatusConflict, httpdto.NewErrorResponse(err.Error(), "CONFLICT"))
	case errors.Is(err, guild_errors.ErrTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, httpdto.NewErrorResponse(err.Error(), "TOO_LARGE"))
	default:
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse("internal error", "INTERNAL"))
	}
}
