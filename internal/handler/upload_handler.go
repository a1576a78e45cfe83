package handler

import (
	"net/http"

	"guild-chat/internal/services"
	"guild-chat/internal/storage"
	"guild-chat/internal/transport/httpdto"
	guild_errors "guild-chat/pkg/errors"

	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	chats  *services.ChatService
	client *storage.Client
}

func NewUploadHandler(chats *services.ChatService, client *storage.Client) *UploadHandler {
	return &UploadHandler{chats: chats, client: client}
}

// Presign hands the client a short-lived PUT URL for one attachment.
// The message referencing the uploaded file is sent separately.
func (h *UploadHandler) Presign(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	if h.client == nil {
		c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse("uploads are not configured", "UNAVAILABLE"))
		return
	}

	var req httpdto.PresignUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	chatID, err := parseUUID(req.ChatID)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid chat id", "INVALID_REQUEST"))
		return
	}
	if req.FileName == "" {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("file name is required", "INVALID_REQUEST"))
		return
	}
	if req.SizeBytes > storage.MaxAttachmentBytes {
		respondError(c, guild_errors.ErrTooLarge)
		return
	}

	if err := h.chats.EnsureParticipant(c.Request.Context(), chatID, userID); err != nil {
		respondError(c, err)
		return
	}

	key := storage.AttachmentKey(chatID.String(), req.FileName)
	uploadURL, headers, err := h.client.PresignPut(c.Request.Context(), key, req.ContentType, req.SizeBytes)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.PresignUploadResponse{
		UploadURL: uploadURL,
		Headers:   headers,
		FileURL:   h.client.FileURL(key),
		Key:       key,
	}))
}
