package handler

import (
	"net/http"
	"time"

	"guild-chat/internal/domain/message"
	"guild-chat/internal/services"
	"guild-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type MessageHandler struct {
	service  *services.MessageService
	pageSize int
}

func NewMessageHandler(service *services.MessageService, pageSize int) *MessageHandler {
	return &MessageHandler{service: service, pageSize: pageSize}
}

func (h *MessageHandler) Send(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	var req httpdto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	chatID, err := parseUUID(req.ChatID)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid chat id", "INVALID_REQUEST"))
		return
	}

	m, err := h.service.Send(c.Request.Context(), services.SendInput{
		ChatID:          chatID,
		SenderID:        userID,
		Text:            req.Text,
		Type:            req.Type,
		ClientMessageID: req.ClientMessageID,
		AttachmentURL:   req.AttachmentURL,
		AttachmentName:  req.AttachmentName,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(toMessageResponse(m, nil)))
}

// History returns one page of chat messages, oldest-first. Without a
// before query parameter it returns the newest window.
func (h *MessageHandler) History(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	chatID, err := parseUUID(c.Param("chatId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid chat id", "INVALID_REQUEST"))
		return
	}

	var before *time.Time
	if raw := c.Query("before"); raw != "" {
		parsed, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid before timestamp", "INVALID_REQUEST"))
			return
		}
		before = &parsed
	}
	limit := parseIntDefault(c.Query("limit"), h.pageSize)

	page, err := h.service.History(c.Request.Context(), chatID, userID, before, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := httpdto.MessagePageResponse{
		Messages: make([]httpdto.MessageResponse, 0, len(page.Messages)),
		HasMore:  page.HasMore,
	}
	for _, m := range page.Messages {
		resp.Messages = append(resp.Messages, toMessageResponse(m, page.ReadBy[m.ID]))
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(resp))
}

func (h *MessageHandler) MarkRead(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	chatID, err := parseUUID(c.Param("chatId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid chat id", "INVALID_REQUEST"))
		return
	}

	if err := h.service.MarkChatRead(c.Request.Context(), chatID, userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(nil))
}

func (h *MessageHandler) Edit(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	messageID, err := parseUUID(c.Param("messageId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid message id", "INVALID_REQUEST"))
		return
	}

	var req httpdto.EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	if err := h.service.Edit(c.Request.Context(), messageID, userID, req.Text); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(nil))
}

func (h *MessageHandler) Delete(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	messageID, err := parseUUID(c.Param("messageId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid message id", "INVALID_REQUEST"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), messageID, userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(nil))
}

func toMessageResponse(m message.Message, readBy []uuid.UUID) httpdto.MessageResponse {
	resp := httpdto.MessageResponse{
		ID:        m.ID.String(),
		ChatID:    m.ChatID.String(),
		SenderID:  m.SenderID.String(),
		Type:      m.Type,
		Status:    m.Status,
		CreatedAt: m.CreatedAt,
		Edited:    m.EditedAt.Valid,
	}
	if m.Text.Valid {
		resp.Text = m.Text.String
	}
	if m.AttachmentURL.Valid {
		resp.AttachmentURL = m.AttachmentURL.String
	}
	for _, id := range readBy {
		resp.ReadBy = append(resp.ReadBy, id.String())
	}
	return resp
}
