package handler

import (
	"net/http"
	"time"

	"guild-chat/internal/notify"
	"guild-chat/internal/services"
	"guild-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	dispatcher *notify.Dispatcher
}

func NewNotificationHandler(dispatcher *notify.Dispatcher) *NotificationHandler {
	return &NotificationHandler{dispatcher: dispatcher}
}

type notificationResponse struct {
	ID         string    `json:"id"`
	ChatID     string    `json:"chat_id"`
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	Body       string    `json:"body"`
	IsRead     bool      `json:"is_read"`
	CreatedAt  time.Time `json:"created_at"`
}

func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	page := parseIntDefault(c.Query("page"), 1)
	limit := parseIntDefault(c.Query("limit"), 20)

	notifications, total, err := h.dispatcher.List(c.Request.Context(), userID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]notificationResponse, 0, len(notifications))
	for _, n := range notifications {
		items = append(items, notificationResponse{
			ID:         n.ID.String(),
			ChatID:     n.ChatID.String(),
			SenderID:   n.SenderID.String(),
			SenderName: n.SenderName,
			Body:       n.Body,
			IsRead:     n.IsRead,
			CreatedAt:  n.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{
		"notifications": items,
		"total":         total,
		"page":          page,
		"limit":         limit,
	}))
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	id, err := parseUUID(c.Param("notificationId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid notification id", "INVALID_REQUEST"))
		return
	}

	if err := h.dispatcher.MarkRead(c.Request.Context(), id, userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(nil))
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	count, err := h.dispatcher.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"unread": count}))
}
