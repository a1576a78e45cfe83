package handler

import (
	"net/http"

	"guild-chat/internal/domain/chat"
	"guild-chat/internal/services"
	"guild-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ChatHandler struct {
	service *services.ChatService
}

func NewChatHandler(service *services.ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

// Create opens a chat. The kind field selects a direct chat or a chat
// attached to a job listing.
func (h *ChatHandler) Create(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	var req httpdto.CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	switch req.Kind {
	case chat.KindDirect:
		h.createDirect(c, userID, req)
	case chat.KindJob:
		h.createJob(c, userID, req)
	default:
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("unknown chat kind", "INVALID_REQUEST"))
	}
}

func (h *ChatHandler) createDirect(c *gin.Context, userID uuid.UUID, req httpdto.CreateChatRequest) {
	recipientID, err := parseUUID(req.RecipientID)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid recipient id", "INVALID_REQUEST"))
		return
	}

	created, err := h.service.CreateDirectChat(c.Request.Context(), userID, recipientID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(gin.H{"id": created.ID.String(), "kind": created.Kind}))
}

func (h *ChatHandler) createJob(c *gin.Context, userID uuid.UUID, req httpdto.CreateChatRequest) {
	jobID, err := parseUUID(req.JobID)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid job id", "INVALID_REQUEST"))
		return
	}

	participants := []uuid.UUID{userID}
	for _, raw := range req.Participants {
		id, err := parseUUID(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid participant id", "INVALID_REQUEST"))
			return
		}
		if id != userID {
			participants = append(participants, id)
		}
	}

	created, err := h.service.CreateJobChat(c.Request.Context(), jobID, participants)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(gin.H{"id": created.ID.String(), "kind": created.Kind}))
}

func (h *ChatHandler) List(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	summaries, err := h.service.GetUserChats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(summaries))
}
