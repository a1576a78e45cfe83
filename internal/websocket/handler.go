package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"guild-chat/internal/events"
	"guild-chat/internal/services"
	"guild-chat/internal/session"
	"guild-chat/internal/transport/httpdto"
	"guild-chat/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// SessionDeps is everything a per-connection chat session needs.
type SessionDeps struct {
	Store     session.MessageStore
	Feed      session.LiveFeed
	Notifier  session.Notifier
	Directory session.UserDirectory
	Log       *logger.Logger
	Cfg       session.Config
}

// Presence marks users online while they hold at least one socket.
type Presence interface {
	SetOnline(ctx context.Context, userID uuid.UUID, online bool) error
}

type Handler struct {
	auth       *services.AuthService
	messages   *services.MessageService
	presence   Presence
	hub        *Hub
	authorizer *ChannelAuthorizer
	deps       SessionDeps
}

func NewHandler(auth *services.AuthService, messages *services.MessageService, presence Presence, hub *Hub, authorizer *ChannelAuthorizer, deps SessionDeps) *Handler {
	return &Handler{
		auth:       auth,
		messages:   messages,
		presence:   presence,
		hub:        hub,
		authorizer: authorizer,
		deps:       deps,
	}
}

// clientFrame is one inbound command from the socket.
type clientFrame struct {
	Action  string `json:"action"`
	ChatID  string `json:"chat_id,omitempty"`
	Started bool   `json:"started,omitempty"`
}

type messagePayload struct {
	ID            string    `json:"id"`
	ChatID        string    `json:"chat_id"`
	SenderID      string    `json:"sender_id"`
	Text          string    `json:"text,omitempty"`
	Type          string    `json:"type"`
	Status        string    `json:"status"`
	AttachmentURL string    `json:"attachment_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	ReadBy        []string  `json:"read_by,omitempty"`
}

type serverFrame struct {
	Type     string           `json:"type"`
	ChatID   string           `json:"chat_id,omitempty"`
	Messages []messagePayload `json:"messages,omitempty"`
	HasMore  bool             `json:"has_more,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// Connect upgrades the request and serves one socket. Each connection
// carries at most one open chat session; joining a chat closes the
// previous one.
func (h *Handler) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	claims, err := h.auth.ParseAccessToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	sessionID, err := uuid.Parse(claims.SessionID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	if _, err := h.auth.ValidateSession(c.Request.Context(), sessionID, userID); err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := NewClient(conn, userID.String())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.hub.Register(client)
	go client.WriteLoop(ctx)
	h.hub.Subscribe(client, events.UserChannel(client.UserID))

	if h.presence != nil {
		_ = h.presence.SetOnline(ctx, userID, true)
		defer func() {
			offCtx, offCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer offCancel()
			_ = h.presence.SetOnline(offCtx, userID, false)
		}()
	}

	controller := session.NewController(client.UserID, h.deps.Store, h.deps.Feed, h.deps.Notifier, h.deps.Directory, h.deps.Log, h.deps.Cfg)
	defer controller.Close()

	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		var frame clientFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			h.sendError(client, "malformed frame")
			continue
		}
		h.handleFrame(ctx, client, controller, frame)
	}

	if active := controller.Active(); active != nil {
		h.hub.Unsubscribe(client, events.ChatChannel(active.ChatID()))
	}
	h.hub.Unregister(client)
}

func (h *Handler) handleFrame(ctx context.Context, client *Client, controller *session.Controller, frame clientFrame) {
	switch frame.Action {
	case "join":
		h.handleJoin(ctx, client, controller, frame.ChatID)
	case "leave":
		if active := controller.Active(); active != nil {
			h.hub.Unsubscribe(client, events.ChatChannel(active.ChatID()))
		}
		controller.Close()
	case "load_older":
		active := controller.Active()
		if active == nil {
			h.sendError(client, "no open chat")
			return
		}
		if err := active.LoadOlder(ctx); err != nil {
			h.sendError(client, "failed to load older messages")
		}
	case "refresh":
		active := controller.Active()
		if active == nil {
			h.sendError(client, "no open chat")
			return
		}
		if err := active.Refresh(ctx); err != nil {
			h.sendError(client, "refresh failed")
		}
	case "mark_read":
		h.handleMarkRead(ctx, client, controller)
	case "typing":
		h.handleTyping(ctx, client, frame)
	default:
		h.sendError(client, "unknown action")
	}
}

func (h *Handler) handleJoin(ctx context.Context, client *Client, controller *session.Controller, chatID string) {
	if chatID == "" {
		h.sendError(client, "chat id is required")
		return
	}

	allowed, err := h.authorizer.CanSubscribe(ctx, client.UserID, events.ChatChannel(chatID))
	if err != nil || !allowed {
		h.sendError(client, "not a participant")
		return
	}

	if prev := controller.Active(); prev != nil {
		h.hub.Unsubscribe(client, events.ChatChannel(prev.ChatID()))
	}

	onUpdate := func(messages []session.Message) {
		frame := serverFrame{
			Type:     "snapshot",
			ChatID:   chatID,
			Messages: make([]messagePayload, 0, len(messages)),
		}
		if active := controller.Active(); active != nil && active.ChatID() == chatID {
			frame.HasMore = active.HasMore()
		}
		for _, m := range messages {
			frame.Messages = append(frame.Messages, messagePayload{
				ID:            m.ID,
				ChatID:        m.ChatID,
				SenderID:      m.SenderID,
				Text:          m.Text,
				Type:          m.Type,
				Status:        m.Status,
				AttachmentURL: m.AttachmentURL,
				CreatedAt:     m.CreatedAt,
				ReadBy:        m.ReadBy,
			})
		}
		h.send(client, frame)
	}

	if _, err := controller.Open(ctx, chatID, onUpdate); err != nil {
		h.sendError(client, "failed to open chat")
		return
	}
	h.hub.Subscribe(client, events.ChatChannel(chatID))
}

func (h *Handler) handleMarkRead(ctx context.Context, client *Client, controller *session.Controller) {
	active := controller.Active()
	if active == nil {
		h.sendError(client, "no open chat")
		return
	}
	chatID, err := uuid.Parse(active.ChatID())
	if err != nil {
		h.sendError(client, "invalid chat id")
		return
	}
	userID, err := uuid.Parse(client.UserID)
	if err != nil {
		h.sendError(client, "invalid user id")
		return
	}
	if err := h.messages.MarkChatRead(ctx, chatID, userID); err != nil {
		h.sendError(client, "failed to mark chat read")
	}
}

func (h *Handler) handleTyping(ctx context.Context, client *Client, frame clientFrame) {
	chatID, err := uuid.Parse(frame.ChatID)
	if err != nil {
		h.sendError(client, "invalid chat id")
		return
	}
	userID, err := uuid.Parse(client.UserID)
	if err != nil {
		h.sendError(client, "invalid user id")
		return
	}
	if err := h.messages.Typing(ctx, chatID, userID, frame.Started); err != nil {
		h.sendError(client, "failed to send typing indicator")
	}
}

func (h *Handler) send(client *Client, frame serverFrame) {
	payload, err := json.Marshal(frame)
	if err != nil {
		return
	}
	client.SendMessage(payload)
}

func (h *Handler) sendError(client *Client, message string) {
	h.send(client, serverFrame{Type: "error", Error: message})
}
