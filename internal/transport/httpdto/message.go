package httpdto

import "time"

type SendMessageRequest struct {
	ChatID          string `json:"chat_id"`
	Text            string `json:"text"`
	Type            string `json:"type"`
	ClientMessageID string `json:"client_message_id"`
	AttachmentURL   string `json:"attachment_url"`
	AttachmentName  string `json:"attachment_name"`
}

type EditMessageRequest struct {
	Text string `json:"text"`
}

type MessageResponse struct {
	ID            string    `json:"id"`
	ChatID        string    `json:"chat_id"`
	SenderID      string    `json:"sender_id"`
	Text          string    `json:"text,omitempty"`
	Type          string    `json:"type"`
	Status        string    `json:"status"`
	AttachmentURL string    `json:"attachment_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	Edited        bool      `json:"edited"`
	ReadBy        []string  `json:"read_by,omitempty"`
}

type MessagePageResponse struct {
	Messages []MessageResponse `json:"messages"`
	HasMore  bool              `json:"has_more"`
}
