package main

import (
	"log"

	"guild-chat/config"
	"guild-chat/internal/domain/chat"
	"guild-chat/internal/domain/message"
	"guild-chat/internal/domain/notification"
	"guild-chat/internal/domain/user"
	"guild-chat/pkg/database"
)

func main() {
	cfg := config.LoadConfig()

	database.Connect(cfg)

	if err := database.DB.AutoMigrate(
		&user.User{},
		&user.UserSession{},
		&chat.Chat{},
		&chat.Participant{},
		&message.Message{},
		&message.MessageReceipt{},
		&notification.Notification{},
	); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	log.Println("Migrations applied")
}
