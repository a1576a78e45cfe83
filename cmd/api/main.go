package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"guild-chat/config"
	"guild-chat/internal/events"
	"guild-chat/internal/handler"
	"guild-chat/internal/middleware"
	"guild-chat/internal/notify"
	guildredis "guild-chat/internal/redis"
	"guild-chat/internal/repository"
	"guild-chat/internal/services"
	"guild-chat/internal/session"
	"guild-chat/internal/storage"
	"guild-chat/internal/websocket"
	"guild-chat/pkg/database"
	"guild-chat/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadConfig()

	appLogger := logger.New(cfg.AppMode)
	logger.SetGlobalLogger(appLogger)

	database.Connect(cfg)
	db := database.DB

	guildredis.Initialize(guildredis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
	})
	redisClient := guildredis.GetClient()

	userRepo := repository.NewUserRepository(db)
	chatRepo := repository.NewChatRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	bus := events.NewRedisEventBus(redisClient, events.NewChatChannelResolver(), appLogger)
	if err := bus.Start(); err != nil {
		log.Fatalf("Failed to start event bus: %v", err)
	}
	defer bus.Stop()

	cacheStore := guildredis.NewCacheStore(redisClient, guildredis.DefaultCacheConfig())

	authService := services.NewAuthService(userRepo, cfg)
	userService := services.NewUserService(userRepo, cacheStore)
	chatService := services.NewChatService(chatRepo, userRepo)
	messageService := services.NewMessageService(messageRepo, chatRepo, bus, appLogger)
	sessionStore := services.NewSessionStore(messageRepo)

	feed := events.NewRedisLiveFeed(redisClient, sessionStore, appLogger, cfg.CallTimeout)
	dispatcher := notify.NewDispatcher(notificationRepo, bus, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var s3Client *storage.Client
	if cfg.S3Bucket != "" {
		client, err := storage.NewClient(ctx, storage.S3Config{
			Region:     cfg.S3Region,
			Bucket:     cfg.S3Bucket,
			AccessKey:  cfg.S3AccessKey,
			SecretKey:  cfg.S3SecretKey,
			Endpoint:   cfg.S3Endpoint,
			PublicBase: cfg.S3PublicBase,
			PresignTTL: cfg.S3PresignTTL,
		})
		if err != nil {
			appLogger.Warnf("attachment storage disabled: %v", err)
		} else {
			s3Client = client
		}
	}

	hub := websocket.NewHub()
	go hub.Run(ctx)

	bridge := websocket.NewRedisBridge(redisClient, hub, appLogger)
	go func() {
		if err := bridge.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			appLogger.Errorf("redis bridge stopped: %v", err)
		}
	}()

	sessionCfg := session.Config{
		PageSize:    cfg.MessagePageSize,
		LiveWindow:  cfg.LiveWindowSize,
		CallTimeout: cfg.CallTimeout,
	}
	wsHandler := websocket.NewHandler(
		authService,
		messageService,
		userService,
		hub,
		websocket.NewChannelAuthorizer(chatRepo),
		websocket.SessionDeps{
			Store:     sessionStore,
			Feed:      feed,
			Notifier:  dispatcher,
			Directory: userService,
			Log:       appLogger,
			Cfg:       sessionCfg,
		},
	)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	chatHandler := handler.NewChatHandler(chatService)
	messageHandler := handler.NewMessageHandler(messageService, cfg.MessagePageSize)
	uploadHandler := handler.NewUploadHandler(chatService, s3Client)
	notificationHandler := handler.NewNotificationHandler(dispatcher)

	if cfg.AppMode != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggingMiddleware(appLogger))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/ws", wsHandler.Connect)

	v1 := r.Group("/api/v1")
	v1.POST("/auth/register", authHandler.Register)
	v1.POST("/auth/login", authHandler.Login)

	authed := v1.Group("")
	authed.Use(middleware.AuthMiddleware(authService))
	authed.POST("/auth/logout", authHandler.Logout)

	authed.GET("/me", userHandler.Me)
	authed.GET("/users/:userId", userHandler.Profile)

	authed.GET("/chats", chatHandler.List)
	authed.POST("/chats", chatHandler.Create)
	authed.GET("/chats/:chatId/messages", messageHandler.History)
	authed.POST("/chats/:chatId/read", messageHandler.MarkRead)

	authed.POST("/messages", messageHandler.Send)
	authed.PATCH("/messages/:messageId", messageHandler.Edit)
	authed.DELETE("/messages/:messageId", messageHandler.Delete)

	authed.POST("/uploads/presign", uploadHandler.Presign)

	authed.GET("/notifications", notificationHandler.List)
	authed.GET("/notifications/unread-count", notificationHandler.UnreadCount)
	authed.POST("/notifications/read/:notificationId", notificationHandler.MarkRead)

	appLogger.Infof("starting server on port %s", cfg.AppPort)
	if err := r.Run(fmt.Sprintf(":%s", cfg.AppPort)); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
