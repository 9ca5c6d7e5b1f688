package routes

import (
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ta28nov/appandroid-sub000/internal/config"
	"github.com/ta28nov/appandroid-sub000/internal/handlers"
	"github.com/ta28nov/appandroid-sub000/internal/middleware"
	"github.com/ta28nov/appandroid-sub000/internal/presence"
	"github.com/ta28nov/appandroid-sub000/internal/repository"
	"github.com/ta28nov/appandroid-sub000/internal/services"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool) {
	if !cfg.IsProduction() {
		handlers.EnableErrorDetail()
	}

	userRepo := repository.NewUserRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	documentRepo := repository.NewDocumentRepository(db)

	registry := presence.NewRegistry()
	dispatcher := presence.NewDispatcher(registry)

	chatService := services.NewChatService(db, conversationRepo, messageRepo, userRepo)
	notificationService := services.NewNotificationService(notificationRepo, dispatcher)
	documentService := services.NewDocumentService(documentRepo, userRepo, notificationService)

	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret)
	chatHandler := handlers.NewChatHandler(chatService, notificationService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	documentHandler := handlers.NewDocumentHandler(documentService)
	realtimeHandler := handlers.NewRealtimeHandler(registry, cfg.JWTSecret)

	authRequired := middleware.AuthRequired(cfg.JWTSecret)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Get("/me", authRequired, authHandler.Me)
	authGroup.Put("/me", authRequired, authHandler.UpdateMe)

	chats := app.Group("/chats", authRequired)
	chats.Get("", chatHandler.ListChats)
	chats.Post("", chatHandler.CreateChat)
	chats.Get("/:chatId/messages", chatHandler.GetMessages)
	chats.Post("/:chatId/messages", chatHandler.SendMessage)

	notifications := app.Group("/notifications", authRequired)
	notifications.Get("", notificationHandler.List)
	notifications.Post("/read", notificationHandler.MarkRead)
	notifications.Post("/read-all", notificationHandler.MarkAllRead)
	notifications.Delete("", notificationHandler.DeleteAll)
	notifications.Delete("/:id", notificationHandler.DeleteOne)

	documents := app.Group("/documents", authRequired)
	documents.Post("", documentHandler.Create)
	documents.Get("/:id", documentHandler.Get)
	documents.Post("/:id/share", documentHandler.Share)

	app.Use("/ws", realtimeHandler.WebSocketAuth)
	app.Get("/ws", websocket.New(realtimeHandler.HandleWebSocket))
}
