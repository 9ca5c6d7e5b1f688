package handlers

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/ta28nov/appandroid-sub000/internal/models"
	"github.com/ta28nov/appandroid-sub000/internal/services"
)

type chatApplicationService interface {
	ListConversations(ctx context.Context, actorID int64, page, pageSize int) ([]models.ConversationSummary, int, error)
	CreateConversation(ctx context.Context, actorID, recipientID int64) (*models.Conversation, bool, error)
	ListMessages(ctx context.Context, actorID, conversationID, beforeID int64, limit int) ([]models.Message, error)
	SendMessage(ctx context.Context, actorID, conversationID int64, text string) (*services.ChatDelivery, error)
}

type chatNotifier interface {
	Notify(ctx context.Context, recipientID int64, notificationType, title, body string, related *models.RelatedEntity)
}

type ChatHandler struct {
	service  chatApplicationService
	notifier chatNotifier
}

func NewChatHandler(service chatApplicationService, notifier chatNotifier) *ChatHandler {
	return &ChatHandler{
		service:  service,
		notifier: notifier,
	}
}

type createChatRequest struct {
	RecipientID int64 `json:"recipientId"`
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

func (h *ChatHandler) ListChats(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return failUnauthorized(c)
	}

	page := parsePositiveInt(c.Query("page"), 1)
	limit := parsePositiveInt(c.Query("limit"), defaultPageLimit)
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	chats, total, err := h.service.ListConversations(c.Context(), userID, page, limit)
	if err != nil {
		return mapServiceError(c, err)
	}

	meta := buildPaginationMeta(page, limit, total)
	return c.JSON(fiber.Map{
		"chats": chats,
		"page":  meta.Page,
		"pages": meta.TotalPages,
		"total": meta.Total,
	})
}

// CreateChat is find-or-create: 200 with the existing conversation, 201 when
// this call created it.
func (h *ChatHandler) CreateChat(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return failUnauthorized(c)
	}

	var req createChatRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, codeValidation, "Invalid request body")
	}

	conversation, created, err := h.service.CreateConversation(c.Context(), userID, req.RecipientID)
	if err != nil {
		return mapServiceError(c, err)
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(conversation)
}

func (h *ChatHandler) GetMessages(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return failUnauthorized(c)
	}

	chatID, err := strconv.ParseInt(c.Params("chatId"), 10, 64)
	if err != nil || chatID <= 0 {
		return fail(c, fiber.StatusNotFound, codeNotFound, "Chat not found")
	}

	limit := parsePositiveInt(c.Query("limit"), defaultPageLimit)
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	var beforeID int64
	if raw := c.Query("before"); raw != "" {
		beforeID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || beforeID <= 0 {
			return fail(c, fiber.StatusBadRequest, codeValidation, "Invalid before cursor")
		}
	}

	messages, err := h.service.ListMessages(c.Context(), userID, chatID, beforeID, limit)
	if err != nil {
		return mapServiceError(c, err)
	}

	// The store hands back newest-first; clients render oldest-first.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return c.JSON(messages)
}

func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return failUnauthorized(c)
	}

	chatID, err := strconv.ParseInt(c.Params("chatId"), 10, 64)
	if err != nil || chatID <= 0 {
		return fail(c, fiber.StatusNotFound, codeNotFound, "Chat not found")
	}

	var req sendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, codeValidation, "Invalid request body")
	}

	delivery, err := h.service.SendMessage(c.Context(), userID, chatID, req.Text)
	if err != nil {
		return mapServiceError(c, err)
	}

	// Announce to the other participant. Create-and-push never fails the
	// send; the notifier logs and swallows its own errors.
	h.notifier.Notify(
		c.Context(),
		delivery.RecipientID,
		models.NotificationMessage,
		"New message",
		truncateBody(delivery.Message.Text),
		&models.RelatedEntity{
			EntityType: models.EntityChat,
			EntityID:   strconv.FormatInt(delivery.Message.ConversationID, 10),
		},
	)

	return c.Status(fiber.StatusCreated).JSON(delivery.Message)
}

const maxNotificationBody = 140

func truncateBody(text string) string {
	runes := []rune(text)
	if len(runes) <= maxNotificationBody {
		return text
	}
	return string(runes[:maxNotificationBody-1]) + "…"
}
