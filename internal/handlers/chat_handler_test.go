package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/ta28nov/appandroid-sub000/internal/models"
	"github.com/ta28nov/appandroid-sub000/internal/services"
)

type stubChatService struct {
	conversationsResult []models.ConversationSummary
	conversationsTotal  int
	conversationsErr    error
	createResult        *models.Conversation
	createCreated       bool
	createErr           error
	messagesResult      []models.Message
	messagesErr         error
	sendResult          *services.ChatDelivery
	sendErr             error
	lastActorID         int64
	lastRecipientID     int64
	lastConversationID  int64
	lastBeforeID        int64
	lastLimit           int
	lastText            string
}

func (s *stubChatService) ListConversations(_ context.Context, actorID int64, page, pageSize int) ([]models.ConversationSummary, int, error) {
	s.lastActorID = actorID
	s.lastLimit = pageSize
	return s.conversationsResult, s.conversationsTotal, s.conversationsErr
}

func (s *stubChatService) CreateConversation(_ context.Context, actorID, recipientID int64) (*models.Conversation, bool, error) {
	s.lastActorID = actorID
	s.lastRecipientID = recipientID
	return s.createResult, s.createCreated, s.createErr
}

func (s *stubChatService) ListMessages(_ context.Context, actorID, conversationID, beforeID int64, limit int) ([]models.Message, error) {
	s.lastActorID = actorID
	s.lastConversationID = conversationID
	s.lastBeforeID = beforeID
	s.lastLimit = limit
	return s.messagesResult, s.messagesErr
}

func (s *stubChatService) SendMessage(_ context.Context, actorID, conversationID int64, text string) (*services.ChatDelivery, error) {
	s.lastActorID = actorID
	s.lastConversationID = conversationID
	s.lastText = text
	return s.sendResult, s.sendErr
}

type capturedNotify struct {
	recipientID int64
	kind        string
	related     *models.RelatedEntity
}

type stubChatNotifier struct {
	calls []capturedNotify
}

func (s *stubChatNotifier) Notify(_ context.Context, recipientID int64, notificationType, _, _ string, related *models.RelatedEntity) {
	s.calls = append(s.calls, capturedNotify{
		recipientID: recipientID,
		kind:        notificationType,
		related:     related,
	})
}

func newChatTestApp(service *stubChatService, notifier *stubChatNotifier) *fiber.App {
	if notifier == nil {
		notifier = &stubChatNotifier{}
	}
	handler := NewChatHandler(service, notifier)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", "42")
		return c.Next()
	})
	app.Get("/chats", handler.ListChats)
	app.Post("/chats", handler.CreateChat)
	app.Get("/chats/:chatId/messages", handler.GetMessages)
	app.Post("/chats/:chatId/messages", handler.SendMessage)
	return app
}

func TestListChatsReturnsPaginatedSummaries(t *testing.T) {
	service := &stubChatService{
		conversationsResult: []models.ConversationSummary{
			{
				Conversation: models.Conversation{ID: 17, ParticipantA: 8, ParticipantB: 42},
				Partner:      &models.PublicProfile{ID: 8, DisplayName: "Linh"},
				UnreadCount:  2,
			},
		},
		conversationsTotal: 23,
	}
	app := newChatTestApp(service, nil)

	req := httptest.NewRequest(http.MethodGet, "/chats?page=1&limit=10", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastActorID != 42 {
		t.Fatalf("unexpected actor id: %d", service.lastActorID)
	}

	var body struct {
		Chats []models.ConversationSummary `json:"chats"`
		Page  int                          `json:"page"`
		Pages int                          `json:"pages"`
		Total int                          `json:"total"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(body.Chats) != 1 || body.Chats[0].UnreadCount != 2 {
		t.Fatalf("unexpected chats: %+v", body.Chats)
	}
	if body.Total != 23 || body.Pages != 3 {
		t.Fatalf("unexpected pagination: %+v", body)
	}
}

func TestCreateChatStatusReflectsCreation(t *testing.T) {
	service := &stubChatService{
		createResult:  &models.Conversation{ID: 9, ParticipantA: 7, ParticipantB: 42},
		createCreated: true,
	}
	app := newChatTestApp(service, nil)

	req := httptest.NewRequest(http.MethodPost, "/chats", strings.NewReader(`{"recipientId":7}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 for a new conversation, got %d", resp.StatusCode)
	}
	if service.lastRecipientID != 7 {
		t.Fatalf("expected recipient 7, got %d", service.lastRecipientID)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	// A fresh conversation has no snapshot yet; the key must still be present
	// as an explicit null.
	if !strings.Contains(string(raw), `"last_message":null`) {
		t.Fatalf("expected explicit null last_message, got %s", raw)
	}

	service.createCreated = false
	again := httptest.NewRequest(http.MethodPost, "/chats", strings.NewReader(`{"recipientId":7}`))
	again.Header.Set("Content-Type", "application/json")
	resp2, err := app.Test(again)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for an existing conversation, got %d", resp2.StatusCode)
	}
}

func TestCreateChatSelfChatIsBadRequest(t *testing.T) {
	service := &stubChatService{createErr: services.ErrInvalidOperation}
	app := newChatTestApp(service, nil)

	req := httptest.NewRequest(http.MethodPost, "/chats", strings.NewReader(`{"recipientId":42}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if body.Success || body.Error.Code != "INVALID_OPERATION" {
		t.Fatalf("unexpected error envelope: %+v", body)
	}
}

func TestGetMessagesReversesToOldestFirst(t *testing.T) {
	now := time.Now().UTC()
	service := &stubChatService{
		messagesResult: []models.Message{
			{ID: 12, ConversationID: 3, SenderID: 8, Text: "newest", CreatedAt: now},
			{ID: 11, ConversationID: 3, SenderID: 42, Text: "older", CreatedAt: now.Add(-time.Minute)},
		},
	}
	app := newChatTestApp(service, nil)

	req := httptest.NewRequest(http.MethodGet, "/chats/3/messages?limit=20&before=13", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastConversationID != 3 || service.lastBeforeID != 13 || service.lastLimit != 20 {
		t.Fatalf("unexpected query forwarding: conv=%d before=%d limit=%d",
			service.lastConversationID, service.lastBeforeID, service.lastLimit)
	}

	var messages []models.Message
	if err := json.NewDecoder(resp.Body).Decode(&messages); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(messages) != 2 || messages[0].ID != 11 || messages[1].ID != 12 {
		t.Fatalf("expected oldest-first ordering, got %+v", messages)
	}
}

func TestSendMessageNotifiesRecipient(t *testing.T) {
	service := &stubChatService{
		sendResult: &services.ChatDelivery{
			Message: &models.Message{
				ID:             5,
				ConversationID: 3,
				SenderID:       42,
				Text:           "hello",
				ReadBy:         []int64{42},
			},
			RecipientID: 8,
		},
	}
	notifier := &stubChatNotifier{}
	app := newChatTestApp(service, notifier)

	req := httptest.NewRequest(http.MethodPost, "/chats/3/messages", strings.NewReader(`{"text":"hello"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastText != "hello" {
		t.Fatalf("unexpected text forwarded: %q", service.lastText)
	}

	if len(notifier.calls) != 1 {
		t.Fatalf("expected one notification, got %d", len(notifier.calls))
	}
	call := notifier.calls[0]
	if call.recipientID != 8 || call.kind != models.NotificationMessage {
		t.Fatalf("unexpected notification: %+v", call)
	}
	if call.related == nil || call.related.EntityType != models.EntityChat || call.related.EntityID != "3" {
		t.Fatalf("unexpected related entity: %+v", call.related)
	}

	var message models.Message
	if err := json.NewDecoder(resp.Body).Decode(&message); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if message.ID != 5 || len(message.ReadBy) != 1 || message.ReadBy[0] != 42 {
		t.Fatalf("expected sender in read_by, got %+v", message)
	}
}

func TestSendMessageEmptyTextIsBadRequest(t *testing.T) {
	service := &stubChatService{sendErr: services.ErrValidation}
	notifier := &stubChatNotifier{}
	app := newChatTestApp(service, notifier)

	req := httptest.NewRequest(http.MethodPost, "/chats/3/messages", strings.NewReader(`{"text":"   "}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if len(notifier.calls) != 0 {
		t.Fatal("a failed send must not notify anyone")
	}
}
