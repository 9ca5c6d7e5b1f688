package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/ta28nov/appandroid-sub000/internal/models"
	"github.com/ta28nov/appandroid-sub000/internal/services"
)

type stubNotificationService struct {
	listResult    []models.Notification
	listTotal     int
	listUnread    int
	listErr       error
	markResult    int64
	markErr       error
	deleteOneErr  error
	deleteAllN    int64
	lastRecipient int64
	lastOpts      services.NotificationListOptions
	lastIDs       []int64
	lastDeletedID int64
}

func (s *stubNotificationService) List(_ context.Context, recipientID int64, opts services.NotificationListOptions) ([]models.Notification, int, int, error) {
	s.lastRecipient = recipientID
	s.lastOpts = opts
	return s.listResult, s.listTotal, s.listUnread, s.listErr
}

func (s *stubNotificationService) MarkRead(_ context.Context, recipientID int64, ids []int64) (int64, error) {
	s.lastRecipient = recipientID
	s.lastIDs = ids
	return s.markResult, s.markErr
}

func (s *stubNotificationService) MarkAllRead(_ context.Context, recipientID int64) (int64, error) {
	s.lastRecipient = recipientID
	return s.markResult, s.markErr
}

func (s *stubNotificationService) DeleteOne(_ context.Context, recipientID int64, id int64) error {
	s.lastRecipient = recipientID
	s.lastDeletedID = id
	return s.deleteOneErr
}

func (s *stubNotificationService) DeleteAll(_ context.Context, recipientID int64) (int64, error) {
	s.lastRecipient = recipientID
	return s.deleteAllN, nil
}

func newNotificationTestApp(service *stubNotificationService) *fiber.App {
	handler := NewNotificationHandler(service)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", "42")
		return c.Next()
	})
	app.Get("/notifications", handler.List)
	app.Post("/notifications/read", handler.MarkRead)
	app.Post("/notifications/read-all", handler.MarkAllRead)
	app.Delete("/notifications", handler.DeleteAll)
	app.Delete("/notifications/:id", handler.DeleteOne)
	return app
}

func TestListNotificationsIncludesGlobalUnreadCount(t *testing.T) {
	service := &stubNotificationService{
		listResult: []models.Notification{
			{
				ID:          1,
				RecipientID: 42,
				Type:        models.NotificationShare,
				Title:       "Document shared with you",
				Related:     &models.RelatedEntity{EntityType: models.EntityDocument, EntityID: "31"},
			},
		},
		listTotal:  1,
		listUnread: 6,
	}
	app := newNotificationTestApp(service)

	req := httptest.NewRequest(http.MethodGet, "/notifications?read=false&type=share&page=1&limit=10", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastRecipient != 42 {
		t.Fatalf("unexpected recipient: %d", service.lastRecipient)
	}
	if service.lastOpts.Read == nil || *service.lastOpts.Read {
		t.Fatal("read=false filter not forwarded")
	}
	if service.lastOpts.Type != "share" {
		t.Fatalf("type filter not forwarded: %q", service.lastOpts.Type)
	}

	var body struct {
		Notifications []models.Notification `json:"notifications"`
		Page          int                   `json:"page"`
		Pages         int                   `json:"pages"`
		Total         int                   `json:"total"`
		UnreadCount   int                   `json:"unreadCount"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if body.UnreadCount != 6 {
		t.Fatalf("expected global unreadCount 6, got %d", body.UnreadCount)
	}
	if len(body.Notifications) != 1 || body.Notifications[0].Related.EntityID != "31" {
		t.Fatalf("unexpected notifications: %+v", body.Notifications)
	}
}

func TestListNotificationsRejectsBadReadFilter(t *testing.T) {
	app := newNotificationTestApp(&stubNotificationService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/notifications?read=maybe", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestMarkReadReportsModifiedCount(t *testing.T) {
	service := &stubNotificationService{markResult: 2}
	app := newNotificationTestApp(service)

	req := httptest.NewRequest(
		http.MethodPost,
		"/notifications/read",
		strings.NewReader(`{"notificationIds":[1,2,99]}`),
	)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if len(service.lastIDs) != 3 {
		t.Fatalf("expected ids forwarded, got %v", service.lastIDs)
	}

	var body struct {
		ModifiedCount int64 `json:"modifiedCount"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if body.ModifiedCount != 2 {
		t.Fatalf("expected modifiedCount 2, got %d", body.ModifiedCount)
	}
}

func TestDeleteForeignNotificationIsNotFound(t *testing.T) {
	service := &stubNotificationService{deleteOneErr: services.ErrNotFound}
	app := newNotificationTestApp(service)

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/notifications/55", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for an ownership mismatch, got %d", resp.StatusCode)
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
	if body.Success || body.Error.Code != "NOT_FOUND" {
		t.Fatalf("unexpected error envelope: %+v", body)
	}
}

func TestDeleteAllReportsCount(t *testing.T) {
	service := &stubNotificationService{deleteAllN: 7}
	app := newNotificationTestApp(service)

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/notifications", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		DeletedCount int64 `json:"deletedCount"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if body.DeletedCount != 7 {
		t.Fatalf("expected deletedCount 7, got %d", body.DeletedCount)
	}
}
