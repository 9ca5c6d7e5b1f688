package services

import (
	"context"
	"testing"

	"github.com/ta28nov/appandroid-sub000/internal/models"
	"github.com/ta28nov/appandroid-sub000/internal/repository"
)

func TestNotificationMarkReadCountsOnlyOwnedUnread(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := NewNotificationService(repository.NewNotificationRepository(pool), &stubDispatcher{})

	alice := createTestUser(t, ctx, pool, "alice")
	bob := createTestUser(t, ctx, pool, "bob")
	t.Cleanup(func() { cleanupTestUsers(t, ctx, pool, alice, bob) })

	unread, err := service.Create(ctx, alice, models.NotificationComment, "unread one", "", nil)
	if err != nil {
		t.Fatalf("Create unread: %v", err)
	}
	alreadyRead, err := service.Create(ctx, alice, models.NotificationComment, "already read", "", nil)
	if err != nil {
		t.Fatalf("Create already read: %v", err)
	}
	if count, err := service.MarkRead(ctx, alice, []int64{alreadyRead.ID}); err != nil || count != 1 {
		t.Fatalf("priming MarkRead: count=%d err=%v", count, err)
	}
	foreign, err := service.Create(ctx, bob, models.NotificationComment, "someone else's", "", nil)
	if err != nil {
		t.Fatalf("Create foreign: %v", err)
	}

	ids := []int64{unread.ID, alreadyRead.ID, foreign.ID, foreign.ID + 100000}
	count, err := service.MarkRead(ctx, alice, ids)
	if err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly 1 modified among owned-and-unread ids, got %d", count)
	}

	count, err = service.MarkRead(ctx, alice, ids)
	if err != nil {
		t.Fatalf("MarkRead repeat: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected repeat MarkRead to modify nothing, got %d", count)
	}

	if unreadLeft, err := service.MarkAllRead(ctx, bob); err != nil || unreadLeft != 1 {
		t.Fatalf("expected bob's own notification untouched, modified=%d err=%v", unreadLeft, err)
	}
}

func TestNotificationUnreadBadgeIgnoresFiltersAgainstStore(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := NewNotificationService(repository.NewNotificationRepository(pool), &stubDispatcher{})

	alice := createTestUser(t, ctx, pool, "alice")
	t.Cleanup(func() { cleanupTestUsers(t, ctx, pool, alice) })

	for _, title := range []string{"comment one", "comment two"} {
		if _, err := service.Create(ctx, alice, models.NotificationComment, title, "", nil); err != nil {
			t.Fatalf("Create %q: %v", title, err)
		}
	}
	mention, err := service.Create(ctx, alice, models.NotificationMention, "a mention", "", nil)
	if err != nil {
		t.Fatalf("Create mention: %v", err)
	}
	if _, err := service.MarkRead(ctx, alice, []int64{mention.ID}); err != nil {
		t.Fatalf("MarkRead mention: %v", err)
	}

	readOnly := true
	notifications, total, unreadCount, err := service.List(ctx, alice, NotificationListOptions{
		Read:     &readOnly,
		Page:     1,
		PageSize: 10,
	})
	if err != nil {
		t.Fatalf("List read-only: %v", err)
	}
	if total != 1 || len(notifications) != 1 {
		t.Fatalf("expected one read notification, got total=%d len=%d", total, len(notifications))
	}
	if unreadCount != 2 {
		t.Fatalf("expected unread badge 2 despite read filter, got %d", unreadCount)
	}

	notifications, total, unreadCount, err = service.List(ctx, alice, NotificationListOptions{
		Type:     models.NotificationComment,
		Page:     1,
		PageSize: 10,
	})
	if err != nil {
		t.Fatalf("List comments: %v", err)
	}
	if total != 2 || len(notifications) != 2 {
		t.Fatalf("expected two comment notifications, got total=%d len=%d", total, len(notifications))
	}
	if unreadCount != 2 {
		t.Fatalf("expected unread badge 2 despite type filter, got %d", unreadCount)
	}
}
