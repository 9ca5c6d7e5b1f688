package handlers

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/ta28nov/appandroid-sub000/internal/models"
	"github.com/ta28nov/appandroid-sub000/internal/services"
)

type notificationApplicationService interface {
	List(ctx context.Context, recipientID int64, opts services.NotificationListOptions) ([]models.Notification, int, int, error)
	MarkRead(ctx context.Context, recipientID int64, ids []int64) (int64, error)
	MarkAllRead(ctx context.Context, recipientID int64) (int64, error)
	DeleteOne(ctx context.Context, recipientID int64, id int64) error
	DeleteAll(ctx context.Context, recipientID int64) (int64, error)
}

type NotificationHandler struct {
	service notificationApplicationService
}

func NewNotificationHandler(service notificationApplicationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

type markReadRequest struct {
	NotificationIDs []int64 `json:"notificationIds"`
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return failUnauthorized(c)
	}

	opts := services.NotificationListOptions{
		Type:     c.Query("type"),
		Page:     parsePositiveInt(c.Query("page"), 1),
		PageSize: parsePositiveInt(c.Query("limit"), defaultPageLimit),
	}
	if opts.PageSize > maxPageLimit {
		opts.PageSize = maxPageLimit
	}
	switch c.Query("read") {
	case "":
	case "true":
		read := true
		opts.Read = &read
	case "false":
		read := false
		opts.Read = &read
	default:
		return fail(c, fiber.StatusBadRequest, codeValidation, "Invalid read filter")
	}

	notifications, total, unread, err := h.service.List(c.Context(), userID, opts)
	if err != nil {
		return mapServiceError(c, err)
	}

	meta := buildPaginationMeta(opts.Page, opts.PageSize, total)
	return c.JSON(fiber.Map{
		"notifications": notifications,
		"page":          meta.Page,
		"pages":         meta.TotalPages,
		"total":         meta.Total,
		"unreadCount":   unread,
	})
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return failUnauthorized(c)
	}

	var req markReadRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, codeValidation, "Invalid request body")
	}

	modified, err := h.service.MarkRead(c.Context(), userID, req.NotificationIDs)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":       "Notifications marked as read",
		"modifiedCount": modified,
	})
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return failUnauthorized(c)
	}

	modified, err := h.service.MarkAllRead(c.Context(), userID)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":       "All notifications marked as read",
		"modifiedCount": modified,
	})
}

func (h *NotificationHandler) DeleteAll(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return failUnauthorized(c)
	}

	deleted, err := h.service.DeleteAll(c.Context(), userID)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":      "Notifications deleted",
		"deletedCount": deleted,
	})
}

func (h *NotificationHandler) DeleteOne(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return failUnauthorized(c)
	}

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return fail(c, fiber.StatusNotFound, codeNotFound, "Notification not found")
	}

	if err := h.service.DeleteOne(c.Context(), userID, id); err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Notification deleted",
		"id":      id,
	})
}
