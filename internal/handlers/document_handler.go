package handlers

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/ta28nov/appandroid-sub000/internal/models"
)

type documentApplicationService interface {
	Create(ctx context.Context, ownerID int64, title string) (*models.Document, error)
	Get(ctx context.Context, actorID, documentID int64) (*models.Document, models.DocumentAccess, error)
	Share(ctx context.Context, actorID, documentID, targetUserID int64, permission string) error
}

type DocumentHandler struct {
	service documentApplicationService
}

func NewDocumentHandler(service documentApplicationService) *DocumentHandler {
	return &DocumentHandler{service: service}
}

type createDocumentRequest struct {
	Title string `json:"title"`
}

type shareDocumentRequest struct {
	UserID     int64  `json:"userId"`
	Permission string `json:"permission"`
}

func (h *DocumentHandler) Create(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return failUnauthorized(c)
	}

	var req createDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, codeValidation, "Invalid request body")
	}

	document, err := h.service.Create(c.Context(), userID, req.Title)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"document": document})
}

func (h *DocumentHandler) Get(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return failUnauthorized(c)
	}

	documentID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || documentID <= 0 {
		// A malformed id reads as a missing resource, before any
		// permission evaluation.
		return fail(c, fiber.StatusNotFound, codeNotFound, "Document not found")
	}

	document, access, err := h.service.Get(c.Context(), userID, documentID)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"document": document,
		"access":   access,
	})
}

func (h *DocumentHandler) Share(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return failUnauthorized(c)
	}

	documentID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || documentID <= 0 {
		return fail(c, fiber.StatusNotFound, codeNotFound, "Document not found")
	}

	var req shareDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, codeValidation, "Invalid request body")
	}

	if err := h.service.Share(c.Context(), userID, documentID, req.UserID, req.Permission); err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Document shared"})
}
