package handlers

import (
	"errors"
	"net/mail"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ta28nov/appandroid-sub000/internal/models"
	"github.com/ta28nov/appandroid-sub000/internal/repository"
	"github.com/ta28nov/appandroid-sub000/pkg/auth"
)

type AuthHandler struct {
	userRepo  *repository.UserRepository
	jwtSecret string
}

func NewAuthHandler(userRepo *repository.UserRepository, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
	}
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateProfileRequest struct {
	DisplayName  *string `json:"display_name"`
	AvatarURL    *string `json:"avatar_url"`
	Bio          *string `json:"bio"`
	ShowEmail    *bool   `json:"show_email"`
	ShowActivity *bool   `json:"show_activity"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, codeValidation, "Invalid request body")
	}

	parsedEmail, err := mail.ParseAddress(strings.TrimSpace(req.Email))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, codeValidation, "Invalid email format")
	}
	req.Email = strings.ToLower(parsedEmail.Address)
	if len(req.Password) < 8 {
		return fail(c, fiber.StatusBadRequest, codeValidation, "Password must be at least 8 characters")
	}
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if req.DisplayName == "" {
		return fail(c, fiber.StatusBadRequest, codeValidation, "Display name is required")
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return failInternal(c, "Failed to hash password", err)
	}

	user := &models.User{
		Email:        req.Email,
		DisplayName:  req.DisplayName,
		PasswordHash: hashed,
	}
	if err := h.userRepo.CreateUser(c.Context(), user); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fail(c, fiber.StatusConflict, codeConflict, "Email already exists")
		}
		return failInternal(c, "Failed to create user", err)
	}

	token, err := auth.GenerateToken(strconv.FormatInt(user.ID, 10), h.jwtSecret)
	if err != nil {
		return failInternal(c, "Failed to issue token", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, codeValidation, "Invalid request body")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := h.userRepo.GetByEmail(c.Context(), email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return failUnauthorized(c)
		}
		return failInternal(c, "Failed to load user", err)
	}

	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		return failUnauthorized(c)
	}

	token, err := auth.GenerateToken(strconv.FormatInt(user.ID, 10), h.jwtSecret)
	if err != nil {
		return failInternal(c, "Failed to issue token", err)
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": user})
}

func (h *AuthHandler) UpdateMe(c *fiber.Ctx) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, codeValidation, "Invalid request body")
	}

	if req.DisplayName != nil {
		trimmed := strings.TrimSpace(*req.DisplayName)
		if trimmed == "" {
			return fail(c, fiber.StatusBadRequest, codeValidation, "Display name cannot be empty")
		}
		user.DisplayName = trimmed
	}
	if req.AvatarURL != nil {
		user.AvatarURL = strings.TrimSpace(*req.AvatarURL)
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.ShowEmail != nil {
		user.ShowEmail = *req.ShowEmail
	}
	if req.ShowActivity != nil {
		user.ShowActivity = *req.ShowActivity
	}

	if err := h.userRepo.UpdateProfile(c.Context(), user); err != nil {
		return failInternal(c, "Failed to update profile", err)
	}

	return c.JSON(fiber.Map{"user": user})
}

func (h *AuthHandler) currentUser(c *fiber.Ctx) (*models.User, error) {
	userID, err := actorID(c)
	if err != nil {
		return nil, failUnauthorized(c)
	}

	user, err := h.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, failUnauthorized(c)
		}
		return nil, failInternal(c, "Failed to load user", err)
	}
	return user, nil
}
