package handlers

import (
	"errors"
	"strconv"
	"strings"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/ta28nov/appandroid-sub000/internal/presence"
	ws "github.com/ta28nov/appandroid-sub000/internal/websocket"
	"github.com/ta28nov/appandroid-sub000/pkg/auth"
)

type RealtimeHandler struct {
	registry  *presence.Registry
	jwtSecret string
}

func NewRealtimeHandler(registry *presence.Registry, jwtSecret string) *RealtimeHandler {
	return &RealtimeHandler{
		registry:  registry,
		jwtSecret: jwtSecret,
	}
}

func (h *RealtimeHandler) WebSocketAuth(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fail(c, fiber.StatusUpgradeRequired, codeValidation, "WebSocket upgrade required")
	}

	claims, err := h.parseWSClaims(c)
	if err != nil {
		return failUnauthorized(c)
	}

	c.Locals("user_id", claims.UserID)
	return c.Next()
}

func (h *RealtimeHandler) HandleWebSocket(conn *websocket.Conn) {
	raw, _ := conn.Locals("user_id").(string)
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		_ = conn.Close()
		return
	}

	ws.Serve(conn, h.registry, userID)
}

func (h *RealtimeHandler) parseWSClaims(c *fiber.Ctx) (*auth.Claims, error) {
	tokenString := strings.TrimSpace(c.Query("token"))
	if tokenString == "" {
		authHeader := strings.TrimSpace(c.Get("Authorization"))
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
	}

	if tokenString == "" {
		return nil, errors.New("missing token")
	}

	return auth.ValidateToken(tokenString, h.jwtSecret)
}
