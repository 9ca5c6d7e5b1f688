package ws

import (
	"encoding/json"
	"errors"
	"strconv"
	"sync"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/rs/zerolog/log"
	"github.com/ta28nov/appandroid-sub000/internal/presence"
)

var errClientUnavailable = errors.New("client buffer full or closed")

// Client owns a single websocket connection. All writes funnel through the
// send channel so the write pump is the only goroutine touching the socket.
type Client struct {
	conn      *websocket.Conn
	userID    int64
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(conn *websocket.Conn, userID int64) *Client {
	return &Client{
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, 32),
		done:   make(chan struct{}),
	}
}

func (c *Client) Send(payload []byte) error {
	select {
	case <-c.done:
		return errClientUnavailable
	case c.send <- payload:
		return nil
	default:
		return errClientUnavailable
	}
}

func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func (c *Client) writePump() {
	defer c.Close()
	for {
		select {
		case <-c.done:
			return
		case payload := <-c.send:
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		}
	}
}

// Serve runs the connection's read loop until the client goes away.
//
// The channel has exactly two client-driven states: the connection starts
// unregistered, a "register" event with the caller's own user id creates the
// presence entry, and disconnecting removes it. Everything the server sends
// arrives as "notification" events pushed by the dispatcher.
func Serve(conn *websocket.Conn, registry *presence.Registry, userID int64) {
	client := NewClient(conn, userID)
	go client.writePump()
	defer client.Close()

	entryID := ""
	defer func() {
		if entryID != "" {
			registry.Unregister(userID, entryID)
		}
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var event struct {
			Type    string `json:"type"`
			Payload string `json:"payload"`
		}
		if err := json.Unmarshal(payload, &event); err != nil {
			writeError(client, "invalid event payload")
			continue
		}

		switch event.Type {
		case presence.EventRegister:
			if event.Payload != strconv.FormatInt(userID, 10) {
				writeError(client, "identity mismatch")
				continue
			}
			if entryID == "" {
				entryID = registry.Register(userID, client)
				log.Debug().Int64("user_id", userID).Msg("presence registered")
			}
		default:
			writeError(client, "unsupported event type")
		}
	}
}

func writeError(client *Client, message string) {
	payload, err := json.Marshal(presence.Event{Type: presence.EventError, Payload: message})
	if err != nil {
		return
	}
	_ = client.Send(payload)
}
