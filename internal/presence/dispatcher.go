package presence

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
	"github.com/ta28nov/appandroid-sub000/internal/models"
)

// Event is the envelope for every frame on the real-time channel.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

const (
	EventRegister     = "register"
	EventNotification = "notification"
	EventError        = "error"
)

// Dispatcher pushes stored notifications to whoever is currently connected.
// It is strictly best-effort: the stored notification is the source of truth,
// so an offline recipient or a failed write changes nothing.
type Dispatcher struct {
	registry *Registry
}

func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

func (d *Dispatcher) Dispatch(notification *models.Notification) {
	conn, ok := d.registry.Lookup(notification.RecipientID)
	if !ok {
		return
	}

	payload, err := json.Marshal(Event{Type: EventNotification, Payload: notification})
	if err != nil {
		log.Error().Err(err).Msg("encode notification event")
		return
	}

	if err := conn.Send(payload); err != nil {
		log.Warn().
			Err(err).
			Int64("recipient_id", notification.RecipientID).
			Int64("notification_id", notification.ID).
			Msg("notification push failed")
	}
}
