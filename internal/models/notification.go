package models

import "time"

const (
	NotificationReminder = "reminder"
	NotificationComment  = "comment"
	NotificationTask     = "task"
	NotificationDocument = "document"
	NotificationMessage  = "message"
	NotificationMention  = "mention"
	NotificationProject  = "project"
	NotificationShare    = "share"
)

func ValidNotificationType(t string) bool {
	switch t {
	case NotificationReminder, NotificationComment, NotificationTask,
		NotificationDocument, NotificationMessage, NotificationMention,
		NotificationProject, NotificationShare:
		return true
	default:
		return false
	}
}

const (
	EntityTask     = "task"
	EntityProject  = "project"
	EntityPost     = "post"
	EntityComment  = "comment"
	EntityDocument = "document"
	EntityUser     = "user"
	EntityMessage  = "message"
	EntityChat     = "chat"
)

// RelatedEntity is a tagged pointer to the domain object a notification
// concerns. The id is opaque on purpose: the same record shape has to cover
// heterogeneous targets, so it is never a foreign key.
type RelatedEntity struct {
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
}

type Notification struct {
	ID          int64          `json:"id"`
	RecipientID int64          `json:"recipient_id"`
	Type        string         `json:"type"`
	Title       string         `json:"title"`
	Body        string         `json:"body"`
	Read        bool           `json:"read"`
	Related     *RelatedEntity `json:"related,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}
