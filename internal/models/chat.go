package models

import "time"

type Conversation struct {
	ID             int64            `json:"id"`
	ParticipantA   int64            `json:"participant_a"`
	ParticipantB   int64            `json:"participant_b"`
	LastMessage    *MessageSnapshot `json:"last_message"`
	LastActivityAt time.Time        `json:"last_activity_at"`
	CreatedAt      time.Time        `json:"created_at"`
}

// MessageSnapshot is the denormalized copy of a conversation's most recent
// message, kept on the conversation row so list views avoid a join.
type MessageSnapshot struct {
	SenderID int64     `json:"sender_id"`
	Text     string    `json:"text"`
	SentAt   time.Time `json:"sent_at"`
}

func (c *Conversation) HasParticipant(userID int64) bool {
	return c.ParticipantA == userID || c.ParticipantB == userID
}

// OtherParticipant returns the participant that is not userID.
func (c *Conversation) OtherParticipant(userID int64) int64 {
	if c.ParticipantA == userID {
		return c.ParticipantB
	}
	return c.ParticipantA
}

type Message struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	SenderID       int64     `json:"sender_id"`
	Text           string    `json:"text"`
	ReadBy         []int64   `json:"read_by"`
	CreatedAt      time.Time `json:"created_at"`
}

func (m *Message) ReadByUser(userID int64) bool {
	for _, id := range m.ReadBy {
		if id == userID {
			return true
		}
	}
	return false
}

type ConversationSummary struct {
	Conversation
	Partner     *PublicProfile `json:"partner,omitempty"`
	UnreadCount int            `json:"unread_count"`
}
