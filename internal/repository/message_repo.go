package repository

import (
	"context"

	"github.com/ta28nov/appandroid-sub000/internal/models"
)

type MessageRepository struct {
	db DBTX
}

func NewMessageRepository(db DBTX) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create inserts a message with the sender already in its read-by set.
func (r *MessageRepository) Create(
	ctx context.Context,
	conversationID int64,
	senderID int64,
	text string,
) (*models.Message, error) {
	query := `
		INSERT INTO messages (conversation_id, sender_id, text, read_by)
		VALUES ($1, $2, $3, ARRAY[$2]::bigint[])
		RETURNING id, conversation_id, sender_id, text, read_by, created_at
	`

	var message models.Message
	err := r.db.QueryRow(ctx, query, conversationID, senderID, text).Scan(
		&message.ID,
		&message.ConversationID,
		&message.SenderID,
		&message.Text,
		&message.ReadBy,
		&message.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &message, nil
}

// ListBefore returns up to limit messages strictly older than the message
// identified by beforeID, newest first. beforeID == 0 means "from the top".
// A cursor that does not belong to the conversation yields an empty page.
func (r *MessageRepository) ListBefore(
	ctx context.Context,
	conversationID int64,
	beforeID int64,
	limit int,
) ([]models.Message, error) {
	query := `
		SELECT id, conversation_id, sender_id, text, read_by, created_at
		FROM messages
		WHERE conversation_id = $1
		  AND ($2::bigint = 0 OR created_at < (
			SELECT created_at FROM messages WHERE id = $2 AND conversation_id = $1
		  ))
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`

	rows, err := r.db.Query(ctx, query, conversationID, beforeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		var message models.Message
		if err := rows.Scan(
			&message.ID,
			&message.ConversationID,
			&message.SenderID,
			&message.Text,
			&message.ReadBy,
			&message.CreatedAt,
		); err != nil {
			return nil, err
		}

		messages = append(messages, message)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return messages, nil
}

// MarkRead appends readerID to the read-by set of each listed message. The
// membership guard makes the append idempotent, so concurrent calls racing on
// the same message are harmless.
func (r *MessageRepository) MarkRead(
	ctx context.Context,
	messageIDs []int64,
	readerID int64,
) error {
	if len(messageIDs) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx, `
		UPDATE messages
		SET read_by = array_append(read_by, $2)
		WHERE id = ANY($1)
		  AND sender_id <> $2
		  AND NOT ($2 = ANY(read_by))
	`, messageIDs, readerID)
	return err
}
