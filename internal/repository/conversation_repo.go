package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ta28nov/appandroid-sub000/internal/models"
)

type ConversationRepository struct {
	db DBTX
}

func NewConversationRepository(db DBTX) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// normalizePair orders a participant pair so that the smaller id always lands
// in participant_a. The unique constraint on (participant_a, participant_b)
// then guarantees at most one conversation per unordered pair.
func normalizePair(userA, userB int64) (int64, int64) {
	if userA > userB {
		return userB, userA
	}
	return userA, userB
}

const conversationColumns = `
	id, participant_a, participant_b,
	last_sender_id, last_text, last_sent_at,
	last_activity_at, created_at
`

func scanConversation(row pgx.Row, extra ...any) (*models.Conversation, error) {
	var conversation models.Conversation
	var lastSenderID sql.NullInt64
	var lastText sql.NullString
	var lastSentAt sql.NullTime

	dest := []any{
		&conversation.ID,
		&conversation.ParticipantA,
		&conversation.ParticipantB,
		&lastSenderID,
		&lastText,
		&lastSentAt,
		&conversation.LastActivityAt,
		&conversation.CreatedAt,
	}
	dest = append(dest, extra...)

	err := row.Scan(dest...)
	if err != nil {
		return nil, err
	}

	if lastSenderID.Valid {
		conversation.LastMessage = &models.MessageSnapshot{
			SenderID: lastSenderID.Int64,
			Text:     lastText.String,
			SentAt:   lastSentAt.Time,
		}
	}
	return &conversation, nil
}

// GetOrCreate returns the conversation between the unordered pair, creating it
// with an empty last-message snapshot on first use. The boolean reports
// whether a new row was created.
func (r *ConversationRepository) GetOrCreate(
	ctx context.Context,
	userA int64,
	userB int64,
) (*models.Conversation, bool, error) {
	first, second := normalizePair(userA, userB)

	selectQuery := `
		SELECT ` + conversationColumns + `
		FROM conversations
		WHERE participant_a = $1 AND participant_b = $2
	`
	conversation, err := scanConversation(r.db.QueryRow(ctx, selectQuery, first, second))
	if err == nil {
		return conversation, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}

	// xmax = 0 only on a freshly inserted row, so the loser of a creation
	// race still gets the row back but reports created=false.
	insertQuery := `
		INSERT INTO conversations (participant_a, participant_b)
		VALUES ($1, $2)
		ON CONFLICT (participant_a, participant_b)
		DO UPDATE SET last_activity_at = conversations.last_activity_at
		RETURNING ` + conversationColumns + `, (xmax = 0)`
	var inserted bool
	conversation, err = scanConversation(r.db.QueryRow(ctx, insertQuery, first, second), &inserted)
	if err != nil {
		return nil, false, err
	}
	return conversation, inserted, nil
}

func (r *ConversationRepository) GetByID(ctx context.Context, conversationID int64) (*models.Conversation, error) {
	query := `
		SELECT ` + conversationColumns + `
		FROM conversations
		WHERE id = $1
	`
	return scanConversation(r.db.QueryRow(ctx, query, conversationID))
}

// ListForParticipant returns a page of the participant's conversations ordered
// by last activity, each annotated with the other party's public profile and
// the number of messages the participant has not read yet. The unread count is
// computed per row at read time; there is no denormalized counter to drift.
func (r *ConversationRepository) ListForParticipant(
	ctx context.Context,
	participantID int64,
	limit int,
	offset int,
) ([]models.ConversationSummary, error) {
	query := `
		SELECT
			c.id,
			c.participant_a,
			c.participant_b,
			c.last_sender_id,
			c.last_text,
			c.last_sent_at,
			c.last_activity_at,
			c.created_at,
			u.id,
			u.display_name,
			u.avatar_url,
			CASE WHEN u.show_email THEN u.email ELSE '' END,
			COALESCE(un.unread_count, 0)
		FROM conversations c
		JOIN users u
		  ON u.id = CASE WHEN c.participant_a = $1 THEN c.participant_b ELSE c.participant_a END
		LEFT JOIN LATERAL (
			SELECT COUNT(*) AS unread_count
			FROM messages
			WHERE conversation_id = c.id
			  AND sender_id <> $1
			  AND NOT ($1 = ANY(read_by))
		) un ON TRUE
		WHERE c.participant_a = $1 OR c.participant_b = $1
		ORDER BY c.last_activity_at DESC, c.id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, participantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]models.ConversationSummary, 0)
	for rows.Next() {
		var summary models.ConversationSummary
		var lastSenderID sql.NullInt64
		var lastText sql.NullString
		var lastSentAt sql.NullTime
		var partner models.PublicProfile

		if err := rows.Scan(
			&summary.ID,
			&summary.ParticipantA,
			&summary.ParticipantB,
			&lastSenderID,
			&lastText,
			&lastSentAt,
			&summary.LastActivityAt,
			&summary.CreatedAt,
			&partner.ID,
			&partner.DisplayName,
			&partner.AvatarURL,
			&partner.Email,
			&summary.UnreadCount,
		); err != nil {
			return nil, err
		}

		if lastSenderID.Valid {
			summary.LastMessage = &models.MessageSnapshot{
				SenderID: lastSenderID.Int64,
				Text:     lastText.String,
				SentAt:   lastSentAt.Time,
			}
		}
		summary.Partner = &partner

		summaries = append(summaries, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return summaries, nil
}

func (r *ConversationRepository) CountForParticipant(ctx context.Context, participantID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM conversations
		WHERE participant_a = $1 OR participant_b = $1
	`
	var total int
	if err := r.db.QueryRow(ctx, query, participantID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// UpdateSnapshot refreshes the denormalized last-message copy and the
// last-activity timestamp after a message append.
func (r *ConversationRepository) UpdateSnapshot(
	ctx context.Context,
	conversationID int64,
	senderID int64,
	text string,
	sentAt time.Time,
) error {
	_, err := r.db.Exec(ctx, `
		UPDATE conversations
		SET last_sender_id = $2,
		    last_text = $3,
		    last_sent_at = $4,
		    last_activity_at = $4
		WHERE id = $1
	`, conversationID, senderID, text, sentAt)
	return err
}
