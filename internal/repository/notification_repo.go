package repository

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5"
	"github.com/ta28nov/appandroid-sub000/internal/models"
)

type NotificationRepository struct {
	db DBTX
}

func NewNotificationRepository(db DBTX) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	query := `
		INSERT INTO notifications (recipient_id, type, title, body, related_entity_type, related_entity_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, read, created_at
	`

	var entityType, entityID *string
	if notification.Related != nil {
		entityType = &notification.Related.EntityType
		entityID = &notification.Related.EntityID
	}

	return r.db.QueryRow(ctx, query,
		notification.RecipientID,
		notification.Type,
		notification.Title,
		notification.Body,
		entityType,
		entityID,
	).Scan(&notification.ID, &notification.Read, &notification.CreatedAt)
}

func scanNotification(rows pgx.Rows) (models.Notification, error) {
	var notification models.Notification
	var entityType, entityID sql.NullString

	err := rows.Scan(
		&notification.ID,
		&notification.RecipientID,
		&notification.Type,
		&notification.Title,
		&notification.Body,
		&notification.Read,
		&entityType,
		&entityID,
		&notification.CreatedAt,
	)
	if err != nil {
		return notification, err
	}

	if entityType.Valid {
		notification.Related = &models.RelatedEntity{
			EntityType: entityType.String,
			EntityID:   entityID.String,
		}
	}
	return notification, nil
}

// List returns a page of the recipient's notifications, newest first. read is
// a tri-state filter (nil = both); notificationType filters when non-empty.
func (r *NotificationRepository) List(
	ctx context.Context,
	recipientID int64,
	read *bool,
	notificationType string,
	limit int,
	offset int,
) ([]models.Notification, error) {
	query := `
		SELECT id, recipient_id, type, title, body, read,
		       related_entity_type, related_entity_id, created_at
		FROM notifications
		WHERE recipient_id = $1
		  AND ($2::boolean IS NULL OR read = $2)
		  AND ($3::text = '' OR type = $3)
		ORDER BY created_at DESC, id DESC
		LIMIT $4 OFFSET $5
	`

	rows, err := r.db.Query(ctx, query, recipientID, read, notificationType, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := make([]models.Notification, 0)
	for rows.Next() {
		notification, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, notification)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return notifications, nil
}

func (r *NotificationRepository) Count(
	ctx context.Context,
	recipientID int64,
	read *bool,
	notificationType string,
) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM notifications
		WHERE recipient_id = $1
		  AND ($2::boolean IS NULL OR read = $2)
		  AND ($3::text = '' OR type = $3)
	`
	var total int
	if err := r.db.QueryRow(ctx, query, recipientID, read, notificationType).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// CountUnread is the recipient's global unread count, independent of any list
// filters, so the badge never changes with the active filter.
func (r *NotificationRepository) CountUnread(ctx context.Context, recipientID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM notifications
		WHERE recipient_id = $1 AND NOT read
	`
	var count int
	if err := r.db.QueryRow(ctx, query, recipientID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// MarkRead flips the read flag on the recipient's own unread notifications
// among ids and reports how many rows actually changed. Foreign, stale and
// already-read ids fall out of the WHERE clause silently.
func (r *NotificationRepository) MarkRead(
	ctx context.Context,
	recipientID int64,
	ids []int64,
) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE notifications
		SET read = TRUE
		WHERE recipient_id = $1
		  AND NOT read
		  AND id = ANY($2)
	`, recipientID, ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipientID int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE notifications
		SET read = TRUE
		WHERE recipient_id = $1 AND NOT read
	`, recipientID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// DeleteOne removes the notification only when it belongs to the recipient;
// the boolean reports whether a row was deleted.
func (r *NotificationRepository) DeleteOne(ctx context.Context, recipientID int64, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM notifications
		WHERE recipient_id = $1 AND id = $2
	`, recipientID, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *NotificationRepository) DeleteAll(ctx context.Context, recipientID int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM notifications
		WHERE recipient_id = $1
	`, recipientID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
