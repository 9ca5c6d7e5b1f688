package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/ta28nov/appandroid-sub000/internal/models"
)

type notificationStore interface {
	Create(ctx context.Context, notification *models.Notification) error
	List(ctx context.Context, recipientID int64, read *bool, notificationType string, limit, offset int) ([]models.Notification, error)
	Count(ctx context.Context, recipientID int64, read *bool, notificationType string) (int, error)
	CountUnread(ctx context.Context, recipientID int64) (int, error)
	MarkRead(ctx context.Context, recipientID int64, ids []int64) (int64, error)
	MarkAllRead(ctx context.Context, recipientID int64) (int64, error)
	DeleteOne(ctx context.Context, recipientID int64, id int64) (bool, error)
	DeleteAll(ctx context.Context, recipientID int64) (int64, error)
}

type pusher interface {
	Dispatch(notification *models.Notification)
}

type NotificationService struct {
	store      notificationStore
	dispatcher pusher
}

type NotificationListOptions struct {
	Read     *bool
	Type     string
	Page     int
	PageSize int
}

func NewNotificationService(store notificationStore, dispatcher pusher) *NotificationService {
	return &NotificationService{store: store, dispatcher: dispatcher}
}

// Create persists a notification. Persistence is the source of truth and is
// independent of delivery; callers push separately.
func (s *NotificationService) Create(
	ctx context.Context,
	recipientID int64,
	notificationType string,
	title string,
	body string,
	related *models.RelatedEntity,
) (*models.Notification, error) {
	if recipientID <= 0 || strings.TrimSpace(title) == "" {
		return nil, ErrValidation
	}
	if !models.ValidNotificationType(notificationType) {
		return nil, ErrValidation
	}

	notification := &models.Notification{
		RecipientID: recipientID,
		Type:        notificationType,
		Title:       title,
		Body:        body,
		Related:     related,
	}
	if err := s.store.Create(ctx, notification); err != nil {
		return nil, err
	}
	return notification, nil
}

// Notify is the side-effect entrypoint used by other domain flows: store the
// notification, then push it best-effort. Any failure is logged and swallowed
// so the triggering action never fails because of it.
func (s *NotificationService) Notify(
	ctx context.Context,
	recipientID int64,
	notificationType string,
	title string,
	body string,
	related *models.RelatedEntity,
) {
	notification, err := s.Create(ctx, recipientID, notificationType, title, body, related)
	if err != nil {
		log.Warn().
			Err(err).
			Int64("recipient_id", recipientID).
			Str("type", notificationType).
			Msg("notification create failed")
		return
	}
	s.dispatcher.Dispatch(notification)
}

// List returns a filtered page plus the recipient's global unread count. The
// unread count ignores the filters so the badge stays accurate regardless of
// what the client is looking at.
func (s *NotificationService) List(
	ctx context.Context,
	recipientID int64,
	opts NotificationListOptions,
) ([]models.Notification, int, int, error) {
	if opts.Page <= 0 || opts.PageSize <= 0 {
		return nil, 0, 0, ErrValidation
	}
	if opts.Type != "" && !models.ValidNotificationType(opts.Type) {
		return nil, 0, 0, ErrValidation
	}

	total, err := s.store.Count(ctx, recipientID, opts.Read, opts.Type)
	if err != nil {
		return nil, 0, 0, err
	}

	notifications, err := s.store.List(
		ctx,
		recipientID,
		opts.Read,
		opts.Type,
		opts.PageSize,
		(opts.Page-1)*opts.PageSize,
	)
	if err != nil {
		return nil, 0, 0, err
	}

	unread, err := s.store.CountUnread(ctx, recipientID)
	if err != nil {
		return nil, 0, 0, err
	}

	return notifications, total, unread, nil
}

// MarkRead flips the read flag on the recipient's own unread notifications
// among ids, returning the count actually modified.
func (s *NotificationService) MarkRead(ctx context.Context, recipientID int64, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, ErrValidation
	}
	return s.store.MarkRead(ctx, recipientID, ids)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID int64) (int64, error) {
	return s.store.MarkAllRead(ctx, recipientID)
}

// DeleteOne reports ownership mismatches as not-found so a caller cannot probe
// for the existence of another user's notifications.
func (s *NotificationService) DeleteOne(ctx context.Context, recipientID int64, id int64) error {
	if id <= 0 {
		return ErrNotFound
	}
	found, err := s.store.DeleteOne(ctx, recipientID, id)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

func (s *NotificationService) DeleteAll(ctx context.Context, recipientID int64) (int64, error) {
	return s.store.DeleteAll(ctx, recipientID)
}
