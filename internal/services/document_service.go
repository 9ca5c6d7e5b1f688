package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/ta28nov/appandroid-sub000/internal/models"
)

type documentStore interface {
	Create(ctx context.Context, document *models.Document) error
	GetByID(ctx context.Context, id int64) (*models.Document, error)
	ListShares(ctx context.Context, documentID int64) ([]models.DocumentShare, error)
	AddShare(ctx context.Context, share *models.DocumentShare) error
}

type notifier interface {
	Notify(ctx context.Context, recipientID int64, notificationType, title, body string, related *models.RelatedEntity)
}

type DocumentService struct {
	documents documentStore
	users     userReader
	notifier  notifier
}

func NewDocumentService(documents documentStore, users userReader, notifier notifier) *DocumentService {
	return &DocumentService{documents: documents, users: users, notifier: notifier}
}

func (s *DocumentService) Create(ctx context.Context, ownerID int64, title string) (*models.Document, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return nil, ErrValidation
	}

	document := &models.Document{OwnerID: ownerID, Title: trimmed}
	if err := s.documents.Create(ctx, document); err != nil {
		return nil, err
	}
	return document, nil
}

// CheckAccess resolves what userID may do with the document. An invalid or
// unknown id is not-found before any permission evaluation; a user with none
// of owner/read/edit is rejected.
func (s *DocumentService) CheckAccess(
	ctx context.Context,
	documentID int64,
	userID int64,
) (*models.Document, models.DocumentAccess, error) {
	var access models.DocumentAccess

	if documentID <= 0 {
		return nil, access, ErrNotFound
	}

	document, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, access, ErrNotFound
		}
		return nil, access, err
	}

	access.IsOwner = document.OwnerID == userID

	shares, err := s.documents.ListShares(ctx, documentID)
	if err != nil {
		return nil, access, err
	}
	for _, share := range shares {
		if share.UserID != userID {
			continue
		}
		switch share.Permission {
		case models.SharePermissionEdit:
			access.CanRead = true
			access.CanEdit = true
		case models.SharePermissionRead:
			access.CanRead = true
		}
	}

	if !access.IsOwner && !access.CanRead && !access.CanEdit {
		return nil, access, ErrForbidden
	}

	return document, access, nil
}

func (s *DocumentService) Get(
	ctx context.Context,
	actorID int64,
	documentID int64,
) (*models.Document, models.DocumentAccess, error) {
	return s.CheckAccess(ctx, documentID, actorID)
}

// Share adds targetUserID to the document's share list and informs them with
// a best-effort "share" notification. Only the owner can share.
func (s *DocumentService) Share(
	ctx context.Context,
	actorID int64,
	documentID int64,
	targetUserID int64,
	permission string,
) error {
	if permission != models.SharePermissionRead && permission != models.SharePermissionEdit {
		return ErrValidation
	}
	if targetUserID <= 0 {
		return ErrValidation
	}
	if targetUserID == actorID {
		return ErrInvalidOperation
	}
	if documentID <= 0 {
		return ErrNotFound
	}

	document, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if document.OwnerID != actorID {
		return ErrForbidden
	}

	if _, err := s.users.GetPublicByID(ctx, targetUserID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	if err := s.documents.AddShare(ctx, &models.DocumentShare{
		DocumentID: documentID,
		UserID:     targetUserID,
		Permission: permission,
	}); err != nil {
		return err
	}

	s.notifier.Notify(
		ctx,
		targetUserID,
		models.NotificationShare,
		"Document shared with you",
		fmt.Sprintf("%q was shared with %s access", document.Title, permission),
		&models.RelatedEntity{
			EntityType: models.EntityDocument,
			EntityID:   strconv.FormatInt(documentID, 10),
		},
	)

	return nil
}
