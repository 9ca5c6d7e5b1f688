package repository

import (
	"context"

	"github.com/ta28nov/appandroid-sub000/internal/models"
)

type DocumentRepository struct {
	db DBTX
}

func NewDocumentRepository(db DBTX) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, document *models.Document) error {
	query := `
		INSERT INTO documents (owner_id, title)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRow(ctx, query, document.OwnerID, document.Title).
		Scan(&document.ID, &document.CreatedAt, &document.UpdatedAt)
}

func (r *DocumentRepository) GetByID(ctx context.Context, id int64) (*models.Document, error) {
	query := `
		SELECT id, owner_id, title, created_at, updated_at
		FROM documents
		WHERE id = $1
	`
	var document models.Document
	err := r.db.QueryRow(ctx, query, id).Scan(
		&document.ID,
		&document.OwnerID,
		&document.Title,
		&document.CreatedAt,
		&document.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &document, nil
}

func (r *DocumentRepository) ListShares(ctx context.Context, documentID int64) ([]models.DocumentShare, error) {
	query := `
		SELECT document_id, user_id, permission
		FROM document_shares
		WHERE document_id = $1
	`

	rows, err := r.db.Query(ctx, query, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shares := make([]models.DocumentShare, 0)
	for rows.Next() {
		var share models.DocumentShare
		if err := rows.Scan(&share.DocumentID, &share.UserID, &share.Permission); err != nil {
			return nil, err
		}
		shares = append(shares, share)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return shares, nil
}

// AddShare creates or updates the target user's entry in the document's share
// list. Re-sharing with a different permission overwrites the old one.
func (r *DocumentRepository) AddShare(ctx context.Context, share *models.DocumentShare) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO document_shares (document_id, user_id, permission)
		VALUES ($1, $2, $3)
		ON CONFLICT (document_id, user_id)
		DO UPDATE SET permission = EXCLUDED.permission
	`, share.DocumentID, share.UserID, share.Permission)
	return err
}
