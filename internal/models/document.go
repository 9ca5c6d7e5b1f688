package models

import "time"

const (
	SharePermissionRead = "read"
	SharePermissionEdit = "edit"
)

type Document struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type DocumentShare struct {
	DocumentID int64  `json:"document_id"`
	UserID     int64  `json:"user_id"`
	Permission string `json:"permission"`
}

type DocumentAccess struct {
	IsOwner bool `json:"is_owner"`
	CanRead bool `json:"can_read"`
	CanEdit bool `json:"can_edit"`
}
