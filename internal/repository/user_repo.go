package repository

import (
	"context"

	"github.com/ta28nov/appandroid-sub000/internal/models"
)

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, display_name, password_hash, show_activity)
		VALUES ($1, $2, $3, TRUE)
		RETURNING id, avatar_url, bio, show_email, show_activity, created_at, updated_at
	`
	return r.db.QueryRow(ctx, query, user.Email, user.DisplayName, user.PasswordHash).
		Scan(
			&user.ID,
			&user.AvatarURL,
			&user.Bio,
			&user.ShowEmail,
			&user.ShowActivity,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, email, display_name, password_hash, avatar_url, bio,
		       show_email, show_activity, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	var user models.User
	err := r.db.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.DisplayName,
		&user.PasswordHash,
		&user.AvatarURL,
		&user.Bio,
		&user.ShowEmail,
		&user.ShowActivity,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `
		SELECT id, email, display_name, password_hash, avatar_url, bio,
		       show_email, show_activity, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	var user models.User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.DisplayName,
		&user.PasswordHash,
		&user.AvatarURL,
		&user.Bio,
		&user.ShowEmail,
		&user.ShowActivity,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetPublicByID loads only the fields other users are allowed to see,
// applying the show_email privacy flag in the query itself.
func (r *UserRepository) GetPublicByID(ctx context.Context, id int64) (*models.PublicProfile, error) {
	query := `
		SELECT id, display_name, avatar_url,
		       CASE WHEN show_email THEN email ELSE '' END
		FROM users
		WHERE id = $1
	`
	var profile models.PublicProfile
	err := r.db.QueryRow(ctx, query, id).Scan(
		&profile.ID,
		&profile.DisplayName,
		&profile.AvatarURL,
		&profile.Email,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET display_name = $2,
		    avatar_url = $3,
		    bio = $4,
		    show_email = $5,
		    show_activity = $6,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	return r.db.QueryRow(ctx, query,
		user.ID,
		user.DisplayName,
		user.AvatarURL,
		user.Bio,
		user.ShowEmail,
		user.ShowActivity,
	).Scan(&user.UpdatedAt)
}
