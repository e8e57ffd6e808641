package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaddai/storefront/internal/domain"
	"github.com/shaddai/storefront/internal/port"
)

type userRepository struct {
	db DBTX
}

func NewUser(pool *pgxpool.Pool) port.DirectoryRepository {
	return &userRepository{db: pool}
}

func (r *userRepository) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	if user.ID == "" {
		return domain.User{}, fmt.Errorf("user ID is empty")
	}

	err := r.db.QueryRow(ctx,
		`INSERT INTO users (id, email, full_name) VALUES ($1, $2, $3) RETURNING created_at`,
		user.ID, user.Email, user.FullName).
		Scan(&user.CreatedAt)
	if err != nil {
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}

	return user, nil
}

func (r *userRepository) UserExists(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, fmt.Errorf("userID is empty")
	}

	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("select user existence: %w", err)
	}

	return exists, nil
}
