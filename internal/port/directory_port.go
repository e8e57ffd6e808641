package port

import (
	"context"

	"github.com/shaddai/storefront/internal/domain"
)

type DirectoryRepository interface {
	CreateUser(ctx context.Context, user domain.User) (domain.User, error)
	UserExists(ctx context.Context, userID string) (bool, error)
}
