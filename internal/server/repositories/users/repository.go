package users

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

type Repository interface {
	// Create inserts the user. A duplicate email yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// GetUserByEmail matches email case-insensitively and returns
	// common.ErrorNotFound when no user has it.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}
