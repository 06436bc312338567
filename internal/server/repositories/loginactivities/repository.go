package loginactivities

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

type Repository interface {
	// Create appends an activity and returns it with its id set.
	Create(ctx context.Context, a *models.LoginActivity) (*models.LoginActivity, error)
	// ListWithUsers returns activities of known users joined with their
	// profile, oldest first.
	ListWithUsers(ctx context.Context) ([]models.ActivityRow, error)
}
