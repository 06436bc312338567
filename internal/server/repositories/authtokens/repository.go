package authtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

type Repository interface {
	FindByUserID(ctx context.Context, userID string) (*models.AuthToken, error)
	Create(ctx context.Context, userID string, token string, expires time.Time) error
	Update(ctx context.Context, userID string, token string, expires time.Time) error
	// DeleteByToken reports whether a row held the token.
	DeleteByToken(ctx context.Context, token string) (bool, error)
	// Exists reports whether the token is still stored.
	Exists(ctx context.Context, token string) (bool, error)
}
