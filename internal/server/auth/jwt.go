package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carries the registered claims plus the user's profile.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
}

// TokenIssuer signs and checks HS256 bearer tokens with one process-wide secret.
type TokenIssuer struct {
	secret   []byte
	validity time.Duration
	logger   logging.Logger
	now      func() time.Time
}

func NewTokenIssuer(secret []byte, validity time.Duration, logger logging.Logger) *TokenIssuer {
	return &TokenIssuer{
		secret:   secret,
		validity: validity,
		logger:   logger.With("module", "auth"),
		now:      time.Now,
	}
}

// Issue returns a signed token for the user and the moment it expires.
func (i *TokenIssuer) Issue(u *models.User) (string, time.Time, error) {
	now := i.now()
	expiresAt := now.Add(i.validity)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID:    u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %v", common.ErrorToken, err)
	}

	return signed, expiresAt, nil
}

// Parse validates signature, algorithm and expiry and returns the claims.
func (i *TokenIssuer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// Verify reports whether the token is valid. Any failure counts as invalid.
func (i *TokenIssuer) Verify(ctx context.Context, tokenString string) bool {
	if _, err := i.Parse(tokenString); err != nil {
		reason := "invalid"
		if errors.Is(err, jwt.ErrTokenExpired) {
			reason = "expired"
		}
		i.logger.Warn(ctx, "token rejected", "reason", reason, "error", err)
		return false
	}
	return true
}
