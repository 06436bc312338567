// Package authtokens provides a PostgreSQL-backed repository for the single
// active bearer token each user may hold.
package authtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// PostgresRepository implements token storage over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindByUserID returns the token row of the user or common.ErrorNotFound.
func (r *PostgresRepository) FindByUserID(ctx context.Context, userID string) (*models.AuthToken, error) {
	query := `
		SELECT user_id, token, expiration_timestamp
		FROM auth_tokens
		WHERE user_id = $1
	`
	t := &models.AuthToken{}
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&t.UserID, &t.Token, &t.Expires); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

// Create inserts a token row for a user that has none.
func (r *PostgresRepository) Create(ctx context.Context, userID string, token string, expires time.Time) error {
	query := `
		INSERT INTO auth_tokens (user_id, token, expiration_timestamp)
		VALUES ($1, $2, $3)
	`
	if _, err := r.db.ExecContext(ctx, query, userID, token, expires); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Update replaces the token of an existing row.
func (r *PostgresRepository) Update(ctx context.Context, userID string, token string, expires time.Time) error {
	query := `
		UPDATE auth_tokens
		SET token = $2, expiration_timestamp = $3
		WHERE user_id = $1
	`
	res, err := r.db.ExecContext(ctx, query, userID, token, expires)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// DeleteByToken removes the row holding token.
func (r *PostgresRepository) DeleteByToken(ctx context.Context, token string) (bool, error) {
	query := `
		DELETE FROM auth_tokens
		WHERE token = $1
	`
	res, err := r.db.ExecContext(ctx, query, token)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresRepository) Exists(ctx context.Context, token string) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM auth_tokens WHERE token = $1)
	`
	var ok bool
	if err := r.db.QueryRowContext(ctx, query, token).Scan(&ok); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return ok, nil
}
