// Package loginactivities stores the append-only login audit trail.
package loginactivities

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

var ErrEmptySubject = errors.New("login activity has no subject")

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create writes exactly one of user_id and email, as the table's CHECK
// constraint demands.
func (r *PostgresRepository) Create(ctx context.Context, a *models.LoginActivity) (*models.LoginActivity, error) {

	var userID, email sql.NullString
	if id, ok := a.Subject.UserID(); ok {
		userID = sql.NullString{String: id, Valid: true}
	} else if e, ok := a.Subject.Email(); ok {
		email = sql.NullString{String: e, Valid: true}
	} else {
		return nil, ErrEmptySubject
	}

	query :=
		`INSERT INTO login_activities (user_id, email, login_timestamp, ip_address, login_success)
         VALUES ($1, $2, $3, $4, $5)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query, userID, email, a.Timestamp, a.IPAddress, a.Success).Scan(&a.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return a, nil
}

func (r *PostgresRepository) ListWithUsers(ctx context.Context) ([]models.ActivityRow, error) {

	query :=
		`SELECT la.id, la.user_id, la.login_timestamp, la.ip_address, la.login_success,
		        u.firstname, u.lastname, u.email
		 FROM login_activities la
		 INNER JOIN users u ON u.user_id = la.user_id
		 ORDER BY la.id
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.ActivityRow, 0)
	for rows.Next() {
		var row models.ActivityRow
		if err := rows.Scan(&row.ID, &row.UserID, &row.Timestamp, &row.IPAddress, &row.Success,
			&row.FirstName, &row.LastName, &row.Email); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
