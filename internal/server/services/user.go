// Package services contains server-side business logic. This file implements
// UserService: registration, login with token rotation, logout and the login
// activity listing.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/validation"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) (bool, error)
}

type TokenIssuer interface {
	Issue(u *models.User) (string, time.Time, error)
	Verify(ctx context.Context, token string) bool
}

// UserService holds no per-request state; every call checks out its own
// connection from db.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      PasswordHasher
	issuer      TokenIssuer
	logger      logging.Logger
	now         func() time.Time

	// dummyDigest is compared against on unknown emails so that both
	// failed-login paths pay one hash comparison.
	dummyDigest string
}

const dummyPassword = "gophauth-no-such-user"

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, hasher PasswordHasher,
	issuer TokenIssuer, logger logging.Logger) *UserService {
	s := &UserService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		issuer:      issuer,
		logger:      logger.With("module", "users"),
		now:         time.Now,
	}

	digest, err := hasher.Hash(dummyPassword)
	if err != nil {
		s.logger.Warn(context.Background(), "error preparing dummy digest", "error", err)
	}
	s.dummyDigest = digest

	return s
}

// Register validates the payload and creates the user. A taken email yields
// common.ErrorAlreadyExists; a malformed payload yields a *validation.Error.
func (s *UserService) Register(ctx context.Context, in validation.Registration) (*models.User, error) {

	if err := validation.ValidateRegistration(in); err != nil {
		return nil, err
	}

	var created *models.User

	err := dbx.WithConn(ctx, s.db, func(ctx context.Context, conn dbx.DBTX) error {
		repo := s.repomanager.Users(conn)

		_, err := repo.GetUserByEmail(ctx, in.Email)
		if err == nil {
			return common.ErrorAlreadyExists
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("%w: error searching user: %v", common.ErrorPersistence, err)
		}

		digest, err := s.hasher.Hash(in.Password)
		if err != nil {
			return err
		}

		created, err = repo.Create(ctx, &models.User{
			FirstName:    in.FirstName,
			LastName:     in.LastName,
			Email:        in.Email,
			PasswordHash: digest,
		})
		if err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				return err
			}
			return fmt.Errorf("%w: error creating user: %v", common.ErrorPersistence, err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user registered", "user_id", created.ID)
	return created, nil
}

// Login checks the credentials, rotates the user's single token and records
// the attempt. Unknown email and wrong password both yield
// common.ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, in validation.Login, ipAddress string) (string, error) {

	if err := validation.ValidateLogin(in); err != nil {
		return "", err
	}

	var token string

	err := dbx.WithConn(ctx, s.db, func(ctx context.Context, conn dbx.DBTX) error {
		users := s.repomanager.Users(conn)

		user, err := users.GetUserByEmail(ctx, in.Email)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				s.compareDummy(in.Password)
				s.recordActivity(ctx, conn, models.UnknownEmail(in.Email), ipAddress, false)
				return common.ErrorUnauthorized
			}
			return fmt.Errorf("%w: error searching user: %v", common.ErrorPersistence, err)
		}

		ok, err := s.hasher.Verify(in.Password, user.PasswordHash)
		if err != nil {
			return err
		}
		if !ok {
			s.recordActivity(ctx, conn, models.KnownUserID(user.ID), ipAddress, false)
			return common.ErrorUnauthorized
		}

		token, err = s.rotateToken(ctx, conn, user)
		if err != nil {
			return err
		}

		s.recordActivity(ctx, conn, models.KnownUserID(user.ID), ipAddress, true)
		return nil
	})

	if err != nil {
		return "", err
	}

	return token, nil
}

// compareDummy spends the same bcrypt work as a real password check. The
// result is ignored.
func (s *UserService) compareDummy(password string) {
	if s.dummyDigest == "" {
		return
	}
	_, _ = s.hasher.Verify(password, s.dummyDigest)
}

// rotateToken issues a fresh token and stores it as the user's only row:
// update when one exists, insert otherwise.
func (s *UserService) rotateToken(ctx context.Context, conn dbx.DBTX, user *models.User) (string, error) {
	tokens := s.repomanager.AuthTokens(conn)

	_, err := tokens.FindByUserID(ctx, user.ID)
	exists := err == nil
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return "", fmt.Errorf("%w: error searching token: %v", common.ErrorPersistence, err)
	}

	token, expiresAt, err := s.issuer.Issue(user)
	if err != nil {
		return "", err
	}

	if exists {
		err = tokens.Update(ctx, user.ID, token, expiresAt)
	} else {
		err = tokens.Create(ctx, user.ID, token, expiresAt)
	}
	if err != nil {
		return "", fmt.Errorf("%w: error storing token: %v", common.ErrorPersistence, err)
	}

	return token, nil
}

// recordActivity is best effort: a failed audit write is logged and the
// login outcome stands.
func (s *UserService) recordActivity(ctx context.Context, conn dbx.DBTX, subject models.UserRef, ipAddress string, success bool) {
	repo := s.repomanager.LoginActivities(conn)

	_, err := repo.Create(ctx, &models.LoginActivity{
		Subject:   subject,
		Timestamp: s.now().UTC(),
		IPAddress: ipAddress,
		Success:   success,
	})
	if err != nil {
		s.logger.Error(ctx, "error recording login activity", "subject", subject.String(), "error", err)
	}
}

// Logout deletes the row holding token. An empty token yields
// common.ErrorUnauthorized, an unknown one common.ErrInvalidToken.
func (s *UserService) Logout(ctx context.Context, token string) error {

	if token == "" {
		return common.ErrorUnauthorized
	}

	var deleted bool

	err := dbx.WithConn(ctx, s.db, func(ctx context.Context, conn dbx.DBTX) error {
		var err error
		deleted, err = s.repomanager.AuthTokens(conn).DeleteByToken(ctx, token)
		if err != nil {
			return fmt.Errorf("%w: error deleting token: %v", common.ErrorPersistence, err)
		}
		return nil
	})

	if err != nil {
		return err
	}

	if !deleted {
		return common.ErrInvalidToken
	}

	return nil
}

// Authorize accepts a token that verifies and is still the holder's current
// one.
func (s *UserService) Authorize(ctx context.Context, token string) error {

	if token == "" {
		return common.ErrorUnauthorized
	}

	if !s.issuer.Verify(ctx, token) {
		return common.ErrInvalidToken
	}

	var live bool

	err := dbx.WithConn(ctx, s.db, func(ctx context.Context, conn dbx.DBTX) error {
		var err error
		live, err = s.repomanager.AuthTokens(conn).Exists(ctx, token)
		if err != nil {
			return fmt.Errorf("%w: error searching token: %v", common.ErrorPersistence, err)
		}
		return nil
	})

	if err != nil {
		return err
	}

	if !live {
		return common.ErrInvalidToken
	}

	return nil
}

func (s *UserService) ListActivity(ctx context.Context) ([]models.ActivityRow, error) {

	var rows []models.ActivityRow

	err := dbx.WithConn(ctx, s.db, func(ctx context.Context, conn dbx.DBTX) error {
		var err error
		rows, err = s.repomanager.LoginActivities(conn).ListWithUsers(ctx)
		if err != nil {
			return fmt.Errorf("%w: error listing activity: %v", common.ErrorPersistence, err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return rows, nil
}

// Ping reports whether the database answers.
func (s *UserService) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
