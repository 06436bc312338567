package services

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/authtokens"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/loginactivities"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// --- in-memory gateway ---

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

type memStore struct {
	mu         sync.Mutex
	users      map[string]*models.User
	tokens     map[string]*models.AuthToken
	activities []models.LoginActivity

	tokenCreates int
	tokenUpdates int

	getUserErr     error
	createUserErr  error
	findTokenErr   error
	createTokenErr error
	updateTokenErr error
	deleteTokenErr error
	existsErr      error
	activityErr    error
	listErr        error
}

func newMemStore() *memStore {
	return &memStore{
		users:  map[string]*models.User{},
		tokens: map[string]*models.AuthToken{},
	}
}

type memUsers struct{ s *memStore }

func (r memUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.createUserErr != nil {
		return nil, r.s.createUserErr
	}
	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return nil, common.ErrorAlreadyExists
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now()
	cp := *u
	r.s.users[u.ID] = &cp
	return u, nil
}

func (r memUsers) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.getUserErr != nil {
		return nil, r.s.getUserErr
	}
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

type memTokens struct{ s *memStore }

func (r memTokens) FindByUserID(ctx context.Context, userID string) (*models.AuthToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.findTokenErr != nil {
		return nil, r.s.findTokenErr
	}
	t, ok := r.s.tokens[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *t
	return &cp, nil
}

func (r memTokens) Create(ctx context.Context, userID, token string, expires time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.createTokenErr != nil {
		return r.s.createTokenErr
	}
	r.s.tokenCreates++
	r.s.tokens[userID] = &models.AuthToken{UserID: userID, Token: token, Expires: expires}
	return nil
}

func (r memTokens) Update(ctx context.Context, userID, token string, expires time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.updateTokenErr != nil {
		return r.s.updateTokenErr
	}
	if _, ok := r.s.tokens[userID]; !ok {
		return common.ErrorNotFound
	}
	r.s.tokenUpdates++
	r.s.tokens[userID] = &models.AuthToken{UserID: userID, Token: token, Expires: expires}
	return nil
}

func (r memTokens) DeleteByToken(ctx context.Context, token string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.deleteTokenErr != nil {
		return false, r.s.deleteTokenErr
	}
	for id, t := range r.s.tokens {
		if t.Token == token {
			delete(r.s.tokens, id)
			return true, nil
		}
	}
	return false, nil
}

func (r memTokens) Exists(ctx context.Context, token string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.existsErr != nil {
		return false, r.s.existsErr
	}
	for _, t := range r.s.tokens {
		if t.Token == token {
			return true, nil
		}
	}
	return false, nil
}

type memActivities struct{ s *memStore }

func (r memActivities) Create(ctx context.Context, a *models.LoginActivity) (*models.LoginActivity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.activityErr != nil {
		return nil, r.s.activityErr
	}
	a.ID = int64(len(r.s.activities) + 1)
	r.s.activities = append(r.s.activities, *a)
	return a, nil
}

func (r memActivities) ListWithUsers(ctx context.Context) ([]models.ActivityRow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.listErr != nil {
		return nil, r.s.listErr
	}
	rows := make([]models.ActivityRow, 0)
	for _, a := range r.s.activities {
		id, ok := a.Subject.UserID()
		if !ok {
			continue
		}
		u, ok := r.s.users[id]
		if !ok {
			continue
		}
		rows = append(rows, models.ActivityRow{
			ID: a.ID, UserID: id, Timestamp: a.Timestamp, IPAddress: a.IPAddress, Success: a.Success,
			FirstName: u.FirstName, LastName: u.LastName, Email: u.Email,
		})
	}
	return rows, nil
}

type memRepoManager struct{ s *memStore }

func (m *memRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *memRepoManager) Users(db dbx.DBTX) users.Repository           { return memUsers{m.s} }
func (m *memRepoManager) AuthTokens(db dbx.DBTX) authtokens.Repository { return memTokens{m.s} }
func (m *memRepoManager) LoginActivities(db dbx.DBTX) loginactivities.Repository {
	return memActivities{m.s}
}

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func newUserService(t *testing.T, store *memStore) *UserService {
	t.Helper()
	db, _ := newSQLMockDB(t)
	log := logging.NewNop()
	return NewUserService(db, &memRepoManager{s: store},
		auth.NewBcryptHasher(bcrypt.MinCost),
		auth.NewTokenIssuer([]byte("k"), 24*time.Hour, log),
		log)
}
