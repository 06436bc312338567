package client

import (
	"context"
	"time"
)

// Profile is the non-secret part of a sign-up request.
type Profile struct {
	FirstName string
	LastName  string
	Email     string
}

// Activity is one row of the server's login activity list.
type Activity struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"login_timestamp"`
	IPAddress string    `json:"ip_address"`
	Success   bool      `json:"login_success"`
	FirstName string    `json:"firstname"`
	LastName  string    `json:"lastname"`
	Email     string    `json:"email"`
}

type Client interface {
	SignUp(ctx context.Context, p Profile, password []byte) error
	SignIn(ctx context.Context, email string, password []byte) (string, error)
	SignOut(ctx context.Context, token string) error
	List(ctx context.Context, token string) ([]Activity, error)
	Ping(ctx context.Context) error
}
