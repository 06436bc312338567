package models

import "time"

// UserRef identifies the subject of a login attempt: a known user id, or the
// raw email when no user matched it. Exactly one of the two is set.
type UserRef struct {
	userID string
	email  string
}

// KnownUserID refers to an existing user.
func KnownUserID(id string) UserRef { return UserRef{userID: id} }

// UnknownEmail refers to an email that did not resolve to a user.
func UnknownEmail(email string) UserRef { return UserRef{email: email} }

// UserID returns the user id and whether the ref is a known user.
func (r UserRef) UserID() (string, bool) { return r.userID, r.userID != "" }

// Email returns the raw email and whether the ref is an unresolved email.
func (r UserRef) Email() (string, bool) { return r.email, r.userID == "" && r.email != "" }

func (r UserRef) String() string {
	if id, ok := r.UserID(); ok {
		return "user:" + id
	}
	return "email:" + r.email
}

type LoginActivity struct {
	ID        int64
	Subject   UserRef
	Timestamp time.Time
	IPAddress string
	Success   bool
}

// ActivityRow is a login activity of a known user joined with the user's
// profile fields.
type ActivityRow struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"login_timestamp"`
	IPAddress string    `json:"ip_address"`
	Success   bool      `json:"login_success"`
	FirstName string    `json:"firstname"`
	LastName  string    `json:"lastname"`
	Email     string    `json:"email"`
}
