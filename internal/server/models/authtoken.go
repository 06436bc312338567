package models

import "time"

// AuthToken is the single live bearer token of a user. A new login replaces
// Token and Expires in place.
type AuthToken struct {
	UserID  string
	Token   string
	Expires time.Time
}
