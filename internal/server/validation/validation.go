// Package validation checks the shape of registration and login payloads
// before any lookup is made.
package validation

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/dmitrijs2005/gophauth/internal/common"
	ozzo "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const (
	MsgInvalidEmail = "Invalid email format"
	MsgWeakPassword = "Password must contain at least one uppercase letter, one lowercase letter, " +
		"one special character, one number, and be a minimum of 8 characters long"

	// bcrypt ignores everything past 72 bytes.
	maxPasswordBytes = 72
	specialChars     = "@$!%*?&"
)

var passwordCharset = regexp.MustCompile(`^[A-Za-z\d@$!%*?&]{8,}$`)

// Error is a client-facing validation failure.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return common.ErrorValidation }

type Registration struct {
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type Login struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type field struct {
	value any
	rules []ozzo.Rule
}

// first returns the message of the first failing field, in declaration order.
func first(fields ...field) error {
	for _, f := range fields {
		if err := ozzo.Validate(f.value, f.rules...); err != nil {
			return &Error{Message: err.Error()}
		}
	}
	return nil
}

func required(name string) ozzo.Rule {
	return ozzo.Required.Error(`"` + name + `" is required`)
}

// ValidateRegistration checks required fields, email shape and password policy.
func ValidateRegistration(r Registration) error {
	return first(
		field{r.FirstName, []ozzo.Rule{required("firstname")}},
		field{r.LastName, []ozzo.Rule{required("lastname")}},
		field{r.Email, []ozzo.Rule{required("email")}},
		field{r.Password, []ozzo.Rule{required("password")}},
		field{r.Email, []ozzo.Rule{is.Email.Error(MsgInvalidEmail)}},
		field{r.Password, []ozzo.Rule{
			ozzo.Match(passwordCharset).Error(MsgWeakPassword),
			ozzo.Length(0, maxPasswordBytes).Error(MsgWeakPassword),
			ozzo.By(passwordClasses),
		}},
	)
}

// ValidateLogin checks only presence and email shape; the password policy is
// not applied so that old passwords still work.
func ValidateLogin(l Login) error {
	return first(
		field{l.Email, []ozzo.Rule{ozzo.Required.Error("Email is required")}},
		field{l.Password, []ozzo.Rule{ozzo.Required.Error("Password is required")}},
		field{l.Email, []ozzo.Rule{is.Email.Error(MsgInvalidEmail)}},
	)
}

func passwordClasses(value interface{}) error {
	s, _ := value.(string)

	var upper, lower, digit, special bool
	for _, c := range s {
		switch {
		case unicode.IsUpper(c):
			upper = true
		case unicode.IsLower(c):
			lower = true
		case unicode.IsDigit(c):
			digit = true
		case strings.ContainsRune(specialChars, c):
			special = true
		}
	}

	if !(upper && lower && digit && special) {
		return &Error{Message: MsgWeakPassword}
	}
	return nil
}
