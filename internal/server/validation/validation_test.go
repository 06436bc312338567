package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRegistration() Registration {
	return Registration{FirstName: "A", LastName: "B", Email: "a@b.com", Password: "Abc12345!"}
}

func TestValidateRegistration(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *Registration)
		wantMsg string
	}{
		{"valid", func(r *Registration) {}, ""},
		{"missing firstname", func(r *Registration) { r.FirstName = "" }, `"firstname" is required`},
		{"missing lastname", func(r *Registration) { r.LastName = "" }, `"lastname" is required`},
		{"missing email", func(r *Registration) { r.Email = "" }, `"email" is required`},
		{"missing password", func(r *Registration) { r.Password = "" }, `"password" is required`},
		{"all missing reports firstname", func(r *Registration) { *r = Registration{} }, `"firstname" is required`},
		{"bad email", func(r *Registration) { r.Email = "not-an-email" }, MsgInvalidEmail},
		{"bad email beats weak password", func(r *Registration) { r.Email = "x"; r.Password = "abc" }, MsgInvalidEmail},
		{"too short", func(r *Registration) { r.Password = "abc" }, MsgWeakPassword},
		{"no uppercase", func(r *Registration) { r.Password = "alllowercase1!" }, MsgWeakPassword},
		{"no lowercase", func(r *Registration) { r.Password = "ALLUPPER1!" }, MsgWeakPassword},
		{"no digit", func(r *Registration) { r.Password = "NoNumber!" }, MsgWeakPassword},
		{"no special", func(r *Registration) { r.Password = "NoSpecial1" }, MsgWeakPassword},
		{"disallowed char", func(r *Registration) { r.Password = "Abc12345!#" }, MsgWeakPassword},
		{"space", func(r *Registration) { r.Password = "Abc 12345!" }, MsgWeakPassword},
		{"non ascii", func(r *Registration) { r.Password = "Äbc12345!" }, MsgWeakPassword},
		{"over 72 bytes", func(r *Registration) { r.Password = "Aa1!" + strings.Repeat("a", 69) }, MsgWeakPassword},
		{"exactly 72 bytes", func(r *Registration) { r.Password = "Aa1!" + strings.Repeat("a", 68) }, ""},
		{"exactly 8", func(r *Registration) { r.Password = "Aa1!aaaa" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRegistration()
			tt.mutate(&r)

			err := ValidateRegistration(r)
			if tt.wantMsg == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.True(t, errors.Is(err, common.ErrorValidation))

			var verr *Error
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantMsg, verr.Message)
		})
	}
}

func TestValidateLogin(t *testing.T) {
	tests := []struct {
		name    string
		in      Login
		wantMsg string
	}{
		{"valid", Login{Email: "a@b.com", Password: "whatever"}, ""},
		{"weak password still allowed", Login{Email: "a@b.com", Password: "x"}, ""},
		{"missing email", Login{Password: "x"}, "Email is required"},
		{"missing password", Login{Email: "a@b.com"}, "Password is required"},
		{"missing both", Login{}, "Email is required"},
		{"bad email", Login{Email: "nope", Password: "x"}, MsgInvalidEmail},
		{"missing password beats bad email", Login{Email: "nope"}, "Password is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLogin(tt.in)
			if tt.wantMsg == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.ErrorIs(t, err, common.ErrorValidation)
		})
	}
}
