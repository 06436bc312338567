package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var errNotLoggedIn = errors.New("not logged in")

// Register prompts for the profile fields and a password and creates the
// account. Field checks are left to the server so the messages match.
func (a *App) Register(ctx context.Context) error {
	var p client.Profile
	var err error

	if p.FirstName, err = getSimpleText(a.reader, "Enter first name", a.out); err != nil {
		return err
	}
	if p.LastName, err = getSimpleText(a.reader, "Enter last name", a.out); err != nil {
		return err
	}
	if p.Email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.api.SignUp(ctx, p, password); err != nil {
		return describe(err)
	}

	fmt.Fprintln(a.out, "Success!")
	return nil
}

// Login prompts for credentials and keeps the issued token in memory.
// A previous session token is replaced.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	token, err := a.api.SignIn(ctx, email, password)
	if err != nil {
		return describe(err)
	}

	a.token = token
	a.email = email
	fmt.Fprintln(a.out, "Logged in")
	return nil
}

// Logout signs the current token out. The local session is dropped even if
// the server no longer knows the token.
func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}

	err := a.api.SignOut(ctx, a.token)
	if err != nil && !errors.Is(err, client.ErrUnauthorized) {
		return describe(err)
	}

	a.token = ""
	a.email = ""
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// List prints the login activity table. The session token is sent when
// present so it also works against a server with list protection on.
func (a *App) List(ctx context.Context) error {
	rows, err := a.api.List(ctx, a.token)
	if err != nil {
		return describe(err)
	}

	if len(rows) == 0 {
		fmt.Fprintln(a.out, "No login activity")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIME\tEMAIL\tNAME\tIP\tSUCCESS")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s %s\t%s\t%t\n",
			r.ID, r.Timestamp.Local().Format("2006-01-02 15:04:05"), r.Email, r.FirstName, r.LastName, r.IPAddress, r.Success)
	}
	return tw.Flush()
}

// describe turns API errors into the server's own message.
func describe(err error) error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return errors.New(apiErr.Message)
	}
	return err
}
