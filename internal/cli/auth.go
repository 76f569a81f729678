package cli

import (
	"context"
	"errors"
	"os"

	"github.com/skarpenko/govault/internal/common"
)

// registerFlow collects a username and a confirmed password and creates the
// account. Password mismatch is handled inside GetConfirmedPassword by
// re-prompting.
func (a *App) registerFlow(ctx context.Context) {
	a.printTitleBar()

	username, err := GetSimpleText(a.reader, "Username:", os.Stdout)
	if err != nil {
		return
	}

	password, err := GetConfirmedPassword("Password", os.Stdout)
	if err != nil {
		return
	}
	defer common.WipeByteArray(password)

	_, err = a.auth.Register(ctx, username, string(password))
	if err != nil {
		if errors.Is(err, common.ErrorUsernameTaken) {
			printlnFn("That username is already taken.")
			return
		}
		a.logger.Error(ctx, "registration failed", "error", err.Error())
		printlnFn("Something went wrong.")
		return
	}

	printlnFn("Account created. You can now log in.")
}

// loginFlow authenticates and stores the session on success. Both unknown
// usernames and wrong passwords produce the same message.
func (a *App) loginFlow(ctx context.Context) {
	a.printTitleBar()

	username, err := GetSimpleText(a.reader, "Username:", os.Stdout)
	if err != nil {
		return
	}

	password, err := GetPassword("Password", os.Stdout)
	if err != nil {
		return
	}
	defer common.WipeByteArray(password)

	session, err := a.auth.Login(ctx, username, string(password))
	if err != nil {
		if errors.Is(err, common.ErrorInvalidCredentials) {
			printlnFn("Username and password are wrong.")
			return
		}
		a.logger.Error(ctx, "login failed", "error", err.Error())
		printlnFn("Something went wrong.")
		return
	}

	a.session = session
	printlnFn("You are authenticated.")
}
