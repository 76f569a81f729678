// Package cli implements the interactive console front end: menus, masked
// password entry, and tabular output. It calls into the auth and vault
// services only through their public contracts and holds the session for
// the process's interactive lifetime.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/skarpenko/govault/internal/logging"
	"github.com/skarpenko/govault/internal/models"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// App drives the interactive menu loop. The session is set by a successful
// login and discarded when the process exits.
type App struct {
	auth    AuthService
	vault   VaultService
	logger  logging.Logger
	session *models.Session
	reader  *bufio.Reader
}

// AuthService is the surface the CLI needs from the auth layer.
type AuthService interface {
	Register(ctx context.Context, username, password string) (*models.Account, error)
	Login(ctx context.Context, username, password string) (*models.Session, error)
}

// NewApp constructs the console app over the given services.
func NewApp(auth AuthService, vault VaultService, logger logging.Logger) *App {
	return &App{
		auth:   auth,
		vault:  vault,
		logger: logger,
		reader: bufio.NewReader(os.Stdin),
	}
}

func (a *App) isAuthenticated() bool {
	return a.session != nil
}

func (a *App) printTitleBar() {
	printlnFn("")
	printlnFn("\t************************")
	printlnFn("\t***  Vaulting System ***")
	printlnFn("\t************************")
	printlnFn("")
}

// Run starts the interactive loop: the auth menu until a session exists,
// then the main menu until the user exits or the context is cancelled.
func (a *App) Run(ctx context.Context) {
	for {
		if err := ctx.Err(); err != nil {
			return
		}
		if !a.isAuthenticated() {
			if done := a.authMenu(ctx); done {
				return
			}
			continue
		}
		if done := a.mainMenu(ctx); done {
			return
		}
	}
}

func (a *App) authMenu(ctx context.Context) (exit bool) {
	a.printTitleBar()
	printlnFn("What would you like to do?")
	printlnFn("1 - Register")
	printlnFn("2 - Login")
	printlnFn("3 - Exit")

	choice, err := GetSimpleText(a.reader, "", os.Stdout)
	if err != nil {
		return true
	}

	switch choice {
	case "1":
		a.registerFlow(ctx)
	case "2":
		a.loginFlow(ctx)
	case "3":
		printlnFn("Bye!")
		return true
	default:
		printlnFn("Unknown option:", choice)
	}
	return false
}

func (a *App) mainMenu(ctx context.Context) (exit bool) {
	a.printTitleBar()
	printlnFn("What would you like to do?")
	printlnFn("1 - Add App")
	printlnFn("2 - Show Apps")
	printlnFn("3 - Show Secret")
	printlnFn("4 - Edit App")
	printlnFn("5 - Delete App")
	printlnFn("6 - Exit")

	choice, err := GetSimpleText(a.reader, "", os.Stdout)
	if err != nil {
		return true
	}

	switch choice {
	case "1":
		a.addFlow(ctx)
	case "2":
		a.listFlow(ctx)
	case "3":
		a.revealFlow(ctx)
	case "4":
		a.editFlow(ctx)
	case "5":
		a.deleteFlow(ctx)
	case "6":
		printlnFn("Bye!")
		return true
	default:
		printlnFn("Unknown option:", choice)
	}
	return false
}
