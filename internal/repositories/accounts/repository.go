// Package accounts persists registered users and their credential salts.
package accounts

import (
	"context"

	"github.com/skarpenko/govault/internal/models"
)

type Repository interface {
	// Create inserts a new account. A username collision yields
	// common.ErrorUsernameTaken; the database unique constraint is the
	// atomicity guarantee, there is no separate existence check.
	Create(ctx context.Context, account *models.Account) (*models.Account, error)

	// FindByUsername returns the account with the given username or
	// common.ErrorNotFound.
	FindByUsername(ctx context.Context, username string) (*models.Account, error)
}
