// Package records persists vault records. Every query is scoped by the
// owning user id; a repository call with an empty owner id fails with
// common.ErrorNoUserID instead of silently touching other users' data.
package records

import (
	"context"

	"github.com/skarpenko/govault/internal/models"
)

type Repository interface {
	Create(ctx context.Context, record *models.VaultRecord) (*models.VaultRecord, error)

	// ListByOwner returns all records belonging to ownerID.
	ListByOwner(ctx context.Context, ownerID string) ([]*models.VaultRecord, error)

	// FindByOwnerAndApp returns all of ownerID's records with the given
	// application name; the caller decides how to disambiguate.
	FindByOwnerAndApp(ctx context.Context, ownerID, application string) ([]*models.VaultRecord, error)

	// Get returns a single record by id, scoped by owner, or
	// common.ErrorNotFound.
	Get(ctx context.Context, ownerID, id string) (*models.VaultRecord, error)

	// Update overwrites the record identified by (owner, id).
	// common.ErrorNotFound when no such row exists.
	Update(ctx context.Context, record *models.VaultRecord) error

	// Delete removes the record identified by (owner, id).
	// common.ErrorNotFound when no such row exists.
	Delete(ctx context.Context, ownerID, id string) error
}
