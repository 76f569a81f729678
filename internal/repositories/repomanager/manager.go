package repomanager

import (
	"context"
	"database/sql"

	"github.com/skarpenko/govault/internal/dbx"
	"github.com/skarpenko/govault/internal/repositories/accounts"
	"github.com/skarpenko/govault/internal/repositories/records"
)

// RepositoryManager vends repository implementations bound to a DBTX and
// exposes a schema migration hook. Services hold a *sql.DB plus a manager
// and can run any repository inside a transaction via dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Records(db dbx.DBTX) records.Repository
}
