package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/skarpenko/govault/internal/common"
	"github.com/skarpenko/govault/internal/dbx"
	"github.com/skarpenko/govault/internal/models"
)

// PostgresRepository implements vault record storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// requireOwner rejects calls that would otherwise query across all users.
func requireOwner(ownerID string) error {
	if ownerID == "" {
		return common.ErrorNoUserID
	}
	return nil
}

func (r *PostgresRepository) Create(ctx context.Context, record *models.VaultRecord) (*models.VaultRecord, error) {
	if err := requireOwner(record.UserID); err != nil {
		return nil, err
	}

	query :=
		`INSERT INTO vault_records (id, user_id, application, username, secrets)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		record.ID, record.UserID, record.Application, record.Username, record.Secrets).
		Scan(&record.CreatedAt, &record.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return record, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.VaultRecord, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	query :=
		`SELECT id, user_id, application, username, secrets, created_at, updated_at FROM vault_records
		 WHERE user_id = $1
		 ORDER BY application, created_at
		 `

	return r.queryRecords(ctx, query, ownerID)
}

func (r *PostgresRepository) FindByOwnerAndApp(ctx context.Context, ownerID, application string) ([]*models.VaultRecord, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	query :=
		`SELECT id, user_id, application, username, secrets, created_at, updated_at FROM vault_records
		 WHERE user_id = $1 AND application = $2
		 ORDER BY created_at
		 `

	return r.queryRecords(ctx, query, ownerID, application)
}

func (r *PostgresRepository) Get(ctx context.Context, ownerID, id string) (*models.VaultRecord, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	query :=
		`SELECT id, user_id, application, username, secrets, created_at, updated_at FROM vault_records
		 WHERE user_id = $1 AND id = $2
		 `

	record := &models.VaultRecord{}
	err := r.db.QueryRowContext(ctx, query, ownerID, id).Scan(
		&record.ID, &record.UserID, &record.Application, &record.Username,
		&record.Secrets, &record.CreatedAt, &record.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return record, nil
}

func (r *PostgresRepository) Update(ctx context.Context, record *models.VaultRecord) error {
	if err := requireOwner(record.UserID); err != nil {
		return err
	}

	query :=
		`UPDATE vault_records
		 SET application = $3, username = $4, secrets = $5, updated_at = now()
		 WHERE user_id = $1 AND id = $2
		 `

	res, err := r.db.ExecContext(ctx, query,
		record.UserID, record.ID, record.Application, record.Username, record.Secrets)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return checkOneRow(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, ownerID, id string) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}

	query := `DELETE FROM vault_records WHERE user_id = $1 AND id = $2`

	res, err := r.db.ExecContext(ctx, query, ownerID, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return checkOneRow(res)
}

func (r *PostgresRepository) queryRecords(ctx context.Context, query string, args ...any) ([]*models.VaultRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select records: %w", err)
	}
	defer rows.Close()

	var result []*models.VaultRecord
	for rows.Next() {
		var item models.VaultRecord
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.Application, &item.Username,
			&item.Secrets, &item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func checkOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
