// Package vault implements the authenticated record lifecycle: encrypted
// create/read/update/delete of per-application credentials, always scoped
// to the owner of the session.
//
// The record key is derived per call from the supplied secret password and
// the session's access salt; it is never persisted. By-name operations
// resolve the application name first and require caller disambiguation
// whenever more than one record matches (the same policy for reveal, edit
// and delete).
package vault

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/skarpenko/govault/internal/common"
	"github.com/skarpenko/govault/internal/cryptox"
	"github.com/skarpenko/govault/internal/dbx"
	"github.com/skarpenko/govault/internal/models"
	"github.com/skarpenko/govault/internal/repositories/repomanager"
)

// AddInput carries the fields for a new record. Secrets and SecretPassword
// are optional together: a record may hold no encrypted payload at all.
type AddInput struct {
	Application    string
	Username       string
	Secrets        []string
	SecretPassword []byte
}

// Summary is the listing view of a record. Secrets are never decrypted for
// listings; HasSecrets only signals that an encrypted payload exists.
type Summary struct {
	ID          string
	Application string
	Username    string
	HasSecrets  bool
}

// Revealed is the decrypted view of a single record.
type Revealed struct {
	Application string
	Username    string
	Secrets     []string
}

// Update describes a partial edit. Nil pointer fields keep the prior
// value. A non-nil Secrets slice (possibly empty) replaces the encrypted
// payload entirely, re-encrypted under SecretPassword.
type Update struct {
	Application    *string
	Username       *string
	Secrets        []string
	SecretPassword []byte
}

// Service implements the vault record lifecycle on top of the records
// repository and the cryptox primitives.
type Service struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
	kdf   cryptox.Params
}

// NewService constructs a vault Service. kdf is the interactive derivation
// profile from configuration.
func NewService(db *sql.DB, m repomanager.RepositoryManager, kdf cryptox.Params) *Service {
	return &Service{db: db, repos: m, kdf: kdf}
}

// Add stores a new record for the session owner and returns its id.
// With secrets present, the payload is encoded, encrypted under a key
// derived from (secret password, access salt) and stored as an opaque
// token; otherwise the record is stored without a payload.
func (s *Service) Add(ctx context.Context, sess *models.Session, input AddInput) (string, error) {
	if input.Application == "" {
		return "", fmt.Errorf("%w: application name is required", common.ErrorValidation)
	}

	record := &models.VaultRecord{
		ID:          uuid.NewString(),
		UserID:      sess.UserID,
		Application: input.Application,
		Username:    input.Username,
	}

	if len(input.Secrets) > 0 {
		token, err := s.sealSecrets(sess, input.Secrets, input.SecretPassword)
		if err != nil {
			return "", err
		}
		record.Secrets = token
	}

	repo := s.repos.Records(s.db)
	created, err := repo.Create(ctx, record)
	if err != nil {
		return "", err
	}
	return created.ID, nil
}

// List returns summaries of all records owned by the session user.
func (s *Service) List(ctx context.Context, sess *models.Session) ([]Summary, error) {
	repo := s.repos.Records(s.db)
	result, err := repo.ListByOwner(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	return summaries(result), nil
}

// FindByName returns summaries of the owner's records with the given
// application name, for caller-side disambiguation.
func (s *Service) FindByName(ctx context.Context, sess *models.Session, application string) ([]Summary, error) {
	repo := s.repos.Records(s.db)
	result, err := repo.FindByOwnerAndApp(ctx, sess.UserID, application)
	if err != nil {
		return nil, err
	}
	return summaries(result), nil
}

// Reveal decrypts the record identified by recordID. A failed integrity
// check maps to common.ErrorWrongSecretPassword, distinct from
// common.ErrorNotFound.
func (s *Service) Reveal(ctx context.Context, sess *models.Session, recordID string, secretPassword []byte) (*Revealed, error) {
	repo := s.repos.Records(s.db)
	record, err := repo.Get(ctx, sess.UserID, recordID)
	if err != nil {
		return nil, err
	}
	return s.reveal(sess, record, secretPassword)
}

// RevealByName resolves the application name to a single record and
// decrypts it. No match yields common.ErrorNotFound; several matches yield
// common.ErrorAmbiguousMatch and the caller must pick a record id.
func (s *Service) RevealByName(ctx context.Context, sess *models.Session, application string, secretPassword []byte) (*Revealed, error) {
	record, err := s.resolveOne(ctx, sess, application)
	if err != nil {
		return nil, err
	}
	return s.reveal(sess, record, secretPassword)
}

// Edit applies a partial update to the record identified by recordID.
// Omitted fields keep prior values; new secrets fully replace the old
// ciphertext under the (possibly new) secret password. The read and write
// run in one transaction.
func (s *Service) Edit(ctx context.Context, sess *models.Session, recordID string, upd Update) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Records(tx)

		record, err := repo.Get(ctx, sess.UserID, recordID)
		if err != nil {
			return err
		}

		if upd.Application != nil {
			record.Application = *upd.Application
		}
		if upd.Username != nil {
			record.Username = *upd.Username
		}
		if upd.Secrets != nil {
			if len(upd.Secrets) == 0 {
				// explicit replacement with an empty payload drops the ciphertext
				record.Secrets = nil
			} else {
				token, err := s.sealSecrets(sess, upd.Secrets, upd.SecretPassword)
				if err != nil {
					return err
				}
				record.Secrets = token
			}
		}

		return repo.Update(ctx, record)
	})
}

// EditByName resolves the application name to a single record and edits it.
func (s *Service) EditByName(ctx context.Context, sess *models.Session, application string, upd Update) error {
	record, err := s.resolveOne(ctx, sess, application)
	if err != nil {
		return err
	}
	return s.Edit(ctx, sess, record.ID, upd)
}

// Delete removes the record identified by recordID.
func (s *Service) Delete(ctx context.Context, sess *models.Session, recordID string) error {
	repo := s.repos.Records(s.db)
	return repo.Delete(ctx, sess.UserID, recordID)
}

// DeleteByName resolves the application name to a single record and
// deletes it. Several matches yield common.ErrorAmbiguousMatch: the caller
// must confirm a concrete record id (the CLI walks the candidates).
func (s *Service) DeleteByName(ctx context.Context, sess *models.Session, application string) error {
	record, err := s.resolveOne(ctx, sess, application)
	if err != nil {
		return err
	}
	return s.Delete(ctx, sess, record.ID)
}

// --- helpers below ---

func (s *Service) resolveOne(ctx context.Context, sess *models.Session, application string) (*models.VaultRecord, error) {
	repo := s.repos.Records(s.db)
	matches, err := repo.FindByOwnerAndApp(ctx, sess.UserID, application)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, common.ErrorNotFound
	case 1:
		return matches[0], nil
	default:
		return nil, common.ErrorAmbiguousMatch
	}
}

func (s *Service) recordKey(sess *models.Session, secretPassword []byte) ([]byte, error) {
	if len(secretPassword) == 0 {
		return nil, fmt.Errorf("%w: secret password is required", common.ErrorValidation)
	}
	return cryptox.DeriveKey(secretPassword, sess.AccessSalt, s.kdf)
}

func (s *Service) sealSecrets(sess *models.Session, secrets []string, secretPassword []byte) ([]byte, error) {
	payload, err := models.EncodeSecrets(secrets)
	if err != nil {
		return nil, err
	}

	key, err := s.recordKey(sess, secretPassword)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(key)

	return cryptox.Seal(payload, key)
}

func (s *Service) reveal(sess *models.Session, record *models.VaultRecord, secretPassword []byte) (*Revealed, error) {
	out := &Revealed{Application: record.Application, Username: record.Username}

	if record.Secrets == nil {
		return out, nil
	}

	key, err := s.recordKey(sess, secretPassword)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(key)

	payload, err := cryptox.Open(record.Secrets, key)
	if err != nil {
		if errors.Is(err, common.ErrorInvalidToken) {
			return nil, common.ErrorWrongSecretPassword
		}
		return nil, err
	}

	secrets, err := models.DecodeSecrets(payload)
	if err != nil {
		return nil, err
	}
	out.Secrets = secrets
	return out, nil
}

func summaries(result []*models.VaultRecord) []Summary {
	items := make([]Summary, 0, len(result))
	for _, r := range result {
		items = append(items, Summary{
			ID:          r.ID,
			Application: r.Application,
			Username:    r.Username,
			HasSecrets:  r.Secrets != nil,
		})
	}
	return items
}
