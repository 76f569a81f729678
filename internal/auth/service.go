// Package auth implements registration and login. A successful login
// yields a models.Session holding the user id and the per-account access
// salt; the session is kept in memory for the process lifetime only.
package auth

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/skarpenko/govault/internal/common"
	"github.com/skarpenko/govault/internal/cryptox"
	"github.com/skarpenko/govault/internal/models"
	"github.com/skarpenko/govault/internal/repositories/repomanager"
)

// Service provides authentication-related operations:
//   - Register: create accounts
//   - Login: verify credentials and establish a session
type Service struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
	kdf   cryptox.Params
}

// NewService constructs an auth Service. kdf is the interactive derivation
// profile from configuration.
func NewService(db *sql.DB, m repomanager.RepositoryManager, kdf cryptox.Params) *Service {
	return &Service{db: db, repos: m, kdf: kdf}
}

// Register creates a new account. The login key and its salt come from
// cryptox.GeneratePasswordKey; a separate access salt is generated for
// record-key derivation. Username uniqueness is enforced by the database
// constraint, so two concurrent registrations cannot both succeed.
func (s *Service) Register(ctx context.Context, username, password string) (*models.Account, error) {
	hashed, loginSalt, err := cryptox.GeneratePasswordKey([]byte(password), s.kdf)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		ID:             uuid.NewString(),
		Username:       username,
		HashedPassword: hashed,
		LoginSalt:      loginSalt,
		AccessSalt:     cryptox.GenerateSalt(),
	}

	repo := s.repos.Accounts(s.db)
	created, err := repo.Create(ctx, account)
	if err != nil {
		if errors.Is(err, common.ErrorUsernameTaken) {
			return nil, err
		}
		return nil, common.ErrorInternal
	}
	return created, nil
}

// Login verifies username/password and returns a session on success.
// A missing account and a wrong password both yield
// common.ErrorInvalidCredentials so the result never reveals which factor
// was wrong. When the account is absent, a key is still derived against a
// random salt to keep the two paths close in timing.
func (s *Service) Login(ctx context.Context, username, password string) (*models.Session, error) {
	repo := s.repos.Accounts(s.db)

	account, err := repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.burnDerivation(password)
			return nil, common.ErrorInvalidCredentials
		}
		return nil, common.ErrorInternal
	}

	candidate, err := cryptox.DeriveKey([]byte(password), account.LoginSalt, s.kdf)
	if err != nil {
		return nil, common.ErrorInternal
	}
	defer common.WipeByteArray(candidate)

	if subtle.ConstantTimeCompare(account.HashedPassword, candidate) != 1 {
		return nil, common.ErrorInvalidCredentials
	}

	return &models.Session{UserID: account.ID, AccessSalt: account.AccessSalt}, nil
}

// burnDerivation performs a throwaway derivation so the absent-account path
// costs roughly the same as a real password check.
func (s *Service) burnDerivation(password string) {
	key, _ := cryptox.DeriveKey([]byte(password), cryptox.GenerateSalt(), s.kdf)
	common.WipeByteArray(key)
}
