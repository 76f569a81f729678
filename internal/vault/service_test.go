package vault

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/skarpenko/govault/internal/common"
	"github.com/skarpenko/govault/internal/cryptox"
	"github.com/skarpenko/govault/internal/dbx"
	"github.com/skarpenko/govault/internal/models"
	"github.com/skarpenko/govault/internal/repositories/accounts"
	"github.com/skarpenko/govault/internal/repositories/records"
)

// testParams keeps scrypt cheap for the unit test suite.
var testParams = cryptox.Params{N: 1024, R: 8, P: 1}

// --- helpers ---

// fakeRecordsRepo is an in-memory records.Repository that enforces the same
// owner scoping as the Postgres implementation.
type fakeRecordsRepo struct {
	byID map[string]*models.VaultRecord
}

func newFakeRecordsRepo() *fakeRecordsRepo {
	return &fakeRecordsRepo{byID: make(map[string]*models.VaultRecord)}
}

func (f *fakeRecordsRepo) Create(ctx context.Context, record *models.VaultRecord) (*models.VaultRecord, error) {
	if record.UserID == "" {
		return nil, common.ErrorNoUserID
	}
	cp := *record
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	f.byID[cp.ID] = &cp
	return &cp, nil
}

func (f *fakeRecordsRepo) ListByOwner(ctx context.Context, ownerID string) ([]*models.VaultRecord, error) {
	if ownerID == "" {
		return nil, common.ErrorNoUserID
	}
	var result []*models.VaultRecord
	for _, r := range f.byID {
		if r.UserID == ownerID {
			result = append(result, r)
		}
	}
	return result, nil
}

func (f *fakeRecordsRepo) FindByOwnerAndApp(ctx context.Context, ownerID, application string) ([]*models.VaultRecord, error) {
	if ownerID == "" {
		return nil, common.ErrorNoUserID
	}
	var result []*models.VaultRecord
	for _, r := range f.byID {
		if r.UserID == ownerID && r.Application == application {
			result = append(result, r)
		}
	}
	return result, nil
}

func (f *fakeRecordsRepo) Get(ctx context.Context, ownerID, id string) (*models.VaultRecord, error) {
	if ownerID == "" {
		return nil, common.ErrorNoUserID
	}
	r, ok := f.byID[id]
	if !ok || r.UserID != ownerID {
		return nil, common.ErrorNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRecordsRepo) Update(ctx context.Context, record *models.VaultRecord) error {
	if record.UserID == "" {
		return common.ErrorNoUserID
	}
	r, ok := f.byID[record.ID]
	if !ok || r.UserID != record.UserID {
		return common.ErrorNotFound
	}
	cp := *record
	cp.UpdatedAt = time.Now()
	f.byID[cp.ID] = &cp
	return nil
}

func (f *fakeRecordsRepo) Delete(ctx context.Context, ownerID, id string) error {
	if ownerID == "" {
		return common.ErrorNoUserID
	}
	r, ok := f.byID[id]
	if !ok || r.UserID != ownerID {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeRepoManager struct {
	r *fakeRecordsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Accounts(db dbx.DBTX) accounts.Repository    { return nil }
func (m *fakeRepoManager) Records(db dbx.DBTX) records.Repository      { return m.r }

func newService(t *testing.T) (*Service, sqlmock.Sqlmock, *fakeRecordsRepo) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	repo := newFakeRecordsRepo()
	return NewService(db, &fakeRepoManager{r: repo}, testParams), mock, repo
}

func newSession(userID string) *models.Session {
	return &models.Session{UserID: userID, AccessSalt: cryptox.GenerateSalt()}
}

// --- tests ---

func TestAddListReveal_Scenario(t *testing.T) {
	s, _, _ := newService(t)
	ctx := context.Background()
	sess := newSession("uA")

	id, err := s.Add(ctx, sess, AddInput{
		Application:    "github",
		Username:       "naruto",
		Secrets:        []string{"tok1", "tok2"},
		SecretPassword: []byte("p1"),
	})
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if id == "" {
		t.Fatalf("expected a record id")
	}

	items, err := s.List(ctx, sess)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 record, got %d", len(items))
	}
	if items[0].Application != "github" || !items[0].HasSecrets {
		t.Errorf("unexpected summary: %+v", items[0])
	}

	revealed, err := s.RevealByName(ctx, sess, "github", []byte("p1"))
	if err != nil {
		t.Fatalf("RevealByName error: %v", err)
	}
	if revealed.Username != "naruto" {
		t.Errorf("unexpected username: %s", revealed.Username)
	}
	if len(revealed.Secrets) != 2 || revealed.Secrets[0] != "tok1" || revealed.Secrets[1] != "tok2" {
		t.Errorf("unexpected secrets: %v", revealed.Secrets)
	}
}

func TestReveal_WrongSecretPassword(t *testing.T) {
	s, _, _ := newService(t)
	ctx := context.Background()
	sess := newSession("uA")

	_, err := s.Add(ctx, sess, AddInput{
		Application:    "github",
		Secrets:        []string{"tok1"},
		SecretPassword: []byte("p1"),
	})
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}

	_, err = s.RevealByName(ctx, sess, "github", []byte("wrong"))
	if !errors.Is(err, common.ErrorWrongSecretPassword) {
		t.Fatalf("expected ErrorWrongSecretPassword, got %v", err)
	}
}

func TestReveal_NotFound(t *testing.T) {
	s, _, _ := newService(t)

	_, err := s.RevealByName(context.Background(), newSession("uA"), "missing", []byte("p1"))
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestReveal_Ambiguous(t *testing.T) {
	s, _, _ := newService(t)
	ctx := context.Background()
	sess := newSession("uA")

	for i := 0; i < 2; i++ {
		_, err := s.Add(ctx, sess, AddInput{Application: "github", Username: fmt.Sprintf("acc%d", i)})
		if err != nil {
			t.Fatalf("Add error: %v", err)
		}
	}

	_, err := s.RevealByName(ctx, sess, "github", []byte("p1"))
	if !errors.Is(err, common.ErrorAmbiguousMatch) {
		t.Fatalf("expected ErrorAmbiguousMatch, got %v", err)
	}
}

func TestReveal_NoSecretsStored(t *testing.T) {
	s, _, _ := newService(t)
	ctx := context.Background()
	sess := newSession("uA")

	if _, err := s.Add(ctx, sess, AddInput{Application: "github", Username: "naruto"}); err != nil {
		t.Fatalf("Add error: %v", err)
	}

	revealed, err := s.RevealByName(ctx, sess, "github", nil)
	if err != nil {
		t.Fatalf("RevealByName error: %v", err)
	}
	if len(revealed.Secrets) != 0 {
		t.Errorf("expected no secrets, got %v", revealed.Secrets)
	}
}

func TestAdd_TooManySecrets(t *testing.T) {
	s, _, _ := newService(t)

	_, err := s.Add(context.Background(), newSession("uA"), AddInput{
		Application:    "github",
		Secrets:        []string{"1", "2", "3", "4", "5"},
		SecretPassword: []byte("p1"),
	})
	if !errors.Is(err, common.ErrorValidation) {
		t.Fatalf("expected ErrorValidation, got %v", err)
	}
}

func TestAdd_MissingApplication(t *testing.T) {
	s, _, _ := newService(t)

	_, err := s.Add(context.Background(), newSession("uA"), AddInput{})
	if !errors.Is(err, common.ErrorValidation) {
		t.Fatalf("expected ErrorValidation, got %v", err)
	}
}

func TestAdd_SecretsWithoutPassword(t *testing.T) {
	s, _, _ := newService(t)

	_, err := s.Add(context.Background(), newSession("uA"), AddInput{
		Application: "github",
		Secrets:     []string{"tok1"},
	})
	if !errors.Is(err, common.ErrorValidation) {
		t.Fatalf("expected ErrorValidation, got %v", err)
	}
}

func TestEdit_UsernameOnly_KeepsSecrets(t *testing.T) {
	s, mock, _ := newService(t)
	ctx := context.Background()
	sess := newSession("uA")

	id, err := s.Add(ctx, sess, AddInput{
		Application:    "github",
		Username:       "naruto",
		Secrets:        []string{"tok1", "tok2"},
		SecretPassword: []byte("p1"),
	})
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectCommit()

	newName := "uzumaki"
	if err := s.Edit(ctx, sess, id, Update{Username: &newName}); err != nil {
		t.Fatalf("Edit error: %v", err)
	}

	// original secret password must still decrypt the original secrets
	revealed, err := s.Reveal(ctx, sess, id, []byte("p1"))
	if err != nil {
		t.Fatalf("Reveal error: %v", err)
	}
	if revealed.Username != "uzumaki" {
		t.Errorf("expected updated username, got %s", revealed.Username)
	}
	if len(revealed.Secrets) != 2 || revealed.Secrets[0] != "tok1" {
		t.Errorf("expected original secrets unchanged, got %v", revealed.Secrets)
	}
}

func TestEdit_ReplacesSecrets(t *testing.T) {
	s, mock, _ := newService(t)
	ctx := context.Background()
	sess := newSession("uA")

	id, err := s.Add(ctx, sess, AddInput{
		Application:    "github",
		Secrets:        []string{"old"},
		SecretPassword: []byte("p1"),
	})
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectCommit()

	err = s.Edit(ctx, sess, id, Update{
		Secrets:        []string{"new1", "new2"},
		SecretPassword: []byte("p2"),
	})
	if err != nil {
		t.Fatalf("Edit error: %v", err)
	}

	// the old secret password no longer opens the payload
	if _, err := s.Reveal(ctx, sess, id, []byte("p1")); !errors.Is(err, common.ErrorWrongSecretPassword) {
		t.Fatalf("expected ErrorWrongSecretPassword for old password, got %v", err)
	}

	revealed, err := s.Reveal(ctx, sess, id, []byte("p2"))
	if err != nil {
		t.Fatalf("Reveal error: %v", err)
	}
	if len(revealed.Secrets) != 2 || revealed.Secrets[0] != "new1" {
		t.Errorf("expected replaced secrets, got %v", revealed.Secrets)
	}
}

func TestEdit_ClearSecrets(t *testing.T) {
	s, mock, _ := newService(t)
	ctx := context.Background()
	sess := newSession("uA")

	id, err := s.Add(ctx, sess, AddInput{
		Application:    "github",
		Secrets:        []string{"tok1"},
		SecretPassword: []byte("p1"),
	})
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectCommit()

	// an explicit empty replacement drops the payload, no password needed
	if err := s.Edit(ctx, sess, id, Update{Secrets: []string{}}); err != nil {
		t.Fatalf("Edit error: %v", err)
	}

	items, err := s.List(ctx, sess)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(items) != 1 || items[0].HasSecrets {
		t.Errorf("expected secrets to be cleared, got %+v", items)
	}
}

func TestEdit_NotFound(t *testing.T) {
	s, mock, _ := newService(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	newName := "x"
	err := s.Edit(context.Background(), newSession("uA"), "missing", Update{Username: &newName})
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestDeleteByName_NotFoundAndAmbiguous(t *testing.T) {
	s, _, _ := newService(t)
	ctx := context.Background()
	sess := newSession("uA")

	if err := s.DeleteByName(ctx, sess, "missing"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := s.Add(ctx, sess, AddInput{Application: "dup"}); err != nil {
			t.Fatalf("Add error: %v", err)
		}
	}
	if err := s.DeleteByName(ctx, sess, "dup"); !errors.Is(err, common.ErrorAmbiguousMatch) {
		t.Fatalf("expected ErrorAmbiguousMatch, got %v", err)
	}
}

func TestDelete_ByExplicitID(t *testing.T) {
	s, _, _ := newService(t)
	ctx := context.Background()
	sess := newSession("uA")

	id, err := s.Add(ctx, sess, AddInput{Application: "github"})
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}

	if err := s.Delete(ctx, sess, id); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if err := s.Delete(ctx, sess, id); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound on second delete, got %v", err)
	}
}

func TestIsolation_BetweenUsers(t *testing.T) {
	s, mock, _ := newService(t)
	ctx := context.Background()

	sessA := newSession("uA")
	sessB := newSession("uB")

	idB, err := s.Add(ctx, sessB, AddInput{
		Application:    "github",
		Username:       "b-user",
		Secrets:        []string{"b-secret"},
		SecretPassword: []byte("pb"),
	})
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}

	// A sees nothing
	items, err := s.List(ctx, sessA)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty list for user A, got %d items", len(items))
	}

	// A cannot reveal, edit or delete B's record even with the real id
	if _, err := s.Reveal(ctx, sessA, idB, []byte("pb")); !errors.Is(err, common.ErrorNotFound) {
		t.Errorf("expected ErrorNotFound on cross-user reveal, got %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectRollback()
	newName := "stolen"
	if err := s.Edit(ctx, sessA, idB, Update{Username: &newName}); !errors.Is(err, common.ErrorNotFound) {
		t.Errorf("expected ErrorNotFound on cross-user edit, got %v", err)
	}

	if err := s.Delete(ctx, sessA, idB); !errors.Is(err, common.ErrorNotFound) {
		t.Errorf("expected ErrorNotFound on cross-user delete, got %v", err)
	}

	// B's record is untouched
	revealed, err := s.Reveal(ctx, sessB, idB, []byte("pb"))
	if err != nil {
		t.Fatalf("Reveal error: %v", err)
	}
	if len(revealed.Secrets) != 1 || revealed.Secrets[0] != "b-secret" {
		t.Errorf("expected B's secrets intact, got %v", revealed.Secrets)
	}
}
