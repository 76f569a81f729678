package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/skarpenko/govault/internal/common"
	"github.com/skarpenko/govault/internal/models"
	"github.com/skarpenko/govault/internal/vault"
)

// VaultService is the surface the CLI needs from the vault layer.
type VaultService interface {
	Add(ctx context.Context, sess *models.Session, input vault.AddInput) (string, error)
	List(ctx context.Context, sess *models.Session) ([]vault.Summary, error)
	FindByName(ctx context.Context, sess *models.Session, application string) ([]vault.Summary, error)
	Reveal(ctx context.Context, sess *models.Session, recordID string, secretPassword []byte) (*vault.Revealed, error)
	RevealByName(ctx context.Context, sess *models.Session, application string, secretPassword []byte) (*vault.Revealed, error)
	Edit(ctx context.Context, sess *models.Session, recordID string, upd vault.Update) error
	Delete(ctx context.Context, sess *models.Session, recordID string) error
}

const secretsMask = "******"

// addFlow collects record fields, optionally a secrets payload with its
// own password, confirms, and stores the record.
func (a *App) addFlow(ctx context.Context) {
	a.printTitleBar()

	application, err := GetSimpleText(a.reader, "App:", os.Stdout)
	if err != nil {
		return
	}
	username, err := GetSimpleText(a.reader, "Username:", os.Stdout)
	if err != nil {
		return
	}

	secrets, secretPassword, err := a.collectSecrets()
	if err != nil {
		printlnFn(err.Error())
		return
	}
	defer common.WipeByteArray(secretPassword)

	ok, err := Confirm(a.reader, "Is all the info correct?", os.Stdout)
	if err != nil || !ok {
		printlnFn("Cancelled!")
		return
	}

	_, err = a.vault.Add(ctx, a.session, vault.AddInput{
		Application:    application,
		Username:       username,
		Secrets:        secrets,
		SecretPassword: secretPassword,
	})
	if err != nil {
		if errors.Is(err, common.ErrorValidation) {
			printlnFn(err.Error())
			return
		}
		a.logger.Error(ctx, "add record failed", "error", err.Error())
		printlnFn("Something went wrong.")
		return
	}

	printlnFn("App added to vault.")
}

// collectSecrets prompts for up to models.MaxSecrets secret values and the
// secret password protecting them. An empty count means no secrets.
func (a *App) collectSecrets() (secrets []string, secretPassword []byte, err error) {
	countText, err := GetSimpleText(a.reader,
		fmt.Sprintf("How many secrets/passwords: (max:%d)", models.MaxSecrets), os.Stdout)
	if err != nil {
		return nil, nil, err
	}
	if countText == "" || countText == "0" {
		return nil, nil, nil
	}

	count, err := strconv.Atoi(countText)
	if err != nil {
		return nil, nil, fmt.Errorf("not a number: %s", countText)
	}
	if count < 0 || count > models.MaxSecrets {
		return nil, nil, fmt.Errorf("you can only pick %d secrets", models.MaxSecrets)
	}

	for i := 0; i < count; i++ {
		value, err := GetPassword(fmt.Sprintf("Secret #%d", i+1), os.Stdout)
		if err != nil {
			return nil, nil, err
		}
		secrets = append(secrets, string(value))
		common.WipeByteArray(value)
	}

	secretPassword, err = GetConfirmedPassword("2nd Password for encryption", os.Stdout)
	if err != nil {
		return nil, nil, err
	}
	return secrets, secretPassword, nil
}

// listFlow prints all records of the current user. Secrets are shown as a
// masked placeholder, never decrypted here.
func (a *App) listFlow(ctx context.Context) {
	items, err := a.vault.List(ctx, a.session)
	if err != nil {
		a.logger.Error(ctx, "list records failed", "error", err.Error())
		printlnFn("Something went wrong.")
		return
	}

	a.printTitleBar()
	fmt.Printf("%-38s%-20s%-20s%-10s\n", "ID", "App", "Username", "Secrets")
	for _, item := range items {
		username := item.Username
		if username == "" {
			username = "------"
		}
		secrets := "------"
		if item.HasSecrets {
			secrets = secretsMask
		}
		fmt.Printf("%-38s%-20s%-20s%-10s\n", item.ID, item.Application, username, secrets)
	}
}

// revealFlow decrypts and prints one record. When several records share
// the requested name the user picks one by id.
func (a *App) revealFlow(ctx context.Context) {
	a.printTitleBar()

	application, err := GetSimpleText(a.reader, "App name:", os.Stdout)
	if err != nil {
		return
	}

	secretPassword, err := GetPassword("Secret Password", os.Stdout)
	if err != nil {
		return
	}
	defer common.WipeByteArray(secretPassword)

	revealed, err := a.vault.RevealByName(ctx, a.session, application, secretPassword)
	if errors.Is(err, common.ErrorAmbiguousMatch) {
		id, pickErr := a.pickRecord(ctx, application)
		if pickErr != nil {
			return
		}
		revealed, err = a.vault.Reveal(ctx, a.session, id, secretPassword)
	}
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			printlnFn("No app was found with that name!")
		case errors.Is(err, common.ErrorWrongSecretPassword):
			printlnFn("Invalid password!!")
		default:
			a.logger.Error(ctx, "reveal failed", "error", err.Error())
			printlnFn("Something went wrong.")
		}
		return
	}

	a.printTitleBar()
	fmt.Printf("%-20s%-20s", "App", "Username")
	for i := range revealed.Secrets {
		fmt.Printf("%-20s", fmt.Sprintf("Secret #%d", i+1))
	}
	fmt.Println()
	fmt.Printf("%-20s%-20s", revealed.Application, revealed.Username)
	for _, s := range revealed.Secrets {
		fmt.Printf("%-20s", s)
	}
	fmt.Println()
}

// editFlow updates a record in place. Empty answers keep the old values;
// secrets are replaced only when the user asks for it.
func (a *App) editFlow(ctx context.Context) {
	a.printTitleBar()
	printlnFn("Enter a new value or press Enter to keep the same.")

	oldName, err := GetSimpleText(a.reader, "Old App Name: (for selection)", os.Stdout)
	if err != nil {
		return
	}

	id, err := a.resolveRecord(ctx, oldName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			printlnFn("No app was found with that name!")
		}
		return
	}

	newName, err := GetSimpleText(a.reader, "App:", os.Stdout)
	if err != nil {
		return
	}
	newUsername, err := GetSimpleText(a.reader, "Username:", os.Stdout)
	if err != nil {
		return
	}

	upd := vault.Update{}
	if newName != "" {
		upd.Application = &newName
	}
	if newUsername != "" {
		upd.Username = &newUsername
	}

	change, err := Confirm(a.reader, "Replace secrets?", os.Stdout)
	if err != nil {
		return
	}
	if change {
		secrets, secretPassword, err := a.collectSecrets()
		if err != nil {
			printlnFn(err.Error())
			return
		}
		defer common.WipeByteArray(secretPassword)
		if secrets == nil {
			secrets = []string{}
		}
		upd.Secrets = secrets
		upd.SecretPassword = secretPassword
	}

	ok, err := Confirm(a.reader, "Is all the info correct?", os.Stdout)
	if err != nil || !ok {
		printlnFn("Cancelled!")
		return
	}

	if err := a.vault.Edit(ctx, a.session, id, upd); err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			printlnFn("No app was found with that name!")
		case errors.Is(err, common.ErrorValidation):
			printlnFn(err.Error())
		default:
			a.logger.Error(ctx, "edit record failed", "error", err.Error())
			printlnFn("Something went wrong.")
		}
		return
	}

	printlnFn("App updated.")
}

// deleteFlow removes a record. Deletion always goes through an explicit,
// user-confirmed record id: with several matches every candidate is
// offered in turn, and declining all of them cancels the operation.
func (a *App) deleteFlow(ctx context.Context) {
	a.printTitleBar()

	application, err := GetSimpleText(a.reader, "App Name: (for selection)", os.Stdout)
	if err != nil {
		return
	}

	matches, err := a.vault.FindByName(ctx, a.session, application)
	if err != nil {
		a.logger.Error(ctx, "delete lookup failed", "error", err.Error())
		printlnFn("Something went wrong.")
		return
	}
	if len(matches) == 0 {
		printlnFn("No app was found with that name!")
		return
	}

	if len(matches) > 1 {
		printlnFn("There seems to be more than one app registered with that name.")
	}

	var recordID string
	for _, m := range matches {
		prompt := fmt.Sprintf("Delete app id %s, name %s with username -> %s?", m.ID, m.Application, m.Username)
		ok, err := Confirm(a.reader, prompt, os.Stdout)
		if err != nil {
			return
		}
		if ok {
			recordID = m.ID
			break
		}
	}
	if recordID == "" {
		printlnFn("Operation cancelled.")
		return
	}

	if err := a.vault.Delete(ctx, a.session, recordID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			printlnFn("No app was found with that name!")
			return
		}
		a.logger.Error(ctx, "delete record failed", "error", err.Error())
		printlnFn("Something went wrong.")
		return
	}

	printlnFn("App deleted successfully.")
}

// resolveRecord maps an application name to a single record id, asking the
// user to pick when several match.
func (a *App) resolveRecord(ctx context.Context, application string) (string, error) {
	matches, err := a.vault.FindByName(ctx, a.session, application)
	if err != nil {
		return "", err
	}
	switch len(matches) {
	case 0:
		return "", common.ErrorNotFound
	case 1:
		return matches[0].ID, nil
	default:
		return a.pickRecord(ctx, application)
	}
}

// pickRecord lists candidates sharing a name and prompts for an explicit id.
func (a *App) pickRecord(ctx context.Context, application string) (string, error) {
	matches, err := a.vault.FindByName(ctx, a.session, application)
	if err != nil {
		return "", err
	}

	printlnFn("There seems to be more than one app registered with that name.")
	for _, m := range matches {
		fmt.Printf("App id %s, name %s with username -> %s\n", m.ID, m.Application, m.Username)
	}

	id, err := GetSimpleText(a.reader, "Enter the app id:", os.Stdout)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", common.ErrorCancelled
	}
	return id, nil
}
