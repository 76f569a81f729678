// Package models holds the data types shared by services and repositories.
package models

import "time"

// Account is a registered vault user. HashedPassword is the scrypt-derived
// login key; LoginSalt is the salt it was derived with. AccessSalt is a
// separate per-account salt combined with a record's secret password to
// derive that record's encryption key.
type Account struct {
	ID             string
	Username       string
	HashedPassword []byte
	LoginSalt      []byte
	AccessSalt     []byte
	CreatedAt      time.Time
}
