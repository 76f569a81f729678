package models

import "time"

// VaultRecord is one stored credential. Secrets is the opaque encrypted
// token produced by the cipher, or nil when the record carries no secrets.
type VaultRecord struct {
	ID          string
	UserID      string
	Application string
	Username    string
	Secrets     []byte
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
