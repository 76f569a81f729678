package models

// Session is the transient proof of a successful login. It lives in memory
// for the process lifetime and is never persisted. AccessSalt is used to
// derive record keys for the authenticated user.
type Session struct {
	UserID     string
	AccessSalt []byte
}
