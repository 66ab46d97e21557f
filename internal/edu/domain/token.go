package domain

import "time"

// TokenPair is what the login and refresh endpoints return: the short-lived
// access token (JWT) and the opaque refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}

// RefreshToken models the stored refresh token record. Only the SHA-256
// fingerprint of the opaque value is persisted.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string
	SessionID string // survives rotation so a login maps to one session
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MFASession is a short-lived challenge issued when a TOTP-enrolled user
// passes the password check. The client exchanges it, plus a valid code,
// for a token pair.
type MFASession struct {
	Token     string
	UserID    string
	Attempts  int
	ExpiresAt time.Time
	CreatedAt time.Time
}
