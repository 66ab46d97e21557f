package domain

import "time"

type User struct {
	ID           string
	Email        string
	PasswordHash string // argon2 encoded
	FirstName    string
	LastName     string
	Role         Role
	IsActive     bool
	MFAEnabled   *time.Time // timestamp when TOTP was enabled (nullable)
	MFASecret    *string    // TOTP secret (nullable, base32 encoded)
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserUpdate carries a partial profile update. Nil fields are left as-is,
// matching the optimistic client-side merge.
type UserUpdate struct {
	FirstName *string
	LastName  *string
	Email     *string
}
