package account

import (
	c "passreset/internal/core/domain/common"
	e "passreset/internal/core/domain/errors"
	"time"
)

type ID int64

type PasswordHash string

func (p PasswordHash) String() string {
	return "***"
}

type RawPassword string

func (p RawPassword) String() string {
	return "***"
}

type Account struct {
	ID                  ID
	Email               c.Email
	PasswordHash        PasswordHash
	ResetTokenHash      c.Optional[ResetTokenHash]
	ResetTokenExpiresAt c.Optional[time.Time]
	CreatedAt           time.Time
}

// Validate checks that the pending reset fields are set and cleared together.
func (a *Account) Validate() error {
	if a.Email == "" {
		return e.NewInvalidStateError("email is not set for account %d", a.ID)
	}
	if a.PasswordHash == "" {
		return e.NewInvalidStateError("password hash is not set for account %s", a.Email)
	}
	if a.ResetTokenHash.IsPresent != a.ResetTokenExpiresAt.IsPresent {
		return e.NewInvalidStateError("reset token and its expiry must be set together for account %s", a.Email)
	}
	return nil
}

func (a *Account) HasPendingReset(now time.Time) bool {
	return a.ResetTokenHash.IsPresent && a.ResetTokenExpiresAt.IsPresent && a.ResetTokenExpiresAt.Value.After(now)
}
