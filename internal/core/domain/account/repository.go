package account

import (
	"context"
	c "passreset/internal/core/domain/common"
	"time"
)

type CreateInput struct {
	Email        c.Email
	PasswordHash PasswordHash
	CreatedAt    time.Time
}

type SetResetTokenInput struct {
	Email     c.Email
	TokenHash ResetTokenHash
	ExpiresAt time.Time
}

type ResetTokenQuery struct {
	Email     c.Email
	TokenHash ResetTokenHash
	Now       time.Time
}

type RedeemResetTokenInput struct {
	ResetTokenQuery
	PasswordHash PasswordHash
}

type Repository interface {
	Create(ctx context.Context, input CreateInput) (Account, error)
	GetByEmail(ctx context.Context, email c.Email) (Account, error)

	// SetResetToken replaces any pending token of the account.
	SetResetToken(ctx context.Context, input SetResetTokenInput) (Account, error)

	// GetByResetToken returns the account only if email, token hash and
	// expiry all match at input.Now.
	GetByResetToken(ctx context.Context, input ResetTokenQuery) (Account, error)

	// RedeemResetToken sets the new password and clears the pending token
	// in one conditional write. Concurrent calls with the same token must
	// see exactly one success, others get ErrInvalidOrExpiredResetToken.
	RedeemResetToken(ctx context.Context, input RedeemResetTokenInput) (Account, error)
}
