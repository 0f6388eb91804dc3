package account

import (
	"context"
	"encoding/hex"
	c "passreset/internal/core/domain/common"
	"time"

	"github.com/golang-module/carbon/v2"
)

const (
	ResetTokenSize             = 32
	DefaultResetTokenValidity  = 1
	resetTokenRedactedSentinel = "***"
)

// ResetToken is the secret sent to the account owner. It is only ever
// rendered in plaintext inside the notification, the store keeps its hash.
type ResetToken [ResetTokenSize]byte

func ParseResetToken(raw string) (ResetToken, error) {
	if len(raw) != ResetTokenSize*2 {
		return ResetToken{}, ErrInvalidOrExpiredResetToken
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return ResetToken{}, ErrInvalidOrExpiredResetToken
	}
	var token ResetToken
	copy(token[:], b)
	return token, nil
}

func (t ResetToken) String() string {
	return hex.EncodeToString(t[:])
}

func (t ResetToken) Redacted() string {
	return resetTokenRedactedSentinel
}

type ResetTokenHash string

func (h ResetTokenHash) String() string {
	return resetTokenRedactedSentinel
}

type ResetTokenGenerator interface {
	GenerateResetToken() (ResetToken, error)
}

type ResetTokenHasher interface {
	HashResetToken(token ResetToken) ResetTokenHash
}

// ResetTokenExpiresAt returns the moment a token issued at issuedAt stops
// being accepted, validHours is the token lifetime in hours.
func ResetTokenExpiresAt(issuedAt time.Time, validHours int) time.Time {
	return carbon.Time2Carbon(issuedAt).AddHours(validHours).Carbon2Time()
}

type ResetNotification struct {
	Email     c.Email
	Token     ResetToken
	ExpiresAt time.Time
}

type ResetNotifier interface {
	NotifyPasswordReset(ctx context.Context, n ResetNotification) error
}
