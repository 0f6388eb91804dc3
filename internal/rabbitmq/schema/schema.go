package schema

import (
	"encoding/json"
	"fmt"
	"passreset/internal/core/domain/account"
	c "passreset/internal/core/domain/common"
	"time"
)

// PasswordResetNotification carries the plaintext token to the mailer.
// Messages expire together with the token.
type PasswordResetNotification struct {
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func FromResetNotification(n account.ResetNotification) PasswordResetNotification {
	return PasswordResetNotification{
		Email:     string(n.Email),
		Token:     n.Token.String(),
		ExpiresAt: n.ExpiresAt,
	}
}

func (p *PasswordResetNotification) ResetNotification() (n account.ResetNotification, err error) {
	token, err := account.ParseResetToken(p.Token)
	if err != nil {
		return n, fmt.Errorf("invalid token in password reset notification for %s", p.Email)
	}
	if p.Email == "" {
		return n, fmt.Errorf("email is not set in password reset notification")
	}
	return account.ResetNotification{
		Email:     c.NewEmail(p.Email),
		Token:     token,
		ExpiresAt: p.ExpiresAt,
	}, nil
}

func (p *PasswordResetNotification) Marshal() ([]byte, error) {
	return json.Marshal(p)
}

func (p *PasswordResetNotification) Unmarshal(data []byte) error {
	return json.Unmarshal(data, p)
}
