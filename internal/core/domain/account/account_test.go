package account

import (
	"context"
	c "passreset/internal/core/domain/common"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var NOW = time.Date(2020, 6, 6, 15, 30, 30, 0, time.UTC)

func TestValidate(t *testing.T) {
	cases := []struct {
		id      string
		account Account
		isValid bool
	}{
		{
			id:      "no pending reset",
			account: Account{ID: 1, Email: "a@x.com", PasswordHash: "hash"},
			isValid: true,
		},
		{
			id: "pending reset",
			account: Account{
				ID:                  1,
				Email:               "a@x.com",
				PasswordHash:        "hash",
				ResetTokenHash:      c.Some(ResetTokenHash("token-hash")),
				ResetTokenExpiresAt: c.Some(NOW),
			},
			isValid: true,
		},
		{
			id: "token without expiry",
			account: Account{
				ID:             1,
				Email:          "a@x.com",
				PasswordHash:   "hash",
				ResetTokenHash: c.Some(ResetTokenHash("token-hash")),
			},
			isValid: false,
		},
		{
			id: "expiry without token",
			account: Account{
				ID:                  1,
				Email:               "a@x.com",
				PasswordHash:        "hash",
				ResetTokenExpiresAt: c.Some(NOW),
			},
			isValid: false,
		},
		{
			id:      "no password",
			account: Account{ID: 1, Email: "a@x.com"},
			isValid: false,
		},
		{
			id:      "no email",
			account: Account{ID: 1, PasswordHash: "hash"},
			isValid: false,
		},
	}
	for _, testcase := range cases {
		t.Run(testcase.id, func(t *testing.T) {
			err := testcase.account.Validate()
			if testcase.isValid {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestHasPendingReset(t *testing.T) {
	a := Account{
		Email:               "a@x.com",
		PasswordHash:        "hash",
		ResetTokenHash:      c.Some(ResetTokenHash("token-hash")),
		ResetTokenExpiresAt: c.Some(NOW),
	}
	require.True(t, a.HasPendingReset(NOW.Add(-time.Second)))
	require.False(t, a.HasPendingReset(NOW))
	require.False(t, a.HasPendingReset(NOW.Add(time.Second)))

	a.ResetTokenHash = c.None[ResetTokenHash]()
	a.ResetTokenExpiresAt = c.None[time.Time]()
	require.False(t, a.HasPendingReset(NOW.Add(-time.Hour)))
}

func TestParseResetToken(t *testing.T) {
	var token ResetToken
	for i := range token {
		token[i] = byte(i)
	}

	parsed, err := ParseResetToken(token.String())
	require.NoError(t, err)
	require.Equal(t, token, parsed)
	require.Len(t, token.String(), 64)

	invalid := []string{
		"",
		"abc",
		strings.Repeat("z", 64),
		token.String() + "00",
		token.String()[:62],
	}
	for _, raw := range invalid {
		_, err := ParseResetToken(raw)
		require.ErrorIs(t, err, ErrInvalidOrExpiredResetToken, raw)
	}
}

func TestResetTokenExpiresAt(t *testing.T) {
	expiresAt := ResetTokenExpiresAt(NOW, DefaultResetTokenValidity)
	require.True(t, expiresAt.Equal(NOW.Add(3_600_000*time.Millisecond)), expiresAt)

	expiresAt = ResetTokenExpiresAt(NOW, 24)
	require.True(t, expiresAt.Equal(NOW.Add(24*time.Hour)), expiresAt)
}

func TestSecretsAreRedacted(t *testing.T) {
	var token ResetToken
	require.Equal(t, "***", token.Redacted())
	require.Equal(t, "***", ResetTokenHash("abc").String())
	require.Equal(t, "***", PasswordHash("abc").String())
	require.Equal(t, "***", RawPassword("abc").String())
}

func TestFakeRepositoryCreateAssignsNextID(t *testing.T) {
	repo := NewFakeRepository()
	repo.Accounts = []Account{
		{ID: 7, Email: "b@x.com", PasswordHash: "hash"},
		{ID: 3, Email: "c@x.com", PasswordHash: "hash"},
	}

	a, err := repo.Create(context.Background(), CreateInput{Email: "a@x.com", PasswordHash: "hash", CreatedAt: NOW})

	require.NoError(t, err)
	require.Equal(t, ID(8), a.ID)
}
