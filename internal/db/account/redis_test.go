package account

import (
	"passreset/internal/core/domain/account"
	c "passreset/internal/core/domain/common"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDecodeAccountReply(t *testing.T) {
	a, err := decodeAccountReply([]interface{}{
		"id", "7",
		"email", "a@x.com",
		"password_hash", "hash",
		"created_at", "1591457430000",
		"reset_token_hash", "token-hash",
		"reset_token_expires_at", "1591461030000",
	})

	require.NoError(t, err)
	require.Equal(t, account.ID(7), a.ID)
	require.Equal(t, c.Email("a@x.com"), a.Email)
	require.True(t, NOW.Equal(a.CreatedAt))
	require.Equal(t, c.Some(account.ResetTokenHash("token-hash")), a.ResetTokenHash)
	require.True(t, NOW.Add(time.Hour).Equal(a.ResetTokenExpiresAt.Value))
}

func TestDecodeAccountReplyRejectsHalfReset(t *testing.T) {
	_, err := decodeAccountReply([]interface{}{
		"id", "7",
		"email", "a@x.com",
		"password_hash", "hash",
		"created_at", "1591457430000",
		"reset_token_hash", "token-hash",
	})

	require.Error(t, err)
}

func TestDecodeAccountReplyMalformed(t *testing.T) {
	_, err := decodeAccountReply([]interface{}{"id"})
	require.Error(t, err)

	_, err = decodeAccountReply([]interface{}{"id", "x", "created_at", "1"})
	require.Error(t, err)
}
