package schema

import (
	"passreset/internal/core/domain/account"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestResetNotificationRoundTrip(t *testing.T) {
	var token account.ResetToken
	token[3] = 9
	n := account.ResetNotification{
		Email:     "a@x.com",
		Token:     token,
		ExpiresAt: time.Date(2020, 6, 6, 16, 30, 30, 0, time.UTC),
	}
	message := FromResetNotification(n)
	data, err := message.Marshal()
	require.NoError(t, err)

	decoded := &PasswordResetNotification{}
	require.NoError(t, decoded.Unmarshal(data))
	actual, err := decoded.ResetNotification()

	require.NoError(t, err)
	require.Equal(t, n.Email, actual.Email)
	require.Equal(t, n.Token, actual.Token)
	require.True(t, n.ExpiresAt.Equal(actual.ExpiresAt))
}

func TestInvalidResetNotification(t *testing.T) {
	_, err := (&PasswordResetNotification{Email: "a@x.com", Token: "abc"}).ResetNotification()
	require.Error(t, err)

	var token account.ResetToken
	_, err = (&PasswordResetNotification{Token: token.String()}).ResetNotification()
	require.Error(t, err)
}
