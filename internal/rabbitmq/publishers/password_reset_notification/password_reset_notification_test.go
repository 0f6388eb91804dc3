package passwordresetnotification

import (
	"context"
	"errors"
	"passreset/internal/core/domain/account"
	"passreset/internal/core/domain/logging"
	"passreset/internal/rabbitmq/schema"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
)

var NOW = time.Date(2020, 6, 6, 15, 30, 30, 0, time.UTC)

type fakeChannel struct {
	published   []amqp091.Publishing
	keys        []string
	returnError bool
}

func (f *fakeChannel) PublishWithContext(
	ctx context.Context,
	exchange, key string,
	mandatory, immediate bool,
	msg amqp091.Publishing,
) error {
	if f.returnError {
		return errors.New("channel closed")
	}
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func TestNotificationPublished(t *testing.T) {
	channel := &fakeChannel{}
	publisher := NewRabbitMQ(logging.NewFakeLogger(), channel, "password-reset", func() time.Time { return NOW })
	var token account.ResetToken
	token[0] = 1

	err := publisher.NotifyPasswordReset(context.Background(), account.ResetNotification{
		Email:     "a@x.com",
		Token:     token,
		ExpiresAt: NOW.Add(time.Hour),
	})

	require.NoError(t, err)
	require.Equal(t, []string{"password-reset"}, channel.keys)
	msg := channel.published[0]
	require.Equal(t, "3600000", msg.Expiration)
	require.Equal(t, amqp091.Persistent, msg.DeliveryMode)
	_, err = uuid.Parse(msg.MessageId)
	require.NoError(t, err)

	decoded := &schema.PasswordResetNotification{}
	require.NoError(t, decoded.Unmarshal(msg.Body))
	require.Equal(t, token.String(), decoded.Token)
	require.Equal(t, "a@x.com", decoded.Email)
}

func TestExpiredNotificationIsNotPublished(t *testing.T) {
	channel := &fakeChannel{}
	publisher := NewRabbitMQ(logging.NewFakeLogger(), channel, "password-reset", func() time.Time { return NOW })

	err := publisher.NotifyPasswordReset(context.Background(), account.ResetNotification{
		Email:     "a@x.com",
		ExpiresAt: NOW,
	})

	require.Error(t, err)
	require.Empty(t, channel.published)
}

func TestPublishFailure(t *testing.T) {
	publisher := NewRabbitMQ(
		logging.NewFakeLogger(),
		&fakeChannel{returnError: true},
		"password-reset",
		func() time.Time { return NOW },
	)

	err := publisher.NotifyPasswordReset(context.Background(), account.ResetNotification{
		Email:     "a@x.com",
		ExpiresAt: NOW.Add(time.Hour),
	})

	require.ErrorContains(t, err, "channel closed")
}
