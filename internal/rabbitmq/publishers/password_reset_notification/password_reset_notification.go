package passwordresetnotification

import (
	"context"
	"fmt"
	"passreset/internal/core/domain/account"
	c "passreset/internal/core/domain/common"
	e "passreset/internal/core/domain/errors"
	"passreset/internal/core/domain/logging"
	"passreset/internal/rabbitmq/schema"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
)

type publisher interface {
	PublishWithContext(
		ctx context.Context,
		exchange, key string,
		mandatory, immediate bool,
		msg amqp091.Publishing,
	) error
}

// RabbitMQ publishes password reset notifications for the mailer.
type RabbitMQ struct {
	log     logging.Logger
	channel publisher
	queue   string
	now     c.NowFunc
}

func NewRabbitMQ(log logging.Logger, channel publisher, queue string, now c.NowFunc) *RabbitMQ {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if channel == nil {
		panic(e.NewNilArgumentError("channel"))
	}
	if queue == "" {
		panic("queue name must not be empty")
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &RabbitMQ{log: log, channel: channel, queue: queue, now: now}
}

func (p *RabbitMQ) NotifyPasswordReset(ctx context.Context, n account.ResetNotification) error {
	message := schema.FromResetNotification(n)
	body, err := message.Marshal()
	if err != nil {
		return err
	}

	ttl := n.ExpiresAt.Sub(p.now()).Milliseconds()
	if ttl <= 0 {
		return fmt.Errorf("password reset notification for %s has already expired", n.Email)
	}

	messageID := uuid.NewString()
	err = p.channel.PublishWithContext(ctx, "", p.queue, false, false, amqp091.Publishing{
		MessageId:    messageID,
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Expiration:   fmt.Sprintf("%d", ttl),
		Timestamp:    p.now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("could not publish password reset notification: %w", err)
	}
	p.log.Info(
		ctx,
		"AMQP message has been successfully published.",
		logging.Entry("queue", p.queue),
		logging.Entry("messageID", messageID),
		logging.Entry("email", n.Email),
	)
	return nil
}
