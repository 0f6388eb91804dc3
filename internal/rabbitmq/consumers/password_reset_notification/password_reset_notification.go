package passwordresetnotification

import (
	"context"
	"passreset/internal/core/domain/account"
	c "passreset/internal/core/domain/common"
	e "passreset/internal/core/domain/errors"
	"passreset/internal/core/domain/logging"
	"passreset/internal/rabbitmq"
	"passreset/internal/rabbitmq/schema"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

type outcome int

const (
	ack outcome = iota
	requeue
	drop
)

type Consumer struct {
	log      logging.Logger
	channel  *rabbitmq.Channel
	queue    string
	notifier account.ResetNotifier
	timeout  time.Duration
	now      c.NowFunc
}

func New(
	log logging.Logger,
	channel *rabbitmq.Channel,
	queue string,
	notifier account.ResetNotifier,
	timeout time.Duration,
	now c.NowFunc,
) *Consumer {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if channel == nil {
		panic(e.NewNilArgumentError("channel"))
	}
	if queue == "" {
		panic("queue name must not be empty")
	}
	if notifier == nil {
		panic(e.NewNilArgumentError("notifier"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &Consumer{log: log, channel: channel, queue: queue, notifier: notifier, timeout: timeout, now: now}
}

func (c *Consumer) Consume() error {
	deliveries, err := c.channel.Consume(c.queue, "", 1)
	if err != nil {
		c.log.Error(context.Background(), "Could not start consuming.", logging.Entry("err", err))
		return err
	}

	go func() {
		for delivery := range deliveries {
			c.settle(delivery, c.handle(delivery.Body, delivery.Redelivered))
		}
	}()
	return nil
}

func (c *Consumer) handle(body []byte, redelivered bool) outcome {
	message := &schema.PasswordResetNotification{}
	if err := message.Unmarshal(body); err != nil {
		c.log.Error(context.Background(), "Could not unmarshal password reset notification.", logging.Entry("err", err))
		return drop
	}
	n, err := message.ResetNotification()
	if err != nil {
		c.log.Error(context.Background(), "Invalid password reset notification.", logging.Entry("err", err))
		return drop
	}
	if !n.ExpiresAt.After(c.now()) {
		c.log.Info(context.Background(), "Password reset notification expired.", logging.Entry("email", n.Email))
		return ack
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	if err := c.notifier.NotifyPasswordReset(ctx, n); err != nil {
		c.log.Error(
			context.Background(),
			"Could not send password reset email.",
			logging.Entry("email", n.Email),
			logging.Entry("redelivered", redelivered),
			logging.Entry("err", err),
		)
		// One retry through the queue.
		if redelivered {
			return drop
		}
		return requeue
	}

	c.log.Info(context.Background(), "Password reset email has been sent.", logging.Entry("email", n.Email))
	return ack
}

func (c *Consumer) settle(delivery amqp091.Delivery, o outcome) {
	var err error
	switch o {
	case ack:
		err = delivery.Ack(false)
	case requeue:
		err = delivery.Nack(false, true)
	case drop:
		err = delivery.Nack(false, false)
	}
	if err != nil {
		c.log.Error(context.Background(), "Could not settle AMQP message.", logging.Entry("err", err))
	}
}
