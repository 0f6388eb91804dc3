package consumers

import (
	"context"
	"passreset/internal/app/deps"
	dl "passreset/internal/core/domain/logging"
	passwordresetnotification "passreset/internal/rabbitmq/consumers/password_reset_notification"
)

func initPasswordResetNotificationConsumer(deps *deps.Deps) func() {
	rabbitmqChannel, err := deps.Rabbitmq.Channel()
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not create RabbitMQ channel.", dl.Entry("err", err))
		panic(err)
	}

	queue := deps.Config.RabbitmqQueue
	if err := rabbitmqChannel.DeclareQueue(queue); err != nil {
		deps.Logger.Error(context.Background(), "Could not create RabbitMQ queue.", dl.Entry("err", err))
		panic(err)
	}

	consumer := passwordresetnotification.New(
		deps.Logger,
		rabbitmqChannel,
		queue,
		deps.EmailNotifier,
		deps.Config.NotifierTimeout,
		deps.Now,
	)
	if err = consumer.Consume(); err != nil {
		deps.Logger.Error(
			context.Background(),
			"Could not start RabbitMQ consuming.",
			dl.Entry("err", err),
			dl.Entry("queue", queue),
		)
		panic(err)
	}

	deps.Logger.Info(context.Background(), "Consumer has started.", dl.Entry("queue", queue))
	return func() { rabbitmqChannel.Close() }
}

func InitConsumers(deps *deps.Deps) func() {
	shutdownPasswordResetNotificationConsumer := initPasswordResetNotificationConsumer(deps)

	return func() {
		shutdownPasswordResetNotificationConsumer()
	}
}
