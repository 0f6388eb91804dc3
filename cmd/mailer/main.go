package main

import (
	"context"
	"os"
	"os/signal"
	"passreset/internal/app/consumers"
	"passreset/internal/app/deps"
	"passreset/internal/core/domain/logging"
	"syscall"
)

func main() {
	deps, shutdownDeps := deps.InitMailerDeps()
	defer shutdownDeps()

	shutdownConsumers := consumers.InitConsumers(deps)
	defer shutdownConsumers()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	deps.Logger.Info(
		context.Background(),
		"Mailer has started.",
		logging.Entry("queue", deps.Config.RabbitmqQueue),
		logging.Entry("emailSender", deps.Config.EmailSender),
	)
	<-stopCh
	deps.Logger.Info(context.Background(), "Mailer is stopping.")
}
