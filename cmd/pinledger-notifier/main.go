package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"pinledger/internal/cli"
	"pinledger/internal/log"
	"pinledger/internal/notify"
	"pinledger/internal/worker"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	cli.LoadEnvFile()
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}
	logger := cli.SetupLogger(log.ComponentWorker, cfg.LogLevel, os.Stdout)
	logger.Info("Starting pinledger-notifier")

	if !cfg.AMQPEnabled() {
		return errors.New("AMQP_URL is required for the notifier")
	}

	var delivery notify.Notifier = notify.LogNotifier{Logger: logger.WithComponent(log.ComponentNotify)}
	if cfg.TelegramEnabled() {
		tg, err := notify.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			return err
		}
		delivery = notify.Multi{delivery, tg}
		logger.Info("Telegram delivery enabled", "chat_id", cfg.TelegramChatID)
	} else {
		logger.Info("Telegram disabled - notifications are only logged")
	}

	client, err := cli.ConnectAMQP(logger, cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := cli.SignalContext(context.Background(), logger)
	defer cancel()

	notifications := worker.NewNotificationWorker(delivery, logger)
	events := worker.NewEventWorker(logger.WithComponent("events"))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return ignoreCanceled(client.Consume(gctx, cfg.AMQPNotifyQueue, notifications.HandleNotification))
	})
	g.Go(func() error {
		return ignoreCanceled(client.Consume(gctx, cfg.AMQPEventsQueue, events.HandleExpenseEvent))
	})

	if err := g.Wait(); err != nil {
		logger.Error("Notifier stopped with error", log.FieldError, err)
		return err
	}
	logger.Info("Notifier shutdown complete")
	return nil
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
