package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/YogindraChaudhari/plantationDrive/internal/config"
	"github.com/YogindraChaudhari/plantationDrive/internal/core"
	"github.com/YogindraChaudhari/plantationDrive/pkg/messagequeue"
)

var cmdEvents = &cobra.Command{
	Use:   "events [command]",
	Short: "Inspect plant lifecycle events",
}

var eventsWatchBinding string

func init() {
	cmdEventsWatch.Flags().StringVar(&eventsWatchBinding, "binding", "plant.#", "Topic binding key.")
}

var cmdEventsWatch = &cobra.Command{
	Use:   "watch",
	Short: "Print plant events from the AMQP exchange until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("while loading configuration: %w", err)
		}
		if cfg.AMQPURL == "" {
			return errors.New("AMQP_URL is not configured")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		mq, err := messagequeue.NewRabbitMQService(messagequeue.NewRabbitMQServiceConfig{
			URL:      cfg.AMQPURL,
			Exchange: cfg.AMQPExchange,
		}, newLogger())
		if err != nil {
			return err
		}
		defer mq.Close()

		return watchEvents(ctx, mq, eventsWatchBinding, cmd.OutOrStdout())
	},
}

func watchEvents(ctx context.Context, sub messagequeue.Subscriber, binding string, w io.Writer) error {
	return sub.Consume(ctx, binding, func(routingKey string, body []byte) {
		printEvent(w, routingKey, body)
	})
}

func printEvent(w io.Writer, routingKey string, body []byte) {
	var ev core.PlantEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		fmt.Fprintf(w, "%s\t<undecodable: %v>\n", routingKey, err)
		return
	}
	fmt.Fprintf(w, "%s\t%s\tzone=%s plant=%s key=%s\n",
		ev.At.Format("2006-01-02T15:04:05Z07:00"), routingKey, ev.Zone, ev.PlantNumber, ev.Key)
}
