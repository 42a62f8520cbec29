package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"wiki-chatbot-be/internal/config"
	"wiki-chatbot-be/pkg/events"
	pktNats "wiki-chatbot-be/pkg/nats"

	"github.com/fatih/color"
)

// event_tail prints chat events from JetStream as they arrive. The stream is
// created by the REST server on first connect.
func main() {
	subject := flag.String("subject", "chat.>", "subject filter")
	durable := flag.String("durable", "", "durable consumer name (empty tails new events only)")
	flag.Parse()

	cfg := config.Load()
	if cfg.App.NatsURL == "" {
		log.Fatal("Error: NATS_URL is not set")
	}

	sub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Fatalf("Error: failed to connect to NATS: %v", err)
	}
	defer sub.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cc, err := sub.Subscribe(ctx, *subject, *durable, func(ctx context.Context, event events.Event) error {
		payload, _ := json.Marshal(event.Payload())
		line := fmt.Sprintf("%s  %-28s %s", event.Timestamp().Format("15:04:05.000"), event.EventType(), payload)
		switch event.EventType() {
		case events.ChatHistorySaveFailed, events.ChatUpstreamFailed:
			color.Red("%s", line)
		case events.ChatSessionDeleted:
			color.Yellow("%s", line)
		default:
			color.Green("%s", line)
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	defer cc.Stop()

	color.Cyan("Tailing %s on %s (Ctrl+C to stop)", *subject, cfg.App.NatsURL)
	<-ctx.Done()
}
