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
	"time"

	"math-agent-be/internal/config"
	"math-agent-be/pkg/events"
	pktNats "math-agent-be/pkg/nats"

	"github.com/fatih/color"
)

// events_tail prints domain events as they land on the bus.
func main() {
	eventType := flag.String("type", "", "event type to follow, e.g. query.answered (default: all)")
	durable := flag.String("durable", "", "durable consumer name; empty for an ephemeral consumer")
	flag.Parse()

	cfg := config.Load()
	if cfg.App.NatsURL == "" {
		log.Fatal("Error: NATS_URL is not set")
	}

	sub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	defer sub.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	typeColor := color.New(color.FgCyan, color.Bold)
	err = sub.Subscribe(ctx, *eventType, *durable, func(ctx context.Context, event events.Event) error {
		payload, err := json.Marshal(event.Payload())
		if err != nil {
			return err
		}
		fmt.Printf("%s %s %s\n", event.Timestamp().Format(time.RFC3339), typeColor.Sprint(event.EventType()), payload)
		return nil
	})
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	log.Printf("Following %s on %s", pktNats.Subject(orAll(*eventType)), pktNats.StreamName)
	<-ctx.Done()
}

func orAll(eventType string) string {
	if eventType == "" {
		return ">"
	}
	return eventType
}
