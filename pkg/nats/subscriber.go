package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"math-agent-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// EventHandler is a function that processes an event.
type EventHandler func(ctx context.Context, event events.Event) error

// Subscriber reads events back from the stream with a durable consumer.
type Subscriber struct {
	nc *nats.Conn
	js jetstream.JetStream
	cc jetstream.ConsumeContext
}

func NewSubscriber(url string) (*Subscriber, error) {
	nc, err := connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return &Subscriber{nc: nc, js: js}, nil
}

// Subscribe registers handler for eventType ("" or ">" means every event).
// A handler error or an undecodable message is Nak'ed for redelivery.
func (s *Subscriber) Subscribe(ctx context.Context, eventType string, durableName string, handler EventHandler) error {
	if eventType == "" {
		eventType = ">"
	}

	consumer, err := s.js.CreateOrUpdateConsumer(ctx, StreamName, jetstream.ConsumerConfig{
		Durable:       durableName,
		FilterSubject: Subject(eventType),
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		var env envelope
		if err := json.Unmarshal(msg.Data(), &env); err != nil {
			_ = msg.Term()
			return
		}

		event := events.BaseEvent{
			Type:       env.Type,
			Data:       env.Data,
			OccurredAt: env.OccurredAt,
		}

		if err := handler(ctx, event); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	s.cc = cc
	return nil
}

func (s *Subscriber) Close() {
	if s.cc != nil {
		s.cc.Stop()
	}
	if s.nc != nil {
		s.nc.Close()
	}
}
