package nats

import (
	"time"

	"github.com/nats-io/nats.go"
)

const (
	StreamName    = "MATH_AGENT_EVENTS"
	subjectPrefix = "events."
)

func connect(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("math-agent-be"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
}

// Subject maps an event type to its subject on the bus.
func Subject(eventType string) string {
	return subjectPrefix + eventType
}
