package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
)

// NATSNotifier publishes run events to a NATS subject as JSON.
type NATSNotifier struct {
	conn    *nats.Conn
	subject string
}

// NewNATSNotifier connects to a NATS server and returns a notifier
// publishing to the given subject.
func NewNATSNotifier(url, subject string) (*NATSNotifier, error) {
	if subject == "" {
		return nil, fmt.Errorf("notification subject is required")
	}
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	slog.Info("NATS notifier initialized", "url", url, "subject", subject)
	return &NATSNotifier{conn: conn, subject: subject}, nil
}

func (n *NATSNotifier) RunStarted(ctx context.Context, event RunEvent) {
	n.publish(n.subject+".started", event)
}

func (n *NATSNotifier) RunFinished(ctx context.Context, event RunEvent) {
	n.publish(n.subject+".finished", event)
}

// publish marshals and sends one event. Failures are logged and dropped;
// notifications are cosmetic and never fail a run.
func (n *NATSNotifier) publish(subject string, event RunEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Warn("Failed to marshal run event", "error", err)
		return
	}
	if err := n.conn.Publish(subject, payload); err != nil {
		slog.Warn("Failed to publish run event", "subject", subject, "error", err)
	}
}

func (n *NATSNotifier) Close() error {
	n.conn.Close()
	return nil
}
