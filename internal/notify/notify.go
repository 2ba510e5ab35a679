// Package notify delivers fire-and-forget run status notifications.
// Delivery is best-effort; a failed notification never affects a run.
package notify

import (
	"context"
	"log/slog"
	"time"
)

// RunEvent describes a publish run for downstream consumers.
type RunEvent struct {
	RunID       string    `json:"run_id"`
	OutputRoot  string    `json:"output_root"`
	Pages       int       `json:"pages"`
	Attachments int       `json:"attachments"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	DurationMS  int64     `json:"duration_ms"`
}

// Notifier emits run status events.
type Notifier interface {
	RunStarted(ctx context.Context, event RunEvent)
	RunFinished(ctx context.Context, event RunEvent)
	Close() error
}

// NoopNotifier drops all events.
type NoopNotifier struct{}

// NewNoopNotifier returns a notifier that drops all events.
func NewNoopNotifier() *NoopNotifier { return &NoopNotifier{} }

func (n *NoopNotifier) RunStarted(context.Context, RunEvent)  {}
func (n *NoopNotifier) RunFinished(context.Context, RunEvent) {}
func (n *NoopNotifier) Close() error                          { return nil }

// LogNotifier writes events to the structured log.
type LogNotifier struct{}

// NewLogNotifier returns a notifier backed by slog.
func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (n *LogNotifier) RunStarted(ctx context.Context, event RunEvent) {
	slog.Info("Publish started", "run_id", event.RunID, "output", event.OutputRoot)
}

func (n *LogNotifier) RunFinished(ctx context.Context, event RunEvent) {
	if event.Status == "failed" {
		slog.Error("Publish failed", "run_id", event.RunID, "error", event.Error,
			"duration_ms", event.DurationMS)
		return
	}
	slog.Info("Publish finished", "run_id", event.RunID,
		"pages", event.Pages, "attachments", event.Attachments,
		"duration_ms", event.DurationMS)
}

func (n *LogNotifier) Close() error { return nil }
