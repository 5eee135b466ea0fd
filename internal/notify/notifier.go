package notify

import (
	"context"
	"log/slog"
)

// Intent asks the surrounding delivery infrastructure to notify an actor.
// Delivery and formatting are out of scope here; the engine only emits the
// intent, fire-and-forget.
type Intent struct {
	RecipientID string `json:"recipient_id"`
	DemandID    string `json:"demand_id"`
	Subject     string `json:"subject"`
	Message     string `json:"message"`
}

// Notifier is the fire-and-forget notification sink.
//
// Implementations must not block critical flows: a failed send is logged and
// dropped, never propagated into the write path that triggered it.
type Notifier interface {
	Send(ctx context.Context, intent Intent) error
}

// SlogNotifier records intents to the structured log. It stands in for a real
// delivery channel in local environments and tests.
type SlogNotifier struct {
	Log *slog.Logger
}

func (n SlogNotifier) Send(ctx context.Context, intent Intent) error {
	l := n.Log
	if l == nil {
		l = slog.Default()
	}
	l.InfoContext(ctx, "notification intent",
		"recipient_id", intent.RecipientID,
		"demand_id", intent.DemandID,
		"subject", intent.Subject,
	)
	return nil
}

// Noop drops all intents. Useful in tests that don't assert on notifications.
type Noop struct{}

func (Noop) Send(ctx context.Context, intent Intent) error { return nil }
