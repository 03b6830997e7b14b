// Package notifier coordinates multi-channel notification delivery.
// It routes each configured endpoint to the matching channel strategy and
// retries transient failures. Delivery is at-most-once, best-effort.
package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Fredev01/water-quality-alert-engine/internal/model"
	"github.com/Fredev01/water-quality-alert-engine/internal/notifier/retry"
	"github.com/Fredev01/water-quality-alert-engine/internal/notifier/strategy"
)

// Endpoint is one configured delivery target.
type Endpoint struct {
	Type  string // channel type: "webhook" or "email"
	Value string // channel-specific endpoint value
}

// Notifier fans a notification out over the configured endpoints.
type Notifier struct {
	registry  *strategy.Registry
	endpoints []Endpoint
}

// NewNotifier creates a notifier delivering to the given endpoints through
// the registered channel strategies.
func NewNotifier(registry *strategy.Registry, endpoints []Endpoint) *Notifier {
	return &Notifier{
		registry:  registry,
		endpoints: endpoints,
	}
}

// Send delivers the notification to every configured endpoint.
// Transient per-endpoint failures are retried with exponential backoff.
// An error is returned only when no endpoint could be reached at all;
// partial failure is logged and treated as success.
func (n *Notifier) Send(ctx context.Context, record *model.NotificationRecord) error {
	if len(n.endpoints) == 0 {
		return fmt.Errorf("no delivery endpoints configured")
	}

	var failures []string
	successful := 0

	for _, endpoint := range n.endpoints {
		sender, ok := n.registry.Get(endpoint.Type)
		if !ok {
			slog.Warn("Unknown endpoint type, skipping",
				"type", endpoint.Type,
				"user_id", record.UserID,
			)
			continue
		}

		operation := fmt.Sprintf("send_%s", endpoint.Type)
		err := retry.WithRetry(ctx, retry.DefaultConfig(), operation, func() error {
			return sender.Send(ctx, endpoint.Value, record)
		})
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s (%s): %s", endpoint.Type, endpoint.Value, err.Error()))
			continue
		}
		successful++
	}

	if len(failures) > 0 && successful == 0 {
		return fmt.Errorf("all sends failed: %s", strings.Join(failures, "; "))
	}

	if len(failures) > 0 {
		slog.Warn("Some sends failed",
			"user_id", record.UserID,
			"successful", successful,
			"failed", len(failures),
			"errors", strings.Join(failures, "; "),
		)
	}

	return nil
}
