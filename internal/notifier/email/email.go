// Package email delivers notifications by email via the Resend API.
package email

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/resend/resend-go/v2"

	"github.com/Fredev01/water-quality-alert-engine/internal/model"
)

// Sender implements email delivery via Resend.
type Sender struct {
	client *resend.Client
	from   string
}

// NewSender creates a new email sender. An empty API key leaves the sender
// unconfigured; Send then fails with a permanent error.
func NewSender(apiKey, from string) *Sender {
	if apiKey == "" {
		slog.Warn("Resend API key not set, email channel will be unavailable")
		return &Sender{from: from}
	}
	return &Sender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

// Type returns the channel type this sender handles.
func (s *Sender) Type() string {
	return "email"
}

// Send delivers the notification to the comma-separated recipient list.
func (s *Sender) Send(ctx context.Context, endpointValue string, record *model.NotificationRecord) error {
	if s.client == nil {
		return fmt.Errorf("email channel not configured: Resend API key is required")
	}
	if endpointValue == "" {
		return fmt.Errorf("email recipient is required")
	}

	to := strings.Split(endpointValue, ",")
	for i := range to {
		to[i] = strings.TrimSpace(to[i])
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      to,
		Subject: record.Title,
		Text:    record.Body,
	}

	result, err := s.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("Resend send failed: %w", err)
	}

	slog.Info("Successfully sent email notification",
		"to", to,
		"user_id", record.UserID,
		"email_id", result.Id,
	)

	return nil
}
