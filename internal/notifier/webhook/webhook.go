// Package webhook delivers notifications to a push-relay endpoint via HTTP
// POST. The relay owns device routing; this channel only hands it the
// rendered notification.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/Fredev01/water-quality-alert-engine/internal/model"
)

// Sender implements push delivery via HTTP POST.
type Sender struct {
	httpClient *http.Client
}

// NewSender creates a new webhook sender.
func NewSender() *Sender {
	return &Sender{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Type returns the channel type this sender handles.
func (s *Sender) Type() string {
	return "webhook"
}

// payload is the JSON body posted to the relay.
type payload struct {
	NotificationID string `json:"notification_id,omitempty"`
	UserID         string `json:"user_id"`
	Title          string `json:"title"`
	Body           string `json:"body"`
	SentAt         string `json:"sent_at"`
}

// isValidURL reports whether the value is an absolute HTTP or HTTPS URL.
func isValidURL(value string) bool {
	parsed, err := url.Parse(value)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

// Send posts the notification to the relay URL.
func (s *Sender) Send(ctx context.Context, endpointValue string, record *model.NotificationRecord) error {
	if endpointValue == "" {
		return fmt.Errorf("webhook URL is required")
	}
	if !isValidURL(endpointValue) {
		return fmt.Errorf("invalid webhook URL: %q (must be a valid HTTP/HTTPS URL)", endpointValue)
	}

	body := payload{
		NotificationID: record.ID,
		UserID:         record.UserID,
		Title:          record.Title,
		Body:           record.Body,
		SentAt:         record.Timestamp.UTC().Format(time.RFC3339),
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpointValue, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	slog.Info("Successfully sent webhook notification",
		"webhook_url", endpointValue,
		"user_id", record.UserID,
	)

	return nil
}
