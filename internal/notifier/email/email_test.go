package email

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Fredev01/water-quality-alert-engine/internal/model"
)

func testRecord() *model.NotificationRecord {
	return &model.NotificationRecord{
		ID:        "n-1",
		Title:     "Dangerous water quality",
		Body:      "Water quality on meter meter-1 has stayed at DANGEROUS level across consecutive readings.",
		UserID:    "user-1",
		Timestamp: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestNewSender(t *testing.T) {
	sender := NewSender("re_test_key", "alerts@example.com")

	if sender == nil {
		t.Fatal("NewSender() returned nil")
	}
	if sender.client == nil {
		t.Error("NewSender() client should not be nil when an API key is given")
	}
	if sender.from != "alerts@example.com" {
		t.Errorf("NewSender() from = %v, want alerts@example.com", sender.from)
	}
}

func TestNewSender_NoAPIKey(t *testing.T) {
	sender := NewSender("", "alerts@example.com")

	if sender == nil {
		t.Fatal("NewSender() returned nil")
	}
	if sender.client != nil {
		t.Error("NewSender() client should be nil without an API key")
	}
}

func TestSender_Type(t *testing.T) {
	sender := NewSender("re_test_key", "alerts@example.com")

	if sender.Type() != "email" {
		t.Errorf("Type() = %v, want email", sender.Type())
	}
}

func TestSender_Send_NotConfigured(t *testing.T) {
	sender := NewSender("", "alerts@example.com")

	err := sender.Send(context.Background(), "owner@example.com", testRecord())
	if err == nil {
		t.Fatal("Send() error = nil, want error when sender is not configured")
	}
	if !strings.Contains(err.Error(), "not configured") {
		t.Errorf("Send() error = %v, want a not-configured error", err)
	}
}

func TestSender_Send_EmptyRecipient(t *testing.T) {
	sender := NewSender("re_test_key", "alerts@example.com")

	err := sender.Send(context.Background(), "", testRecord())
	if err == nil {
		t.Fatal("Send() error = nil, want error for empty recipient")
	}
	if !strings.Contains(err.Error(), "email recipient is required") {
		t.Errorf("Send() error = %v, want a recipient-required error", err)
	}
}
