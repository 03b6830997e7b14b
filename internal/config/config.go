// Package config provides configuration parsing and validation for the
// alert engine.
package config

import (
	"fmt"
	"time"
)

// Config holds all configuration parameters for the alert engine.
type Config struct {
	KafkaBrokers    string
	ReadingsTopic   string
	ConsumerGroupID string
	RedisAddr       string
	PostgresDSN     string

	NotifyThreshold  int64
	DailyCapTimezone string
	DispatchTimeout  time.Duration

	PushWebhookURL string
	ResendAPIKey   string
	AlertEmailFrom string
	AlertEmailTo   string

	MetricsReportInterval time.Duration
}

// Validate checks that all required configuration fields are set and have
// valid values. Returns an error if validation fails, nil otherwise.
func (c *Config) Validate() error {
	if c.KafkaBrokers == "" {
		return fmt.Errorf("kafka-brokers cannot be empty")
	}
	if c.ReadingsTopic == "" {
		return fmt.Errorf("readings-topic cannot be empty")
	}
	if c.ConsumerGroupID == "" {
		return fmt.Errorf("consumer-group-id cannot be empty")
	}
	if c.RedisAddr == "" {
		return fmt.Errorf("redis-addr cannot be empty")
	}
	if c.PostgresDSN == "" {
		return fmt.Errorf("postgres-dsn cannot be empty")
	}
	if c.NotifyThreshold <= 0 {
		return fmt.Errorf("notify-threshold must be > 0")
	}
	if _, err := time.LoadLocation(c.DailyCapTimezone); err != nil {
		return fmt.Errorf("invalid daily-cap-timezone: %w", err)
	}
	if c.DispatchTimeout <= 0 {
		return fmt.Errorf("dispatch-timeout must be > 0")
	}
	if c.PushWebhookURL == "" && c.ResendAPIKey == "" {
		return fmt.Errorf("at least one delivery channel must be configured (push-webhook-url or resend-api-key)")
	}
	if c.ResendAPIKey != "" {
		if c.AlertEmailFrom == "" {
			return fmt.Errorf("alert-email-from cannot be empty when the email channel is enabled")
		}
		if c.AlertEmailTo == "" {
			return fmt.Errorf("alert-email-to cannot be empty when the email channel is enabled")
		}
	}
	if c.MetricsReportInterval <= 0 {
		return fmt.Errorf("metrics-report-interval must be > 0")
	}
	return nil
}
