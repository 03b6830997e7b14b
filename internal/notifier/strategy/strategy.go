// Package strategy defines the interface for notification delivery channels.
package strategy

import (
	"context"

	"github.com/Fredev01/water-quality-alert-engine/internal/model"
)

// ChannelSender is the interface every delivery channel implements.
type ChannelSender interface {
	// Send delivers the notification to the given endpoint value.
	// The endpoint value format depends on the channel type:
	//   - webhook: push-relay URL
	//   - email: recipient address(es) as comma-separated string
	Send(ctx context.Context, endpointValue string, record *model.NotificationRecord) error

	// Type returns the channel type this sender handles
	// (e.g., "webhook", "email").
	Type() string
}

// Registry manages delivery channel strategies.
type Registry struct {
	senders map[string]ChannelSender
}

// NewRegistry creates a new channel registry.
func NewRegistry() *Registry {
	return &Registry{
		senders: make(map[string]ChannelSender),
	}
}

// Register registers a channel sender.
func (r *Registry) Register(sender ChannelSender) {
	r.senders[sender.Type()] = sender
}

// Get retrieves a channel sender by type.
func (r *Registry) Get(channelType string) (ChannelSender, bool) {
	sender, ok := r.senders[channelType]
	return sender, ok
}

// List returns all registered channel types.
func (r *Registry) List() []string {
	types := make([]string, 0, len(r.senders))
	for t := range r.senders {
		types = append(types, t)
	}
	return types
}
