// Package sender holds the provider-facing delivery collaborators. The hub
// never talks to a provider except through the ChannelSender interface.
package sender

import (
	"context"
	"fmt"

	"onboarding-hub/internal/models"
)

// Receipt is the provider's handle for a hand-off, when it returns one.
type Receipt struct {
	ProviderMessageID string `json:"providerMessageId,omitempty"`
}

// ChannelSender hands a rendered message to one delivery provider. A nil
// error means the provider accepted the message, not that it was delivered;
// delivery progress arrives later through webhooks.
type ChannelSender interface {
	Send(ctx context.Context, destination string, content models.Content) (Receipt, error)
}

// Registry maps channel types to their senders.
type Registry struct {
	senders map[models.ChannelType]ChannelSender
}

func NewRegistry() *Registry {
	return &Registry{senders: make(map[models.ChannelType]ChannelSender)}
}

func (r *Registry) Register(ct models.ChannelType, s ChannelSender) {
	r.senders[ct] = s
}

func (r *Registry) For(ct models.ChannelType) (ChannelSender, error) {
	s, ok := r.senders[ct]
	if !ok {
		return nil, fmt.Errorf("no sender registered for channel type %q", ct)
	}
	return s, nil
}
