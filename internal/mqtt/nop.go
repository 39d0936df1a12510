package mqtt

import (
	"github.com/sweeney/push-disco/internal/logic"
)

// NopPublisher discards everything. Used when no broker is configured so the
// box works fully offline.
type NopPublisher struct{}

// NewNopPublisher creates a NopPublisher.
func NewNopPublisher() *NopPublisher {
	return &NopPublisher{}
}

// Publish discards the event.
func (NopPublisher) Publish(logic.ShowEvent) error { return nil }

// PublishSystem discards the event.
func (NopPublisher) PublishSystem(SystemEvent) error { return nil }

// IsConnected always reports false.
func (NopPublisher) IsConnected() bool { return false }

// Close is a no-op.
func (NopPublisher) Close() error { return nil }
