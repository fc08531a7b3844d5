package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
)

const defaultPublishTimeout = 10 * time.Second

// Device event types surfaced on the device events topic.
const (
	DeviceEventRegistered = "device.registered"
	DeviceEventOnline     = "device.online"
	DeviceEventOffline    = "device.offline"
	DeviceEventAssigned   = "device.playlist_assigned"
	DeviceEventDeleted    = "device.deleted"
)

// DeviceEvent is the envelope published for device lifecycle changes.
type DeviceEvent struct {
	EventID    string         `json:"event_id"`
	Type       string         `json:"type"`
	DeviceID   string         `json:"device_id"`
	OccurredAt time.Time      `json:"occurred_at"`
	Data       map[string]any `json:"data,omitempty"`
}

// DeviceEventPublisher is the narrow surface the device service publishes through.
type DeviceEventPublisher interface {
	PublishDeviceEvent(ctx context.Context, event DeviceEvent) error
}

// TopicPublisher publishes device events on a Pub/Sub topic.
type TopicPublisher struct {
	pub *gcppubsub.Publisher
}

// NewTopicPublisher wraps a publisher handle; a nil handle is an error at publish time.
func NewTopicPublisher(pub *gcppubsub.Publisher) *TopicPublisher {
	return &TopicPublisher{pub: pub}
}

// PublishDeviceEvent marshals the event and blocks until the server acks it.
func (p *TopicPublisher) PublishDeviceEvent(ctx context.Context, event DeviceEvent) error {
	if p == nil || p.pub == nil {
		return errors.New("pubsub publisher not initialized")
	}
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling device event: %w", err)
	}

	msg := &gcppubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"event_type": event.Type,
			"device_id":  event.DeviceID,
		},
	}

	publishCtx, cancel := context.WithTimeout(ctx, defaultPublishTimeout)
	defer cancel()
	result := p.pub.Publish(publishCtx, msg)
	if result == nil {
		return errors.New("publisher returned nil result")
	}
	if _, err := result.Get(publishCtx); err != nil {
		return fmt.Errorf("publishing device event: %w", err)
	}
	return nil
}

// NopPublisher drops events; used when pubsub is disabled by config.
type NopPublisher struct{}

func (NopPublisher) PublishDeviceEvent(context.Context, DeviceEvent) error { return nil }
