package eventbus

import (
	"context"
	"encoding/json"
	"time"

	"go-linkstats/internal/event"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// LinkEventsTopic carries every link event.
const LinkEventsTopic = "link.events"

// EventBus publishes link events on an in-process watermill channel.
type EventBus struct {
	pubsub *gochannel.GoChannel
	logger watermill.LoggerAdapter
}

func NewEventBus(logger watermill.LoggerAdapter) *EventBus {
	pubsub := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer: 256,
			Persistent:          false,
		},
		logger,
	)

	return &EventBus{
		pubsub: pubsub,
		logger: logger,
	}
}

func (b *EventBus) Publisher() message.Publisher {
	return b.pubsub
}

func (b *EventBus) Subscriber() message.Subscriber {
	return b.pubsub
}

// Publish serializes e into an envelope and publishes it on LinkEventsTopic.
func (b *EventBus) Publish(_ context.Context, e event.Event) error {
	msg, err := EventToMessage(e)
	if err != nil {
		return err
	}
	return b.pubsub.Publish(LinkEventsTopic, msg)
}

func (b *EventBus) Close() error {
	return b.pubsub.Close()
}

// EventEnvelope is the wire form of an event.
type EventEnvelope struct {
	EventID    string          `json:"event_id"`
	EventName  string          `json:"event_name"`
	Key        string          `json:"key"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

func EventToMessage(e event.Event) (*message.Message, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(EventEnvelope{
		EventID:    e.EventID(),
		EventName:  e.EventName(),
		Key:        e.AggregateID(),
		OccurredAt: e.OccurredAt(),
		Payload:    payload,
	})
	if err != nil {
		return nil, err
	}

	msg := message.NewMessage(e.EventID(), data)
	msg.Metadata.Set("event_name", e.EventName())
	msg.Metadata.Set("key", e.AggregateID())
	return msg, nil
}

func MessageToEnvelope(msg *message.Message) (*EventEnvelope, error) {
	var envelope EventEnvelope
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		return nil, err
	}
	return &envelope, nil
}
