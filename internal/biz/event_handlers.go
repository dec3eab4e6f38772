package biz

import (
	"context"
	"encoding/json"

	"go-linkstats/internal/event"
	"go-linkstats/internal/infra/eventbus"

	"github.com/go-kratos/kratos/v2/log"
)

// EventPublisher hands committed link events to subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, e event.Event) error
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, event.Event) error { return nil }

// publish never fails the caller: events describe writes that already committed.
func publish(ctx context.Context, pub EventPublisher, logger *log.Helper, e event.Event) {
	if err := pub.Publish(ctx, e); err != nil {
		logger.WithContext(ctx).Warnf("publish %s for %s: %v", e.EventName(), e.AggregateID(), err)
	}
}

var _ eventbus.EventHandler = (*LoggingEventHandler)(nil)

// LoggingEventHandler writes one log line per event.
type LoggingEventHandler struct {
	log       *log.Helper
	eventName string
}

func NewLoggingEventHandler(logger log.Logger, eventName string) *LoggingEventHandler {
	return &LoggingEventHandler{
		log:       log.NewHelper(logger),
		eventName: eventName,
	}
}

func (h *LoggingEventHandler) HandlerName() string {
	return "logging_handler_" + h.eventName
}

func (h *LoggingEventHandler) EventName() string {
	return h.eventName
}

func (h *LoggingEventHandler) Handle(ctx context.Context, envelope *eventbus.EventEnvelope) error {
	logger := h.log.WithContext(ctx)

	switch envelope.EventName {
	case event.NameLinkCreated:
		var evt event.LinkCreated
		if err := json.Unmarshal(envelope.Payload, &evt); err != nil {
			return err
		}
		logger.Infof("[Event] link created: %s -> %s (owner: %s)", evt.Key, evt.OriginURL, evt.OwnerID)
	case event.NameLinkVisited:
		var evt event.LinkVisited
		if err := json.Unmarshal(envelope.Payload, &evt); err != nil {
			return err
		}
		logger.Infof("[Event] link visited: %s (count: %d, device: %s, country: %s)", evt.Key, evt.ClickCount, evt.Device, evt.Country)
	case event.NameLinkDeleted:
		var evt event.LinkDeleted
		if err := json.Unmarshal(envelope.Payload, &evt); err != nil {
			return err
		}
		logger.Infof("[Event] link deleted: %s (id: %d)", evt.Key, evt.LinkID)
	case event.NameMilestoneReached:
		var evt event.ClickMilestoneReached
		if err := json.Unmarshal(envelope.Payload, &evt); err != nil {
			return err
		}
		logger.Infof("[Event] milestone reached: %s hit %d clicks", evt.Key, evt.Milestone)
	default:
		logger.Infof("[Event] %s: %s", envelope.EventName, envelope.Key)
	}
	return nil
}

// RegisterEventHandlers subscribes a logging handler to every link event.
func RegisterEventHandlers(router *eventbus.Router, logger log.Logger) {
	for _, name := range event.Names {
		router.AddHandler(NewLoggingEventHandler(logger, name))
	}
}
