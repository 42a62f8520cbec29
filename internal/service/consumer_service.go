package service

import (
	"context"

	"wiki-chatbot-be/internal/pkg/logger"
	"wiki-chatbot-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

// IConsumerService drains the in-process chat event bus.
type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	forwarder  events.Publisher
	logger     logger.ILogger
}

// NewConsumerService logs every chat event to the event log and forwards it
// to forwarder (NATS) when one is configured.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	forwarder events.Publisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		forwarder:  forwarder,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	event, err := events.Unmarshal(msg.Payload)
	if err != nil {
		cs.logger.Error("ChatEvents", "Failed to unmarshal event", map[string]interface{}{
			"error":      err.Error(),
			"message_id": msg.UUID,
		})
		// Malformed messages would never succeed.
		msg.Ack()
		return
	}

	details := map[string]interface{}{
		"event_type":  event.EventType(),
		"occurred_at": event.Timestamp(),
	}
	for k, v := range event.Payload() {
		details[k] = v
	}

	if event.EventType() == events.ChatHistorySaveFailed || event.EventType() == events.ChatUpstreamFailed {
		cs.logger.Warn("ChatEvents", event.EventType(), details)
	} else {
		cs.logger.Info("ChatEvents", event.EventType(), details)
	}

	if cs.forwarder != nil {
		if err := cs.forwarder.Publish(ctx, event); err != nil {
			// NATS is best effort; the event is already in the local log.
			cs.logger.Warn("ChatEvents", "Failed to forward event to NATS", map[string]interface{}{
				"error":      err.Error(),
				"event_type": event.EventType(),
			})
		}
	}

	msg.Ack()
}
