package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/customer-data-service/internal/config"
	"github.com/spec-kit/customer-data-service/internal/events"
)

// ChannelPublisher sends raw payloads on a named channel.
type ChannelPublisher interface {
	Enabled() bool
	Publish(ctx context.Context, channel string, payload []byte) error
}

// NotificationService forwards domain events to subscribers outside the process.
type NotificationService struct {
	publisher ChannelPublisher
	logger    *zap.Logger
	channel   string
}

// NewNotificationService creates the service.
func NewNotificationService(publisher ChannelPublisher, logger *zap.Logger, cfg config.RedisConfig) *NotificationService {
	return &NotificationService{
		publisher: publisher,
		logger:    logger,
		channel:   cfg.EventsChannel,
	}
}

// EventTypes lists the events the service forwards.
func (n *NotificationService) EventTypes() []events.EventType {
	return []events.EventType{events.EventCustomerUpdated, events.EventTicketCreated}
}

// Handle logs the event and forwards it when a publisher is configured.
func (n *NotificationService) Handle(ctx context.Context, event events.Event) error {
	switch event.Type {
	case events.EventCustomerUpdated:
		n.logger.Info("CustomerUpdated", zap.Int64("account_id", event.AccountID), zap.String("event_id", event.ID))
	case events.EventTicketCreated:
		n.logger.Info("TicketCreated", zap.Int64("account_id", event.AccountID), zap.String("event_id", event.ID))
	default:
		return nil
	}
	return n.forward(ctx, event)
}

func (n *NotificationService) forward(ctx context.Context, event events.Event) error {
	if n.publisher == nil || !n.publisher.Enabled() {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.Type, err)
	}
	if err := n.publisher.Publish(ctx, n.channel, payload); err != nil {
		return fmt.Errorf("publish %s event: %w", event.Type, err)
	}
	n.logger.Debug("event forwarded",
		zap.String("channel", n.channel),
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)))
	return nil
}
