package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/customer-data-service/internal/config"
	"github.com/spec-kit/customer-data-service/internal/domain"
	"github.com/spec-kit/customer-data-service/internal/events"
)

type fakePublisher struct {
	enabled  bool
	err      error
	channels []string
	payloads [][]byte
}

func (p *fakePublisher) Enabled() bool { return p.enabled }

func (p *fakePublisher) Publish(_ context.Context, channel string, payload []byte) error {
	p.channels = append(p.channels, channel)
	p.payloads = append(p.payloads, payload)
	return p.err
}

func TestNotificationServiceForwardsEvents(t *testing.T) {
	pub := &fakePublisher{enabled: true}
	svc := NewNotificationService(pub, zap.NewNop(), config.RedisConfig{EventsChannel: "events"})

	err := svc.Handle(context.Background(), events.Event{
		ID:        "evt-1",
		Type:      events.EventTicketCreated,
		AccountID: 7,
		Payload:   events.TicketCreatedPayload{Ticket: domain.Ticket{TicketID: 9, AccountID: 7}},
	})
	require.NoError(t, err)
	require.Len(t, pub.payloads, 1)
	assert.Equal(t, "events", pub.channels[0])

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(pub.payloads[0], &decoded))
	assert.Equal(t, "evt-1", decoded["id"])
	assert.Equal(t, string(events.EventTicketCreated), decoded["type"])
}

func TestNotificationServiceSkipsWhenDisabled(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewNotificationService(pub, zap.NewNop(), config.RedisConfig{EventsChannel: "events"})

	require.NoError(t, svc.Handle(context.Background(), events.Event{Type: events.EventCustomerUpdated}))
	assert.Empty(t, pub.payloads)

	nilPublisher := NewNotificationService(nil, zap.NewNop(), config.RedisConfig{})
	assert.NoError(t, nilPublisher.Handle(context.Background(), events.Event{Type: events.EventCustomerUpdated}))
}

func TestNotificationServiceIgnoresUnknownEvents(t *testing.T) {
	pub := &fakePublisher{enabled: true}
	svc := NewNotificationService(pub, zap.NewNop(), config.RedisConfig{})

	require.NoError(t, svc.Handle(context.Background(), events.Event{Type: "account_deleted"}))
	assert.Empty(t, pub.payloads)
}

func TestNotificationServiceWrapsPublishErrors(t *testing.T) {
	pub := &fakePublisher{enabled: true, err: errors.New("connection refused")}
	svc := NewNotificationService(pub, zap.NewNop(), config.RedisConfig{EventsChannel: "events"})

	err := svc.Handle(context.Background(), events.Event{Type: events.EventCustomerUpdated})
	require.Error(t, err)
	assert.Equal(t, "publish customer_updated event: connection refused", err.Error())
}
