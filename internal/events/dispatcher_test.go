package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusRunsEveryHandler(t *testing.T) {
	d := NewInMemoryDispatcher()

	var got []string
	d.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		got = append(got, "first:"+e.ID)
		return errors.New("first failed")
	})
	d.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		got = append(got, "second:"+e.ID)
		return nil
	})
	d.Subscribe(EventCustomerUpdated, func(context.Context, Event) error {
		got = append(got, "unexpected")
		return nil
	})

	err := d.Publish(context.Background(), Event{ID: "e1", Type: EventTicketCreated})
	assert.EqualError(t, err, "ticket_created handler 0: first failed")
	assert.Equal(t, []string{"first:e1", "second:e1"}, got)

	assert.NoError(t, d.Publish(context.Background(), Event{ID: "e2", Type: EventType("other")}))
}

func TestBusContainsHandlerPanics(t *testing.T) {
	d := NewInMemoryDispatcher()
	ran := false
	d.Subscribe(EventCustomerUpdated, func(context.Context, Event) error {
		panic("listener bug")
	})
	d.Subscribe(EventCustomerUpdated, func(context.Context, Event) error {
		ran = true
		return nil
	})

	var err error
	require.NotPanics(t, func() {
		err = d.Publish(context.Background(), Event{Type: EventCustomerUpdated})
	})
	assert.EqualError(t, err, "customer_updated handler 0: panic: listener bug")
	assert.True(t, ran)
}

func TestBusSubscribeDuringPublish(t *testing.T) {
	d := NewInMemoryDispatcher()
	calls := 0
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		calls++
		d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
			calls++
			return nil
		})
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketCreated}))
	assert.Equal(t, 1, calls)
}
