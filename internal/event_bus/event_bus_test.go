package event_bus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_Publish(t *testing.T) {
	t.Run("should deliver typed payloads in subscription order", func(t *testing.T) {
		// given
		bus := NewEventBus()
		var received []string
		SubscribeTyped(bus, ListAllocatedEvent, func(e EventT[ListAllocated]) error {
			received = append(received, "first:"+e.Data.UserUid)
			return nil
		})
		SubscribeTyped(bus, ListAllocatedEvent, func(e EventT[ListAllocated]) error {
			received = append(received, "second:"+e.Data.UserUid)
			return nil
		})

		// when
		err := bus.Publish(NewEvent(context.Background(), ListAllocatedEvent, ListAllocated{UserUid: "u1"}))

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"first:u1", "second:u1"}, received)
	})

	t.Run("should skip handlers expecting another payload type", func(t *testing.T) {
		// given
		bus := NewEventBus()
		called := false
		SubscribeTyped(bus, ListAllocatedEvent, func(e EventT[CheckoutRequested]) error {
			called = true
			return nil
		})

		// when
		err := bus.Publish(NewEvent(context.Background(), ListAllocatedEvent, ListAllocated{}))

		// then
		assert.NoError(t, err)
		assert.False(t, called)
	})

	t.Run("should collect handler errors and recover panics", func(t *testing.T) {
		// given
		bus := NewEventBus()
		failure := errors.New("boom")
		reached := false
		bus.Subscribe(CheckoutRequestedEvent, func(e Event) error { return failure })
		bus.Subscribe(CheckoutRequestedEvent, func(e Event) error { panic("unexpected") })
		bus.Subscribe(CheckoutRequestedEvent, func(e Event) error {
			reached = true
			return nil
		})

		// when
		err := bus.Publish(NewEvent(context.Background(), CheckoutRequestedEvent, CheckoutRequested{}))

		// then
		assert.ErrorIs(t, err, failure)
		assert.Contains(t, err.Error(), "2 handler(s) failed")
		assert.True(t, reached)
	})

	t.Run("should not run handlers after unsubscribe", func(t *testing.T) {
		// given
		bus := NewEventBus()
		calls := 0
		unsubscribe := bus.Subscribe(ListAllocatedEvent, func(e Event) error {
			calls++
			return nil
		})
		unsubscribe()

		// when
		err := bus.Publish(NewEvent(context.Background(), ListAllocatedEvent, ListAllocated{}))

		// then
		assert.NoError(t, err)
		assert.Zero(t, calls)
	})

	t.Run("should refuse to publish with a cancelled context", func(t *testing.T) {
		// given
		bus := NewEventBus()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		// when
		err := bus.Publish(NewEvent(ctx, ListAllocatedEvent, ListAllocated{}))

		// then
		assert.ErrorIs(t, err, context.Canceled)
	})
}
