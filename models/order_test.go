package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderHappyPath(t *testing.T) {
	o := &Order{Status: OrderPending}
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, o.Transition(OrderPaid, t0))
	assert.True(t, o.IsPaid)
	require.NotNil(t, o.PaidAt)
	assert.Equal(t, t0, *o.PaidAt)

	require.NoError(t, o.Transition(OrderShipped, t0.Add(time.Hour)))
	assert.True(t, o.IsShipped)
	assert.False(t, o.IsDelivered)

	require.NoError(t, o.Transition(OrderDelivered, t0.Add(48*time.Hour)))
	assert.True(t, o.IsDelivered)
	assert.Equal(t, t0.Add(48*time.Hour), *o.DeliveredAt)
	assert.Equal(t, OrderDelivered, o.Status)
}

func TestOrderRejectsInvalidTransitions(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
	}{
		{OrderPending, OrderDelivered},
		{OrderPending, OrderShipped},
		{OrderPaid, OrderPaid},
		{OrderPaid, OrderCancelled},
		{OrderShipped, OrderPending},
		{OrderDelivered, OrderShipped},
		{OrderCancelled, OrderPaid},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			o := &Order{Status: tt.from}
			err := o.Transition(tt.to, time.Now())
			assert.ErrorIs(t, err, ErrInvalidTransition)
			assert.Equal(t, tt.from, o.Status)
			assert.False(t, o.IsDelivered && !o.IsPaid)
		})
	}
}

func TestCancelStampsTime(t *testing.T) {
	o := &Order{Status: OrderPending}
	now := time.Now()
	require.NoError(t, o.Transition(OrderCancelled, now))
	require.NotNil(t, o.CancelledAt)
	assert.False(t, o.IsPaid)
}

func TestShippingAddressIsEmpty(t *testing.T) {
	assert.True(t, ShippingAddress{}.IsEmpty())
	assert.False(t, ShippingAddress{City: "Izmir"}.IsEmpty())
}
