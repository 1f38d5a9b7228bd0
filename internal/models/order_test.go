package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusValid(t *testing.T) {
	for _, s := range []OrderStatus{OrderPending, OrderConfirmed, OrderShipped, OrderDelivered, OrderCancelled, OrderReturned} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, OrderStatus("pending").Valid())
	assert.False(t, OrderStatus("").Valid())

	for _, s := range []PaymentStatus{PaymentUnpaid, PaymentPaid, PaymentRefunded} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, PaymentStatus("VOID").Valid())
}

func TestApplyKeepsSystemFields(t *testing.T) {
	created := time.Date(2025, 3, 1, 9, 30, 0, 0, StoreZone)
	o := &Order{
		ID:            "ORD-20250301-0001",
		CustomerName:  "Wang",
		Items:         []LineItem{{ProductID: "cake001", Name: "Strawberry cake", Quantity: 2, Price: 150}},
		CreatedAt:     created,
		Status:        OrderShipped,
		PaymentStatus: PaymentPaid,
	}

	o.Apply(OrderFields{
		CustomerName: "Lin",
		Phone:        "0912345678",
		Email:        "lin@example.com",
		Items:        []LineItem{{ProductID: "pudding002", Name: "Caramel pudding", Quantity: 1, Price: 80}},
	})

	assert.Equal(t, "ORD-20250301-0001", o.ID)
	assert.Equal(t, created, o.CreatedAt)
	assert.Equal(t, OrderShipped, o.Status)
	assert.Equal(t, PaymentPaid, o.PaymentStatus)
	assert.Equal(t, "Lin", o.CustomerName)
	require.Len(t, o.Items, 1)
	assert.Equal(t, "pudding002", o.Items[0].ProductID)
}

func TestCloneIsDeep(t *testing.T) {
	o := &Order{ID: "ORD-20250301-0001", Items: []LineItem{{ProductID: "a", Name: "A", Quantity: 1}}}
	c := o.Clone()
	c.Items[0].Quantity = 9
	assert.Equal(t, 1, o.Items[0].Quantity)
}

func TestOrderJSONUsesItemKey(t *testing.T) {
	o := Order{ID: "ORD-20250301-0001", Items: []LineItem{{ProductID: "a", Name: "A", Quantity: 1, Price: 10}}}
	b, err := json.Marshal(o)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Contains(t, raw, "item")
	assert.Contains(t, raw, "payment_status")
}

func TestAfterFindMovesIntoStoreZone(t *testing.T) {
	o := &Order{CreatedAt: time.Date(2025, 3, 1, 1, 0, 0, 0, time.UTC)}
	require.NoError(t, o.AfterFind(nil))
	assert.Equal(t, 9, o.CreatedAt.Hour())
	assert.True(t, o.CreatedAt.Equal(time.Date(2025, 3, 1, 1, 0, 0, 0, time.UTC)))
}
