package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"potracker/internal/model"
)

func sampleOrderInput() CreateOrderInput {
	return CreateOrderInput{
		CustomerName:  "Alice",
		CustomerEmail: "a@x.com",
		Lines: []OrderLineInput{
			{ProductID: "p1", ProductName: "Widget", Quantity: 3, UnitPrice: 10.00},
			{ProductID: "p2", ProductName: "Gadget", Quantity: 2, UnitPrice: 2.50},
		},
	}
}

func TestOrderService_Create(t *testing.T) {
	ctx := context.Background()
	orders := NewOrderService(newTestDB(t))

	order, err := orders.Create(ctx, sampleOrderInput())
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, 35.00, order.TotalAmount)
	assert.Len(t, order.ConfirmationCode, 8)
	assert.Equal(t, strings.ToUpper(order.ConfirmationCode), order.ConfirmationCode)
	assert.Nil(t, order.ConfirmedAt)

	lines, err := orders.Lines(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, lines, 2)
}

func TestOrderService_Create_RequiresLines(t *testing.T) {
	orders := NewOrderService(newTestDB(t))

	_, err := orders.Create(context.Background(), CreateOrderInput{CustomerName: "Bob"})
	assert.ErrorIs(t, err, ErrNoOrderLines)
}

func TestOrderService_ConfirmByCode(t *testing.T) {
	ctx := context.Background()
	orders := NewOrderService(newTestDB(t))

	order, err := orders.Create(ctx, sampleOrderInput())
	require.NoError(t, err)

	t.Run("unknown code reports not found", func(t *testing.T) {
		_, err := orders.ConfirmByCode(ctx, "NOPE0000")
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("first redemption confirms", func(t *testing.T) {
		result, err := orders.ConfirmByCode(ctx, strings.ToLower(order.ConfirmationCode))
		require.NoError(t, err)

		assert.False(t, result.AlreadyClaimed)
		assert.Equal(t, model.OrderStatusConfirmed, result.Order.Status)
		require.NotNil(t, result.Order.ConfirmedAt)
	})

	t.Run("second redemption is already claimed with the original stamp", func(t *testing.T) {
		first, err := orders.GetByID(ctx, order.ID)
		require.NoError(t, err)
		require.NotNil(t, first.ConfirmedAt)

		result, err := orders.ConfirmByCode(ctx, order.ConfirmationCode)
		require.NoError(t, err)

		assert.True(t, result.AlreadyClaimed)
		require.NotNil(t, result.Order.ConfirmedAt)
		assert.WithinDuration(t, *first.ConfirmedAt, *result.Order.ConfirmedAt, time.Second)
	})
}

func TestOrderService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	orders := NewOrderService(newTestDB(t))

	order, err := orders.Create(ctx, sampleOrderInput())
	require.NoError(t, err)

	_, err = orders.ConfirmByCode(ctx, order.ConfirmationCode)
	require.NoError(t, err)

	t.Run("confirmed may move to sent", func(t *testing.T) {
		require.NoError(t, orders.UpdateStatus(ctx, order.ID, model.OrderStatusSent))

		got, err := orders.GetByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusSent, got.Status)
	})

	t.Run("may not regress to pending", func(t *testing.T) {
		err := orders.UpdateStatus(ctx, order.ID, model.OrderStatusPending)
		assert.ErrorIs(t, err, ErrStatusRegression)
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		err := orders.UpdateStatus(ctx, order.ID, "shipped")
		assert.Error(t, err)
	})
}

func TestOrderService_Delete_CascadesLines(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	orders := NewOrderService(db)

	order, err := orders.Create(ctx, sampleOrderInput())
	require.NoError(t, err)

	require.NoError(t, orders.Delete(ctx, order.ID))

	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM order_lines WHERE order_id = ?`, order.ID))
	assert.Equal(t, 0, count)

	assert.ErrorIs(t, orders.Delete(ctx, order.ID), ErrOrderNotFound)
}
