package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"shopsphere/apperror"
	"shopsphere/models"
)

func TestPlaceOrderKeepsClientTotals(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.product(t, "Lamp", 20, 5)
	user := customer()

	in := orderFor(p, 2)
	in.ItemsPrice, in.ShippingPrice, in.TaxPrice, in.TotalPrice = 40, 10, 7.2, 1
	o, err := f.svc.Orders.PlaceOrder(ctx, user, in)
	require.NoError(t, err)

	assert.Equal(t, models.OrderPending, o.Status)
	assert.False(t, o.IsPaid)
	assert.Equal(t, 40.0, o.ItemsPrice)
	assert.Equal(t, 7.2, o.TaxPrice)
	assert.Equal(t, 1.0, o.TotalPrice)
	assert.Equal(t, user.UserID, o.UserID)
	assert.Equal(t, "Istanbul", o.ShippingAddress.City)
	assert.Equal(t, 3, f.stock(t, p.ID))
}

func TestPlaceOrderValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.product(t, "Lamp", 20, 5)

	cases := map[string]struct {
		mutate func(*PlaceOrderInput)
		msg    string
	}{
		"no items":   {func(in *PlaceOrderInput) { in.OrderItems = nil }, "No order items"},
		"no address": {func(in *PlaceOrderInput) { in.ShippingAddress = nil }, "Shipping address is required"},
		"no method":  {func(in *PlaceOrderInput) { in.PaymentMethod = " " }, "Payment method is required"},
		"bad id":     {func(in *PlaceOrderInput) { in.OrderItems[0].Product = "nope" }, "orderItems[0].product must be a valid id"},
		"zero qty":   {func(in *PlaceOrderInput) { in.OrderItems[0].Quantity = 0 }, "orderItems[0].quantity is required"},
		"no city":    {func(in *PlaceOrderInput) { in.ShippingAddress.City = "" }, "shippingAddress.city is required"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			in := orderFor(p, 1)
			tc.mutate(&in)
			_, err := f.svc.Orders.PlaceOrder(ctx, customer(), in)
			requireKind(t, err, apperror.KindValidation)
			_, msg := apperror.StatusOf(err)
			assert.Equal(t, tc.msg, msg)
		})
	}
	assert.Equal(t, 5, f.stock(t, p.ID))
}

func TestPlaceOrderInsufficientStockRollsBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	lamp := f.product(t, "Lamp", 20, 5)
	shade := f.product(t, "Shade", 8, 1)

	in := orderFor(lamp, 2)
	in.OrderItems = append(in.OrderItems, OrderItemInput{Product: shade.ID.Hex(), Name: shade.Name, Price: shade.Price, Quantity: 3})
	_, err := f.svc.Orders.PlaceOrder(ctx, customer(), in)
	requireKind(t, err, apperror.KindConflict)

	assert.Equal(t, 5, f.stock(t, lamp.ID))
	assert.Equal(t, 1, f.stock(t, shade.ID))
	orders, err := f.svc.Orders.ListOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestPlaceOrderUnknownProduct(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.product(t, "Lamp", 20, 5)

	in := orderFor(p, 1)
	in.OrderItems[0].Product = primitive.NewObjectID().Hex()
	_, err := f.svc.Orders.PlaceOrder(ctx, customer(), in)
	requireKind(t, err, apperror.KindNotFound)
}

func TestGetOrderAccess(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.product(t, "Lamp", 20, 5)
	owner := customer()
	o, err := f.svc.Orders.PlaceOrder(ctx, owner, orderFor(p, 1))
	require.NoError(t, err)

	_, err = f.svc.Orders.GetOrder(ctx, owner, o.ID.Hex())
	require.NoError(t, err)
	_, err = f.svc.Orders.GetOrder(ctx, admin(), o.ID.Hex())
	require.NoError(t, err)

	_, err = f.svc.Orders.GetOrder(ctx, customer(), o.ID.Hex())
	requireKind(t, err, apperror.KindAuthorization)
	_, err = f.svc.Orders.GetOrder(ctx, owner, "xyz")
	requireKind(t, err, apperror.KindValidation)
	_, err = f.svc.Orders.GetOrder(ctx, owner, primitive.NewObjectID().Hex())
	requireKind(t, err, apperror.KindNotFound)
}

func TestListMyOrders(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.product(t, "Lamp", 20, 5)
	me, other := customer(), customer()

	_, err := f.svc.Orders.PlaceOrder(ctx, me, orderFor(p, 1))
	require.NoError(t, err)
	_, err = f.svc.Orders.PlaceOrder(ctx, other, orderFor(p, 1))
	require.NoError(t, err)

	mine, err := f.svc.Orders.ListMyOrders(ctx, me)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, me.UserID, mine[0].UserID)

	all, err := f.svc.Orders.ListOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestPayOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.product(t, "Lamp", 20, 5)
	owner := customer()
	o, err := f.svc.Orders.PlaceOrder(ctx, owner, orderFor(p, 1))
	require.NoError(t, err)

	_, err = f.svc.Orders.PayOrder(ctx, customer(), o.ID.Hex(), PaymentResultInput{ID: "pay_1"})
	requireKind(t, err, apperror.KindAuthorization)
	_, err = f.svc.Orders.PayOrder(ctx, owner, o.ID.Hex(), PaymentResultInput{})
	requireKind(t, err, apperror.KindValidation)

	paid, err := f.svc.Orders.PayOrder(ctx, owner, o.ID.Hex(), PaymentResultInput{
		ID: "pay_1", Status: "COMPLETED", UpdateTime: "2024-05-01T10:00:00Z", EmailAddress: "ayse@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderPaid, paid.Status)
	assert.True(t, paid.IsPaid)
	require.NotNil(t, paid.PaidAt)
	assert.Equal(t, "pay_1", paid.PaymentResult.ExternalID)
	assert.Equal(t, "ayse@example.com", paid.PaymentResult.Email)

	_, err = f.svc.Orders.PayOrder(ctx, owner, o.ID.Hex(), PaymentResultInput{ID: "pay_2"})
	requireKind(t, err, apperror.KindConflict)

	stored, err := f.svc.Orders.GetOrder(ctx, owner, o.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "pay_1", stored.PaymentResult.ExternalID)
}

func TestPayOrderRejectsReusedPaymentID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.product(t, "Lamp", 20, 5)
	owner := customer()
	first, err := f.svc.Orders.PlaceOrder(ctx, owner, orderFor(p, 1))
	require.NoError(t, err)
	second, err := f.svc.Orders.PlaceOrder(ctx, owner, orderFor(p, 1))
	require.NoError(t, err)

	_, err = f.svc.Orders.PayOrder(ctx, owner, first.ID.Hex(), PaymentResultInput{ID: "pay_1"})
	require.NoError(t, err)
	_, err = f.svc.Orders.PayOrder(ctx, owner, second.ID.Hex(), PaymentResultInput{ID: "pay_1"})
	requireKind(t, err, apperror.KindConflict)
}

func TestCancelOrderRestocks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.product(t, "Lamp", 20, 5)
	owner := customer()
	o, err := f.svc.Orders.PlaceOrder(ctx, owner, orderFor(p, 3))
	require.NoError(t, err)
	require.Equal(t, 2, f.stock(t, p.ID))

	cancelled, err := f.svc.Orders.CancelOrder(ctx, owner, o.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, 5, f.stock(t, p.ID))

	_, err = f.svc.Orders.CancelOrder(ctx, owner, o.ID.Hex())
	requireKind(t, err, apperror.KindConflict)
	assert.Equal(t, 5, f.stock(t, p.ID))

	_, err = f.svc.Orders.PayOrder(ctx, owner, o.ID.Hex(), PaymentResultInput{ID: "pay_late"})
	requireKind(t, err, apperror.KindConflict)
}

func TestCancelPaidOrderRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.product(t, "Lamp", 20, 5)
	owner := customer()
	o := f.paidOrder(t, owner, p)

	_, err := f.svc.Orders.CancelOrder(ctx, admin(), o.ID.Hex())
	requireKind(t, err, apperror.KindConflict)
}

func TestUpdateShippingAddress(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.product(t, "Lamp", 20, 5)
	owner := customer()
	o := f.paidOrder(t, owner, p)

	addr := *address()
	addr.City = "Ankara"
	updated, err := f.svc.Orders.UpdateShippingAddress(ctx, owner, o.ID.Hex(), addr)
	require.NoError(t, err)
	assert.Equal(t, "Ankara", updated.ShippingAddress.City)
	assert.Equal(t, models.OrderPaid, updated.Status)

	_, err = f.svc.Orders.UpdateShippingAddress(ctx, customer(), o.ID.Hex(), addr)
	requireKind(t, err, apperror.KindAuthorization)

	_, err = f.svc.Shipping.CreateShipping(ctx, CreateShippingInput{
		OrderID: o.ID.Hex(), TrackingNumber: "TRK1", Carrier: "Aras", EstimatedDeliveryDate: o.CreatedAt.AddDate(0, 0, 3),
	})
	require.NoError(t, err)
	_, err = f.svc.Orders.UpdateShippingAddress(ctx, owner, o.ID.Hex(), addr)
	requireKind(t, err, apperror.KindConflict)
}

func TestOrderCannotShipBeforePaid(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.product(t, "Lamp", 20, 5)
	o, err := f.svc.Orders.PlaceOrder(ctx, customer(), orderFor(p, 1))
	require.NoError(t, err)

	_, err = f.svc.Shipping.CreateShipping(ctx, CreateShippingInput{
		OrderID: o.ID.Hex(), TrackingNumber: "TRK1", Carrier: "PTT", EstimatedDeliveryDate: o.CreatedAt,
	})
	requireKind(t, err, apperror.KindConflict)

	_, err = f.stores.Shipping.FindByOrderID(ctx, o.ID)
	assert.Error(t, err)

	require.NoError(t, f.svc.Orders.markDelivered(ctx, o.ID))
	stored, err := f.stores.Orders.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, stored.Status)
	assert.False(t, stored.IsDelivered)
}
