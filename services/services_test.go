package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"shopsphere/apperror"
	"shopsphere/models"
	"shopsphere/payment/paymenttest"
	"shopsphere/repository"
	"shopsphere/repository/inmem"
)

type fixture struct {
	svc     *Services
	stores  *repository.Stores
	gateway *paymenttest.Gateway
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	stores := inmem.New()
	gw := &paymenttest.Gateway{}
	svc := New(stores, gw, Options{
		JWTSecret:   "test-secret",
		TokenTTL:    time.Hour,
		Currency:    "usd",
		ShippingFee: 10,
		TaxRate:     0.18,
	}, slog.New(slog.DiscardHandler))
	return &fixture{svc: svc, stores: stores, gateway: gw}
}

func customer() Identity {
	return Identity{UserID: primitive.NewObjectID(), Name: "Ayse", Role: models.RoleCustomer}
}

func admin() Identity {
	return Identity{UserID: primitive.NewObjectID(), Name: "Root", Role: models.RoleAdmin}
}

func (f *fixture) product(t *testing.T, name string, price float64, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:         name,
		Slug:         models.Slugify(name),
		Price:        price,
		Images:       []string{"/img/" + models.Slugify(name) + ".jpg"},
		CountInStock: stock,
		CreatedAt:    time.Now(),
	}
	require.NoError(t, f.stores.Products.Create(context.Background(), p))
	return p
}

func (f *fixture) stock(t *testing.T, id primitive.ObjectID) int {
	t.Helper()
	p, err := f.stores.Products.FindByID(context.Background(), id)
	require.NoError(t, err)
	return p.CountInStock
}

func address() *AddressInput {
	return &AddressInput{
		FullName:   "Ayse Yilmaz",
		Address:    "Bagdat Cd. 12",
		City:       "Istanbul",
		PostalCode: "34710",
		Country:    "TR",
	}
}

func orderFor(p *models.Product, qty int) PlaceOrderInput {
	items := p.Price * float64(qty)
	return PlaceOrderInput{
		OrderItems:      []OrderItemInput{{Product: p.ID.Hex(), Name: p.Name, Image: p.Images[0], Price: p.Price, Quantity: qty}},
		ShippingAddress: address(),
		PaymentMethod:   "card",
		ItemsPrice:      items,
		ShippingPrice:   10,
		TaxPrice:        items * 0.18,
		TotalPrice:      items + 10 + items*0.18,
	}
}

func (f *fixture) paidOrder(t *testing.T, caller Identity, p *models.Product) *models.Order {
	t.Helper()
	ctx := context.Background()
	o, err := f.svc.Orders.PlaceOrder(ctx, caller, orderFor(p, 1))
	require.NoError(t, err)
	o, err = f.svc.Orders.PayOrder(ctx, caller, o.ID.Hex(), PaymentResultInput{ID: "pay_" + o.ID.Hex(), Status: "COMPLETED"})
	require.NoError(t, err)
	return o
}

func requireKind(t *testing.T, err error, kind apperror.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, apperror.KindOf(err), "error: %v", err)
}
