package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shopsphere/apperror"
	"shopsphere/models"
	"shopsphere/pricing"
	"shopsphere/repository"
)

// ErrDuplicatePayment is returned when an order for the same processor
// payment id already exists.
var ErrDuplicatePayment = errors.New("payment already recorded on another order")

type OrderService struct {
	orders   repository.OrderStore
	products repository.ProductStore
	pricing  *pricing.Calculator
	log      *slog.Logger
	now      func() time.Time
}

type OrderItemInput struct {
	Product  string  `json:"product" validate:"required,mongodb"`
	Name     string  `json:"name" validate:"required"`
	Image    string  `json:"image"`
	Price    float64 `json:"price" validate:"gte=0"`
	Quantity int     `json:"quantity" validate:"required,min=1"`
}

type AddressInput struct {
	FullName   string `json:"fullName" validate:"required"`
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
	Country    string `json:"country" validate:"required"`
	Phone      string `json:"phone"`
}

func (a AddressInput) model() models.ShippingAddress {
	return models.ShippingAddress{
		FullName:   strings.TrimSpace(a.FullName),
		Address:    strings.TrimSpace(a.Address),
		City:       strings.TrimSpace(a.City),
		PostalCode: strings.TrimSpace(a.PostalCode),
		Country:    strings.TrimSpace(a.Country),
		Phone:      strings.TrimSpace(a.Phone),
	}
}

// PlaceOrderInput is the checkout request. The price components are the
// client's quote and are stored as sent.
type PlaceOrderInput struct {
	OrderItems      []OrderItemInput `json:"orderItems" validate:"dive"`
	ShippingAddress *AddressInput    `json:"shippingAddress"`
	PaymentMethod   string           `json:"paymentMethod"`
	ItemsPrice      float64          `json:"itemsPrice" validate:"gte=0"`
	ShippingPrice   float64          `json:"shippingPrice" validate:"gte=0"`
	TaxPrice        float64          `json:"taxPrice" validate:"gte=0"`
	TotalPrice      float64          `json:"totalPrice" validate:"gte=0"`
}

type PaymentResultInput struct {
	ID           string `json:"id" validate:"required"`
	Status       string `json:"status"`
	UpdateTime   string `json:"update_time"`
	EmailAddress string `json:"email_address" validate:"omitempty,email"`
}

// orderDraft is everything needed to persist a new order, whichever path
// it came from.
type orderDraft struct {
	userID  primitive.ObjectID
	items   []models.OrderItem
	address models.ShippingAddress
	method  string
	prices  pricing.Breakdown
	// payment is set when the processor already confirmed the charge.
	payment *models.PaymentResult
	// strictStock fails the order when any line cannot be reserved.
	strictStock bool
}

func (s *OrderService) PlaceOrder(ctx context.Context, caller Identity, in PlaceOrderInput) (*models.Order, error) {
	if len(in.OrderItems) == 0 {
		return nil, apperror.Validation("No order items")
	}
	if in.ShippingAddress == nil {
		return nil, apperror.Validation("Shipping address is required")
	}
	if strings.TrimSpace(in.PaymentMethod) == "" {
		return nil, apperror.Validation("Payment method is required")
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	items := make([]models.OrderItem, 0, len(in.OrderItems))
	for _, it := range in.OrderItems {
		pid, _ := primitive.ObjectIDFromHex(it.Product)
		items = append(items, models.OrderItem{
			ProductID: pid,
			Name:      it.Name,
			Image:     it.Image,
			Price:     it.Price,
			Quantity:  it.Quantity,
		})
	}

	return s.create(ctx, orderDraft{
		userID:  caller.UserID,
		items:   items,
		address: in.ShippingAddress.model(),
		method:  strings.TrimSpace(in.PaymentMethod),
		prices: pricing.Breakdown{
			ItemsPrice:    in.ItemsPrice,
			ShippingPrice: in.ShippingPrice,
			TaxPrice:      in.TaxPrice,
			TotalPrice:    in.TotalPrice,
		},
		strictStock: true,
	})
}

// createPaid records an order for a charge the processor already
// confirmed. Prices are recomputed from the line items.
func (s *OrderService) createPaid(ctx context.Context, userID primitive.ObjectID, items []models.OrderItem, result *models.PaymentResult) (*models.Order, error) {
	lines := make([]pricing.Line, len(items))
	for i, it := range items {
		lines[i] = pricing.Line{Price: it.Price, Quantity: it.Quantity}
	}
	return s.create(ctx, orderDraft{
		userID:  userID,
		items:   items,
		method:  "stripe",
		prices:  s.pricing.Quote(lines),
		payment: result,
	})
}

func (s *OrderService) create(ctx context.Context, d orderDraft) (*models.Order, error) {
	now := s.now()
	o := &models.Order{
		ID:              primitive.NewObjectID(),
		UserID:          d.userID,
		OrderItems:      d.items,
		ShippingAddress: d.address,
		PaymentMethod:   d.method,
		ItemsPrice:      d.prices.ItemsPrice,
		ShippingPrice:   d.prices.ShippingPrice,
		TaxPrice:        d.prices.TaxPrice,
		TotalPrice:      d.prices.TotalPrice,
		Status:          models.OrderPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if d.payment != nil {
		o.PaymentResult = d.payment
		if err := o.Transition(models.OrderPaid, now); err != nil {
			return nil, apperror.Unexpected(err)
		}
	}

	reserved, err := s.reserveStock(ctx, o.OrderItems, d.strictStock)
	if err != nil {
		return nil, err
	}

	if err := s.orders.Create(ctx, o); err != nil {
		s.releaseStock(ctx, reserved)
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrDuplicatePayment
		}
		return nil, apperror.Unexpected(err)
	}

	s.log.InfoContext(ctx, "order created",
		"order_id", o.ID.Hex(), "user_id", o.UserID.Hex(), "status", o.Status, "total", o.TotalPrice)
	return o, nil
}

// reserveStock decrements every line's product. In strict mode the first
// failure rolls back the lines already reserved; otherwise shortfalls are
// logged and skipped.
func (s *OrderService) reserveStock(ctx context.Context, items []models.OrderItem, strict bool) ([]models.OrderItem, error) {
	reserved := make([]models.OrderItem, 0, len(items))
	for _, it := range items {
		err := s.products.DecrementStock(ctx, it.ProductID, it.Quantity)
		if err == nil {
			reserved = append(reserved, it)
			continue
		}
		if !strict {
			s.log.WarnContext(ctx, "stock not reserved for paid order line",
				"product_id", it.ProductID.Hex(), "quantity", it.Quantity, "error", err)
			continue
		}
		s.releaseStock(ctx, reserved)
		switch {
		case errors.Is(err, repository.ErrInsufficientStock):
			return nil, apperror.Conflict("Not enough stock for %s", it.Name)
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperror.NotFound("Product not found: %s", it.Name)
		default:
			return nil, apperror.Unexpected(err)
		}
	}
	return reserved, nil
}

func (s *OrderService) releaseStock(ctx context.Context, items []models.OrderItem) {
	for _, it := range items {
		if err := s.products.IncrementStock(ctx, it.ProductID, it.Quantity); err != nil {
			s.log.ErrorContext(ctx, "restock failed",
				"product_id", it.ProductID.Hex(), "quantity", it.Quantity, "error", err)
		}
	}
}

func (s *OrderService) loadForCaller(ctx context.Context, caller Identity, id string) (*models.Order, error) {
	oid, err := parseID(id, "order")
	if err != nil {
		return nil, err
	}
	o, err := s.orders.FindByID(ctx, oid)
	if err != nil {
		return nil, storeErr(err, "Order not found")
	}
	if !caller.IsAdmin() && !o.IsOwnedBy(caller.UserID) {
		return nil, apperror.Forbidden("Not authorized to access this order")
	}
	return o, nil
}

func (s *OrderService) GetOrder(ctx context.Context, caller Identity, id string) (*models.Order, error) {
	return s.loadForCaller(ctx, caller, id)
}

func (s *OrderService) ListMyOrders(ctx context.Context, caller Identity) ([]models.Order, error) {
	orders, err := s.orders.ListByUser(ctx, caller.UserID)
	if err != nil {
		return nil, apperror.Unexpected(err)
	}
	return orders, nil
}

func (s *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, apperror.Unexpected(err)
	}
	return orders, nil
}

// transition applies to and persists the order, guarding against a
// concurrent status change.
func (s *OrderService) transition(ctx context.Context, o *models.Order, to models.OrderStatus, mutate func(*models.Order)) error {
	prev := o.Status
	if err := o.Transition(to, s.now()); err != nil {
		return apperror.Conflict("Order cannot move from %s to %s", prev, to).WithCause(err)
	}
	if mutate != nil {
		mutate(o)
	}
	if err := s.orders.Save(ctx, o, prev); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return apperror.Conflict("Payment already recorded on another order").WithCause(err)
		}
		return storeErr(err, "Order not found")
	}
	s.log.InfoContext(ctx, "order status changed", "order_id", o.ID.Hex(), "from", prev, "to", to)
	return nil
}

// PayOrder records a payment confirmation sent by the client.
func (s *OrderService) PayOrder(ctx context.Context, caller Identity, id string, in PaymentResultInput) (*models.Order, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	o, err := s.loadForCaller(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if o.IsPaid {
		return nil, apperror.Conflict("Order is already paid")
	}
	err = s.transition(ctx, o, models.OrderPaid, func(o *models.Order) {
		o.PaymentResult = &models.PaymentResult{
			ExternalID: in.ID,
			Status:     in.Status,
			UpdateTime: in.UpdateTime,
			Email:      in.EmailAddress,
		}
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

// UpdateShippingAddress fills in or corrects the address until the order
// ships. Webhook-created orders start without one.
func (s *OrderService) UpdateShippingAddress(ctx context.Context, caller Identity, id string, in AddressInput) (*models.Order, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	o, err := s.loadForCaller(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if o.Status != models.OrderPending && o.Status != models.OrderPaid {
		return nil, apperror.Conflict("Shipping address cannot change once the order is %s", o.Status)
	}
	prev := o.Status
	o.ShippingAddress = in.model()
	o.UpdatedAt = s.now()
	if err := s.orders.Save(ctx, o, prev); err != nil {
		return nil, storeErr(err, "Order not found")
	}
	return o, nil
}

// CancelOrder cancels an unpaid order and returns its items to stock.
func (s *OrderService) CancelOrder(ctx context.Context, caller Identity, id string) (*models.Order, error) {
	o, err := s.loadForCaller(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if o.Status != models.OrderPending {
		return nil, apperror.Conflict("Only pending orders can be cancelled")
	}
	if err := s.transition(ctx, o, models.OrderCancelled, nil); err != nil {
		return nil, err
	}
	s.releaseStock(ctx, o.OrderItems)
	return o, nil
}

// attachShipment links a new shipment and marks the order shipped.
func (s *OrderService) attachShipment(ctx context.Context, o *models.Order, shippingID primitive.ObjectID) error {
	return s.transition(ctx, o, models.OrderShipped, func(o *models.Order) {
		o.ShippingInfo = &shippingID
	})
}

// markDelivered moves a shipped order to delivered. Orders in any other
// status are left alone.
func (s *OrderService) markDelivered(ctx context.Context, orderID primitive.ObjectID) error {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("load order %s: %w", orderID.Hex(), err)
	}
	if o.Status != models.OrderShipped {
		return nil
	}
	return s.transition(ctx, o, models.OrderDelivered, nil)
}
