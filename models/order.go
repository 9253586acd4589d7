package models

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

var ErrInvalidTransition = errors.New("invalid order status transition")

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:   {OrderPaid, OrderCancelled},
	OrderPaid:      {OrderShipped},
	OrderShipped:   {OrderDelivered},
	OrderDelivered: {},
	OrderCancelled: {},
}

// CanTransition reports whether an order in status from may move to to.
func CanTransition(from, to OrderStatus) bool {
	for _, s := range orderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Order struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID  `bson:"userId" json:"userId"`
	OrderItems      []OrderItem         `bson:"orderItems" json:"orderItems"`
	ShippingAddress ShippingAddress     `bson:"shippingAddress" json:"shippingAddress"`
	PaymentMethod   string              `bson:"paymentMethod" json:"paymentMethod"`
	ItemsPrice      float64             `bson:"itemsPrice" json:"itemsPrice"`
	ShippingPrice   float64             `bson:"shippingPrice" json:"shippingPrice"`
	TaxPrice        float64             `bson:"taxPrice" json:"taxPrice"`
	TotalPrice      float64             `bson:"totalPrice" json:"totalPrice"`
	Status          OrderStatus         `bson:"status" json:"status"`
	IsPaid          bool                `bson:"isPaid" json:"isPaid"`
	PaidAt          *time.Time          `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	PaymentResult   *PaymentResult      `bson:"paymentResult,omitempty" json:"paymentResult,omitempty"`
	IsShipped       bool                `bson:"isShipped" json:"isShipped"`
	ShippingInfo    *primitive.ObjectID `bson:"shippingInfo,omitempty" json:"shippingInfo,omitempty"`
	IsDelivered     bool                `bson:"isDelivered" json:"isDelivered"`
	DeliveredAt     *time.Time          `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
	CancelledAt     *time.Time          `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	CreatedAt       time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time           `bson:"updatedAt" json:"updatedAt"`
}

type OrderItem struct {
	ProductID primitive.ObjectID `bson:"product" json:"product"`
	Name      string             `bson:"name" json:"name"`
	Image     string             `bson:"image" json:"image"`
	Price     float64            `bson:"price" json:"price"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

type ShippingAddress struct {
	FullName   string `bson:"fullName" json:"fullName"`
	Address    string `bson:"address" json:"address"`
	City       string `bson:"city" json:"city"`
	PostalCode string `bson:"postalCode" json:"postalCode"`
	Country    string `bson:"country" json:"country"`
	Phone      string `bson:"phone" json:"phone"`
}

func (a ShippingAddress) IsEmpty() bool {
	return a == ShippingAddress{}
}

// PaymentResult is what the processor reported for the charge.
type PaymentResult struct {
	ExternalID string `bson:"externalId" json:"id"`
	Status     string `bson:"status" json:"status"`
	UpdateTime string `bson:"updateTime" json:"update_time"`
	Email      string `bson:"email" json:"email_address"`
}

// IsOwnedBy reports whether userID placed the order.
func (o *Order) IsOwnedBy(userID primitive.ObjectID) bool {
	return o.UserID == userID
}

// Transition moves the order to status to, keeping the lifecycle flags and
// timestamps consistent with it.
func (o *Order) Transition(to OrderStatus, now time.Time) error {
	if !CanTransition(o.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, to)
	}
	o.Status = to
	o.UpdatedAt = now
	switch to {
	case OrderPaid:
		o.IsPaid = true
		o.PaidAt = &now
	case OrderShipped:
		o.IsShipped = true
	case OrderDelivered:
		o.IsDelivered = true
		o.DeliveredAt = &now
	case OrderCancelled:
		o.CancelledAt = &now
	}
	return nil
}
