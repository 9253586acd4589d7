package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"shopsphere/apperror"
	"shopsphere/models"
	"shopsphere/repository"
)

type ShippingService struct {
	shipping repository.ShippingStore
	orders   *OrderService
	log      *slog.Logger
	now      func() time.Time
}

type CreateShippingInput struct {
	OrderID               string    `json:"orderId" validate:"required,mongodb"`
	TrackingNumber        string    `json:"trackingNumber" validate:"required"`
	Carrier               string    `json:"carrier" validate:"required,oneof=PTT Yurtici Aras"`
	EstimatedDeliveryDate time.Time `json:"estimatedDeliveryDate" validate:"required"`
}

type ShippingUpdateInput struct {
	Status      string `json:"status" validate:"required,oneof=processing in_transit delivered failed"`
	Location    string `json:"location" validate:"required"`
	Description string `json:"description"`
}

// CreateShipping opens a shipment for a paid order and marks the order
// shipped.
func (s *ShippingService) CreateShipping(ctx context.Context, in CreateShippingInput) (*models.Shipping, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	orderID, err := parseID(in.OrderID, "order")
	if err != nil {
		return nil, err
	}
	o, err := s.orders.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, storeErr(err, "Order not found")
	}
	if !models.CanTransition(o.Status, models.OrderShipped) {
		return nil, apperror.Conflict("Order must be paid before it ships (status %s)", o.Status)
	}

	now := s.now()
	sh := &models.Shipping{
		OrderID:               o.ID,
		TrackingNumber:        strings.TrimSpace(in.TrackingNumber),
		Carrier:               models.Carrier(in.Carrier),
		EstimatedDeliveryDate: in.EstimatedDeliveryDate,
		CreatedAt:             now,
	}
	sh.Append(models.TrackingEvent{
		Status:      models.ShippingProcessing,
		Location:    "Warehouse",
		Timestamp:   now,
		Description: "Order has been processed and ready for shipping",
	})

	if err := s.shipping.Create(ctx, sh); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, apperror.Conflict("Shipment already exists for this order or tracking number").WithCause(err)
		}
		return nil, apperror.Unexpected(err)
	}

	if err := s.orders.attachShipment(ctx, o, sh.ID); err != nil {
		if derr := s.shipping.Delete(ctx, sh.ID); derr != nil {
			s.log.ErrorContext(ctx, "orphan shipment not removed", "shipping_id", sh.ID.Hex(), "error", derr)
		}
		return nil, err
	}
	s.log.InfoContext(ctx, "shipment created",
		"shipping_id", sh.ID.Hex(), "order_id", o.ID.Hex(), "carrier", sh.Carrier, "tracking_number", sh.TrackingNumber)
	return sh, nil
}

// UpdateShippingStatus appends one tracking event. Status may move in any
// direction. Reaching delivered also completes a shipped order.
func (s *ShippingService) UpdateShippingStatus(ctx context.Context, id string, in ShippingUpdateInput) (*models.Shipping, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	sid, err := parseID(id, "shipping")
	if err != nil {
		return nil, err
	}
	status := models.ShippingStatus(in.Status)
	sh, err := s.shipping.AppendEvent(ctx, sid, models.TrackingEvent{
		Status:      status,
		Location:    strings.TrimSpace(in.Location),
		Timestamp:   s.now(),
		Description: in.Description,
	})
	if err != nil {
		return nil, storeErr(err, "Shipping not found")
	}
	s.log.InfoContext(ctx, "shipment status appended", "shipping_id", sh.ID.Hex(), "status", status)

	if status == models.ShippingDelivered {
		if err := s.orders.markDelivered(ctx, sh.OrderID); err != nil {
			s.log.ErrorContext(ctx, "order not marked delivered", "order_id", sh.OrderID.Hex(), "error", err)
		}
	}
	return sh, nil
}

func (s *ShippingService) GetShipping(ctx context.Context, caller Identity, id string) (*models.Shipping, error) {
	sid, err := parseID(id, "shipping")
	if err != nil {
		return nil, err
	}
	sh, err := s.shipping.FindByID(ctx, sid)
	if err != nil {
		return nil, storeErr(err, "Shipping not found")
	}
	if err := s.authorize(ctx, caller, sh); err != nil {
		return nil, err
	}
	return sh, nil
}

func (s *ShippingService) GetShippingByOrder(ctx context.Context, caller Identity, orderID string) (*models.Shipping, error) {
	if _, err := s.orders.loadForCaller(ctx, caller, orderID); err != nil {
		return nil, err
	}
	oid, _ := parseID(orderID, "order")
	sh, err := s.shipping.FindByOrderID(ctx, oid)
	if err != nil {
		return nil, storeErr(err, "Shipping not found")
	}
	return sh, nil
}

func (s *ShippingService) authorize(ctx context.Context, caller Identity, sh *models.Shipping) error {
	if caller.IsAdmin() {
		return nil
	}
	o, err := s.orders.orders.FindByID(ctx, sh.OrderID)
	if err != nil {
		return storeErr(err, "Order not found")
	}
	if !o.IsOwnedBy(caller.UserID) {
		return apperror.Forbidden("Not authorized to access this shipment")
	}
	return nil
}
