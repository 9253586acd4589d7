package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ShippingStatus string

const (
	ShippingProcessing ShippingStatus = "processing"
	ShippingInTransit  ShippingStatus = "in_transit"
	ShippingDelivered  ShippingStatus = "delivered"
	ShippingFailed     ShippingStatus = "failed"
)

func (s ShippingStatus) Valid() bool {
	switch s {
	case ShippingProcessing, ShippingInTransit, ShippingDelivered, ShippingFailed:
		return true
	}
	return false
}

type Carrier string

const (
	CarrierPTT     Carrier = "PTT"
	CarrierYurtici Carrier = "Yurtici"
	CarrierAras    Carrier = "Aras"
)

func (c Carrier) Valid() bool {
	switch c {
	case CarrierPTT, CarrierYurtici, CarrierAras:
		return true
	}
	return false
}

type Shipping struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID               primitive.ObjectID `bson:"order" json:"order"`
	TrackingNumber        string             `bson:"trackingNumber" json:"trackingNumber"`
	Carrier               Carrier            `bson:"carrier" json:"carrier"`
	Status                ShippingStatus     `bson:"status" json:"status"`
	EstimatedDeliveryDate time.Time          `bson:"estimatedDeliveryDate" json:"estimatedDeliveryDate"`
	History               []TrackingEvent    `bson:"history" json:"history"`
	CreatedAt             time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt             time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type TrackingEvent struct {
	Status      ShippingStatus `bson:"status" json:"status"`
	Location    string         `bson:"location" json:"location"`
	Timestamp   time.Time      `bson:"timestamp" json:"timestamp"`
	Description string         `bson:"description" json:"description"`
}

// Append records ev and makes it the current status.
func (s *Shipping) Append(ev TrackingEvent) {
	s.History = append(s.History, ev)
	s.Status = ev.Status
	s.UpdatedAt = ev.Timestamp
}
