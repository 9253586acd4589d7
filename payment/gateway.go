// Package payment bridges the storefront to the external payment processor.
package payment

import (
	"context"
	"errors"
)

const EventPaymentIntentSucceeded = "payment_intent.succeeded"

var ErrInvalidSignature = errors.New("invalid webhook signature")

type IntentParams struct {
	// AmountMinor is the charge in the currency's smallest unit.
	AmountMinor int64
	Currency    string
	Metadata    map[string]string
}

type Intent struct {
	ID           string
	ClientSecret string
}

// Event is a verified webhook notification.
type Event struct {
	ID   string
	Type string
	// PaymentIntent is set for payment_intent.* events.
	PaymentIntent *PaymentIntent
}

type PaymentIntent struct {
	ID           string
	Status       string
	ReceiptEmail string
	Metadata     map[string]string
}

type Gateway interface {
	CreatePaymentIntent(ctx context.Context, p IntentParams) (*Intent, error)
	// ConstructEvent verifies signature over payload and decodes the event.
	// Verification failures wrap ErrInvalidSignature.
	ConstructEvent(payload []byte, signature string) (*Event, error)
}
