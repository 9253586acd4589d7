// Package paymenttest provides an in-process payment.Gateway for tests and
// local runs without processor credentials.
package paymenttest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"shopsphere/payment"
)

// ValidSignature is the only signature header the fake accepts.
const ValidSignature = "t=0,v1=fake"

type Gateway struct {
	mu      sync.Mutex
	Intents []payment.IntentParams
	// CreateErr, when set, is returned by CreatePaymentIntent.
	CreateErr error
}

func (g *Gateway) CreatePaymentIntent(_ context.Context, p payment.IntentParams) (*payment.Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.CreateErr != nil {
		return nil, g.CreateErr
	}
	g.Intents = append(g.Intents, p)
	id := fmt.Sprintf("pi_fake_%d", len(g.Intents))
	return &payment.Intent{ID: id, ClientSecret: id + "_secret"}, nil
}

type wireEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID           string            `json:"id"`
			Status       string            `json:"status"`
			ReceiptEmail string            `json:"receipt_email"`
			Metadata     map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

func (g *Gateway) ConstructEvent(payload []byte, signature string) (*payment.Event, error) {
	if signature != ValidSignature {
		return nil, fmt.Errorf("%w: signature mismatch", payment.ErrInvalidSignature)
	}
	var w wireEvent
	if err := json.Unmarshal(payload, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrInvalidSignature, err)
	}
	ev := &payment.Event{ID: w.ID, Type: w.Type}
	if w.Data.Object.ID != "" {
		ev.PaymentIntent = &payment.PaymentIntent{
			ID:           w.Data.Object.ID,
			Status:       w.Data.Object.Status,
			ReceiptEmail: w.Data.Object.ReceiptEmail,
			Metadata:     w.Data.Object.Metadata,
		}
	}
	return ev, nil
}

// LastIntent returns the most recent CreatePaymentIntent call.
func (g *Gateway) LastIntent() (payment.IntentParams, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.Intents) == 0 {
		return payment.IntentParams{}, false
	}
	return g.Intents[len(g.Intents)-1], true
}

// EventPayload builds a webhook body the fake will decode.
func EventPayload(eventType, intentID, receiptEmail string, metadata map[string]string) []byte {
	var w wireEvent
	w.ID = "evt_" + intentID
	w.Type = eventType
	w.Data.Object.ID = intentID
	w.Data.Object.Status = "succeeded"
	w.Data.Object.ReceiptEmail = receiptEmail
	w.Data.Object.Metadata = metadata
	b, _ := json.Marshal(w)
	return b
}
