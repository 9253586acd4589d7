package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shopsphere/apperror"
	"shopsphere/models"
	"shopsphere/payment"
	"shopsphere/pricing"
	"shopsphere/repository"
)

// maxMetadataValue is the processor's limit on a single metadata value.
const maxMetadataValue = 500

type PaymentService struct {
	gateway  payment.Gateway
	orders   *OrderService
	currency string
	log      *slog.Logger
	now      func() time.Time
}

type IntentItem struct {
	ID       string  `json:"id" validate:"required,mongodb"`
	Name     string  `json:"name" validate:"required"`
	Image    string  `json:"image"`
	Price    float64 `json:"price" validate:"gte=0"`
	Quantity int     `json:"quantity" validate:"required,min=1"`
}

type PaymentIntentInput struct {
	Amount float64      `json:"amount"`
	Items  []IntentItem `json:"items"`
}

type PaymentIntentResult struct {
	ClientSecret string `json:"clientSecret"`
}

// intentMetadata is the schema the webhook expects back on a succeeded
// intent.
type intentMetadata struct {
	UserID string       `validate:"required,mongodb"`
	Items  []IntentItem `validate:"required,min=1,dive"`
}

type WebhookOutcome string

const (
	WebhookOrderCreated WebhookOutcome = "created"
	WebhookDuplicate    WebhookOutcome = "duplicate"
	WebhookIgnored      WebhookOutcome = "ignored"
)

// CreatePaymentIntent opens a charge for amount and stashes the cart in the
// intent metadata so the webhook can build the order.
func (s *PaymentService) CreatePaymentIntent(ctx context.Context, caller Identity, in PaymentIntentInput) (*PaymentIntentResult, error) {
	// Sub-cent amounts round to zero minor units, which the processor rejects.
	if pricing.MinorUnits(in.Amount) < 1 || len(in.Items) == 0 {
		return nil, apperror.Validation("Invalid request data")
	}
	for _, it := range in.Items {
		if err := validateInput(it); err != nil {
			return nil, apperror.Validation("Invalid request data").WithCause(err)
		}
	}
	items, err := json.Marshal(in.Items)
	if err != nil {
		return nil, apperror.Unexpected(err)
	}
	if len(items) > maxMetadataValue {
		return nil, apperror.Validation("Too many items for a single payment")
	}

	intent, err := s.gateway.CreatePaymentIntent(ctx, payment.IntentParams{
		AmountMinor: pricing.MinorUnits(in.Amount),
		Currency:    s.currency,
		Metadata: map[string]string{
			"userId": caller.UserID.Hex(),
			"items":  string(items),
		},
	})
	if err != nil {
		return nil, apperror.Unexpected(err)
	}
	s.log.InfoContext(ctx, "payment intent created", "intent_id", intent.ID, "user_id", caller.UserID.Hex())
	return &PaymentIntentResult{ClientSecret: intent.ClientSecret}, nil
}

// HandleWebhook verifies and applies a processor notification. A succeeded
// intent becomes a paid order exactly once per intent id.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) (WebhookOutcome, error) {
	ev, err := s.gateway.ConstructEvent(payload, signature)
	if err != nil {
		s.log.WarnContext(ctx, "webhook rejected", "error", err)
		return "", apperror.Signature("Webhook Error: %v", err).WithCause(err)
	}
	if ev.Type != payment.EventPaymentIntentSucceeded || ev.PaymentIntent == nil {
		s.log.InfoContext(ctx, "unhandled webhook event", "event_id", ev.ID, "type", ev.Type)
		return WebhookIgnored, nil
	}
	pi := ev.PaymentIntent

	existing, err := s.orders.orders.FindByPaymentID(ctx, pi.ID)
	switch {
	case err == nil:
		s.log.InfoContext(ctx, "webhook duplicate ignored", "intent_id", pi.ID, "order_id", existing.ID.Hex())
		return WebhookDuplicate, nil
	case !errors.Is(err, repository.ErrNotFound):
		return "", apperror.Unexpected(err)
	}

	meta, err := decodeMetadata(pi.Metadata)
	if err != nil {
		s.log.WarnContext(ctx, "webhook metadata rejected", "intent_id", pi.ID, "error", err)
		return "", apperror.Validation("Webhook Error: invalid payment metadata").WithCause(err)
	}
	userID, _ := primitive.ObjectIDFromHex(meta.UserID)

	items := make([]models.OrderItem, len(meta.Items))
	for i, it := range meta.Items {
		pid, _ := primitive.ObjectIDFromHex(it.ID)
		items[i] = models.OrderItem{
			ProductID: pid,
			Name:      it.Name,
			Image:     it.Image,
			Price:     it.Price,
			Quantity:  it.Quantity,
		}
	}

	o, err := s.orders.createPaid(ctx, userID, items, &models.PaymentResult{
		ExternalID: pi.ID,
		Status:     pi.Status,
		UpdateTime: s.now().UTC().Format(time.RFC3339),
		Email:      pi.ReceiptEmail,
	})
	if errors.Is(err, ErrDuplicatePayment) {
		s.log.InfoContext(ctx, "webhook duplicate ignored", "intent_id", pi.ID)
		return WebhookDuplicate, nil
	}
	if err != nil {
		return "", err
	}
	s.log.InfoContext(ctx, "order paid", "intent_id", pi.ID, "order_id", o.ID.Hex())
	return WebhookOrderCreated, nil
}

func decodeMetadata(md map[string]string) (*intentMetadata, error) {
	meta := &intentMetadata{UserID: md["userId"]}
	raw := md["items"]
	if raw == "" {
		raw = "[]"
	}
	if err := json.Unmarshal([]byte(raw), &meta.Items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	if err := validate.Struct(meta); err != nil {
		return nil, err
	}
	return meta, nil
}
