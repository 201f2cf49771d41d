package events

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentConfirmedEvent notifies the business side that an order reached the
// paid state. TX is the reconciliation transaction so handlers can join it.
type PaymentConfirmedEvent struct {
	TX            *gorm.DB         `json:"-"`
	PaymentID     string           `json:"payment_id"` // public hashid
	Channel       string           `json:"channel"`
	ReferenceID   string           `json:"reference_id"`
	Amount        *decimal.Decimal `json:"amount"`
	Currency      string           `json:"currency"`
	VendorOrderID string           `json:"vendor_order_id"`
	PaidAt        time.Time        `json:"paid_at"`
}

// WebhookForwardedEvent carries an order-family notification verbatim for a
// downstream consumer; this service performs no state mutation for those.
type WebhookForwardedEvent struct {
	Channel    string          `json:"channel"`
	EventType  string          `json:"event_type"`
	ObjectID   string          `json:"object_id"`
	RawPayload json.RawMessage `json:"raw_payload"`
	ReceivedAt time.Time       `json:"received_at"`
}

type Handler interface {
	OnPaymentConfirmed(event *PaymentConfirmedEvent) error
	OnWebhookForwarded(event *WebhookForwardedEvent) error
}

// Emitter fans events out to an optional handler. A nil or unset handler
// makes every emit a no-op, matching a deploy without a downstream consumer.
type Emitter struct {
	handler Handler
}

func NewEmitter() *Emitter {
	return &Emitter{}
}

func (e *Emitter) SetHandler(h Handler) {
	e.handler = h
}

func (e *Emitter) EmitPaymentConfirmed(event *PaymentConfirmedEvent) error {
	if e.handler != nil {
		return e.handler.OnPaymentConfirmed(event)
	}
	return nil
}

func (e *Emitter) EmitWebhookForwarded(event *WebhookForwardedEvent) error {
	if e.handler != nil {
		return e.handler.OnWebhookForwarded(event)
	}
	return nil
}
