package types

import (
	"encoding/json"
	"net/url"
	"strconv"
)

// EventKind is the closed classification of vendor notification types.
// Vendors send free-form strings; everything unrecognized lands in
// EventUnknown and is logged rather than rejected.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventPayment
	EventOrder
)

var paymentEvents = map[string]bool{
	"payment":         true,
	"payment.created": true,
	"payment.updated": true,
}

var orderEvents = map[string]bool{
	"merchant_order":          true,
	"topic_merchant_order_wh": true,
}

func KindOf(event string) EventKind {
	switch {
	case paymentEvents[event]:
		return EventPayment
	case orderEvents[event]:
		return EventOrder
	default:
		return EventUnknown
	}
}

// Notification is the transient, normalized form of one inbound webhook
// delivery. It is built per request and discarded after processing.
type Notification struct {
	Channel string
	Event   string
	Kind    EventKind
	// DeliveryID identifies this delivery, not the notified object: the
	// vendor reuses it when retrying a delivery but issues a fresh one for
	// each status transition. Empty when the vendor sends none.
	DeliveryID string
	ObjectID   string
	Body       []byte
	RequestURL string
}

// ParseNotification extracts the event type and object id from the places
// the vendors put them, first present wins: query "type", query "topic",
// body "type", body "action", body "event" (Asaas). The object id comes
// from query "data.id", body "data.id", query "id", body "payment.id"
// (Asaas).
func ParseNotification(channel string, query url.Values, body []byte, requestURL string) *Notification {
	var parsed struct {
		Type   string `json:"type"`
		Action string `json:"action"`
		Event  string `json:"event"`
		ID     any    `json:"id"`
		Data   struct {
			ID any `json:"id"`
		} `json:"data"`
		Payment struct {
			ID any `json:"id"`
		} `json:"payment"`
	}
	// a non-JSON body is fine: everything stays empty and the delivery is
	// classified unknown
	_ = json.Unmarshal(body, &parsed)

	event := firstNonEmpty(
		query.Get("type"),
		query.Get("topic"),
		parsed.Type,
		parsed.Action,
		parsed.Event,
	)

	objectID := firstNonEmpty(
		query.Get("data.id"),
		asString(parsed.Data.ID),
		query.Get("id"),
		asString(parsed.Payment.ID),
	)

	// The body-level id is a notification id only in the Mercado Pago
	// envelope (where the object lives under data.id). PagBank's body-level
	// id is the order itself and order notifications repeat for every status
	// transition, so those deliveries carry no delivery id and depend on
	// reconciler idempotence instead.
	deliveryID := ""
	if asString(parsed.Data.ID) != "" {
		deliveryID = asString(parsed.ID)
	}

	return &Notification{
		Channel:    channel,
		Event:      event,
		Kind:       KindOf(event),
		DeliveryID: deliveryID,
		ObjectID:   objectID,
		Body:       body,
		RequestURL: requestURL,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		// vendor ids sometimes arrive as JSON numbers
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}
