package payments

import (
	"context"
	"fmt"

	"github.com/studiodanca/pagamentos/pkg/errors"
	"github.com/studiodanca/pagamentos/pkg/eventlog"
	"github.com/studiodanca/pagamentos/pkg/idempotency"
	"github.com/studiodanca/pagamentos/pkg/models"
	"github.com/studiodanca/pagamentos/pkg/payments/types"
	"github.com/studiodanca/pagamentos/pkg/payments/utils"
)

// Manager fronts the channel registry: checkout creation, webhook
// processing and payment-record lookup.
type Manager struct {
	deps     *types.Deps
	registry *Registry
	dedup    idempotency.Store
}

func NewManager(deps *types.Deps, registry *Registry, dedup idempotency.Store) *Manager {
	return &Manager{deps: deps, registry: registry, dedup: dedup}
}

// CreatePayment validates the checkout request and hands it to the channel.
func (m *Manager) CreatePayment(ctx context.Context, channelName string, req types.CreatePaymentRequest) (*types.CreatePaymentResult, error) {
	channel := m.registry.Get(channelName)
	if channel == nil {
		return nil, errors.ErrChannelNotFound
	}
	if req.ReferenceID == "" {
		return nil, errors.ErrReferenceRequired
	}
	if req.Amount <= 0 {
		return nil, errors.ErrAmountInvalid
	}
	if req.CustomerName == "" || req.CustomerEmail == "" {
		return nil, errors.ErrCustomerIncomplete
	}
	if req.Currency == "" {
		req.Currency = "BRL"
	}

	m.deps.Log.Info("[PaymentManager] Calling CreatePayment",
		"channel", channelName, "reference", req.ReferenceID, "amount", req.Amount)

	result, err := channel.CreatePayment(ctx, req)
	if err != nil {
		return nil, err
	}

	m.deps.Log.Info("[PaymentManager] CreatePayment returned",
		"channel", channelName, "payment", result.PaymentID, "url", result.PaymentURL)
	return result, nil
}

// ProcessWebhook runs the channel-agnostic webhook steps (observability
// first, then dedup) and dispatches to the channel. The webhook entry is
// written before any processing so a later crash still leaves a trace.
//
// Dedup keys on the delivery id, never on the notified object: the same
// payment gets a new, byte-identical notification for every status
// transition, and each one must re-fetch the vendor-side status.
// Deliveries without a delivery id (PagBank, Asaas) are always processed;
// Reconciler.Apply makes reprocessing harmless.
func (m *Manager) ProcessWebhook(ctx context.Context, channelName string, n *types.Notification) (*types.WebhookResult, error) {
	m.deps.EventLog.Log(ctx, eventlog.KindWebhook, map[string]string{
		"channel":  channelName,
		"event":    n.Event,
		"id":       n.ObjectID,
		"delivery": n.DeliveryID,
	})

	channel := m.registry.Get(channelName)
	if channel == nil {
		return nil, errors.ErrChannelNotFound
	}

	key := ""
	if n.DeliveryID != "" {
		key = idempotency.Key(channelName, n.DeliveryID)
		seen, err := m.dedup.Seen(ctx, key)
		if err != nil {
			// dedup being down must not drop deliveries; reprocessing is
			// safe because reconciliation is idempotent
			m.deps.Log.Warn("[PaymentManager] dedup store unavailable", "error", err)
			key = ""
		} else if seen {
			return &types.WebhookResult{
				Status:  "OK",
				Message: "duplicate delivery ignored",
				Event:   n.Event,
				ID:      n.ObjectID,
			}, nil
		}
	}

	result, err := channel.HandleWebhook(ctx, n)
	if err != nil && key != "" {
		// unmark the delivery so the vendor's retry is reprocessed
		if ferr := m.dedup.Forget(ctx, key); ferr != nil {
			m.deps.Log.Warn("[PaymentManager] failed to unmark delivery",
				"key", key, "error", ferr)
		}
	}
	return result, err
}

// GetPaymentOrder resolves a public payment id to its record.
func (m *Manager) GetPaymentOrder(ctx context.Context, paymentHashID string) (*models.PaymentOrder, error) {
	id, err := utils.DecodePaymentHashID(paymentHashID)
	if err != nil {
		return nil, fmt.Errorf("invalid payment id: %w", err)
	}

	var order models.PaymentOrder
	err = m.deps.DB.WithContext(ctx).First(&order, id).Error
	if err != nil {
		return nil, errors.ErrOrderNotFound
	}
	return &order, nil
}
