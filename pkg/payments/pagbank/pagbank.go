package pagbank

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/studiodanca/pagamentos/pkg/errors"
	"github.com/studiodanca/pagamentos/pkg/models"
	"github.com/studiodanca/pagamentos/pkg/payments/reconcile"
	"github.com/studiodanca/pagamentos/pkg/payments/types"
	"github.com/studiodanca/pagamentos/pkg/payments/utils"
)

const channelName = "pagbank"

type PagBank struct {
	deps   *types.Deps
	client *Client
}

func (p *PagBank) Init(deps *types.Deps) error {
	p.deps = deps
	p.client = NewClient(deps.HTTP, deps.Cfg.PagBank.APIBase, deps.Cfg.PagBank.Token, deps.Cfg.PagBank.Sandbox)
	return nil
}

func (p *PagBank) Name() string {
	return channelName
}

func (p *PagBank) CreatePayment(ctx context.Context, req types.CreatePaymentRequest) (*types.CreatePaymentResult, error) {
	order := &models.PaymentOrder{
		ReferenceID: req.ReferenceID,
		Channel:     channelName,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Status:      models.OrderStatusPending,
		Description: req.Description,
	}
	if err := p.deps.DB.WithContext(ctx).Create(order).Error; err != nil {
		return nil, fmt.Errorf("failed to create payment order: %w", err)
	}

	paymentHashID := utils.EncodePaymentID(order.ID)
	name := req.Description
	if name == "" {
		name = "Mensalidade - Studio Dança"
	}

	checkout, err := p.client.CreateCheckout(ctx,
		paymentHashID,
		Customer{Name: req.CustomerName, Email: req.CustomerEmail, TaxID: req.CustomerTaxID},
		Item{Name: name, Quantity: 1, UnitAmount: req.Amount},
		p.deps.Cfg.BaseURL+"/webhooks/"+channelName,
		p.deps.Cfg.BaseURL+"/payments/"+channelName+"/return/"+paymentHashID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create PagBank checkout: %w", err)
	}

	payLink := checkout.PayLink()
	if payLink == "" {
		return nil, errors.ErrPaymentURLMissing
	}

	err = p.deps.DB.WithContext(ctx).Model(order).Updates(map[string]interface{}{
		"vendor_id":   checkout.ID,
		"payment_url": payLink,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update payment order: %w", err)
	}

	return &types.CreatePaymentResult{
		Success:    true,
		PaymentID:  paymentHashID,
		VendorID:   checkout.ID,
		Amount:     req.Amount,
		Currency:   req.Currency,
		Status:     models.OrderStatusPending,
		PaymentURL: payLink,
		Message:    "Complete o pagamento no PagBank",
	}, nil
}

// HandleWebhook processes PagBank notifications. PagBank usually posts the
// full order object (no event-type envelope); thin notifications carry only
// the order id and the charges are fetched.
func (p *PagBank) HandleWebhook(ctx context.Context, n *types.Notification) (*types.WebhookResult, error) {
	var payload struct {
		ID          string   `json:"id"`
		ReferenceID string   `json:"reference_id"`
		Charges     []Charge `json:"charges"`
	}
	if err := json.Unmarshal(n.Body, &payload); err != nil || payload.ID == "" {
		// not an order notification; nothing to reconcile
		return &types.WebhookResult{Status: "OK", Message: "ignored", Event: n.Event, ID: n.ObjectID}, nil
	}

	if len(payload.Charges) == 0 {
		order, err := p.client.GetOrder(ctx, payload.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch order %s: %w", payload.ID, err)
		}
		payload.ReferenceID = order.ReferenceID
		payload.Charges = order.Charges
	}
	if len(payload.Charges) == 0 {
		return &types.WebhookResult{Status: "OK", Message: "ignored", Event: n.Event, ID: payload.ID}, nil
	}

	charge := payload.Charges[0]
	match := reconcile.Match{Channel: channelName, VendorID: payload.ID}
	if id, err := utils.DecodePaymentHashID(payload.ReferenceID); err == nil {
		match.OrderID = id
	} else {
		match.ReferenceID = payload.ReferenceID
	}

	status := reconcile.MapPagBank(charge.Status)
	detail := charge.PaymentResponse.Code
	if charge.PaymentResponse.Message != "" {
		detail = charge.PaymentResponse.Message
	}

	if _, err := p.deps.Reconciler.Apply(ctx, match, status, detail); err != nil {
		return nil, err
	}

	return &types.WebhookResult{Status: "OK", Event: n.Event, ID: payload.ID}, nil
}
