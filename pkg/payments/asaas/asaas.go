package asaas

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/studiodanca/pagamentos/pkg/eventlog"
	"github.com/studiodanca/pagamentos/pkg/models"
	"github.com/studiodanca/pagamentos/pkg/payments/reconcile"
	"github.com/studiodanca/pagamentos/pkg/payments/types"
	"github.com/studiodanca/pagamentos/pkg/payments/utils"
)

const channelName = "asaas"

type Asaas struct {
	deps   *types.Deps
	client *Client
}

func (a *Asaas) Init(deps *types.Deps) error {
	a.deps = deps
	a.client = NewClient(deps.HTTP, deps.Cfg.Asaas.APIBase, deps.Cfg.Asaas.APIKey, deps.Cfg.Asaas.Sandbox)
	return nil
}

func (a *Asaas) Name() string {
	return channelName
}

// Client exposes the vendor client for the subscription flows, which the
// enrollment side drives directly.
func (a *Asaas) Client() *Client {
	return a.client
}

func (a *Asaas) CreatePayment(ctx context.Context, req types.CreatePaymentRequest) (*types.CreatePaymentResult, error) {
	order := &models.PaymentOrder{
		ReferenceID: req.ReferenceID,
		Channel:     channelName,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Status:      models.OrderStatusPending,
		Description: req.Description,
	}
	if err := a.deps.DB.WithContext(ctx).Create(order).Error; err != nil {
		return nil, fmt.Errorf("failed to create payment order: %w", err)
	}

	paymentHashID := utils.EncodePaymentID(order.ID)

	customer, err := a.client.CreateCustomer(ctx, Customer{
		Name:    req.CustomerName,
		Email:   req.CustomerEmail,
		CpfCnpj: req.CustomerTaxID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Asaas customer: %w", err)
	}

	description := req.Description
	if description == "" {
		description = "Mensalidade - Studio Dança"
	}

	payment, err := a.client.CreateCharge(ctx,
		customer.ID,
		float64(req.Amount)/100,
		time.Now().AddDate(0, 0, 3).Format("2006-01-02"),
		description,
		paymentHashID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Asaas charge: %w", err)
	}

	err = a.deps.DB.WithContext(ctx).Model(order).Updates(map[string]interface{}{
		"vendor_id":   payment.ID,
		"payment_url": payment.InvoiceURL,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update payment order: %w", err)
	}

	return &types.CreatePaymentResult{
		Success:    true,
		PaymentID:  paymentHashID,
		VendorID:   payment.ID,
		Amount:     req.Amount,
		Currency:   req.Currency,
		Status:     models.OrderStatusPending,
		PaymentURL: payment.InvoiceURL,
		Message:    "Complete o pagamento pela fatura Asaas",
	}, nil
}

// HandleWebhook processes Asaas notifications. Asaas wraps everything in
// {event: "PAYMENT_...", payment: {...}}; the generic parser already pulled
// event and payment.id out.
func (a *Asaas) HandleWebhook(ctx context.Context, n *types.Notification) (*types.WebhookResult, error) {
	if !strings.HasPrefix(n.Event, "PAYMENT_") || n.ObjectID == "" {
		a.deps.EventLog.Log(ctx, eventlog.KindWebhook, map[string]string{
			"channel": channelName,
			"note":    "unknown_notification_type",
			"event":   n.Event,
			"id":      n.ObjectID,
		})
		return &types.WebhookResult{Status: "OK", Message: "ignored", Event: n.Event, ID: n.ObjectID}, nil
	}

	payment, err := a.client.GetPayment(ctx, n.ObjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payment %s: %w", n.ObjectID, err)
	}

	match := reconcile.Match{Channel: channelName, VendorID: payment.ID}
	if id, err := utils.DecodePaymentHashID(payment.ExternalReference); err == nil {
		match.OrderID = id
	} else {
		match.ReferenceID = payment.ExternalReference
	}

	// Asaas carries no decline-reason code, so status_detail stays empty
	status := reconcile.MapAsaas(payment.Status)
	if _, err := a.deps.Reconciler.Apply(ctx, match, status, ""); err != nil {
		return nil, err
	}

	return &types.WebhookResult{Status: "OK", Event: n.Event, ID: payment.ID}, nil
}
