package mercadopago

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/studiodanca/pagamentos/pkg/eventlog"
	"github.com/studiodanca/pagamentos/pkg/events"
	"github.com/studiodanca/pagamentos/pkg/models"
	"github.com/studiodanca/pagamentos/pkg/payments/reconcile"
	"github.com/studiodanca/pagamentos/pkg/payments/types"
	"github.com/studiodanca/pagamentos/pkg/payments/utils"
	"github.com/studiodanca/pagamentos/pkg/tokenstore"
)

const channelName = "mercadopago"

type MercadoPago struct {
	deps   *types.Deps
	client *Client
}

func (mp *MercadoPago) Init(deps *types.Deps) error {
	mp.deps = deps
	cfg := deps.Cfg.MercadoPago

	mp.client = NewClient(deps.HTTP, cfg.APIBase, cfg.ClientID, cfg.ClientSecret, cfg.RedirectURL,
		func(ctx context.Context) (string, error) {
			// prefer the OAuth pair managed by the token store; a deploy
			// without the OAuth flow runs on the static access token
			tok, err := deps.Tokens.AccessToken(ctx, channelName, mp.client)
			if err == nil {
				return tok, nil
			}
			if cfg.AccessToken != "" {
				return cfg.AccessToken, nil
			}
			return "", err
		})

	return nil
}

func (mp *MercadoPago) Name() string {
	return channelName
}

// Client exposes the vendor client for the OAuth callback flow.
func (mp *MercadoPago) Client() *Client {
	return mp.client
}

// SaveToken persists a token pair obtained from the OAuth callback.
func (mp *MercadoPago) SaveToken(ctx context.Context, tok *tokenstore.Token) error {
	return mp.deps.Tokens.Save(ctx, channelName, tok)
}

func (mp *MercadoPago) CreatePayment(ctx context.Context, req types.CreatePaymentRequest) (*types.CreatePaymentResult, error) {
	order := &models.PaymentOrder{
		ReferenceID: req.ReferenceID,
		Channel:     channelName,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Status:      models.OrderStatusPending,
		Description: req.Description,
	}
	if err := mp.deps.DB.WithContext(ctx).Create(order).Error; err != nil {
		return nil, fmt.Errorf("failed to create payment order: %w", err)
	}

	paymentHashID := utils.EncodePaymentID(order.ID)
	title := req.Description
	if title == "" {
		title = "Mensalidade - Studio Dança"
	}

	pref, err := mp.client.CreatePreference(ctx,
		title,
		paymentHashID,
		req.Currency,
		float64(req.Amount)/100,
		mp.deps.Cfg.BaseURL+"/payments/"+channelName+"/return/"+paymentHashID,
		mp.deps.Cfg.BaseURL+"/webhooks/"+channelName,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Mercado Pago preference: %w", err)
	}

	err = mp.deps.DB.WithContext(ctx).Model(order).Updates(map[string]interface{}{
		"vendor_id":   pref.ID,
		"payment_url": pref.InitPoint,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update payment order: %w", err)
	}

	return &types.CreatePaymentResult{
		Success:    true,
		PaymentID:  paymentHashID,
		VendorID:   pref.ID,
		Amount:     req.Amount,
		Currency:   req.Currency,
		Status:     models.OrderStatusPending,
		PaymentURL: pref.InitPoint,
		Message:    "Complete o pagamento no Mercado Pago",
	}, nil
}

func (mp *MercadoPago) HandleWebhook(ctx context.Context, n *types.Notification) (*types.WebhookResult, error) {
	switch n.Kind {
	case types.EventPayment:
		return mp.handlePaymentEvent(ctx, n)
	case types.EventOrder:
		return mp.handleOrderEvent(ctx, n)
	default:
		mp.deps.EventLog.Log(ctx, eventlog.KindWebhook, map[string]string{
			"channel": channelName,
			"note":    "unknown_notification_type",
			"event":   n.Event,
			"id":      n.ObjectID,
		})
		return &types.WebhookResult{Status: "OK", Message: "ignored", Event: n.Event, ID: n.ObjectID}, nil
	}
}

func (mp *MercadoPago) handlePaymentEvent(ctx context.Context, n *types.Notification) (*types.WebhookResult, error) {
	if n.ObjectID == "" {
		return nil, fmt.Errorf("payment notification without object id")
	}

	payment, err := mp.client.GetPayment(ctx, n.ObjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payment %s: %w", n.ObjectID, err)
	}

	match := reconcile.Match{
		Channel:  channelName,
		VendorID: strconv.FormatInt(payment.ID, 10),
	}
	if id, err := utils.DecodePaymentHashID(payment.ExternalReference); err == nil {
		match.OrderID = id
	} else {
		match.ReferenceID = payment.ExternalReference
	}

	status := reconcile.MapMercadoPago(payment.Status)
	if _, err := mp.deps.Reconciler.Apply(ctx, match, status, payment.StatusDetail); err != nil {
		return nil, err
	}

	if status == models.OrderStatusDeclined {
		reason := ReasonFor(payment.StatusDetail)
		mp.deps.EventLog.Log(ctx, eventlog.KindPaymentEvent, map[string]any{
			"channel":        channelName,
			"note":           "payment_rejected",
			"payment_id":     payment.ID,
			"status_detail":  payment.StatusDetail,
			"title":          reason.Title,
			"message":        reason.Message,
			"recommendation": reason.Recommendation,
		})
	}

	return &types.WebhookResult{Status: "OK", Event: n.Event, ID: n.ObjectID}, nil
}

// handleOrderEvent logs merchant-order notifications verbatim and forwards
// them; the enrollment side of the dashboard consumes them, not this
// service.
func (mp *MercadoPago) handleOrderEvent(ctx context.Context, n *types.Notification) (*types.WebhookResult, error) {
	payload := map[string]any{
		"channel": channelName,
		"event":   n.Event,
		"id":      n.ObjectID,
		"payload": json.RawMessage(n.Body),
	}
	if n.ObjectID != "" {
		// best-effort enrichment; the raw payload is the record either way
		if order, err := mp.client.GetMerchantOrder(ctx, n.ObjectID); err == nil {
			payload["order_status"] = order.OrderStatus
			payload["reference"] = order.ExternalReference
		}
	}
	mp.deps.EventLog.Log(ctx, eventlog.KindWebhook, payload)

	err := mp.deps.Events.EmitWebhookForwarded(&events.WebhookForwardedEvent{
		Channel:    channelName,
		EventType:  n.Event,
		ObjectID:   n.ObjectID,
		RawPayload: json.RawMessage(n.Body),
		ReceivedAt: time.Now(),
	})
	if err != nil {
		// forwarding is best-effort; the verbatim log above is the record
		mp.deps.Log.Warn("[MercadoPago] failed to forward merchant order event", "error", err)
	}

	return &types.WebhookResult{Status: "OK", Event: n.Event, ID: n.ObjectID}, nil
}
