// Package reconcile maps vendor status vocabulary to the internal order
// statuses and persists the result. It is the only writer of
// PaymentOrder.Status after checkout creation.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/studiodanca/pagamentos/pkg/events"
	"github.com/studiodanca/pagamentos/pkg/models"
	"github.com/studiodanca/pagamentos/pkg/payments/utils"
	"gorm.io/gorm"
)

// MapPagBank maps PagBank charge statuses.
func MapPagBank(status string) string {
	switch status {
	case "PAID":
		return models.OrderStatusPaid
	case "DECLINED":
		return models.OrderStatusDeclined
	case "EXPIRED":
		return models.OrderStatusExpired
	case "CANCELED":
		return models.OrderStatusCanceled
	case "PENDING", "WAITING", "IN_ANALYSIS", "AUTHORIZED":
		return models.OrderStatusPending
	default:
		return models.OrderStatusUnknown
	}
}

// MapMercadoPago maps Mercado Pago payment statuses.
func MapMercadoPago(status string) string {
	switch status {
	case "approved":
		return models.OrderStatusPaid
	case "rejected":
		return models.OrderStatusDeclined
	case "expired":
		return models.OrderStatusExpired
	case "cancelled", "refunded", "charged_back":
		return models.OrderStatusCanceled
	case "pending", "in_process", "in_mediation", "authorized":
		return models.OrderStatusPending
	default:
		return models.OrderStatusUnknown
	}
}

// MapAsaas maps Asaas payment statuses.
func MapAsaas(status string) string {
	switch status {
	case "RECEIVED", "CONFIRMED", "RECEIVED_IN_CASH":
		return models.OrderStatusPaid
	case "OVERDUE":
		return models.OrderStatusExpired
	case "REFUNDED", "DELETED":
		return models.OrderStatusCanceled
	case "PENDING", "AWAITING_RISK_ANALYSIS":
		return models.OrderStatusPending
	default:
		return models.OrderStatusUnknown
	}
}

// Match identifies the local order a notification refers to. OrderID (ours,
// decoded from the reference we handed the vendor) wins, then the vendor's
// own id, then the enrollment reference.
type Match struct {
	Channel     string
	OrderID     uint
	VendorID    string
	ReferenceID string
}

type Reconciler struct {
	db     *gorm.DB
	log    *slog.Logger
	events *events.Emitter
}

func New(db *gorm.DB, log *slog.Logger, emitter *events.Emitter) *Reconciler {
	return &Reconciler{db: db, log: log, events: emitter}
}

// Apply persists the mapped status onto the matching order. It is
// idempotent: re-applying the same notification leaves the row unchanged.
// Deliveries can arrive out of order; the policy is last-write-wins except
// that a paid order is never downgraded by a later non-paid status.
func (r *Reconciler) Apply(ctx context.Context, m Match, status, detail string) (*models.PaymentOrder, error) {
	order, err := r.find(ctx, m)
	if err != nil {
		return nil, err
	}

	if order.Status == status && order.StatusDetail == detail {
		return order, nil
	}

	if order.Status == models.OrderStatusPaid && status != models.OrderStatusPaid {
		r.log.Warn("[Reconciler] ignoring downgrade of paid order",
			"order", order.ID, "channel", m.Channel, "status", status)
		return order, nil
	}

	becamePaid := status == models.OrderStatusPaid && order.Status != models.OrderStatusPaid

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":        status,
			"status_detail": detail,
		}
		if m.VendorID != "" && order.VendorID == "" {
			updates["vendor_id"] = m.VendorID
		}
		var paidAt time.Time
		if becamePaid {
			paidAt = time.Now()
			updates["paid_at"] = paidAt
		}

		if err := tx.Model(order).Updates(updates).Error; err != nil {
			return err
		}

		if becamePaid {
			event := &events.PaymentConfirmedEvent{
				TX:            tx,
				PaymentID:     utils.EncodePaymentID(order.ID),
				Channel:       order.Channel,
				ReferenceID:   order.ReferenceID,
				Amount:        utils.CentsToDecimal(order.Amount),
				Currency:      order.Currency,
				VendorOrderID: order.VendorID,
				PaidAt:        paidAt,
			}
			if err := r.events.EmitPaymentConfirmed(event); err != nil {
				return fmt.Errorf("payment confirmed handler failed: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order.Status = status
	order.StatusDetail = detail

	r.log.Info("[Reconciler] order status updated",
		"order", order.ID, "channel", order.Channel, "status", status, "detail", detail)
	return order, nil
}

func (r *Reconciler) find(ctx context.Context, m Match) (*models.PaymentOrder, error) {
	var order models.PaymentOrder
	if m.OrderID != 0 {
		err := r.db.WithContext(ctx).
			Where("channel = ?", m.Channel).
			First(&order, m.OrderID).Error
		if err == nil {
			return &order, nil
		}
	}
	if m.VendorID != "" {
		err := r.db.WithContext(ctx).
			Where("channel = ? AND vendor_id = ?", m.Channel, m.VendorID).
			First(&order).Error
		if err == nil {
			return &order, nil
		}
	}
	if m.ReferenceID != "" {
		err := r.db.WithContext(ctx).
			Where("channel = ? AND reference_id = ?", m.Channel, m.ReferenceID).
			First(&order).Error
		if err == nil {
			return &order, nil
		}
	}
	return nil, fmt.Errorf("no order matches channel=%s vendor_id=%s reference_id=%s",
		m.Channel, m.VendorID, m.ReferenceID)
}
