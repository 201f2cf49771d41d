package models

import (
	"time"

	"github.com/studiodanca/pagamentos/pkg/database"
)

// Order statuses are the internal vocabulary; vendor statuses are mapped
// into these by the reconciler and never stored raw.
const (
	OrderStatusPending  = "pending"
	OrderStatusPaid     = "paid"
	OrderStatusDeclined = "declined"
	OrderStatusExpired  = "expired"
	OrderStatusCanceled = "canceled"
	OrderStatusUnknown  = "unknown"
)

type PaymentOrder struct {
	ID          uint   `gorm:"primaryKey"`
	ReferenceID string `gorm:"size:100;index"` // enrollment public id
	Channel     string `gorm:"size:50;index"`  // mercadopago, pagbank, asaas
	VendorID    string `gorm:"size:100;index"` // order/charge id on the vendor side
	Amount      int64  `gorm:"not null"`       // cents
	Currency    string `gorm:"size:10;default:'BRL'"`
	Status      string `gorm:"size:20;default:'pending'"`

	StatusDetail string `gorm:"size:100"` // vendor status_detail for declined payments
	PaymentURL   string `gorm:"size:500"`
	Description  string `gorm:"size:255"`

	CreatedAt time.Time
	UpdatedAt time.Time
	PaidAt    *time.Time
}

func (p *PaymentOrder) TableName() string {
	return "ds_payment_orders"
}

func init() {
	database.RegisterAutoMigrate(&PaymentOrder{})
}
