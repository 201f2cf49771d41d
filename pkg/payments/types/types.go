package types

import (
	"log/slog"
	"net/http"

	"github.com/studiodanca/pagamentos/pkg/config"
	"github.com/studiodanca/pagamentos/pkg/eventlog"
	"github.com/studiodanca/pagamentos/pkg/events"
	"github.com/studiodanca/pagamentos/pkg/payments/reconcile"
	"github.com/studiodanca/pagamentos/pkg/tokenstore"
	"gorm.io/gorm"
)

// Deps is handed to every channel at Init. All shared handles are injected
// here once at process start; channels never reach for ambient state.
type Deps struct {
	DB         *gorm.DB
	Log        *slog.Logger
	Cfg        *config.AppConfig
	EventLog   *eventlog.Logger
	Tokens     *tokenstore.Store
	Events     *events.Emitter
	Reconciler *reconcile.Reconciler
	HTTP       *http.Client
}

type CreatePaymentRequest struct {
	ReferenceID   string `json:"reference_id"` // enrollment public id
	CustomerName  string `json:"name"`
	CustomerEmail string `json:"email"`
	CustomerTaxID string `json:"tax_id"`
	Amount        int64  `json:"amount"` // cents
	Currency      string `json:"currency"`
	Description   string `json:"description"`
}

type CreatePaymentResult struct {
	Success    bool   `json:"success"`
	PaymentID  string `json:"payment_id"` // public hashid
	VendorID   string `json:"vendor_id"`  // order/charge id on the vendor side
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
	Status     string `json:"status"`
	PaymentURL string `json:"payment_url"`
	Message    string `json:"message"`
}

type WebhookResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Event   string `json:"type,omitempty"`
	ID      string `json:"id,omitempty"`
}

// Reason is the human-readable explanation shown for a declined payment,
// keyed by the vendor's status-detail code.
type Reason struct {
	Title          string `json:"title"`
	Message        string `json:"message"`
	Recommendation string `json:"recommendation"`
}
