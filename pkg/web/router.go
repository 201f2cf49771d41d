package web

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studiodanca/pagamentos/pkg/eventlog"
	"github.com/studiodanca/pagamentos/pkg/payments"
	"github.com/studiodanca/pagamentos/pkg/payments/types"
)

type Handlers struct {
	deps     *types.Deps
	manager  *payments.Manager
	registry *payments.Registry
}

func NewHandlers(deps *types.Deps, manager *payments.Manager, registry *payments.Registry) *Handlers {
	return &Handlers{deps: deps, manager: manager, registry: registry}
}

// NewRouter builds the HTTP surface. Webhook routes use Any because the
// method policy (405 for non-POST, 200 for OPTIONS preflight) is handled
// per-request rather than by route registration.
func NewRouter(h *Handlers) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger(), h.recovery())

	r.Any("/webhooks/:channel", h.Webhook)
	r.POST("/payments/:channel/checkout", h.CreateCheckout)
	r.GET("/payments/:channel/return/:payment_id", h.PaymentReturn)
	r.GET("/oauth/mercadopago/callback", h.MercadoPagoOAuthCallback)
	r.GET("/logs", h.ListLogs)
	r.GET("/reports/payments.xlsx", h.PaymentsReport)

	return r
}

// recovery converts a panic into a logged 500 instead of a dropped
// connection. The webhook handler has its own catch-everything path and
// never reaches this with a non-200.
func (h *Handlers) recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, err any) {
		h.deps.Log.Error("panic in handler",
			"path", c.Request.URL.Path, "panic", err)
		h.deps.EventLog.Log(c.Request.Context(), eventlog.KindError, map[string]any{
			"url":   c.Request.URL.String(),
			"panic": slog.AnyValue(err).String(),
		})
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	})
}
