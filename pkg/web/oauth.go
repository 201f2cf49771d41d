package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/studiodanca/pagamentos/pkg/errors"
	"github.com/studiodanca/pagamentos/pkg/eventlog"
	"github.com/studiodanca/pagamentos/pkg/payments/mercadopago"
)

// MercadoPagoOAuthCallback finishes the authorization flow: exchanges the
// code for a token pair and persists it through the token store.
func (h *Handlers) MercadoPagoOAuthCallback(c *gin.Context) {
	if errParam := c.Query("error"); errParam != "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "authorization denied",
			"details": errParam,
		})
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   apperrors.ErrOAuthCodeMissing.Message,
			"details": "the callback did not include a code parameter",
		})
		return
	}

	mp, ok := h.registry.Get("mercadopago").(*mercadopago.MercadoPago)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "channel unavailable",
			"details": "mercadopago channel is not registered",
		})
		return
	}

	ctx := c.Request.Context()
	tok, err := mp.Client().ExchangeCode(ctx, code)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   apperrors.ErrOAuthExchange.Message,
			"details": err.Error(),
		})
		return
	}

	if err := mp.SaveToken(ctx, tok); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   apperrors.ErrTokenSaveFailed.Message,
			"details": err.Error(),
		})
		return
	}

	h.deps.EventLog.Log(ctx, eventlog.KindRedirect, map[string]string{
		"channel": "mercadopago",
		"note":    "oauth_authorized",
		"user":    tok.VendorUserID,
	})

	renderResultPage(c, "Conta conectada",
		"A conta do Mercado Pago foi conectada com sucesso.", "success")
}
