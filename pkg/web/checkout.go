package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studiodanca/pagamentos/pkg/eventlog"
	"github.com/studiodanca/pagamentos/pkg/models"
	"github.com/studiodanca/pagamentos/pkg/payments/types"
)

func (h *Handlers) CreateCheckout(c *gin.Context) {
	var req types.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.manager.CreatePayment(c.Request.Context(), c.Param("channel"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// PaymentReturn is where the vendor sends the payer back after checkout. It
// only renders a result page; the authoritative status comes through the
// webhook, not through this redirect.
func (h *Handlers) PaymentReturn(c *gin.Context) {
	paymentHashID := c.Param("payment_id")

	h.deps.EventLog.Log(c.Request.Context(), eventlog.KindRedirect, map[string]string{
		"channel": c.Param("channel"),
		"payment": paymentHashID,
		"url":     c.Request.URL.String(),
	})

	order, err := h.manager.GetPaymentOrder(c.Request.Context(), paymentHashID)
	if err != nil {
		renderResultPage(c, "Pagamento não encontrado",
			"Não localizamos este pagamento. Fale com a secretaria.", "error")
		return
	}

	switch order.Status {
	case models.OrderStatusPaid:
		renderResultPage(c, "Pagamento confirmado",
			"Recebemos a confirmação do pagamento. Obrigado!", "success")
	case models.OrderStatusDeclined:
		renderResultPage(c, "Pagamento recusado",
			"O pagamento foi recusado. Tente novamente com outro meio de pagamento.", "error")
	default:
		renderResultPage(c, "Pagamento em processamento",
			"Assim que o pagamento for confirmado a matrícula será atualizada.", "pending")
	}
}
