package web

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studiodanca/pagamentos/pkg/eventlog"
	"github.com/studiodanca/pagamentos/pkg/payments/types"
)

// Webhook receives vendor notifications. Processing failures still answer
// HTTP 200: the vendors treat any non-200 as "retry", and uncontrolled
// redelivery of a partially applied notification is worse than swallowing
// the error and diagnosing from the event log.
func (h *Handlers) Webhook(c *gin.Context) {
	switch c.Request.Method {
	case http.MethodOptions:
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		c.Status(http.StatusOK)
		return
	case http.MethodPost:
	default:
		c.Status(http.StatusMethodNotAllowed)
		return
	}

	channel := c.Param("channel")
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		body = nil
	}

	n := types.ParseNotification(channel, c.Request.URL.Query(), body, c.Request.URL.String())

	result, err := h.manager.ProcessWebhook(c.Request.Context(), channel, n)
	if err != nil {
		h.deps.EventLog.Log(c.Request.Context(), eventlog.KindError, map[string]string{
			"channel": channel,
			"url":     c.Request.URL.String(),
			"body":    string(body),
			"error":   err.Error(),
		})
		c.JSON(http.StatusOK, gin.H{"status": "Error processed", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
