package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studiodanca/pagamentos/pkg/reports"
)

func (h *Handlers) PaymentsReport(c *gin.Context) {
	f, err := reports.BuildPayments(c.Request.Context(), h.deps.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build report"})
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="pagamentos.xlsx"`)
	if err := f.Write(c.Writer); err != nil {
		h.deps.Log.Error("failed to stream report", "error", err)
	}
}
