package web

import (
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ListLogs returns the operational event log, newest first. Browsers asking
// for text/html get a minimal rendering; everything else gets JSON.
func (h *Handlers) ListLogs(c *gin.Context) {
	entries, err := h.deps.EventLog.List(c.Request.Context(), false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read log"})
		return
	}

	if !strings.Contains(c.GetHeader("Accept"), "text/html") {
		c.JSON(http.StatusOK, entries)
		return
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><head><meta charset=\"UTF-8\"><title>Eventos</title></head><body>")
	b.WriteString("<h1>Eventos recentes</h1><table border=\"1\" cellpadding=\"4\">")
	b.WriteString("<tr><th>Quando</th><th>Tipo</th><th>Dados</th></tr>")
	for _, entry := range entries {
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td><code>%s</code></td></tr>",
			entry.CreatedAt.Format("02/01/2006 15:04:05"),
			html.EscapeString(entry.Kind),
			html.EscapeString(entry.Payload))
	}
	b.WriteString("</table></body></html>")

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, b.String())
}
