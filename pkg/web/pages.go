package web

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// renderResultPage shows the payer a small self-contained result page after
// a redirect flow. The page notifies an opener window via postMessage so
// the dashboard can refresh without polling.
func renderResultPage(c *gin.Context, title, message, kind string) {
	var icon, color string
	switch kind {
	case "success":
		icon, color = "✓", "#16a34a"
	case "error":
		icon, color = "✗", "#dc2626"
	default:
		icon, color = "⏳", "#ca8a04"
	}

	page := fmt.Sprintf(`<!DOCTYPE html>
<html lang="pt-BR">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
</head>
<body style="font-family: sans-serif; background: #f3f4f6; display: flex; align-items: center; justify-content: center; height: 100vh; margin: 0;">
    <div style="background: white; border-radius: 8px; box-shadow: 0 2px 8px rgba(0,0,0,0.1); padding: 32px; max-width: 400px; text-align: center;">
        <div style="font-size: 48px; color: %s;">%s</div>
        <h1 style="font-size: 18px; color: #111827;">%s</h1>
        <p style="font-size: 14px; color: #6b7280;">%s</p>
        <button onclick="window.close()" style="background: #2563eb; color: white; border: none; border-radius: 4px; padding: 8px 16px; cursor: pointer;">Fechar</button>
    </div>
    <script>
        if (window.opener) {
            window.opener.postMessage({type: 'payment_result', kind: '%s'}, '*');
        }
    </script>
</body>
</html>`, title, color, icon, title, message, kind)

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, page)
}
