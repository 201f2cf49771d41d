package web_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/studiodanca/pagamentos/pkg/config"
	"github.com/studiodanca/pagamentos/pkg/database"
	"github.com/studiodanca/pagamentos/pkg/eventlog"
	"github.com/studiodanca/pagamentos/pkg/events"
	"github.com/studiodanca/pagamentos/pkg/idempotency"
	"github.com/studiodanca/pagamentos/pkg/models"
	"github.com/studiodanca/pagamentos/pkg/payments"
	"github.com/studiodanca/pagamentos/pkg/payments/reconcile"
	"github.com/studiodanca/pagamentos/pkg/payments/types"
	"github.com/studiodanca/pagamentos/pkg/payments/utils"
	"github.com/studiodanca/pagamentos/pkg/tokenstore"
	"github.com/studiodanca/pagamentos/pkg/web"
)

// newTestApp wires the full stack against a temp sqlite database, with every
// vendor base URL pointed at the given fake. vendor may be nil for tests
// that never reach a vendor API.
func newTestApp(t *testing.T, vendor http.Handler) (*gin.Engine, *types.Deps) {
	t.Helper()

	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "web.db"))
	if err != nil {
		t.Fatal(err)
	}

	vendorURL := ""
	if vendor != nil {
		server := httptest.NewServer(vendor)
		t.Cleanup(server.Close)
		vendorURL = server.URL
	}

	cfg := &config.AppConfig{BaseURL: "http://localhost:8080"}
	cfg.MercadoPago.AccessToken = "test-token"
	cfg.MercadoPago.APIBase = vendorURL
	cfg.MercadoPago.ClientID = "client-1"
	cfg.MercadoPago.ClientSecret = "secret-1"
	cfg.PagBank.Token = "pb-token"
	cfg.PagBank.APIBase = vendorURL
	cfg.Asaas.APIKey = "asaas-key"
	cfg.Asaas.APIBase = vendorURL

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	emitter := events.NewEmitter()
	deps := &types.Deps{
		DB:         db,
		Log:        log,
		Cfg:        cfg,
		EventLog:   eventlog.New(db, log),
		Tokens:     tokenstore.New(db, log),
		Events:     emitter,
		Reconciler: reconcile.New(db, log, emitter),
		HTTP:       &http.Client{Timeout: 5 * time.Second},
	}

	registry, err := payments.NewRegistry(deps)
	if err != nil {
		t.Fatal(err)
	}
	manager := payments.NewManager(deps, registry, idempotency.NewMemoryStore(time.Hour))

	return web.NewRouter(web.NewHandlers(deps, manager, registry)), deps
}

func doRequest(t *testing.T, r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func logContains(t *testing.T, deps *types.Deps, kind eventlog.Kind, fragment string) bool {
	t.Helper()
	entries, err := deps.EventLog.List(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if entry.Kind == string(kind) && strings.Contains(entry.Payload, fragment) {
			return true
		}
	}
	return false
}

func TestWebhook_MethodPolicy(t *testing.T) {
	r, _ := newTestApp(t, nil)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodPatch} {
		w := doRequest(t, r, method, "/webhooks/mercadopago", "")
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s: expected 405, got %d", method, w.Code)
		}
	}

	w := doRequest(t, r, http.MethodOptions, "/webhooks/mercadopago", "")
	if w.Code != http.StatusOK {
		t.Fatalf("OPTIONS: expected 200, got %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Fatalf("OPTIONS: expected empty body, got %q", w.Body.String())
	}
	if w.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Fatal("OPTIONS: expected CORS headers")
	}
}

func TestWebhook_RejectedPaymentIsLoggedWithReason(t *testing.T) {
	var externalReference string
	vendor := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.URL.Path == "/v1/payments/abc123" {
			json.NewEncoder(w).Encode(map[string]any{
				"id":                 12345,
				"status":             "rejected",
				"status_detail":      "cc_rejected_insufficient_amount",
				"external_reference": externalReference,
			})
			return
		}
		http.NotFound(w, r)
	})

	r, deps := newTestApp(t, vendor)

	order := &models.PaymentOrder{
		ReferenceID: "en-turma1",
		Channel:     "mercadopago",
		Amount:      8000,
		Currency:    "BRL",
		Status:      models.OrderStatusPending,
	}
	if err := deps.DB.Create(order).Error; err != nil {
		t.Fatal(err)
	}
	externalReference = utils.EncodePaymentID(order.ID)

	w := doRequest(t, r, http.MethodPost, "/webhooks/mercadopago",
		`{"type":"payment.updated","data":{"id":"abc123"}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp types.WebhookResult
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "OK" || resp.Event != "payment.updated" || resp.ID != "abc123" {
		t.Fatalf("unexpected response %+v", resp)
	}

	var got models.PaymentOrder
	if err := deps.DB.First(&got, order.ID).Error; err != nil {
		t.Fatal(err)
	}
	if got.Status != models.OrderStatusDeclined {
		t.Fatalf("expected declined order, got %q", got.Status)
	}
	if got.StatusDetail != "cc_rejected_insufficient_amount" {
		t.Fatalf("expected vendor detail preserved, got %q", got.StatusDetail)
	}
	if got.VendorID != "12345" {
		t.Fatalf("expected vendor id backfilled, got %q", got.VendorID)
	}

	if !logContains(t, deps, eventlog.KindPaymentEvent, "Saldo insuficiente") {
		t.Fatal("expected a payment_rejected log entry with the decline reason")
	}
}

func TestWebhook_VendorFailureStillAnswers200(t *testing.T) {
	vendor := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"internal error"}`, http.StatusInternalServerError)
	})
	r, deps := newTestApp(t, vendor)

	w := doRequest(t, r, http.MethodPost, "/webhooks/mercadopago",
		`{"type":"payment.updated","data":{"id":"abc123"}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 despite vendor failure, got %d", w.Code)
	}

	var resp struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "Error processed" || resp.Error == "" {
		t.Fatalf("unexpected error response %+v", resp)
	}

	if !logContains(t, deps, eventlog.KindError, "abc123") {
		t.Fatal("expected an error log entry for the failed delivery")
	}
}

func TestWebhook_DuplicateDeliveryIgnored(t *testing.T) {
	var externalReference string
	fetches := 0
	vendor := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.URL.Path == "/v1/payments/777" {
			fetches++
			json.NewEncoder(w).Encode(map[string]any{
				"id":                 777,
				"status":             "approved",
				"status_detail":      "accredited",
				"external_reference": externalReference,
			})
			return
		}
		http.NotFound(w, r)
	})

	r, deps := newTestApp(t, vendor)

	order := &models.PaymentOrder{
		ReferenceID: "en-turma2",
		Channel:     "mercadopago",
		Amount:      5000,
		Currency:    "BRL",
		Status:      models.OrderStatusPending,
	}
	if err := deps.DB.Create(order).Error; err != nil {
		t.Fatal(err)
	}
	externalReference = utils.EncodePaymentID(order.ID)

	// a redelivery reuses the notification id
	body := `{"id":555,"type":"payment.updated","data":{"id":"777"}}`
	first := doRequest(t, r, http.MethodPost, "/webhooks/mercadopago", body)
	second := doRequest(t, r, http.MethodPost, "/webhooks/mercadopago", body)
	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("expected 200/200, got %d/%d", first.Code, second.Code)
	}

	var resp types.WebhookResult
	if err := json.Unmarshal(second.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Message != "duplicate delivery ignored" {
		t.Fatalf("expected duplicate to be ignored, got %+v", resp)
	}
	if fetches != 1 {
		t.Fatalf("expected exactly one vendor fetch, got %d", fetches)
	}

	var got models.PaymentOrder
	if err := deps.DB.First(&got, order.ID).Error; err != nil {
		t.Fatal(err)
	}
	if got.Status != models.OrderStatusPaid {
		t.Fatalf("expected paid order, got %q", got.Status)
	}
	if got.PaidAt == nil {
		t.Fatal("expected paid_at to be set")
	}
}

func TestWebhook_StatusTransitionsReconcilePerDelivery(t *testing.T) {
	// the vendor-side status progresses between two byte-identical
	// notifications for the same payment; both must be fetched
	var externalReference string
	statuses := []string{"pending", "approved"}
	fetches := 0
	vendor := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.URL.Path == "/v1/payments/888" {
			status := statuses[len(statuses)-1]
			if fetches < len(statuses) {
				status = statuses[fetches]
			}
			fetches++
			json.NewEncoder(w).Encode(map[string]any{
				"id":                 888,
				"status":             status,
				"external_reference": externalReference,
			})
			return
		}
		http.NotFound(w, r)
	})

	r, deps := newTestApp(t, vendor)

	order := &models.PaymentOrder{
		ReferenceID: "en-turma5",
		Channel:     "mercadopago",
		Amount:      7000,
		Currency:    "BRL",
		Status:      models.OrderStatusPending,
	}
	if err := deps.DB.Create(order).Error; err != nil {
		t.Fatal(err)
	}
	externalReference = utils.EncodePaymentID(order.ID)

	body := `{"type":"payment.updated","data":{"id":"888"}}`
	first := doRequest(t, r, http.MethodPost, "/webhooks/mercadopago", body)
	second := doRequest(t, r, http.MethodPost, "/webhooks/mercadopago", body)
	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("expected 200/200, got %d/%d", first.Code, second.Code)
	}
	if fetches != 2 {
		t.Fatalf("expected both deliveries to fetch the vendor, got %d", fetches)
	}

	var got models.PaymentOrder
	if err := deps.DB.First(&got, order.ID).Error; err != nil {
		t.Fatal(err)
	}
	if got.Status != models.OrderStatusPaid {
		t.Fatalf("order status is %q, want %q", got.Status, models.OrderStatusPaid)
	}
}

func TestWebhook_FailedDeliveryIsReprocessedOnRetry(t *testing.T) {
	var externalReference string
	fetches := 0
	vendor := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.URL.Path == "/v1/payments/999" {
			fetches++
			if fetches == 1 {
				http.Error(w, `{"message":"internal error"}`, http.StatusInternalServerError)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"id":                 999,
				"status":             "approved",
				"external_reference": externalReference,
			})
			return
		}
		http.NotFound(w, r)
	})

	r, deps := newTestApp(t, vendor)

	order := &models.PaymentOrder{
		ReferenceID: "en-turma6",
		Channel:     "mercadopago",
		Amount:      6000,
		Currency:    "BRL",
		Status:      models.OrderStatusPending,
	}
	if err := deps.DB.Create(order).Error; err != nil {
		t.Fatal(err)
	}
	externalReference = utils.EncodePaymentID(order.ID)

	body := `{"id":3001,"type":"payment.updated","data":{"id":"999"}}`
	first := doRequest(t, r, http.MethodPost, "/webhooks/mercadopago", body)
	if first.Code != http.StatusOK {
		t.Fatalf("expected 200 for the failed delivery, got %d", first.Code)
	}
	if !strings.Contains(first.Body.String(), "Error processed") {
		t.Fatalf("expected processed-error response, got %s", first.Body.String())
	}

	// the vendor retries the same delivery; it must not be treated as a
	// duplicate of the failed attempt
	second := doRequest(t, r, http.MethodPost, "/webhooks/mercadopago", body)
	if second.Code != http.StatusOK {
		t.Fatalf("expected 200 for the retry, got %d", second.Code)
	}

	var resp types.WebhookResult
	if err := json.Unmarshal(second.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Message == "duplicate delivery ignored" {
		t.Fatal("retry of a failed delivery was dropped as a duplicate")
	}
	if fetches != 2 {
		t.Fatalf("expected the retry to fetch the vendor, got %d fetches", fetches)
	}

	var got models.PaymentOrder
	if err := deps.DB.First(&got, order.ID).Error; err != nil {
		t.Fatal(err)
	}
	if got.Status != models.OrderStatusPaid {
		t.Fatalf("order status is %q, want %q", got.Status, models.OrderStatusPaid)
	}
}

func TestWebhook_UnknownEventIsAcceptedAndLogged(t *testing.T) {
	r, deps := newTestApp(t, nil)

	w := doRequest(t, r, http.MethodPost, "/webhooks/mercadopago",
		`{"type":"plan.updated","data":{"id":"p-1"}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp types.WebhookResult
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "OK" || resp.Message != "ignored" {
		t.Fatalf("unexpected response %+v", resp)
	}

	if !logContains(t, deps, eventlog.KindWebhook, "unknown_notification_type") {
		t.Fatal("expected an unknown_notification_type log entry")
	}
}

func TestWebhook_UnknownChannelStillAnswers200(t *testing.T) {
	r, _ := newTestApp(t, nil)

	w := doRequest(t, r, http.MethodPost, "/webhooks/paypal",
		`{"type":"payment","data":{"id":"1"}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Error processed") {
		t.Fatalf("expected processed-error response, got %s", w.Body.String())
	}
}

func TestWebhook_PagBankChargeNotification(t *testing.T) {
	r, deps := newTestApp(t, nil)

	order := &models.PaymentOrder{
		ReferenceID: "en-turma3",
		Channel:     "pagbank",
		Amount:      12000,
		Currency:    "BRL",
		Status:      models.OrderStatusPending,
	}
	if err := deps.DB.Create(order).Error; err != nil {
		t.Fatal(err)
	}

	body := `{"id":"ORDE_1","reference_id":"` + utils.EncodePaymentID(order.ID) + `",` +
		`"charges":[{"id":"CHAR_1","status":"PAID","payment_response":{"code":"20000","message":"SUCESSO"}}]}`
	w := doRequest(t, r, http.MethodPost, "/webhooks/pagbank", body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var got models.PaymentOrder
	if err := deps.DB.First(&got, order.ID).Error; err != nil {
		t.Fatal(err)
	}
	if got.Status != models.OrderStatusPaid {
		t.Fatalf("expected paid order, got %q", got.Status)
	}
	if got.VendorID != "ORDE_1" {
		t.Fatalf("expected vendor id from notification, got %q", got.VendorID)
	}
}

func TestWebhook_AsaasPaymentConfirmed(t *testing.T) {
	var externalReference string
	vendor := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.URL.Path == "/payments/pay_1" {
			json.NewEncoder(w).Encode(map[string]any{
				"id":                "pay_1",
				"status":            "RECEIVED",
				"externalReference": externalReference,
			})
			return
		}
		http.NotFound(w, r)
	})

	r, deps := newTestApp(t, vendor)

	order := &models.PaymentOrder{
		ReferenceID: "en-turma7",
		Channel:     "asaas",
		Amount:      15000,
		Currency:    "BRL",
		Status:      models.OrderStatusPending,
	}
	if err := deps.DB.Create(order).Error; err != nil {
		t.Fatal(err)
	}
	externalReference = utils.EncodePaymentID(order.ID)

	w := doRequest(t, r, http.MethodPost, "/webhooks/asaas",
		`{"event":"PAYMENT_RECEIVED","payment":{"id":"pay_1"}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var got models.PaymentOrder
	if err := deps.DB.First(&got, order.ID).Error; err != nil {
		t.Fatal(err)
	}
	if got.Status != models.OrderStatusPaid {
		t.Fatalf("expected paid order, got %q", got.Status)
	}
	if got.VendorID != "pay_1" {
		t.Fatalf("expected vendor id backfilled, got %q", got.VendorID)
	}
	// Asaas has no decline-reason vocabulary; the raw vendor status must not
	// leak into status_detail
	if got.StatusDetail != "" {
		t.Fatalf("expected empty status detail, got %q", got.StatusDetail)
	}
}

func TestWebhook_PagBankThinNotificationFetchesOrder(t *testing.T) {
	var referenceID string
	vendor := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.URL.Path == "/orders/ORDE_2" {
			json.NewEncoder(w).Encode(map[string]any{
				"id":           "ORDE_2",
				"reference_id": referenceID,
				"charges": []map[string]any{
					{"id": "CHAR_2", "status": "DECLINED",
						"payment_response": map[string]string{"code": "10002", "message": "CARTAO EXPIRADO"}},
				},
			})
			return
		}
		http.NotFound(w, r)
	})

	r, deps := newTestApp(t, vendor)

	order := &models.PaymentOrder{
		ReferenceID: "en-turma4",
		Channel:     "pagbank",
		Amount:      9000,
		Currency:    "BRL",
		Status:      models.OrderStatusPending,
	}
	if err := deps.DB.Create(order).Error; err != nil {
		t.Fatal(err)
	}
	referenceID = utils.EncodePaymentID(order.ID)

	w := doRequest(t, r, http.MethodPost, "/webhooks/pagbank", `{"id":"ORDE_2"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var got models.PaymentOrder
	if err := deps.DB.First(&got, order.ID).Error; err != nil {
		t.Fatal(err)
	}
	if got.Status != models.OrderStatusDeclined {
		t.Fatalf("expected declined order, got %q", got.Status)
	}
	if got.StatusDetail != "CARTAO EXPIRADO" {
		t.Fatalf("expected vendor message as detail, got %q", got.StatusDetail)
	}
}

func TestListLogs_JSONNewestFirst(t *testing.T) {
	r, deps := newTestApp(t, nil)

	deps.EventLog.Log(context.Background(), eventlog.KindWebhook, map[string]string{"n": "first"})
	deps.EventLog.Log(context.Background(), eventlog.KindWebhook, map[string]string{"n": "second"})

	w := doRequest(t, r, http.MethodGet, "/logs", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var entries []models.EventLog
	if err := json.Unmarshal(w.Body.Bytes(), &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if !strings.Contains(entries[0].Payload, "second") {
		t.Fatalf("expected newest first, got %q", entries[0].Payload)
	}
}

func TestListLogs_HTMLForBrowsers(t *testing.T) {
	r, deps := newTestApp(t, nil)
	deps.EventLog.Log(context.Background(), eventlog.KindRedirect, map[string]string{"payment": "pm-x"})

	req := httptest.NewRequest(http.MethodGet, "/logs", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Content-Type"), "text/html") {
		t.Fatalf("expected html, got %q", w.Header().Get("Content-Type"))
	}
	if !strings.Contains(w.Body.String(), "redirect") {
		t.Fatal("expected the entry kind in the rendered table")
	}
}
