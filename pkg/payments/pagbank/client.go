package pagbank

import (
	"context"
	"net/http"

	"github.com/studiodanca/pagamentos/pkg/payments/vendorapi"
)

const (
	apiBase        = "https://api.pagseguro.com"
	apiBaseSandbox = "https://sandbox.api.pagseguro.com"
)

type Client struct {
	api *vendorapi.Caller
}

func NewClient(httpClient *http.Client, baseURL, token string, sandbox bool) *Client {
	base := apiBase
	if sandbox {
		base = apiBaseSandbox
	}
	if baseURL != "" {
		base = baseURL
	}
	return &Client{
		api: &vendorapi.Caller{
			HTTP:    httpClient,
			BaseURL: base,
			Auth: func(ctx context.Context, req *http.Request) error {
				req.Header.Set("Authorization", "Bearer "+token)
				return nil
			},
		},
	}
}

type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	TaxID string `json:"tax_id"`
}

type Item struct {
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	UnitAmount int64  `json:"unit_amount"` // cents
}

type Link struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

type Charge struct {
	ID              string `json:"id"`
	Status          string `json:"status"`
	PaymentResponse struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"payment_response"`
}

type checkoutRequest struct {
	ReferenceID      string   `json:"reference_id"`
	Customer         Customer `json:"customer"`
	Items            []Item   `json:"items"`
	NotificationURLs []string `json:"notification_urls,omitempty"`
	RedirectURL      string   `json:"redirect_url,omitempty"`
}

type Checkout struct {
	ID          string `json:"id"`
	ReferenceID string `json:"reference_id"`
	Status      string `json:"status"`
	Links       []Link `json:"links"`
}

// CreateCheckout creates a hosted checkout; the payer is sent to the link
// with rel PAY.
func (c *Client) CreateCheckout(ctx context.Context, referenceID string, customer Customer, item Item, notificationURL, redirectURL string) (*Checkout, error) {
	req := checkoutRequest{
		ReferenceID: referenceID,
		Customer:    customer,
		Items:       []Item{item},
		RedirectURL: redirectURL,
	}
	if notificationURL != "" {
		req.NotificationURLs = []string{notificationURL}
	}

	var checkout Checkout
	if err := c.api.Do(ctx, http.MethodPost, "/checkouts", req, &checkout); err != nil {
		return nil, err
	}
	return &checkout, nil
}

// PayLink returns the payer-facing URL of a checkout, or "".
func (co *Checkout) PayLink() string {
	for _, link := range co.Links {
		if link.Rel == "PAY" {
			return link.Href
		}
	}
	return ""
}

type Order struct {
	ID          string   `json:"id"`
	ReferenceID string   `json:"reference_id"`
	Charges     []Charge `json:"charges"`
}

func (c *Client) GetOrder(ctx context.Context, id string) (*Order, error) {
	var order Order
	if err := c.api.Do(ctx, http.MethodGet, "/orders/"+id, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}
