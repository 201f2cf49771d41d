package asaas

import (
	"context"
	"net/http"

	"github.com/studiodanca/pagamentos/pkg/payments/vendorapi"
)

const (
	apiBase        = "https://api.asaas.com/v3"
	apiBaseSandbox = "https://api-sandbox.asaas.com/v3"
)

type Client struct {
	api *vendorapi.Caller
}

func NewClient(httpClient *http.Client, baseURL, apiKey string, sandbox bool) *Client {
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
				req.Header.Set("access_token", apiKey)
				return nil
			},
		},
	}
}

type Customer struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	CpfCnpj string `json:"cpfCnpj"`
}

func (c *Client) CreateCustomer(ctx context.Context, customer Customer) (*Customer, error) {
	var created Customer
	if err := c.api.Do(ctx, http.MethodPost, "/customers", customer, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

type chargeRequest struct {
	Customer          string  `json:"customer"`
	BillingType       string  `json:"billingType"`
	Value             float64 `json:"value"` // currency units
	DueDate           string  `json:"dueDate"`
	Description       string  `json:"description,omitempty"`
	ExternalReference string  `json:"externalReference,omitempty"`
}

type Payment struct {
	ID                string  `json:"id"`
	Customer          string  `json:"customer"`
	Status            string  `json:"status"`
	Value             float64 `json:"value"`
	InvoiceURL        string  `json:"invoiceUrl"`
	ExternalReference string  `json:"externalReference"`
}

// CreateCharge creates a charge the payer settles through its invoice URL.
// BillingType UNDEFINED lets the payer pick pix, boleto or card there.
func (c *Client) CreateCharge(ctx context.Context, customerID string, value float64, dueDate, description, externalReference string) (*Payment, error) {
	req := chargeRequest{
		Customer:          customerID,
		BillingType:       "UNDEFINED",
		Value:             value,
		DueDate:           dueDate,
		Description:       description,
		ExternalReference: externalReference,
	}
	var payment Payment
	if err := c.api.Do(ctx, http.MethodPost, "/payments", req, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (c *Client) GetPayment(ctx context.Context, id string) (*Payment, error) {
	var payment Payment
	if err := c.api.Do(ctx, http.MethodGet, "/payments/"+id, nil, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

type CreditCard struct {
	HolderName  string `json:"holderName"`
	Number      string `json:"number"`
	ExpiryMonth string `json:"expiryMonth"`
	ExpiryYear  string `json:"expiryYear"`
	Ccv         string `json:"ccv"`
}

type cardTokenRequest struct {
	Customer   string     `json:"customer"`
	CreditCard CreditCard `json:"creditCard"`
}

type CardToken struct {
	CreditCardToken  string `json:"creditCardToken"`
	CreditCardNumber string `json:"creditCardNumber"` // last four digits
	CreditCardBrand  string `json:"creditCardBrand"`
}

// TokenizeCard stores card data with the vendor and returns a reusable
// token; raw card data is never persisted locally.
func (c *Client) TokenizeCard(ctx context.Context, customerID string, card CreditCard) (*CardToken, error) {
	var token CardToken
	err := c.api.Do(ctx, http.MethodPost, "/creditCard/tokenize",
		cardTokenRequest{Customer: customerID, CreditCard: card}, &token)
	if err != nil {
		return nil, err
	}
	return &token, nil
}

type subscriptionRequest struct {
	Customer          string  `json:"customer"`
	BillingType       string  `json:"billingType"`
	Value             float64 `json:"value"`
	NextDueDate       string  `json:"nextDueDate"`
	Cycle             string  `json:"cycle"`
	Description       string  `json:"description,omitempty"`
	ExternalReference string  `json:"externalReference,omitempty"`
	CreditCardToken   string  `json:"creditCardToken,omitempty"`
}

type Subscription struct {
	ID          string  `json:"id"`
	Customer    string  `json:"customer"`
	Status      string  `json:"status"`
	Value       float64 `json:"value"`
	NextDueDate string  `json:"nextDueDate"`
}

// CreateSubscription creates a monthly recurring charge for an enrollment.
func (c *Client) CreateSubscription(ctx context.Context, customerID string, value float64, nextDueDate, description, externalReference, cardToken string) (*Subscription, error) {
	billingType := "UNDEFINED"
	if cardToken != "" {
		billingType = "CREDIT_CARD"
	}
	req := subscriptionRequest{
		Customer:          customerID,
		BillingType:       billingType,
		Value:             value,
		NextDueDate:       nextDueDate,
		Cycle:             "MONTHLY",
		Description:       description,
		ExternalReference: externalReference,
		CreditCardToken:   cardToken,
	}
	var sub Subscription
	if err := c.api.Do(ctx, http.MethodPost, "/subscriptions", req, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (c *Client) CancelSubscription(ctx context.Context, id string) error {
	return c.api.Do(ctx, http.MethodDelete, "/subscriptions/"+id, nil, nil)
}
