package mercadopago

import (
	"context"
	"fmt"
	"net/http"

	"github.com/studiodanca/pagamentos/pkg/payments/vendorapi"
	"github.com/studiodanca/pagamentos/pkg/tokenstore"
)

const apiBase = "https://api.mercadopago.com"

// Client wraps the Mercado Pago REST API. Auth is a bearer token resolved
// per call, so OAuth refreshes are picked up without rebuilding the client.
type Client struct {
	api          *vendorapi.Caller
	clientID     string
	clientSecret string
	redirectURL  string
}

func NewClient(httpClient *http.Client, baseURL, clientID, clientSecret, redirectURL string, token func(ctx context.Context) (string, error)) *Client {
	if baseURL == "" {
		baseURL = apiBase
	}
	return &Client{
		api: &vendorapi.Caller{
			HTTP:    httpClient,
			BaseURL: baseURL,
			Auth: func(ctx context.Context, req *http.Request) error {
				tok, err := token(ctx)
				if err != nil {
					return err
				}
				req.Header.Set("Authorization", "Bearer "+tok)
				return nil
			},
		},
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURL:  redirectURL,
	}
}

type Payment struct {
	ID                int64   `json:"id"`
	Status            string  `json:"status"`
	StatusDetail      string  `json:"status_detail"`
	ExternalReference string  `json:"external_reference"`
	TransactionAmount float64 `json:"transaction_amount"`
	PaymentMethodID   string  `json:"payment_method_id"`
}

func (c *Client) GetPayment(ctx context.Context, id string) (*Payment, error) {
	var payment Payment
	if err := c.api.Do(ctx, http.MethodGet, "/v1/payments/"+id, nil, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

type MerchantOrder struct {
	ID                int64  `json:"id"`
	Status            string `json:"status"`
	ExternalReference string `json:"external_reference"`
	OrderStatus       string `json:"order_status"`
}

func (c *Client) GetMerchantOrder(ctx context.Context, id string) (*MerchantOrder, error) {
	var order MerchantOrder
	if err := c.api.Do(ctx, http.MethodGet, "/merchant_orders/"+id, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

type preferenceItem struct {
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	CurrencyID string  `json:"currency_id"`
}

type preferenceBackURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

type preferenceRequest struct {
	Items             []preferenceItem   `json:"items"`
	ExternalReference string             `json:"external_reference"`
	BackURLs          preferenceBackURLs `json:"back_urls"`
	NotificationURL   string             `json:"notification_url"`
}

type Preference struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

// CreatePreference creates a hosted-checkout preference; the payer is sent
// to its init point URL.
func (c *Client) CreatePreference(ctx context.Context, title, reference, currency string, amount float64, backURL, notificationURL string) (*Preference, error) {
	req := preferenceRequest{
		Items: []preferenceItem{{
			Title:      title,
			Quantity:   1,
			UnitPrice:  amount,
			CurrencyID: currency,
		}},
		ExternalReference: reference,
		BackURLs: preferenceBackURLs{
			Success: backURL,
			Failure: backURL,
			Pending: backURL,
		},
		NotificationURL: notificationURL,
	}

	var pref Preference
	if err := c.api.Do(ctx, http.MethodPost, "/checkout/preferences", req, &pref); err != nil {
		return nil, err
	}
	return &pref, nil
}

type oauthTokenRequest struct {
	GrantType    string `json:"grant_type"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Code         string `json:"code,omitempty"`
	RedirectURI  string `json:"redirect_uri,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

type oauthTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	UserID       int64  `json:"user_id"`
	ExpiresIn    int64  `json:"expires_in"`
}

// ExchangeCode trades an authorization code for a token pair. The token
// endpoint authenticates with client credentials, not a bearer token.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*tokenstore.Token, error) {
	return c.tokenCall(ctx, oauthTokenRequest{
		GrantType:    "authorization_code",
		ClientID:     c.clientID,
		ClientSecret: c.clientSecret,
		Code:         code,
		RedirectURI:  c.redirectURL,
	})
}

// RefreshToken implements tokenstore.Refresher.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*tokenstore.Token, error) {
	return c.tokenCall(ctx, oauthTokenRequest{
		GrantType:    "refresh_token",
		ClientID:     c.clientID,
		ClientSecret: c.clientSecret,
		RefreshToken: refreshToken,
	})
}

func (c *Client) tokenCall(ctx context.Context, req oauthTokenRequest) (*tokenstore.Token, error) {
	unauth := &vendorapi.Caller{HTTP: c.api.HTTP, BaseURL: c.api.BaseURL}
	var resp oauthTokenResponse
	if err := unauth.Do(ctx, http.MethodPost, "/oauth/token", req, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("token endpoint returned no access token")
	}
	return &tokenstore.Token{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		VendorUserID: fmt.Sprintf("%d", resp.UserID),
		ExpiresIn:    resp.ExpiresIn,
	}, nil
}
