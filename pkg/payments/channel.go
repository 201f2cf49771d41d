package payments

import (
	"context"

	"github.com/studiodanca/pagamentos/pkg/payments/asaas"
	"github.com/studiodanca/pagamentos/pkg/payments/mercadopago"
	"github.com/studiodanca/pagamentos/pkg/payments/pagbank"
	"github.com/studiodanca/pagamentos/pkg/payments/types"
)

// Channel is one payment provider integration. The business side only ever
// talks to channels through the Manager; channels never see business models
// beyond the checkout request.
type Channel interface {
	// Init wires the channel to its vendor API and shared dependencies.
	Init(deps *types.Deps) error

	// Name returns the channel name used in routes and order rows.
	Name() string

	// CreatePayment starts a checkout and returns the URL the payer must
	// visit to complete it.
	CreatePayment(ctx context.Context, req types.CreatePaymentRequest) (*types.CreatePaymentResult, error)

	// HandleWebhook processes one vendor notification. Errors are reported
	// to the caller for logging but never reach the vendor; the HTTP
	// boundary answers 200 regardless.
	HandleWebhook(ctx context.Context, n *types.Notification) (*types.WebhookResult, error)
}

type Registry struct {
	channels map[string]Channel
}

func NewRegistry(deps *types.Deps) (*Registry, error) {
	channels := map[string]Channel{
		"mercadopago": &mercadopago.MercadoPago{},
		"pagbank":     &pagbank.PagBank{},
		"asaas":       &asaas.Asaas{},
	}

	for _, channel := range channels {
		if err := channel.Init(deps); err != nil {
			return nil, err
		}
	}

	return &Registry{channels: channels}, nil
}

func (r *Registry) Get(channel string) Channel {
	return r.channels[channel]
}

// AvailableChannels lists the registered channel names.
func (r *Registry) AvailableChannels() []string {
	names := make([]string, 0, len(r.channels))
	for name := range r.channels {
		names = append(names, name)
	}
	return names
}
