package shopify

import (
	"context"
	"fmt"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

// Scopes requested during install. Read access to the entities the pipeline
// reconciles, plus checkouts for abandoned-cart tracking.
const installScopes = "read_products,read_customers,read_orders,read_checkouts"

// defaultTopics are the webhook subscriptions registered after install.
// These feed the ingestion pipeline; registration itself is a one-shot call.
var defaultTopics = []string{
	"customers/create", "customers/update", "customers/delete",
	"products/create", "products/update", "products/delete",
	"orders/create", "orders/updated", "orders/delete",
	"carts/create", "carts/update",
	"checkouts/create", "checkouts/update", "checkouts/delete",
}

// Installer drives the OAuth install flow: consent redirect, code→token
// exchange, then webhook subscription registration.
type Installer struct {
	app        goshopify.App
	webhookURL string
	logger     zerolog.Logger
}

// NewInstaller creates an installer. appURL is this service's public base
// URL; webhooks are registered against appURL/webhooks.
func NewInstaller(apiKey, apiSecret, appURL string, logger zerolog.Logger) *Installer {
	return &Installer{
		app: goshopify.App{
			ApiKey:      apiKey,
			ApiSecret:   apiSecret,
			RedirectUrl: appURL + "/auth/callback",
			Scope:       installScopes,
		},
		webhookURL: appURL + "/webhooks",
		logger:     logger,
	}
}

// AuthorizeURL builds the platform consent URL for the given shop.
func (i *Installer) AuthorizeURL(shop, state string) (string, error) {
	authURL, err := i.app.AuthorizeUrl(shop, state)
	if err != nil {
		return "", fmt.Errorf("failed to build authorize url: %w", err)
	}
	return authURL, nil
}

// CompleteInstall exchanges the OAuth code for an access token and registers
// the default webhook topics. A registration failure for one topic is logged
// and does not abort the rest; the install already succeeded.
func (i *Installer) CompleteInstall(ctx context.Context, shop, code string) error {
	token, err := i.app.GetAccessToken(ctx, shop, code)
	if err != nil {
		return fmt.Errorf("failed to exchange access token: %w", err)
	}

	client, err := goshopify.NewClient(i.app, shop, token)
	if err != nil {
		return fmt.Errorf("failed to create shopify client: %w", err)
	}

	for _, topic := range defaultTopics {
		_, err := client.Webhook.Create(ctx, goshopify.Webhook{
			Topic:   topic,
			Address: i.webhookURL,
			Format:  "json",
		})
		if err != nil {
			i.logger.Error().Err(err).Str("shop", shop).Str("topic", topic).
				Msg("Failed to register webhook")
			continue
		}
		i.logger.Info().Str("shop", shop).Str("topic", topic).Msg("Registered webhook")
	}

	return nil
}
