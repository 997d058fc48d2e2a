// Package payment implements the hosted-payment gateway against Stripe
// Checkout. The shop never touches card data; Stripe hosts the payment page
// and redirects back to the API's success or cancel endpoints.
package payment

import (
	"context"
	"fmt"
	"sync"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"

	"github.com/dessertshop/storefront-api/internal/service"
)

const currency = "usd"

type StripeGateway struct {
	api *client.API

	mu        sync.Mutex
	taxRateID string
}

func NewStripeGateway(secretKey string) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeGateway{api: api}
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, cs service.CheckoutSession) (string, error) {
	taxRateID, err := g.taxRate(cs.TaxRatePercent)
	if err != nil {
		return "", fmt.Errorf("ensure tax rate: %w", err)
	}

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(cs.Items))
	for _, item := range cs.Items {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(currency),
				UnitAmount: stripe.Int64(item.UnitAmountMinor),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
			},
			Quantity: stripe.Int64(int64(item.Quantity)),
			TaxRates: stripe.StringSlice([]string{taxRateID}),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail: stripe.String(cs.CustomerEmail),
		LineItems:     lineItems,
		SuccessURL:    stripe.String(cs.SuccessURL),
		CancelURL:     stripe.String(cs.CancelURL),
		ShippingOptions: []*stripe.CheckoutSessionShippingOptionParams{
			{
				ShippingRateData: &stripe.CheckoutSessionShippingOptionShippingRateDataParams{
					Type:        stripe.String("fixed_amount"),
					DisplayName: stripe.String("Standard shipping"),
					FixedAmount: &stripe.CheckoutSessionShippingOptionShippingRateDataFixedAmountParams{
						Amount:   stripe.Int64(cs.ShippingFeeMinor),
						Currency: stripe.String(currency),
					},
				},
			},
		},
	}
	params.Context = ctx

	sess, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create stripe checkout session: %w", err)
	}
	return sess.URL, nil
}

// taxRate lazily registers one exclusive tax-rate object and reuses it for
// every session. The percentage is fixed per deployment.
func (g *StripeGateway) taxRate(percent float64) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.taxRateID != "" {
		return g.taxRateID, nil
	}

	rate, err := g.api.TaxRates.New(&stripe.TaxRateParams{
		DisplayName: stripe.String("Sales Tax"),
		Percentage:  stripe.Float64(percent),
		Inclusive:   stripe.Bool(false),
	})
	if err != nil {
		return "", err
	}
	g.taxRateID = rate.ID
	return g.taxRateID, nil
}
