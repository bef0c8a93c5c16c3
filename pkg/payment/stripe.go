package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/insomnia-fuel/cafe-api/pkg/config"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
)

// StripeGateway implements Gateway against the Stripe API.
type StripeGateway struct {
	client        *client.API
	webhookSecret string
}

var _ Gateway = (*StripeGateway)(nil)

func NewStripeGateway(cfg *config.StripeConfig) *StripeGateway {
	sc := &client.API{}
	sc.Init(cfg.SecretKey, nil)
	return &StripeGateway{
		client:        sc,
		webhookSecret: cfg.WebhookSecret,
	}
}

func (g *StripeGateway) CreateSession(ctx context.Context, params CreateSessionParams) (*Session, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(params.Items))
	for _, it := range params.Items {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(it.Quantity),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(params.Currency),
				UnitAmount: stripe.Int64(it.UnitAmount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(it.Name),
					// So reconciliation can recover the menu item id later.
					Metadata: map[string]string{"menuItemId": it.MenuItemID},
				},
			},
		})
	}

	sessionParams := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  lineItems,
		SuccessURL: stripe.String(params.SuccessURL),
		CancelURL:  stripe.String(params.CancelURL),
	}
	sessionParams.Context = ctx
	if params.CustomerEmail != "" {
		sessionParams.CustomerEmail = stripe.String(params.CustomerEmail)
	}
	if params.UID != "" {
		sessionParams.ClientReferenceID = stripe.String(params.UID)
		sessionParams.AddMetadata("uid", params.UID)
	}

	sess, err := g.client.CheckoutSessions.New(sessionParams)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return mapSession(sess), nil
}

func (g *StripeGateway) RetrieveSession(ctx context.Context, id string) (*Session, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := g.client.CheckoutSessions.Get(id, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == http.StatusNotFound {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("retrieve checkout session: %w", err)
	}
	return mapSession(sess), nil
}

func (g *StripeGateway) ListLineItems(ctx context.Context, id string, limit int64) ([]LineItem, error) {
	params := &stripe.CheckoutSessionListLineItemsParams{
		Session: stripe.String(id),
	}
	params.Context = ctx
	if limit > 0 {
		params.Limit = stripe.Int64(limit)
	}
	// product_data metadata set at session creation lands on the auto-created
	// Product, not on the inline Price, so the product must be expanded here
	// for the menu item id to come back.
	params.AddExpand("data.price.product")

	var items []LineItem
	iter := g.client.CheckoutSessions.ListLineItems(params)
	for iter.Next() {
		items = append(items, mapLineItem(iter.LineItem()))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list session line items: %w", err)
	}
	return items, nil
}

func mapLineItem(li *stripe.LineItem) LineItem {
	item := LineItem{
		Description: li.Description,
		Quantity:    li.Quantity,
	}
	if li.Price == nil {
		return item
	}
	item.UnitAmount = li.Price.UnitAmount
	item.Nickname = li.Price.Nickname
	if li.Price.Product != nil && li.Price.Product.Metadata != nil {
		item.ProductID = li.Price.Product.Metadata["menuItemId"]
	}
	// Sessions created elsewhere may carry the id on the price itself.
	if item.ProductID == "" && li.Price.Metadata != nil {
		item.ProductID = li.Price.Metadata["menuItemId"]
	}
	return item
}

func (g *StripeGateway) ConstructEvent(payload []byte, sigHeader string) (*Event, error) {
	event, err := webhook.ConstructEvent(payload, sigHeader, g.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &Event{Type: string(event.Type)}

	if out.Type == EventCheckoutCompleted {
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("decode checkout session event: %w", err)
		}
		out.Session = mapSession(&sess)
	}
	return out, nil
}

func mapSession(s *stripe.CheckoutSession) *Session {
	out := &Session{
		ID:                s.ID,
		URL:               s.URL,
		PaymentStatus:     string(s.PaymentStatus),
		Currency:          string(s.Currency),
		CustomerEmail:     s.CustomerEmail,
		ClientReferenceID: s.ClientReferenceID,
		Metadata:          s.Metadata,
	}
	// customer_details carries the email actually entered on the payment page.
	if s.CustomerDetails != nil && s.CustomerDetails.Email != "" {
		out.CustomerEmail = s.CustomerDetails.Email
	}
	return out
}
