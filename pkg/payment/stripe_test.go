package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stripe/stripe-go/v79"
)

func TestMapLineItemReadsProductMetadata(t *testing.T) {
	// menuItemId written via product_data at session creation comes back on
	// the expanded Product, not the Price.
	item := mapLineItem(&stripe.LineItem{
		Description: "Flat White",
		Quantity:    2,
		Price: &stripe.Price{
			UnitAmount: 500,
			Product: &stripe.Product{
				Metadata: map[string]string{"menuItemId": "m1"},
			},
		},
	})

	assert.Equal(t, "m1", item.ProductID)
	assert.Equal(t, "Flat White", item.Description)
	assert.Equal(t, int64(2), item.Quantity)
	assert.Equal(t, int64(500), item.UnitAmount)
}

func TestMapLineItemFallsBackToPriceMetadata(t *testing.T) {
	item := mapLineItem(&stripe.LineItem{
		Description: "Long Black",
		Quantity:    1,
		Price: &stripe.Price{
			UnitAmount: 425,
			Metadata:   map[string]string{"menuItemId": "m2"},
		},
	})

	assert.Equal(t, "m2", item.ProductID)
}

func TestMapLineItemProductMetadataWins(t *testing.T) {
	item := mapLineItem(&stripe.LineItem{
		Quantity: 1,
		Price: &stripe.Price{
			Metadata: map[string]string{"menuItemId": "stale"},
			Product: &stripe.Product{
				Metadata: map[string]string{"menuItemId": "m3"},
			},
		},
	})

	assert.Equal(t, "m3", item.ProductID)
}

func TestMapLineItemWithoutPrice(t *testing.T) {
	item := mapLineItem(&stripe.LineItem{Description: "Mystery", Quantity: 1})

	assert.Empty(t, item.ProductID)
	assert.Zero(t, item.UnitAmount)
}

func TestMapSessionPrefersCustomerDetailsEmail(t *testing.T) {
	sess := mapSession(&stripe.CheckoutSession{
		ID:            "sess_1",
		CustomerEmail: "account@example.com",
		CustomerDetails: &stripe.CheckoutSessionCustomerDetails{
			Email: "entered@example.com",
		},
	})

	assert.Equal(t, "entered@example.com", sess.CustomerEmail)
}
