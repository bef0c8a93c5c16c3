package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestItemsSubtotal(t *testing.T) {
	items := []OrderItem{
		{Name: "Flat White", Price: 5.00, Quantity: 2},
		{Name: "Muffin", Price: 4.25, Quantity: 3},
	}
	assert.Equal(t, 22.75, ItemsSubtotal(items))
	assert.Equal(t, 0.0, ItemsSubtotal(nil))
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name     string
		userName string
		email    string
		want     string
	}{
		{"explicit name wins", "Ada Lovelace", "ada@example.com", "Ada Lovelace"},
		{"name is trimmed", "  Ada  ", "", "Ada"},
		{"falls back to email local part", "", "ada@example.com", "ada"},
		{"whitespace name falls through", "   ", "ada@example.com", "ada"},
		{"guest when nothing known", "", "", "Guest"},
		{"guest when email has no local part", "", "@example.com", "Guest"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayName(tt.userName, tt.email))
		})
	}
}

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to OrderStatus }{
		{StatusPending, StatusPreparing},
		{StatusPreparing, StatusReady},
		{StatusReady, StatusCompleted},
		{StatusPending, StatusCancelled},
		{StatusPreparing, StatusCancelled},
		{StatusReady, StatusCancelled},
	}
	for _, tt := range allowed {
		assert.True(t, CanTransition(tt.from, tt.to), "%s -> %s should be allowed", tt.from, tt.to)
	}

	denied := []struct{ from, to OrderStatus }{
		{StatusPending, StatusReady},
		{StatusPending, StatusCompleted},
		{StatusPreparing, StatusPending},
		{StatusReady, StatusPreparing},
		{StatusCompleted, StatusCancelled},
		{StatusCompleted, StatusPending},
		{StatusCancelled, StatusPending},
		{StatusPending, StatusPending},
	}
	for _, tt := range denied {
		assert.False(t, CanTransition(tt.from, tt.to), "%s -> %s should be denied", tt.from, tt.to)
	}
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(StatusPending))
	assert.True(t, ValidStatus(StatusCancelled))
	assert.False(t, ValidStatus(OrderStatus("burnt")))
}

func TestValidPaymentStatus(t *testing.T) {
	assert.True(t, ValidPaymentStatus(PaymentPaid))
	assert.True(t, ValidPaymentStatus(PaymentRefunded))
	assert.False(t, ValidPaymentStatus(PaymentStatus("iou")))
}
