package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus is the kitchen workflow state.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

// PaymentStatus tracks money independently of the kitchen flow.
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
	PaymentDisputed PaymentStatus = "disputed"
)

type OrderItem struct {
	MenuItemID string  `bson:"menuItemId" json:"menuItemId"`
	Name       string  `bson:"name" json:"name"`
	Price      float64 `bson:"price" json:"price"`
	Quantity   int64   `bson:"quantity" json:"quantity"`
}

type Order struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`

	// who placed it
	UserID   string `bson:"userId" json:"userId"`
	UserName string `bson:"userName" json:"userName"`
	Email    string `bson:"email" json:"email"`

	Items []OrderItem `bson:"items" json:"items"`

	Subtotal   float64 `bson:"subtotal" json:"subtotal"`
	ServiceFee float64 `bson:"serviceFee" json:"serviceFee"`
	Total      float64 `bson:"total" json:"total"`
	Currency   string  `bson:"currency" json:"currency"`

	Status        OrderStatus   `bson:"status" json:"status"`
	PaymentStatus PaymentStatus `bson:"paymentStatus" json:"paymentStatus"`

	// StripeSessionID is the dedup key: at most one order per checkout session,
	// enforced by a unique index.
	StripeSessionID string `bson:"stripeSessionId" json:"stripeSessionId"`

	CompletedAt *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CreatedAt   time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// ItemsSubtotal computes the sum of price*quantity over the given items.
func ItemsSubtotal(items []OrderItem) float64 {
	var sum float64
	for _, it := range items {
		sum += it.Price * float64(it.Quantity)
	}
	return sum
}

// DisplayName picks a customer-facing name: the given name, then the local
// part of the email, then "Guest".
func DisplayName(userName, email string) string {
	if name := strings.TrimSpace(userName); name != "" {
		return name
	}
	if email != "" {
		if at := strings.Index(email, "@"); at > 0 {
			return email[:at]
		}
	}
	return "Guest"
}

// ValidStatus reports whether s is a known kitchen status.
func ValidStatus(s OrderStatus) bool {
	switch s {
	case StatusPending, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ValidPaymentStatus reports whether s is a known payment status.
func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentUnpaid, PaymentPaid, PaymentRefunded, PaymentDisputed:
		return true
	}
	return false
}

// CanTransition reports whether the kitchen status may move from -> to.
// The flow is pending -> preparing -> ready -> completed, with cancelled
// reachable from any non-terminal state. Completed and cancelled are terminal.
func CanTransition(from, to OrderStatus) bool {
	if from == to {
		return false
	}
	switch from {
	case StatusPending:
		return to == StatusPreparing || to == StatusCancelled
	case StatusPreparing:
		return to == StatusReady || to == StatusCancelled
	case StatusReady:
		return to == StatusCompleted || to == StatusCancelled
	default:
		return false
	}
}
