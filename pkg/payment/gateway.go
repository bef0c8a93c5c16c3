// Package payment wraps the payment processor behind a narrow gateway
// interface so the checkout flow never depends on the Stripe SDK directly.
package payment

import (
	"context"
	"errors"
)

var (
	// ErrSessionNotFound means the gateway does not know the session id.
	ErrSessionNotFound = errors.New("payment session not found")
	// ErrInvalidSignature means a webhook payload failed signature checks.
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// Session payment states as reported by the gateway.
const (
	SessionPaid   = "paid"
	SessionUnpaid = "unpaid"
)

// Event types the reconciliation flow cares about.
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventChargeRefunded    = "charge.refunded"
)

// Session is the gateway's record of one checkout attempt.
type Session struct {
	ID                string            `json:"id"`
	URL               string            `json:"url,omitempty"`
	PaymentStatus     string            `json:"paymentStatus"`
	Currency          string            `json:"currency"`
	CustomerEmail     string            `json:"customerEmail,omitempty"`
	ClientReferenceID string            `json:"clientReferenceId,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}

// Paid reports whether the gateway considers this session settled.
func (s *Session) Paid() bool {
	return s.PaymentStatus == SessionPaid
}

// LineItem is one purchased line as the gateway reports it. UnitAmount is in
// minor currency units (cents).
type LineItem struct {
	Description string
	Quantity    int64
	UnitAmount  int64
	Nickname    string
	ProductID   string
}

// Event is a verified webhook notification.
type Event struct {
	Type string
	// Session is populated for checkout.session.* events.
	Session *Session
}

type SessionItem struct {
	MenuItemID string
	Name       string
	UnitAmount int64
	Quantity   int64
}

type CreateSessionParams struct {
	UID           string
	CustomerEmail string
	Currency      string
	Items         []SessionItem
	SuccessURL    string
	CancelURL     string
}

type Gateway interface {
	// CreateSession starts a hosted checkout for the given line items.
	CreateSession(ctx context.Context, params CreateSessionParams) (*Session, error)
	// RetrieveSession fetches session truth from the gateway. Never trust a
	// client-supplied payment outcome.
	RetrieveSession(ctx context.Context, id string) (*Session, error)
	// ListLineItems returns the gateway's authoritative line items for a session.
	ListLineItems(ctx context.Context, id string, limit int64) ([]LineItem, error)
	// ConstructEvent verifies the webhook signature over the raw body and
	// decodes the event. Returns ErrInvalidSignature on failure.
	ConstructEvent(payload []byte, sigHeader string) (*Event, error)
}
