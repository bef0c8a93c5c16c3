// Package checkout reconciles payment-gateway sessions into orders. Two
// independent triggers can observe a completed payment (the gateway webhook
// and the client's confirmation poll after redirect) and both funnel into
// the ledger's CreateOnce, which is the single idempotency boundary.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/insomnia-fuel/cafe-api/pkg/auth"
	"github.com/insomnia-fuel/cafe-api/pkg/models"
	"github.com/insomnia-fuel/cafe-api/pkg/payment"
	"github.com/insomnia-fuel/cafe-api/pkg/repository"
	"go.uber.org/zap"
)

// ErrEmptyCart is returned when checkout starts with nothing to buy.
var ErrEmptyCart = errors.New("cart is empty")

// lineItemLimit caps the gateway line-item listing per session.
const lineItemLimit = 100

// OrderLedger is the slice of the order repository the coordinator needs.
type OrderLedger interface {
	FindBySessionID(ctx context.Context, sessionID string) (*models.Order, error)
	CreateOnce(ctx context.Context, params repository.CreateOrderParams) (*models.Order, error)
}

// CartStore reads and clears customer carts.
type CartStore interface {
	Get(ctx context.Context, uid string) (*models.Cart, error)
	Delete(ctx context.Context, uid string) error
}

// UserDirectory resolves display names for known customers.
type UserDirectory interface {
	GetByUID(ctx context.Context, uid string) (*models.User, error)
}

// Notifier is told about freshly materialized orders. Best effort.
type Notifier interface {
	NotifyNewOrder(order *models.Order)
}

type Coordinator struct {
	gateway  payment.Gateway
	ledger   OrderLedger
	carts    CartStore
	users    UserDirectory
	notifier Notifier
	logger   *zap.Logger

	currency  string
	clientURL string
}

func NewCoordinator(
	gateway payment.Gateway,
	ledger OrderLedger,
	carts CartStore,
	users UserDirectory,
	notifier Notifier,
	logger *zap.Logger,
	currency, clientURL string,
) *Coordinator {
	return &Coordinator{
		gateway:   gateway,
		ledger:    ledger,
		carts:     carts,
		users:     users,
		notifier:  notifier,
		logger:    logger,
		currency:  currency,
		clientURL: clientURL,
	}
}

// CreateSession starts a hosted checkout from the principal's persisted cart.
func (c *Coordinator) CreateSession(ctx context.Context, principal *auth.Principal) (*payment.Session, error) {
	cart, err := c.carts.Get(ctx, principal.UID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrEmptyCart
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	items := make([]payment.SessionItem, 0, len(cart.Items))
	for _, it := range cart.Items {
		items = append(items, payment.SessionItem{
			MenuItemID: it.MenuItemID,
			Name:       it.Name,
			// Gateway amounts are in the smallest currency unit.
			UnitAmount: int64(math.Round(it.Price * 100)),
			Quantity:   it.Quantity,
		})
	}

	sess, err := c.gateway.CreateSession(ctx, payment.CreateSessionParams{
		UID:           principal.UID,
		CustomerEmail: principal.Email,
		Currency:      c.currency,
		Items:         items,
		SuccessURL:    c.clientURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     c.clientURL + "/order",
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("Checkout session created",
		zap.String("session_id", sess.ID),
		zap.String("uid", principal.UID))
	return sess, nil
}

// HandleWebhook is Trigger A: the gateway's asynchronous notification. The
// signature is verified before anything else; a bad or missing signature is
// rejected with no ledger access and no cart mutation.
func (c *Coordinator) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	if sigHeader == "" {
		return payment.ErrInvalidSignature
	}

	event, err := c.gateway.ConstructEvent(payload, sigHeader)
	if err != nil {
		return err
	}

	switch event.Type {
	case payment.EventCheckoutCompleted:
		if event.Session == nil {
			return errors.New("completed event carried no session")
		}
		order, err := c.materialize(ctx, event.Session)
		if err != nil {
			return err
		}
		c.logger.Info("Order materialized from webhook",
			zap.String("session_id", event.Session.ID),
			zap.String("order_id", order.ID.Hex()))
		return nil

	case payment.EventChargeRefunded:
		// Recognized but deliberately left without a state change; refunds are
		// handled at the counter today.
		c.logger.Warn("Refund event received, no order state change applied")
		return nil

	default:
		c.logger.Debug("Ignoring webhook event", zap.String("type", event.Type))
		return nil
	}
}

// Outcome classifies the result of a client confirmation poll.
type Outcome string

const (
	OutcomePaid    Outcome = "paid"
	OutcomePending Outcome = "pending"
)

type ConfirmResult struct {
	Outcome Outcome
	Session *payment.Session
	Order   *models.Order
}

// ConfirmSession is Trigger B: the client polls after being redirected back
// from the payment page. Session truth always comes from the gateway. Safe to
// call any number of times; every paid call resolves to the same order.
func (c *Coordinator) ConfirmSession(ctx context.Context, sessionID string) (*ConfirmResult, error) {
	sess, err := c.gateway.RetrieveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if !sess.Paid() {
		return &ConfirmResult{Outcome: OutcomePending, Session: sess}, nil
	}

	// The webhook may have materialized the order already.
	existing, err := c.ledger.FindBySessionID(ctx, sessionID)
	if err == nil {
		return &ConfirmResult{Outcome: OutcomePaid, Session: sess, Order: existing}, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	order, err := c.materialize(ctx, sess)
	if err != nil {
		return nil, err
	}
	return &ConfirmResult{Outcome: OutcomePaid, Session: sess, Order: order}, nil
}

// materialize turns a paid session into exactly one order. Both triggers end
// up here; CreateOnce makes a rerun or a race return the existing record.
func (c *Coordinator) materialize(ctx context.Context, sess *payment.Session) (*models.Order, error) {
	uid := sess.Metadata["uid"]
	if uid == "" {
		uid = sess.ClientReferenceID
	}

	email := sess.CustomerEmail
	userName := ""
	if uid != "" {
		if user, err := c.users.GetByUID(ctx, uid); err == nil {
			userName = user.DisplayName
			if email == "" {
				email = user.Email
			}
		} else if !errors.Is(err, repository.ErrNotFound) {
			c.logger.Warn("User lookup failed during reconciliation",
				zap.String("uid", uid), zap.Error(err))
		}
	}

	lineItems, err := c.gateway.ListLineItems(ctx, sess.ID, lineItemLimit)
	if err != nil {
		return nil, fmt.Errorf("list line items for %s: %w", sess.ID, err)
	}

	items := make([]models.OrderItem, 0, len(lineItems))
	for _, li := range lineItems {
		items = append(items, models.OrderItem{
			MenuItemID: li.ProductID,
			Name:       itemName(li),
			Price:      float64(li.UnitAmount) / 100,
			Quantity:   itemQuantity(li),
		})
	}

	currency := sess.Currency
	if currency == "" {
		currency = c.currency
	}

	paymentStatus := models.PaymentUnpaid
	if sess.Paid() {
		paymentStatus = models.PaymentPaid
	}

	order, err := c.ledger.CreateOnce(ctx, repository.CreateOrderParams{
		UserID:          uid,
		UserName:        userName,
		Email:           email,
		Items:           items,
		Currency:        currency,
		StripeSessionID: sess.ID,
		PaymentStatus:   paymentStatus,
	})
	if err != nil {
		return nil, err
	}

	// The cart's contents now live in the order. A failure here leaves a
	// stale cart behind, which is harmless.
	if uid != "" {
		if err := c.carts.Delete(ctx, uid); err != nil {
			c.logger.Warn("Failed to clear cart after order creation",
				zap.String("uid", uid), zap.Error(err))
		}
	}

	if c.notifier != nil {
		c.notifier.NotifyNewOrder(order)
	}

	return order, nil
}

func itemName(li payment.LineItem) string {
	if li.Description != "" {
		return li.Description
	}
	if li.Nickname != "" {
		return li.Nickname
	}
	return "Item"
}

func itemQuantity(li payment.LineItem) int64 {
	if li.Quantity <= 0 {
		return 1
	}
	return li.Quantity
}
