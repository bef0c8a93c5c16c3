package checkout

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/insomnia-fuel/cafe-api/pkg/auth"
	"github.com/insomnia-fuel/cafe-api/pkg/models"
	"github.com/insomnia-fuel/cafe-api/pkg/payment"
	"github.com/insomnia-fuel/cafe-api/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// fakeLedger implements the CreateOnce contract in memory: at most one order
// per session id, losers of a race get the winner's record.
type fakeLedger struct {
	mu        sync.Mutex
	bySession map[string]*models.Order
	inserts   int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{bySession: map[string]*models.Order{}}
}

func (f *fakeLedger) FindBySessionID(_ context.Context, sessionID string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.bySession[sessionID]; ok {
		return o, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeLedger) CreateOnce(_ context.Context, p repository.CreateOrderParams) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if existing, ok := f.bySession[p.StripeSessionID]; ok {
		return existing, nil
	}

	subtotal := models.ItemsSubtotal(p.Items)
	now := time.Now().UTC()
	order := &models.Order{
		ID:              primitive.NewObjectID(),
		UserID:          p.UserID,
		UserName:        models.DisplayName(p.UserName, p.Email),
		Email:           p.Email,
		Items:           p.Items,
		Subtotal:        subtotal,
		Total:           subtotal,
		Currency:        strings.ToLower(p.Currency),
		Status:          models.StatusPending,
		PaymentStatus:   p.PaymentStatus,
		StripeSessionID: p.StripeSessionID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	f.bySession[p.StripeSessionID] = order
	f.inserts++
	return order, nil
}

type fakeCarts struct {
	mu    sync.Mutex
	carts map[string]*models.Cart
}

func newFakeCarts() *fakeCarts {
	return &fakeCarts{carts: map[string]*models.Cart{}}
}

func (f *fakeCarts) Get(_ context.Context, uid string) (*models.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.carts[uid]; ok {
		return c, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeCarts) Delete(_ context.Context, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.carts, uid)
	return nil
}

type fakeUsers struct {
	users map[string]*models.User
}

func (f *fakeUsers) GetByUID(_ context.Context, uid string) (*models.User, error) {
	if u, ok := f.users[uid]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

// fakeGateway serves canned sessions, line items, and webhook events keyed by
// signature header.
type fakeGateway struct {
	sessions  map[string]*payment.Session
	lineItems map[string][]payment.LineItem
	events    map[string]*payment.Event

	mu      sync.Mutex
	created []payment.CreateSessionParams
}

func (f *fakeGateway) CreateSession(_ context.Context, params payment.CreateSessionParams) (*payment.Session, error) {
	f.mu.Lock()
	f.created = append(f.created, params)
	f.mu.Unlock()
	return &payment.Session{
		ID:            "cs_test_new",
		URL:           "https://pay.example/cs_test_new",
		PaymentStatus: payment.SessionUnpaid,
		Currency:      params.Currency,
	}, nil
}

func (f *fakeGateway) RetrieveSession(_ context.Context, id string) (*payment.Session, error) {
	if s, ok := f.sessions[id]; ok {
		return s, nil
	}
	return nil, payment.ErrSessionNotFound
}

func (f *fakeGateway) ListLineItems(_ context.Context, id string, _ int64) ([]payment.LineItem, error) {
	return f.lineItems[id], nil
}

func (f *fakeGateway) ConstructEvent(_ []byte, sigHeader string) (*payment.Event, error) {
	if ev, ok := f.events[sigHeader]; ok {
		return ev, nil
	}
	return nil, payment.ErrInvalidSignature
}

type fixture struct {
	coordinator *Coordinator
	gateway     *fakeGateway
	ledger      *fakeLedger
	carts       *fakeCarts
	users       *fakeUsers
}

func newFixture() *fixture {
	gateway := &fakeGateway{
		sessions:  map[string]*payment.Session{},
		lineItems: map[string][]payment.LineItem{},
		events:    map[string]*payment.Event{},
	}
	ledger := newFakeLedger()
	carts := newFakeCarts()
	users := &fakeUsers{users: map[string]*models.User{}}

	return &fixture{
		coordinator: NewCoordinator(gateway, ledger, carts, users, nil, zap.NewNop(),
			"aud", "http://localhost:5173"),
		gateway: gateway,
		ledger:  ledger,
		carts:   carts,
		users:   users,
	}
}

func paidSession(id, uid string) *payment.Session {
	return &payment.Session{
		ID:            id,
		PaymentStatus: payment.SessionPaid,
		Currency:      "aud",
		CustomerEmail: "customer@example.com",
		Metadata:      map[string]string{"uid": uid},
	}
}

func TestConfirmSessionMapsGatewayLineItems(t *testing.T) {
	fx := newFixture()
	fx.gateway.sessions["sess_1"] = paidSession("sess_1", "")
	fx.gateway.lineItems["sess_1"] = []payment.LineItem{
		{Description: "Flat White", UnitAmount: 500, Quantity: 2},
	}

	result, err := fx.coordinator.ConfirmSession(context.Background(), "sess_1")
	require.NoError(t, err)
	require.Equal(t, OutcomePaid, result.Outcome)
	require.NotNil(t, result.Order)

	order := result.Order
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Flat White", order.Items[0].Name)
	assert.Equal(t, 5.00, order.Items[0].Price)
	assert.Equal(t, int64(2), order.Items[0].Quantity)
	assert.Equal(t, 10.00, order.Subtotal)
	assert.Equal(t, 10.00, order.Total)
	assert.Equal(t, "aud", order.Currency)
	assert.Equal(t, models.PaymentPaid, order.PaymentStatus)
	assert.Equal(t, models.StatusPending, order.Status)
}

func TestConfirmSessionLineItemFallbacks(t *testing.T) {
	fx := newFixture()
	fx.gateway.sessions["sess_fb"] = paidSession("sess_fb", "")
	fx.gateway.lineItems["sess_fb"] = []payment.LineItem{
		{Description: "", Nickname: "House Blend", UnitAmount: 450, Quantity: 0},
		{Description: "", Nickname: "", UnitAmount: 300, Quantity: 1},
		{Description: "Muffin", UnitAmount: 350, Quantity: 3, ProductID: "m1"},
	}

	result, err := fx.coordinator.ConfirmSession(context.Background(), "sess_fb")
	require.NoError(t, err)
	items := result.Order.Items
	require.Len(t, items, 3)

	assert.Equal(t, "House Blend", items[0].Name)
	assert.Equal(t, int64(1), items[0].Quantity, "missing quantity defaults to 1")
	assert.Equal(t, "", items[0].MenuItemID)

	assert.Equal(t, "Item", items[1].Name, "name falls back to literal Item")

	assert.Equal(t, "Muffin", items[2].Name)
	assert.Equal(t, "m1", items[2].MenuItemID)
}

func TestConfirmSessionNotPaid(t *testing.T) {
	fx := newFixture()
	fx.gateway.sessions["sess_unpaid"] = &payment.Session{
		ID:            "sess_unpaid",
		PaymentStatus: payment.SessionUnpaid,
		Currency:      "aud",
	}

	result, err := fx.coordinator.ConfirmSession(context.Background(), "sess_unpaid")
	require.NoError(t, err)
	assert.Equal(t, OutcomePending, result.Outcome)
	assert.Nil(t, result.Order)
	assert.Zero(t, fx.ledger.inserts, "no order may exist for an unpaid session")
}

func TestConfirmSessionUnknownSession(t *testing.T) {
	fx := newFixture()

	_, err := fx.coordinator.ConfirmSession(context.Background(), "sess_missing")
	assert.ErrorIs(t, err, payment.ErrSessionNotFound)
}

func TestConfirmSessionRepeatedCallsResolveToSameOrder(t *testing.T) {
	fx := newFixture()
	fx.gateway.sessions["sess_r"] = paidSession("sess_r", "u1")
	fx.gateway.lineItems["sess_r"] = []payment.LineItem{
		{Description: "Latte", UnitAmount: 550, Quantity: 1},
	}

	first, err := fx.coordinator.ConfirmSession(context.Background(), "sess_r")
	require.NoError(t, err)
	second, err := fx.coordinator.ConfirmSession(context.Background(), "sess_r")
	require.NoError(t, err)

	assert.Equal(t, first.Order.ID, second.Order.ID)
	assert.Equal(t, 1, fx.ledger.inserts)
}

func TestWebhookThenConfirmConverge(t *testing.T) {
	fx := newFixture()
	sess := paidSession("sess_conv", "u7")
	fx.gateway.sessions["sess_conv"] = sess
	fx.gateway.lineItems["sess_conv"] = []payment.LineItem{
		{Description: "Mocha", UnitAmount: 600, Quantity: 1},
	}
	fx.gateway.events["valid"] = &payment.Event{Type: payment.EventCheckoutCompleted, Session: sess}

	require.NoError(t, fx.coordinator.HandleWebhook(context.Background(), []byte(`{}`), "valid"))

	result, err := fx.coordinator.ConfirmSession(context.Background(), "sess_conv")
	require.NoError(t, err)
	assert.Equal(t, 1, fx.ledger.inserts, "webhook and poll must converge on one order")
	assert.Equal(t, OutcomePaid, result.Outcome)
}

func TestConfirmThenWebhookConverge(t *testing.T) {
	fx := newFixture()
	sess := paidSession("sess_conv2", "u8")
	fx.gateway.sessions["sess_conv2"] = sess
	fx.gateway.lineItems["sess_conv2"] = []payment.LineItem{
		{Description: "Mocha", UnitAmount: 600, Quantity: 1},
	}
	fx.gateway.events["valid"] = &payment.Event{Type: payment.EventCheckoutCompleted, Session: sess}

	_, err := fx.coordinator.ConfirmSession(context.Background(), "sess_conv2")
	require.NoError(t, err)
	require.NoError(t, fx.coordinator.HandleWebhook(context.Background(), []byte(`{}`), "valid"))

	assert.Equal(t, 1, fx.ledger.inserts)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	fx := newFixture()
	fx.carts.carts["u9"] = &models.Cart{UID: "u9", Items: []models.CartItem{
		{MenuItemID: "m1", Name: "Latte", Price: 5.5, Quantity: 1},
	}}

	err := fx.coordinator.HandleWebhook(context.Background(), []byte(`{"tampered":true}`), "bad")
	assert.ErrorIs(t, err, payment.ErrInvalidSignature)
	assert.Zero(t, fx.ledger.inserts, "forged payload must not create an order")

	_, cartErr := fx.carts.Get(context.Background(), "u9")
	assert.NoError(t, cartErr, "forged payload must not clear any cart")
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	fx := newFixture()

	err := fx.coordinator.HandleWebhook(context.Background(), []byte(`{}`), "")
	assert.ErrorIs(t, err, payment.ErrInvalidSignature)
	assert.Zero(t, fx.ledger.inserts)
}

func TestWebhookRefundEventIsAcceptedWithoutStateChange(t *testing.T) {
	fx := newFixture()
	fx.gateway.events["valid"] = &payment.Event{Type: payment.EventChargeRefunded}

	err := fx.coordinator.HandleWebhook(context.Background(), []byte(`{}`), "valid")
	assert.NoError(t, err)
	assert.Zero(t, fx.ledger.inserts)
}

func TestWebhookResolvesUserNameAndClearsCart(t *testing.T) {
	fx := newFixture()
	sess := paidSession("sess_u", "u42")
	fx.gateway.sessions["sess_u"] = sess
	fx.gateway.lineItems["sess_u"] = []payment.LineItem{
		{Description: "Flat White", UnitAmount: 500, Quantity: 1},
	}
	fx.gateway.events["valid"] = &payment.Event{Type: payment.EventCheckoutCompleted, Session: sess}
	fx.users.users["u42"] = &models.User{UID: "u42", DisplayName: "Ada", Email: "ada@example.com"}
	fx.carts.carts["u42"] = &models.Cart{UID: "u42", Items: []models.CartItem{
		{MenuItemID: "m1", Name: "Flat White", Price: 5, Quantity: 1},
	}}

	require.NoError(t, fx.coordinator.HandleWebhook(context.Background(), []byte(`{}`), "valid"))

	order, err := fx.ledger.FindBySessionID(context.Background(), "sess_u")
	require.NoError(t, err)
	assert.Equal(t, "Ada", order.UserName)
	assert.Equal(t, "u42", order.UserID)

	_, cartErr := fx.carts.Get(context.Background(), "u42")
	assert.ErrorIs(t, cartErr, repository.ErrNotFound, "cart is deleted after materialization")
}

func TestConcurrentConfirmationsYieldOneOrder(t *testing.T) {
	fx := newFixture()
	sess := paidSession("sess_2", "u42")
	fx.gateway.sessions["sess_2"] = sess
	fx.gateway.lineItems["sess_2"] = []payment.LineItem{
		{Description: "Flat White", UnitAmount: 500, Quantity: 1},
	}
	fx.carts.carts["u42"] = &models.Cart{UID: "u42", Items: []models.CartItem{
		{MenuItemID: "m1", Name: "Flat White", Price: 5, Quantity: 1},
	}}

	const n = 16
	results := make([]*ConfirmResult, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = fx.coordinator.ConfirmSession(context.Background(), "sess_2")
		}(i)
	}
	wg.Wait()

	require.Equal(t, 1, fx.ledger.inserts, "exactly one insert despite %d racers", n)
	first := results[0]
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		require.NotNil(t, results[i].Order)
		assert.Equal(t, first.Order.ID, results[i].Order.ID)
	}

	_, cartErr := fx.carts.Get(context.Background(), "u42")
	assert.ErrorIs(t, cartErr, repository.ErrNotFound)
}

func TestCreateSessionFromCart(t *testing.T) {
	fx := newFixture()
	fx.carts.carts["u1"] = &models.Cart{UID: "u1", Items: []models.CartItem{
		{MenuItemID: "m1", Name: "Flat White", Price: 5.00, Quantity: 2},
		{MenuItemID: "m2", Name: "Muffin", Price: 4.25, Quantity: 1},
	}}

	sess, err := fx.coordinator.CreateSession(context.Background(),
		&auth.Principal{UID: "u1", Email: "u1@example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.URL)

	require.Len(t, fx.gateway.created, 1)
	params := fx.gateway.created[0]
	assert.Equal(t, "u1", params.UID)
	assert.Equal(t, "aud", params.Currency)
	require.Len(t, params.Items, 2)
	assert.Equal(t, int64(500), params.Items[0].UnitAmount, "amounts are minor units")
	assert.Equal(t, int64(425), params.Items[1].UnitAmount)
	assert.Equal(t, "m1", params.Items[0].MenuItemID)
}

func TestCreateSessionEmptyCart(t *testing.T) {
	fx := newFixture()

	_, err := fx.coordinator.CreateSession(context.Background(),
		&auth.Principal{UID: "nobody", Email: ""})
	assert.ErrorIs(t, err, ErrEmptyCart)

	fx.carts.carts["u2"] = &models.Cart{UID: "u2", Items: []models.CartItem{}}
	_, err = fx.coordinator.CreateSession(context.Background(),
		&auth.Principal{UID: "u2", Email: ""})
	assert.ErrorIs(t, err, ErrEmptyCart)
}
