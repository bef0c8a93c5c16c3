package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/insomnia-fuel/cafe-api/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrInvalidTransition is returned when a kitchen status update is not a
// legal forward move.
var ErrInvalidTransition = errors.New("invalid status transition")

type OrderRepository struct {
	col *mongo.Collection
}

func NewOrderRepository(m *MongoRepository) *OrderRepository {
	return &OrderRepository{col: m.Collection(ordersCollection)}
}

type CreateOrderParams struct {
	UserID          string
	UserName        string
	Email           string
	Items           []models.OrderItem
	Currency        string
	StripeSessionID string
	PaymentStatus   models.PaymentStatus
}

type OrderPage struct {
	Items []models.Order `json:"items"`
	Total int64          `json:"total"`
}

func (r *OrderRepository) FindBySessionID(ctx context.Context, sessionID string) (*models.Order, error) {
	var order models.Order
	err := r.col.FindOne(ctx, bson.M{"stripeSessionId": sessionID}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateOnce inserts at most one order per checkout session. If an order for
// the session already exists, the existing record is returned unchanged and
// the given params are discarded. The read before the insert is a fast path;
// correctness under concurrent calls comes from the unique index on
// stripeSessionId, with a duplicate-key insert failure re-read as the winner.
func (r *OrderRepository) CreateOnce(ctx context.Context, params CreateOrderParams) (*models.Order, error) {
	if params.StripeSessionID == "" {
		return nil, errors.New("missing stripe session id")
	}
	if len(params.Items) == 0 {
		return nil, errors.New("order must have at least one item")
	}

	existing, err := r.FindBySessionID(ctx, params.StripeSessionID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	paymentStatus := params.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = models.PaymentUnpaid
	}

	subtotal := models.ItemsSubtotal(params.Items)
	serviceFee := 0.0
	now := time.Now().UTC()

	order := models.Order{
		UserID:          params.UserID,
		UserName:        models.DisplayName(params.UserName, params.Email),
		Email:           params.Email,
		Items:           params.Items,
		Subtotal:        subtotal,
		ServiceFee:      serviceFee,
		Total:           subtotal + serviceFee,
		Currency:        strings.ToLower(params.Currency),
		Status:          models.StatusPending,
		PaymentStatus:   paymentStatus,
		StripeSessionID: params.StripeSessionID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	res, err := r.col.InsertOne(ctx, order)
	if mongo.IsDuplicateKeyError(err) {
		// Lost the race against the other trigger; return the winner's record.
		return r.FindBySessionID(ctx, params.StripeSessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	order.ID = res.InsertedID.(primitive.ObjectID)
	return &order, nil
}

func (r *OrderRepository) ListPaginated(ctx context.Context, page, limit int64) (*OrderPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	skip := (page - 1) * limit

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := []models.Order{}
	if err = cursor.All(ctx, &items); err != nil {
		return nil, err
	}

	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, err
	}

	return &OrderPage{Items: items, Total: total}, nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, uid string) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.col.Find(ctx, bson.M{"userId": uid}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err = cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateStatus moves the kitchen status forward. Illegal moves are rejected
// with ErrInvalidTransition. Marking an order completed stamps completedAt.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error {
	if !models.ValidStatus(status) {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, status)
	}

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	var current models.Order
	if err := r.col.FindOne(ctx, bson.M{"_id": objID}).Decode(&current); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return err
	}

	if !models.CanTransition(current.Status, status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, status)
	}

	now := time.Now().UTC()
	update := bson.M{"status": status, "updatedAt": now}
	if status == models.StatusCompleted {
		update["completedAt"] = now
	}

	// Filter on the status we read so a concurrent update can't be overwritten
	// with a move that was only legal from the old state.
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": objID, "status": current.Status},
		bson.M{"$set": update})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: order changed concurrently", ErrInvalidTransition)
	}
	return nil
}

func (r *OrderRepository) UpdatePaymentStatus(ctx context.Context, id string, paymentStatus models.PaymentStatus) error {
	if !models.ValidPaymentStatus(paymentStatus) {
		return fmt.Errorf("unknown payment status %q", paymentStatus)
	}

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": objID},
		bson.M{"$set": bson.M{"paymentStatus": paymentStatus, "updatedAt": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
