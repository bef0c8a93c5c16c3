package repository

import (
	"context"
	"testing"
	"time"

	"github.com/insomnia-fuel/cafe-api/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const ordersNS = "insomnia_fuel.orders"

func orderDoc(id primitive.ObjectID, sessionID string) bson.D {
	now := primitive.NewDateTimeFromTime(time.Now().UTC())
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "userId", Value: "u42"},
		{Key: "userName", Value: "Ada"},
		{Key: "email", Value: "ada@example.com"},
		{Key: "items", Value: bson.A{bson.D{
			{Key: "menuItemId", Value: "m1"},
			{Key: "name", Value: "Flat White"},
			{Key: "price", Value: 5.0},
			{Key: "quantity", Value: int64(2)},
		}}},
		{Key: "subtotal", Value: 10.0},
		{Key: "serviceFee", Value: 0.0},
		{Key: "total", Value: 10.0},
		{Key: "currency", Value: "aud"},
		{Key: "status", Value: "pending"},
		{Key: "paymentStatus", Value: "paid"},
		{Key: "stripeSessionId", Value: sessionID},
		{Key: "createdAt", Value: now},
		{Key: "updatedAt", Value: now},
	}
}

func createParams(sessionID string) CreateOrderParams {
	return CreateOrderParams{
		UserID:          "u42",
		UserName:        "Ada",
		Email:           "ada@example.com",
		Items:           []models.OrderItem{{MenuItemID: "m1", Name: "Flat White", Price: 5, Quantity: 2}},
		Currency:        "aud",
		StripeSessionID: sessionID,
		PaymentStatus:   models.PaymentPaid,
	}
}

func TestCreateOnce(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("clean insert", func(mt *mtest.T) {
		repo := &OrderRepository{col: mt.Coll}

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ordersNS, mtest.FirstBatch),
			mtest.CreateSuccessResponse(),
		)

		order, err := repo.CreateOnce(context.Background(), createParams("sess_1"))
		require.NoError(mt, err)
		assert.False(mt, order.ID.IsZero())
		assert.Equal(mt, "sess_1", order.StripeSessionID)
		assert.Equal(mt, models.StatusPending, order.Status)
		assert.Equal(mt, 10.0, order.Total)
	})

	mt.Run("fast path returns existing order without inserting", func(mt *mtest.T) {
		repo := &OrderRepository{col: mt.Coll}
		existingID := primitive.NewObjectID()

		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, ordersNS, mtest.FirstBatch, orderDoc(existingID, "sess_1")),
		)

		order, err := repo.CreateOnce(context.Background(), createParams("sess_1"))
		require.NoError(mt, err)
		assert.Equal(mt, existingID, order.ID)
	})

	mt.Run("duplicate key insert re-reads the winner", func(mt *mtest.T) {
		repo := &OrderRepository{col: mt.Coll}
		winnerID := primitive.NewObjectID()

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ordersNS, mtest.FirstBatch),
			mtest.CreateWriteErrorsResponse(mtest.WriteError{
				Index:   0,
				Code:    11000,
				Message: "E11000 duplicate key error index: stripeSessionId_1",
			}),
			mtest.CreateCursorResponse(1, ordersNS, mtest.FirstBatch, orderDoc(winnerID, "sess_1")),
		)

		order, err := repo.CreateOnce(context.Background(), createParams("sess_1"))
		require.NoError(mt, err)
		assert.Equal(mt, winnerID, order.ID)
		assert.Equal(mt, "sess_1", order.StripeSessionID)
	})

	mt.Run("failed re-read after duplicate key surfaces the error", func(mt *mtest.T) {
		repo := &OrderRepository{col: mt.Coll}

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ordersNS, mtest.FirstBatch),
			mtest.CreateWriteErrorsResponse(mtest.WriteError{
				Index:   0,
				Code:    11000,
				Message: "E11000 duplicate key error index: stripeSessionId_1",
			}),
			mtest.CreateCommandErrorResponse(mtest.CommandError{
				Code:    11601,
				Message: "operation was interrupted",
				Name:    "Interrupted",
			}),
		)

		_, err := repo.CreateOnce(context.Background(), createParams("sess_1"))
		assert.Error(mt, err)
	})

	mt.Run("rejects missing session id", func(mt *mtest.T) {
		repo := &OrderRepository{col: mt.Coll}

		_, err := repo.CreateOnce(context.Background(), createParams(""))
		assert.Error(mt, err)
	})

	mt.Run("rejects empty items", func(mt *mtest.T) {
		repo := &OrderRepository{col: mt.Coll}

		params := createParams("sess_1")
		params.Items = nil
		_, err := repo.CreateOnce(context.Background(), params)
		assert.Error(mt, err)
	})
}
