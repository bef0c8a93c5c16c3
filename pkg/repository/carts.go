package repository

import (
	"context"
	"errors"
	"time"

	"github.com/insomnia-fuel/cafe-api/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type CartRepository struct {
	col *mongo.Collection
}

func NewCartRepository(m *MongoRepository) *CartRepository {
	return &CartRepository{col: m.Collection(cartsCollection)}
}

func (r *CartRepository) Get(ctx context.Context, uid string) (*models.Cart, error) {
	var cart models.Cart
	err := r.col.FindOne(ctx, bson.M{"uid": uid}).Decode(&cart)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// GetOrCreate returns the user's cart, inserting an empty one if missing.
func (r *CartRepository) GetOrCreate(ctx context.Context, uid string) (*models.Cart, error) {
	cart, err := r.Get(ctx, uid)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	fresh := models.Cart{
		UID:       uid,
		Items:     []models.CartItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	res, err := r.col.InsertOne(ctx, fresh)
	if mongo.IsDuplicateKeyError(err) {
		return r.Get(ctx, uid)
	}
	if err != nil {
		return nil, err
	}
	fresh.ID = res.InsertedID.(primitive.ObjectID)
	return &fresh, nil
}

// UpsertItem sets the quantity for one cart line. Quantity zero removes it.
func (r *CartRepository) UpsertItem(ctx context.Context, uid string, item models.CartItem) (*models.Cart, error) {
	cart, err := r.GetOrCreate(ctx, uid)
	if err != nil {
		return nil, err
	}

	items := make([]models.CartItem, 0, len(cart.Items)+1)
	found := false
	for _, it := range cart.Items {
		if it.MenuItemID == item.MenuItemID {
			found = true
			if item.Quantity > 0 {
				items = append(items, item)
			}
			continue
		}
		items = append(items, it)
	}
	if !found && item.Quantity > 0 {
		items = append(items, item)
	}

	return r.setItems(ctx, cart, items)
}

func (r *CartRepository) RemoveItem(ctx context.Context, uid, menuItemID string) (*models.Cart, error) {
	cart, err := r.Get(ctx, uid)
	if err != nil {
		return nil, err
	}

	items := make([]models.CartItem, 0, len(cart.Items))
	for _, it := range cart.Items {
		if it.MenuItemID != menuItemID {
			items = append(items, it)
		}
	}
	return r.setItems(ctx, cart, items)
}

// Clear empties the cart but keeps the document.
func (r *CartRepository) Clear(ctx context.Context, uid string) (*models.Cart, error) {
	cart, err := r.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	return r.setItems(ctx, cart, []models.CartItem{})
}

// Delete removes the cart document entirely. Used once the cart's contents
// have been materialized into an order.
func (r *CartRepository) Delete(ctx context.Context, uid string) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"uid": uid})
	return err
}

func (r *CartRepository) setItems(ctx context.Context, cart *models.Cart, items []models.CartItem) (*models.Cart, error) {
	now := time.Now().UTC()
	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": cart.ID},
		bson.M{"$set": bson.M{"items": items, "updatedAt": now}})
	if err != nil {
		return nil, err
	}
	cart.Items = items
	cart.UpdatedAt = now
	return cart, nil
}
