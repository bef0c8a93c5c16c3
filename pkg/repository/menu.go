package repository

import (
	"context"
	"errors"
	"time"

	"github.com/insomnia-fuel/cafe-api/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MenuRepository struct {
	col *mongo.Collection
}

func NewMenuRepository(m *MongoRepository) *MenuRepository {
	return &MenuRepository{col: m.Collection(menuCollection)}
}

func (r *MenuRepository) List(ctx context.Context) ([]models.MenuItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := []models.MenuItem{}
	if err = cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *MenuRepository) Get(ctx context.Context, id string) (*models.MenuItem, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var item models.MenuItem
	err = r.col.FindOne(ctx, bson.M{"_id": objID}).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

type MenuItemInput struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Category    string               `json:"category"`
	Section     string               `json:"section"`
	Price       float64              `json:"price"`
	IsAvailable *bool                `json:"isAvailable"`
	IsFeatured  *bool                `json:"isFeatured"`
	SubItems    []models.MenuSubItem `json:"subItems"`
}

func (r *MenuRepository) Create(ctx context.Context, input MenuItemInput) (*models.MenuItem, error) {
	now := time.Now().UTC()

	available := true
	if input.IsAvailable != nil {
		available = *input.IsAvailable
	}
	featured := false
	if input.IsFeatured != nil {
		featured = *input.IsFeatured
	}

	item := models.MenuItem{
		Name:        input.Name,
		Description: input.Description,
		Category:    input.Category,
		Section:     input.Section,
		Price:       input.Price,
		IsAvailable: available,
		IsFeatured:  featured,
		SubItems:    models.NormalizeSubItems(input.SubItems),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	res, err := r.col.InsertOne(ctx, item)
	if err != nil {
		return nil, err
	}
	item.ID = res.InsertedID.(primitive.ObjectID)
	return &item, nil
}

func (r *MenuRepository) Update(ctx context.Context, id string, input MenuItemInput) (*models.MenuItem, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	update := bson.M{
		"name":        input.Name,
		"description": input.Description,
		"category":    input.Category,
		"section":     input.Section,
		"price":       input.Price,
		"subItems":    models.NormalizeSubItems(input.SubItems),
		"updatedAt":   time.Now().UTC(),
	}
	if input.IsAvailable != nil {
		update["isAvailable"] = *input.IsAvailable
	}
	if input.IsFeatured != nil {
		update["isFeatured"] = *input.IsFeatured
	}

	res := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": objID},
		bson.M{"$set": update},
		options.FindOneAndUpdate().SetReturnDocument(options.After))

	var item models.MenuItem
	if err := res.Decode(&item); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *MenuRepository) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
