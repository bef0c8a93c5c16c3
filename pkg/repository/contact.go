package repository

import (
	"context"
	"strings"
	"time"

	"github.com/insomnia-fuel/cafe-api/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ContactRepository struct {
	col *mongo.Collection
}

func NewContactRepository(m *MongoRepository) *ContactRepository {
	return &ContactRepository{col: m.Collection(contactCollection)}
}

type ContactInput struct {
	UserID  string
	Name    string
	Email   string
	Message string
}

func (r *ContactRepository) Create(ctx context.Context, input ContactInput) (*models.ContactMessage, error) {
	msg := models.ContactMessage{
		UserID:    input.UserID,
		Name:      strings.TrimSpace(input.Name),
		Email:     strings.TrimSpace(input.Email),
		Message:   strings.TrimSpace(input.Message),
		Handled:   false,
		CreatedAt: time.Now().UTC(),
	}

	res, err := r.col.InsertOne(ctx, msg)
	if err != nil {
		return nil, err
	}
	msg.ID = res.InsertedID.(primitive.ObjectID)
	return &msg, nil
}

type ContactPage struct {
	Items []models.ContactMessage `json:"items"`
	Total int64                   `json:"total"`
}

func (r *ContactRepository) ListPaginated(ctx context.Context, page, limit int64) (*ContactPage, error) {
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

	items := []models.ContactMessage{}
	if err = cursor.All(ctx, &items); err != nil {
		return nil, err
	}

	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, err
	}

	return &ContactPage{Items: items, Total: total}, nil
}

func (r *ContactRepository) MarkHandled(ctx context.Context, id string, handled bool) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": objID},
		bson.M{"$set": bson.M{"handled": handled}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
