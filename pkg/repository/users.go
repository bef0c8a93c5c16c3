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

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(m *MongoRepository) *UserRepository {
	return &UserRepository{col: m.Collection(usersCollection)}
}

type CreateUserParams struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
	Phone       string
	Role        models.UserRole
}

func (r *UserRepository) Create(ctx context.Context, params CreateUserParams) (*models.User, error) {
	role := params.Role
	if role == "" {
		role = models.RoleUser
	}
	now := time.Now().UTC()

	user := models.User{
		UID:         params.UID,
		Email:       params.Email,
		DisplayName: params.DisplayName,
		PhotoURL:    params.PhotoURL,
		Phone:       params.Phone,
		Role:        role,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	res, err := r.col.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		// Already synced; treat as an update of the mutable profile fields.
		_, uerr := r.col.UpdateOne(ctx, bson.M{"uid": params.UID}, bson.M{"$set": bson.M{
			"email":       params.Email,
			"displayName": params.DisplayName,
			"photoURL":    params.PhotoURL,
			"phone":       params.Phone,
			"updatedAt":   now,
		}})
		if uerr != nil {
			return nil, uerr
		}
		return r.GetByUID(ctx, params.UID)
	}
	if err != nil {
		return nil, err
	}

	user.ID = res.InsertedID.(primitive.ObjectID)
	return &user, nil
}

func (r *UserRepository) GetByUID(ctx context.Context, uid string) (*models.User, error) {
	var user models.User
	err := r.col.FindOne(ctx, bson.M{"uid": uid}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

type UserPage struct {
	Items []models.User `json:"items"`
	Total int64         `json:"total"`
}

func (r *UserRepository) ListPaginated(ctx context.Context, page, limit int64) (*UserPage, error) {
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

	items := []models.User{}
	if err = cursor.All(ctx, &items); err != nil {
		return nil, err
	}

	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, err
	}

	return &UserPage{Items: items, Total: total}, nil
}

func (r *UserRepository) Delete(ctx context.Context, uid string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"uid": uid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
