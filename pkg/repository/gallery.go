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

type GalleryRepository struct {
	col *mongo.Collection
}

func NewGalleryRepository(m *MongoRepository) *GalleryRepository {
	return &GalleryRepository{col: m.Collection(galleryCollection)}
}

func (r *GalleryRepository) List(ctx context.Context) ([]models.GalleryImage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := []models.GalleryImage{}
	if err = cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GalleryRepository) Get(ctx context.Context, id string) (*models.GalleryImage, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var img models.GalleryImage
	err = r.col.FindOne(ctx, bson.M{"_id": objID}).Decode(&img)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &img, nil
}

type GalleryInput struct {
	PublicID  string `json:"publicId"`
	URL       string `json:"url"`
	SecureURL string `json:"secureUrl"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Format    string `json:"format"`
	Bytes     int64  `json:"bytes"`
	Alt       string `json:"alt"`
}

func (r *GalleryRepository) Create(ctx context.Context, input GalleryInput) (*models.GalleryImage, error) {
	now := time.Now().UTC()

	secureURL := input.SecureURL
	if secureURL == "" {
		secureURL = input.URL
	}

	img := models.GalleryImage{
		PublicID:  input.PublicID,
		URL:       input.URL,
		SecureURL: secureURL,
		Width:     input.Width,
		Height:    input.Height,
		Format:    input.Format,
		Bytes:     input.Bytes,
		Alt:       input.Alt,
		CreatedAt: now,
		UpdatedAt: now,
	}

	res, err := r.col.InsertOne(ctx, img)
	if err != nil {
		return nil, err
	}
	img.ID = res.InsertedID.(primitive.ObjectID)
	return &img, nil
}

func (r *GalleryRepository) Delete(ctx context.Context, id string) error {
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
