package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type GalleryImage struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	PublicID  string             `bson:"publicId" json:"publicId"`
	URL       string             `bson:"url" json:"url"`
	SecureURL string             `bson:"secureUrl" json:"secureUrl"`
	Width     int                `bson:"width" json:"width"`
	Height    int                `bson:"height" json:"height"`
	Format    string             `bson:"format" json:"format"`
	Bytes     int64              `bson:"bytes" json:"bytes"`
	Alt       string             `bson:"alt" json:"alt"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
