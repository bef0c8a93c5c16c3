package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MenuSubItem struct {
	Name  string  `bson:"name" json:"name"`
	Price float64 `bson:"price" json:"price"`
}

type MenuItem struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Category    string             `bson:"category" json:"category"`
	Section     string             `bson:"section" json:"section"`
	Price       float64            `bson:"price" json:"price"`
	IsAvailable bool               `bson:"isAvailable" json:"isAvailable"`
	IsFeatured  bool               `bson:"isFeatured" json:"isFeatured"`
	SubItems    []MenuSubItem      `bson:"subItems" json:"subItems"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NormalizeSubItems trims names and drops entries without one, so the stored
// shape is always [{name, price}].
func NormalizeSubItems(raw []MenuSubItem) []MenuSubItem {
	out := make([]MenuSubItem, 0, len(raw))
	for _, it := range raw {
		name := strings.TrimSpace(it.Name)
		if name == "" {
			continue
		}
		out = append(out, MenuSubItem{Name: name, Price: it.Price})
	}
	return out
}
