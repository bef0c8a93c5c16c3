// Seeds the catering section of the menu. Safe to re-run: items are upserted
// by (category, section, name).
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/insomnia-fuel/cafe-api/pkg/config"
	"github.com/insomnia-fuel/cafe-api/pkg/logger"
	"github.com/insomnia-fuel/cafe-api/pkg/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type seedItem struct {
	Section     string
	Name        string
	Description string
	Price       float64
}

var cateringItems = []seedItem{
	{"Breakfast or Afternoon Platters to Share", "Fresh Fruit Platter", "Seasonal Fruit to Share", 69},
	{"Breakfast or Afternoon Platters to Share", "Assorted Savoury Platter", "Selection of Quiches, Sausage or Spinach Rolls, Pies", 69},
	{"Breakfast or Afternoon Platters to Share", "Assorted Sweet Platter", "Selection of assorted muffins, friands, danishes, sweet slices, banana breads", 69},
	{"Breakfast or Afternoon Platters to Share", "Bacon & Egg Slider Platter", "", 69},
	{"Breakfast or Afternoon Platters to Share", "Savoury Croissant Platter", "", 79},
	{"Breakfast or Afternoon Platters to Share", "Sweet Croissant Platter", "", 79},
	{"Lunch Platters to Share", "Assorted Gourment Wraps Platter (Large)", "Mixed wraps from our Wraps Menu", 99},
	{"Lunch Platters to Share", "Assorted Gourment Wraps Platter (Med)", "Mixed wraps from our Wraps Menu", 79},
	{"Lunch Platters to Share", "Assorted Point Sandwiches Platter (Med)", "Mixed sandwiches from our Sandwich Menu", 69},
	{"Lunch Platters to Share", "Assorted Point Sandwiches Platter (Large)", "Mixed sandwiches from our Sandwich Menu", 89},
	{"Lunch Platters to Share", "BBQ Grilled Platter large", "", 119},
	{"Lunch Platters to Share", "Cheese Platter (with Crackers and Dry fruits)", "", 89},
	{"Lunch Platters to Share", "Gourmet Mezze Platter (with Dips)", "", 89},
	{"Lunch Platters to Share", "Lunch Slider Platter", "", 79},
	{"Lunch Platters to Share", "Salad Trays", "", 79},
	{"Lunch Platters to Share", "Schnitzel Bites Platter", "", 69},
	{"Gourmet Hot Food Platter", "Spaghetti Bolognese Large (10-12 People)", "Serve 12-14 people", 99},
	{"Gourmet Hot Food Platter", "Penne Pesto with Chicken Large (10-12 People)", "Serve 12-14 people", 99},
	{"Gourmet Hot Food Platter", "Tortellini Boscaiola Large (10-12 People)", "Serve 12-14 people", 99},
	{"Gourmet Hot Food Platter", "Chicken & Mushroom Risotto Large (10-12 People)", "Serve 12-14 people", 99},
	{"Gourmet Hot Food Platter", "Chicken and Veg Fried Rice Large (10-12 People)", "Serve 12-14 people", 99},
	{"Gourmet Hot Food Platter", "Chicken, Chorizo & Seafood Paella Large (10-12 People)", "Serve 12-14 people", 119},
}

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log, err := logger.New(&cfg.Log)
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer log.Sync()

	mongo, err := repository.NewMongoRepository(&cfg.MongoDB)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	defer mongo.Close(ctx)

	col := mongo.Collection("menuitems")
	now := time.Now().UTC()

	inserted, updated := 0, 0
	for _, item := range cateringItems {
		filter := bson.M{
			"category": "catering",
			"section":  item.Section,
			"name":     item.Name,
		}
		update := bson.M{
			"$set": bson.M{
				"description": item.Description,
				"price":       item.Price,
				"isAvailable": true,
				"isFeatured":  false,
				"updatedAt":   now,
			},
			"$setOnInsert": bson.M{
				"category":  "catering",
				"section":   item.Section,
				"name":      item.Name,
				"createdAt": now,
			},
		}

		res, err := col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
		if err != nil {
			log.Fatal("Catering seed failed", zap.String("name", item.Name), zap.Error(err))
		}
		if res.UpsertedCount > 0 {
			inserted++
		} else if res.MatchedCount > 0 {
			updated++
		}
	}

	log.Info("Catering seed complete",
		zap.Int("inserted", inserted),
		zap.Int("updated", updated))
}
