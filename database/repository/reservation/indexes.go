// FILE: database/repository/reservation/indexes.go
package reservationRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureMongoIndexes creates the reservation indexes. The unique index on reservation_id
// also rejects two bookings starting at the same minute on the same room.
func EnsureMongoIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "reservation_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_reservation_id"),
		},
		{
			Keys: bson.D{
				{Key: "building_id", Value: 1},
				{Key: "floor_id", Value: 1},
				{Key: "room_id", Value: 1},
				{Key: "start_datetime", Value: 1},
			},
			Options: options.Index().SetName("room_start_idx"),
		},
		{
			Keys:    bson.D{{Key: "user_name", Value: 1}, {Key: "start_datetime", Value: 1}},
			Options: options.Index().SetName("user_start_idx"),
		},
	}

	if _, err := db.Collection("reservations").Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create reservation indexes: %w", err)
	}
	return nil
}
