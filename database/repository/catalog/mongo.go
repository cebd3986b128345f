// File: database/repository/catalog/mongo.go
package catalogRepo

import (
	"context"
	"fmt"
	"time"

	"meetingroom/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoCatalogRepo struct {
	buildings *mongo.Collection
	floors    *mongo.Collection
	rooms     *mongo.Collection
	timeout   time.Duration
}

// NewMongoCatalogRepo constructs a CatalogRepository over the buildings, floors and rooms
// collections of db.
func NewMongoCatalogRepo(db *mongo.Database, timeout time.Duration) CatalogRepository {
	return &mongoCatalogRepo{
		buildings: db.Collection("buildings"),
		floors:    db.Collection("floors"),
		rooms:     db.Collection("rooms"),
		timeout:   callTimeout(timeout),
	}
}

func (r *mongoCatalogRepo) ListBuildings(ctx context.Context) (map[string]int, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cursor, err := r.buildings.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list buildings: %w", err)
	}
	var docs []models.Building
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("error decoding buildings: %w", err)
	}

	out := make(map[string]int, len(docs))
	for _, b := range docs {
		out[b.Name] = b.ID
	}
	return out, nil
}

func (r *mongoCatalogRepo) ListFloors(ctx context.Context, buildingID int) (map[int]int, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cursor, err := r.floors.Find(ctx, bson.M{"building_id": buildingID})
	if err != nil {
		return nil, fmt.Errorf("failed to list floors of building %d: %w", buildingID, err)
	}
	var docs []models.Floor
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("error decoding floors: %w", err)
	}

	out := make(map[int]int, len(docs))
	for _, f := range docs {
		out[f.FloorNumber] = f.ID
	}
	return out, nil
}

func (r *mongoCatalogRepo) ListRooms(ctx context.Context, buildingID, floorID int) (map[string]int, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var floor models.Floor
	err := r.floors.FindOne(ctx, bson.M{"id": floorID, "building_id": buildingID}).Decode(&floor)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up floor %d: %w", floorID, err)
	}

	cursor, err := r.rooms.Find(ctx, bson.M{"floor_id": floorID})
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms of floor %d: %w", floorID, err)
	}
	var docs []models.Room
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("error decoding rooms: %w", err)
	}

	out := make(map[string]int, len(docs))
	for _, rm := range docs {
		out[rm.Name] = rm.ID
	}
	return out, nil
}

func (r *mongoCatalogRepo) SeedIfEmpty(ctx context.Context, catalog models.Catalog) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	count, err := r.buildings.CountDocuments(ctx, bson.M{})
	if err != nil {
		return false, fmt.Errorf("failed to count buildings: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	// Unique indexes on id make a concurrent second seeder fail instead of duplicating.
	if err := insertAll(ctx, r.buildings, catalog.Buildings); err != nil {
		return false, fmt.Errorf("failed to insert buildings: %w", err)
	}
	if err := insertAll(ctx, r.floors, catalog.Floors); err != nil {
		return false, fmt.Errorf("failed to insert floors: %w", err)
	}
	if err := insertAll(ctx, r.rooms, catalog.Rooms); err != nil {
		return false, fmt.Errorf("failed to insert rooms: %w", err)
	}
	return true, nil
}

func insertAll[T any](ctx context.Context, coll *mongo.Collection, items []T) error {
	if len(items) == 0 {
		return nil
	}
	docs := make([]interface{}, len(items))
	for i := range items {
		docs[i] = items[i]
	}
	_, err := coll.InsertMany(ctx, docs)
	return err
}
