// File: database/repository/catalog/interface.go
package catalogRepo

import (
	"context"
	"errors"
	"time"

	"meetingroom/models"
)

// ErrNotFound is returned when a floor does not belong to the given building.
var ErrNotFound = errors.New("catalog entry not found")

// DefaultTimeout bounds one store call when no timeout is configured.
const DefaultTimeout = 5 * time.Second

func callTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultTimeout
	}
	return d
}

// CatalogRepository is the read-only view of buildings, floors and rooms, plus the
// one-time seed used at startup.
type CatalogRepository interface {
	// ListBuildings returns building name -> building id.
	ListBuildings(ctx context.Context) (map[string]int, error)
	// ListFloors returns floor number -> floor id for one building.
	ListFloors(ctx context.Context, buildingID int) (map[int]int, error)
	// ListRooms returns room name -> room id for one floor of one building.
	ListRooms(ctx context.Context, buildingID, floorID int) (map[string]int, error)
	// SeedIfEmpty writes catalog when no building exists yet and reports whether it did.
	SeedIfEmpty(ctx context.Context, catalog models.Catalog) (bool, error)
}
