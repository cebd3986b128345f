// File: database/repository/catalog/memory.go
package catalogRepo

import (
	"context"
	"sync"

	"meetingroom/models"
)

// MemoryCatalogRepo keeps the catalog in process. Used by the memory store driver and
// in tests.
type MemoryCatalogRepo struct {
	mu      sync.RWMutex
	catalog models.Catalog
}

// NewMemoryCatalogRepo returns an empty in-memory catalog.
func NewMemoryCatalogRepo() *MemoryCatalogRepo {
	return &MemoryCatalogRepo{}
}

func (r *MemoryCatalogRepo) ListBuildings(_ context.Context) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]int, len(r.catalog.Buildings))
	for _, b := range r.catalog.Buildings {
		out[b.Name] = b.ID
	}
	return out, nil
}

func (r *MemoryCatalogRepo) ListFloors(_ context.Context, buildingID int) (map[int]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[int]int)
	for _, f := range r.catalog.Floors {
		if f.BuildingID == buildingID {
			out[f.FloorNumber] = f.ID
		}
	}
	return out, nil
}

func (r *MemoryCatalogRepo) ListRooms(_ context.Context, buildingID, floorID int) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	found := false
	for _, f := range r.catalog.Floors {
		if f.ID == floorID && f.BuildingID == buildingID {
			found = true
			break
		}
	}
	if !found {
		return nil, ErrNotFound
	}

	out := make(map[string]int)
	for _, rm := range r.catalog.Rooms {
		if rm.FloorID == floorID {
			out[rm.Name] = rm.ID
		}
	}
	return out, nil
}

func (r *MemoryCatalogRepo) SeedIfEmpty(_ context.Context, catalog models.Catalog) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.catalog.Buildings) > 0 {
		return false, nil
	}
	r.catalog = models.Catalog{
		Buildings: append([]models.Building(nil), catalog.Buildings...),
		Floors:    append([]models.Floor(nil), catalog.Floors...),
		Rooms:     append([]models.Room(nil), catalog.Rooms...),
	}
	return true, nil
}
