package location

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	catalogRepo "meetingroom/database/repository/catalog"
	"meetingroom/models"
)

// Resolver maps user-entered building/floor/room references to catalog ids. It is the
// only place a models.LocationRef is interpreted.
type Resolver struct {
	Catalog catalogRepo.CatalogRepository
}

func NewResolver(catalog catalogRepo.CatalogRepository) *Resolver {
	return &Resolver{Catalog: catalog}
}

// match applies the resolution order: a known id, then an exact name, then a numeric
// string naming a known id.
func match(ref models.LocationRef, byName map[string]int) (int, bool) {
	ids := make(map[int]bool, len(byName))
	for _, id := range byName {
		ids[id] = true
	}
	if ref.ByID {
		return ref.ID, ids[ref.ID]
	}
	if id, ok := byName[ref.Name]; ok {
		return id, true
	}
	if n, err := strconv.Atoi(ref.Name); err == nil && ids[n] {
		return n, true
	}
	return 0, false
}

func missing(level models.LocationLevel) error {
	labels := map[models.LocationLevel]string{
		models.LevelBuilding: "빌딩",
		models.LevelFloor:    "층",
		models.LevelRoom:     "회의실",
	}
	return models.NewDomainError(models.IncompleteRequest, "%s 정보가 필요합니다.", labels[level])
}

func (r *Resolver) ResolveBuilding(ctx context.Context, ref models.LocationRef) (int, error) {
	if ref.IsZero() {
		return 0, missing(models.LevelBuilding)
	}
	buildings, err := r.Catalog.ListBuildings(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load buildings: %w", err)
	}
	if id, ok := match(ref, buildings); ok {
		return id, nil
	}
	return 0, &models.UnknownLocationError{Level: models.LevelBuilding, Value: ref.String()}
}

// ResolveFloor resolves within one building. A floor's name is its floor number, and an
// integer ref is read as a floor number of the building before it is tried as a floor id.
func (r *Resolver) ResolveFloor(ctx context.Context, buildingID int, ref models.LocationRef) (int, error) {
	if ref.IsZero() {
		return 0, missing(models.LevelFloor)
	}
	floors, err := r.Catalog.ListFloors(ctx, buildingID)
	if err != nil {
		return 0, fmt.Errorf("failed to load floors of building %d: %w", buildingID, err)
	}
	if ref.ByID {
		if id, ok := floors[ref.ID]; ok {
			return id, nil
		}
	}
	byNumber := make(map[string]int, len(floors))
	for number, id := range floors {
		byNumber[strconv.Itoa(number)] = id
	}
	if id, ok := match(ref, byNumber); ok {
		return id, nil
	}
	return 0, &models.UnknownLocationError{
		Level: models.LevelFloor,
		Value: ref.String(),
		Scope: fmt.Sprintf("building_id=%d", buildingID),
	}
}

func (r *Resolver) ResolveRoom(ctx context.Context, buildingID, floorID int, ref models.LocationRef) (int, error) {
	if ref.IsZero() {
		return 0, missing(models.LevelRoom)
	}
	scope := fmt.Sprintf("building_id=%d, floor_id=%d", buildingID, floorID)
	rooms, err := r.Catalog.ListRooms(ctx, buildingID, floorID)
	if errors.Is(err, catalogRepo.ErrNotFound) {
		return 0, &models.UnknownLocationError{Level: models.LevelFloor, Value: strconv.Itoa(floorID), Scope: fmt.Sprintf("building_id=%d", buildingID)}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load rooms (%s): %w", scope, err)
	}
	if id, ok := match(ref, rooms); ok {
		return id, nil
	}
	return 0, &models.UnknownLocationError{Level: models.LevelRoom, Value: ref.String(), Scope: scope}
}

// ResolveScope resolves a full room reference. When floor is empty the room name is
// looked up on every floor of the building and must match exactly one room.
func (r *Resolver) ResolveScope(ctx context.Context, building, floor, room models.LocationRef) (models.RoomScope, error) {
	var scope models.RoomScope

	buildingID, err := r.ResolveBuilding(ctx, building)
	if err != nil {
		return scope, err
	}
	scope.BuildingID = buildingID

	if !floor.IsZero() {
		if scope.FloorID, err = r.ResolveFloor(ctx, buildingID, floor); err != nil {
			return scope, err
		}
		if scope.RoomID, err = r.ResolveRoom(ctx, buildingID, scope.FloorID, room); err != nil {
			return scope, err
		}
		return scope, nil
	}

	if room.IsZero() {
		return scope, missing(models.LevelRoom)
	}
	return r.searchRoom(ctx, buildingID, room)
}

func (r *Resolver) searchRoom(ctx context.Context, buildingID int, room models.LocationRef) (models.RoomScope, error) {
	floors, err := r.Catalog.ListFloors(ctx, buildingID)
	if err != nil {
		return models.RoomScope{}, fmt.Errorf("failed to load floors of building %d: %w", buildingID, err)
	}
	numbers := make([]int, 0, len(floors))
	for n := range floors {
		numbers = append(numbers, n)
	}
	slices.Sort(numbers)

	var found []models.RoomScope
	var where []string
	for _, n := range numbers {
		rooms, err := r.Catalog.ListRooms(ctx, buildingID, floors[n])
		if err != nil {
			return models.RoomScope{}, fmt.Errorf("failed to load rooms of floor %d: %w", floors[n], err)
		}
		if id, ok := match(room, rooms); ok {
			found = append(found, models.RoomScope{BuildingID: buildingID, FloorID: floors[n], RoomID: id})
			where = append(where, strconv.Itoa(n)+"층")
		}
	}

	switch len(found) {
	case 1:
		return found[0], nil
	case 0:
		return models.RoomScope{}, &models.UnknownLocationError{
			Level: models.LevelRoom,
			Value: room.String(),
			Scope: fmt.Sprintf("building_id=%d", buildingID),
		}
	default:
		return models.RoomScope{}, models.NewDomainError(models.IncompleteRequest,
			"%q 회의실이 여러 층에 있습니다 (%s). 층을 알려주세요.", room.String(), strings.Join(where, ", "))
	}
}
