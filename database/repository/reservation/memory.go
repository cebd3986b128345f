// File: database/repository/reservation/memory.go
package reservationRepo

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"meetingroom/models"
)

// MemoryReservationRepo keeps reservations in process. A transaction holds the writer
// lock from Begin to Commit or Rollback and works on a private copy, so concurrent
// lifecycle operations are fully serialized.
type MemoryReservationRepo struct {
	writer sync.Mutex
	mu     sync.RWMutex
	data   map[string]models.Reservation
}

func NewMemoryReservationRepo() *MemoryReservationRepo {
	return &MemoryReservationRepo{data: make(map[string]models.Reservation)}
}

func (r *MemoryReservationRepo) Begin(ctx context.Context) (Tx, error) {
	r.writer.Lock()
	r.mu.RLock()
	snapshot := maps.Clone(r.data)
	r.mu.RUnlock()
	return &memoryTx{repo: r, data: snapshot}, nil
}

func (r *MemoryReservationRepo) view() memoryView {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return memoryView(maps.Clone(r.data))
}

func (r *MemoryReservationRepo) Get(ctx context.Context, id string) (*models.Reservation, error) {
	return r.view().Get(ctx, id)
}

func (r *MemoryReservationRepo) FindOverlapping(ctx context.Context, scope models.RoomScope, start, end time.Time, excludeID string) (string, bool, error) {
	return r.view().FindOverlapping(ctx, scope, start, end, excludeID)
}

func (r *MemoryReservationRepo) RoomReservations(ctx context.Context, scope models.RoomScope, from, to time.Time, excludeID string) ([]models.Reservation, error) {
	return r.view().RoomReservations(ctx, scope, from, to, excludeID)
}

func (r *MemoryReservationRepo) UserReservations(ctx context.Context, userName string, from, to time.Time, buildingID *int) ([]models.Reservation, error) {
	return r.view().UserReservations(ctx, userName, from, to, buildingID)
}

type memoryTx struct {
	repo *MemoryReservationRepo
	data map[string]models.Reservation
	done bool
}

// LockRoom is a no-op: the writer lock already covers every room.
func (t *memoryTx) LockRoom(context.Context, models.RoomScope) error { return nil }

func (t *memoryTx) Insert(ctx context.Context, r models.Reservation) error {
	if _, exists := t.data[r.ReservationID]; exists {
		return ErrOverlap
	}
	if _, found, _ := memoryView(t.data).FindOverlapping(ctx, r.Scope(), r.Start, r.End, ""); found {
		return ErrOverlap
	}
	t.data[r.ReservationID] = r
	return nil
}

func (t *memoryTx) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := t.data[id]; !ok {
		return false, nil
	}
	delete(t.data, id)
	return true, nil
}

func (t *memoryTx) UpdateDetails(_ context.Context, id, userName, purpose, title string) error {
	r, ok := t.data[id]
	if !ok {
		return ErrNotFound
	}
	r.UserName, r.Purpose, r.Title = userName, purpose, title
	t.data[id] = r
	return nil
}

func (t *memoryTx) Commit(context.Context) error {
	if t.done {
		return nil
	}
	t.repo.mu.Lock()
	t.repo.data = t.data
	t.repo.mu.Unlock()
	t.finish()
	return nil
}

func (t *memoryTx) Rollback(context.Context) error {
	if !t.done {
		t.finish()
	}
	return nil
}

func (t *memoryTx) finish() {
	t.done = true
	t.repo.writer.Unlock()
}

func (t *memoryTx) Get(ctx context.Context, id string) (*models.Reservation, error) {
	return memoryView(t.data).Get(ctx, id)
}

func (t *memoryTx) FindOverlapping(ctx context.Context, scope models.RoomScope, start, end time.Time, excludeID string) (string, bool, error) {
	return memoryView(t.data).FindOverlapping(ctx, scope, start, end, excludeID)
}

func (t *memoryTx) RoomReservations(ctx context.Context, scope models.RoomScope, from, to time.Time, excludeID string) ([]models.Reservation, error) {
	return memoryView(t.data).RoomReservations(ctx, scope, from, to, excludeID)
}

func (t *memoryTx) UserReservations(ctx context.Context, userName string, from, to time.Time, buildingID *int) ([]models.Reservation, error) {
	return memoryView(t.data).UserReservations(ctx, userName, from, to, buildingID)
}

// memoryView answers Reader queries over one map.
type memoryView map[string]models.Reservation

func (v memoryView) Get(_ context.Context, id string) (*models.Reservation, error) {
	r, ok := v[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (v memoryView) FindOverlapping(ctx context.Context, scope models.RoomScope, start, end time.Time, excludeID string) (string, bool, error) {
	matches, _ := v.RoomReservations(ctx, scope, start, end, excludeID)
	if len(matches) == 0 {
		return "", false, nil
	}
	return matches[0].ReservationID, true, nil
}

func (v memoryView) RoomReservations(_ context.Context, scope models.RoomScope, from, to time.Time, excludeID string) ([]models.Reservation, error) {
	window := models.TimeRange{Start: from, End: to}
	var out []models.Reservation
	for id, r := range v {
		if id == excludeID || r.Scope() != scope || !r.Range().Overlaps(window) {
			continue
		}
		out = append(out, r)
	}
	sortChronologically(out)
	return out, nil
}

func (v memoryView) UserReservations(_ context.Context, userName string, from, to time.Time, buildingID *int) ([]models.Reservation, error) {
	var out []models.Reservation
	for _, r := range v {
		if r.UserName != userName || r.Start.After(to) || !r.End.After(from) {
			continue
		}
		if buildingID != nil && r.BuildingID != *buildingID {
			continue
		}
		out = append(out, r)
	}
	sortChronologically(out)
	return out, nil
}

func sortChronologically(rs []models.Reservation) {
	slices.SortFunc(rs, func(a, b models.Reservation) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		return strings.Compare(a.ReservationID, b.ReservationID)
	})
}
