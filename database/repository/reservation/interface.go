// File: database/repository/reservation/interface.go
package reservationRepo

import (
	"context"
	"errors"
	"time"

	"meetingroom/models"
)

var (
	// ErrNotFound is returned when no reservation carries the given id.
	ErrNotFound = errors.New("reservation not found")
	// ErrOverlap is returned when the store itself rejects a write because the interval
	// overlaps a live reservation on the same room, or the id already exists.
	ErrOverlap = errors.New("reservation overlaps an existing reservation")
	// ErrConcurrentWrite is returned when a competing transaction touched the same room.
	// The whole transaction may be retried.
	ErrConcurrentWrite = errors.New("concurrent write on the same room")
)

// DefaultTimeout bounds one store call when no timeout is configured.
const DefaultTimeout = 5 * time.Second

func callTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultTimeout
	}
	return d
}

// Reader holds the queries available both inside and outside a transaction.
type Reader interface {
	Get(ctx context.Context, reservationID string) (*models.Reservation, error)
	// FindOverlapping returns the id of the first reservation on scope intersecting
	// [start, end), ignoring excludeID (may be empty).
	FindOverlapping(ctx context.Context, scope models.RoomScope, start, end time.Time, excludeID string) (string, bool, error)
	// RoomReservations returns the reservations on scope intersecting [from, to), ignoring
	// excludeID, ascending by start.
	RoomReservations(ctx context.Context, scope models.RoomScope, from, to time.Time, excludeID string) ([]models.Reservation, error)
	// UserReservations returns the user's reservations with start <= to and end > from,
	// ascending by start then reservation id. buildingID narrows to one building.
	UserReservations(ctx context.Context, userName string, from, to time.Time, buildingID *int) ([]models.Reservation, error)
}

// Tx is one unit of lifecycle work. Callers LockRoom before checking and writing, and
// must end it with exactly one of Commit or Rollback. Rollback after Commit is a no-op.
type Tx interface {
	Reader
	LockRoom(ctx context.Context, scope models.RoomScope) error
	Insert(ctx context.Context, r models.Reservation) error
	Delete(ctx context.Context, reservationID string) (bool, error)
	UpdateDetails(ctx context.Context, reservationID, userName, purpose, title string) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// ReservationRepository is the reservation store.
type ReservationRepository interface {
	Reader
	Begin(ctx context.Context) (Tx, error)
}
