package reservationRepo

import (
	"context"
	"testing"
	"time"

	"meetingroom/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memReservation(id string, room int, start, end time.Time) models.Reservation {
	return models.Reservation{ReservationID: id, BuildingID: 1, FloorID: 2, RoomID: room, UserName: "alice", Start: start, End: end}
}

func TestMemoryTx_RollbackDiscardsWrites(t *testing.T) {
	repo := NewMemoryReservationRepo()
	ctx := context.Background()

	tx, err := repo.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Insert(ctx, memReservation("a", 3, pgStart, pgEnd)))

	// Writes are private to the transaction until commit.
	_, err = repo.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
	got, err := tx.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.UserName)

	require.NoError(t, tx.Rollback(ctx))
	_, err = repo.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryTx_InsertRejectsOverlapAndDuplicate(t *testing.T) {
	repo := NewMemoryReservationRepo()
	ctx := context.Background()

	tx, err := repo.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	require.NoError(t, tx.Insert(ctx, memReservation("a", 3, pgStart, pgEnd)))
	assert.ErrorIs(t, tx.Insert(ctx, memReservation("a", 4, pgStart, pgEnd)), ErrOverlap)
	assert.ErrorIs(t, tx.Insert(ctx, memReservation("b", 3, pgStart.Add(30*time.Minute), pgEnd.Add(30*time.Minute))), ErrOverlap)
	// Back to back is fine, and so is another room.
	assert.NoError(t, tx.Insert(ctx, memReservation("c", 3, pgEnd, pgEnd.Add(time.Hour))))
	assert.NoError(t, tx.Insert(ctx, memReservation("d", 4, pgStart, pgEnd)))
	require.NoError(t, tx.Commit(ctx))

	rs, err := repo.RoomReservations(ctx, pgScope, pgStart.Add(-time.Hour), pgEnd.Add(2*time.Hour), "")
	require.NoError(t, err)
	require.Len(t, rs, 2)
	assert.Equal(t, "a", rs[0].ReservationID)
	assert.Equal(t, "c", rs[1].ReservationID)
}

func TestMemoryTx_SerializesWriters(t *testing.T) {
	repo := NewMemoryReservationRepo()
	ctx := context.Background()

	first, err := repo.Begin(ctx)
	require.NoError(t, err)

	began := make(chan struct{})
	go func() {
		second, err := repo.Begin(ctx)
		if err == nil {
			second.Rollback(ctx)
		}
		close(began)
	}()

	select {
	case <-began:
		t.Fatal("second transaction began while the first was open")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, first.Commit(ctx))
	select {
	case <-began:
	case <-time.After(time.Second):
		t.Fatal("second transaction never began")
	}
}

func TestMemoryUserReservations_Ordering(t *testing.T) {
	repo := NewMemoryReservationRepo()
	ctx := context.Background()

	tx, err := repo.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Insert(ctx, memReservation("z", 3, pgStart, pgEnd)))
	require.NoError(t, tx.Insert(ctx, memReservation("y", 4, pgStart, pgEnd)))
	require.NoError(t, tx.Insert(ctx, memReservation("x", 3, pgStart.Add(-2*time.Hour), pgStart.Add(-time.Hour))))
	require.NoError(t, tx.Commit(ctx))

	rs, err := repo.UserReservations(ctx, "alice", pgStart.Add(-3*time.Hour), pgEnd, nil)
	require.NoError(t, err)
	var ids []string
	for _, r := range rs {
		ids = append(ids, r.ReservationID)
	}
	assert.Equal(t, []string{"x", "y", "z"}, ids)
}
