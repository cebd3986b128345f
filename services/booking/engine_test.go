package booking

import (
	"context"
	"testing"
	"time"

	reservationRepo "meetingroom/database/repository/reservation"
	"meetingroom/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testDay   = time.Date(2025, 8, 13, 0, 0, 0, 0, time.UTC)
	testScope = models.RoomScope{BuildingID: 1, FloorID: 2, RoomID: 3}
)

func at(hour, minute int) time.Time {
	return models.At(testDay, hour, minute)
}

func booked(scope models.RoomScope, user string, start, end time.Time) models.Reservation {
	return models.Reservation{
		ReservationID: ReservationID(scope, start),
		BuildingID:    scope.BuildingID,
		FloorID:       scope.FloorID,
		RoomID:        scope.RoomID,
		UserName:      user,
		Title:         "회의",
		Start:         start,
		End:           end,
	}
}

// seedStore commits rs directly, bypassing the lifecycle checks.
func seedStore(t *testing.T, rs ...models.Reservation) *reservationRepo.MemoryReservationRepo {
	t.Helper()
	store := reservationRepo.NewMemoryReservationRepo()
	ctx := context.Background()
	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	for _, r := range rs {
		require.NoError(t, tx.Insert(ctx, r))
	}
	require.NoError(t, tx.Commit(ctx))
	return store
}

func collectGaps(t *testing.T, e *Engine, scope models.RoomScope, day time.Time, excludeID string) []models.TimeRange {
	t.Helper()
	var out []models.TimeRange
	for gap, err := range e.FindGaps(context.Background(), scope, day, excludeID) {
		require.NoError(t, err)
		out = append(out, gap)
	}
	return out
}

func TestTimeRangeOverlaps_MatchesBruteForce(t *testing.T) {
	// Quarter hours between 09:00 and 11:00.
	var points []time.Time
	for m := 0; m <= 120; m += 15 {
		points = append(points, at(9, 0).Add(time.Duration(m)*time.Minute))
	}
	for _, s1 := range points {
		for _, e1 := range points {
			if !s1.Before(e1) {
				continue
			}
			for _, s2 := range points {
				for _, e2 := range points {
					if !s2.Before(e2) {
						continue
					}
					a := models.TimeRange{Start: s1, End: e1}
					b := models.TimeRange{Start: s2, End: e2}

					shared := false
					for p := s1; p.Before(e1); p = p.Add(time.Minute) {
						if !p.Before(s2) && p.Before(e2) {
							shared = true
							break
						}
					}
					require.Equal(t, shared, a.Overlaps(b), "%v %v", a, b)
					require.Equal(t, a.Overlaps(b), b.Overlaps(a))
				}
			}
		}
	}
}

func TestFindGaps_EmptyRoomIsWholeWindow(t *testing.T) {
	e := NewEngine(reservationRepo.NewMemoryReservationRepo())

	gaps := collectGaps(t, e, testScope, testDay, "")

	require.Len(t, gaps, 1)
	assert.Equal(t, models.TimeRange{Start: at(9, 0), End: at(19, 0)}, gaps[0])
}

func TestFindGaps_BetweenReservations(t *testing.T) {
	store := seedStore(t,
		booked(testScope, "alice", at(10, 0), at(11, 0)),
		booked(testScope, "bob", at(13, 0), at(14, 30)),
		// Other rooms and other days never show up.
		booked(models.RoomScope{BuildingID: 1, FloorID: 2, RoomID: 4}, "carol", at(9, 0), at(19, 0)),
		booked(testScope, "dave", at(10, 0).AddDate(0, 0, 1), at(12, 0).AddDate(0, 0, 1)),
	)
	e := NewEngine(store)

	gaps := collectGaps(t, e, testScope, testDay, "")

	assert.Equal(t, []models.TimeRange{
		{Start: at(9, 0), End: at(10, 0)},
		{Start: at(11, 0), End: at(13, 0)},
		{Start: at(14, 30), End: at(19, 0)},
	}, gaps)
}

func TestFindGaps_ExcludesReservation(t *testing.T) {
	mine := booked(testScope, "alice", at(10, 0), at(11, 0))
	store := seedStore(t, mine)
	e := NewEngine(store)

	gaps := collectGaps(t, e, testScope, testDay, mine.ReservationID)

	assert.Equal(t, []models.TimeRange{{Start: at(9, 0), End: at(19, 0)}}, gaps)
}

func TestFindGaps_ReloadsOnEachIteration(t *testing.T) {
	store := reservationRepo.NewMemoryReservationRepo()
	e := NewEngine(store)
	seq := e.FindGaps(context.Background(), testScope, testDay, "")

	count := func() int {
		n := 0
		for _, err := range seq {
			require.NoError(t, err)
			n++
		}
		return n
	}
	assert.Equal(t, 1, count())

	ctx := context.Background()
	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Insert(ctx, booked(testScope, "alice", at(12, 0), at(13, 0))))
	require.NoError(t, tx.Commit(ctx))

	assert.Equal(t, 2, count())
}

func TestGaps_ClippedToWindow(t *testing.T) {
	window := WorkingWindow(testDay)
	rs := []models.Reservation{
		booked(testScope, "early", at(7, 0), at(10, 0)),
		booked(testScope, "late", at(18, 0), at(21, 0)),
	}

	var gaps []models.TimeRange
	for g := range Gaps(window, rs) {
		gaps = append(gaps, g)
	}

	assert.Equal(t, []models.TimeRange{{Start: at(10, 0), End: at(18, 0)}}, gaps)
}

func TestGaps_TileTheWindow(t *testing.T) {
	window := WorkingWindow(testDay)
	rs := []models.Reservation{
		booked(testScope, "a", at(8, 30), at(9, 30)),
		booked(testScope, "b", at(9, 45), at(10, 15)),
		booked(testScope, "c", at(12, 0), at(12, 30)),
		booked(testScope, "d", at(16, 0), at(17, 0)),
	}

	var free time.Duration
	previousEnd := window.Start
	for g := range Gaps(window, rs) {
		assert.True(t, g.Start.Before(g.End))
		assert.False(t, g.Start.Before(previousEnd), "gaps are ordered and disjoint")
		for _, r := range rs {
			assert.False(t, g.Overlaps(r.Range()), "gap %v overlaps %s", g, r.UserName)
		}
		free += g.Duration()
		previousEnd = g.End
	}

	var busy time.Duration
	for _, r := range rs {
		start, end := r.Start, r.End
		if start.Before(window.Start) {
			start = window.Start
		}
		if end.After(window.End) {
			end = window.End
		}
		busy += end.Sub(start)
	}
	assert.Equal(t, window.Duration(), free+busy)
}

func TestGaps_StopsWhenConsumerStops(t *testing.T) {
	rs := []models.Reservation{booked(testScope, "a", at(10, 0), at(11, 0))}

	n := 0
	for range Gaps(WorkingWindow(testDay), rs) {
		n++
		break
	}
	assert.Equal(t, 1, n)
}

func TestSuggestSlots(t *testing.T) {
	store := seedStore(t,
		booked(testScope, "alice", at(9, 30), at(10, 0)),
		booked(testScope, "bob", at(11, 0), at(12, 0)),
		booked(testScope, "carol", at(13, 0), at(17, 0)),
	)
	e := NewEngine(store)
	ctx := context.Background()

	t.Run("only gaps long enough", func(t *testing.T) {
		got, err := e.SuggestSlots(ctx, testScope, at(11, 0), at(12, 0), 3, "")
		require.NoError(t, err)
		assert.Equal(t, []models.TimeRange{
			{Start: at(10, 0), End: at(11, 0)},
			{Start: at(12, 0), End: at(13, 0)},
			{Start: at(17, 0), End: at(18, 0)},
		}, got)
	})

	t.Run("honours count", func(t *testing.T) {
		got, err := e.SuggestSlots(ctx, testScope, at(11, 0), at(11, 30), 2, "")
		require.NoError(t, err)
		assert.Equal(t, []models.TimeRange{
			{Start: at(9, 0), End: at(9, 30)},
			{Start: at(10, 0), End: at(10, 30)},
		}, got)
	})

	t.Run("nothing fits", func(t *testing.T) {
		got, err := e.SuggestSlots(ctx, testScope, at(9, 0), at(19, 0), 3, "")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("empty range", func(t *testing.T) {
		got, err := e.SuggestSlots(ctx, testScope, at(11, 0), at(11, 0), 3, "")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
