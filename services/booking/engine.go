package booking

import (
	"context"
	"iter"
	"time"

	reservationRepo "meetingroom/database/repository/reservation"
	"meetingroom/models"
)

// Working window of every day, local civil time.
const (
	WorkdayOpenHour  = 9
	WorkdayCloseHour = 19
)

// DefaultSuggestionCount is how many alternative slots a conflict carries.
const DefaultSuggestionCount = 3

// Engine answers time-interval questions for one room against a reservation reader,
// which is either the store or an open transaction.
type Engine struct {
	Reader reservationRepo.Reader
}

func NewEngine(r reservationRepo.Reader) *Engine {
	return &Engine{Reader: r}
}

// Overlaps returns the id of a reservation on scope intersecting [start, end), ignoring
// excludeID.
func (e *Engine) Overlaps(ctx context.Context, scope models.RoomScope, start, end time.Time, excludeID string) (string, bool, error) {
	return e.Reader.FindOverlapping(ctx, scope, start, end, excludeID)
}

// WorkingWindow returns [09:00, 19:00) of day.
func WorkingWindow(day time.Time) models.TimeRange {
	return models.TimeRange{
		Start: models.At(day, WorkdayOpenHour, 0),
		End:   models.At(day, WorkdayCloseHour, 0),
	}
}

// FindGaps yields the free intervals of the working window of day, in order. Every
// iteration reloads the room's reservations, so the sequence can be ranged over again
// to observe new state. A load failure is yielded once as the error and ends the
// sequence.
func (e *Engine) FindGaps(ctx context.Context, scope models.RoomScope, day time.Time, excludeID string) iter.Seq2[models.TimeRange, error] {
	return func(yield func(models.TimeRange, error) bool) {
		dayStart := models.DayStart(day)
		booked, err := e.Reader.RoomReservations(ctx, scope, dayStart, dayStart.AddDate(0, 0, 1), excludeID)
		if err != nil {
			yield(models.TimeRange{}, err)
			return
		}
		for gap := range Gaps(WorkingWindow(day), booked) {
			if !yield(gap, nil) {
				return
			}
		}
	}
}

// Gaps sweeps window against booked, which must be sorted by start. Gaps are clipped
// to the window; gaps plus the booked intervals tile the window exactly.
func Gaps(window models.TimeRange, booked []models.Reservation) iter.Seq[models.TimeRange] {
	return func(yield func(models.TimeRange) bool) {
		cursor := window.Start
		for _, r := range booked {
			gapEnd := r.Start
			if gapEnd.After(window.End) {
				gapEnd = window.End
			}
			if cursor.Before(gapEnd) {
				if !yield(models.TimeRange{Start: cursor, End: gapEnd}) {
					return
				}
			}
			if r.End.After(cursor) {
				cursor = r.End
			}
		}
		if cursor.Before(window.End) {
			yield(models.TimeRange{Start: cursor, End: window.End})
		}
	}
}

// SuggestSlots returns up to count slots of the requested duration, each starting at
// the beginning of a gap on the day of start. It never looks at other days.
func (e *Engine) SuggestSlots(ctx context.Context, scope models.RoomScope, start, end time.Time, count int, excludeID string) ([]models.TimeRange, error) {
	duration := end.Sub(start)
	if duration <= 0 || count <= 0 {
		return nil, nil
	}
	var out []models.TimeRange
	for gap, err := range e.FindGaps(ctx, scope, start, excludeID) {
		if err != nil {
			return nil, err
		}
		if gap.Duration() >= duration {
			out = append(out, models.TimeRange{Start: gap.Start, End: gap.Start.Add(duration)})
		}
		if len(out) >= count {
			break
		}
	}
	return out, nil
}
