package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	reservationRepo "meetingroom/database/repository/reservation"
	"meetingroom/models"

	"go.uber.org/zap"
)

const defaultMaxAttempts = 3

// Manager creates, updates and cancels reservations. Every write runs in one store
// transaction that locks the target room, checks for overlaps and writes; the
// transaction commits only when the Outcome is OK.
type Manager struct {
	Store       reservationRepo.ReservationRepository
	Logger      *zap.Logger
	MaxAttempts int
}

func NewManager(store reservationRepo.ReservationRepository, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{Store: store, Logger: logger, MaxAttempts: defaultMaxAttempts}
}

// CreateRequest holds a fully resolved new reservation.
type CreateRequest struct {
	Scope    models.RoomScope
	UserName string
	Purpose  string
	Title    string
	Start    time.Time
	End      time.Time
}

// Changes is a partial update. Nil fields keep their current value.
type Changes struct {
	Scope    *models.RoomScope
	Start    *time.Time
	End      *time.Time
	UserName *string
	Purpose  *string
	Title    *string
}

// Get returns the reservation or ErrNotFound from the store.
func (m *Manager) Get(ctx context.Context, reservationID string) (*models.Reservation, error) {
	return m.Store.Get(ctx, reservationID)
}

// CheckAvailability reports whether [start, end) is free on scope and, if not, which
// reservation is in the way and where the same duration would fit that day.
func (m *Manager) CheckAvailability(ctx context.Context, scope models.RoomScope, start, end time.Time) (Availability, error) {
	if !start.Before(end) {
		return Availability{}, &models.DomainError{Code: invalidRange.Code, Message: invalidRange.Message}
	}
	engine := NewEngine(m.Store)
	conflictID, found, err := engine.Overlaps(ctx, scope, start, end, "")
	if err != nil {
		return Availability{}, err
	}
	if !found {
		return Availability{Available: true}, nil
	}
	suggestions, err := engine.SuggestSlots(ctx, scope, start, end, DefaultSuggestionCount, "")
	if err != nil {
		return Availability{}, err
	}
	return Availability{ConflictID: conflictID, Suggestions: suggestions}, nil
}

func (m *Manager) Create(ctx context.Context, req CreateRequest) (Outcome, error) {
	if !req.Start.Before(req.End) {
		return invalidRange, nil
	}
	reservation := models.Reservation{
		ReservationID: ReservationID(req.Scope, req.Start),
		BuildingID:    req.Scope.BuildingID,
		FloorID:       req.Scope.FloorID,
		RoomID:        req.Scope.RoomID,
		UserName:      req.UserName,
		Purpose:       req.Purpose,
		Title:         req.Title,
		Start:         req.Start,
		End:           req.End,
	}

	out, err := m.inTx(ctx, func(tx reservationRepo.Tx) (Outcome, error) {
		if err := tx.LockRoom(ctx, req.Scope); err != nil {
			return Outcome{}, err
		}
		if out, blocked, err := m.checkConflict(ctx, tx, req.Scope, req.Start, req.End, ""); err != nil || blocked {
			return out, err
		}
		if err := tx.Insert(ctx, reservation); err != nil {
			return Outcome{}, err
		}
		return success("예약이 성공적으로 추가되었습니다.", reservation.ReservationID), nil
	})
	if errors.Is(err, reservationRepo.ErrOverlap) {
		return m.storeRejected(ctx, req.Scope, req.Start, req.End, "")
	}
	if err != nil {
		return Outcome{}, err
	}
	m.logOutcome("create", out)
	return out, nil
}

func (m *Manager) Cancel(ctx context.Context, reservationID string) (Outcome, error) {
	if _, err := ParseReservationID(reservationID); err != nil {
		return failureFrom(err), nil
	}
	out, err := m.inTx(ctx, func(tx reservationRepo.Tx) (Outcome, error) {
		deleted, err := tx.Delete(ctx, reservationID)
		if err != nil {
			return Outcome{}, err
		}
		if !deleted {
			return notFound, nil
		}
		return success("예약이 성공적으로 취소되었습니다.", reservationID), nil
	})
	if err != nil {
		return Outcome{}, err
	}
	m.logOutcome("cancel", out)
	return out, nil
}

// Update merges changes over the stored reservation. Moving it in space or time
// replaces the record under a freshly derived id; descriptive edits keep the id.
func (m *Manager) Update(ctx context.Context, reservationID string, changes Changes) (Outcome, error) {
	if _, err := ParseReservationID(reservationID); err != nil {
		return failureFrom(err), nil
	}

	var target models.Reservation
	out, err := m.inTx(ctx, func(tx reservationRepo.Tx) (Outcome, error) {
		existing, err := tx.Get(ctx, reservationID)
		if errors.Is(err, reservationRepo.ErrNotFound) {
			return notFound, nil
		}
		if err != nil {
			return Outcome{}, err
		}

		target = merge(*existing, changes)
		if !target.Start.Before(target.End) {
			return invalidRange, nil
		}

		moved := target.Scope() != existing.Scope() ||
			!target.Start.Equal(existing.Start) || !target.End.Equal(existing.End)
		if !moved {
			if err := tx.UpdateDetails(ctx, reservationID, target.UserName, target.Purpose, target.Title); err != nil {
				return Outcome{}, err
			}
			return success("예약이 성공적으로 수정되었습니다.", reservationID), nil
		}

		if err := tx.LockRoom(ctx, target.Scope()); err != nil {
			return Outcome{}, err
		}
		if out, blocked, err := m.checkConflict(ctx, tx, target.Scope(), target.Start, target.End, reservationID); err != nil || blocked {
			return out, err
		}
		target.ReservationID = ReservationID(target.Scope(), target.Start)
		if _, err := tx.Delete(ctx, reservationID); err != nil {
			return Outcome{}, err
		}
		if err := tx.Insert(ctx, target); err != nil {
			return Outcome{}, err
		}
		return success(fmt.Sprintf("예약이 성공적으로 수정되었습니다. 새 예약 ID: %s", target.ReservationID), target.ReservationID), nil
	})
	if errors.Is(err, reservationRepo.ErrOverlap) {
		return m.storeRejected(ctx, target.Scope(), target.Start, target.End, reservationID)
	}
	if err != nil {
		return Outcome{}, err
	}
	m.logOutcome("update", out)
	return out, nil
}

// ListForUser returns the user's reservations intersecting [fromDay 00:00,
// toDay 23:59:59], ordered by start then id.
func (m *Manager) ListForUser(ctx context.Context, userName string, fromDay, toDay time.Time, buildingID *int) ([]models.Reservation, error) {
	from := models.DayStart(fromDay)
	to := models.DayStart(toDay).Add(24*time.Hour - time.Second)
	return m.Store.UserReservations(ctx, userName, from, to, buildingID)
}

func merge(r models.Reservation, c Changes) models.Reservation {
	if c.Scope != nil {
		r.BuildingID, r.FloorID, r.RoomID = c.Scope.BuildingID, c.Scope.FloorID, c.Scope.RoomID
	}
	if c.Start != nil {
		r.Start = *c.Start
	}
	if c.End != nil {
		r.End = *c.End
	}
	if c.UserName != nil {
		r.UserName = *c.UserName
	}
	if c.Purpose != nil {
		r.Purpose = *c.Purpose
	}
	if c.Title != nil {
		r.Title = *c.Title
	}
	return r
}

// checkConflict runs the overlap check inside tx. blocked is true when out carries a
// Conflict with suggestions for the same room and day.
func (m *Manager) checkConflict(ctx context.Context, tx reservationRepo.Tx, scope models.RoomScope, start, end time.Time, excludeID string) (Outcome, bool, error) {
	engine := NewEngine(tx)
	conflictID, found, err := engine.Overlaps(ctx, scope, start, end, excludeID)
	if err != nil || !found {
		return Outcome{}, false, err
	}
	suggestions, err := engine.SuggestSlots(ctx, scope, start, end, DefaultSuggestionCount, excludeID)
	if err != nil {
		return Outcome{}, false, err
	}
	return conflict(conflictID, suggestions), true, nil
}

// storeRejected builds the Conflict outcome after the store itself refused a write. The
// failed transaction is gone, so the conflicting reservation is looked up again.
func (m *Manager) storeRejected(ctx context.Context, scope models.RoomScope, start, end time.Time, excludeID string) (Outcome, error) {
	engine := NewEngine(m.Store)
	conflictID, _, err := engine.Overlaps(ctx, scope, start, end, excludeID)
	if err != nil {
		return Outcome{}, err
	}
	suggestions, err := engine.SuggestSlots(ctx, scope, start, end, DefaultSuggestionCount, excludeID)
	if err != nil {
		return Outcome{}, err
	}
	out := conflict(conflictID, suggestions)
	m.logOutcome("store constraint", out)
	return out, nil
}

// inTx runs fn in a fresh transaction, retrying when a concurrent writer on the same
// room aborted it.
func (m *Manager) inTx(ctx context.Context, fn func(tx reservationRepo.Tx) (Outcome, error)) (Outcome, error) {
	attempts := m.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		out, err := m.runOnce(ctx, fn)
		if !errors.Is(err, reservationRepo.ErrConcurrentWrite) {
			return out, err
		}
		lastErr = err
		m.Logger.Warn("reservation transaction aborted by a concurrent writer, retrying",
			zap.Int("attempt", attempt), zap.Error(err))
	}
	return Outcome{}, lastErr
}

func (m *Manager) runOnce(ctx context.Context, fn func(tx reservationRepo.Tx) (Outcome, error)) (Outcome, error) {
	tx, err := m.Store.Begin(ctx)
	if err != nil {
		return Outcome{}, err
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			m.Logger.Warn("reservation rollback failed", zap.Error(rbErr))
		}
	}()

	out, err := fn(tx)
	if err != nil || !out.OK {
		return out, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Outcome{}, err
	}
	return out, nil
}

func (m *Manager) logOutcome(op string, out Outcome) {
	if out.OK {
		m.Logger.Debug("reservation "+op+" succeeded", zap.String("reservationID", out.ReservationID))
		return
	}
	m.Logger.Info("reservation "+op+" rejected",
		zap.String("code", string(out.Code)),
		zap.String("message", out.Message),
		zap.String("conflictID", out.ConflictID))
}
