// File: database/repository/reservation/postgres.go
package reservationRepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"meetingroom/models"

	"github.com/lib/pq"
)

// reservationLockSpace is the first key of every per-room advisory lock.
const reservationLockSpace = 7301

const reservationColumns = `reservation_id, building_id, floor_id, room_id, user_name, purpose, title, start_datetime, end_datetime`

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type pgQueries struct {
	q       querier
	timeout time.Duration
}

type postgresReservationRepo struct {
	pgQueries
	db *sql.DB
}

// NewPostgresReservationRepo constructs a ReservationRepository over the reservations table.
// timeout bounds each statement; zero means DefaultTimeout.
func NewPostgresReservationRepo(db *sql.DB, timeout time.Duration) ReservationRepository {
	return &postgresReservationRepo{pgQueries: pgQueries{q: db, timeout: callTimeout(timeout)}, db: db}
}

func (r *postgresReservationRepo) Begin(ctx context.Context) (Tx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin reservation transaction: %w", err)
	}
	return &postgresTx{pgQueries: pgQueries{q: tx, timeout: r.timeout}, tx: tx}, nil
}

type postgresTx struct {
	pgQueries
	tx *sql.Tx
}

func (t *postgresTx) LockRoom(ctx context.Context, scope models.RoomScope) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	if _, err := t.tx.ExecContext(ctx,
		`SELECT pg_advisory_xact_lock($1::int, $2::int)`, reservationLockSpace, scope.RoomID); err != nil {
		return fmt.Errorf("failed to lock room %s: %w", scope, mapPgError(err))
	}
	return nil
}

func (t *postgresTx) Insert(ctx context.Context, r models.Reservation) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO reservations (`+reservationColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		r.ReservationID, r.BuildingID, r.FloorID, r.RoomID, r.UserName, r.Purpose, r.Title, r.Start, r.End)
	if err != nil {
		return fmt.Errorf("failed to insert reservation %s: %w", r.ReservationID, mapPgError(err))
	}
	return nil
}

func (t *postgresTx) Delete(ctx context.Context, reservationID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	res, err := t.tx.ExecContext(ctx, `DELETE FROM reservations WHERE reservation_id = $1`, reservationID)
	if err != nil {
		return false, fmt.Errorf("failed to delete reservation %s: %w", reservationID, mapPgError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (t *postgresTx) UpdateDetails(ctx context.Context, reservationID, userName, purpose, title string) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	res, err := t.tx.ExecContext(ctx,
		`UPDATE reservations SET user_name = $2, purpose = $3, title = $4 WHERE reservation_id = $1`,
		reservationID, userName, purpose, title)
	if err != nil {
		return fmt.Errorf("failed to update reservation %s: %w", reservationID, mapPgError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *postgresTx) Commit(_ context.Context) error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reservation transaction: %w", mapPgError(err))
	}
	return nil
}

func (t *postgresTx) Rollback(_ context.Context) error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

func (p pgQueries) Get(ctx context.Context, reservationID string) (*models.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	row := p.q.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE reservation_id = $1`, reservationID)
	res, err := scanReservation(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation %s: %w", reservationID, err)
	}
	return res, nil
}

func (p pgQueries) FindOverlapping(ctx context.Context, scope models.RoomScope, start, end time.Time, excludeID string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var id string
	err := p.q.QueryRowContext(ctx, `SELECT reservation_id FROM reservations
		WHERE building_id = $1 AND floor_id = $2 AND room_id = $3
		  AND start_datetime < $5 AND end_datetime > $4
		  AND reservation_id <> $6
		ORDER BY start_datetime, reservation_id
		LIMIT 1`,
		scope.BuildingID, scope.FloorID, scope.RoomID, start, end, excludeID).Scan(&id)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to check overlaps on %s: %w", scope, err)
	}
	return id, true, nil
}

func (p pgQueries) RoomReservations(ctx context.Context, scope models.RoomScope, from, to time.Time, excludeID string) ([]models.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	rows, err := p.q.QueryContext(ctx, `SELECT `+reservationColumns+` FROM reservations
		WHERE building_id = $1 AND floor_id = $2 AND room_id = $3
		  AND start_datetime < $5 AND end_datetime > $4
		  AND reservation_id <> $6
		ORDER BY start_datetime, reservation_id`,
		scope.BuildingID, scope.FloorID, scope.RoomID, from, to, excludeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations of %s: %w", scope, err)
	}
	return collectReservations(rows)
}

func (p pgQueries) UserReservations(ctx context.Context, userName string, from, to time.Time, buildingID *int) ([]models.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var sb strings.Builder
	sb.WriteString(`SELECT ` + reservationColumns + ` FROM reservations
		WHERE user_name = $1 AND start_datetime <= $3 AND end_datetime > $2`)
	args := []any{userName, from, to}
	if buildingID != nil {
		sb.WriteString(` AND building_id = $4`)
		args = append(args, *buildingID)
	}
	sb.WriteString(` ORDER BY start_datetime, reservation_id`)

	rows, err := p.q.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations of %q: %w", userName, err)
	}
	return collectReservations(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row rowScanner) (*models.Reservation, error) {
	var r models.Reservation
	if err := row.Scan(&r.ReservationID, &r.BuildingID, &r.FloorID, &r.RoomID,
		&r.UserName, &r.Purpose, &r.Title, &r.Start, &r.End); err != nil {
		return nil, err
	}
	r.Start = models.Civil(r.Start)
	r.End = models.Civil(r.End)
	return &r, nil
}

func collectReservations(rows *sql.Rows) ([]models.Reservation, error) {
	defer rows.Close()

	var out []models.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// mapPgError translates constraint and serialization failures into the package errors.
func mapPgError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case "23P01", "23505": // exclusion_violation, unique_violation
		return fmt.Errorf("%w: %s", ErrOverlap, pqErr.Message)
	case "40001", "40P01": // serialization_failure, deadlock_detected
		return fmt.Errorf("%w: %s", ErrConcurrentWrite, pqErr.Message)
	}
	return err
}
