// File: database/repository/catalog/postgres.go
package catalogRepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"meetingroom/models"
)

type postgresCatalogRepo struct {
	db      *sql.DB
	timeout time.Duration
}

// NewPostgresCatalogRepo constructs a CatalogRepository over the buildings, floors and
// rooms tables. timeout bounds each call; zero means DefaultTimeout.
func NewPostgresCatalogRepo(db *sql.DB, timeout time.Duration) CatalogRepository {
	return &postgresCatalogRepo{db: db, timeout: callTimeout(timeout)}
}

func (r *postgresCatalogRepo) ListBuildings(ctx context.Context) (map[string]int, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM buildings`)
	if err != nil {
		return nil, fmt.Errorf("failed to list buildings: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var id int
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan building: %w", err)
		}
		out[name] = id
	}
	return out, rows.Err()
}

func (r *postgresCatalogRepo) ListFloors(ctx context.Context, buildingID int) (map[int]int, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx,
		`SELECT floor_number, id FROM floors WHERE building_id = $1`, buildingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list floors of building %d: %w", buildingID, err)
	}
	defer rows.Close()

	out := make(map[int]int)
	for rows.Next() {
		var number, id int
		if err := rows.Scan(&number, &id); err != nil {
			return nil, fmt.Errorf("failed to scan floor: %w", err)
		}
		out[number] = id
	}
	return out, rows.Err()
}

func (r *postgresCatalogRepo) ListRooms(ctx context.Context, buildingID, floorID int) (map[string]int, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var exists int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM floors WHERE id = $1 AND building_id = $2`, floorID, buildingID).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up floor %d: %w", floorID, err)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT name, id FROM rooms WHERE floor_id = $1`, floorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms of floor %d: %w", floorID, err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var name string
		var id int
		if err := rows.Scan(&name, &id); err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		out[name] = id
	}
	return out, rows.Err()
}

func (r *postgresCatalogRepo) SeedIfEmpty(ctx context.Context, catalog models.Catalog) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	// Serializes concurrent seeders starting against an empty database.
	if _, err := tx.ExecContext(ctx, `LOCK TABLE buildings IN EXCLUSIVE MODE`); err != nil {
		return false, fmt.Errorf("failed to lock buildings: %w", err)
	}

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM buildings`).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to count buildings: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	for _, b := range catalog.Buildings {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO buildings (id, name) VALUES ($1, $2)`, b.ID, b.Name); err != nil {
			return false, fmt.Errorf("failed to insert building %q: %w", b.Name, err)
		}
	}
	for _, f := range catalog.Floors {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO floors (id, building_id, floor_number) VALUES ($1, $2, $3)`,
			f.ID, f.BuildingID, f.FloorNumber); err != nil {
			return false, fmt.Errorf("failed to insert floor %d: %w", f.ID, err)
		}
	}
	for _, rm := range catalog.Rooms {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO rooms (id, floor_id, name) VALUES ($1, $2, $3)`,
			rm.ID, rm.FloorID, rm.Name); err != nil {
			return false, fmt.Errorf("failed to insert room %q: %w", rm.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit seed: %w", err)
	}
	return true, nil
}
