package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// schemaStatements create the four tables. The exclusion constraint is the storage-level
// guarantee that no two reservations on one room overlap.
var schemaStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS btree_gist`,
	`CREATE TABLE IF NOT EXISTS buildings (
		id   INTEGER PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS floors (
		id           INTEGER PRIMARY KEY,
		building_id  INTEGER NOT NULL REFERENCES buildings(id),
		floor_number INTEGER NOT NULL,
		UNIQUE (building_id, floor_number)
	)`,
	`CREATE TABLE IF NOT EXISTS rooms (
		id       INTEGER PRIMARY KEY,
		floor_id INTEGER NOT NULL REFERENCES floors(id),
		name     TEXT NOT NULL,
		UNIQUE (floor_id, name)
	)`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id             BIGSERIAL PRIMARY KEY,
		reservation_id TEXT NOT NULL UNIQUE,
		building_id    INTEGER NOT NULL,
		floor_id       INTEGER NOT NULL,
		room_id        INTEGER NOT NULL REFERENCES rooms(id),
		user_name      TEXT NOT NULL,
		purpose        TEXT NOT NULL DEFAULT '',
		title          TEXT NOT NULL,
		start_datetime TIMESTAMP NOT NULL,
		end_datetime   TIMESTAMP NOT NULL,
		CHECK (start_datetime < end_datetime),
		CONSTRAINT reservations_no_overlap EXCLUDE USING gist (
			building_id WITH =,
			floor_id WITH =,
			room_id WITH =,
			tsrange(start_datetime, end_datetime, '[)') WITH &&
		)
	)`,
	`CREATE INDEX IF NOT EXISTS reservations_user_start_idx ON reservations (user_name, start_datetime)`,
}

// EnsureSchema applies schemaStatements in order. Every statement is idempotent.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
