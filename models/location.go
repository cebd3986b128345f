package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// LocationRef is a building/floor/room reference as entered by a user: either a display
// name (for floors, the floor number) or an already-resolved catalog id. Only the
// location resolver interprets it.
type LocationRef struct {
	Name string
	ID   int
	ByID bool
}

// RefByName references a catalog entry by its display name.
func RefByName(name string) LocationRef {
	return LocationRef{Name: strings.TrimSpace(name)}
}

// RefByID references a catalog entry by its id.
func RefByID(id int) LocationRef {
	return LocationRef{ID: id, ByID: true}
}

// IsZero reports whether the reference carries nothing.
func (r LocationRef) IsZero() bool {
	return !r.ByID && r.Name == ""
}

func (r LocationRef) String() string {
	if r.ByID {
		return strconv.Itoa(r.ID)
	}
	return r.Name
}

// MarshalJSON renders ids as numbers and names as strings.
func (r LocationRef) MarshalJSON() ([]byte, error) {
	if r.ByID {
		return []byte(strconv.Itoa(r.ID)), nil
	}
	return json.Marshal(r.Name)
}

// UnmarshalJSON maps JSON numbers to ids and JSON strings to names.
func (r *LocationRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = LocationRef{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = RefByName(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("location reference must be a string or an integer: %w", err)
	}
	id, err := n.Int64()
	if err != nil {
		return fmt.Errorf("location id must be an integer: %s", n)
	}
	*r = RefByID(int(id))
	return nil
}

// RoomScope identifies one bookable room.
type RoomScope struct {
	BuildingID int `json:"building_id" bson:"building_id"`
	FloorID    int `json:"floor_id" bson:"floor_id"`
	RoomID     int `json:"room_id" bson:"room_id"`
}

func (s RoomScope) String() string {
	return fmt.Sprintf("%d_%d_%d", s.BuildingID, s.FloorID, s.RoomID)
}
