package models

import "time"

// Reservation is a booked half-open interval on one room.
type Reservation struct {
	ReservationID string    `json:"reservation_id" bson:"reservation_id"`
	BuildingID    int       `json:"building_id" bson:"building_id"`
	FloorID       int       `json:"floor_id" bson:"floor_id"`
	RoomID        int       `json:"room_id" bson:"room_id"`
	UserName      string    `json:"user_name" bson:"user_name"`
	Purpose       string    `json:"purpose" bson:"purpose"`
	Title         string    `json:"title" bson:"title"`
	Start         time.Time `json:"start_datetime" bson:"start_datetime"`
	End           time.Time `json:"end_datetime" bson:"end_datetime"`
}

// Scope returns the room the reservation is on.
func (r Reservation) Scope() RoomScope {
	return RoomScope{BuildingID: r.BuildingID, FloorID: r.FloorID, RoomID: r.RoomID}
}

// Range returns the booked interval.
func (r Reservation) Range() TimeRange {
	return TimeRange{Start: r.Start, End: r.End}
}

// ReservationSummary is one item of a user's reservation listing.
type ReservationSummary struct {
	ReservationID string `json:"reservation_id"`
	BuildingID    int    `json:"building_id"`
	FloorID       int    `json:"floor_id"`
	RoomID        int    `json:"room_id"`
	Title         string `json:"title"`
	Purpose       string `json:"purpose"`
	Start         string `json:"start"`
	End           string `json:"end"`
}

// Summary renders r for listings.
func (r Reservation) Summary() ReservationSummary {
	return ReservationSummary{
		ReservationID: r.ReservationID,
		BuildingID:    r.BuildingID,
		FloorID:       r.FloorID,
		RoomID:        r.RoomID,
		Title:         r.Title,
		Purpose:       r.Purpose,
		Start:         FormatISO(r.Start),
		End:           FormatISO(r.End),
	}
}
