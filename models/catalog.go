package models

// Building is a catalog building. Ids are externally assigned.
type Building struct {
	ID   int    `json:"id" bson:"id"`
	Name string `json:"name" bson:"name"`
}

// Floor belongs to one building; FloorNumber is unique within it.
type Floor struct {
	ID          int `json:"id" bson:"id"`
	BuildingID  int `json:"building_id" bson:"building_id"`
	FloorNumber int `json:"floor_number" bson:"floor_number"`
}

// Room belongs to one floor; Name is unique within it.
type Room struct {
	ID      int    `json:"id" bson:"id"`
	FloorID int    `json:"floor_id" bson:"floor_id"`
	Name    string `json:"name" bson:"name"`
}

// Catalog is the fully id-assigned static catalog written by seeding.
type Catalog struct {
	Buildings []Building
	Floors    []Floor
	Rooms     []Room
}

// RoomEntry is one row of the ListRooms action.
type RoomEntry struct {
	Name   string `json:"name"`
	RoomID int    `json:"room_id"`
}
