package booking

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"meetingroom/models"
)

const idTimeLayout = "20060102_1504"

// ReservationID derives the identifier of a reservation starting at start on scope:
// "{building}_{floor}_{room}_{YYYYMMDD_HHMM}".
func ReservationID(scope models.RoomScope, start time.Time) string {
	return fmt.Sprintf("%d_%d_%d_%s", scope.BuildingID, scope.FloorID, scope.RoomID, start.Format(idTimeLayout))
}

// ParseReservationID recovers the room scope from an identifier. The time part is not
// validated.
func ParseReservationID(id string) (models.RoomScope, error) {
	parts := strings.Split(strings.TrimSpace(id), "_")
	if len(parts) < 4 {
		return models.RoomScope{}, malformed(id)
	}
	var ids [3]int
	for i := range ids {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return models.RoomScope{}, malformed(id)
		}
		ids[i] = n
	}
	return models.RoomScope{BuildingID: ids[0], FloorID: ids[1], RoomID: ids[2]}, nil
}

func malformed(id string) error {
	return &models.DomainError{Code: models.MalformedIdentifier, Message: fmt.Sprintf("잘못된 예약 ID 형식입니다: %q", id)}
}
