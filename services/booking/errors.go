package booking

import (
	"fmt"

	"meetingroom/models"
)

// Outcome is the explicit result of a lifecycle operation. Expected failures (conflict,
// not found, malformed id, bad input) are reported here with OK=false; the error return
// of an operation is reserved for storage failures.
type Outcome struct {
	OK            bool
	Code          models.ErrorCode
	Message       string
	ReservationID string
	ConflictID    string
	Suggestions   []models.TimeRange
}

func success(message, reservationID string) Outcome {
	return Outcome{OK: true, Message: message, ReservationID: reservationID}
}

func failure(code models.ErrorCode, message string) Outcome {
	return Outcome{Code: code, Message: message}
}

// failureFrom converts a *models.DomainError into an Outcome.
func failureFrom(err error) Outcome {
	return failure(models.CodeOf(err), models.MessageOf(err))
}

func conflict(conflictID string, suggestions []models.TimeRange) Outcome {
	return Outcome{
		Code:        models.Conflict,
		Message:     fmt.Sprintf("예약이 겹칩니다. 충돌하는 예약: %s", conflictID),
		ConflictID:  conflictID,
		Suggestions: suggestions,
	}
}

// MsgNotFound is reported for every lookup of a missing reservation.
const MsgNotFound = "존재하지 않는 예약입니다."

var (
	notFound     = failure(models.NotFound, MsgNotFound)
	invalidRange = failure(models.InvalidRequest, "종료시각은 시작시각 이후여야 합니다.")
)

// Availability is the answer of CheckAvailability.
type Availability struct {
	Available   bool
	ConflictID  string
	Suggestions []models.TimeRange
}
