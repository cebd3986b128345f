package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseISO(t *testing.T) {
	got, err := ParseISO(" 2025-08-13T09:30 ")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 8, 13, 9, 30, 0, 0, time.UTC), got)
	assert.Equal(t, "2025-08-13T09:30", FormatISO(got))

	for _, bad := range []string{"", "2025-08-13", "2025-08-13 09:30", "2025-13-01T09:00", "2025-08-13T09:30:00"} {
		_, err := ParseISO(bad)
		assert.Equal(t, InvalidRequest, CodeOf(err), bad)
	}
}

func TestCivil(t *testing.T) {
	seoul := time.FixedZone("KST", 9*3600)
	got := Civil(time.Date(2025, 8, 13, 23, 15, 0, 0, seoul))
	assert.Equal(t, time.Date(2025, 8, 13, 23, 15, 0, 0, time.UTC), got)
	assert.Equal(t, time.Date(2025, 8, 13, 0, 0, 0, 0, time.UTC), DayStart(got))
	assert.Equal(t, time.Date(2025, 8, 13, 19, 0, 0, 0, time.UTC), At(got, 19, 0))
}

func TestTimeRange_Overlaps(t *testing.T) {
	at := func(h int) time.Time { return time.Date(2025, 8, 13, h, 0, 0, 0, time.UTC) }
	a := TimeRange{Start: at(10), End: at(11)}

	assert.True(t, a.Overlaps(TimeRange{Start: at(10), End: at(11)}))
	assert.True(t, a.Overlaps(TimeRange{Start: at(9), End: at(12)}))
	assert.False(t, a.Overlaps(TimeRange{Start: at(11), End: at(12)}))
	assert.False(t, a.Overlaps(TimeRange{Start: at(9), End: at(10)}))
	assert.Equal(t, time.Hour, a.Duration())
	assert.Equal(t, Slot{Start: "2025-08-13T10:00", End: "2025-08-13T11:00"}, a.ToSlot())
}

func TestLocationRef_JSON(t *testing.T) {
	var refs struct {
		Building LocationRef `json:"building"`
		Floor    LocationRef `json:"floor"`
		Room     LocationRef `json:"room"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"building":"본관","floor":3,"room":null}`), &refs))
	assert.Equal(t, RefByName("본관"), refs.Building)
	assert.Equal(t, RefByID(3), refs.Floor)
	assert.True(t, refs.Room.IsZero())

	out, err := json.Marshal(refs)
	require.NoError(t, err)
	assert.JSONEq(t, `{"building":"본관","floor":3,"room":""}`, string(out))

	var bad LocationRef
	assert.Error(t, json.Unmarshal([]byte(`2.5`), &bad))
	assert.Error(t, json.Unmarshal([]byte(`true`), &bad))
}

func TestRoomScope_String(t *testing.T) {
	assert.Equal(t, "1_2_3", RoomScope{BuildingID: 1, FloorID: 2, RoomID: 3}.String())
}

func TestDomainErrors(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewDomainError(Conflict, "겹침 %d", 1))
	assert.Equal(t, Conflict, CodeOf(err))
	assert.Equal(t, "겹침 1", MessageOf(err))

	plain := errors.New("boom")
	assert.Equal(t, ErrorCode(""), CodeOf(plain))
	assert.Equal(t, "boom", MessageOf(plain))

	unknown := &UnknownLocationError{Level: LevelRoom, Value: "Z", Scope: "building_id=1, floor_id=2"}
	assert.Equal(t, UnknownLocation, CodeOf(unknown))
	assert.Equal(t, "알 수 없는 회의실: Z (building_id=1, floor_id=2)", MessageOf(unknown))

	failed := FailureResult(unknown)
	assert.False(t, failed.OK)
	assert.Equal(t, UnknownLocation, failed.Code)

	failed = FailureResult(fmt.Errorf("failed to load buildings: %w", errors.New("dial tcp: connection refused")))
	assert.Equal(t, ExternalServiceFailure, failed.Code)
	assert.Equal(t, "failed to load buildings: dial tcp: connection refused", failed.Error)
}

func TestParseIntent(t *testing.T) {
	assert.Equal(t, IntentBook, ParseIntent("Book"))
	assert.Equal(t, IntentUnknown, ParseIntent("book"))
	assert.Equal(t, IntentUnknown, ParseIntent(""))
}
