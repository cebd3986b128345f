package ai

import (
	"context"
	"testing"
	"time"

	"meetingroom/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRun() *models.RunRecord {
	return &models.RunRecord{
		RunID:       "run-1",
		Query:       "내 예약 보여줘",
		Intent:      models.IntentMine,
		Params:      models.Params{"user_name": "alice"},
		Plan:        []string{"GetUserReservations"},
		Result:      &models.ActionResult{OK: true},
		FinalAnswer: "예약이 없습니다.",
		Trace:       []string{"Init", "Classify", "Plan", "Execute", "Report", "End"},
		CreatedAt:   time.Date(2025, 8, 13, 9, 0, 0, 0, time.UTC),
	}
}

func TestRedisRunStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewRedisRunStore(client, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleRun()))
	assert.True(t, mr.Exists("agent:run:run-1"))
	assert.Equal(t, time.Hour, mr.TTL("agent:run:run-1"))

	got, err := store.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, sampleRun().Trace, got.Trace)
	assert.Equal(t, models.IntentMine, got.Intent)
	assert.Equal(t, "alice", got.Params["user_name"])
	assert.True(t, got.Result.OK)

	_, err = store.Get(ctx, "unknown")
	assert.ErrorIs(t, err, ErrRunNotFound)

	mr.FastForward(2 * time.Hour)
	_, err = store.Get(ctx, "run-1")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestMemoryRunStore(t *testing.T) {
	store := NewMemoryRunStore()
	ctx := context.Background()

	rec := sampleRun()
	require.NoError(t, store.Save(ctx, rec))
	rec.FinalAnswer = "changed after save"

	got, err := store.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "예약이 없습니다.", got.FinalAnswer)

	_, err = store.Get(ctx, "unknown")
	assert.ErrorIs(t, err, ErrRunNotFound)
}
