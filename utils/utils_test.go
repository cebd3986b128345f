package utils

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"meetingroom/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusForCode(t *testing.T) {
	tests := map[models.ErrorCode]int{
		"":                            http.StatusOK,
		models.Conflict:               http.StatusConflict,
		models.NotFound:               http.StatusNotFound,
		models.UnknownLocation:        http.StatusNotFound,
		models.UnsupportedIntent:      http.StatusNotFound,
		models.MalformedIdentifier:    http.StatusBadRequest,
		models.InvalidRequest:         http.StatusBadRequest,
		models.IncompleteRequest:      http.StatusBadRequest,
		models.ExternalServiceFailure: http.StatusBadGateway,
		"Other":                       http.StatusInternalServerError,
	}
	for code, want := range tests {
		assert.Equal(t, want, StatusForCode(code), string(code))
	}
}

func TestRunHealthChecks(t *testing.T) {
	status := RunHealthChecks(context.Background(), []HealthCheck{
		{Name: "store", Ping: func(context.Context) error { return nil }},
		{Name: "redis", Ping: func(context.Context) error { return errors.New("refused") }},
	})
	assert.Equal(t, map[string]bool{"store": true, "redis": false}, status.Services)
	assert.False(t, status.Healthy())
	assert.Equal(t, status, GetHealthStatus())
}

func TestStartHealthMonitor_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := make(chan struct{}, 16)
	StartHealthMonitor(ctx, 10*time.Millisecond, []HealthCheck{{Name: "store", Ping: func(context.Context) error {
		select {
		case calls <- struct{}{}:
		default:
		}
		return nil
	}}})

	// The first check runs synchronously.
	require.Len(t, calls, 1)
	assert.True(t, GetHealthStatus().Healthy())

	require.Eventually(t, func() bool { return len(calls) >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(context.Background(), mr.Addr(), "", 1)
	require.NoError(t, err)
	defer client.Close()
	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())

	_, err = NewRedisClient(context.Background(), "127.0.0.1:1", "", 0)
	assert.Error(t, err)
}
