package app

import (
	"context"
	"testing"
	"time"

	"meetingroom/config"
	catalogRepo "meetingroom/database/repository/catalog"
	"meetingroom/models"
	"meetingroom/services/agent"
	ai "meetingroom/services/intelligence"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type unknownNLU struct{}

func (unknownNLU) Classify(context.Context, string, time.Time) (*models.RouteOutput, error) {
	return &models.RouteOutput{Intent: "Unknown"}, nil
}

func (unknownNLU) ExtractBookSlots(context.Context, string, time.Time) (*models.BookSlots, error) {
	return &models.BookSlots{}, nil
}

func (unknownNLU) ExtractCheckSlots(context.Context, string, time.Time) (*models.CheckSlots, error) {
	return &models.CheckSlots{}, nil
}

func (unknownNLU) Summarize(context.Context, models.Params, *models.ActionResult) (string, error) {
	return "", nil
}

func memoryConfig() *config.Config {
	return &config.Config{
		StoreDriver:            "memory",
		CatalogDir:             "../data/buildings",
		CatalogCacheTTLMinutes: 10,
		RunTTLMinutes:          60,
		RedisRunDB:             1,
	}
}

func TestNew_MemoryDriver(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, memoryConfig(), zap.NewNop(), Options{NLU: unknownNLU{}})
	require.NoError(t, err)
	defer a.Close(ctx)

	buildings, err := a.Catalog.ListBuildings(ctx)
	require.NoError(t, err)
	assert.Len(t, buildings, 3)
	assert.IsType(t, &ai.MemoryRunStore{}, a.Runs)
	assert.Empty(t, a.HealthChecks)

	rec, err := a.Workflow.Run(ctx, "아무 말")
	require.NoError(t, err)
	assert.Equal(t, agent.FallbackAnswer, rec.FinalAnswer)

	stored, err := a.Runs.Get(ctx, rec.RunID)
	require.NoError(t, err)
	assert.Equal(t, rec.FinalAnswer, stored.FinalAnswer)
}

func TestNew_WithRedis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	cfg := memoryConfig()
	cfg.RedisAddr = mr.Addr()

	a, err := New(ctx, cfg, zap.NewNop(), Options{NLU: unknownNLU{}})
	require.NoError(t, err)
	defer a.Close(ctx)

	assert.IsType(t, &catalogRepo.CachedCatalog{}, a.Catalog)
	assert.IsType(t, &ai.RedisRunStore{}, a.Runs)
	assert.Len(t, a.HealthChecks, 2)
	for _, check := range a.HealthChecks {
		assert.NoError(t, check.Ping(ctx), check.Name)
	}
}

func TestNew_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("missing api key", func(t *testing.T) {
		_, err := New(ctx, memoryConfig(), zap.NewNop(), Options{})
		assert.EqualError(t, err, "GEMINI_API_KEY is required")
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := memoryConfig()
		cfg.StoreDriver = "sqlite"
		_, err := New(ctx, cfg, zap.NewNop(), Options{NLU: unknownNLU{}})
		assert.ErrorContains(t, err, "unknown store driver")
	})

	t.Run("missing catalog dir", func(t *testing.T) {
		cfg := memoryConfig()
		cfg.CatalogDir = t.TempDir()
		_, err := New(ctx, cfg, zap.NewNop(), Options{NLU: unknownNLU{}})
		assert.Error(t, err)
	})
}
