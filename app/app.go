// Package app builds the process-wide dependency graph shared by the HTTP server and
// the CLI.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"meetingroom/config"
	"meetingroom/database"
	catalogRepo "meetingroom/database/repository/catalog"
	reservationRepo "meetingroom/database/repository/reservation"
	"meetingroom/services/actions"
	"meetingroom/services/agent"
	"meetingroom/services/booking"
	ai "meetingroom/services/intelligence"
	"meetingroom/utils"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// App holds every long-lived dependency.
type App struct {
	Config       *config.Config
	Logger       *zap.Logger
	Catalog      catalogRepo.CatalogRepository
	Reservations reservationRepo.ReservationRepository
	Manager      *booking.Manager
	Actions      *actions.Registry
	Runs         ai.RunStore
	NLU          ai.NLU
	Workflow     *agent.Workflow
	HealthChecks []utils.HealthCheck

	closers []func(context.Context) error
}

// Options lets callers substitute dependencies, mainly the NLU in tests and demos.
type Options struct {
	NLU ai.NLU
}

// New connects the configured stores, seeds the catalog and wires the services.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts Options) (*App, error) {
	a := &App{Config: cfg, Logger: logger}
	if err := a.initStores(ctx); err != nil {
		a.Close(ctx)
		return nil, err
	}
	if err := a.initCache(ctx); err != nil {
		a.Close(ctx)
		return nil, err
	}
	if err := a.seedCatalog(ctx); err != nil {
		a.Close(ctx)
		return nil, err
	}

	a.NLU = opts.NLU
	if a.NLU == nil {
		if cfg.GeminiAPIKey == "" {
			a.Close(ctx)
			return nil, errors.New("GEMINI_API_KEY is required")
		}
		gemini, err := ai.NewGeminiNLU(ctx, cfg.GeminiAPIKey, cfg.GeminiModel,
			ai.NewPromptManager(cfg.PromptsDir), cfg.NLUTimeout())
		if err != nil {
			a.Close(ctx)
			return nil, err
		}
		a.NLU = gemini
		a.closers = append(a.closers, func(context.Context) error { return gemini.Close() })
	}

	a.Manager = booking.NewManager(a.Reservations, logger.Named("booking"))
	a.Actions = actions.NewRegistry(a.Catalog, a.Manager, logger.Named("actions"))
	a.Workflow = agent.NewWorkflow(a.NLU, a.Actions, a.Runs, logger.Named("agent"))
	return a, nil
}

func (a *App) initStores(ctx context.Context) error {
	cfg := a.Config
	switch cfg.StoreDriver {
	case "postgres":
		db, err := database.InitPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func(context.Context) error { return db.Close() })
		a.HealthChecks = append(a.HealthChecks, utils.HealthCheck{Name: "postgres", Ping: db.PingContext})
		if err := database.EnsureSchema(ctx, db); err != nil {
			return err
		}
		a.usePostgres(db)

	case "mongo":
		client, err := database.InitMongo(ctx, cfg.MongoURL)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, client.Disconnect)
		a.HealthChecks = append(a.HealthChecks, utils.HealthCheck{
			Name: "mongo",
			Ping: func(ctx context.Context) error { return client.Ping(ctx, nil) },
		})
		db := client.Database(cfg.MongoDatabase)
		if err := catalogRepo.EnsureMongoIndexes(db); err != nil {
			return err
		}
		if err := reservationRepo.EnsureMongoIndexes(db); err != nil {
			return err
		}
		a.useMongo(db)

	case "memory":
		a.Catalog = catalogRepo.NewMemoryCatalogRepo()
		a.Reservations = reservationRepo.NewMemoryReservationRepo()

	default:
		return fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
	a.Logger.Info("store ready", zap.String("driver", cfg.StoreDriver))
	return nil
}

func (a *App) usePostgres(db *sql.DB) {
	timeout := a.Config.StoreTimeout()
	a.Catalog = catalogRepo.NewPostgresCatalogRepo(db, timeout)
	a.Reservations = reservationRepo.NewPostgresReservationRepo(db, timeout)
}

func (a *App) useMongo(db *mongo.Database) {
	timeout := a.Config.StoreTimeout()
	a.Catalog = catalogRepo.NewMongoCatalogRepo(db, timeout)
	a.Reservations = reservationRepo.NewMongoReservationRepo(db, timeout)
}

// initCache puts the Redis catalog cache in front of the store and keeps run records in
// Redis. Without REDIS_ADDR both stay in process.
func (a *App) initCache(ctx context.Context) error {
	cfg := a.Config
	if cfg.RedisAddr == "" {
		a.Runs = ai.NewMemoryRunStore()
		return nil
	}

	cacheClient, err := utils.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisCacheDB)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, func(context.Context) error { return cacheClient.Close() })
	runClient, err := utils.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisRunDB)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, func(context.Context) error { return runClient.Close() })

	for name, client := range map[string]*redis.Client{"redis-cache": cacheClient, "redis-runs": runClient} {
		c := client
		a.HealthChecks = append(a.HealthChecks, utils.HealthCheck{
			Name: name,
			Ping: func(ctx context.Context) error { return c.Ping(ctx).Err() },
		})
	}

	a.Catalog = catalogRepo.NewCachedCatalog(a.Catalog, cacheClient, cfg.CatalogCacheTTL(), a.Logger.Named("catalog-cache"))
	a.Runs = ai.NewRedisRunStore(runClient, cfg.RunTTL())
	return nil
}

func (a *App) seedCatalog(ctx context.Context) error {
	files, err := database.LoadCatalogDir(a.Config.CatalogDir)
	if err != nil {
		return err
	}
	catalog, err := database.BuildCatalog(files)
	if err != nil {
		return err
	}
	seeded, err := a.Catalog.SeedIfEmpty(ctx, catalog)
	if err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}
	if seeded {
		a.Logger.Info("catalog seeded",
			zap.Int("buildings", len(catalog.Buildings)),
			zap.Int("floors", len(catalog.Floors)),
			zap.Int("rooms", len(catalog.Rooms)))
	}
	return nil
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.Logger.Warn("close failed", zap.Error(err))
		}
	}
	a.closers = nil
}
