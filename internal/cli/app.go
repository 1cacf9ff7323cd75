// Package cli wires the application together and exposes it as cobra
// commands: local claim management, duplicate resolution, user accounts, and
// read-only access to backend reference data.
package cli

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"

	"github.com/trrcms/trrcms/internal/api"
	"github.com/trrcms/trrcms/internal/cache"
	"github.com/trrcms/trrcms/internal/config"
	"github.com/trrcms/trrcms/internal/controllers"
	"github.com/trrcms/trrcms/internal/events"
	"github.com/trrcms/trrcms/internal/services"
	"github.com/trrcms/trrcms/internal/store"
)

// App holds the fully wired application. It is assembled once per invocation
// by the root command's PersistentPreRunE and torn down after execution.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	DB     *sql.DB
	Bus    *events.Bus
	Client api.Client

	Migrations *store.MigrationManager
	Duplicates *services.DuplicateService

	Claims    *controllers.ClaimController
	Persons   *controllers.PersonController
	Buildings *controllers.BuildingController
	Units     *controllers.UnitController
	Tenure    *controllers.TenureController
	Users     *controllers.UserController
	Surveys   *controllers.SurveyController

	cache       cache.Cache
	sentryOn    bool
	initialized bool
}

// Init loads configuration and wires every layer. Pending schema migrations
// are applied before any command runs.
func (a *App) Init() error {
	if a.initialized {
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	a.Config = cfg
	a.Logger = config.NewLogger(cfg)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:           cfg.SentryDSN,
			EnableTracing: false,
		}); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to initialize error reporting")
		} else {
			a.sentryOn = true
		}
	}

	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	a.DB = db

	a.Migrations = store.NewMigrationManager(db, a.Logger)
	applied, err := a.Migrations.Migrate(cmdContext(), "")
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	if len(applied) > 0 {
		a.Logger.Info().Strs("versions", applied).Msg("Applied schema migrations")
	}

	a.Bus = events.NewBus(a.Logger)

	cacheLogger := services.CacheLogger{Logger: a.Logger}
	c, err := cache.New(cfg.Cache.Provider, cache.ProviderConfig{
		Size:          cfg.Cache.Size,
		TTL:           cfg.CacheTTL(),
		Logger:        cacheLogger,
		RedisAddress:  cfg.Cache.RedisAddress,
		RedisPassword: cfg.Cache.RedisPassword,
		RedisDB:       cfg.Cache.RedisDB,
		Group:         "buildings",
	})
	if err != nil {
		return fmt.Errorf("create cache: %w", err)
	}
	a.cache = c

	a.Client = api.NewClient(cfg, a.Logger)
	lookup := services.NewBuildingLookup(a.Client, c, a.Logger)

	claims := store.NewClaimRepository(db)
	persons := store.NewPersonRepository(db)
	relations := store.NewRelationRepository(db)
	evidence := store.NewEvidenceRepository(db)
	households := store.NewHouseholdRepository(db)
	buildings := store.NewBuildingRepository(db)
	units := store.NewUnitRepository(db)
	users := store.NewUserRepository(db)
	resolutions := store.NewResolutionRepository(db)

	a.Duplicates = services.NewDuplicateService(claims, persons, relations, units, resolutions, a.Logger)
	auth := services.NewAuthService(users, a.Logger)

	a.Claims = controllers.NewClaimController(a.Bus, a.Logger, claims, a.Duplicates)
	a.Persons = controllers.NewPersonController(a.Bus, a.Logger, persons, a.Duplicates)
	a.Buildings = controllers.NewBuildingController(a.Bus, a.Logger, buildings, lookup)
	a.Units = controllers.NewUnitController(a.Bus, a.Logger, units, lookup)
	a.Tenure = controllers.NewTenureController(a.Bus, a.Logger, relations, evidence, households)
	a.Users = controllers.NewUserController(a.Bus, a.Logger, users, auth)
	a.Surveys = controllers.NewSurveyController(a.Bus, a.Logger, a.Client)

	a.initialized = true
	return nil
}

// Close releases every resource Init acquired. Safe to call on a
// partially-initialized App.
func (a *App) Close() {
	if a.Client != nil {
		_ = a.Client.Close()
	}
	if a.cache != nil {
		_ = a.cache.Close()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
	if a.sentryOn {
		sentry.Flush(2 * time.Second)
	}
}
