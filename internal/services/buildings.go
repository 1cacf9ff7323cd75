package services

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/trrcms/trrcms/internal/api"
	"github.com/trrcms/trrcms/internal/cache"
	"github.com/trrcms/trrcms/internal/models"
)

// BuildingLookup serves building and unit reference data from the central
// backend, keeping recent answers in a cache so repeated lookups during data
// entry avoid the network.
type BuildingLookup struct {
	client api.Client
	cache  cache.Cache
	logger zerolog.Logger
}

// NewBuildingLookup creates a cached building lookup.
func NewBuildingLookup(client api.Client, c cache.Cache, logger zerolog.Logger) *BuildingLookup {
	return &BuildingLookup{client: client, cache: c, logger: logger}
}

// GetBuilding returns a building by its 17-digit code, from cache when warm.
func (l *BuildingLookup) GetBuilding(ctx context.Context, buildingID string) (models.Building, error) {
	key := "building:" + buildingID
	if data, ok := l.cache.Get(key); ok {
		var b models.Building
		if err := json.Unmarshal(data, &b); err == nil {
			return b, nil
		}
		// A corrupt entry falls through to a fresh fetch.
	}

	b, err := l.client.GetBuilding(ctx, buildingID)
	if err != nil {
		return models.Building{}, err
	}
	l.put(key, b)
	return b, nil
}

// GetUnit returns a unit by UUID, from cache when warm.
func (l *BuildingLookup) GetUnit(ctx context.Context, unitUUID string) (models.Unit, error) {
	key := "unit:" + unitUUID
	if data, ok := l.cache.Get(key); ok {
		var u models.Unit
		if err := json.Unmarshal(data, &u); err == nil {
			return u, nil
		}
	}

	u, err := l.client.GetUnit(ctx, unitUUID)
	if err != nil {
		return models.Unit{}, err
	}
	l.put(key, u)
	return u, nil
}

// UnitsOfBuilding returns the units of a building, from cache when warm.
func (l *BuildingLookup) UnitsOfBuilding(ctx context.Context, buildingID string) ([]models.Unit, error) {
	key := "building-units:" + buildingID
	if data, ok := l.cache.Get(key); ok {
		var units []models.Unit
		if err := json.Unmarshal(data, &units); err == nil {
			return units, nil
		}
	}

	units, err := l.client.ListUnitsByBuilding(ctx, buildingID)
	if err != nil {
		return nil, err
	}
	l.put(key, units)
	return units, nil
}

// Search queries buildings on the backend. Search results are not cached;
// query strings rarely repeat exactly.
func (l *BuildingLookup) Search(ctx context.Context, query string, page, pageSize int) ([]models.Building, int, error) {
	return l.client.SearchBuildings(ctx, query, page, pageSize)
}

func (l *BuildingLookup) put(key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		l.logger.Error().Err(err).Str("key", key).Msg("Failed to cache lookup result")
		return
	}
	l.cache.Set(key, data)
}

// CacheLogger adapts zerolog to the cache package's Logger interface.
type CacheLogger struct {
	Logger zerolog.Logger
}

// Error implements cache.Logger.
func (c CacheLogger) Error(msg string, err error) {
	c.Logger.Error().Err(err).Msg(msg)
}
