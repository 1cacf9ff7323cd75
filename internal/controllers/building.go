package controllers

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/trrcms/trrcms/internal/apperrors"
	"github.com/trrcms/trrcms/internal/events"
	"github.com/trrcms/trrcms/internal/models"
	"github.com/trrcms/trrcms/internal/result"
	"github.com/trrcms/trrcms/internal/services"
	"github.com/trrcms/trrcms/internal/store"
)

// BuildingSearchResult is one page of building matches plus the total count.
type BuildingSearchResult struct {
	Buildings []models.Building
	Total     int
}

// BuildingController manages the local building registry and backed-by-cache
// lookups against the central backend.
type BuildingController struct {
	Base
	buildings *store.BuildingRepository
	lookup    *services.BuildingLookup
}

// NewBuildingController creates the building controller. lookup may be nil
// when the application runs without backend connectivity.
func NewBuildingController(
	bus *events.Bus,
	logger zerolog.Logger,
	buildings *store.BuildingRepository,
	lookup *services.BuildingLookup,
) *BuildingController {
	return &BuildingController{
		Base:      NewBase("building", bus, logger),
		buildings: buildings,
		lookup:    lookup,
	}
}

// Create validates and persists a building. The 17-digit code is assembled
// from its components when not supplied.
func (c *BuildingController) Create(ctx context.Context, building models.Building) result.OperationResult[models.Building] {
	res := ExecuteMsg(&c.Base, "create",
		"Building created successfully", "تم إنشاء المبنى بنجاح",
		func() (models.Building, error) {
			if building.BuildingID == "" {
				building.BuildingID = ComposeBuildingID(&building)
			}
			if err := validateBuilding(&building); err != nil {
				return models.Building{}, err
			}
			if building.BuildingUUID == "" {
				base := models.NewBuilding()
				building.BuildingUUID = base.BuildingUUID
				building.CreatedAt = base.CreatedAt
				building.UpdatedAt = base.UpdatedAt
			}
			if err := c.buildings.Create(ctx, &building); err != nil {
				return models.Building{}, err
			}
			return building, nil
		})
	if res.Success {
		c.bus.Publish(events.BuildingCreated, res.Data.BuildingID)
	}
	return res
}

// ComposeBuildingID assembles the 17-digit building code from its
// administrative components: governorate(2) + district(2) + subdistrict(2) +
// community(3) + neighborhood(3) + building number(5).
func ComposeBuildingID(b *models.Building) string {
	return b.GovernorateCode + b.DistrictCode + b.SubdistrictCode +
		b.CommunityCode + b.NeighborhoodCode + b.BuildingNumber
}

func validateBuilding(b *models.Building) error {
	var fields []string
	if len(b.BuildingID) != 17 {
		fields = append(fields, "Building ID must be 17 digits")
	}
	if b.NumberOfFloors < 1 {
		fields = append(fields, "Number of floors must be at least 1")
	}
	if len(fields) > 0 {
		return apperrors.NewValidationError(fields...)
	}
	return nil
}

// Get returns a building by code, preferring the local registry and falling
// back to the cached backend lookup.
func (c *BuildingController) Get(ctx context.Context, buildingID string) result.OperationResult[models.Building] {
	return Execute(&c.Base, "get", func() (models.Building, error) {
		b, err := c.buildings.GetByID(ctx, buildingID)
		if err == nil {
			return b, nil
		}
		if c.lookup == nil {
			return models.Building{}, err
		}
		return c.lookup.GetBuilding(ctx, buildingID)
	})
}

// Search queries the local registry; when the backend lookup is available
// its results are merged in behind the local ones.
func (c *BuildingController) Search(ctx context.Context, query string, limit int) result.OperationResult[BuildingSearchResult] {
	return Execute(&c.Base, "search", func() (BuildingSearchResult, error) {
		local, err := c.buildings.Search(ctx, query, limit)
		if err != nil {
			return BuildingSearchResult{}, err
		}
		out := BuildingSearchResult{Buildings: local, Total: len(local)}

		if c.lookup != nil && len(local) < limit {
			remote, total, err := c.lookup.Search(ctx, query, 1, limit-len(local))
			if err != nil {
				// Backend trouble degrades search to local-only.
				c.logger.Warn().Err(err).Msg("Backend building search failed")
				return out, nil
			}
			seen := make(map[string]bool, len(local))
			for _, b := range local {
				seen[b.BuildingID] = true
			}
			for _, b := range remote {
				if !seen[b.BuildingID] {
					out.Buildings = append(out.Buildings, b)
				}
			}
			out.Total = len(local) + total
		}
		return out, nil
	})
}

// Update persists edits to a building.
func (c *BuildingController) Update(ctx context.Context, building models.Building) result.OperationResult[models.Building] {
	res := ExecuteMsg(&c.Base, "update",
		"Building updated successfully", "تم تحديث المبنى بنجاح",
		func() (models.Building, error) {
			if err := validateBuilding(&building); err != nil {
				return models.Building{}, err
			}
			if err := c.buildings.Update(ctx, &building); err != nil {
				return models.Building{}, err
			}
			return building, nil
		})
	if res.Success {
		c.bus.Publish(events.BuildingUpdated, building.BuildingID)
	}
	return res
}
