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

// UnitController manages property units within buildings.
type UnitController struct {
	Base
	units  *store.UnitRepository
	lookup *services.BuildingLookup
}

// NewUnitController creates the unit controller. lookup may be nil when the
// application runs without backend connectivity.
func NewUnitController(
	bus *events.Bus,
	logger zerolog.Logger,
	units *store.UnitRepository,
	lookup *services.BuildingLookup,
) *UnitController {
	return &UnitController{
		Base:   NewBase("unit", bus, logger),
		units:  units,
		lookup: lookup,
	}
}

// Create validates and persists a unit. The display ID defaults to the
// building code plus the unit number.
func (c *UnitController) Create(ctx context.Context, unit models.Unit) result.OperationResult[models.Unit] {
	res := ExecuteMsg(&c.Base, "create",
		"Unit created successfully", "تم إنشاء الوحدة بنجاح",
		func() (models.Unit, error) {
			if err := validateUnit(&unit); err != nil {
				return models.Unit{}, err
			}
			if unit.UnitUUID == "" {
				base := models.NewUnit()
				unit.UnitUUID = base.UnitUUID
				unit.CreatedAt = base.CreatedAt
				unit.UpdatedAt = base.UpdatedAt
			}
			if unit.UnitNumber == "" {
				unit.UnitNumber = "001"
			}
			if unit.UnitID == "" {
				unit.UnitID = unit.BuildingID + "-" + unit.UnitNumber
			}
			if err := c.units.Create(ctx, &unit); err != nil {
				return models.Unit{}, err
			}
			return unit, nil
		})
	if res.Success {
		c.bus.Publish(events.UnitCreated, res.Data.UnitUUID)
	}
	return res
}

func validateUnit(u *models.Unit) error {
	var fields []string
	if u.BuildingID == "" {
		fields = append(fields, "Missing required field: building_id")
	}
	if u.AreaSqm < 0 {
		fields = append(fields, "Area must not be negative")
	}
	if len(fields) > 0 {
		return apperrors.NewValidationError(fields...)
	}
	return nil
}

// Get returns a unit by UUID, preferring the local store and falling back to
// the cached backend lookup.
func (c *UnitController) Get(ctx context.Context, unitUUID string) result.OperationResult[models.Unit] {
	return Execute(&c.Base, "get", func() (models.Unit, error) {
		u, err := c.units.GetByUUID(ctx, unitUUID)
		if err == nil {
			return u, nil
		}
		if c.lookup == nil {
			return models.Unit{}, err
		}
		return c.lookup.GetUnit(ctx, unitUUID)
	})
}

// ListByBuilding returns the units of a building.
func (c *UnitController) ListByBuilding(ctx context.Context, buildingID string) result.OperationResult[[]models.Unit] {
	return Execute(&c.Base, "list_by_building", func() ([]models.Unit, error) {
		units, err := c.units.ListByBuilding(ctx, buildingID)
		if err != nil {
			return nil, err
		}
		if len(units) == 0 && c.lookup != nil {
			return c.lookup.UnitsOfBuilding(ctx, buildingID)
		}
		return units, nil
	})
}

// Update persists edits to a unit.
func (c *UnitController) Update(ctx context.Context, unit models.Unit) result.OperationResult[models.Unit] {
	res := ExecuteMsg(&c.Base, "update",
		"Unit updated successfully", "تم تحديث الوحدة بنجاح",
		func() (models.Unit, error) {
			if err := validateUnit(&unit); err != nil {
				return models.Unit{}, err
			}
			if err := c.units.Update(ctx, &unit); err != nil {
				return models.Unit{}, err
			}
			return unit, nil
		})
	if res.Success {
		c.bus.Publish(events.UnitUpdated, unit.UnitUUID)
	}
	return res
}
