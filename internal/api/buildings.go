package api

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/trrcms/trrcms/internal/apperrors"
	"github.com/trrcms/trrcms/internal/models"
)

// GetBuilding fetches one building by its 17-digit code.
func (c *client) GetBuilding(ctx context.Context, buildingID string) (models.Building, error) {
	var dto BuildingDTO
	err := c.get(ctx, "/api/v1/buildings/"+url.PathEscape(buildingID), nil, &dto)
	if err != nil {
		var notFound *apperrors.ErrNotFound
		if errors.As(err, &notFound) {
			return models.Building{}, apperrors.NewNotFoundError("Building", buildingID)
		}
		return models.Building{}, err
	}
	return buildingFromDTO(dto), nil
}

// SearchBuildings queries buildings by code or neighborhood name. Returns the
// page of matches plus the backend's total count.
func (c *client) SearchBuildings(ctx context.Context, query string, page, pageSize int) ([]models.Building, int, error) {
	q := url.Values{}
	q.Set("q", query)
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("pageSize", strconv.Itoa(pageSize))
	}

	var result pageDTO[BuildingDTO]
	if err := c.get(ctx, "/api/v1/buildings/search", q, &result); err != nil {
		return nil, 0, fmt.Errorf("search buildings: %w", err)
	}

	buildings := make([]models.Building, 0, len(result.Items))
	for _, dto := range result.Items {
		buildings = append(buildings, buildingFromDTO(dto))
	}
	return buildings, result.Total, nil
}

// ListBuildingsByNeighborhood fetches all buildings in a neighborhood code.
func (c *client) ListBuildingsByNeighborhood(ctx context.Context, neighborhoodCode string) ([]models.Building, error) {
	q := url.Values{}
	q.Set("neighborhood", neighborhoodCode)

	var result pageDTO[BuildingDTO]
	if err := c.get(ctx, "/api/v1/buildings", q, &result); err != nil {
		return nil, fmt.Errorf("list buildings: %w", err)
	}

	buildings := make([]models.Building, 0, len(result.Items))
	for _, dto := range result.Items {
		buildings = append(buildings, buildingFromDTO(dto))
	}
	return buildings, nil
}

// GetUnit fetches one property unit by UUID.
func (c *client) GetUnit(ctx context.Context, unitUUID string) (models.Unit, error) {
	var dto UnitDTO
	err := c.get(ctx, "/api/v1/units/"+url.PathEscape(unitUUID), nil, &dto)
	if err != nil {
		var notFound *apperrors.ErrNotFound
		if errors.As(err, &notFound) {
			return models.Unit{}, apperrors.NewNotFoundError("Unit", unitUUID)
		}
		return models.Unit{}, err
	}
	return unitFromDTO(dto), nil
}

// ListUnitsByBuilding fetches the units of a building.
func (c *client) ListUnitsByBuilding(ctx context.Context, buildingID string) ([]models.Unit, error) {
	q := url.Values{}
	q.Set("buildingId", buildingID)

	var result pageDTO[UnitDTO]
	if err := c.get(ctx, "/api/v1/units", q, &result); err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}

	units := make([]models.Unit, 0, len(result.Items))
	for _, dto := range result.Items {
		units = append(units, unitFromDTO(dto))
	}
	return units, nil
}
