package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/trrcms/trrcms/internal/apperrors"
	"github.com/trrcms/trrcms/internal/models"
)

// BuildingRepository persists buildings.
type BuildingRepository struct {
	db *sql.DB
}

// NewBuildingRepository creates a building repository over db.
func NewBuildingRepository(db *sql.DB) *BuildingRepository {
	return &BuildingRepository{db: db}
}

const buildingColumns = `building_uuid, building_id, governorate_code, governorate_name,
	governorate_name_ar, district_code, district_name, district_name_ar,
	subdistrict_code, subdistrict_name, subdistrict_name_ar, community_code,
	community_name, community_name_ar, neighborhood_code, neighborhood_name,
	neighborhood_name_ar, building_number, building_type, building_status,
	number_of_units, number_of_apartments, number_of_shops, number_of_floors,
	latitude, longitude, geo_location, legacy_stdm_id, created_at, updated_at,
	created_by, updated_by`

// Create inserts a new building.
func (r *BuildingRepository) Create(ctx context.Context, b *models.Building) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO buildings (`+buildingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.BuildingUUID, b.BuildingID, b.GovernorateCode, b.GovernorateName,
		b.GovernorateNameAr, b.DistrictCode, b.DistrictName, b.DistrictNameAr,
		b.SubdistrictCode, b.SubdistrictName, b.SubdistrictNameAr, b.CommunityCode,
		b.CommunityName, b.CommunityNameAr, b.NeighborhoodCode, b.NeighborhoodName,
		b.NeighborhoodNameAr, b.BuildingNumber, b.BuildingType, b.BuildingStatus,
		b.NumberOfUnits, b.NumberOfApartments, b.NumberOfShops, b.NumberOfFloors,
		nullFloat(b.Latitude), nullFloat(b.Longitude), nullString(b.GeoLocation),
		nullString(b.LegacySTDMID), formatTime(b.CreatedAt), formatTime(b.UpdatedAt),
		nullString(b.CreatedBy), nullString(b.UpdatedBy),
	)
	if err != nil {
		return fmt.Errorf("insert building %s: %w", b.BuildingID, err)
	}
	return nil
}

// GetByID returns the building with the given 17-digit code.
func (r *BuildingRepository) GetByID(ctx context.Context, buildingID string) (models.Building, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+buildingColumns+" FROM buildings WHERE building_id = ?", buildingID)
	b, err := scanBuilding(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Building{}, apperrors.NewNotFoundError("Building", buildingID)
	}
	return b, err
}

// GetByUUID returns the building with the given UUID.
func (r *BuildingRepository) GetByUUID(ctx context.Context, buildingUUID string) (models.Building, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+buildingColumns+" FROM buildings WHERE building_uuid = ?", buildingUUID)
	b, err := scanBuilding(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Building{}, apperrors.NewNotFoundError("Building", buildingUUID)
	}
	return b, err
}

// Search returns buildings whose code or neighborhood matches the query.
func (r *BuildingRepository) Search(ctx context.Context, query string, limit int) ([]models.Building, error) {
	like := "%" + query + "%"
	q := "SELECT " + buildingColumns + ` FROM buildings
		WHERE building_id LIKE ? OR neighborhood_name LIKE ? OR neighborhood_name_ar LIKE ?
		ORDER BY building_id`
	if limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", limit)
	}
	return r.queryBuildings(ctx, q, like, like, like)
}

// ListByNeighborhood returns buildings in a neighborhood code.
func (r *BuildingRepository) ListByNeighborhood(ctx context.Context, neighborhoodCode string) ([]models.Building, error) {
	return r.queryBuildings(ctx,
		"SELECT "+buildingColumns+" FROM buildings WHERE neighborhood_code = ? ORDER BY building_id",
		neighborhoodCode)
}

// Update persists all mutable building fields and bumps updated_at.
func (r *BuildingRepository) Update(ctx context.Context, b *models.Building) error {
	b.UpdatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, `
		UPDATE buildings SET
			building_id = ?, governorate_code = ?, governorate_name = ?, governorate_name_ar = ?,
			district_code = ?, district_name = ?, district_name_ar = ?,
			subdistrict_code = ?, subdistrict_name = ?, subdistrict_name_ar = ?,
			community_code = ?, community_name = ?, community_name_ar = ?,
			neighborhood_code = ?, neighborhood_name = ?, neighborhood_name_ar = ?,
			building_number = ?, building_type = ?, building_status = ?,
			number_of_units = ?, number_of_apartments = ?, number_of_shops = ?,
			number_of_floors = ?, latitude = ?, longitude = ?, geo_location = ?,
			updated_at = ?, updated_by = ?
		WHERE building_uuid = ?`,
		b.BuildingID, b.GovernorateCode, b.GovernorateName, b.GovernorateNameAr,
		b.DistrictCode, b.DistrictName, b.DistrictNameAr,
		b.SubdistrictCode, b.SubdistrictName, b.SubdistrictNameAr,
		b.CommunityCode, b.CommunityName, b.CommunityNameAr,
		b.NeighborhoodCode, b.NeighborhoodName, b.NeighborhoodNameAr,
		b.BuildingNumber, b.BuildingType, b.BuildingStatus,
		b.NumberOfUnits, b.NumberOfApartments, b.NumberOfShops,
		b.NumberOfFloors, nullFloat(b.Latitude), nullFloat(b.Longitude), nullString(b.GeoLocation),
		formatTime(b.UpdatedAt), nullString(b.UpdatedBy),
		b.BuildingUUID,
	)
	if err != nil {
		return fmt.Errorf("update building %s: %w", b.BuildingUUID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NewNotFoundError("Building", b.BuildingUUID)
	}
	return nil
}

func (r *BuildingRepository) queryBuildings(ctx context.Context, query string, args ...interface{}) ([]models.Building, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buildings []models.Building
	for rows.Next() {
		b, err := scanBuilding(rows)
		if err != nil {
			return nil, err
		}
		buildings = append(buildings, b)
	}
	return buildings, rows.Err()
}

func scanBuilding(row rowScanner) (models.Building, error) {
	var b models.Building
	var lat, lon sql.NullFloat64
	var geo, legacyID, createdAt, updatedAt, createdBy, updatedBy sql.NullString

	err := row.Scan(
		&b.BuildingUUID, &b.BuildingID, &b.GovernorateCode, &b.GovernorateName,
		&b.GovernorateNameAr, &b.DistrictCode, &b.DistrictName, &b.DistrictNameAr,
		&b.SubdistrictCode, &b.SubdistrictName, &b.SubdistrictNameAr, &b.CommunityCode,
		&b.CommunityName, &b.CommunityNameAr, &b.NeighborhoodCode, &b.NeighborhoodName,
		&b.NeighborhoodNameAr, &b.BuildingNumber, &b.BuildingType, &b.BuildingStatus,
		&b.NumberOfUnits, &b.NumberOfApartments, &b.NumberOfShops, &b.NumberOfFloors,
		&lat, &lon, &geo, &legacyID, &createdAt, &updatedAt, &createdBy, &updatedBy,
	)
	if err != nil {
		return models.Building{}, err
	}

	b.Latitude = lat.Float64
	b.Longitude = lon.Float64
	b.GeoLocation = geo.String
	b.LegacySTDMID = legacyID.String
	b.CreatedAt = parseTimeValue(createdAt)
	b.UpdatedAt = parseTimeValue(updatedAt)
	b.CreatedBy = createdBy.String
	b.UpdatedBy = updatedBy.String
	return b, nil
}

func nullFloat(f float64) sql.NullFloat64 {
	if f == 0 {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}

// UnitRepository persists property units.
type UnitRepository struct {
	db *sql.DB
}

// NewUnitRepository creates a unit repository over db.
func NewUnitRepository(db *sql.DB) *UnitRepository {
	return &UnitRepository{db: db}
}

const unitColumns = `unit_uuid, unit_id, building_id, unit_type, unit_number,
	floor_number, apartment_number, apartment_status, property_description,
	area_sqm, legacy_stdm_id, legacy_stdm_party_id, legacy_stdm_spatial_unit_id,
	created_at, updated_at, created_by, updated_by`

// Create inserts a new unit.
func (r *UnitRepository) Create(ctx context.Context, u *models.Unit) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO property_units (`+unitColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.UnitUUID, u.UnitID, u.BuildingID, u.UnitType, u.UnitNumber,
		u.FloorNumber, u.ApartmentNumber, u.ApartmentStatus, u.PropertyDescription,
		nullFloat(u.AreaSqm), nullString(u.LegacySTDMID), nullString(u.LegacySTDMPartyID),
		nullString(u.LegacySTDMSpatialUnitID),
		formatTime(u.CreatedAt), formatTime(u.UpdatedAt), nullString(u.CreatedBy), nullString(u.UpdatedBy),
	)
	if err != nil {
		return fmt.Errorf("insert unit %s: %w", u.UnitID, err)
	}
	return nil
}

// GetByUUID returns the unit with the given UUID.
func (r *UnitRepository) GetByUUID(ctx context.Context, unitUUID string) (models.Unit, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+unitColumns+" FROM property_units WHERE unit_uuid = ?", unitUUID)
	u, err := scanUnit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Unit{}, apperrors.NewNotFoundError("Unit", unitUUID)
	}
	return u, err
}

// GetByID returns the unit with the given display ID.
func (r *UnitRepository) GetByID(ctx context.Context, unitID string) (models.Unit, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+unitColumns+" FROM property_units WHERE unit_id = ?", unitID)
	u, err := scanUnit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Unit{}, apperrors.NewNotFoundError("Unit", unitID)
	}
	return u, err
}

// ListByBuilding returns all units in a building, ordered by unit number.
func (r *UnitRepository) ListByBuilding(ctx context.Context, buildingID string) ([]models.Unit, error) {
	return r.queryUnits(ctx,
		"SELECT "+unitColumns+" FROM property_units WHERE building_id = ? ORDER BY unit_number",
		buildingID)
}

// List returns units matching the optional search string.
func (r *UnitRepository) List(ctx context.Context, search string, limit, offset int) ([]models.Unit, error) {
	var conds []string
	var args []interface{}
	if search != "" {
		like := "%" + search + "%"
		conds = append(conds, "(unit_id LIKE ? OR building_id LIKE ?)")
		args = append(args, like, like)
	}
	query := "SELECT " + unitColumns + " FROM property_units"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY unit_id"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)
	}
	return r.queryUnits(ctx, query, args...)
}

// Update persists all mutable unit fields and bumps updated_at.
func (r *UnitRepository) Update(ctx context.Context, u *models.Unit) error {
	u.UpdatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, `
		UPDATE property_units SET
			unit_id = ?, building_id = ?, unit_type = ?, unit_number = ?,
			floor_number = ?, apartment_number = ?, apartment_status = ?,
			property_description = ?, area_sqm = ?, updated_at = ?, updated_by = ?
		WHERE unit_uuid = ?`,
		u.UnitID, u.BuildingID, u.UnitType, u.UnitNumber,
		u.FloorNumber, u.ApartmentNumber, u.ApartmentStatus,
		u.PropertyDescription, nullFloat(u.AreaSqm), formatTime(u.UpdatedAt), nullString(u.UpdatedBy),
		u.UnitUUID,
	)
	if err != nil {
		return fmt.Errorf("update unit %s: %w", u.UnitUUID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NewNotFoundError("Unit", u.UnitUUID)
	}
	return nil
}

// Delete removes a unit.
func (r *UnitRepository) Delete(ctx context.Context, unitUUID string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM property_units WHERE unit_uuid = ?", unitUUID)
	if err != nil {
		return fmt.Errorf("delete unit %s: %w", unitUUID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NewNotFoundError("Unit", unitUUID)
	}
	return nil
}

func (r *UnitRepository) queryUnits(ctx context.Context, query string, args ...interface{}) ([]models.Unit, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []models.Unit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

func scanUnit(row rowScanner) (models.Unit, error) {
	var u models.Unit
	var area sql.NullFloat64
	var legacyID, legacyPartyID, legacySpatialID sql.NullString
	var createdAt, updatedAt, createdBy, updatedBy sql.NullString

	err := row.Scan(
		&u.UnitUUID, &u.UnitID, &u.BuildingID, &u.UnitType, &u.UnitNumber,
		&u.FloorNumber, &u.ApartmentNumber, &u.ApartmentStatus, &u.PropertyDescription,
		&area, &legacyID, &legacyPartyID, &legacySpatialID,
		&createdAt, &updatedAt, &createdBy, &updatedBy,
	)
	if err != nil {
		return models.Unit{}, err
	}

	u.AreaSqm = area.Float64
	u.LegacySTDMID = legacyID.String
	u.LegacySTDMPartyID = legacyPartyID.String
	u.LegacySTDMSpatialUnitID = legacySpatialID.String
	u.CreatedAt = parseTimeValue(createdAt)
	u.UpdatedAt = parseTimeValue(updatedAt)
	u.CreatedBy = createdBy.String
	u.UpdatedBy = updatedBy.String
	return u, nil
}
