package models

import (
	"time"

	"github.com/google/uuid"
)

// Building represents a physical structure identified by the 17-digit
// UN-Habitat building code: governorate(2) + district(2) + subdistrict(2) +
// community(3) + neighborhood(3) + building number(5).
type Building struct {
	BuildingUUID string
	BuildingID   string

	GovernorateCode    string
	GovernorateName    string
	GovernorateNameAr  string
	DistrictCode       string
	DistrictName       string
	DistrictNameAr     string
	SubdistrictCode    string
	SubdistrictName    string
	SubdistrictNameAr  string
	CommunityCode      string
	CommunityName      string
	CommunityNameAr    string
	NeighborhoodCode   string
	NeighborhoodName   string
	NeighborhoodNameAr string
	BuildingNumber     string

	BuildingType   string // residential, commercial, mixed_use
	BuildingStatus string // intact, minor_damage, major_damage, destroyed

	NumberOfUnits      int
	NumberOfApartments int
	NumberOfShops      int
	NumberOfFloors     int

	Latitude    float64
	Longitude   float64
	GeoLocation string // WKT geometry string

	LegacySTDMID string

	CreatedAt time.Time
	UpdatedAt time.Time
	CreatedBy string
	UpdatedBy string
}

// NewBuilding creates a building with a generated UUID and defaults.
func NewBuilding() Building {
	now := time.Now()
	return Building{
		BuildingUUID:   uuid.NewString(),
		BuildingType:   "residential",
		BuildingStatus: "intact",
		NumberOfFloors: 1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Unit represents a property unit within a building. UnitID is the building
// code plus the unit number.
type Unit struct {
	UnitUUID   string
	UnitID     string
	BuildingID string

	UnitType        string // apartment, shop, office, warehouse, garage, other
	UnitNumber      string
	FloorNumber     int
	ApartmentNumber string
	ApartmentStatus string // occupied, vacant, unknown

	PropertyDescription string
	AreaSqm             float64

	LegacySTDMID            string
	LegacySTDMPartyID       string
	LegacySTDMSpatialUnitID string

	CreatedAt time.Time
	UpdatedAt time.Time
	CreatedBy string
	UpdatedBy string
}

// NewUnit creates a unit with a generated UUID and defaults.
func NewUnit() Unit {
	now := time.Now()
	return Unit{
		UnitUUID:        uuid.NewString(),
		UnitType:        "apartment",
		UnitNumber:      "001",
		ApartmentStatus: "occupied",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
