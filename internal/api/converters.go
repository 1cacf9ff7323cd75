package api

import (
	"time"

	"github.com/trrcms/trrcms/internal/models"
)

// Converters are pure functions from wire DTOs to domain models. They never
// touch the network or the store.

func buildingFromDTO(d BuildingDTO) models.Building {
	b := models.Building{
		BuildingUUID:       d.BuildingUUID,
		BuildingID:         d.BuildingID,
		GovernorateCode:    d.GovernorateCode,
		GovernorateName:    d.GovernorateName,
		GovernorateNameAr:  d.GovernorateNameAr,
		DistrictCode:       d.DistrictCode,
		DistrictName:       d.DistrictName,
		DistrictNameAr:     d.DistrictNameAr,
		SubdistrictCode:    d.SubdistrictCode,
		SubdistrictName:    d.SubdistrictName,
		SubdistrictNameAr:  d.SubdistrictNameAr,
		CommunityCode:      d.CommunityCode,
		CommunityName:      d.CommunityName,
		CommunityNameAr:    d.CommunityNameAr,
		NeighborhoodCode:   d.NeighborhoodCode,
		NeighborhoodName:   d.NeighborhoodName,
		NeighborhoodNameAr: d.NeighborhoodNameAr,
		BuildingNumber:     d.BuildingNumber,
		BuildingType:       d.BuildingType,
		BuildingStatus:     d.BuildingStatus,
		NumberOfUnits:      d.NumberOfUnits,
		NumberOfApartments: d.NumberOfApartments,
		NumberOfShops:      d.NumberOfShops,
		NumberOfFloors:     d.NumberOfFloors,
		GeoLocation:        d.GeoLocation,
		CreatedAt:          parseWireTime(d.CreatedAt),
		UpdatedAt:          parseWireTime(d.UpdatedAt),
	}
	if d.Latitude != nil {
		b.Latitude = *d.Latitude
	}
	if d.Longitude != nil {
		b.Longitude = *d.Longitude
	}
	return b
}

func unitFromDTO(d UnitDTO) models.Unit {
	u := models.Unit{
		UnitUUID:            d.UnitUUID,
		UnitID:              d.UnitID,
		BuildingID:          d.BuildingID,
		UnitType:            d.UnitType,
		UnitNumber:          d.UnitNumber,
		FloorNumber:         d.FloorNumber,
		ApartmentNumber:     d.ApartmentNumber,
		ApartmentStatus:     d.ApartmentStatus,
		PropertyDescription: d.PropertyDescription,
		CreatedAt:           parseWireTime(d.CreatedAt),
		UpdatedAt:           parseWireTime(d.UpdatedAt),
	}
	if d.AreaSqm != nil {
		u.AreaSqm = *d.AreaSqm
	}
	return u
}

func personFromDTO(d PersonDTO) models.Person {
	p := models.Person{
		PersonID:        d.PersonID,
		FirstName:       d.FirstName,
		FirstNameAr:     d.FirstNameAr,
		FatherName:      d.FatherName,
		FatherNameAr:    d.FatherNameAr,
		MotherName:      d.MotherName,
		MotherNameAr:    d.MotherNameAr,
		LastName:        d.LastName,
		LastNameAr:      d.LastNameAr,
		Gender:          d.Gender,
		Nationality:     d.Nationality,
		NationalID:      d.NationalID,
		PassportNumber:  d.PassportNumber,
		PhoneNumber:     d.PhoneNumber,
		MobileNumber:    d.MobileNumber,
		Email:           d.Email,
		Address:         d.Address,
		IsContactPerson: d.IsContactPerson,
		IsDeceased:      d.IsDeceased,
	}
	if d.YearOfBirth != nil {
		p.YearOfBirth = *d.YearOfBirth
	}
	return p
}

func householdFromDTO(d HouseholdDTO) models.Household {
	h := models.Household{
		HouseholdID:         d.HouseholdID,
		UnitID:              d.UnitID,
		MainOccupantID:      d.MainOccupantID,
		MainOccupantName:    d.MainOccupantName,
		OccupancySize:       d.OccupancySize,
		MaleCount:           d.MaleCount,
		FemaleCount:         d.FemaleCount,
		MinorsCount:         d.MinorsCount,
		AdultsCount:         d.AdultsCount,
		ElderlyCount:        d.ElderlyCount,
		WithDisabilityCount: d.WithDisabilityCount,
		OccupancyType:       d.OccupancyType,
		OccupancyNature:     d.OccupancyNature,
	}
	if d.MonthlyRent != nil {
		h.MonthlyRent = *d.MonthlyRent
	}
	return h
}

func surveyFromDTO(d SurveyDTO) models.Survey {
	return models.Survey{
		SurveyID:         d.SurveyID,
		BuildingID:       d.BuildingID,
		UnitID:           d.UnitID,
		FieldCollectorID: d.FieldCollectorID,
		SurveyDate:       parseWireTimePtr(d.SurveyDate),
		SurveyType:       d.SurveyType,
		Status:           d.Status,
		ReferenceCode:    d.ReferenceCode,
		Source:           d.Source,
		Notes:            d.Notes,
		CreatedAt:        parseWireTime(d.CreatedAt),
		FinalizedAt:      parseWireTimePtr(d.FinalizedAt),
	}
}

func surveyContextFromDTO(d SurveyContextDTO) models.SurveyContext {
	sc := models.SurveyContext{
		Building: buildingFromDTO(d.Building),
		Unit:     unitFromDTO(d.Unit),
	}
	for _, h := range d.Households {
		sc.Households = append(sc.Households, householdFromDTO(h))
	}
	for _, p := range d.Persons {
		sc.Persons = append(sc.Persons, personFromDTO(p))
	}
	for _, c := range d.Claims {
		sc.Claims = append(sc.Claims, models.SurveyClaimSummary{
			ClaimID:   c.ClaimID,
			ClaimType: c.ClaimType,
			Status:    c.Status,
		})
	}
	if d.ClaimData != nil {
		sc.ClaimData = models.SurveyClaimData{
			ClaimType:      d.ClaimData.ClaimType,
			Priority:       d.ClaimData.Priority,
			Source:         d.ClaimData.Source,
			CaseStatus:     d.ClaimData.CaseStatus,
			PersonName:     d.ClaimData.PersonName,
			UnitDisplayID:  d.ClaimData.UnitDisplayID,
			BusinessNature: d.ClaimData.BusinessNature,
			SurveyDate:     d.ClaimData.SurveyDate,
			Notes:          d.ClaimData.Notes,
			EvidenceCount:  d.ClaimData.EvidenceCount,
		}
	}
	return sc
}

// wireTimeLayouts covers the timestamp formats the backend emits.
var wireTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseWireTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range wireTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseWireTimePtr(s string) *time.Time {
	t := parseWireTime(s)
	if t.IsZero() {
		return nil
	}
	return &t
}
